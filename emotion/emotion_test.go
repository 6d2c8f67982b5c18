package emotion

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalize(t *testing.T) {
	cases := map[string]Emotion{
		"happy":     Happy,
		"Happiness": Happy,
		" SADNESS ": Sad,
		"anger":     Angry,
		"contempt":  Disgust,
		"surprised": Surprise,
		"neutral":   Neutral,
	}
	for in, want := range cases {
		got, ok := Normalize(in)
		assert.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := Normalize("bored")
	assert.False(t, ok)
}

func TestFaceFromLabelsSumsAliases(t *testing.T) {
	f := FaceFromLabels(map[string]float64{
		"disgust":  0.1,
		"contempt": 0.2,
		"happy":    0.6,
		"unknown":  0.9,
	})
	assert.InDelta(t, 0.3, f.Scores[Disgust], 1e-9)
	assert.InDelta(t, 0.6, f.Scores[Happy], 1e-9)
	assert.Len(t, f.Scores, 2)
}

func TestFaceFromLabelsDropsNonFinite(t *testing.T) {
	f := FaceFromLabels(map[string]float64{
		"happy":   math.NaN(),
		"sad":     math.Inf(1),
		"angry":   math.Inf(-1),
		"neutral": 0.4,
	})
	assert.Equal(t, map[Emotion]float64{Neutral: 0.4}, f.Scores)

	e, conf := f.Dominant()
	assert.Equal(t, Neutral, e)
	assert.Equal(t, 0.4, conf)
}

func TestDominant(t *testing.T) {
	f := Face{Scores: map[Emotion]float64{Happy: 0.7, Sad: 0.2, Neutral: 0.1}}
	e, s := f.Dominant()
	assert.Equal(t, Happy, e)
	assert.Equal(t, 0.7, s)

	e, s = Face{}.Dominant()
	assert.Equal(t, Neutral, e)
	assert.Zero(t, s)
}

func TestPreferenceTables(t *testing.T) {
	for _, e := range All {
		assert.NotEmpty(t, Categories(e), e)
		assert.NotEmpty(t, Colors(e), e)
		assert.NotEmpty(t, Usage(e), e)
	}

	assert.Equal(t, 1.3, PriceMultiplier(Happy))
	assert.Equal(t, 0.6, PriceMultiplier(Disgust))
	assert.Equal(t, 1.0, PriceMultiplier("bored"))
	assert.Equal(t, []string{"Apparel"}, Categories("bored"))
	assert.Equal(t, []string{"Any"}, Colors("bored"))
	assert.Equal(t, []string{"Casual"}, Usage("bored"))
}

func TestPreferenceTablesReturnCopies(t *testing.T) {
	c := Categories(Happy)
	c[0] = "Mutated"
	assert.Equal(t, "Apparel", Categories(Happy)[0])
}

func TestTargetPriceRange(t *testing.T) {
	assert.Equal(t, PriceRange{Min: 650, Max: 1950, Preferred: 1300}, TargetPriceRange(1000, Happy))
	assert.Equal(t, PriceRange{Min: 350, Max: 1050, Preferred: 700}, TargetPriceRange(1000, Sad))
	assert.Equal(t, PriceRange{Min: 1000, Max: 3000, Preferred: 2000}, TargetPriceRange(2000, Neutral))
}

func TestBuildPayloadDefaults(t *testing.T) {
	now := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	p := BuildPayload(Shopper{}, Analysis{Emotion: Happy, Confidence: 0.91}, now)

	assert.Equal(t, Happy, p.Emotion)
	assert.Equal(t, 0.91, p.Confidence)
	assert.Equal(t, "2025-03-01T12:00:00Z", p.Timestamp)
	assert.Equal(t, DefaultPrice, p.Context.OriginalProduct.Price)
	assert.Equal(t, "Apparel", p.Context.OriginalProduct.Category)
	assert.Equal(t, "rating", p.Context.Filters.SortBy)
	assert.True(t, p.Context.Filters.Available)
	assert.Equal(t, 3.5, p.Context.Filters.MinRating)
	assert.Equal(t, 20, p.Context.Filters.MaxResults)
	assert.Equal(t, "web", p.Analytics.DeviceType)
	assert.NotNil(t, p.Analytics.PreviousEmotions)
	assert.Equal(t, 1.3, p.Context.Preferences.Multiplier)
}

func TestBuildPayloadShopperContext(t *testing.T) {
	price := 2000.0
	s := Shopper{
		UserID:         "u1",
		ProductID:      "15970",
		Price:          &price,
		Category:       "Electronics",
		SessionID:      "s1",
		DeviceType:     "mobile",
		EmotionHistory: []string{"happy", "sad"},
	}
	p := BuildPayload(s, Analysis{Emotion: Sad, Confidence: 0.5}, time.Now())

	assert.Equal(t, "u1", p.UserID)
	assert.Equal(t, "15970", p.Context.OriginalProduct.ID)
	assert.Equal(t, "Electronics", p.Context.OriginalProduct.Category)
	assert.Equal(t, "price", p.Context.Filters.SortBy)
	assert.Equal(t, 1400, p.Context.Preferences.PriceRange.Preferred)
	assert.Equal(t, []string{"Apparel", "Personal Care", "Home & Kitchen"}, p.Context.Preferences.Categories)
	assert.Equal(t, "mobile", p.Analytics.DeviceType)
	assert.Equal(t, []string{"happy", "sad"}, p.Analytics.PreviousEmotions)
}

func TestPayloadJSONShape(t *testing.T) {
	p := BuildPayload(Shopper{}, Analysis{Emotion: Neutral, Confidence: 0.5}, time.Now())
	b, err := json.Marshal(p)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(b, &m))
	ctx := m["context"].(map[string]any)
	assert.Contains(t, ctx, "originalProduct")
	assert.Contains(t, ctx, "preferences")
	assert.Contains(t, ctx, "filters")
	assert.Contains(t, m["analytics"], "previousEmotions")
}

func TestMockRecommendation(t *testing.T) {
	s := Shopper{}

	r := MockRecommendation(Happy, s)
	assert.Equal(t, TypePremium, r.Type)
	require.NotNil(t, r.Recommendations)
	require.Len(t, r.Recommendations.All, 1)
	assert.Equal(t, 1500, r.Recommendations.All[0].Price)
	assert.Equal(t, "Premium Apparel Collection", r.Recommendations.All[0].Name)

	r = MockRecommendation(Sad, s)
	assert.Equal(t, TypeCheaper, r.Type)
	require.NotNil(t, r.BestAlternative)
	assert.Equal(t, 700, r.BestAlternative.Price)
	require.NotNil(t, r.Savings)
	assert.Equal(t, 300, *r.Savings)

	for _, e := range []Emotion{Angry, Fear, Disgust} {
		r = MockRecommendation(e, s)
		assert.Equal(t, TypeWellness, r.Type, e)
		require.NotNil(t, r.Wellness)
		assert.Equal(t, "Mindfulness App", r.Wellness.JournalApp.Name)
	}

	r = MockRecommendation(Surprise, Shopper{Category: "Footwear"})
	assert.Equal(t, TypeStandard, r.Type)
	assert.Equal(t, "Here are some footwear items you might like!", r.Message)
	require.Len(t, r.Products, 1)
	assert.Equal(t, 1000, r.Products[0].Price)
}

func TestRound(t *testing.T) {
	assert.Equal(t, 0.87, Round(0.8712, 2))
	assert.Equal(t, 0.123, Round(0.12345, 3))
}
