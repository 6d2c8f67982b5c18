package emotion

import "time"

const (
	DefaultPrice      = 1000.0
	DefaultCategory   = "Apparel"
	DefaultDeviceType = "web"
)

// Shopper is the optional product and session context sent alongside an image.
type Shopper struct {
	UserID         string   `json:"userId,omitempty" form:"userId"`
	ProductID      string   `json:"productId,omitempty" form:"productId"`
	Price          *float64 `json:"price,omitempty" form:"price"`
	Category       string   `json:"category,omitempty" form:"category"`
	Gender         string   `json:"gender,omitempty" form:"gender"`
	SubCategory    string   `json:"subCategory,omitempty" form:"subCategory"`
	ArticleType    string   `json:"articleType,omitempty" form:"articleType"`
	SessionID      string   `json:"sessionId,omitempty" form:"sessionId"`
	DeviceType     string   `json:"deviceType,omitempty" form:"deviceType"`
	Location       string   `json:"location,omitempty" form:"location"`
	EmotionHistory []string `json:"emotionHistory,omitempty" form:"emotionHistory"`
}

func (s Shopper) BasePrice() float64 {
	if s.Price == nil {
		return DefaultPrice
	}
	return *s.Price
}

func (s Shopper) CategoryOrDefault() string {
	if s.Category == "" {
		return DefaultCategory
	}
	return s.Category
}

type PriceRange struct {
	Min       int `json:"min"`
	Max       int `json:"max"`
	Preferred int `json:"preferred"`
}

type OriginalProduct struct {
	ID          string  `json:"id,omitempty"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Gender      string  `json:"gender,omitempty"`
	SubCategory string  `json:"subCategory,omitempty"`
	ArticleType string  `json:"articleType,omitempty"`
}

type Preferences struct {
	PriceRange PriceRange `json:"priceRange"`
	Categories []string   `json:"categories"`
	Colors     []string   `json:"colors"`
	Usage      []string   `json:"usage"`
	Multiplier float64    `json:"multiplier"`
}

type Filters struct {
	Available  bool    `json:"available"`
	MinRating  float64 `json:"minRating"`
	MaxResults int     `json:"maxResults"`
	SortBy     string  `json:"sortBy"`
}

type PayloadContext struct {
	OriginalProduct OriginalProduct `json:"originalProduct"`
	Preferences     Preferences     `json:"preferences"`
	Filters         Filters         `json:"filters"`
}

type Analytics struct {
	SessionID        string   `json:"sessionId,omitempty"`
	DeviceType       string   `json:"deviceType"`
	Location         string   `json:"location,omitempty"`
	PreviousEmotions []string `json:"previousEmotions"`
}

// Payload is what gets forwarded to the recommendation webhook.
type Payload struct {
	UserID     string         `json:"userId,omitempty"`
	Emotion    Emotion        `json:"emotion"`
	Confidence float64        `json:"confidence"`
	Timestamp  string         `json:"timestamp"`
	Context    PayloadContext `json:"context"`
	Analytics  Analytics      `json:"analytics"`
}

func TargetPriceRange(base float64, e Emotion) PriceRange {
	m := PriceMultiplier(e)
	return PriceRange{
		Min:       int(base * m * 0.5),
		Max:       int(base * m * 1.5),
		Preferred: int(base * m),
	}
}

func BuildPayload(s Shopper, a Analysis, now time.Time) Payload {
	e := a.Emotion
	if e == "" {
		e = Neutral
	}
	base := s.BasePrice()

	sortBy := "price"
	if e == Happy {
		sortBy = "rating"
	}
	deviceType := s.DeviceType
	if deviceType == "" {
		deviceType = DefaultDeviceType
	}
	history := s.EmotionHistory
	if history == nil {
		history = []string{}
	}

	return Payload{
		UserID:     s.UserID,
		Emotion:    e,
		Confidence: a.Confidence,
		Timestamp:  now.Format(time.RFC3339Nano),
		Context: PayloadContext{
			OriginalProduct: OriginalProduct{
				ID:          s.ProductID,
				Price:       base,
				Category:    s.CategoryOrDefault(),
				Gender:      s.Gender,
				SubCategory: s.SubCategory,
				ArticleType: s.ArticleType,
			},
			Preferences: Preferences{
				PriceRange: TargetPriceRange(base, e),
				Categories: Categories(e),
				Colors:     Colors(e),
				Usage:      Usage(e),
				Multiplier: PriceMultiplier(e),
			},
			Filters: Filters{
				Available:  true,
				MinRating:  3.5,
				MaxResults: 20,
				SortBy:     sortBy,
			},
		},
		Analytics: Analytics{
			SessionID:        s.SessionID,
			DeviceType:       deviceType,
			Location:         s.Location,
			PreviousEmotions: history,
		},
	}
}
