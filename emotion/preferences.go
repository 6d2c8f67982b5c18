package emotion

var priceMultipliers = map[Emotion]float64{
	Happy:    1.3,
	Sad:      0.7,
	Angry:    0.9,
	Surprise: 1.1,
	Fear:     0.8,
	Disgust:  0.6,
	Neutral:  1.0,
}

var categoryPreferences = map[Emotion][]string{
	Happy:    {"Apparel", "Accessories", "Electronics", "Footwear"},
	Sad:      {"Apparel", "Personal Care", "Home & Kitchen"},
	Angry:    {"Sports", "Fitness", "Electronics"},
	Surprise: {"Accessories", "Electronics", "Gifts"},
	Fear:     {"Apparel", "Home & Kitchen"},
	Disgust:  {"Personal Care", "Health"},
	Neutral:  {"Apparel", "Accessories"},
}

var colorPreferences = map[Emotion][]string{
	Happy:    {"Yellow", "Orange", "Pink", "Bright", "Colorful"},
	Sad:      {"Blue", "Grey", "Black", "Neutral"},
	Angry:    {"Red", "Black", "Dark"},
	Surprise: {"Bright", "Colorful", "Unique"},
	Fear:     {"Neutral", "Calm", "Soft"},
	Disgust:  {"Clean", "Fresh", "Light"},
	Neutral:  {"Any"},
}

var usagePreferences = map[Emotion][]string{
	Happy:    {"Party", "Formal", "Special"},
	Sad:      {"Casual", "Comfort"},
	Angry:    {"Sports", "Active"},
	Surprise: {"Party", "Unique"},
	Fear:     {"Casual", "Safe"},
	Disgust:  {"Clean", "Fresh"},
	Neutral:  {"Casual", "Everyday"},
}

// PriceMultiplier is how much more (or less) a shopper in this mood is
// assumed to spend.
func PriceMultiplier(e Emotion) float64 {
	if m, ok := priceMultipliers[e]; ok {
		return m
	}
	return 1.0
}

func Categories(e Emotion) []string {
	return lookup(categoryPreferences, e, "Apparel")
}

func Colors(e Emotion) []string {
	return lookup(colorPreferences, e, "Any")
}

func Usage(e Emotion) []string {
	return lookup(usagePreferences, e, "Casual")
}

func lookup(table map[Emotion][]string, e Emotion, def string) []string {
	v, ok := table[e]
	if !ok {
		return []string{def}
	}
	out := make([]string, len(v))
	copy(out, v)
	return out
}
