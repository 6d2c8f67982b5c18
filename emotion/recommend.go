package emotion

import (
	"fmt"
	"strings"
)

const (
	TypePremium  = "premium_recommendation"
	TypeCheaper  = "cheaper_alternative"
	TypeWellness = "wellness"
	TypeStandard = "standard_response"
)

type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    int     `json:"price"`
	Category string  `json:"category"`
	Rating   float64 `json:"rating"`
	Features string  `json:"features"`
	Image    string  `json:"image"`
}

type ProductList struct {
	All []Product `json:"all"`
}

type Link struct {
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Content     string `json:"content,omitempty"`
	URL         string `json:"url"`
}

type Wellness struct {
	Quote          string `json:"quote"`
	JournalApp     Link   `json:"journalApp"`
	CalmingContent Link   `json:"calmingContent"`
}

// Recommendation is the canned suggestion returned when no webhook answered.
// Which fields are set depends on Type.
type Recommendation struct {
	Type            string       `json:"type"`
	Message         string       `json:"message"`
	Recommendations *ProductList `json:"recommendations,omitempty"`
	BestAlternative *Product     `json:"bestAlternative,omitempty"`
	Savings         *int         `json:"savings,omitempty"`
	Wellness        *Wellness    `json:"wellness,omitempty"`
	Products        []Product    `json:"products,omitempty"`
}

func MockRecommendation(e Emotion, s Shopper) Recommendation {
	base := s.BasePrice()
	category := s.CategoryOrDefault()

	switch e {
	case Happy:
		return Recommendation{
			Type:    TypePremium,
			Message: "Since you're feeling great, check out these premium items! ✨",
			Recommendations: &ProductList{All: []Product{{
				ID:       "premium_001",
				Name:     fmt.Sprintf("Premium %s Collection", category),
				Price:    int(base * 1.5),
				Category: category,
				Rating:   4.8,
				Features: "High-quality materials, premium design",
				Image:    "https://via.placeholder.com/300x300?text=Premium+Product",
			}}},
		}
	case Sad:
		savings := int(base * 0.3)
		return Recommendation{
			Type:    TypeCheaper,
			Message: "Here are some budget-friendly options that might help! 💰",
			BestAlternative: &Product{
				ID:       "budget_001",
				Name:     fmt.Sprintf("Affordable %s Option", category),
				Price:    int(base * 0.7),
				Category: category,
				Rating:   4.2,
				Features: "Great value, comfort-focused",
				Image:    "https://via.placeholder.com/300x300?text=Budget+Alternative",
			},
			Savings: &savings,
		}
	case Angry, Fear, Disgust:
		return Recommendation{
			Type:    TypeWellness,
			Message: "We've noticed you might need some emotional support. Take care of yourself! 🧘‍♀️",
			Wellness: &Wellness{
				Quote: "Take time to breathe. You're doing better than you think. 🌸",
				JournalApp: Link{
					Name:        "Mindfulness App",
					Description: "Simple meditation and breathing exercises",
					URL:         "https://example.com/mindfulness",
				},
				CalmingContent: Link{
					Name:    "Peaceful Sounds",
					Content: "Relaxing nature sounds for stress relief",
					URL:     "https://example.com/calm-sounds",
				},
			},
		}
	default:
		return Recommendation{
			Type:    TypeStandard,
			Message: fmt.Sprintf("Here are some %s items you might like!", strings.ToLower(category)),
			Products: []Product{{
				ID:       "standard_001",
				Name:     fmt.Sprintf("Popular %s Item", category),
				Price:    int(base),
				Category: category,
				Rating:   4.4,
				Features: "Popular choice, great reviews",
				Image:    "https://via.placeholder.com/300x300?text=Popular+Product",
			}},
		}
	}
}
