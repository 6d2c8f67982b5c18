package service

import (
	"time"

	"github.com/krau/moodshop/cache"
	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/emotion"
	"github.com/krau/moodshop/webhook"
)

const SourceMock = "mock_data"

// DetectResponse is the body of a successful detection request.
type DetectResponse struct {
	Emotion        emotion.Emotion         `json:"emotion"`
	Confidence     float64                 `json:"confidence"`
	Timestamp      string                  `json:"timestamp"`
	AllEmotions    map[string]float64      `json:"all_emotions"`
	Fallback       bool                    `json:"fallback,omitempty"`
	Message        string                  `json:"message,omitempty"`
	WebhookStatus  *webhook.Result         `json:"webhook_status,omitempty"`
	Recommendation *emotion.Recommendation `json:"recommendation,omitempty"`
	Source         string                  `json:"source,omitempty"`
}

// Detector wires the analyzer, the result cache and the optional webhook
// into the detection pipeline.
type Detector struct {
	analyzer  emotion.Analyzer
	cache     cache.Cache
	webhook   *webhook.Client
	maxWidth  int
	maxHeight int
	now       func() time.Time
}

// NewDetector builds a Detector. A nil cache disables caching and a nil
// webhook client makes every response carry a mock recommendation.
func NewDetector(analyzer emotion.Analyzer, c cache.Cache, wh *webhook.Client, cfg config.AnalyzerConfig) *Detector {
	if c == nil {
		c = cache.Nop{}
	}
	return &Detector{
		analyzer:  analyzer,
		cache:     c,
		webhook:   wh,
		maxWidth:  cfg.MaxWidth,
		maxHeight: cfg.MaxHeight,
		now:       time.Now,
	}
}

func (d *Detector) CacheName() string {
	return d.cache.Name()
}
