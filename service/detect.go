package service

import (
	"context"
	"image"
	"image/color"

	"github.com/disintegration/imaging"

	"github.com/krau/moodshop/emotion"
	"github.com/krau/moodshop/metrics"
)

// Detect analyzes img and attaches either the webhook delivery status or a
// mock recommendation for the shopper.
func (d *Detector) Detect(ctx context.Context, img *image.NRGBA, shopper emotion.Shopper) *DetectResponse {
	a := d.Analyze(ctx, img)
	metrics.DetectedEmotion(string(a.Emotion))

	resp := &DetectResponse{
		Emotion:     a.Emotion,
		Confidence:  a.Confidence,
		Timestamp:   a.Timestamp,
		AllEmotions: a.AllEmotions,
		Fallback:    a.Fallback,
		Message:     a.Message,
	}

	if a.Success && d.webhook != nil {
		payload := emotion.BuildPayload(shopper, a, d.now())
		result := d.webhook.Send(ctx, payload)
		if result.Success {
			metrics.WebhookDelivery("success")
			resp.WebhookStatus = &result
			return resp
		}
		metrics.WebhookDelivery(result.Error)
	}

	rec := emotion.MockRecommendation(a.Emotion, shopper)
	resp.Recommendation = &rec
	resp.Source = SourceMock
	return resp
}

// Health runs a blank frame straight through the analyzer, bypassing the
// cache and the neutral fallback.
func (d *Detector) Health(ctx context.Context) error {
	blank := imaging.New(100, 100, color.Black)
	_, err := d.analyzer.Analyze(ctx, blank)
	return err
}
