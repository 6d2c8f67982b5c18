package service

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/krau/moodshop/emotion"
	"github.com/krau/moodshop/metrics"
)

// Analyze runs the analyzer on img. It never fails: analyzer errors produce
// a neutral fallback result.
func (d *Detector) Analyze(ctx context.Context, img *image.NRGBA) emotion.Analysis {
	b := img.Bounds()
	resized := ResizeToFit(img, d.maxWidth, d.maxHeight)
	if rb := resized.Bounds(); rb != b {
		slog.Debug("Resized image",
			slog.Int("from_width", b.Dx()), slog.Int("from_height", b.Dy()),
			slog.Int("to_width", rb.Dx()), slog.Int("to_height", rb.Dy()))
	}

	key := ImageKey(resized)
	if cached, ok := d.cache.Get(ctx, key); ok {
		metrics.CacheLookup(true)
		return *cached
	}
	metrics.CacheLookup(false)

	start := time.Now()
	faces, err := d.analyzer.Analyze(ctx, resized)
	elapsed := time.Since(start)
	timestamp := d.now().UTC().Format(emotion.TimestampLayout)

	if err != nil {
		metrics.ObserveAnalysis(elapsed, true)
		slog.Error("Error in emotion detection", slog.String("error", err.Error()))
		return emotion.Analysis{
			Emotion:       emotion.Neutral,
			Confidence:    0.5,
			AllEmotions:   map[string]float64{string(emotion.Neutral): 1.0},
			Timestamp:     timestamp,
			Success:       true,
			Fallback:      true,
			OriginalError: err.Error(),
			Message:       "Emotion detection failed, using neutral fallback",
		}
	}
	metrics.ObserveAnalysis(elapsed, false)

	var a emotion.Analysis
	if len(faces) == 0 {
		a = emotion.Analysis{
			Emotion:     emotion.Neutral,
			Confidence:  0.5,
			AllEmotions: map[string]float64{string(emotion.Neutral): 1.0},
			Timestamp:   timestamp,
			Success:     true,
			Message:     "No face detected, defaulting to neutral",
		}
	} else {
		face := faces[0]
		dominant, score := face.Dominant()
		all := make(map[string]float64, len(face.Scores))
		for e, v := range face.Scores {
			all[string(e)] = emotion.Round(v, 3)
		}
		a = emotion.Analysis{
			Emotion:        dominant,
			Confidence:     emotion.Round(score, 2),
			AllEmotions:    all,
			Timestamp:      timestamp,
			Success:        true,
			ProcessingTime: emotion.Round(elapsed.Seconds(), 2),
		}
	}

	slog.Info("Detected emotion",
		slog.String("emotion", string(a.Emotion)),
		slog.Float64("confidence", a.Confidence),
		slog.Duration("took", elapsed))
	d.cache.Set(ctx, key, a)
	return a
}
