package emotion

import (
	"context"
	"image"
	"math"
	"strings"
)

type Emotion string

const (
	Angry    Emotion = "angry"
	Disgust  Emotion = "disgust"
	Fear     Emotion = "fear"
	Happy    Emotion = "happy"
	Sad      Emotion = "sad"
	Surprise Emotion = "surprise"
	Neutral  Emotion = "neutral"
)

// All lists the supported emotions in the order they are advertised.
var All = []Emotion{Angry, Disgust, Fear, Happy, Sad, Surprise, Neutral}

var aliases = map[string]Emotion{
	"angry":     Angry,
	"anger":     Angry,
	"disgust":   Disgust,
	"contempt":  Disgust,
	"fear":      Fear,
	"happy":     Happy,
	"happiness": Happy,
	"sad":       Sad,
	"sadness":   Sad,
	"surprise":  Surprise,
	"surprised": Surprise,
	"neutral":   Neutral,
}

// Normalize maps a model label onto a supported emotion.
func Normalize(label string) (Emotion, bool) {
	e, ok := aliases[strings.ToLower(strings.TrimSpace(label))]
	return e, ok
}

// Face holds per-emotion probabilities in [0,1] for one detected face.
type Face struct {
	Scores map[Emotion]float64
}

// Dominant returns the highest scoring emotion. Ties resolve in All order.
func (f Face) Dominant() (Emotion, float64) {
	best, bestScore := Neutral, math.Inf(-1)
	for _, e := range All {
		s, ok := f.Scores[e]
		if ok && s > bestScore {
			best, bestScore = e, s
		}
	}
	if math.IsInf(bestScore, -1) {
		return Neutral, 0
	}
	return best, bestScore
}

// FaceFromLabels folds raw model labels into a Face, summing aliases and
// dropping labels that are not recognised. NaN and infinite scores are
// discarded.
func FaceFromLabels(scores map[string]float64) Face {
	f := Face{Scores: make(map[Emotion]float64, len(All))}
	for label, v := range scores {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			continue
		}
		if e, ok := Normalize(label); ok {
			f.Scores[e] += v
		}
	}
	return f
}

// Analyzer is the external emotion model. An empty result means no face
// was found in the image.
type Analyzer interface {
	Analyze(ctx context.Context, img image.Image) ([]Face, error)
}

const TimestampLayout = "2006-01-02T15:04:05Z"

// Analysis is the outcome of running the analyzer on one image.
type Analysis struct {
	Emotion        Emotion            `json:"emotion"`
	Confidence     float64            `json:"confidence"`
	AllEmotions    map[string]float64 `json:"all_emotions"`
	Timestamp      string             `json:"timestamp"`
	Success        bool               `json:"success"`
	ProcessingTime float64            `json:"processing_time,omitempty"`
	Fallback       bool               `json:"fallback,omitempty"`
	OriginalError  string             `json:"original_error,omitempty"`
	Message        string             `json:"message,omitempty"`
}

func Round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}
