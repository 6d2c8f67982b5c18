// Package remote delegates emotion analysis to a DeepFace compatible HTTP
// service, for deployments where the model runs outside this process.
package remote

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"image"
	"io"
	"net/http"
	"time"

	"github.com/disintegration/imaging"

	"github.com/krau/moodshop/emotion"
)

const maxResponseBytes = 1 << 20

type Analyzer struct {
	url    string
	client *http.Client
}

var _ emotion.Analyzer = (*Analyzer)(nil)

func NewAnalyzer(url string, timeout time.Duration) *Analyzer {
	return &Analyzer{
		url:    url,
		client: &http.Client{Timeout: timeout},
	}
}

type analyzeRequest struct {
	Img              string   `json:"img"`
	Actions          []string `json:"actions"`
	EnforceDetection bool     `json:"enforce_detection"`
	DetectorBackend  string   `json:"detector_backend"`
}

type faceResult struct {
	Emotion         map[string]float64 `json:"emotion"`
	DominantEmotion string             `json:"dominant_emotion"`
}

type analyzeResponse struct {
	Results []faceResult `json:"results"`
}

func (a *Analyzer) Analyze(ctx context.Context, img image.Image) ([]emotion.Face, error) {
	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.JPEG); err != nil {
		return nil, fmt.Errorf("encode image: %w", err)
	}
	body, err := json.Marshal(analyzeRequest{
		Img:              "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(buf.Bytes()),
		Actions:          []string{"emotion"},
		EnforceDetection: false,
		DetectorBackend:  "opencv",
	})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("analyzer returned status %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}

	results, err := decodeResults(data)
	if err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}

	faces := make([]emotion.Face, 0, len(results))
	for _, r := range results {
		scores := make(map[string]float64, len(r.Emotion))
		for label, pct := range r.Emotion {
			scores[label] = pct / 100
		}
		faces = append(faces, emotion.FaceFromLabels(scores))
	}
	return faces, nil
}

// decodeResults accepts both {"results": [...]} and a bare list.
func decodeResults(data []byte) ([]faceResult, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '[' {
		var list []faceResult
		err := json.Unmarshal(trimmed, &list)
		return list, err
	}
	var resp analyzeResponse
	if err := json.Unmarshal(trimmed, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// Ping checks that the service answers at all.
func (a *Analyzer) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, a.url, nil)
	if err != nil {
		return err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return err
	}
	resp.Body.Close()
	if resp.StatusCode >= 500 {
		return fmt.Errorf("analyzer unhealthy: %d", resp.StatusCode)
	}
	return nil
}
