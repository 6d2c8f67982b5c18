package remote

import (
	"context"
	"encoding/json"
	"image"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/krau/moodshop/emotion"
)

func testImage() image.Image {
	return image.NewRGBA(image.Rect(0, 0, 32, 32))
}

func TestAnalyzeParsesResults(t *testing.T) {
	var got analyzeRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Write([]byte(`{"results":[{"emotion":{"happy":80,"sad":15,"neutral":5},"dominant_emotion":"happy"}]}`))
	}))
	defer srv.Close()

	faces, err := NewAnalyzer(srv.URL, time.Second).Analyze(context.Background(), testImage())
	require.NoError(t, err)
	require.Len(t, faces, 1)

	e, score := faces[0].Dominant()
	assert.Equal(t, emotion.Happy, e)
	assert.InDelta(t, 0.8, score, 1e-9)
	assert.True(t, strings.HasPrefix(got.Img, "data:image/jpeg;base64,"))
	assert.Equal(t, []string{"emotion"}, got.Actions)
}

func TestAnalyzeBareListAndNoFace(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	faces, err := NewAnalyzer(srv.URL, time.Second).Analyze(context.Background(), testImage())
	require.NoError(t, err)
	assert.Empty(t, faces)
}

func TestAnalyzeErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := NewAnalyzer(srv.URL, time.Second).Analyze(context.Background(), testImage())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "500")
}

func TestAnalyzeBadJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	_, err := NewAnalyzer(srv.URL, time.Second).Analyze(context.Background(), testImage())
	assert.Error(t, err)
}

func TestAnalyzeBoundsResponseSize(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"results":[],"pad":"` + strings.Repeat("x", 2*maxResponseBytes) + `"}`))
	}))
	defer srv.Close()

	_, err := NewAnalyzer(srv.URL, time.Second).Analyze(context.Background(), testImage())
	assert.ErrorContains(t, err, "decode response")
}

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusMethodNotAllowed)
	}))
	a := NewAnalyzer(srv.URL, time.Second)
	assert.NoError(t, a.Ping(context.Background()))

	srv.Close()
	assert.Error(t, a.Ping(context.Background()))
}
