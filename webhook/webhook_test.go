package webhook

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendSuccess(t *testing.T) {
	var gotBody map[string]any
	var gotUA, gotCT string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		gotCT = r.Header.Get("Content-Type")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "Emotion-Detection-API/1.0", time.Second)
	res := c.Send(context.Background(), map[string]string{"emotion": "happy"})

	assert.True(t, res.Success)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	assert.Equal(t, "Emotion-Detection-API/1.0", gotUA)
	assert.Equal(t, "application/json", gotCT)
	assert.Equal(t, "happy", gotBody["emotion"])
}

func TestSendHTTPError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	res := NewClient(srv.URL, "ua", time.Second).Send(context.Background(), struct{}{})
	assert.False(t, res.Success)
	assert.Equal(t, ErrHTTP, res.Error)
	assert.Equal(t, http.StatusNotFound, res.StatusCode)
}

func TestSendTimeout(t *testing.T) {
	done := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-done:
		case <-time.After(2 * time.Second):
		}
	}))
	defer srv.Close()
	defer close(done)

	res := NewClient(srv.URL, "ua", 50*time.Millisecond).Send(context.Background(), struct{}{})
	assert.False(t, res.Success)
	assert.Equal(t, ErrTimeout, res.Error)
}

func TestSendConnectionError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	res := NewClient(url, "ua", time.Second).Send(context.Background(), struct{}{})
	assert.False(t, res.Success)
	assert.Equal(t, ErrConnection, res.Error)
}

func TestSendUnmarshalablePayload(t *testing.T) {
	res := NewClient("http://127.0.0.1:1", "ua", time.Second).Send(context.Background(), make(chan int))
	require.False(t, res.Success)
	assert.Equal(t, ErrUnexpected, res.Error)
}
