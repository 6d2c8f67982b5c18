package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func TestMiddlewareCountsRequests(t *testing.T) {
	r := gin.New()
	r.Use(Middleware())
	r.GET("/ping", func(c *gin.Context) { c.String(http.StatusTeapot, "pong") })

	before := testutil.ToFloat64(requestCount.WithLabelValues("/ping", "GET", "418"))
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/ping", nil))

	assert.Equal(t, http.StatusTeapot, w.Code)
	assert.Equal(t, before+1, testutil.ToFloat64(requestCount.WithLabelValues("/ping", "GET", "418")))
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveAnalysis(10*time.Millisecond, false)
	CacheLookup(true)
	WebhookDelivery("timeout")
	DetectedEmotion("happy")

	r := gin.New()
	r.GET("/metrics", Handler())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	for _, name := range []string{
		"emotion_analysis_duration_seconds",
		"emotion_cache_lookups_total",
		"webhook_deliveries_total",
		"emotion_detected_total",
	} {
		assert.True(t, strings.Contains(body, name), name)
	}
}
