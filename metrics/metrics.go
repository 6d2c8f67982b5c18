package metrics

import (
	"log/slog"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	requestCount = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"path", "method", "status"},
	)
	requestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{"path"},
	)
	analysisDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "emotion_analysis_duration_seconds",
			Help:    "Time spent in the emotion analyzer",
			Buckets: []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30},
		}, []string{"outcome"},
	)
	detectedEmotions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_detected_total",
			Help: "Dominant emotions returned to clients",
		}, []string{"emotion"},
	)
	cacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "emotion_cache_lookups_total",
			Help: "Analysis cache lookups by result",
		}, []string{"result"},
	)
	webhookDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "webhook_deliveries_total",
			Help: "Webhook delivery attempts by result",
		}, []string{"result"},
	)
)

func init() {
	prometheus.MustRegister(requestCount, requestDuration, analysisDuration, detectedEmotions, cacheLookups, webhookDeliveries)
}

// Middleware records request counts and latency and logs every request.
func Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		duration := time.Since(start)

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		status := c.Writer.Status()
		requestCount.WithLabelValues(path, c.Request.Method, strconv.Itoa(status)).Inc()
		requestDuration.WithLabelValues(path).Observe(duration.Seconds())

		attrs := []any{
			slog.String("method", c.Request.Method),
			slog.String("path", c.Request.URL.Path),
			slog.Int("status", status),
			slog.Duration("duration", duration),
		}
		if id := c.GetString("request_id"); id != "" {
			attrs = append(attrs, slog.String("request_id", id))
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("error", c.Errors.String()))
		}
		slog.Info("request", attrs...)
	}
}

func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}

func ObserveAnalysis(d time.Duration, fallback bool) {
	outcome := "ok"
	if fallback {
		outcome = "fallback"
	}
	analysisDuration.WithLabelValues(outcome).Observe(d.Seconds())
}

func DetectedEmotion(e string) {
	detectedEmotions.WithLabelValues(e).Inc()
}

func CacheLookup(hit bool) {
	if hit {
		cacheLookups.WithLabelValues("hit").Inc()
		return
	}
	cacheLookups.WithLabelValues("miss").Inc()
}

func WebhookDelivery(result string) {
	webhookDeliveries.WithLabelValues(result).Inc()
}
