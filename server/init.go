package server

import (
	"slices"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/metrics"
)

const requestIDHeader = "X-Request-ID"

func (s *Server) Router() *gin.Engine {
	r := gin.New()
	r.Use(requestID(), metrics.Middleware(), gin.CustomRecovery(recoverHandler), cors.New(corsConfig(s.cfg)))

	r.GET("/", s.IndexHandler)
	r.POST("/detect_emotion", s.DetectEmotionHandler)
	r.GET("/health", s.HealthHandler)
	r.GET("/metrics", metrics.Handler())
	r.NoRoute(NotFoundHandler)
	return r
}

func corsConfig(cfg config.Config) cors.Config {
	cc := cors.DefaultConfig()
	cc.AllowMethods = []string{"GET", "POST", "OPTIONS"}
	cc.AllowHeaders = []string{"Origin", "Content-Type", "Authorization"}
	if len(cfg.CorsOrigins) == 0 || slices.Contains(cfg.CorsOrigins, "*") {
		cc.AllowAllOrigins = true
	} else {
		cc.AllowOrigins = cfg.CorsOrigins
	}
	return cc
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}
