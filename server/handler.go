package server

import (
	"context"
	"crypto/subtle"
	"errors"
	"image"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"

	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/emotion"
	"github.com/krau/moodshop/service"
)

var (
	errUnauthorized = errors.New("unauthorized")
)

const Version = "1.0.0"

type Server struct {
	detector *service.Detector
	cfg      config.Config
}

func New(detector *service.Detector, cfg config.Config) *Server {
	return &Server{detector: detector, cfg: cfg}
}

// DetectRequest is the JSON form of a detection request.
type DetectRequest struct {
	Image string `json:"image"`
	emotion.Shopper
}

func now() string {
	return time.Now().UTC().Format(emotion.TimestampLayout)
}

func fail(c *gin.Context, status int, errMsg, message string) {
	c.JSON(status, gin.H{"error": errMsg, "message": message})
}

func (s *Server) authenticate(c *gin.Context) error {
	auth := c.GetHeader("Authorization")

	expectedToken := s.cfg.Token
	if expectedToken == "" {
		return nil
	}
	providedToken := ""
	if len(auth) > 7 && auth[:7] == "Bearer " {
		providedToken = auth[7:]
	}
	if subtle.ConstantTimeCompare([]byte(providedToken), []byte(expectedToken)) != 1 {
		return errUnauthorized
	}

	return nil
}

func (s *Server) DetectEmotionHandler(c *gin.Context) {
	if err := s.authenticate(c); err != nil {
		fail(c, http.StatusUnauthorized, "Unauthorized", "Missing or invalid bearer token")
		return
	}
	if s.cfg.MaxUploadMB > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.cfg.MaxUploadMB<<20)
	}

	var (
		img     *image.NRGBA
		shopper emotion.Shopper
		err     error
	)
	contentType := c.ContentType()
	switch {
	case strings.Contains(contentType, "application/json"):
		var req DetectRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			if tooLarge(err) {
				fail(c, http.StatusRequestEntityTooLarge, "Payload too large", "The uploaded image exceeds the size limit")
				return
			}
			if errors.Is(err, io.EOF) {
				fail(c, http.StatusBadRequest, "No image data provided", "Please provide 'image' field with base64 encoded image")
				return
			}
			fail(c, http.StatusBadRequest, "Invalid JSON", "Request body is not valid JSON")
			return
		}
		if req.Image == "" {
			fail(c, http.StatusBadRequest, "No image data provided", "Please provide 'image' field with base64 encoded image")
			return
		}
		shopper = req.Shopper
		img, err = service.DecodeBase64Image(req.Image, s.cfg.Analyzer.MaxPixels)

	case strings.Contains(contentType, "multipart/form-data"):
		fileHeader, ferr := c.FormFile("image")
		if ferr != nil {
			if tooLarge(ferr) {
				fail(c, http.StatusRequestEntityTooLarge, "Payload too large", "The uploaded image exceeds the size limit")
				return
			}
			// parts without a filename are parsed as plain values
			if _, ok := c.GetPostForm("image"); ok {
				fail(c, http.StatusBadRequest, "No file selected", "Please select an image file")
				return
			}
			fail(c, http.StatusBadRequest, "No image file provided", "Please upload an image file with field name 'image'")
			return
		}
		if fileHeader.Filename == "" {
			fail(c, http.StatusBadRequest, "No file selected", "Please select an image file")
			return
		}
		if err := c.ShouldBindWith(&shopper, binding.FormMultipart); err != nil {
			fail(c, http.StatusBadRequest, "Invalid form field", err.Error())
			return
		}
		file, ferr := fileHeader.Open()
		if ferr != nil {
			fail(c, http.StatusBadRequest, "Invalid image format", "Could not open the uploaded file")
			return
		}
		defer file.Close()
		img, err = service.DecodeImage(file, s.cfg.Analyzer.MaxPixels)

	default:
		fail(c, http.StatusBadRequest, "Unsupported content type", "Please use application/json with base64 image or multipart/form-data")
		return
	}

	if errors.Is(err, service.ErrTooManyPixels) {
		slog.Warn("Rejected oversized image", slog.String("error", err.Error()))
		fail(c, http.StatusBadRequest, "Invalid image format", "Image dimensions exceed the allowed size")
		return
	}
	if err != nil {
		slog.Debug("Image decode failed", slog.String("error", err.Error()))
		fail(c, http.StatusBadRequest, "Invalid image format", "Could not decode the provided image")
		return
	}

	resp := s.detector.Detect(c.Request.Context(), img, shopper)
	c.JSON(http.StatusOK, resp)
}

func tooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

func (s *Server) HealthHandler(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 30*time.Second)
	defer cancel()

	if err := s.detector.Health(ctx); err != nil {
		slog.Error("Health check failed", slog.String("error", err.Error()))
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":    "unhealthy",
			"message":   "Emotion analyzer initialization failed",
			"error":     err.Error(),
			"timestamp": now(),
		})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"status":          "healthy",
		"message":         "Emotion detection API is running",
		"timestamp":       now(),
		"analyzer_status": "operational",
		"cache":           s.detector.CacheName(),
	})
}

func (s *Server) IndexHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"message": "Facial Emotion Detection API",
		"version": Version,
		"endpoints": gin.H{
			"detect_emotion": gin.H{
				"url":         "/detect_emotion",
				"method":      "POST",
				"description": "Detect emotion from uploaded image",
				"input":       "base64 string or multipart/form-data image file",
			},
			"health": gin.H{
				"url":    "/health",
				"method": "GET",
			},
			"metrics": gin.H{
				"url":    "/metrics",
				"method": "GET",
			},
		},
		"supported_emotions": emotion.All,
	})
}

func NotFoundHandler(c *gin.Context) {
	c.JSON(http.StatusNotFound, gin.H{
		"error":               "Endpoint not found",
		"message":             "The requested endpoint does not exist",
		"available_endpoints": []string{"/", "/detect_emotion", "/health", "/metrics"},
	})
}

func recoverHandler(c *gin.Context, recovered any) {
	slog.Error("Unexpected error", slog.Any("panic", recovered))
	c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
		"error":     "Internal server error",
		"message":   "An unexpected error occurred",
		"timestamp": now(),
	})
}
