package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	ort "github.com/yalue/onnxruntime_go"
	"golang.org/x/sync/errgroup"

	"github.com/krau/moodshop/cache"
	"github.com/krau/moodshop/config"
	"github.com/krau/moodshop/emotion"
	"github.com/krau/moodshop/onnx"
	"github.com/krau/moodshop/remote"
	"github.com/krau/moodshop/server"
	"github.com/krau/moodshop/service"
	"github.com/krau/moodshop/webhook"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// .env is optional
	_ = godotenv.Load()
	cfg := config.C()
	slog.Info("Starting emotion detection API", slog.String("analyzer", cfg.Analyzer.Backend))

	analyzer, closeAnalyzer, err := newAnalyzer(ctx, cfg.Analyzer)
	if err != nil {
		slog.Error("Failed to initialize analyzer", slog.String("error", err.Error()))
		return
	}
	defer closeAnalyzer()

	c := cache.New(ctx, cfg.Cache)
	if r, ok := c.(*cache.Redis); ok {
		defer r.Close()
	}

	var wh *webhook.Client
	if cfg.Webhook.Url != "" {
		wh = webhook.NewClient(cfg.Webhook.Url, cfg.Webhook.UserAgent, time.Duration(cfg.Webhook.Timeout)*time.Second)
		slog.Info("Webhook enabled", slog.String("url", wh.URL()))
	} else {
		slog.Warn("WEBHOOK_URL not set, mock recommendations will be returned")
	}

	detector := service.NewDetector(analyzer, c, wh, cfg.Analyzer)
	if err := detector.Health(ctx); err != nil {
		slog.Warn("Analyzer warm-up failed", slog.String("error", err.Error()))
	} else {
		slog.Info("Analyzer preloaded", slog.String("cache", detector.CacheName()))
	}

	gin.SetMode(gin.ReleaseMode)
	srv := &http.Server{
		Addr:    cfg.Host + ":" + cfg.Port,
		Handler: server.New(detector, cfg).Router(),
	}

	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		slog.Info("Listening on", slog.String("address", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	group.Go(func() error {
		<-groupCtx.Done()
		slog.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := group.Wait(); err != nil {
		slog.Error("Server error", slog.String("error", err.Error()))
	}
}

func newAnalyzer(ctx context.Context, cfg config.AnalyzerConfig) (emotion.Analyzer, func(), error) {
	switch cfg.Backend {
	case "remote":
		a := remote.NewAnalyzer(cfg.RemoteUrl, time.Duration(cfg.RemoteTimeout)*time.Second)
		if err := a.Ping(ctx); err != nil {
			slog.Warn("Remote analyzer is not reachable yet", slog.String("url", cfg.RemoteUrl), slog.String("error", err.Error()))
		}
		return a, func() {}, nil
	default:
		ort.SetSharedLibraryPath(onnx.LibPath())
		if err := ort.InitializeEnvironment(); err != nil {
			return nil, nil, err
		}
		modelPath, err := onnx.EnsureModel(ctx, cfg.ModelDir, cfg.ModelFileName, cfg.ModelUrl)
		if err != nil {
			ort.DestroyEnvironment()
			return nil, nil, err
		}
		classifier, err := onnx.NewClassifier(modelPath, cfg)
		if err != nil {
			ort.DestroyEnvironment()
			return nil, nil, err
		}
		return classifier, func() {
			classifier.Close()
			ort.DestroyEnvironment()
		}, nil
	}
}
