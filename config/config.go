package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"

	"github.com/pelletier/go-toml/v2"
)

type Config struct {
	Token       string   `toml:"token" mapstructure:"token"`
	Host        string   `toml:"host" mapstructure:"host"`
	Port        string   `toml:"port" mapstructure:"port"`
	MaxUploadMB int64    `toml:"max_upload_mb" mapstructure:"max_upload_mb"`
	CorsOrigins []string `toml:"cors_origins" mapstructure:"cors_origins"`

	Analyzer AnalyzerConfig `toml:"analyzer" mapstructure:"analyzer"`
	Webhook  WebhookConfig  `toml:"webhook" mapstructure:"webhook"`
	Cache    CacheConfig    `toml:"cache" mapstructure:"cache"`
}

type AnalyzerConfig struct {
	// onnx or remote
	Backend   string `toml:"backend" mapstructure:"backend"`
	MaxWidth  int    `toml:"max_width" mapstructure:"max_width"`
	MaxHeight int    `toml:"max_height" mapstructure:"max_height"`

	// decoded images above this many pixels are rejected, 0 disables the check
	MaxPixels int `toml:"max_pixels" mapstructure:"max_pixels"`

	Libonnx       string   `toml:"libonnx" mapstructure:"libonnx"`
	ModelUrl      string   `toml:"model_url" mapstructure:"model_url"`
	ModelDir      string   `toml:"model_dir" mapstructure:"model_dir"`
	ModelFileName string   `toml:"model_file_name" mapstructure:"model_file_name"`
	Labels        []string `toml:"labels" mapstructure:"labels"`
	InputSize     int      `toml:"input_size" mapstructure:"input_size"`
	PoolSize      int      `toml:"pool_size" mapstructure:"pool_size"`

	// one label per line, overrides Labels
	LabelsFile string `toml:"labels_file" mapstructure:"labels_file"`

	// logits or probabilities
	Output string `toml:"output" mapstructure:"output"`

	RemoteUrl     string `toml:"remote_url" mapstructure:"remote_url"`
	RemoteTimeout int    `toml:"remote_timeout" mapstructure:"remote_timeout"`
}

// Timeouts and TTLs are in seconds.
type WebhookConfig struct {
	Url       string `toml:"url" mapstructure:"url"`
	Timeout   int    `toml:"timeout" mapstructure:"timeout"`
	UserAgent string `toml:"user_agent" mapstructure:"user_agent"`
}

// Backend is redis, memory or none.
type CacheConfig struct {
	Backend   string `toml:"backend" mapstructure:"backend"`
	RedisAddr string `toml:"redis_addr" mapstructure:"redis_addr"`
	RedisPass string `toml:"redis_password" mapstructure:"redis_password"`
	RedisDB   int    `toml:"redis_db" mapstructure:"redis_db"`
	TTL       int    `toml:"ttl" mapstructure:"ttl"`
}

// DefaultMaxPixels matches the decompression bomb limit of common imaging
// libraries.
const DefaultMaxPixels = 89478485

func Default() Config {
	return Config{
		Token:       "",
		Host:        "0.0.0.0",
		Port:        "5000",
		MaxUploadMB: 10,
		CorsOrigins: []string{"*"},
		Analyzer: AnalyzerConfig{
			Backend:       "onnx",
			MaxWidth:      320,
			MaxHeight:     240,
			MaxPixels:     DefaultMaxPixels,
			ModelUrl:      "https://github.com/onnx/models/raw/main/validated/vision/body_analysis/emotion_ferplus/model/emotion-ferplus-8.onnx",
			ModelDir:      "models",
			ModelFileName: "emotion-ferplus-8.onnx",
			Labels:        []string{"neutral", "happiness", "surprise", "sadness", "anger", "disgust", "fear", "contempt"},
			InputSize:     64,
			Output:        "logits",
			PoolSize:      2,
			RemoteUrl:     "http://localhost:5005/analyze",
			RemoteTimeout: 30,
		},
		Webhook: WebhookConfig{
			Url:       "",
			Timeout:   10,
			UserAgent: "Emotion-Detection-API/1.0",
		},
		Cache: CacheConfig{
			Backend:   "memory",
			RedisAddr: "localhost:6379",
			TTL:       60,
		},
	}
}

var (
	cfg      Config
	loadOnce sync.Once
)

func C() Config {
	loadOnce.Do(func() {
		path := os.Getenv("CONFIG_FILE")
		if path == "" {
			path = "config.toml"
		}
		c, err := Load(path)
		if err != nil {
			panic(err)
		}
		cfg = c
	})
	return cfg
}

// Load reads path over the defaults and applies environment overrides.
// A missing file is not an error.
func Load(path string) (Config, error) {
	c := Default()
	if _, err := os.Stat(path); err == nil {
		data, err := os.ReadFile(path)
		if err != nil {
			return c, fmt.Errorf("read config: %w", err)
		}
		if err := toml.Unmarshal(data, &c); err != nil {
			return c, fmt.Errorf("parse config: %w", err)
		}
	}
	applyEnv(&c)
	return c, nil
}

func applyEnv(c *Config) {
	setString := func(key string, dst *string) {
		if v := os.Getenv(key); v != "" {
			*dst = v
		}
	}
	setString("HOST", &c.Host)
	setString("PORT", &c.Port)
	setString("TOKEN", &c.Token)
	setString("WEBHOOK_URL", &c.Webhook.Url)
	setString("REDIS_ADDR", &c.Cache.RedisAddr)
	setString("REDIS_PASSWORD", &c.Cache.RedisPass)
	setString("CACHE_BACKEND", &c.Cache.Backend)
	setString("ANALYZER_BACKEND", &c.Analyzer.Backend)
	setString("ANALYZER_REMOTE_URL", &c.Analyzer.RemoteUrl)
	setString("ONNXRUNTIME_LIB", &c.Analyzer.Libonnx)
	if v := os.Getenv("REDIS_DB"); v != "" {
		if db, err := strconv.Atoi(v); err == nil {
			c.Cache.RedisDB = db
		}
	}
}
