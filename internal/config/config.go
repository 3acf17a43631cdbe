package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds the environment driven configuration for the media service.
type Config struct {
	// Service Configuration
	ServiceName     string        `env:"SERVICE_NAME" envDefault:"media-api"`
	Environment     string        `env:"ENVIRONMENT" envDefault:"development"`
	HTTPPort        int           `env:"MEDIA_API_PORT" envDefault:"4000"`
	LogLevel        string        `env:"MEDIA_LOG_LEVEL" envDefault:"info"`
	EnableTracing   bool          `env:"ENABLE_TRACING" envDefault:"false"`
	OTLPEndpoint    string        `env:"OTEL_EXPORTER_OTLP_ENDPOINT" envDefault:""`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`

	// External tools
	YtDlpPath  string `env:"YT_DLP_PATH" envDefault:"yt-dlp"`
	FfmpegPath string `env:"FFMPEG_PATH" envDefault:"ffmpeg"`

	// Extractor limits. Instagram extractions regularly take longer and emit
	// larger JSON dumps than TikTok/X, so they carry their own knobs.
	ExtractTimeout      time.Duration `env:"MEDIA_EXTRACT_TIMEOUT" envDefault:"30s"`
	ExtractTimeoutSlow  time.Duration `env:"MEDIA_EXTRACT_TIMEOUT_SLOW" envDefault:"45s"`
	ExtractMaxOutput    int64         `env:"MEDIA_EXTRACT_MAX_OUTPUT" envDefault:"2097152"`
	ExtractMaxOutputBig int64         `env:"MEDIA_EXTRACT_MAX_OUTPUT_BIG" envDefault:"4194304"`

	// Streaming proxy
	StreamTimeout   time.Duration `env:"MEDIA_STREAM_TIMEOUT" envDefault:"5m"`
	FetchTimeout    time.Duration `env:"MEDIA_FETCH_TIMEOUT" envDefault:"30s"`
	ExtraMediaHosts []string      `env:"MEDIA_EXTRA_ALLOWED_HOSTS" envSeparator:","`

	// Result cache
	CacheTTL time.Duration `env:"MEDIA_CACHE_TTL" envDefault:"1h"`

	// Rate limits (requests per minute per client IP)
	ResolveRateLimit float64 `env:"MEDIA_RESOLVE_RATE_LIMIT" envDefault:"30"`
	ProxyRateLimit   float64 `env:"MEDIA_PROXY_RATE_LIMIT" envDefault:"60"`
	ShrinkRateLimit  float64 `env:"MEDIA_SHRINK_RATE_LIMIT" envDefault:"5"`

	// Shrink endpoint
	TempDir        string `env:"MEDIA_TEMP_DIR" envDefault:"/tmp"`
	ShrinkMaxBytes int64  `env:"MEDIA_SHRINK_MAX_BYTES" envDefault:"104857600"`
}

// Load parses environment variables into Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env config: %w", err)
	}

	cfg.YtDlpPath = strings.TrimSpace(cfg.YtDlpPath)
	if cfg.YtDlpPath == "" {
		cfg.YtDlpPath = "yt-dlp"
	}
	cfg.FfmpegPath = strings.TrimSpace(cfg.FfmpegPath)
	if cfg.FfmpegPath == "" {
		cfg.FfmpegPath = "ffmpeg"
	}
	if cfg.ShrinkMaxBytes <= 0 {
		cfg.ShrinkMaxBytes = 100 * 1024 * 1024
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = time.Hour
	}
	return cfg, nil
}

// Addr returns the HTTP listen address.
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.HTTPPort)
}

// ShrinkMaxMB returns the shrink upload limit in whole megabytes for display.
func (c *Config) ShrinkMaxMB() int64 {
	return c.ShrinkMaxBytes / (1024 * 1024)
}
