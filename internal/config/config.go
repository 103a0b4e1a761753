// Package config provides application configuration loaded from environment
// variables with defaults and validation. It centralizes application settings
// such as server timeouts, logging, pipeline tuning, provider credentials,
// rate limiting, and observability.
package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"
)

// CORSConfig defines Cross-Origin Resource Sharing settings.
type CORSConfig struct {
	AllowedOrigins []string
}

// SecurityConfig defines security-related settings such as HSTS.
type SecurityConfig struct {
	EnableHSTS bool
	HSTSMaxAge time.Duration
}

// OTELConfig defines OpenTelemetry observability settings.
type OTELConfig struct {
	Enabled     bool    // OTEL_ENABLED
	Endpoint    string  // OTEL_EXPORTER_OTLP_ENDPOINT (e.g. "otel:4317")
	Insecure    bool    // OTEL_EXPORTER_OTLP_INSECURE (true if no TLS)
	ServiceName string  // OTEL_SERVICE_NAME (e.g. "go-call-digest-backend")
	SampleRatio float64 // OTEL_TRACES_SAMPLER_ARG in [0..1]
}

// PipelineConfig tunes the call-processing pipeline.
type PipelineConfig struct {
	MaxConcurrent     int64         // PIPELINE_MAX_CONCURRENT: simultaneous expensive pipelines
	MaxRetries        uint64        // PIPELINE_MAX_RETRIES: retries per transient-failing step
	RetryInterval     time.Duration // PIPELINE_RETRY_INTERVAL: initial backoff interval
	DownloadTimeout   time.Duration // DOWNLOAD_TIMEOUT
	TranscribeTimeout time.Duration // TRANSCRIBE_TIMEOUT
	SummarizeTimeout  time.Duration // SUMMARIZE_TIMEOUT
	PublishTimeout    time.Duration // PUBLISH_TIMEOUT
	ReaperCutoff      time.Duration // REAPER_CUTOFF: age before a stuck claim is released
	ReaperInterval    time.Duration // REAPER_INTERVAL: sweep period
}

// ProviderConfig carries credentials and endpoints for the outbound
// collaborators.
type ProviderConfig struct {
	ExotelAPIKey     string // EXOTEL_API_KEY (recording basic auth user)
	ExotelAPIToken   string // EXOTEL_API_TOKEN (recording basic auth password)
	DeepgramAPIKey   string // DEEPGRAM_API_KEY
	SlackWebhookURL  string // SLACK_WEBHOOK_URL
	SummarizerURL    string // SUMMARIZER_URL (optional; empty disables remote summaries)
	SummarizerAPIKey string // SUMMARIZER_API_KEY
}

// Config holds all configuration values for the application.
type Config struct {
	// Server
	Port              string        // just the number
	ReadTimeout       time.Duration // e.g. 15s
	ReadHeaderTimeout time.Duration // e.g. 10s
	WriteTimeout      time.Duration // e.g. 20s
	IdleTimeout       time.Duration // e.g. 60s
	MaxHeaderBytes    int           // bytes
	GinMode           string        // debug|release|test

	// Logging / Docs
	LogLevel       string // debug|info|warn|error|fatal|panic
	LogPretty      bool   // pretty console logs in dev
	SwaggerEnabled bool   // enable Swagger UI route
	APIBasePath    string // base path for API routes

	// App
	DBPath           string // SQLite ledger path
	AgentDirPath     string // agent directory file (.json or .toml)
	CustomerDataPath string // optional customer export (.json); empty disables lookup
	WebhookToken     string // optional shared secret for POST /api/v1/calls

	// Pipeline / providers
	Pipeline  PipelineConfig
	Providers ProviderConfig

	// Rate limiting
	RateRPS   float64 // tokens per second (>= 0)
	RateBurst int     // bucket size (>= 1)

	// Web protection
	CORS     CORSConfig
	Security SecurityConfig

	// Observability
	OTEL OTELConfig
}

// MustLoad loads the configuration and panics if validation fails.
func MustLoad() Config {
	cfg, err := Load()
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load reads configuration from environment variables,
// applies defaults, normalizes values, and validates the result.
func Load() (Config, error) {
	cfg := Config{
		// Server
		Port:              getenv("PORT", "8080"),
		ReadTimeout:       getdur("READ_TIMEOUT", 15*time.Second),
		ReadHeaderTimeout: getdur("READ_HEADER_TIMEOUT", 10*time.Second),
		WriteTimeout:      getdur("WRITE_TIMEOUT", 20*time.Second),
		IdleTimeout:       getdur("IDLE_TIMEOUT", 60*time.Second),
		MaxHeaderBytes:    getint("MAX_HEADER_BYTES", 1<<20),
		GinMode:           strings.ToLower(getenv("GIN_MODE", "release")),

		// Logging / Docs
		LogLevel:       strings.ToLower(getenv("LOG_LEVEL", "info")),
		LogPretty:      getbool("LOG_PRETTY", false),
		SwaggerEnabled: getbool("SWAGGER_ENABLED", false),
		APIBasePath:    normalizeBasePath(getenv("API_BASE_PATH", "/api/v1")),

		// App
		DBPath:           getenv("DB_PATH", "calls.db"),
		AgentDirPath:     getenv("AGENT_DIR_PATH", "data/agents.json"),
		CustomerDataPath: getenv("CUSTOMER_DATA_PATH", ""),
		WebhookToken:     getenv("WEBHOOK_TOKEN", ""),

		// Pipeline
		Pipeline: PipelineConfig{
			MaxConcurrent:     int64(getint("PIPELINE_MAX_CONCURRENT", 3)),
			MaxRetries:        uint64(getint("PIPELINE_MAX_RETRIES", 3)),
			RetryInterval:     getdur("PIPELINE_RETRY_INTERVAL", 2*time.Second),
			DownloadTimeout:   getdur("DOWNLOAD_TIMEOUT", time.Minute),
			TranscribeTimeout: getdur("TRANSCRIBE_TIMEOUT", 2*time.Minute),
			SummarizeTimeout:  getdur("SUMMARIZE_TIMEOUT", 45*time.Second),
			PublishTimeout:    getdur("PUBLISH_TIMEOUT", 15*time.Second),
			ReaperCutoff:      getdur("REAPER_CUTOFF", 2*time.Hour),
			ReaperInterval:    getdur("REAPER_INTERVAL", 30*time.Minute),
		},

		// Providers
		Providers: ProviderConfig{
			ExotelAPIKey:     getenv("EXOTEL_API_KEY", ""),
			ExotelAPIToken:   getenv("EXOTEL_API_TOKEN", ""),
			DeepgramAPIKey:   getenv("DEEPGRAM_API_KEY", ""),
			SlackWebhookURL:  getenv("SLACK_WEBHOOK_URL", ""),
			SummarizerURL:    getenv("SUMMARIZER_URL", ""),
			SummarizerAPIKey: getenv("SUMMARIZER_API_KEY", ""),
		},

		// Rate limiting
		RateRPS:   getfloat("RATE_RPS", 5.0),
		RateBurst: getint("RATE_BURST", 10),

		// Web protection
		CORS: CORSConfig{
			AllowedOrigins: splitCSV(getenv("CORS_ALLOWED_ORIGINS", "")),
		},
		Security: SecurityConfig{
			EnableHSTS: getbool("ENABLE_HSTS", false),
			HSTSMaxAge: getdur("HSTS_MAX_AGE", 180*24*time.Hour),
		},

		// Observability (OpenTelemetry)
		OTEL: OTELConfig{
			Enabled:     getbool("OTEL_ENABLED", false),
			Endpoint:    getenv("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317"),
			Insecure:    getbool("OTEL_EXPORTER_OTLP_INSECURE", true),
			ServiceName: getenv("OTEL_SERVICE_NAME", "go-call-digest-backend"),
			SampleRatio: getfloat("OTEL_TRACES_SAMPLER_ARG", 1.0),
		},
	}

	// --- normalization ---
	if cfg.LogLevel == "warning" {
		cfg.LogLevel = "warn"
	}
	switch cfg.GinMode {
	case "debug", "release", "test":
	default:
		cfg.GinMode = "release"
	}

	// --- validation ---
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error", "fatal", "panic":
	default:
		return cfg, errors.New("LOG_LEVEL must be one of: debug, info, warn, error, fatal, panic")
	}
	if strings.TrimSpace(cfg.Port) == "" {
		return cfg, errors.New("PORT must not be empty")
	}
	if cfg.ReadTimeout <= 0 || cfg.ReadHeaderTimeout <= 0 || cfg.WriteTimeout <= 0 || cfg.IdleTimeout <= 0 {
		return cfg, errors.New("timeouts must be positive durations")
	}
	if cfg.MaxHeaderBytes <= 0 {
		return cfg, errors.New("MAX_HEADER_BYTES must be > 0")
	}
	if strings.TrimSpace(cfg.DBPath) == "" {
		return cfg, errors.New("DB_PATH must not be empty")
	}
	if strings.TrimSpace(cfg.AgentDirPath) == "" {
		return cfg, errors.New("AGENT_DIR_PATH must not be empty")
	}
	if cfg.Pipeline.MaxConcurrent < 1 {
		return cfg, errors.New("PIPELINE_MAX_CONCURRENT must be >= 1")
	}
	if cfg.Pipeline.RetryInterval <= 0 {
		return cfg, errors.New("PIPELINE_RETRY_INTERVAL must be > 0")
	}
	if cfg.Pipeline.DownloadTimeout <= 0 || cfg.Pipeline.TranscribeTimeout <= 0 ||
		cfg.Pipeline.SummarizeTimeout <= 0 || cfg.Pipeline.PublishTimeout <= 0 {
		return cfg, errors.New("pipeline step timeouts must be positive durations")
	}
	if cfg.Pipeline.ReaperCutoff <= 0 || cfg.Pipeline.ReaperInterval <= 0 {
		return cfg, errors.New("REAPER_CUTOFF and REAPER_INTERVAL must be > 0")
	}
	if cfg.RateRPS < 0 {
		return cfg, errors.New("RATE_RPS must be >= 0")
	}
	if cfg.RateBurst < 1 {
		return cfg, errors.New("RATE_BURST must be >= 1")
	}
	if cfg.Security.HSTSMaxAge < 0 {
		return cfg, errors.New("HSTS_MAX_AGE must be >= 0")
	}
	if cfg.OTEL.SampleRatio < 0 || cfg.OTEL.SampleRatio > 1 {
		return cfg, errors.New("OTEL_TRACES_SAMPLER_ARG must be in [0,1]")
	}

	return cfg, nil
}

// ---- helpers (no external deps) ----

func getenv(k, def string) string {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		return v
	}
	return def
}

func getfloat(k string, def float64) float64 {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return def
}

func getint(k string, def int) int {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return def
}

func getbool(k string, def bool) bool {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		switch strings.ToLower(strings.TrimSpace(v)) {
		case "1", "true", "yes", "y", "on":
			return true
		case "0", "false", "no", "n", "off":
			return false
		}
	}
	return def
}

func getdur(k string, def time.Duration) time.Duration {
	if v, ok := os.LookupEnv(k); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}

func splitCSV(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		t := strings.TrimSpace(p)
		if t != "" {
			out = append(out, t)
		}
	}
	return out
}

// normalizeBasePath ensures leading '/' and strips trailing '/' (except root).
func normalizeBasePath(p string) string {
	p = strings.TrimSpace(p)
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	if len(p) > 1 && strings.HasSuffix(p, "/") {
		p = strings.TrimRight(p, "/")
	}
	return p
}
