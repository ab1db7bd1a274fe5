package domain

import (
	"os"
	"strconv"
)

// Config holds the complete Harrier configuration.
type Config struct {
	// Server settings
	Server ServerConfig `json:"server"`

	// Component configurations
	LinkStore LinkStoreConfig `json:"linkStore"`
	EventBus  EventBusConfig  `json:"eventBus"`

	// Signing settings (optional; unsigned manifests when absent)
	Signing SigningConfig `json:"signing"`

	// Narrative enrichment settings (optional, best-effort)
	Narrative NarrativeConfig `json:"narrative"`

	// Observability
	Logging LoggingConfig `json:"logging"`
	Tracing TracingConfig `json:"tracing"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host         string `json:"host"`
	Port         int    `json:"port"`
	ReadTimeout  int    `json:"readTimeout"`  // seconds
	WriteTimeout int    `json:"writeTimeout"` // seconds

	// MaxUploadBytes bounds one multipart upload request.
	MaxUploadBytes int64 `json:"maxUploadBytes"`
}

// SigningConfig holds manifest signing settings. SeedHex is a hex-encoded
// 32-byte ed25519 seed; when empty, manifests are emitted unsigned.
type SigningConfig struct {
	SeedHex string `json:"-"`
	KeyID   string `json:"keyId"`
}

// NarrativeConfig holds settings for the external summarizer.
type NarrativeConfig struct {
	Enabled        bool   `json:"enabled"`
	Endpoint       string `json:"endpoint"`
	TimeoutSeconds int    `json:"timeoutSeconds"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `json:"level"`  // debug, info, warn, error
	Format string `json:"format"` // json, text
}

// TracingConfig holds OpenTelemetry settings.
type TracingConfig struct {
	Enabled     bool   `json:"enabled"`
	ServiceName string `json:"serviceName"`
}

// DefaultConfig returns the default single-node configuration:
// in-memory link store and channel event bus.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:           "0.0.0.0",
			Port:           8080,
			ReadTimeout:    30,
			WriteTimeout:   60,
			MaxUploadBytes: 16 << 20,
		},
		LinkStore: LinkStoreConfig{
			Type:       "memory",
			TTLMinutes: 30,
			MaxEntries: 256,
		},
		EventBus: EventBusConfig{
			Type:              "channel",
			ChannelBufferSize: 1000,
		},
		Narrative: NarrativeConfig{
			Enabled:        false,
			TimeoutSeconds: 5,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Tracing: TracingConfig{
			Enabled:     false,
			ServiceName: "harrier",
		},
	}
}

// FromEnv returns the default configuration with HARRIER_* environment
// overrides applied.
func FromEnv() *Config {
	cfg := DefaultConfig()

	if v := os.Getenv("HARRIER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("HARRIER_LINKSTORE"); v != "" {
		cfg.LinkStore.Type = v
	}
	if v := os.Getenv("HARRIER_LINK_TTL_MINUTES"); v != "" {
		if m, err := strconv.Atoi(v); err == nil && m > 0 {
			cfg.LinkStore.TTLMinutes = m
		}
	}
	if v := os.Getenv("HARRIER_REDIS_ADDR"); v != "" {
		cfg.LinkStore.Type = "redis"
		cfg.LinkStore.RedisAddr = v
		cfg.LinkStore.RedisPassword = os.Getenv("HARRIER_REDIS_PASSWORD")
	}
	if v := os.Getenv("HARRIER_NATS_URL"); v != "" {
		cfg.EventBus.Type = "nats"
		cfg.EventBus.NATSUrl = v
		cfg.EventBus.NATSToken = os.Getenv("HARRIER_NATS_TOKEN")
		cfg.EventBus.NATSMaxReconnects = 10
		cfg.EventBus.NATSReconnectWait = 5
	}
	if v := os.Getenv("HARRIER_SIGNING_SEED"); v != "" {
		cfg.Signing.SeedHex = v
		cfg.Signing.KeyID = os.Getenv("HARRIER_SIGNING_KEY_ID")
		if cfg.Signing.KeyID == "" {
			cfg.Signing.KeyID = "harrier-default"
		}
	}
	if v := os.Getenv("HARRIER_NARRATIVE_ENDPOINT"); v != "" {
		cfg.Narrative.Enabled = true
		cfg.Narrative.Endpoint = v
	}
	if os.Getenv("HARRIER_TRACING") == "true" {
		cfg.Tracing.Enabled = true
	}

	return cfg
}
