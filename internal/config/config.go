// Package config loads server and client configuration from environment
// variables.
package config

import (
	"fmt"
	"time"

	"github.com/Netflix/go-env"
)

// ServerEnvironment holds the environment variables consumed by
// quillsign-server, with defaults.
type ServerEnvironment struct {

	// http server settings
	Environment           string        `env:"ENVIRONMENT,default=dev"`
	Host                  string        `env:"HOST,default=0.0.0.0"`
	Port                  int           `env:"PORT,default=8080"`
	LogLevel              string        `env:"LOG_LEVEL,default=debug"`
	ServerShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT,default=10s"`
	ReadTimeout           time.Duration `env:"READ_TIMEOUT,default=15s"`
	WriteTimeout          time.Duration `env:"WRITE_TIMEOUT,default=15s"`
	IdleTimeout           time.Duration `env:"IDLE_TIMEOUT,default=60s"`
	AllowedOrigins        []string      `env:"ALLOWED_ORIGINS,separator=|"`
	RateLimitRPS          int32         `env:"RATE_LIMIT_RPS,default=100"`
	RateLimitBurst        int32         `env:"RATE_LIMIT_BURST,default=200"`

	// MaxUploadBytes caps document upload payloads; other endpoints use a
	// much smaller fixed limit
	MaxUploadBytes int64 `env:"MAX_UPLOAD_BYTES,default=10485760"`

	// event publishing; empty NATS_URL disables external publishing
	NatsURL string `env:"NATS_URL"`

	// narration; set to false to silence the announcer
	NarrationEnabled bool `env:"NARRATION_ENABLED,default=true"`

	// expiry sweep interval for documents carrying an expiresAt deadline;
	// 0 disables the sweeper
	ExpirySweepInterval time.Duration `env:"EXPIRY_SWEEP_INTERVAL,default=1m"`
}

// ClientEnvironment holds the environment variables consumed by
// quillsign-client.
type ClientEnvironment struct {
	ServerURL      string        `env:"QUILLSIGN_SERVER_URL,default=http://localhost:8080"`
	RequestTimeout time.Duration `env:"QUILLSIGN_REQUEST_TIMEOUT,default=30s"`
	LogLevel       string        `env:"LOG_LEVEL,default=info"`
}

var validEnvs = map[string]bool{
	"dev":     true,
	"test":    true,
	"prod":    true,
	"staging": true,
}

// NewServerConfig loads environment variables and returns a ServerEnvironment struct that contains the values
func NewServerConfig() (*ServerEnvironment, error) {
	var cfg ServerEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewClientConfig loads environment variables for the CLI client.
func NewClientConfig() (*ClientEnvironment, error) {
	var cfg ClientEnvironment

	_, err := env.UnmarshalFromEnviron(&cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to unmarshal environment variables: %w", err)
	}
	if cfg.ServerURL == "" {
		return nil, fmt.Errorf("QUILLSIGN_SERVER_URL must not be empty")
	}
	return &cfg, nil
}

// validateConfig checks for required env variables
func validateConfig(cfg *ServerEnvironment) error {
	if cfg.Port < 1 || cfg.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535")
	}
	if !validEnvs[cfg.Environment] {
		return fmt.Errorf("invalid ENVIRONMENT: %s", cfg.Environment)
	}
	if cfg.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be at least 1")
	}
	if cfg.RateLimitRPS < 0 || cfg.RateLimitBurst < 0 {
		return fmt.Errorf("rate limit settings must be 0 or greater")
	}
	if cfg.RateLimitRPS > 0 && cfg.RateLimitBurst < cfg.RateLimitRPS {
		return fmt.Errorf("RATE_LIMIT_BURST (%d) cannot be lower than RATE_LIMIT_RPS (%d)",
			cfg.RateLimitBurst, cfg.RateLimitRPS)
	}
	return nil
}
