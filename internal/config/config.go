// Package config loads converter settings from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// ServerConfig holds the HTTP server and fetch settings.
type ServerConfig struct {
	Port           int
	MaxUploadBytes int64
	FetchTimeout   time.Duration
	FetchMaxBytes  int64
	RateLimitRPS   float64
	RateLimitBurst int
	AllowedOrigins []string
}

// NewServerConfig creates a server configuration from environment variables.
// It reads PORT (default: 8080), MAX_UPLOAD_BYTES (default: 10 MiB),
// FETCH_TIMEOUT_SECONDS (default: 30), FETCH_MAX_BYTES (default: 20 MiB),
// RATE_LIMIT_RPS (default: 5), RATE_LIMIT_BURST (default: 10) and
// CORS_ALLOWED_ORIGINS (default: "*", comma-separated).
func NewServerConfig() (*ServerConfig, error) {
	portStr := os.Getenv("PORT")
	if portStr == "" {
		portStr = "8080" // default
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %v", err)
	}

	uploadStr := os.Getenv("MAX_UPLOAD_BYTES")
	if uploadStr == "" {
		uploadStr = "10485760" // default, 10 MiB
	}
	maxUpload, err := strconv.ParseInt(uploadStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_BYTES: %v", err)
	}

	timeoutStr := os.Getenv("FETCH_TIMEOUT_SECONDS")
	if timeoutStr == "" {
		timeoutStr = "30" // default
	}
	timeoutSeconds, err := strconv.Atoi(timeoutStr)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_TIMEOUT_SECONDS: %v", err)
	}

	fetchMaxStr := os.Getenv("FETCH_MAX_BYTES")
	if fetchMaxStr == "" {
		fetchMaxStr = "20971520" // default, 20 MiB
	}
	fetchMax, err := strconv.ParseInt(fetchMaxStr, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid FETCH_MAX_BYTES: %v", err)
	}

	rpsStr := os.Getenv("RATE_LIMIT_RPS")
	if rpsStr == "" {
		rpsStr = "5" // default
	}
	rps, err := strconv.ParseFloat(rpsStr, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_RPS: %v", err)
	}

	burstStr := os.Getenv("RATE_LIMIT_BURST")
	if burstStr == "" {
		burstStr = "10" // default
	}
	burst, err := strconv.Atoi(burstStr)
	if err != nil {
		return nil, fmt.Errorf("invalid RATE_LIMIT_BURST: %v", err)
	}

	config := &ServerConfig{
		Port:           port,
		MaxUploadBytes: maxUpload,
		FetchTimeout:   time.Duration(timeoutSeconds) * time.Second,
		FetchMaxBytes:  fetchMax,
		RateLimitRPS:   rps,
		RateLimitBurst: burst,
		AllowedOrigins: splitOrigins(os.Getenv("CORS_ALLOWED_ORIGINS")),
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// splitOrigins parses a comma-separated origin list. An empty value allows
// every origin.
func splitOrigins(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return []string{"*"}
	}
	var origins []string
	for _, part := range strings.Split(raw, ",") {
		if origin := strings.TrimSpace(part); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// normalize validates the configuration.
func (c *ServerConfig) normalize() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("PORT out of range: %d (must be 1-65535)", c.Port)
	}
	if c.MaxUploadBytes < 1 {
		return fmt.Errorf("MAX_UPLOAD_BYTES must be positive, got: %d", c.MaxUploadBytes)
	}
	if c.FetchTimeout < time.Second {
		return fmt.Errorf("FETCH_TIMEOUT_SECONDS must be at least 1, got: %s", c.FetchTimeout)
	}
	if c.FetchMaxBytes < 1 {
		return fmt.Errorf("FETCH_MAX_BYTES must be positive, got: %d", c.FetchMaxBytes)
	}
	if c.RateLimitRPS <= 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be positive, got: %g", c.RateLimitRPS)
	}
	if c.RateLimitBurst < 1 {
		return fmt.Errorf("RATE_LIMIT_BURST must be at least 1, got: %d", c.RateLimitBurst)
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", c.Port)
}

// AllowsOrigin reports whether CORS requests from origin are permitted.
func (c *ServerConfig) AllowsOrigin(origin string) bool {
	for _, allowed := range c.AllowedOrigins {
		if allowed == "*" || strings.EqualFold(allowed, origin) {
			return true
		}
	}
	return false
}
