package ratelimit

import "time"

// Config holds rate limiting configuration.
type Config struct {
	RPS             float64       // Steady-state tokens per second per client
	Burst           int           // Bucket capacity
	JanitorInterval time.Duration // How often idle buckets are evicted; 0 disables eviction
	IdleTTL         time.Duration // How long a client may be idle before eviction
}

// DefaultConfig returns the default rate limiting configuration.
func DefaultConfig() *Config {
	return &Config{
		RPS:             5,
		Burst:           10,
		JanitorInterval: 5 * time.Minute,
		IdleTTL:         time.Hour,
	}
}
