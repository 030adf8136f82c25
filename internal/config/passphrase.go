// Package config provides passphrase configuration and verification.
package config

import (
	"fmt"
	"os"
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// PassphraseConfig holds the shared-passphrase settings that gate the token
// endpoint. An empty hash disables authentication entirely.
type PassphraseConfig struct {
	Hash       string // bcrypt hash of the accepted passphrase
	BcryptCost int
}

// NewPassphraseConfig creates a passphrase configuration from environment
// variables. It reads AUTH_PASSPHRASE_HASH (empty disables auth) and
// BCRYPT_COST (default: 12).
func NewPassphraseConfig() (*PassphraseConfig, error) {
	costStr := os.Getenv("BCRYPT_COST")
	if costStr == "" {
		costStr = "12" // default
	}

	cost, err := strconv.Atoi(costStr)
	if err != nil {
		return nil, fmt.Errorf("invalid BCRYPT_COST: %v", err)
	}

	config := &PassphraseConfig{
		Hash:       os.Getenv("AUTH_PASSPHRASE_HASH"),
		BcryptCost: cost,
	}

	if err := config.normalize(); err != nil {
		return nil, err
	}

	return config, nil
}

// normalize validates the configuration.
func (c *PassphraseConfig) normalize() error {
	if c.BcryptCost < 10 || c.BcryptCost > 14 {
		return fmt.Errorf("bcrypt cost out of range: %d (must be 10-14)", c.BcryptCost)
	}
	return nil
}

// Enabled reports whether a passphrase hash is configured.
func (c *PassphraseConfig) Enabled() bool {
	return c.Hash != ""
}

// HashPassphrase hashes a passphrase using bcrypt at the configured cost.
// Useful for generating the AUTH_PASSPHRASE_HASH value.
func (c *PassphraseConfig) HashPassphrase(passphrase string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(passphrase), c.BcryptCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash passphrase: %w", err)
	}

	return string(hash), nil
}

// VerifyPassphrase verifies a passphrase against the configured hash.
// It always fails when authentication is disabled.
func (c *PassphraseConfig) VerifyPassphrase(passphrase string) bool {
	if c.Hash == "" {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(c.Hash), []byte(passphrase))
	return err == nil
}
