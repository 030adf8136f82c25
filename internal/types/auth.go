// Package types provides type definitions for structured data used throughout the converter.
package types

import (
	"github.com/go-playground/validator/v10"
)

// TokenRequest represents a request to exchange the service passphrase for a
// bearer token.
type TokenRequest struct {
	Passphrase string `json:"passphrase" validate:"required"`
}

// TokenResponse carries an issued bearer token.
type TokenResponse struct {
	Token     string `json:"token"`
	ExpiresIn int    `json:"expires_in"` // seconds until expiry
}

// Validate validates the TokenRequest using the validator.
func (r *TokenRequest) Validate() error {
	validate := validator.New()
	return validate.Struct(r)
}
