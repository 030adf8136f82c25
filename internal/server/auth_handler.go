// Package server provides the HTTP interface of the converter.
package server

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/miriam/othersupport-converter/internal/config"
	"github.com/miriam/othersupport-converter/internal/types"
)

// AuthHandler handles token issuance for the protected API endpoints.
type AuthHandler struct {
	passphrase *config.PassphraseConfig
	jwtService *JWTService
	validator  *validator.Validate
}

// NewAuthHandler creates a new AuthHandler with the given dependencies.
func NewAuthHandler(passphrase *config.PassphraseConfig, jwtService *JWTService) *AuthHandler {
	return &AuthHandler{
		passphrase: passphrase,
		jwtService: jwtService,
		validator:  validator.New(),
	}
}

// Token exchanges the service passphrase for a bearer token.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req types.TokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := h.validator.Struct(req); err != nil {
		writeJSONError(w, r, http.StatusBadRequest, extractValidationErrors(err))
		return
	}

	if !h.passphrase.VerifyPassphrase(req.Passphrase) {
		writeJSONError(w, r, http.StatusUnauthorized, "invalid passphrase")
		return
	}

	token, err := h.jwtService.GenerateToken()
	if err != nil {
		writeJSONError(w, r, http.StatusInternalServerError, "failed to generate token")
		return
	}

	response := types.TokenResponse{
		Token:     token,
		ExpiresIn: int(h.jwtService.ExpiresIn().Seconds()),
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		// Log error but response already sent
		return
	}
}

// extractValidationErrors extracts validation error messages from validator errors.
func extractValidationErrors(err error) string {
	if validationErrors, ok := err.(validator.ValidationErrors); ok {
		if len(validationErrors) > 0 {
			// Return first validation error for simplicity
			ve := validationErrors[0]
			return fmt.Sprintf("validation error: %s - %s", ve.Field(), ve.Tag())
		}
	}
	return "validation error: invalid request"
}
