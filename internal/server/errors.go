// Package server provides the HTTP interface of the converter.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/miriam/othersupport-converter/internal/docx"
	"github.com/miriam/othersupport-converter/internal/extract"
	"github.com/miriam/othersupport-converter/internal/fetch"
)

// RequestError indicates a malformed conversion request, such as a missing
// upload field or an unsupported URL scheme.
type RequestError struct {
	Message string
	Cause   error
}

func (e *RequestError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("request error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("request error: %s", e.Message)
}

func (e *RequestError) Unwrap() error {
	return e.Cause
}

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var maxBytesErr *http.MaxBytesError
	var requestErr *RequestError
	var parseErr *docx.ParseError
	var validationErr *extract.ValidationError
	var fetchErr *fetch.Error

	switch {
	// MaxBytesError may sit behind a RequestError, so it is matched first.
	case errors.As(err, &maxBytesErr):
		return http.StatusRequestEntityTooLarge
	case errors.As(err, &requestErr):
		return http.StatusBadRequest
	case errors.As(err, &parseErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &fetchErr):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// writeError maps an error to a status code and writes the standard error
// body.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s error: %v request_id=%s", r.Method, r.URL.Path, err, RequestID(r.Context()))
	}
	writeJSONError(w, r, status, err.Error())
}

// writeJSONError writes the standard error body with the request ID attached.
func writeJSONError(w http.ResponseWriter, r *http.Request, status int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	body := map[string]string{
		"error":      message,
		"request_id": RequestID(r.Context()),
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Printf("Error encoding JSON response: %v", err)
	}
}
