package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"github.com/miriam/othersupport-converter/internal/convert"
	"github.com/miriam/othersupport-converter/internal/docx"
	"github.com/miriam/othersupport-converter/internal/extract"
	"github.com/miriam/othersupport-converter/internal/fetch"
	"github.com/miriam/othersupport-converter/internal/metrics"
	"github.com/miriam/othersupport-converter/internal/schemas"
	"github.com/miriam/othersupport-converter/internal/types"
)

// multipartMemory caps the in-memory portion of parsed uploads; larger file
// parts spill to temporary files.
const multipartMemory = 4 << 20

// documentRequest is the parsed input of a conversion request.
type documentRequest struct {
	data   []byte // uploaded document bytes; empty when url is set
	url    string
	source string // metrics source label
}

// convertResponse represents the response body for /api/convert
type convertResponse struct {
	Filename string          `json:"filename"`
	XML      string          `json:"xml"`
	Profile  json.RawMessage `json:"profile"`
}

// handleConvert converts an uploaded document or a referenced URL and responds
// with the XML as a downloadable attachment.
func (s *Server) handleConvert(w http.ResponseWriter, r *http.Request) {
	result, err := s.convertRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/xml; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.WriteHeader(http.StatusOK)
	if _, err := io.WriteString(w, result.XML); err != nil {
		log.Printf("Error writing XML response: %v", err)
	}
}

// handleAPIConvert converts like handleConvert but responds with JSON carrying
// the suggested filename, the XML, and the extracted profile.
func (s *Server) handleAPIConvert(w http.ResponseWriter, r *http.Request) {
	result, err := s.convertRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := profileJSON(result.Profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	s.jsonResponse(w, http.StatusOK, convertResponse{
		Filename: result.Filename,
		XML:      result.XML,
		Profile:  profile,
	})
}

// handleAPIPreview responds with the extracted profile as JSON, without
// rendering XML output.
func (s *Server) handleAPIPreview(w http.ResponseWriter, r *http.Request) {
	result, err := s.convertRequest(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	profile, err := profileJSON(result.Profile)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(profile); err != nil {
		log.Printf("Error writing profile response: %v", err)
	}
}

// convertRequest reads the conversion input from the request, runs the
// conversion, and records conversion metrics.
func (s *Server) convertRequest(w http.ResponseWriter, r *http.Request) (*convert.Result, error) {
	start := time.Now()

	doc, err := s.readDocument(w, r)
	if err != nil {
		metrics.RecordConversion(metrics.SourceUpload, outcomeLabel(err))
		return nil, err
	}

	opts := &convert.Options{Fetch: s.fetchOpts}

	var result *convert.Result
	if doc.url != "" {
		result, err = convert.Convert(r.Context(), doc.url, opts)
	} else {
		metrics.RecordDocumentBytes(int64(len(doc.data)))
		result, err = convert.ConvertBytes(doc.data, opts)
	}
	if err != nil {
		metrics.RecordConversion(doc.source, outcomeLabel(err))
		return nil, err
	}

	metrics.RecordConversion(doc.source, metrics.OutcomeOK)
	metrics.RecordConversionDuration(durationMs(time.Since(start)))
	return result, nil
}

// readDocument extracts the conversion input from a multipart upload, a form
// "url" field, or a JSON {"url": ...} body.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*documentRequest, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.config.MaxUploadBytes)

	if strings.HasPrefix(r.Header.Get("Content-Type"), "application/json") {
		var req struct {
			URL string `json:"url"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			var maxBytesErr *http.MaxBytesError
			if errors.As(err, &maxBytesErr) {
				return nil, err
			}
			return nil, &RequestError{Message: "invalid JSON body", Cause: err}
		}
		return urlRequest(req.URL)
	}

	if err := r.ParseMultipartForm(multipartMemory); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			return nil, err
		}
		return nil, &RequestError{Message: "malformed form body", Cause: err}
	}

	if raw := r.FormValue("url"); raw != "" {
		return urlRequest(raw)
	}

	file, header, err := r.FormFile("document")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) || errors.Is(err, http.ErrNotMultipart) {
			return nil, &RequestError{Message: `provide a "document" file or a "url" field`}
		}
		return nil, &RequestError{Message: "unreadable document field", Cause: err}
	}
	defer file.Close()

	if ext := filepath.Ext(header.Filename); !strings.EqualFold(ext, ".docx") {
		return nil, &RequestError{Message: fmt.Sprintf("unsupported file type %q, expected .docx", ext)}
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, &RequestError{Message: "failed to read upload", Cause: err}
	}

	return &documentRequest{data: data, source: metrics.SourceUpload}, nil
}

// urlRequest validates a remote document reference.
func urlRequest(raw string) (*documentRequest, error) {
	if !convert.IsURL(raw) {
		return nil, &RequestError{Message: fmt.Sprintf("unsupported url %q, expected http or https", raw)}
	}
	if u, err := url.Parse(raw); err != nil || u.Host == "" {
		return nil, &RequestError{Message: fmt.Sprintf("invalid url %q", raw), Cause: err}
	}
	return &documentRequest{url: raw, source: metrics.SourceURL}, nil
}

// outcomeLabel maps a conversion error to its metrics outcome label.
func outcomeLabel(err error) string {
	var parseErr *docx.ParseError
	var validationErr *extract.ValidationError
	var fetchErr *fetch.Error

	switch {
	case errors.As(err, &validationErr):
		return metrics.OutcomeValidationError
	case errors.As(err, &parseErr):
		return metrics.OutcomeParseError
	case errors.As(err, &fetchErr):
		return metrics.OutcomeFetchError
	default:
		return metrics.OutcomeError
	}
}

// profileJSON marshals a profile and checks it against the published schema
// before it leaves the server.
func profileJSON(p *types.Profile) (json.RawMessage, error) {
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode profile: %w", err)
	}
	if err := schemas.ValidateProfileJSON(data); err != nil {
		return nil, err
	}
	return data, nil
}
