// Package fetch retrieves Other Support documents over HTTP.
// It centralizes the fetching logic shared by the converter's URL inputs,
// the server's "url" uploads, and the CLI sample command.
package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout is the default HTTP request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent is the user agent string for HTTP requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; OtherSupportConverter/1.0)"

// DefaultMaxBytes caps how much of a response body is read.
const DefaultMaxBytes int64 = 20 << 20

// NIH-published Other Support documents.
const (
	SampleURL     = "https://grants.nih.gov/sites/default/files/other-support-sample-7-20-2021.docx"
	FormatPageURL = "https://grants.nih.gov/sites/default/files/other-support-format-page-rev-10-2021.docx"
)

// zipSignature opens every OOXML container.
var zipSignature = []byte("PK\x03\x04")

// Error represents an error during document fetching.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Options configures the fetch behavior.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	MaxBytes  int64
}

// DefaultOptions returns sensible defaults for fetching.
func DefaultOptions() *Options {
	return &Options{
		Timeout:   DefaultTimeout,
		UserAgent: DefaultUserAgent,
		MaxBytes:  DefaultMaxBytes,
	}
}

// Document retrieves a Word document from a URL. When the URL serves an
// HTML page instead (NIH's landing pages link to the real files), the
// first .docx link on the page is fetched in its place.
func Document(ctx context.Context, urlStr string, opts *Options) ([]byte, error) {
	body, contentType, err := get(ctx, urlStr, opts)
	if err != nil {
		return nil, err
	}
	if IsWordDocument(body, contentType) {
		return body, nil
	}

	if strings.Contains(strings.ToLower(contentType), "text/html") {
		links, err := DocumentLinks(string(body), urlStr)
		if err != nil {
			return nil, err
		}
		if len(links) == 0 {
			return nil, &Error{URL: urlStr, Message: "page links to no .docx document"}
		}
		body, contentType, err = get(ctx, links[0], opts)
		if err != nil {
			return nil, err
		}
		if IsWordDocument(body, contentType) {
			return body, nil
		}
		urlStr = links[0]
	}

	return nil, &Error{
		URL:     urlStr,
		Message: fmt.Sprintf("response is not a Word document (content type %q)", contentType),
	}
}

// IsWordDocument sniffs whether a response body looks like a .docx
// payload: ZIP signature first, advertised content type second.
func IsWordDocument(body []byte, contentType string) bool {
	if bytes.HasPrefix(body, zipSignature) {
		return true
	}
	ct := strings.ToLower(contentType)
	return strings.Contains(ct, "wordprocessingml") || strings.Contains(ct, "msword")
}

// get executes one GET and returns (body, content type). The body read is
// capped at opts.MaxBytes.
func get(ctx context.Context, urlStr string, opts *Options) ([]byte, string, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(urlStr)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "invalid URL",
			Cause:   err,
		}
	}

	client := &http.Client{
		Timeout: opts.Timeout,
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, urlStr, nil)
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "failed to create request",
			Cause:   err,
		}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "HTTP request failed",
			Cause:   err,
		}
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, "", &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("HTTP status %d", resp.StatusCode),
		}
	}

	maxBytes := opts.MaxBytes
	if maxBytes <= 0 {
		maxBytes = DefaultMaxBytes
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return nil, "", &Error{
			URL:     urlStr,
			Message: "failed to read response body",
			Cause:   err,
		}
	}
	if int64(len(body)) > maxBytes {
		return nil, "", &Error{
			URL:     urlStr,
			Message: fmt.Sprintf("response body exceeds %d bytes", maxBytes),
		}
	}

	return body, resp.Header.Get("Content-Type"), nil
}
