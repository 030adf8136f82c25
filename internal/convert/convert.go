// Package convert wires the conversion pipeline end to end: container
// reading, field extraction, profile building, and XML rendering. It is
// the programmatic surface the server and the CLI both sit on.
package convert

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/miriam/othersupport-converter/internal/docx"
	"github.com/miriam/othersupport-converter/internal/extract"
	"github.com/miriam/othersupport-converter/internal/fetch"
	"github.com/miriam/othersupport-converter/internal/render"
	"github.com/miriam/othersupport-converter/internal/types"
)

// Result is one finished conversion.
type Result struct {
	Profile  *types.Profile
	XML      string
	Filename string
}

// Options configures conversions. A nil Options uses all defaults.
type Options struct {
	// Fetch configures URL retrieval; nil uses fetch.DefaultOptions.
	Fetch *fetch.Options
	// Compact skips pretty-printing the rendered XML.
	Compact bool
	// Now supplies the filename timestamp; nil uses time.Now.
	Now func() time.Time
}

func (o *Options) fetchOptions() *fetch.Options {
	if o == nil {
		return nil
	}
	return o.Fetch
}

func (o *Options) timestamp() time.Time {
	if o == nil || o.Now == nil {
		return time.Now()
	}
	return o.Now()
}

func (o *Options) compact() bool {
	return o != nil && o.Compact
}

// IsURL reports whether input names a remote document rather than a
// local file.
func IsURL(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

// Parse reads an Other Support document from a local path or an http(s)
// URL and builds the validated profile.
func Parse(ctx context.Context, input string, opts *Options) (*types.Profile, error) {
	if IsURL(input) {
		body, err := fetch.Document(ctx, input, opts.fetchOptions())
		if err != nil {
			return nil, err
		}
		return ParseBytes(body)
	}

	doc, err := docx.Open(input)
	if err != nil {
		return nil, err
	}
	return buildProfile(doc)
}

// ParseBytes builds the profile from document bytes already in hand.
func ParseBytes(data []byte) (*types.Profile, error) {
	doc, err := docx.OpenBytes(data)
	if err != nil {
		return nil, err
	}
	return buildProfile(doc)
}

// ParseReader builds the profile from a file-like handle (an upload).
func ParseReader(r io.Reader) (*types.Profile, error) {
	doc, err := docx.OpenReader(r)
	if err != nil {
		return nil, err
	}
	return buildProfile(doc)
}

func buildProfile(doc *docx.Document) (*types.Profile, error) {
	profile, err := extract.Build(extract.Extract(doc))
	if err != nil {
		return nil, err
	}
	if err := profile.Validate(); err != nil {
		return nil, err
	}
	return profile, nil
}

// Render serializes the profile compactly.
func Render(p *types.Profile) string {
	return render.XML(p)
}

// RenderPretty serializes the profile indented, the form served for
// downloads and previews.
func RenderPretty(p *types.Profile) (string, error) {
	return render.Pretty(render.XML(p))
}

// Convert parses input and renders it, producing a download-ready result.
func Convert(ctx context.Context, input string, opts *Options) (*Result, error) {
	profile, err := Parse(ctx, input, opts)
	if err != nil {
		return nil, err
	}
	return finish(profile, opts)
}

// ConvertBytes converts a document already read into memory.
func ConvertBytes(data []byte, opts *Options) (*Result, error) {
	profile, err := ParseBytes(data)
	if err != nil {
		return nil, err
	}
	return finish(profile, opts)
}

// ConvertReader converts a document from a file-like handle.
func ConvertReader(r io.Reader, opts *Options) (*Result, error) {
	profile, err := ParseReader(r)
	if err != nil {
		return nil, err
	}
	return finish(profile, opts)
}

func finish(profile *types.Profile, opts *Options) (*Result, error) {
	xmlText := Render(profile)
	if !opts.compact() {
		pretty, err := render.Pretty(xmlText)
		if err != nil {
			return nil, err
		}
		xmlText = pretty
	}
	return &Result{
		Profile:  profile,
		XML:      xmlText,
		Filename: Filename(profile, opts.timestamp()),
	}, nil
}
