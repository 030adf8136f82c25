package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// docxBytes is enough of a payload to pass ZIP signature sniffing.
var docxBytes = []byte("PK\x03\x04 rest of the archive")

func TestDocument_DirectDocx(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type",
			"application/vnd.openxmlformats-officedocument.wordprocessingml.document")
		_, _ = w.Write(docxBytes)
	}))
	defer server.Close()

	body, err := Document(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, docxBytes, body)
}

func TestDocument_SniffsZipSignature(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/octet-stream")
		_, _ = w.Write(docxBytes)
	}))
	defer server.Close()

	body, err := Document(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, docxBytes, body)
}

func TestDocument_FollowsHTMLLandingPage(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/page", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(`<html><body>
			<a href="/files/guide.pdf">Guide</a>
			<a href="/files/other-support-sample.docx">Sample</a>
		</body></html>`))
	})
	mux.HandleFunc("/files/other-support-sample.docx", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(docxBytes)
	})
	server := httptest.NewServer(mux)
	defer server.Close()

	body, err := Document(context.Background(), server.URL+"/page", nil)
	require.NoError(t, err)
	assert.Equal(t, docxBytes, body)
}

func TestDocument_HTMLWithoutDocxLink(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte(`<html><body><a href="/nothing.pdf">x</a></body></html>`))
	}))
	defer server.Close()

	_, err := Document(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "no .docx")
}

func TestDocument_RejectsNonDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"not": "a document"}`))
	}))
	defer server.Close()

	_, err := Document(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	require.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "not a Word document")
}

func TestDocument_InvalidURL(t *testing.T) {
	_, err := Document(context.Background(), "not-a-valid-url", nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "invalid URL")
}

func TestDocument_HTTPError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	_, err := Document(context.Background(), server.URL, nil)
	require.Error(t, err)

	var fetchErr *Error
	assert.ErrorAs(t, err, &fetchErr)
	assert.Contains(t, err.Error(), "404")
}

func TestDocument_BodyTooLarge(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("PK\x03\x04"))
		_, _ = w.Write(make([]byte, 4096))
	}))
	defer server.Close()

	opts := DefaultOptions()
	opts.MaxBytes = 1024

	_, err := Document(context.Background(), server.URL, opts)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exceeds")
}

func TestDocument_SendsUserAgent(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		_, _ = w.Write(docxBytes)
	}))
	defer server.Close()

	_, err := Document(context.Background(), server.URL, nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, gotUA)
}

func TestDocumentLinks_ResolvesAndDeduplicates(t *testing.T) {
	html := `<html><body>
		<a href="/files/a.docx">A</a>
		<a href="https://other.example.gov/b.DOCX?download=1">B</a>
		<a href="/files/a.docx">A again</a>
		<a href="/files/c.pdf">not a doc</a>
		<a href="mailto:grants@example.gov">mail</a>
	</body></html>`

	links, err := DocumentLinks(html, "https://grants.example.gov/page")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"https://grants.example.gov/files/a.docx",
		"https://other.example.gov/b.DOCX?download=1",
	}, links)
}

func TestDocumentLinks_EmptyPage(t *testing.T) {
	links, err := DocumentLinks("<html><body></body></html>", "https://example.gov/")
	require.NoError(t, err)
	assert.Empty(t, links)
}

func TestIsWordDocument(t *testing.T) {
	assert.True(t, IsWordDocument(docxBytes, ""))
	assert.True(t, IsWordDocument([]byte("x"),
		"application/vnd.openxmlformats-officedocument.wordprocessingml.document"))
	assert.True(t, IsWordDocument(nil, "application/msword"))
	assert.False(t, IsWordDocument([]byte("<html>"), "text/html"))
	assert.False(t, IsWordDocument(nil, ""))
}

func TestDefaultOptions(t *testing.T) {
	opts := DefaultOptions()
	assert.Equal(t, DefaultTimeout, opts.Timeout)
	assert.Equal(t, DefaultUserAgent, opts.UserAgent)
	assert.Equal(t, DefaultMaxBytes, opts.MaxBytes)
}

func TestSampleURL_PointsAtNIH(t *testing.T) {
	assert.True(t, strings.HasPrefix(SampleURL, "https://grants.nih.gov/"))
	assert.True(t, strings.HasSuffix(SampleURL, ".docx"))
}
