package server

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/miriam/othersupport-converter/internal/config"
	"github.com/miriam/othersupport-converter/internal/types"
)

// newAuthServer builds a server with token authentication enabled for the
// given passphrase.
func newAuthServer(t *testing.T, passphrase string) *Server {
	t.Helper()

	hashCfg := &config.PassphraseConfig{BcryptCost: bcrypt.MinCost}
	hash, err := hashCfg.HashPassphrase(passphrase)
	require.NoError(t, err)

	t.Setenv("AUTH_PASSPHRASE_HASH", hash)
	t.Setenv("JWT_SECRET", "0123456789abcdef0123456789abcdef")
	t.Setenv("JWT_EXPIRATION_HOURS", "1")

	srv, err := New(testConfig())
	require.NoError(t, err)
	t.Cleanup(srv.rateLimiter.Stop)
	return srv
}

// requestToken performs the token exchange and returns the response.
func requestToken(srv *Server, passphrase string) *httptest.ResponseRecorder {
	body, _ := json.Marshal(types.TokenRequest{Passphrase: passphrase})
	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(string(body)))
	req.Header.Set("Content-Type", "application/json")
	return doRequest(srv, req)
}

func TestHandleToken_IssuesToken(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	rec := requestToken(srv, "open sesame")

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var resp types.TokenResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.NotEmpty(t, resp.Token)
	assert.Equal(t, 3600, resp.ExpiresIn)

	claims, err := srv.jwtService.ValidateToken(resp.Token)
	require.NoError(t, err)
	assert.NotEmpty(t, claims.ID)
}

func TestHandleToken_WrongPassphrase(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	rec := requestToken(srv, "guess")

	require.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Equal(t, "invalid passphrase", errorBody(t, rec)["error"])
}

func TestHandleToken_MissingPassphrase(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader(`{}`))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, errorBody(t, rec)["error"], "validation error: Passphrase - required")
}

func TestHandleToken_InvalidJSON(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	req := httptest.NewRequest(http.MethodPost, "/auth/token", strings.NewReader("{not json"))
	req.Header.Set("Content-Type", "application/json")
	rec := doRequest(srv, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid request body", errorBody(t, rec)["error"])
}

func TestHandleToken_DisabledWithoutHash(t *testing.T) {
	srv := newTestServer(t, nil)

	rec := requestToken(srv, "anything")

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "authentication is not configured", errorBody(t, rec)["error"])
}

func TestAPIEndpoints_RequireAuth(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	// No token.
	body, contentType := multipartUpload(t, "document", "other-support.docx", sampleDoc())
	req := httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(srv, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Garbage token.
	body, contentType = multipartUpload(t, "document", "other-support.docx", sampleDoc())
	req = httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer garbage")
	rec = doRequest(srv, req)
	require.Equal(t, http.StatusUnauthorized, rec.Code)

	// Valid token.
	tokenRec := requestToken(srv, "open sesame")
	require.Equal(t, http.StatusOK, tokenRec.Code)
	var tokenResp types.TokenResponse
	require.NoError(t, json.Unmarshal(tokenRec.Body.Bytes(), &tokenResp))

	body, contentType = multipartUpload(t, "document", "other-support.docx", sampleDoc())
	req = httptest.NewRequest(http.MethodPost, "/api/preview", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+tokenResp.Token)
	rec = doRequest(srv, req)
	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestConvertEndpoint_StaysPublicWithAuth(t *testing.T) {
	srv := newAuthServer(t, "open sesame")

	body, contentType := multipartUpload(t, "document", "other-support.docx", sampleDoc())
	req := httptest.NewRequest(http.MethodPost, "/convert", body)
	req.Header.Set("Content-Type", contentType)
	rec := doRequest(srv, req)

	assert.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}
