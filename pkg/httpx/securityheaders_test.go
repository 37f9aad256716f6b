package httpx_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/lanternpress/novelsite/pkg/httpx"
	"github.com/stretchr/testify/require"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestSecurityHeaders(t *testing.T) {
	t.Parallel()

	h := httpx.Chain(okHandler(), httpx.SecurityHeaders())

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))

	require.Equal(t, "DENY", rec.Header().Get("X-Frame-Options"))
	require.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	require.Equal(t, "1; mode=block", rec.Header().Get("X-XSS-Protection"))
	require.Equal(t, "strict-origin-when-cross-origin", rec.Header().Get("Referrer-Policy"))
}

func TestRequireHTTPS(t *testing.T) {
	t.Parallel()

	h := httpx.Chain(okHandler(), httpx.RequireHTTPS())

	t.Run("redirects plain http", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/dashboard?tab=thoughts", nil)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusMovedPermanently, rec.Code)
		require.Equal(t, "https://example.com/dashboard?tab=thoughts", rec.Header().Get("Location"))
	})

	t.Run("allows localhost", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://localhost:8080/login", nil)
		req.Host = "localhost:8080"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows loopback address", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://127.0.0.1/login", nil)
		req.Host = "127.0.0.1"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("allows forwarded https", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "http://example.com/login", nil)
		req.Header.Set("X-Forwarded-Proto", "https")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
	})
}
