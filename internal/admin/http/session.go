package http

import (
	"errors"
	"net/http"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/internal/admin/store"
	"github.com/lanternpress/novelsite/pkg/httpx"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

// clientFingerprint derives the request's client fingerprint from the
// user-agent, accept-language and source address.
func clientFingerprint(r *http.Request) string {
	return service.Fingerprint(
		r.UserAgent(),
		r.Header.Get("Accept-Language"),
		httpx.IPKeyExtractor(r),
	)
}

// resolveSession loads the session record behind the request's cookie.
// Returns ok=false when there is no cookie or the token resolves to nothing.
func resolveSession(sessions *service.SessionManager, r *http.Request) (domain.Session, bool) {
	token := sessionToken(r)
	if token == "" {
		return domain.Session{}, false
	}

	sess, err := sessions.Get(r.Context(), token)
	if err != nil {
		if !errors.Is(err, store.ErrNotFound) {
			slogx.FromContext(r.Context()).Error("session lookup failed", "err", err)
		}
		return domain.Session{}, false
	}
	return sess, true
}

// beginSession starts a fresh anonymous session and installs its cookie so
// the login form can carry a CSRF token.
func beginSession(sessions *service.SessionManager, w http.ResponseWriter, r *http.Request) (domain.Session, error) {
	sess, token, err := sessions.Begin(r.Context(), clientFingerprint(r))
	if err != nil {
		return domain.Session{}, err
	}
	setSessionCookie(w, token)
	return sess, nil
}
