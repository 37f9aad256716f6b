package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
	"github.com/lanternpress/novelsite/pkg/cryptox"
	"github.com/lanternpress/novelsite/pkg/idx"
)

// DefaultIdleTimeout is how long a session survives without activity.
const DefaultIdleTimeout = 1800 * time.Second

// SessionState is the outcome of validating a session against a request.
type SessionState int

const (
	SessionValid SessionState = iota
	SessionNotLoggedIn
	SessionExpired
	SessionFingerprintMismatch
)

func (s SessionState) String() string {
	switch s {
	case SessionValid:
		return "valid"
	case SessionNotLoggedIn:
		return "not_logged_in"
	case SessionExpired:
		return "expired"
	case SessionFingerprintMismatch:
		return "fingerprint_mismatch"
	default:
		return "unknown"
	}
}

// Fingerprint derives the client fingerprint hash binding a session to its
// originating client context: user-agent, accept-language (empty string if
// absent) and source network address. Legitimate changes to any input (e.g.
// a browser update) force re-login; that trade-off is intended.
func Fingerprint(userAgent, acceptLanguage, remoteAddr string) string {
	sum := sha256.Sum256([]byte(userAgent + acceptLanguage + remoteAddr))
	return hex.EncodeToString(sum[:])
}

// SessionManager creates, validates, regenerates and destroys server-side
// session records. The client only ever holds an opaque token; rows are
// keyed by the token's SHA-256 fingerprint.
type SessionManager struct {
	Sessions    store.Sessions
	CSRF        CSRFGuard
	IdleTimeout time.Duration

	// Now is overridable for tests; defaults to time.Now().UTC.
	Now func() time.Time
}

func (m *SessionManager) now() time.Time {
	if m.Now != nil {
		return m.Now()
	}
	return time.Now().UTC()
}

func (m *SessionManager) idleTimeout() time.Duration {
	if m.IdleTimeout > 0 {
		return m.IdleTimeout
	}
	return DefaultIdleTimeout
}

// Begin starts an anonymous session for the given client fingerprint so the
// login form can carry a CSRF token. Returns the record and the opaque token
// destined for the cookie.
func (m *SessionManager) Begin(ctx context.Context, fingerprint string) (domain.Session, string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	csrfToken, err := m.CSRF.IssueToken()
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to generate csrf token: %w", err)
	}

	now := m.now()
	s := domain.Session{
		ID:           idx.New().String(),
		TokenHash:    cryptox.FingerprintToken(token),
		LastActivity: now,
		Fingerprint:  fingerprint,
		CSRFToken:    csrfToken,
	}

	if err := m.Sessions.Create(ctx, s); err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to persist session: %w", err)
	}
	return s, token, nil
}

// Get resolves the session record behind an opaque cookie token.
func (m *SessionManager) Get(ctx context.Context, token string) (domain.Session, error) {
	return m.Sessions.GetByTokenHash(ctx, cryptox.FingerprintToken(token))
}

// Login promotes a session to an authenticated one. The opaque token is
// regenerated so a pre-authentication token can never be replayed after
// authentication (fixation defense), and the CSRF token is rotated. The
// fingerprint is rebound to the authenticating request, so a client whose
// fingerprint drifted between form render and submit is not locked out of
// the session it just earned. Returns the mutated record and the
// replacement cookie token.
func (m *SessionManager) Login(ctx context.Context, s domain.Session, userID, username, fingerprint string) (domain.Session, string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize256)
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to regenerate session token: %w", err)
	}

	csrfToken, err := m.CSRF.IssueToken()
	if err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to rotate csrf token: %w", err)
	}

	now := m.now()
	s.TokenHash = cryptox.FingerprintToken(token)
	s.UserID = userID
	s.Username = username
	s.Fingerprint = fingerprint
	s.LoggedIn = true
	s.LoginTime = now
	s.LastActivity = now
	s.CSRFToken = csrfToken
	s.RequestCount = 0
	s.LastRequest = time.Time{}

	if err := m.Sessions.Update(ctx, s); err != nil {
		return domain.Session{}, "", fmt.Errorf("failed to persist login: %w", err)
	}
	return s, token, nil
}

// Validate checks a session against the fingerprint derived from the current
// request. Fingerprint mismatch and idle expiry destroy the record
// immediately; a valid session has its last_activity refreshed.
//
// The idle boundary is inclusive: exactly IdleTimeout since last activity is
// still valid, anything beyond expires.
func (m *SessionManager) Validate(ctx context.Context, s *domain.Session, requestFingerprint string) (SessionState, error) {
	if !s.LoggedIn {
		return SessionNotLoggedIn, nil
	}

	if !cryptox.ConstantTimeEquals(s.Fingerprint, requestFingerprint) {
		if err := m.Destroy(ctx, s); err != nil {
			return SessionFingerprintMismatch, err
		}
		return SessionFingerprintMismatch, nil
	}

	now := m.now()
	if now.Sub(s.LastActivity) > m.idleTimeout() {
		if err := m.Destroy(ctx, s); err != nil {
			return SessionExpired, err
		}
		return SessionExpired, nil
	}

	s.LastActivity = now
	if err := m.Sessions.Update(ctx, *s); err != nil {
		return SessionValid, fmt.Errorf("failed to refresh session activity: %w", err)
	}
	return SessionValid, nil
}

// Destroy invalidates all server-side session state. The caller is
// responsible for telling the client to discard the cookie.
func (m *SessionManager) Destroy(ctx context.Context, s *domain.Session) error {
	if err := m.Sessions.Delete(ctx, s.ID); err != nil {
		return fmt.Errorf("failed to destroy session: %w", err)
	}
	*s = domain.Session{}
	return nil
}
