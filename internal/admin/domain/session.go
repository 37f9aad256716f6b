package domain

import "time"

// Session is the server-side session record. The client holds only the
// opaque session token; the row stores its SHA-256 fingerprint so a leaked
// database dump cannot be replayed as a cookie.
//
// A session is valid only while LoggedIn is true, the stored client
// fingerprint matches the fingerprint derived from the current request, and
// the idle timeout has not elapsed. Anonymous (pre-login) sessions exist so
// the login form can carry a CSRF token.
type Session struct {
	ID           string // ULID record id
	TokenHash    string // SHA-256 fingerprint of the opaque cookie token
	UserID       string
	Username     string
	LoggedIn     bool
	LoginTime    time.Time
	LastActivity time.Time
	Fingerprint  string // client fingerprint hash (user-agent + accept-language + address)
	CSRFToken    string // hex-encoded, rotated at login
	RequestCount int    // fixed-window rate limit counter
	LastRequest  time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
