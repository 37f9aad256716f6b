package service

import "github.com/lanternpress/novelsite/pkg/cryptox"

// CSRFGuard issues and verifies the per-session anti-forgery token. Tokens
// are 32 random bytes, hex-encoded, stored on the session record and rotated
// at each login rather than per request. Per-login rotation gives slightly
// weaker replay protection within a session; preserved deliberately.
type CSRFGuard struct{}

// IssueToken generates a fresh token for storage in the session.
func (CSRFGuard) IssueToken() (string, error) {
	return cryptox.GenerateHexToken(cryptox.TokenSize256)
}

// Verify compares the token presented by the form against the session's
// token in constant time. A missing or empty presented token never matches.
func (CSRFGuard) Verify(presented, sessionToken string) bool {
	if presented == "" || sessionToken == "" {
		return false
	}
	return cryptox.ConstantTimeEquals(presented, sessionToken)
}
