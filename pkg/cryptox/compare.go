package cryptox

import "crypto/subtle"

// ConstantTimeEquals reports whether a and b are equal without leaking how
// many leading bytes match. All credential and CSRF token comparisons must
// go through this rather than ==.
func ConstantTimeEquals(a, b string) bool {
	return subtle.ConstantTimeCompare([]byte(a), []byte(b)) == 1
}
