package service

import "errors"

// Auth failures are deliberately generic at the boundary: the login response
// never distinguishes an unknown username from a wrong password. CSRF and
// rate-limit outcomes are conveyed by CSRFGuard.Verify and RateDecision
// rather than sentinel errors.
var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrNoSubscribers      = errors.New("no subscribers to export")
)

// ValidationError reports malformed user input. Unlike auth errors its
// message is specific and user-correctable, and it short-circuits before any
// credential comparison runs.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(field, message string) error {
	return &ValidationError{Field: field, Message: message}
}
