package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
	"time"
	"unicode/utf8"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/pkg/cryptox"
	"github.com/pquerna/otp/totp"
)

const (
	maxUsernameLength = 50
	maxPasswordLength = 100

	// InvalidCredentialsMessage is the single message for every credential
	// failure; it never distinguishes unknown user from wrong password.
	InvalidCredentialsMessage = "Invalid credentials. Please try again."

	loginDelayMin = 100 * time.Millisecond
	loginDelayMax = 300 * time.Millisecond
)

var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9_\-@.]+$`)

type LoginRequest struct {
	Username    string
	Password    string
	OTPCode     string // required only when a TOTP secret is configured
	Fingerprint string // of the authenticating request; rebound at login
}

type LoginResult struct {
	Session  domain.Session
	Token    string // replacement cookie token (regenerated at login)
	Redirect string
}

// AuthService orchestrates the login state machine around the single
// administrator credential. There is deliberately no lockout counter: the
// only brute-force friction beyond the transport-level throttle is the
// randomized response delay on failure.
type AuthService struct {
	Credential domain.Credential
	TOTPSecret string // empty disables the second factor
	Sessions   *SessionManager

	// Sleep is overridable for tests; defaults to time.Sleep.
	Sleep func(time.Duration)
}

// Login validates the request, compares credentials and, on success,
// promotes the given session via the SessionManager (which regenerates the
// transport token and rotates the CSRF token).
//
// Input validation runs strictly before any credential comparison so that
// malformed input neither reaches the constant-time compare nor triggers the
// failure delay.
func (s *AuthService) Login(ctx context.Context, sess domain.Session, req LoginRequest) (LoginResult, error) {
	if err := validateLoginInput(req); err != nil {
		return LoginResult{}, err
	}

	// Username and password are compared independently, each in constant
	// time, so neither field becomes a timing oracle for the other.
	usernameOK := cryptox.ConstantTimeEquals(req.Username, s.Credential.Username)
	passwordOK := s.verifyPassword(req.Password)

	if !usernameOK || !passwordOK {
		s.sleep(randomLoginDelay())
		return LoginResult{}, ErrInvalidCredentials
	}

	if s.TOTPSecret != "" {
		if req.OTPCode == "" || !totp.Validate(req.OTPCode, s.TOTPSecret) {
			s.sleep(randomLoginDelay())
			return LoginResult{}, ErrInvalidCredentials
		}
	}

	authed, token, err := s.Sessions.Login(ctx, sess, s.Credential.UserID, s.Credential.Username, req.Fingerprint)
	if err != nil {
		return LoginResult{}, fmt.Errorf("failed to establish session: %w", err)
	}

	return LoginResult{
		Session:  authed,
		Token:    token,
		Redirect: "/dashboard",
	}, nil
}

// Logout destroys the session unconditionally.
func (s *AuthService) Logout(ctx context.Context, sess *domain.Session) error {
	return s.Sessions.Destroy(ctx, sess)
}

func (s *AuthService) verifyPassword(password string) bool {
	if cryptox.IsPHCHash(s.Credential.Password) {
		return cryptox.VerifyPassword(password, s.Credential.Password) == nil
	}
	return cryptox.ConstantTimeEquals(password, s.Credential.Password)
}

func (s *AuthService) sleep(d time.Duration) {
	if s.Sleep != nil {
		s.Sleep(d)
		return
	}
	time.Sleep(d)
}

func validateLoginInput(req LoginRequest) error {
	if req.Username == "" {
		return validationErr("username", "Username is required.")
	}
	if req.Password == "" {
		return validationErr("password", "Password is required.")
	}
	if utf8.RuneCountInString(req.Username) > maxUsernameLength {
		return validationErr("username", "Username is too long.")
	}
	if utf8.RuneCountInString(req.Password) > maxPasswordLength {
		return validationErr("password", "Password is too long.")
	}
	if !usernamePattern.MatchString(req.Username) {
		return validationErr("username", "Username contains invalid characters.")
	}
	return nil
}

// randomLoginDelay picks a uniform delay in [100ms, 300ms] to blunt timing
// analysis of failed login attempts.
func randomLoginDelay() time.Duration {
	span := int64(loginDelayMax - loginDelayMin)
	n, err := rand.Int(rand.Reader, big.NewInt(span+1))
	if err != nil {
		// rand.Reader only fails on catastrophic OS errors; fall back to the
		// maximum delay rather than none at all.
		return loginDelayMax
	}
	return loginDelayMin + time.Duration(n.Int64())
}
