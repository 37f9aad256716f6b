package http

import (
	"errors"
	"net/http"

	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/pkg/httpx"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

const (
	csrfFailureMessage  = "Invalid security token. Please refresh the page and try again."
	rateLimitedMessage  = "Too many requests. Please wait a moment and try again."
	technicalErrMessage = "A technical error occurred. Please try again later."
	sessionEndedMessage = "Your session has ended. Please log in again."
)

// LoginResponse is the JSON body returned to AJAX-style login requests.
type LoginResponse struct {
	Success  bool   `json:"success"`
	Message  string `json:"message,omitempty"`
	Redirect string `json:"redirect,omitempty"`
}

// LoginHandler serves GET and POST /login.
type LoginHandler struct {
	Auth        *service.AuthService
	Sessions    *service.SessionManager
	RateLimiter *service.SessionRateLimiter
	CSRF        service.CSRFGuard
	Views       *Views
}

// HandleGet renders the login form, starting an anonymous session when the
// client has none so the form can carry a CSRF token.
func (h *LoginHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, ok := resolveSession(h.Sessions, r)
	if ok && sess.LoggedIn {
		state, err := h.Sessions.Validate(ctx, &sess, clientFingerprint(r))
		if err != nil {
			log.Error("session validation failed", "err", err)
			if state == service.SessionValid {
				// The activity refresh did not persist; aborting keeps the
				// stored record authoritative.
				http.Error(w, technicalErrMessage, http.StatusInternalServerError)
				return
			}
		}
		if state == service.SessionValid {
			http.Redirect(w, r, "/dashboard", http.StatusFound)
			return
		}
		clearSessionCookie(w)
		ok = false
	}

	if !ok {
		var err error
		sess, err = beginSession(h.Sessions, w, r)
		if err != nil {
			log.Error("failed to begin session", "err", err)
			http.Error(w, technicalErrMessage, http.StatusInternalServerError)
			return
		}
	}

	h.Views.RenderLogin(w, LoginView{
		CSRFToken: sess.CSRFToken,
		Flash:     takeFlash(w, r),
	})
}

// HandlePost runs the login flow. Per the dashboard's control-flow contract
// the CSRF check runs first, then the per-session rate limiter, then the
// credential state machine.
func (h *LoginHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, http.StatusBadRequest, "Malformed form body.")
		return
	}

	sess, ok := resolveSession(h.Sessions, r)
	if !ok {
		// No session means no CSRF token was ever issued to this client.
		h.fail(w, r, http.StatusForbidden, csrfFailureMessage)
		return
	}

	if !h.CSRF.Verify(r.PostFormValue("csrf_token"), sess.CSRFToken) {
		h.fail(w, r, http.StatusForbidden, csrfFailureMessage)
		return
	}

	decision, err := h.RateLimiter.CheckAndIncrement(ctx, &sess)
	if err != nil {
		log.Error("rate limiter failed", "err", err)
		h.fail(w, r, http.StatusInternalServerError, technicalErrMessage)
		return
	}
	if decision == service.RateLimited {
		h.fail(w, r, http.StatusTooManyRequests, rateLimitedMessage)
		return
	}

	result, err := h.Auth.Login(ctx, sess, service.LoginRequest{
		Username:    r.PostFormValue("username"),
		Password:    r.PostFormValue("password"),
		OTPCode:     r.PostFormValue("otp_code"),
		Fingerprint: clientFingerprint(r),
	})
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			h.fail(w, r, http.StatusBadRequest, ve.Message)
		case errors.Is(err, service.ErrInvalidCredentials):
			h.fail(w, r, http.StatusUnauthorized, service.InvalidCredentialsMessage)
		default:
			log.Error("login failed", "err", err)
			h.fail(w, r, http.StatusInternalServerError, technicalErrMessage)
		}
		return
	}

	setSessionCookie(w, result.Token)

	if httpx.IsAJAX(r) {
		httpx.WriteJSON(w, http.StatusOK, LoginResponse{
			Success:  true,
			Redirect: result.Redirect,
		})
		return
	}
	http.Redirect(w, r, result.Redirect, http.StatusSeeOther)
}

func (h *LoginHandler) fail(w http.ResponseWriter, r *http.Request, code int, message string) {
	if httpx.IsAJAX(r) {
		httpx.WriteJSON(w, code, LoginResponse{Success: false, Message: message})
		return
	}
	setFlash(w, message)
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
