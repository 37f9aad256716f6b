package http

import (
	"net/http"

	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

// LogoutHandler destroys the current session unconditionally. A logout with
// no cookie, or with a stale one, still lands on the login page.
type LogoutHandler struct {
	Sessions *service.SessionManager
	Auth     *service.AuthService
}

func (h *LogoutHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if sess, ok := resolveSession(h.Sessions, r); ok {
		if err := h.Auth.Logout(r.Context(), &sess); err != nil {
			slogx.FromContext(r.Context()).Error("logout failed", "err", err)
		}
	}
	clearSessionCookie(w)
	setFlash(w, "You have been logged out.")
	http.Redirect(w, r, "/login", http.StatusSeeOther)
}
