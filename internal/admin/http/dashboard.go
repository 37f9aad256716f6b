package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/pkg/httpx"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

// Dashboard tabs. Unknown tab values fall back to thoughts.
const (
	TabThoughts   = "thoughts"
	TabFeedbacks  = "feedbacks"
	TabNewsletter = "newsletter"
)

// DashboardHandler serves GET and POST /dashboard. POSTs run the mandated
// pipeline in order: CSRF verification, per-session rate limiting, session
// validation, then exactly one record mutation.
type DashboardHandler struct {
	Sessions    *service.SessionManager
	RateLimiter *service.SessionRateLimiter
	CSRF        service.CSRFGuard
	Thoughts    *service.ThoughtsService
	Feedback    *service.FeedbackService
	Newsletter  *service.NewsletterService
	Views       *Views
}

func (h *DashboardHandler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	if limited := h.rateLimit(w, r, &sess); limited {
		return
	}

	if !h.validateSession(w, r, &sess) {
		return
	}

	tab := normalizeTab(r.URL.Query().Get("tab"))
	view, err := h.buildTabView(r, sess, tab)
	if err != nil {
		log.Error("failed to load dashboard data", "tab", tab, "err", err)
		http.Error(w, technicalErrMessage, http.StatusInternalServerError)
		return
	}
	view.Flash = takeFlash(w, r)

	h.Views.RenderDashboard(w, view)
}

func (h *DashboardHandler) HandlePost(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slogx.FromContext(ctx)

	if err := r.ParseForm(); err != nil {
		h.fail(w, r, TabThoughts, http.StatusBadRequest, "Malformed form body.")
		return
	}

	sess, ok := h.requireSession(w, r)
	if !ok {
		return
	}

	// CSRF first: a forged request must abort before it can even consume
	// rate-limit budget or touch a record.
	if !h.CSRF.Verify(r.PostFormValue("csrf_token"), sess.CSRFToken) {
		h.fail(w, r, TabThoughts, http.StatusForbidden, csrfFailureMessage)
		return
	}

	if limited := h.rateLimit(w, r, &sess); limited {
		return
	}

	if !h.validateSession(w, r, &sess) {
		return
	}

	action, tab := selectAction(r)
	if action == nil {
		h.fail(w, r, TabThoughts, http.StatusBadRequest, "Unknown action.")
		return
	}

	if tab == TabNewsletter && r.PostFormValue("export_newsletter") != "" {
		h.serveExport(w, r)
		return
	}

	if err := action(ctx, h); err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			h.fail(w, r, tab, http.StatusBadRequest, ve.Message)
			return
		}
		log.Error("dashboard action failed", "err", err)
		h.fail(w, r, tab, http.StatusInternalServerError, technicalErrMessage)
		return
	}

	http.Redirect(w, r, "/dashboard?tab="+tab, http.StatusSeeOther)
}

// requireSession resolves the request's session or bounces to the login page.
func (h *DashboardHandler) requireSession(w http.ResponseWriter, r *http.Request) (domain.Session, bool) {
	sess, ok := resolveSession(h.Sessions, r)
	if !ok {
		clearSessionCookie(w)
		setFlash(w, sessionEndedMessage)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return domain.Session{}, false
	}
	return sess, true
}

// rateLimit runs the per-session fixed-window counter. Reports true when the
// request was rejected.
func (h *DashboardHandler) rateLimit(w http.ResponseWriter, r *http.Request, sess *domain.Session) bool {
	decision, err := h.RateLimiter.CheckAndIncrement(r.Context(), sess)
	if err != nil {
		slogx.FromContext(r.Context()).Error("rate limiter failed", "err", err)
		http.Error(w, technicalErrMessage, http.StatusInternalServerError)
		return true
	}
	if decision == service.RateLimited {
		w.Header().Set("Retry-After", fmt.Sprintf("%d", int(service.DefaultRateWindow.Seconds())))
		http.Error(w, rateLimitedMessage, http.StatusTooManyRequests)
		return true
	}
	return false
}

// validateSession enforces login state, fingerprint binding and the idle
// timeout. Reports false (after responding) when the request must not
// proceed: the session is invalid, or the activity refresh failed to
// persist, which aborts the request before any record operation runs.
func (h *DashboardHandler) validateSession(w http.ResponseWriter, r *http.Request, sess *domain.Session) bool {
	state, err := h.Sessions.Validate(r.Context(), sess, clientFingerprint(r))
	if err != nil {
		slogx.FromContext(r.Context()).Error("session validation failed", "err", err)
		if state == service.SessionValid {
			http.Error(w, technicalErrMessage, http.StatusInternalServerError)
			return false
		}
	}
	if state != service.SessionValid {
		clearSessionCookie(w)
		setFlash(w, sessionEndedMessage)
		http.Redirect(w, r, "/login", http.StatusSeeOther)
		return false
	}
	return true
}

// selectAction maps the mutually-exclusive action fields of the dashboard
// form onto a record operation and the tab to land on afterwards.
func selectAction(r *http.Request) (func(ctx context.Context, h *DashboardHandler) error, string) {
	form := r.PostForm
	switch {
	case form.Get("add_thought") != "":
		text := form.Get("thought_text")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Thoughts.Add(ctx, text)
		}, TabThoughts
	case form.Get("update_thought") != "":
		id, text := form.Get("edit_id"), form.Get("edit_text")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Thoughts.Update(ctx, id, text)
		}, TabThoughts
	case form.Get("delete_id") != "":
		id := form.Get("delete_id")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Thoughts.Delete(ctx, id)
		}, TabThoughts
	case form.Get("mark_read") != "":
		id := form.Get("mark_read")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Feedback.MarkRead(ctx, id)
		}, TabFeedbacks
	case form.Get("delete_feedback") != "":
		id := form.Get("delete_feedback_id")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Feedback.Delete(ctx, id)
		}, TabFeedbacks
	case form.Get("delete_subscriber") != "":
		id := form.Get("delete_subscriber_id")
		return func(ctx context.Context, h *DashboardHandler) error {
			return h.Newsletter.Delete(ctx, id)
		}, TabNewsletter
	case form.Get("export_newsletter") != "":
		return func(ctx context.Context, h *DashboardHandler) error { return nil }, TabNewsletter
	}
	return nil, ""
}

func (h *DashboardHandler) serveExport(w http.ResponseWriter, r *http.Request) {
	data, err := h.Newsletter.ExportCSV(r.Context())
	if err != nil {
		if errors.Is(err, service.ErrNoSubscribers) {
			h.fail(w, r, TabNewsletter, http.StatusConflict, "There are no subscribers to export.")
			return
		}
		slogx.FromContext(r.Context()).Error("csv export failed", "err", err)
		h.fail(w, r, TabNewsletter, http.StatusInternalServerError, technicalErrMessage)
		return
	}

	filename := fmt.Sprintf("newsletter_subscribers_%s.csv", time.Now().UTC().Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	httpx.NoCache(w)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (h *DashboardHandler) buildTabView(r *http.Request, sess domain.Session, tab string) (DashboardView, error) {
	view := DashboardView{
		Username:  sess.Username,
		CSRFToken: sess.CSRFToken,
		Tab:       tab,
	}

	var err error
	switch tab {
	case TabFeedbacks:
		view.Feedbacks, err = h.Feedback.List(r.Context())
	case TabNewsletter:
		view.Subscribers, err = h.Newsletter.List(r.Context())
	default:
		view.Thoughts, err = h.Thoughts.List(r.Context())
	}
	return view, err
}

func (h *DashboardHandler) fail(w http.ResponseWriter, r *http.Request, tab string, code int, message string) {
	if httpx.IsAJAX(r) {
		httpx.WriteJSON(w, code, LoginResponse{Success: false, Message: message})
		return
	}
	setFlash(w, message)
	http.Redirect(w, r, "/dashboard?tab="+tab, http.StatusSeeOther)
}

func normalizeTab(tab string) string {
	switch tab {
	case TabThoughts, TabFeedbacks, TabNewsletter:
		return tab
	default:
		return TabThoughts
	}
}
