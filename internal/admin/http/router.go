package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/service"
	"github.com/lanternpress/novelsite/internal/admin/store"
	"github.com/lanternpress/novelsite/pkg/httpx"
	"github.com/lanternpress/novelsite/pkg/slogx"
)

// Router holds shared dependencies for HTTP handlers.
type Router struct {
	Mux         *http.ServeMux
	middlewares []httpx.Middleware

	buildVersion string
	startTime    time.Time
	logger       *slog.Logger
	store        store.Store

	AuthService       *service.AuthService
	SessionManager    *service.SessionManager
	RateLimiter       *service.SessionRateLimiter
	CSRFGuard         service.CSRFGuard
	ThoughtsService   *service.ThoughtsService
	FeedbackService   *service.FeedbackService
	NewsletterService *service.NewsletterService
	Views             *Views
}

func NewRouter(buildVersion string, st store.Store, logger *slog.Logger) *Router {
	r := &Router{
		Mux:          http.NewServeMux(),
		buildVersion: buildVersion,
		startTime:    time.Now(),
		store:        st,
		logger:       logger,
	}

	// Global middleware chain: every response carries the security headers,
	// and plain HTTP is redirected before anything else runs.
	r.middlewares = []httpx.Middleware{
		slogx.HTTPMiddleware(r.logger),
		httpx.RequireHTTPS(),
		httpx.SecurityHeaders(),
	}

	return r
}

func (r *Router) ApplyRoutes() {
	r.registerAuth()
	r.registerDashboard()
	r.registerSystem()
}

// ServeHTTP implements http.Handler for Router and applies the global
// middleware chain.
func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	httpx.Chain(r.Mux, r.middlewares...).ServeHTTP(w, req)
}

func (r *Router) registerAuth() {
	loginHandler := &LoginHandler{
		Auth:        r.AuthService,
		Sessions:    r.SessionManager,
		RateLimiter: r.RateLimiter,
		CSRF:        r.CSRFGuard,
		Views:       r.Views,
	}

	r.Mux.Handle("GET /login", http.HandlerFunc(loginHandler.HandleGet))

	// POST /login - strict transport-level limit by IP + username in front
	// of the per-session counter, to blunt distributed credential stuffing.
	r.Mux.Handle("POST /login",
		httpx.Chain(http.HandlerFunc(loginHandler.HandlePost),
			httpx.RateLimitByIPAndFormField(httpx.StrictLimit, "username"),
		),
	)

	logoutHandler := &LogoutHandler{Sessions: r.SessionManager, Auth: r.AuthService}
	r.Mux.Handle("GET /logout", http.HandlerFunc(logoutHandler.ServeHTTP))

	// The site root is the login page for now; marketing pages are served
	// elsewhere.
	r.Mux.Handle("GET /{$}", http.RedirectHandler("/login", http.StatusFound))
}

func (r *Router) registerDashboard() {
	h := &DashboardHandler{
		Sessions:    r.SessionManager,
		RateLimiter: r.RateLimiter,
		CSRF:        r.CSRFGuard,
		Thoughts:    r.ThoughtsService,
		Feedback:    r.FeedbackService,
		Newsletter:  r.NewsletterService,
		Views:       r.Views,
	}

	r.Mux.Handle("GET /dashboard", http.HandlerFunc(h.HandleGet))
	r.Mux.Handle("POST /dashboard", http.HandlerFunc(h.HandlePost))
}

func (r *Router) registerSystem() {
	// Health check endpoints - lenient rate limits (monitoring systems may poll frequently)
	r.Mux.Handle("GET /livez",
		httpx.Chain(LivezHandler(r.startTime, r.buildVersion),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
	r.Mux.Handle("GET /readyz",
		httpx.Chain(ReadyzHandler(r.startTime, r.buildVersion, r.store),
			httpx.RateLimitByIP(httpx.LenientLimit),
		),
	)
}
