package http

import (
	"embed"
	"html/template"
	"net/http"

	"github.com/lanternpress/novelsite/internal/admin/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

// LoginView is the data for the login page template.
type LoginView struct {
	CSRFToken string
	Flash     string
}

// DashboardView is the data for the dashboard template. Only the slice for
// the active tab is populated.
type DashboardView struct {
	Username  string
	CSRFToken string
	Tab       string
	Flash     string

	Thoughts    []domain.Thought
	Feedbacks   []domain.Feedback
	Subscribers []domain.Subscriber
}

// Views renders the admin pages. html/template escapes all interpolated
// values, which is the second half of the sanitize-on-write, escape-on-read
// contract for record text.
type Views struct {
	login     *template.Template
	dashboard *template.Template
}

func NewViews() (*Views, error) {
	login, err := template.ParseFS(templateFS, "templates/base.html", "templates/login.html")
	if err != nil {
		return nil, err
	}
	dashboard, err := template.ParseFS(templateFS, "templates/base.html", "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Views{login: login, dashboard: dashboard}, nil
}

func (v *Views) RenderLogin(w http.ResponseWriter, data LoginView) {
	v.render(w, v.login, data)
}

func (v *Views) RenderDashboard(w http.ResponseWriter, data DashboardView) {
	v.render(w, v.dashboard, data)
}

func (v *Views) render(w http.ResponseWriter, t *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := t.ExecuteTemplate(w, "base", data); err != nil {
		http.Error(w, technicalErrMessage, http.StatusInternalServerError)
	}
}
