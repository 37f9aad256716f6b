package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/lanternpress/novelsite/internal/admin/domain"
	"github.com/lanternpress/novelsite/internal/admin/store"
	"github.com/stretchr/testify/require"
)

func TestDashboardGet(t *testing.T) {
	t.Parallel()

	t.Run("requires a logged-in session", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.get(t, "/dashboard", "")
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("anonymous session is not enough", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.beginAnon(t)

		rec := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
	})

	t.Run("renders the thoughts tab by default", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.login(t)

		ctx := context.Background()
		_, err := env.store.Thoughts().Create(ctx, domain.Thought{
			ThoughtDate: time.Now().UTC(),
			ThoughtText: "a quiet thought",
		})
		require.NoError(t, err)

		rec := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), "a quiet thought")
	})

	t.Run("unknown tab falls back to thoughts", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.login(t)

		rec := env.get(t, "/dashboard?tab=bogus", token)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Contains(t, rec.Body.String(), `name="thought_text"`)
	})

	t.Run("fingerprint mismatch ends the session", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.login(t)

		req := httptest.NewRequest(http.MethodGet, "https://admin.example.com/dashboard", nil)
		req.Header.Set("User-Agent", "a different browser")
		req.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)

		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))

		// The session record was destroyed, so even the original client
		// is locked out.
		after := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusSeeOther, after.Code)
	})
}

func TestDashboardThoughtActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, csrf := env.login(t)
	ctx := context.Background()

	t.Run("add", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":   {csrf},
			"add_thought":  {"1"},
			"thought_text": {"Hello <b>World</b>"},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard?tab=thoughts", rec.Header().Get("Location"))

		thoughts, err := env.store.Thoughts().List(ctx)
		require.NoError(t, err)
		require.Len(t, thoughts, 1)
		require.Equal(t, "Hello World", thoughts[0].ThoughtText)
	})

	t.Run("update", func(t *testing.T) {
		thoughts, err := env.store.Thoughts().List(ctx)
		require.NoError(t, err)
		id := thoughts[0].ID

		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":     {csrf},
			"update_thought": {"1"},
			"edit_id":        {itoa(id)},
			"edit_text":      {"revised text"},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		thoughts, err = env.store.Thoughts().List(ctx)
		require.NoError(t, err)
		require.Equal(t, "revised text", thoughts[0].ThoughtText)
	})

	t.Run("empty text after sanitizing is a validation error", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":   {csrf},
			"add_thought":  {"1"},
			"thought_text": {"<script>alert(1)</script>"},
		}, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		thoughts, err := env.store.Thoughts().List(ctx)
		require.NoError(t, err)
		id := thoughts[0].ID

		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token": {csrf},
			"delete_id":  {itoa(id)},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		thoughts, err = env.store.Thoughts().List(ctx)
		require.NoError(t, err)
		require.Empty(t, thoughts)
	})
}

func TestDashboardCSRFRejectedBeforeMutation(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, _ := env.login(t)

	rec := env.post(t, "/dashboard", token, url.Values{
		"csrf_token":   {"forged"},
		"add_thought":  {"1"},
		"thought_text": {"should never land"},
	}, true)
	require.Equal(t, http.StatusForbidden, rec.Code)

	thoughts, err := env.store.Thoughts().List(context.Background())
	require.NoError(t, err)
	require.Empty(t, thoughts)
}

func TestDashboardFeedbackActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, csrf := env.login(t)
	ctx := context.Background()

	id, err := env.store.Feedbacks().Create(ctx, domain.Feedback{
		Name:      "Reader",
		Email:     "reader@example.com",
		Message:   "More chapters please",
		Rating:    4,
		Status:    domain.FeedbackPending,
		CreatedAt: time.Now().UTC(),
	})
	require.NoError(t, err)

	t.Run("mark read", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token": {csrf},
			"mark_read":  {itoa(id)},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard?tab=feedbacks", rec.Header().Get("Location"))

		items, err := env.store.Feedbacks().List(ctx)
		require.NoError(t, err)
		require.Equal(t, domain.FeedbackRead, items[0].Status)
	})

	t.Run("delete", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":         {csrf},
			"delete_feedback":    {"1"},
			"delete_feedback_id": {itoa(id)},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)

		items, err := env.store.Feedbacks().List(ctx)
		require.NoError(t, err)
		require.Empty(t, items)
	})
}

func TestDashboardNewsletterActions(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, csrf := env.login(t)
	ctx := context.Background()

	id, err := env.store.Subscribers().Create(ctx, "reader@example.com", time.Now().UTC())
	require.NoError(t, err)

	t.Run("export downloads a csv", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":        {csrf},
			"export_newsletter": {"1"},
		}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
		require.Contains(t, rec.Header().Get("Content-Disposition"), "newsletter_subscribers_")

		body := rec.Body.Bytes()
		require.Equal(t, []byte{0xEF, 0xBB, 0xBF}, body[:3])
		require.Contains(t, string(body), "reader@example.com")
	})

	t.Run("delete subscriber", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":           {csrf},
			"delete_subscriber":    {"1"},
			"delete_subscriber_id": {itoa(id)},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/dashboard?tab=newsletter", rec.Header().Get("Location"))

		subs, err := env.store.Subscribers().List(ctx)
		require.NoError(t, err)
		require.Empty(t, subs)
	})

	t.Run("export with no subscribers is refused", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":        {csrf},
			"export_newsletter": {"1"},
		}, true)
		require.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestDashboardRateLimit(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, _ := env.login(t)

	for i := 0; i < 30; i++ {
		rec := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusOK, rec.Code, "request %d should pass", i+1)
	}

	rec := env.get(t, "/dashboard", token)
	require.Equal(t, http.StatusTooManyRequests, rec.Code)
	require.NotEmpty(t, rec.Header().Get("Retry-After"))

	t.Run("rejected requests keep counting", func(t *testing.T) {
		sess, err := env.mgr.Get(context.Background(), token)
		require.NoError(t, err)
		require.Equal(t, 31, sess.RequestCount)
	})
}

// stuckSessions passes reads through but fails every update, standing in
// for a store that can no longer persist the activity refresh.
type stuckSessions struct {
	store.Sessions
}

func (s *stuckSessions) Update(ctx context.Context, sess domain.Session) error {
	return errors.New("database is locked")
}

func TestDashboardAbortsWhenActivityRefreshFails(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, csrf := env.login(t)
	env.mgr.Sessions = &stuckSessions{Sessions: env.store.Sessions()}

	t.Run("get responds with a server error", func(t *testing.T) {
		rec := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusInternalServerError, rec.Code)
		require.Contains(t, rec.Body.String(), technicalErrMessage)
	})

	t.Run("post aborts before the record operation", func(t *testing.T) {
		rec := env.post(t, "/dashboard", token, url.Values{
			"csrf_token":   {csrf},
			"add_thought":  {"1"},
			"thought_text": {"should never land"},
		}, false)
		require.Equal(t, http.StatusInternalServerError, rec.Code)

		thoughts, err := env.store.Thoughts().List(context.Background())
		require.NoError(t, err)
		require.Empty(t, thoughts)
	})
}
