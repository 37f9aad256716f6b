package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoginGet(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	t.Run("starts an anonymous session carrying a csrf token", func(t *testing.T) {
		rec := env.get(t, "/login", "")
		require.Equal(t, http.StatusOK, rec.Code)

		token := cookieValue(t, rec, sessionCookieName)
		require.NotEmpty(t, token)
		require.Contains(t, rec.Body.String(), `name="csrf_token"`)
	})

	t.Run("session cookie attributes", func(t *testing.T) {
		rec := env.get(t, "/login", "")

		var cookie *http.Cookie
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookieName {
				cookie = c
			}
		}
		require.NotNil(t, cookie)
		require.True(t, cookie.HttpOnly)
		require.True(t, cookie.Secure)
		require.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
		require.Equal(t, 1800, cookie.MaxAge)
		require.Equal(t, "/", cookie.Path)
	})

	t.Run("logged-in clients are bounced to the dashboard", func(t *testing.T) {
		token, _ := env.login(t)

		rec := env.get(t, "/login", token)
		require.Equal(t, http.StatusFound, rec.Code)
		require.Equal(t, "/dashboard", rec.Header().Get("Location"))
	})
}

func TestLoginPost(t *testing.T) {
	t.Parallel()

	t.Run("ajax success returns the redirect target", func(t *testing.T) {
		env := newTestEnv(t)
		token, csrf := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"csrf_token": {csrf},
			"username":   {testUsername},
			"password":   {testPassword},
		}, true)
		require.Equal(t, http.StatusOK, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.True(t, resp.Success)
		require.Equal(t, "/dashboard", resp.Redirect)

		newToken := cookieValue(t, rec, sessionCookieName)
		require.NotEqual(t, token, newToken, "login must regenerate the cookie token")
	})

	t.Run("wrong password fails with the generic message", func(t *testing.T) {
		env := newTestEnv(t)
		token, csrf := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"csrf_token": {csrf},
			"username":   {testUsername},
			"password":   {"wrong"},
		}, true)
		require.Equal(t, http.StatusUnauthorized, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.False(t, resp.Success)
		require.Equal(t, "Invalid credentials. Please try again.", resp.Message)
	})

	t.Run("missing csrf token is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"username": {testUsername},
			"password": {testPassword},
		}, true)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("wrong csrf token is rejected", func(t *testing.T) {
		env := newTestEnv(t)
		token, _ := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"csrf_token": {"deadbeef"},
			"username":   {testUsername},
			"password":   {testPassword},
		}, true)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("no session at all is rejected", func(t *testing.T) {
		env := newTestEnv(t)

		rec := env.post(t, "/login", "", url.Values{
			"csrf_token": {"anything"},
			"username":   {testUsername},
			"password":   {testPassword},
		}, true)
		require.Equal(t, http.StatusForbidden, rec.Code)
	})

	t.Run("validation failure reports the field error", func(t *testing.T) {
		env := newTestEnv(t)
		token, csrf := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"csrf_token": {csrf},
			"username":   {"no spaces allowed"},
			"password":   {testPassword},
		}, true)
		require.Equal(t, http.StatusBadRequest, rec.Code)

		var resp LoginResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		require.Contains(t, resp.Message, "invalid characters")
	})

	t.Run("plain form post redirects with a flash on failure", func(t *testing.T) {
		env := newTestEnv(t)
		token, csrf := env.beginAnon(t)

		rec := env.post(t, "/login", token, url.Values{
			"csrf_token": {csrf},
			"username":   {testUsername},
			"password":   {"wrong"},
		}, false)
		require.Equal(t, http.StatusSeeOther, rec.Code)
		require.Equal(t, "/login", rec.Header().Get("Location"))
		require.NotEmpty(t, cookieValue(t, rec, flashCookieName))
	})
}

// A browser update between rendering the form and submitting it changes the
// client fingerprint. The session must be bound to the submitting client, not
// the one that rendered the form, or the fresh login is destroyed on its
// first dashboard request.
func TestLoginBindsFingerprintToSubmittingClient(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)

	serve := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		env.router.ServeHTTP(rec, req)
		return rec
	}

	formReq := httptest.NewRequest(http.MethodGet, "https://admin.example.com/login", nil)
	formReq.Header.Set("User-Agent", "Mozilla/5.0 Firefox/140.0")
	formRec := serve(formReq)
	require.Equal(t, http.StatusOK, formRec.Code)

	anonToken := cookieValue(t, formRec, sessionCookieName)
	anon, err := env.mgr.Get(context.Background(), anonToken)
	require.NoError(t, err)

	form := url.Values{
		"csrf_token": {anon.CSRFToken},
		"username":   {testUsername},
		"password":   {testPassword},
	}
	postReq := httptest.NewRequest(http.MethodPost, "https://admin.example.com/login", strings.NewReader(form.Encode()))
	postReq.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	postReq.Header.Set("User-Agent", "Mozilla/5.0 Firefox/141.0")
	postReq.AddCookie(&http.Cookie{Name: sessionCookieName, Value: anonToken})
	postRec := serve(postReq)
	require.Equal(t, http.StatusSeeOther, postRec.Code)
	require.Equal(t, "/dashboard", postRec.Header().Get("Location"))

	token := cookieValue(t, postRec, sessionCookieName)

	dashReq := httptest.NewRequest(http.MethodGet, "https://admin.example.com/dashboard", nil)
	dashReq.Header.Set("User-Agent", "Mozilla/5.0 Firefox/141.0")
	dashReq.AddCookie(&http.Cookie{Name: sessionCookieName, Value: token})
	dashRec := serve(dashReq)
	require.Equal(t, http.StatusOK, dashRec.Code)

	sess, err := env.mgr.Get(context.Background(), token)
	require.NoError(t, err)
	require.True(t, sess.LoggedIn)
}

func TestLogout(t *testing.T) {
	t.Parallel()

	env := newTestEnv(t)
	token, _ := env.login(t)

	rec := env.get(t, "/logout", token)
	require.Equal(t, http.StatusSeeOther, rec.Code)
	require.Equal(t, "/login", rec.Header().Get("Location"))

	t.Run("cookie is cleared", func(t *testing.T) {
		for _, c := range rec.Result().Cookies() {
			if c.Name == sessionCookieName {
				require.Empty(t, c.Value)
				require.Negative(t, c.MaxAge)
			}
		}
	})

	t.Run("old token no longer grants access", func(t *testing.T) {
		dash := env.get(t, "/dashboard", token)
		require.Equal(t, http.StatusSeeOther, dash.Code)
		require.Equal(t, "/login", dash.Header().Get("Location"))
	})
}
