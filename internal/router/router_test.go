package router_test

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"nexusmarket/internal/middleware"
	"nexusmarket/internal/remote"
	"nexusmarket/internal/remote/remotetest"
	"nexusmarket/internal/router"
	"nexusmarket/internal/services"
	"nexusmarket/internal/store"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type app struct {
	engine *gin.Engine
	store  *store.Store
	srv    *remotetest.Server
}

func newApp(t *testing.T) *app {
	t.Helper()
	gin.SetMode(gin.TestMode)

	srv := remotetest.New()
	t.Cleanup(srv.Close)

	rc := remote.NewClient(srv.URL(), "anon-key")
	listingSvc := services.NewListingService(rc)
	st := store.New(rc, services.NewAuthService(rc), listingSvc)

	r := gin.New()
	r.Use(sessions.Sessions("nexus_session", cookie.NewStore([]byte("test-secret"))))
	r.Use(middleware.LoadUser(st, rc))
	router.RegisterRoutes(r, st, rc, listingSvc)

	return &app{engine: r, store: st, srv: srv}
}

func (a *app) get(path string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, path, nil)
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) postForm(path string, form url.Values) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) postJSON(path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	a.engine.ServeHTTP(w, req)
	return w
}

func (a *app) signup(t *testing.T, username, email, secret string) {
	t.Helper()
	form := url.Values{
		"username": {username},
		"email":    {email},
		"password": {"password1"},
	}
	if secret != "" {
		form.Set("adminSecret", secret)
	}
	w := a.postForm("/signup", form)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
}

func TestUnknownPathRedirectsHome(t *testing.T) {
	a := newApp(t)
	w := a.get("/no-such-page")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/", w.Header().Get("Location"))
}

func TestProtectedRouteRedirectsToLogin(t *testing.T) {
	a := newApp(t)
	w := a.get("/dashboard")
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestMarketplaceShowsSeededListing(t *testing.T) {
	a := newApp(t)
	a.srv.Seed("listings", map[string]any{"id": "l-1", "owner_id": "u-1", "title": "Maxed account"})

	w := a.get("/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Maxed account")
}

func TestSignupThenProfile(t *testing.T) {
	a := newApp(t)
	a.signup(t, "seller", "s@example.com", "")

	w := a.get("/profile")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "seller")
	require.Contains(t, w.Body.String(), "bioHtml")
}

func TestSignupRejectsShortPassword(t *testing.T) {
	a := newApp(t)
	w := a.postForm("/signup", url.Values{
		"username": {"x"}, "email": {"x@example.com"}, "password": {"123"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestControlPanelForbiddenForRegularUser(t *testing.T) {
	a := newApp(t)
	a.signup(t, "seller", "s@example.com", "")

	w := a.get("/control-panel")
	require.Equal(t, http.StatusForbidden, w.Code)
}

func TestControlPanelForAdmin(t *testing.T) {
	a := newApp(t)
	a.signup(t, "boss", "boss@example.com", services.AdminSecret)

	w := a.get("/control-panel")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "users")
}

func TestCreateListingFlow(t *testing.T) {
	a := newApp(t)
	a.signup(t, "seller", "s@example.com", "")

	w := a.postJSON("/create-post", `{"title":"Fresh account","images":[]}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	require.Contains(t, w.Body.String(), `"featured":false`)

	home := a.get("/")
	require.Contains(t, home.Body.String(), "Fresh account")
}

func TestCreateListingRequiresTitle(t *testing.T) {
	a := newApp(t)
	a.signup(t, "seller", "s@example.com", "")

	w := a.postJSON("/create-post", `{"title":""}`)
	require.Equal(t, http.StatusBadRequest, w.Code)
	// 校验失败时根本不应触达远端
	require.Zero(t, a.srv.WriteCount("POST", "listings"))
}

func TestListingDetailNotFound(t *testing.T) {
	a := newApp(t)
	w := a.get("/account/missing-id")
	require.Equal(t, http.StatusNotFound, w.Code)
}
