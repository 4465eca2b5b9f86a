package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/identity"
	"github.com/wealthpulse/wealthpulse_service/internal/api/middleware"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type authFixture struct {
	router   *gin.Engine
	sessions *session.Service
	provider *httptest.Server
}

func setupAuthTest(t *testing.T, provider http.HandlerFunc) *authFixture {
	zl := zaptest.NewLogger(t)
	srv := httptest.NewServer(provider)
	t.Cleanup(srv.Close)

	client := identity.NewClient(identity.Config{
		IssuerBaseURL: srv.URL,
		BaseURL:       "http://app.test",
		ClientID:      "client-1",
		ClientSecret:  "secret-1",
		Timeout:       5 * time.Second,
	}, zl)
	sessions := session.NewService(session.Config{Secret: testSecret}, logger.NewLogger(zl))

	router := gin.New()
	router.Use(middleware.Session(sessions))
	router.GET("/api/auth/:action", NewAuthHandlers(client, sessions, false, zl).Handle)

	return &authFixture{router: router, sessions: sessions, provider: srv}
}

func okProvider(t *testing.T) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Path {
		case "/oauth/token":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "authorization_code", body["grant_type"])
			assert.Equal(t, "code-123", body["code"])
			w.Write([]byte(`{"access_token":"at-1","id_token":"id-1","expires_in":7200}`))
		case "/userinfo":
			assert.Equal(t, "Bearer at-1", r.Header.Get("Authorization"))
			w.Write([]byte(`{"sub":"user-1","email":"ada@example.com","name":"Ada"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}
}

func TestAuthHandlers_Login(t *testing.T) {
	f := setupAuthTest(t, okProvider(t))

	w := perform(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/login?screen_hint=signup", nil))
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/authorize", loc.Path)
	assert.Equal(t, "code", loc.Query().Get("response_type"))
	assert.Equal(t, "client-1", loc.Query().Get("client_id"))
	assert.Equal(t, "http://app.test/api/auth/callback", loc.Query().Get("redirect_uri"))
	assert.Equal(t, "signup", loc.Query().Get("screen_hint"))
}

func TestAuthHandlers_CallbackEstablishesSession(t *testing.T) {
	f := setupAuthTest(t, okProvider(t))

	w := perform(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/callback?code=code-123", nil))
	require.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "http://app.test", w.Header().Get("Location"))

	cookie := cookieNamed(w, session.DefaultCookieName)
	require.NotNil(t, cookie)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, "/", cookie.Path)
	assert.Equal(t, 7200, cookie.MaxAge)
	assert.Equal(t, http.SameSiteLaxMode, cookie.SameSite)

	res := f.sessions.Resolve(cookie.Value)
	require.True(t, res.SignedIn)
	assert.Equal(t, "user-1", res.User.Sub)
	assert.Equal(t, "at-1", res.Session.AccessToken)

	req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
	req.AddCookie(cookie)
	w = perform(f.router, req)
	require.Equal(t, http.StatusOK, w.Code)
	var user entities.Claims
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &user))
	assert.Equal(t, "ada@example.com", user.Email)
}

func TestAuthHandlers_CallbackErrors(t *testing.T) {
	failing := func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
	}

	tests := []struct {
		name     string
		provider http.HandlerFunc
		query    string
		wantErr  string
		wantDesc string
	}{
		{"missing code", okProvider(t), "", "no_code", ""},
		{"provider error", okProvider(t), "?error=access_denied&error_description=User%20cancelled", "access_denied", "User cancelled"},
		{"exchange failure", failing, "?code=bad", "callback_error", "Invalid authorization code"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := setupAuthTest(t, tt.provider)
			w := perform(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/callback"+tt.query, nil))
			require.Equal(t, http.StatusFound, w.Code)

			loc, err := url.Parse(w.Header().Get("Location"))
			require.NoError(t, err)
			assert.Equal(t, "app.test", loc.Host)
			assert.Equal(t, tt.wantErr, loc.Query().Get("error"))
			assert.Contains(t, loc.Query().Get("description"), tt.wantDesc)
			assert.Nil(t, cookieNamed(w, session.DefaultCookieName))
		})
	}
}

func TestAuthHandlers_Me(t *testing.T) {
	f := setupAuthTest(t, okProvider(t))
	expired := session.NewService(session.Config{Secret: testSecret}, logger.NewNop()).
		WithClock(func() time.Time { return time.Now().Add(-2 * time.Hour) })
	stale, err := expired.Encode(expired.NewSession(entities.Claims{Sub: "user-1"}, "at", "", time.Hour))
	require.NoError(t, err)

	tests := []struct {
		name   string
		cookie string
		want   string
	}{
		{"no cookie", "", "Not authenticated"},
		{"expired", stale, "Session expired"},
		{"garbage", "not-a-token", "Invalid session"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.cookie != "" {
				req.AddCookie(&http.Cookie{Name: session.DefaultCookieName, Value: tt.cookie})
			}
			w := perform(f.router, req)
			assert.Equal(t, http.StatusUnauthorized, w.Code)
			assert.JSONEq(t, `{"error":"`+tt.want+`"}`, w.Body.String())
		})
	}
}

func TestAuthHandlers_LogoutClearsCookie(t *testing.T) {
	f := setupAuthTest(t, okProvider(t))

	w := perform(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/logout", nil))
	require.Equal(t, http.StatusFound, w.Code)

	loc, err := url.Parse(w.Header().Get("Location"))
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", loc.Path)
	assert.Equal(t, "http://app.test", loc.Query().Get("returnTo"))

	cookie := cookieNamed(w, session.DefaultCookieName)
	require.NotNil(t, cookie)
	assert.Empty(t, cookie.Value)
	assert.True(t, cookie.MaxAge < 0)
}

func TestAuthHandlers_UnknownRoute(t *testing.T) {
	f := setupAuthTest(t, okProvider(t))

	w := perform(f.router, httptest.NewRequest(http.MethodGet, "/api/auth/profile", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"error":"Route not found"}`, w.Body.String())
}
