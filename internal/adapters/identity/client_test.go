package identity

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "github.com/wealthpulse/wealthpulse_service/pkg/errors"
)

func testConfig(issuer string) Config {
	return Config{
		IssuerBaseURL: issuer + "/",
		BaseURL:       "http://localhost:3000/",
		ClientID:      "client-1",
		ClientSecret:  "secret-1",
	}
}

func TestClient_AuthorizeURL(t *testing.T) {
	c := NewClient(testConfig("https://tenant.auth0.com"), zaptest.NewLogger(t))

	tests := []struct {
		name       string
		screenHint string
	}{
		{name: "login", screenHint: ""},
		{name: "signup", screenHint: "signup"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := url.Parse(c.AuthorizeURL(tt.screenHint))
			require.NoError(t, err)
			assert.Equal(t, "tenant.auth0.com", u.Host)
			assert.Equal(t, "/authorize", u.Path)
			q := u.Query()
			assert.Equal(t, "code", q.Get("response_type"))
			assert.Equal(t, "client-1", q.Get("client_id"))
			assert.Equal(t, "http://localhost:3000/api/auth/callback", q.Get("redirect_uri"))
			assert.Equal(t, "openid profile email", q.Get("scope"))
			assert.Equal(t, tt.screenHint, q.Get("screen_hint"))
		})
	}
}

func TestClient_LogoutURL(t *testing.T) {
	c := NewClient(testConfig("https://tenant.auth0.com"), zaptest.NewLogger(t))
	u, err := url.Parse(c.LogoutURL())
	require.NoError(t, err)
	assert.Equal(t, "/v2/logout", u.Path)
	assert.Equal(t, "http://localhost:3000", u.Query().Get("returnTo"))
}

func TestClient_ExchangeAndUserInfo(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/oauth/token":
			var body map[string]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, "authorization_code", body["grant_type"])
			assert.Equal(t, "abc", body["code"])
			_, _ = w.Write([]byte(`{"access_token":"at","id_token":"it","token_type":"Bearer"}`))
		case "/userinfo":
			assert.Equal(t, "Bearer at", r.Header.Get("Authorization"))
			_, _ = w.Write([]byte(`{"sub":"auth0|1","name":"Asha","email":"asha@example.com"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))

	tokens, err := c.Exchange(context.Background(), "abc")
	require.NoError(t, err)
	assert.Equal(t, "at", tokens.AccessToken)
	assert.Equal(t, defaultExpiresIn, tokens.ExpiresIn)

	claims, err := c.UserInfo(context.Background(), tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "auth0|1", claims.Sub)
	assert.Equal(t, "asha@example.com", claims.Email)
}

func TestClient_ExchangeProviderError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
		_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"Invalid authorization code"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), zaptest.NewLogger(t))
	_, err := c.Exchange(context.Background(), "stale")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Invalid authorization code")
	assert.Equal(t, http.StatusForbidden, apperrors.GetStatusCode(err))
}

func TestClient_NotConfigured(t *testing.T) {
	c := NewClient(Config{BaseURL: "http://localhost:3000"}, zaptest.NewLogger(t))
	assert.False(t, c.Configured())
	_, err := c.Exchange(context.Background(), "abc")
	assert.ErrorIs(t, err, apperrors.ErrNotConfigured)
}
