package handlers

import (
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/wealthpulse/wealthpulse_service/internal/adapters/identity"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/internal/domain/services/session"
)

// AuthHandlers drives the hosted login flow and owns the session cookie.
type AuthHandlers struct {
	identity     *identity.Client
	sessions     *session.Service
	secureCookie bool
	logger       *zap.Logger
}

func NewAuthHandlers(identityClient *identity.Client, sessions *session.Service, secureCookie bool, logger *zap.Logger) *AuthHandlers {
	return &AuthHandlers{
		identity:     identityClient,
		sessions:     sessions,
		secureCookie: secureCookie,
		logger:       logger,
	}
}

// Handle dispatches /api/auth/:action.
// @Summary Authentication flow
// @Description login, logout and callback redirect; me returns the signed-in user
// @Tags auth
// @Produce json
// @Param action path string true "login, logout, callback, me or status"
// @Param screen_hint query string false "signup to open the sign-up screen"
// @Success 200 {object} entities.Claims
// @Success 302
// @Failure 401 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Router /api/auth/{action} [get]
func (h *AuthHandlers) Handle(c *gin.Context) {
	switch c.Param("action") {
	case "login":
		h.Login(c)
	case "logout":
		h.Logout(c)
	case "callback":
		h.Callback(c)
	case "me":
		h.Me(c)
	case "status":
		h.Status(c)
	default:
		h.logger.Debug("Unknown auth route", zap.String("action", c.Param("action")))
		c.JSON(http.StatusNotFound, gin.H{"error": "Route not found"})
	}
}

func (h *AuthHandlers) Login(c *gin.Context) {
	if !h.identity.Configured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "Authentication is not configured"})
		return
	}
	hint := ""
	if c.Query("screen_hint") == "signup" {
		hint = "signup"
	}
	c.Redirect(http.StatusFound, h.identity.AuthorizeURL(hint))
}

func (h *AuthHandlers) Logout(c *gin.Context) {
	h.setCookie(c, "", -1)
	h.logger.Info("Logging out and clearing session")
	c.Redirect(http.StatusFound, h.identity.LogoutURL())
}

func (h *AuthHandlers) Callback(c *gin.Context) {
	base := h.identity.BaseURL()

	if providerErr := c.Query("error"); providerErr != "" {
		h.logger.Warn("Identity provider returned an error",
			zap.String("error", providerErr),
			zap.String("description", c.Query("error_description")))
		c.Redirect(http.StatusFound, base+"?"+url.Values{
			"error":       {providerErr},
			"description": {c.Query("error_description")},
		}.Encode())
		return
	}

	code := c.Query("code")
	if code == "" {
		c.Redirect(http.StatusFound, base+"?error=no_code")
		return
	}

	ctx := c.Request.Context()
	tokens, err := h.identity.Exchange(ctx, code)
	if err != nil {
		h.callbackFailed(c, err)
		return
	}
	user, err := h.identity.UserInfo(ctx, tokens.AccessToken)
	if err != nil {
		h.callbackFailed(c, err)
		return
	}

	expiresIn := time.Duration(tokens.ExpiresIn) * time.Second
	sess := h.sessions.NewSession(*user, tokens.AccessToken, tokens.IDToken, expiresIn)
	value, err := h.sessions.Encode(sess)
	if err != nil {
		h.callbackFailed(c, err)
		return
	}

	h.setCookie(c, value, tokens.ExpiresIn)
	h.logger.Info("Session established", zap.String("sub", user.Sub))
	c.Redirect(http.StatusFound, base)
}

func (h *AuthHandlers) callbackFailed(c *gin.Context, err error) {
	h.logger.Error("Callback processing failed",
		zap.Error(err),
		zap.String("request_id", getRequestID(c)))
	c.Redirect(http.StatusFound, h.identity.BaseURL()+"?"+url.Values{
		"error":       {"callback_error"},
		"description": {errorMessage(err)},
	}.Encode())
}

// Me returns the signed-in user's claims.
func (h *AuthHandlers) Me(c *gin.Context) {
	res := session.FromContext(c.Request.Context())
	switch {
	case res.SignedIn:
		c.JSON(http.StatusOK, res.User)
	case res.Reason == entities.ReasonExpired:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Session expired"})
	case res.Reason == entities.ReasonInvalid:
		h.setCookie(c, "", -1)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid session"})
	default:
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Not authenticated"})
	}
}

// Status reports the resolved identity without failing for anonymous callers.
func (h *AuthHandlers) Status(c *gin.Context) {
	c.JSON(http.StatusOK, session.FromContext(c.Request.Context()))
}

func (h *AuthHandlers) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.sessions.CookieName(), value, maxAge, "/", "", h.secureCookie, true)
}
