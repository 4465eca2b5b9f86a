package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/wealthpulse/wealthpulse_service/internal/domain/entities"
	"github.com/wealthpulse/wealthpulse_service/pkg/logger"
	"github.com/wealthpulse/wealthpulse_service/pkg/metrics"
)

const DefaultCookieName = "appSession"

// ErrNoSecret is returned by Encode when the service has no signing key.
var ErrNoSecret = errors.New("session secret is not set")

type ctxKey struct{}

// cookieClaims is the signed cookie payload.
type cookieClaims struct {
	Session entities.Session `json:"session"`
	jwt.RegisteredClaims
}

// Service encodes and resolves the signed session cookie.
type Service struct {
	cookieName string
	secret     []byte
	now        func() time.Time
	logger     *logger.Logger
}

type Config struct {
	CookieName string
	Secret     string
}

// NewService builds the resolver. Without a configured secret an ephemeral
// key is generated, so sessions do not survive a restart.
func NewService(cfg Config, log *logger.Logger) *Service {
	name := cfg.CookieName
	if name == "" {
		name = DefaultCookieName
	}
	secret := []byte(cfg.Secret)
	if len(secret) == 0 {
		secret = make([]byte, 32)
		if _, err := rand.Read(secret); err != nil {
			secret = nil
		}
		log.Warn("Session secret not configured, using an ephemeral key")
	}
	return &Service{
		cookieName: name,
		secret:     secret,
		now:        time.Now,
		logger:     log,
	}
}

// WithClock replaces the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

func (s *Service) CookieName() string {
	return s.cookieName
}

// NewSession builds the session stored after a successful login.
func (s *Service) NewSession(user entities.Claims, accessToken, idToken string, expiresIn time.Duration) entities.Session {
	return entities.Session{
		User:        user,
		AccessToken: accessToken,
		IDToken:     idToken,
		ExpiresAt:   s.now().Add(expiresIn).UnixMilli(),
	}
}

// Encode signs the session into a cookie value.
func (s *Service) Encode(sess entities.Session) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrNoSecret
	}
	claims := cookieClaims{
		Session: sess,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sess.User.Sub,
			IssuedAt:  jwt.NewNumericDate(s.now()),
			ExpiresAt: jwt.NewNumericDate(sess.Expiry()),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign session: %w", err)
	}
	return token, nil
}

// Resolve turns a cookie value into the request's identity. It never fails:
// anything other than a valid unexpired session resolves to signed out.
func (s *Service) Resolve(value string) entities.SessionResolution {
	res := s.resolve(value)
	metrics.SessionResolutionsTotal.WithLabelValues(string(res.Reason)).Inc()
	return res
}

func (s *Service) resolve(value string) entities.SessionResolution {
	if value == "" {
		return entities.SignedOut(entities.ReasonAbsent)
	}
	if len(s.secret) == 0 {
		return entities.SignedOut(entities.ReasonInvalid)
	}

	var claims cookieClaims
	_, err := jwt.ParseWithClaims(value, &claims, func(*jwt.Token) (interface{}, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		// Expiry is judged on the session's own expires_at below.
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		s.logger.Debugw("Rejected session cookie", "error", err)
		return entities.SignedOut(entities.ReasonInvalid)
	}
	if claims.Session.User.Sub == "" || claims.Session.ExpiresAt == 0 {
		return entities.SignedOut(entities.ReasonInvalid)
	}
	if claims.Session.Expired(s.now()) {
		return entities.SignedOut(entities.ReasonExpired)
	}

	sess := claims.Session
	return entities.SessionResolution{
		SignedIn: true,
		User:     &sess.User,
		Reason:   entities.ReasonValid,
		Session:  &sess,
	}
}

// WithResolution stores the request's identity on ctx.
func WithResolution(ctx context.Context, res entities.SessionResolution) context.Context {
	return context.WithValue(ctx, ctxKey{}, res)
}

// FromContext returns the identity stored by WithResolution, or a signed-out
// resolution when none was stored.
func FromContext(ctx context.Context) entities.SessionResolution {
	if res, ok := ctx.Value(ctxKey{}).(entities.SessionResolution); ok {
		return res
	}
	return entities.SignedOut(entities.ReasonAbsent)
}
