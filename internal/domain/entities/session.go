package entities

import "time"

// Claims is the identity-provider profile kept in the session.
type Claims struct {
	Sub           string `json:"sub"`
	Name          string `json:"name,omitempty"`
	Nickname      string `json:"nickname,omitempty"`
	Email         string `json:"email,omitempty"`
	EmailVerified bool   `json:"email_verified,omitempty"`
	Picture       string `json:"picture,omitempty"`
	UpdatedAt     string `json:"updated_at,omitempty"`
}

// Session is the payload carried by the session cookie. ExpiresAt is in
// milliseconds since the epoch.
type Session struct {
	User        Claims `json:"user"`
	AccessToken string `json:"access_token"`
	IDToken     string `json:"id_token,omitempty"`
	ExpiresAt   int64  `json:"expires_at"`
}

func (s Session) Expiry() time.Time {
	return time.UnixMilli(s.ExpiresAt)
}

// Expired reports whether now is past the expiry.
func (s Session) Expired(now time.Time) bool {
	return now.After(s.Expiry())
}

// ResolutionReason says why a request is or is not signed in.
type ResolutionReason string

const (
	ReasonValid   ResolutionReason = "valid"
	ReasonAbsent  ResolutionReason = "absent"
	ReasonExpired ResolutionReason = "expired"
	ReasonInvalid ResolutionReason = "invalid"
)

// SessionResolution is the per-request identity context.
type SessionResolution struct {
	SignedIn bool             `json:"isSignedIn"`
	User     *Claims          `json:"user"`
	Reason   ResolutionReason `json:"-"`
	Session  *Session         `json:"-"`
}

// SignedOut returns a resolution for an anonymous request.
func SignedOut(reason ResolutionReason) SessionResolution {
	return SessionResolution{Reason: reason}
}
