package model

import "time"

const (
	PlatformFacebook  = "facebook"
	PlatformInstagram = "instagram"
	PlatformTikTok    = "tiktok"
)

// Platforms lists every publish target in display order
var Platforms = []string{PlatformFacebook, PlatformInstagram, PlatformTikTok}

// OAuthState is the single-use CSRF token issued with an authorization URL
type OAuthState struct {
	State     string    `json:"state"`
	UserID    string    `json:"user_id"`
	Provider  string    `json:"provider"`
	ExpiresAt time.Time `json:"expires_at"`
	CreatedAt time.Time `json:"created_at"`
}

// Expired reports whether the state is past its expiry at now
func (s *OAuthState) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

// OAuthToken stores platform OAuth credentials per user. Token fields hold
// plaintext in memory only; the repository seals them at rest.
type OAuthToken struct {
	ID           int64      `json:"-"`
	UserID       string     `json:"-"`
	Platform     string     `json:"-"`
	AccessToken  string     `json:"-"`
	RefreshToken string     `json:"-"`
	ExpiresAt    *time.Time `json:"-"`
	Scopes       string     `json:"-"`
	AccountID    string     `json:"-"` // page id, instagram business id or tiktok open id
	AccountName  string     `json:"-"`
	TokenType    string     `json:"-"` // user | page
	CreatedAt    time.Time  `json:"-"`
	UpdatedAt    time.Time  `json:"-"`
}

// ProfileAccount is the identifier shown on the profile for this connection
func (t *OAuthToken) ProfileAccount() string {
	if t.Platform == PlatformTikTok && t.AccountName != "" {
		return t.AccountName
	}
	return t.AccountID
}
