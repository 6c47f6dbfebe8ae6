package model

import "time"

// Profile is the per-user account row. OAuth tokens are never stored here.
type Profile struct {
	ID                 string    `json:"id"`
	UserID             string    `json:"user_id"`
	DisplayName        string    `json:"display_name"`
	Company            string    `json:"company"`
	AvatarURL          string    `json:"avatar_url"`
	LogoURL            string    `json:"logo_url"`
	Plan               string    `json:"plan"`
	UsageCount         int       `json:"usage_count"`
	MonthlyLimit       int       `json:"monthly_limit"`
	Language           string    `json:"language"`
	FacebookConnected  bool      `json:"facebook_connected"`
	FacebookPageID     string    `json:"facebook_page_id,omitempty"`
	InstagramConnected bool      `json:"instagram_connected"`
	InstagramAccountID string    `json:"instagram_account_id,omitempty"`
	TikTokConnected    bool      `json:"tiktok_connected"`
	TikTokUsername     string    `json:"tiktok_username,omitempty"`
	CreatedAt          time.Time `json:"created_at"`
	UpdatedAt          time.Time `json:"updated_at"`
}

// HasQuota reports whether another extraction may start
func (p *Profile) HasQuota() bool {
	return p.UsageCount < p.MonthlyLimit
}

// IsConnected reports the connection flag for a platform
func (p *Profile) IsConnected(platform string) bool {
	switch platform {
	case PlatformFacebook:
		return p.FacebookConnected
	case PlatformInstagram:
		return p.InstagramConnected
	case PlatformTikTok:
		return p.TikTokConnected
	}
	return false
}

// ProfileUpdate carries user-editable profile fields; nil means unchanged
type ProfileUpdate struct {
	DisplayName *string `json:"display_name"`
	Company     *string `json:"company"`
	AvatarURL   *string `json:"avatar_url"`
	LogoURL     *string `json:"logo_url"`
	Language    *string `json:"language"`
}

// Connection describes the account identifiers recorded on the profile after an OAuth callback
type Connection struct {
	Platform  string
	Connected bool
	AccountID string
}
