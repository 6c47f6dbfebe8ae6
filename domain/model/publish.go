package model

import (
	"strings"
	"time"
)

// PublishInput is the composed content for one platform
type PublishInput struct {
	PropertyID  string
	ImageURLs   []string
	Caption     string
	Hashtags    []string
	Title       string
	Description string
}

// PublishResult is what the platform reported for a created post
type PublishResult struct {
	PostID    string `json:"postId"`
	URL       string `json:"url"`
	UploadURL string `json:"uploadUrl,omitempty"`
}

// PublishAudit is an append-only log entry of publish attempts
type PublishAudit struct {
	PropertyID   string    `json:"property_id" bson:"property_id"`
	UserID       string    `json:"user_id" bson:"user_id"`
	Platform     string    `json:"platform" bson:"platform"`
	Status       string    `json:"status" bson:"status"` // success | failed
	PostID       string    `json:"post_id,omitempty" bson:"post_id,omitempty"`
	ErrorMessage string    `json:"error_message,omitempty" bson:"error_message,omitempty"`
	ImageCount   int       `json:"image_count" bson:"image_count"`
	CreatedAt    time.Time `json:"created_at" bson:"created_at"`
}

// Message joins the caption and the hashtags with a blank line between them
func (in PublishInput) Message() string {
	tags := make([]string, 0, len(in.Hashtags))
	for _, h := range in.Hashtags {
		h = strings.TrimSpace(strings.TrimLeft(strings.TrimSpace(h), "#"))
		if h != "" {
			tags = append(tags, "#"+h)
		}
	}
	if len(tags) == 0 {
		return in.Caption
	}
	if in.Caption == "" {
		return strings.Join(tags, " ")
	}
	return in.Caption + "\n\n" + strings.Join(tags, " ")
}
