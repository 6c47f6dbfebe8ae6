package model

import "time"

const (
	EventListingExtracted  = "listing.extracted"
	EventPropertyPublished = "property.published"
)

// DomainEvent is emitted to the configured event sinks after state changes
type DomainEvent struct {
	Type       string            `json:"type"`
	UserID     string            `json:"user_id"`
	PropertyID string            `json:"property_id"`
	Attributes map[string]string `json:"attributes,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}
