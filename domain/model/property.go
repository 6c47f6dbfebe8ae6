package model

import "time"

// PropertyStatus tracks the lifecycle of a property record
type PropertyStatus string

const (
	PropertyStatusPending    PropertyStatus = "pending"
	PropertyStatusProcessing PropertyStatus = "processing"
	PropertyStatusProcessed  PropertyStatus = "processed"
)

// Property is the persisted representation of a scraped listing plus everything generated from it
type Property struct {
	ID              string                  `json:"id"`
	UserID          string                  `json:"user_id"`
	SourceURL       string                  `json:"source_url"`
	Title           string                  `json:"title"`
	Description     string                  `json:"description"`
	Price           string                  `json:"price"`
	Address         string                  `json:"address"`
	Images          []string                `json:"images"`
	Agent           *Agent                  `json:"agent,omitempty"`
	GeneratedImages map[string]string       `json:"generated_images"` // format -> public url
	Captions        map[string]string       `json:"captions"`         // platform -> text
	Hashtags        []string                `json:"hashtags"`
	PublishState    map[string]PublishState `json:"publish_state"` // platform -> last publish
	Status          PropertyStatus          `json:"status"`
	CreatedAt       time.Time               `json:"created_at"`
	UpdatedAt       time.Time               `json:"updated_at"`
}

// PublishState is written back after a successful publish so the dashboard can link the post
type PublishState struct {
	PostID      string    `json:"post_id"`
	PostURL     string    `json:"post_url,omitempty"`
	PublishedAt time.Time `json:"published_at"`
}
