package repository

import (
	"context"

	"propgen/domain/model"
)

// ISocialPublisher posts composed content to one platform using a stored token
type ISocialPublisher interface {
	Platform() string
	Publish(ctx context.Context, token *model.OAuthToken, in model.PublishInput) (*model.PublishResult, error)
}

// IPublishAudit records publish attempts
type IPublishAudit interface {
	Record(ctx context.Context, audit *model.PublishAudit) error
	ListByProperty(ctx context.Context, userID, propertyID string) ([]model.PublishAudit, error)
}
