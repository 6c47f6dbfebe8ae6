package repository

import (
	"context"

	"propgen/domain/model"
)

// IProperty persists property records
type IProperty interface {
	Create(ctx context.Context, p *model.Property) error
	GetByID(ctx context.Context, id, userID string) (*model.Property, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]*model.Property, error)
	UpdateContent(ctx context.Context, id, userID string, captions map[string]string, hashtags []string) error
	MergeGeneratedImages(ctx context.Context, id, userID string, images map[string]string) error
	RecordPublish(ctx context.Context, id, userID, platform string, state model.PublishState) error
}
