package repository

import (
	"context"

	"propgen/domain/model"
)

// IProfile persists user profiles
type IProfile interface {
	GetByUserID(ctx context.Context, userID string) (*model.Profile, error)
	// Create inserts a default profile; an existing row for the user is left untouched
	Create(ctx context.Context, p *model.Profile) error
	Update(ctx context.Context, userID string, upd model.ProfileUpdate) (*model.Profile, error)
	// IncrementUsage adds one to usage_count. It does not re-check the limit.
	IncrementUsage(ctx context.Context, userID string) error
	SetConnection(ctx context.Context, userID string, conn model.Connection) error
}
