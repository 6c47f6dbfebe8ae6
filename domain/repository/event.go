package repository

import (
	"context"

	"propgen/domain/model"
)

// IEventPublisher sends domain events to an external sink
type IEventPublisher interface {
	Publish(ctx context.Context, event model.DomainEvent) error
}
