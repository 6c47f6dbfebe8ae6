package usecase

import (
	"context"
	"time"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"
)

// EventFanout delivers each event to every configured sink. Sink failures are
// logged and never fail the operation that produced the event.
type EventFanout []repository.IEventPublisher

var _ repository.IEventPublisher = EventFanout(nil)

func (f EventFanout) Publish(ctx context.Context, event model.DomainEvent) error {
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	for _, sink := range f {
		if err := sink.Publish(ctx, event); err != nil {
			logger.GetLogger().WithField("type", event.Type).WithField("error", err).Warn("event sink failed")
		}
	}
	return nil
}
