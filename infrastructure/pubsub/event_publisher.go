package pubsub

import (
	"context"
	"encoding/json"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"cloud.google.com/go/pubsub"
	"github.com/pkg/errors"
	"google.golang.org/api/option"
)

func NewPubSub(ctx context.Context, projectID string, opts ...option.ClientOption) (*pubsub.Client, error) {
	if projectID == "" {
		return nil, errors.New("pubsub project id not configured")
	}
	return pubsub.NewClient(ctx, projectID, opts...)
}

// EventPublisher publishes domain events as JSON messages to one topic
type EventPublisher struct {
	topic *pubsub.Topic
}

var _ repository.IEventPublisher = (*EventPublisher)(nil)

// NewEventPublisher opens the topic, creating it if it doesn't exist
func NewEventPublisher(ctx context.Context, client *pubsub.Client, topicName string) (*EventPublisher, error) {
	topic := client.Topic(topicName)
	exists, err := topic.Exists(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "check topic")
	}
	if !exists {
		logger.GetLogger().WithField("topic", topicName).Info("Topic doesn't exist - creating it")
		if topic, err = client.CreateTopic(ctx, topicName); err != nil {
			return nil, errors.Wrap(err, "create topic")
		}
	}
	return &EventPublisher{topic: topic}, nil
}

func (p *EventPublisher) Publish(ctx context.Context, event model.DomainEvent) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	msg := &pubsub.Message{
		Data: payload,
		Attributes: map[string]string{
			"type":    event.Type,
			"user_id": event.UserID,
		},
	}
	serverID, err := p.topic.Publish(ctx, msg).Get(ctx)
	if err != nil {
		return errors.Wrap(err, "publish event")
	}
	logger.GetLogger().WithField("server_id", serverID).WithField("type", event.Type).Info("Event published")
	return nil
}

// Close flushes pending messages
func (p *EventPublisher) Close() { p.topic.Stop() }
