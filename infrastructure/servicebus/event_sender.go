package servicebus

import (
	"context"
	"encoding/json"

	"propgen/domain/model"
	"propgen/domain/repository"
	"propgen/infrastructure/logger"

	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/Azure/azure-sdk-for-go/sdk/messaging/azservicebus"
	"github.com/pkg/errors"
)

// NewServiceBus connects to a namespace (e.g. propgen.servicebus.windows.net) with the default Azure credential chain
func NewServiceBus(namespace string) (*azservicebus.Client, error) {
	if namespace == "" {
		return nil, errors.New("service bus namespace not configured")
	}
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, errors.Wrap(err, "azure credential")
	}
	return azservicebus.NewClient(namespace, cred, nil)
}

type messageSender interface {
	SendMessage(ctx context.Context, message *azservicebus.Message, options *azservicebus.SendMessageOptions) error
	Close(ctx context.Context) error
}

// EventSender forwards domain events to a Service Bus queue
type EventSender struct {
	sender messageSender
}

var _ repository.IEventPublisher = (*EventSender)(nil)

func NewEventSender(client *azservicebus.Client, queue string) (*EventSender, error) {
	sender, err := client.NewSender(queue, nil)
	if err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while making new sender service bus.")
		return nil, err
	}
	return &EventSender{sender: sender}, nil
}

func (s *EventSender) Publish(ctx context.Context, event model.DomainEvent) error {
	body, err := json.Marshal(event)
	if err != nil {
		return err
	}
	contentType := "application/json"
	subject := event.Type
	msg := &azservicebus.Message{
		Body:        body,
		ContentType: &contentType,
		Subject:     &subject,
		ApplicationProperties: map[string]any{
			"user_id":     event.UserID,
			"property_id": event.PropertyID,
		},
	}
	if err := s.sender.SendMessage(ctx, msg, nil); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while sending message.")
		return errors.Wrap(err, "send event")
	}
	return nil
}

func (s *EventSender) Close(ctx context.Context) {
	if err := s.sender.Close(ctx); err != nil {
		logger.GetLogger().WithField("error", err).Error("Error while closing sender.")
	}
}
