// Package publisher hands persisted notifications to the message broker for
// delivery outside the application (push, e-mail, chat bridges).
package publisher

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"slfcert/internal/notification/models"
)

// Producer writes one keyed record. It is satisfied by the kafka platform
// producer.
type Producer interface {
	Publish(ctx context.Context, key, value []byte) error
}

// Publisher encodes notifications as broker events.
type Publisher struct {
	producer Producer
}

func New(producer Producer) *Publisher {
	return &Publisher{producer: producer}
}

// Event is the JSON record written to the notification topic.
type Event struct {
	EventType      string `json:"event_type"`
	NotificationID string `json:"notification_id"`
	RecipientID    string `json:"recipient_id"`
	SenderID       string `json:"sender_id"`
	ProjectID      string `json:"project_id,omitempty"`
	DocumentID     string `json:"document_id,omitempty"`
	Type           string `json:"type"`
	Message        string `json:"message"`
	CreatedAt      string `json:"created_at"`
}

const eventTypeCreated = "notification.created"

// Publish writes n keyed by its id so consumers can deduplicate redeliveries.
func (p *Publisher) Publish(ctx context.Context, n models.Notification) error {
	event := Event{
		EventType:      eventTypeCreated,
		NotificationID: n.ID.String(),
		RecipientID:    n.RecipientID.String(),
		SenderID:       n.SenderID.String(),
		Type:           string(n.Type),
		Message:        n.Message,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339Nano),
	}
	if !n.ProjectID.IsNil() {
		event.ProjectID = n.ProjectID.String()
	}
	if !n.DocumentID.IsNil() {
		event.DocumentID = n.DocumentID.String()
	}
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("encode notification event: %w", err)
	}
	return p.producer.Publish(ctx, []byte(event.NotificationID), payload)
}
