package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"slfcert/internal/notification/models"
	id "slfcert/pkg/domain"
)

type recordingProducer struct {
	key, value []byte
	err        error
}

func (r *recordingProducer) Publish(_ context.Context, key, value []byte) error {
	r.key, r.value = key, value
	return r.err
}

func TestPublishEncodesEvent(t *testing.T) {
	producer := &recordingProducer{}
	n := models.Notification{
		ID:          id.NotificationID(uuid.New()),
		RecipientID: id.UserID(uuid.New()),
		SenderID:    id.UserID(uuid.New()),
		DocumentID:  id.DocumentID(uuid.New()),
		Type:        models.TypeDocumentVerified,
		Message:     "Dokumen diverifikasi",
		CreatedAt:   time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
	}

	require.NoError(t, New(producer).Publish(context.Background(), n))
	assert.Equal(t, n.ID.String(), string(producer.key))

	var event Event
	require.NoError(t, json.Unmarshal(producer.value, &event))
	assert.Equal(t, "notification.created", event.EventType)
	assert.Equal(t, n.RecipientID.String(), event.RecipientID)
	assert.Equal(t, "document_verified", event.Type)
	assert.Equal(t, "2025-03-01T09:00:00Z", event.CreatedAt)
	assert.Empty(t, event.ProjectID, "nil project id is omitted")
}

func TestPublishPropagatesProducerError(t *testing.T) {
	producer := &recordingProducer{err: errors.New("broker unreachable")}
	err := New(producer).Publish(context.Background(), models.Notification{ID: id.NotificationID(uuid.New())})
	require.Error(t, err)
}
