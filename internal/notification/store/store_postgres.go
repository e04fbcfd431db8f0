package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"slfcert/internal/notification/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
	txcontext "slfcert/pkg/platform/tx"
)

// PostgresStore persists notifications and reads project_teams.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) FindMember(ctx context.Context, projectID id.ProjectID, role id.Role) (id.UserID, error) {
	query := `
		SELECT user_id
		FROM project_teams
		WHERE project_id = $1 AND role = $2
		ORDER BY created_at, user_id
		LIMIT 1
	`
	var userID uuid.UUID
	err := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(projectID), string(role)).Scan(&userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return id.UserID{}, sentinel.ErrNotFound
		}
		return id.UserID{}, fmt.Errorf("find team member: %w", err)
	}
	return id.UserID(userID), nil
}

func (s *PostgresStore) Insert(ctx context.Context, n *models.Notification) error {
	query := `
		INSERT INTO notifications (id, project_id, document_id, type, message, sender_id, recipient_id, read, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, false, $8)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(n.ID),
		nullUUID(uuid.UUID(n.ProjectID)),
		nullUUID(uuid.UUID(n.DocumentID)),
		string(n.Type),
		n.Message,
		uuid.UUID(n.SenderID),
		uuid.UUID(n.RecipientID),
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert notification: %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

const notificationColumns = `id, project_id, document_id, type, message, sender_id, recipient_id, read, read_at, created_at`

func (s *PostgresStore) ListForRecipient(ctx context.Context, recipientID id.UserID, unreadOnly bool) ([]models.Notification, error) {
	query := `SELECT ` + notificationColumns + `
		FROM notifications
		WHERE recipient_id = $1 AND ($2 = false OR read = false)
		ORDER BY created_at DESC, id
	`
	rows, err := s.execer(ctx).QueryContext(ctx, query, uuid.UUID(recipientID), unreadOnly)
	if err != nil {
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	out := make([]models.Notification, 0)
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) MarkRead(ctx context.Context, notificationID id.NotificationID, recipientID id.UserID, at time.Time) (*models.Notification, error) {
	query := `
		UPDATE notifications
		SET read = true, read_at = COALESCE(read_at, $3)
		WHERE id = $1 AND recipient_id = $2
		RETURNING ` + notificationColumns
	row := s.execer(ctx).QueryRowContext(ctx, query, uuid.UUID(notificationID), uuid.UUID(recipientID), at)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, err
	}
	return n, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanNotification(row scanner) (*models.Notification, error) {
	var (
		n                     models.Notification
		notificationID        uuid.UUID
		projectID, documentID uuid.NullUUID
		senderID, recipientID uuid.UUID
		kind                  string
		readAt                sql.NullTime
	)
	if err := row.Scan(&notificationID, &projectID, &documentID, &kind, &n.Message,
		&senderID, &recipientID, &n.Read, &readAt, &n.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, err
		}
		return nil, fmt.Errorf("scan notification: %w", err)
	}
	n.ID = id.NotificationID(notificationID)
	n.ProjectID = id.ProjectID(projectID.UUID)
	n.DocumentID = id.DocumentID(documentID.UUID)
	n.SenderID = id.UserID(senderID)
	n.RecipientID = id.UserID(recipientID)
	n.Type = models.Type(kind)
	if readAt.Valid {
		t := readAt.Time
		n.ReadAt = &t
	}
	return &n, nil
}

func nullUUID(u uuid.UUID) uuid.NullUUID {
	return uuid.NullUUID{UUID: u, Valid: u != uuid.Nil}
}
