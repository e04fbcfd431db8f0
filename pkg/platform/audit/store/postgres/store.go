package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	id "slfcert/pkg/domain"
	audit "slfcert/pkg/platform/audit"
	txcontext "slfcert/pkg/platform/tx"
)

// Store implements audit.Store on the document_history table. Appends join
// the caller's transaction when one is carried in the context.
type Store struct {
	db *sql.DB
}

func New(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

// Append writes one history entry.
func (s *Store) Append(ctx context.Context, event audit.Event) error {
	category := audit.AuditEvent(event.Action).Category()
	query := `
		INSERT INTO document_history (
			id, category, timestamp, document_id, project_id, actor_id, actor_role,
			action, from_status, to_status, notes, request_id
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
	`
	_, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.New(),
		string(category),
		event.Timestamp,
		uuid.UUID(event.DocumentID),
		uuid.UUID(event.ProjectID),
		uuid.UUID(event.ActorID),
		string(event.ActorRole),
		event.Action,
		event.FromStatus,
		event.ToStatus,
		event.Notes,
		event.RequestID,
	)
	if err != nil {
		return fmt.Errorf("insert document history: %w", err)
	}
	return nil
}

// ListByDocument returns a document's history oldest first.
func (s *Store) ListByDocument(ctx context.Context, documentID id.DocumentID) ([]audit.Event, error) {
	query := `
		SELECT category, timestamp, document_id, project_id, actor_id, actor_role,
		       action, from_status, to_status, notes, request_id
		FROM document_history
		WHERE document_id = $1
		ORDER BY timestamp, id
	`
	rows, err := s.db.QueryContext(ctx, query, uuid.UUID(documentID))
	if err != nil {
		return nil, fmt.Errorf("query document history: %w", err)
	}
	defer rows.Close()

	return s.scanEvents(rows)
}

func (s *Store) scanEvents(rows *sql.Rows) ([]audit.Event, error) {
	var events []audit.Event

	for rows.Next() {
		var (
			category                     string
			role                         string
			event                        audit.Event
			documentID, projectID, actor uuid.UUID
		)

		err := rows.Scan(
			&category,
			&event.Timestamp,
			&documentID,
			&projectID,
			&actor,
			&role,
			&event.Action,
			&event.FromStatus,
			&event.ToStatus,
			&event.Notes,
			&event.RequestID,
		)
		if err != nil {
			return nil, fmt.Errorf("scan document history: %w", err)
		}

		event.Category = audit.EventCategory(category)
		event.DocumentID = id.DocumentID(documentID)
		event.ProjectID = id.ProjectID(projectID)
		event.ActorID = id.UserID(actor)
		event.ActorRole = id.Role(role)
		events = append(events, event)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document history: %w", err)
	}

	return events, nil
}
