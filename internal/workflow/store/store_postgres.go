package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"slfcert/internal/workflow/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
	txcontext "slfcert/pkg/platform/tx"
)

// PostgresStore persists documents in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) execer(ctx context.Context) txcontext.Executor {
	return txcontext.ExecutorFrom(ctx, s.db)
}

func (s *PostgresStore) Create(ctx context.Context, doc *models.Document) error {
	metadata, err := json.Marshal(doc.Metadata)
	if err != nil {
		return fmt.Errorf("encode document metadata: %w", err)
	}
	if doc.Metadata == nil {
		metadata = []byte("{}")
	}
	query := `
		INSERT INTO documents (id, project_id, document_type, status, compliance_status,
			created_by, admin_team_feedback, metadata, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO NOTHING
	`
	res, err := s.execer(ctx).ExecContext(ctx, query,
		uuid.UUID(doc.ID),
		uuid.UUID(doc.ProjectID),
		doc.DocumentType,
		string(doc.Status),
		string(doc.ComplianceStatus),
		uuid.UUID(doc.CreatedBy),
		doc.AdminTeamFeedback,
		metadata,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return sentinel.ErrConflict
	}
	return nil
}

const findDocumentQuery = `
	SELECT id, project_id, document_type, status, compliance_status, created_by,
	       verified_by_admin_team, verified_at, admin_team_feedback, metadata, created_at, updated_at
	FROM documents
	WHERE id = $1
`

func (s *PostgresStore) FindByID(ctx context.Context, documentID id.DocumentID) (*models.Document, error) {
	var (
		doc                         models.Document
		docID, projectID, createdBy uuid.UUID
		status, compliance          string
		verifiedBy                  uuid.NullUUID
		verifiedAt                  sql.NullTime
		metadata                    []byte
	)
	err := s.execer(ctx).QueryRowContext(ctx, findDocumentQuery, uuid.UUID(documentID)).Scan(
		&docID, &projectID, &doc.DocumentType, &status, &compliance, &createdBy,
		&verifiedBy, &verifiedAt, &doc.AdminTeamFeedback, &metadata, &doc.CreatedAt, &doc.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("find document: %w", err)
	}
	doc.ID = id.DocumentID(docID)
	doc.ProjectID = id.ProjectID(projectID)
	doc.CreatedBy = id.UserID(createdBy)
	doc.Status = models.Status(status)
	doc.ComplianceStatus = models.ComplianceStatus(compliance)
	if verifiedBy.Valid {
		v := id.UserID(verifiedBy.UUID)
		doc.VerifiedByAdminTeam = &v
	}
	if verifiedAt.Valid {
		t := verifiedAt.Time
		doc.VerifiedAt = &t
	}
	if len(metadata) > 0 {
		if err := json.Unmarshal(metadata, &doc.Metadata); err != nil {
			return nil, fmt.Errorf("decode document metadata: %w", err)
		}
	}
	return &doc, nil
}

const updateStatusQuery = `
	UPDATE documents
	SET status = $2,
	    compliance_status = $3,
	    verified_by_admin_team = $4,
	    verified_at = $5,
	    admin_team_feedback = $6,
	    updated_at = $7
	WHERE id = $1 AND status = $8
`

// UpdateStatus applies the workflow fields of doc if the stored status is
// still expected. A miss is resolved into ErrNotFound or ErrConflict.
func (s *PostgresStore) UpdateStatus(ctx context.Context, doc *models.Document, expected models.Status) error {
	var verifiedBy uuid.NullUUID
	if doc.VerifiedByAdminTeam != nil {
		verifiedBy = uuid.NullUUID{UUID: uuid.UUID(*doc.VerifiedByAdminTeam), Valid: true}
	}
	var verifiedAt sql.NullTime
	if doc.VerifiedAt != nil {
		verifiedAt = sql.NullTime{Time: *doc.VerifiedAt, Valid: true}
	}

	exec := s.execer(ctx)
	res, err := exec.ExecContext(ctx, updateStatusQuery,
		uuid.UUID(doc.ID),
		string(doc.Status),
		string(doc.ComplianceStatus),
		verifiedBy,
		verifiedAt,
		doc.AdminTeamFeedback,
		doc.UpdatedAt,
		string(expected),
	)
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update document status: %w", err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	if err := exec.QueryRowContext(ctx, `SELECT EXISTS(SELECT 1 FROM documents WHERE id = $1)`, uuid.UUID(doc.ID)).Scan(&exists); err != nil {
		return fmt.Errorf("check document: %w", err)
	}
	if !exists {
		return sentinel.ErrNotFound
	}
	return sentinel.ErrConflict
}
