package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	checklist "slfcert/internal/checklist/models"
	"slfcert/internal/compliance/models"
	id "slfcert/pkg/domain"
	"slfcert/pkg/platform/sentinel"
)

// PostgresStore reads inspections and checklist items and writes checklist
// responses. Batch reads use a single `= ANY($1)` query each.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const findInspectionsQuery = `
	SELECT i.id, i.project_id, p.name, i.inspector_id, pr.full_name,
	       COALESCE(pr.specialization, ''), i.checklist_template_id, i.status, i.scheduled_at
	FROM inspections i
	JOIN projects p ON p.id = i.project_id
	JOIN profiles pr ON pr.id = i.inspector_id
	WHERE i.id = ANY($1)
`

func (s *PostgresStore) FindInspections(ctx context.Context, ids []id.InspectionID) ([]models.Inspection, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	raw := make([]string, len(ids))
	for i, v := range ids {
		raw[i] = v.String()
	}
	rows, err := s.db.QueryContext(ctx, findInspectionsQuery, pq.Array(raw))
	if err != nil {
		return nil, fmt.Errorf("query inspections: %w", err)
	}
	defer rows.Close()

	var out []models.Inspection
	for rows.Next() {
		var (
			insp                        models.Inspection
			inspectionID, projectID, by uuid.UUID
		)
		if err := rows.Scan(&inspectionID, &projectID, &insp.ProjectName, &by, &insp.InspectorName,
			&insp.InspectorSpecialization, &insp.ChecklistTemplateID, &insp.Status, &insp.ScheduledAt); err != nil {
			return nil, fmt.Errorf("scan inspection: %w", err)
		}
		insp.ID = id.InspectionID(inspectionID)
		insp.ProjectID = id.ProjectID(projectID)
		insp.InspectorID = id.UserID(by)
		out = append(out, insp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate inspections: %w", err)
	}
	return out, nil
}

const findChecklistItemsQuery = `
	SELECT id, template_id, name, category, sort_order, is_mandatory
	FROM checklist_items
	WHERE template_id = ANY($1)
	ORDER BY template_id, sort_order
`

func (s *PostgresStore) FindChecklistItems(ctx context.Context, templateIDs []string) ([]models.ChecklistItemRow, error) {
	if len(templateIDs) == 0 {
		return nil, nil
	}
	rows, err := s.db.QueryContext(ctx, findChecklistItemsQuery, pq.Array(templateIDs))
	if err != nil {
		return nil, fmt.Errorf("query checklist items: %w", err)
	}
	defer rows.Close()

	var out []models.ChecklistItemRow
	for rows.Next() {
		var (
			row      models.ChecklistItemRow
			category string
		)
		if err := rows.Scan(&row.ID, &row.TemplateID, &row.Name, &category, &row.SortOrder, &row.IsMandatory); err != nil {
			return nil, fmt.Errorf("scan checklist item: %w", err)
		}
		row.Category = checklist.Category(category)
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist items: %w", err)
	}
	return out, nil
}

const responseColumns = 14

// InsertResponses writes every response in one multi-row INSERT, which
// Postgres applies atomically.
func (s *PostgresStore) InsertResponses(ctx context.Context, responses []models.ChecklistResponse) error {
	if len(responses) == 0 {
		return nil
	}
	var (
		sb   strings.Builder
		args = make([]any, 0, len(responses)*responseColumns)
	)
	sb.WriteString(`INSERT INTO checklist_responses (
		id, inspection_id, checklist_item_id, response, notes, latitude, longitude,
		accuracy, captured_at, manual_location, needs_review, responded_by, created_at, updated_at
	) VALUES `)
	for i, r := range responses {
		payload, err := json.Marshal(r.Response)
		if err != nil {
			return fmt.Errorf("encode response %s: %w", r.ID, err)
		}
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString("(")
		for c := range responseColumns {
			if c > 0 {
				sb.WriteString(", ")
			}
			fmt.Fprintf(&sb, "$%d", i*responseColumns+c+1)
		}
		sb.WriteString(")")
		args = append(args,
			uuid.UUID(r.ID),
			uuid.UUID(r.InspectionID),
			r.ChecklistItemID,
			payload,
			r.Notes,
			nullFloat(r.Latitude),
			nullFloat(r.Longitude),
			nullFloat(r.Accuracy),
			nullTime(r.CapturedAt),
			r.ManualLocation,
			r.NeedsReview,
			uuid.UUID(r.RespondedBy),
			r.CreatedAt,
			r.UpdatedAt,
		)
	}
	if _, err := s.db.ExecContext(ctx, sb.String(), args...); err != nil {
		return fmt.Errorf("insert checklist responses: %w", err)
	}
	return nil
}

const updateResponseQuery = `
	UPDATE checklist_responses
	SET response   = COALESCE($2, response),
	    notes      = COALESCE($3, notes),
	    latitude   = COALESCE($4, latitude),
	    longitude  = COALESCE($5, longitude),
	    accuracy   = COALESCE($6, accuracy),
	    updated_at = $7
	WHERE id = $1
`

func (s *PostgresStore) UpdateResponse(ctx context.Context, update models.ResponseUpdate) error {
	var payload []byte
	if update.Response != nil {
		var err error
		if payload, err = json.Marshal(update.Response); err != nil {
			return fmt.Errorf("encode response %s: %w", update.ID, err)
		}
	}
	var notes sql.NullString
	if update.Notes != nil {
		notes = sql.NullString{String: *update.Notes, Valid: true}
	}
	res, err := s.db.ExecContext(ctx, updateResponseQuery,
		uuid.UUID(update.ID),
		payload,
		notes,
		nullFloat(update.Latitude),
		nullFloat(update.Longitude),
		nullFloat(update.Accuracy),
		update.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update checklist response %s: %w", update.ID, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update checklist response %s: %w", update.ID, err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

const listResponsesQuery = `
	SELECT id, inspection_id, checklist_item_id, response, notes, latitude, longitude,
	       accuracy, captured_at, manual_location, needs_review, responded_by, created_at, updated_at
	FROM checklist_responses
	WHERE inspection_id = $1
	ORDER BY created_at, checklist_item_id
`

func (s *PostgresStore) ListResponses(ctx context.Context, inspectionID id.InspectionID) ([]models.ChecklistResponse, error) {
	rows, err := s.db.QueryContext(ctx, listResponsesQuery, uuid.UUID(inspectionID))
	if err != nil {
		return nil, fmt.Errorf("query checklist responses: %w", err)
	}
	defer rows.Close()

	var out []models.ChecklistResponse
	for rows.Next() {
		var (
			r             models.ChecklistResponse
			rid, iid, by  uuid.UUID
			payload       []byte
			lat, lon, acc sql.NullFloat64
			capturedAt    sql.NullTime
		)
		if err := rows.Scan(&rid, &iid, &r.ChecklistItemID, &payload, &r.Notes, &lat, &lon, &acc,
			&capturedAt, &r.ManualLocation, &r.NeedsReview, &by, &r.CreatedAt, &r.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scan checklist response: %w", err)
		}
		if err := json.Unmarshal(payload, &r.Response); err != nil {
			return nil, fmt.Errorf("decode checklist response %s: %w", rid, err)
		}
		r.ID = id.ResponseID(rid)
		r.InspectionID = id.InspectionID(iid)
		r.RespondedBy = id.UserID(by)
		r.Latitude = floatPtr(lat)
		r.Longitude = floatPtr(lon)
		r.Accuracy = floatPtr(acc)
		if capturedAt.Valid {
			t := capturedAt.Time
			r.CapturedAt = &t
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate checklist responses: %w", err)
	}
	return out, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
