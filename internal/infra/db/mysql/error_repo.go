package mysql

import (
	"context"
	"database/sql"
	"encoding/json"
	"time"

	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
)

type ErrorRepository struct {
	db *sql.DB
}

func NewErrorRepository(db *sql.DB) *ErrorRepository { return &ErrorRepository{db: db} }

func (r *ErrorRepository) Save(ctx context.Context, e *domain.ProjectError) error {
	const q = `
INSERT INTO project_errors
  (tenant_id, project_id, model, message, details_json, traceback, created_at)
VALUES (?,?,?,?,?,?,?)
`
	tenant := stringOrDash(e.TenantID)
	project := stringOrDash(e.ProjectID)
	model := stringOrDash(e.Model)
	// message is stored byte-for-byte; filter links round-trip the
	// literal value, so even an empty message must survive as-is
	details := "{}"
	if len(e.Details) > 0 {
		b, err := json.Marshal(e.Details)
		if err != nil {
			return err
		}
		details = string(b)
	}
	created := e.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	res, err := r.db.ExecContext(ctx, q, tenant, project, model, e.Message, details, e.Traceback, created)
	if err != nil {
		return err
	}
	if id, err := res.LastInsertId(); err == nil {
		e.ID = id
	}
	return nil
}

// Snapshot returns all errors for a project ordered by (created_at, id)
// ascending, so the in-memory listing always sees a stable sequence.
func (r *ErrorRepository) Snapshot(ctx context.Context, tenant, project string) ([]*domain.ProjectError, error) {
	const q = `
SELECT id, tenant_id, project_id, model, message, details_json, traceback, created_at
FROM project_errors
WHERE tenant_id = ? AND project_id = ?
ORDER BY created_at ASC, id ASC;`
	rows, err := r.db.QueryContext(ctx, q, tenant, project)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*domain.ProjectError
	for rows.Next() {
		var e domain.ProjectError
		var details string
		var created time.Time
		if err := rows.Scan(&e.ID, &e.TenantID, &e.ProjectID, &e.Model, &e.Message, &details, &e.Traceback, &created); err != nil {
			return nil, err
		}
		if err := json.Unmarshal([]byte(details), &e.Details); err != nil {
			// tolerate bad rows; the record still lists without details
			e.Details = nil
		}
		e.CreatedAt = created
		out = append(out, &e)
	}
	return out, rows.Err()
}

func (r *ErrorRepository) Count(ctx context.Context, tenant, project string) (int64, error) {
	const q = `SELECT COUNT(*) FROM project_errors WHERE tenant_id = ? AND project_id = ?;`
	var n int64
	if err := r.db.QueryRowContext(ctx, q, tenant, project).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}
