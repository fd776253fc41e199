package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	domain "github.com/pipescan-io/pipescan/internal/domain/summary"
)

type SummaryRepository struct {
	db *sql.DB
}

func NewSummaryRepository(db *sql.DB) *SummaryRepository {
	return &SummaryRepository{db: db}
}

// Save inserts or updates a summary record
func (r *SummaryRepository) Save(ctx context.Context, s *domain.Summary) error {
	const q = `
INSERT INTO error_summaries
  (id, tenant_id, project_id, filters, result_json, created_at)
VALUES ($1,$2,$3,$4,$5,$6)
ON CONFLICT (id) DO UPDATE SET
  tenant_id=EXCLUDED.tenant_id,
  project_id=EXCLUDED.project_id,
  filters=EXCLUDED.filters,
  result_json=EXCLUDED.result_json;
`
	tenant := stringOrDash(s.TenantID)
	project := stringOrDash(s.ProjectID)
	result := s.Result
	if strings.TrimSpace(result) == "" {
		result = "{}"
	}
	createdAt := s.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}
	_, err := r.db.ExecContext(ctx, q, s.ID, tenant, project, s.Filters, result, createdAt)
	return err
}

// Paginate returns a page of summaries ordered by created_at desc
func (r *SummaryRepository) Paginate(ctx context.Context, tenant, project string, page, pageSize int) ([]*domain.Summary, error) {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	const q = `
SELECT id, tenant_id, project_id, filters, result_json, created_at
FROM error_summaries
WHERE tenant_id=$1 AND project_id=$2
ORDER BY created_at DESC, id DESC
LIMIT $3 OFFSET $4;
`
	rows, err := r.db.QueryContext(ctx, q, tenant, project, pageSize, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*domain.Summary
	for rows.Next() {
		var s domain.Summary
		var created time.Time
		if err := rows.Scan(&s.ID, &s.TenantID, &s.ProjectID, &s.Filters, &s.Result, &created); err != nil {
			return nil, err
		}
		s.CreatedAt = created
		out = append(out, &s)
	}
	return out, rows.Err()
}

// Latest returns the most recent summary for a project
func (r *SummaryRepository) Latest(ctx context.Context, tenant, project string) (*domain.Summary, error) {
	const q = `
SELECT id, tenant_id, project_id, filters, result_json, created_at
FROM error_summaries
WHERE tenant_id=$1 AND project_id=$2
ORDER BY created_at DESC, id DESC
LIMIT 1;`
	row := r.db.QueryRowContext(ctx, q, tenant, project)
	var s domain.Summary
	var created time.Time
	if err := row.Scan(&s.ID, &s.TenantID, &s.ProjectID, &s.Filters, &s.Result, &created); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}
	s.CreatedAt = created
	return &s, nil
}
