package projerrors

import "context"

// Repository defines persistence for project errors
type Repository interface {
	Save(ctx context.Context, e *ProjectError) error

	// Snapshot returns every error recorded for a project, ordered by
	// (created_at, id) ascending so callers always see the same
	// deterministic sequence.
	Snapshot(ctx context.Context, tenant, project string) ([]*ProjectError, error)

	// Count returns the unfiltered total for the project.
	Count(ctx context.Context, tenant, project string) (int64, error)
}

// ReportStore port for archiving exported error reports
type ReportStore interface {
	PutReport(ctx context.Context, key string, data []byte) (string, error)
}
