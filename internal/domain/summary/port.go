package summary

import "context"

// Repository port for persisting and querying summaries
type Repository interface {
	Save(ctx context.Context, s *Summary) error
	Paginate(ctx context.Context, tenant, project string, page, pageSize int) ([]*Summary, error)
	Latest(ctx context.Context, tenant, project string) (*Summary, error)
}
