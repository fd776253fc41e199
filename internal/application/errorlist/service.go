package errorlist

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/pipescan-io/pipescan/internal/application"
	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
)

// ErrModelRequired is returned when a producer records an error
// without naming the data model that produced it.
var ErrModelRequired = errors.New("model is required")

// Service implements use-cases for the project error listing.
// Service is designed to be used concurrently and is thread-safe: it
// only reads a per-request snapshot and holds no mutable state.
type Service struct {
	Repo      domain.Repository
	Reports   domain.ReportStore
	Formatter Formatter
	Clock     application.Clock
	PageSize  int
}

// RenderModel is the render-ready outcome of one listing request:
// formatted rows for the current page, navigation metadata, the active
// filters (for breadcrumbs and clear links), and the unfiltered total.
type RenderModel struct {
	Rows        []FormattedRow     `json:"data"`
	Page        int                `json:"page"`
	PageSize    int                `json:"pageSize"`
	PageCount   int                `json:"totalPages"`
	HasPrevious bool               `json:"hasPrevious"`
	HasNext     bool               `json:"hasNext"`
	Filters     domain.FilterState `json:"filters"`
	TotalCount  int64              `json:"totalItems"`
}

// Render loads the project's error snapshot, filters it, pages it and
// formats the surviving page. Filtering may walk the full snapshot;
// formatting never touches more than one page's worth of records.
func (s *Service) Render(ctx context.Context, tenant, project string, query url.Values) (*RenderModel, error) {
	records, err := s.Repo.Snapshot(ctx, tenant, project)
	if err != nil {
		return nil, fmt.Errorf("loading errors: %w", err)
	}
	total, err := s.Repo.Count(ctx, tenant, project)
	if err != nil {
		return nil, fmt.Errorf("counting errors: %w", err)
	}

	state := domain.FilterFromQuery(query)
	filtered := domain.ApplyFilter(records, state)
	page := domain.Paginate(filtered, requestedPage(query), s.pageSize())

	rows := make([]FormattedRow, 0, len(page.Items))
	for _, e := range page.Items {
		rows = append(rows, s.Formatter.Format(e))
	}

	return &RenderModel{
		Rows:        rows,
		Page:        page.Number,
		PageSize:    s.pageSize(),
		PageCount:   page.PageCount,
		HasPrevious: page.HasPrevious,
		HasNext:     page.HasNext,
		Filters:     state,
		TotalCount:  total,
	}, nil
}

// RecordCommand carries one error reported by a pipeline run.
type RecordCommand struct {
	Model     string         `json:"model"`
	Message   string         `json:"message"`
	Details   domain.Details `json:"details"`
	Traceback string         `json:"traceback"`
}

// Record persists an error reported through the producer webhook.
func (s *Service) Record(ctx context.Context, tenant, project string, cmd RecordCommand) (*domain.ProjectError, error) {
	if strings.TrimSpace(cmd.Model) == "" {
		return nil, ErrModelRequired
	}
	e := &domain.ProjectError{
		TenantID:  tenant,
		ProjectID: project,
		Model:     cmd.Model,
		Message:   cmd.Message,
		Details:   cmd.Details,
		Traceback: cmd.Traceback,
		CreatedAt: s.now(),
	}
	if err := s.Repo.Save(ctx, e); err != nil {
		return nil, fmt.Errorf("saving error record: %w", err)
	}
	return e, nil
}

// exportReport is the archival shape written by Export.
type exportReport struct {
	TenantID    string                 `json:"tenant_id"`
	ProjectID   string                 `json:"project_id"`
	GeneratedAt time.Time              `json:"generated_at"`
	Filters     domain.FilterState     `json:"filters"`
	Count       int                    `json:"count"`
	Errors      []*domain.ProjectError `json:"errors"`
}

// Export renders the whole filtered collection (not one page; export
// is the explicit bulk path) as a JSON report, archives it and returns
// the report URL.
func (s *Service) Export(ctx context.Context, tenant, project string, query url.Values) (string, error) {
	records, err := s.Repo.Snapshot(ctx, tenant, project)
	if err != nil {
		return "", fmt.Errorf("loading errors: %w", err)
	}
	state := domain.FilterFromQuery(query)
	filtered := domain.ApplyFilter(records, state)

	now := s.now()
	report := exportReport{
		TenantID:    tenant,
		ProjectID:   project,
		GeneratedAt: now,
		Filters:     state,
		Count:       len(filtered),
		Errors:      filtered,
	}
	data, err := json.Marshal(report)
	if err != nil {
		return "", fmt.Errorf("encoding report: %w", err)
	}

	key := fmt.Sprintf("%s/%s/errors-%d.json", tenant, project, now.Unix())
	url, err := s.Reports.PutReport(ctx, key, data)
	if err != nil {
		return "", fmt.Errorf("archiving report: %w", err)
	}
	return url, nil
}

func (s *Service) pageSize() int {
	if s.PageSize > 0 {
		return s.PageSize
	}
	return domain.DefaultPageSize
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}

// requestedPage reads the 1-based page parameter; anything missing or
// unparsable falls back to the first page.
func requestedPage(query url.Values) int {
	n, err := strconv.Atoi(query.Get("page"))
	if err != nil {
		return 1
	}
	return n
}
