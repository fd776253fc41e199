package summarize

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/pipescan-io/pipescan/internal/application"
	"github.com/pipescan-io/pipescan/internal/domain/ai"
	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
	"github.com/pipescan-io/pipescan/internal/domain/summary"
)

// ErrNothingToSummarize is returned when the filtered page is empty.
var ErrNothingToSummarize = errors.New("no errors match the current filters")

// Service runs an AI digest over the currently visible page of the
// error listing and stores the result.
type Service struct {
	Errors   domain.Repository
	Store    summary.Repository
	Client   ai.Client
	Clock    application.Clock
	PageSize int
}

// SummarizeAndStore applies the request's filters and page selection,
// sends that page's records to the AI client, and persists the digest.
// Only one page is ever summarized so the AI cost stays bounded the
// same way formatting cost is.
func (s *Service) SummarizeAndStore(ctx context.Context, tenant, project string, query url.Values) (*summary.Summary, error) {
	records, err := s.Errors.Snapshot(ctx, tenant, project)
	if err != nil {
		return nil, fmt.Errorf("loading errors: %w", err)
	}
	state := domain.FilterFromQuery(query)
	filtered := domain.ApplyFilter(records, state)

	pageNum, _ := strconv.Atoi(query.Get("page"))
	size := s.PageSize
	if size <= 0 {
		size = domain.DefaultPageSize
	}
	page := domain.Paginate(filtered, pageNum, size)
	if len(page.Items) == 0 {
		return nil, ErrNothingToSummarize
	}

	result, err := s.Client.Summarize(ctx, buildReport(page.Items))
	if err != nil {
		return nil, err
	}

	sum := &summary.Summary{
		ID:        summary.SummaryID(uuid.New().String()),
		TenantID:  tenant,
		ProjectID: project,
		Filters:   query.Encode(),
		Result:    result,
		CreatedAt: s.now(),
	}
	if s.Store != nil {
		if err := s.Store.Save(ctx, sum); err != nil {
			return nil, fmt.Errorf("saving summary: %w", err)
		}
	}
	return sum, nil
}

// List returns stored summaries for a project, newest first.
func (s *Service) List(ctx context.Context, tenant, project string, page, pageSize int) ([]*summary.Summary, error) {
	return s.Store.Paginate(ctx, tenant, project, page, pageSize)
}

// buildReport flattens one page of records into the compact plain-text
// form the prompt expects.
func buildReport(items []*domain.ProjectError) string {
	var b strings.Builder
	for _, e := range items {
		fmt.Fprintf(&b, "[%s] %s\n", e.Model, e.Message)
		if ref, ok := e.Details.RelatedResource(); ok {
			fmt.Fprintf(&b, "  resource: %s\n", ref.Path)
		}
		if first := firstLine(e.Traceback); first != "" {
			fmt.Fprintf(&b, "  traceback: %s\n", first)
		}
	}
	return b.String()
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

func (s *Service) now() time.Time {
	if s.Clock != nil {
		return s.Clock.Now()
	}
	return time.Now()
}
