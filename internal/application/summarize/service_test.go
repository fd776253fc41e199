package summarize

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
	"github.com/pipescan-io/pipescan/internal/domain/summary"
)

type memErrors struct {
	records []*domain.ProjectError
}

func (m *memErrors) Save(_ context.Context, e *domain.ProjectError) error {
	m.records = append(m.records, e)
	return nil
}

func (m *memErrors) Snapshot(_ context.Context, _, _ string) ([]*domain.ProjectError, error) {
	return m.records, nil
}

func (m *memErrors) Count(_ context.Context, _, _ string) (int64, error) {
	return int64(len(m.records)), nil
}

type memSummaries struct {
	saved []*summary.Summary
}

func (m *memSummaries) Save(_ context.Context, s *summary.Summary) error {
	m.saved = append(m.saved, s)
	return nil
}

func (m *memSummaries) Paginate(_ context.Context, _, _ string, _, _ int) ([]*summary.Summary, error) {
	return m.saved, nil
}

func (m *memSummaries) Latest(_ context.Context, _, _ string) (*summary.Summary, error) {
	if len(m.saved) == 0 {
		return nil, nil
	}
	return m.saved[len(m.saved)-1], nil
}

type fakeClient struct {
	gotReport string
	result    string
	err       error
}

func (c *fakeClient) Summarize(_ context.Context, report string) (string, error) {
	c.gotReport = report
	return c.result, c.err
}

type fixedClock struct{ t time.Time }

func (c fixedClock) Now() time.Time { return c.t }

func TestSummarizeAndStore(t *testing.T) {
	t.Parallel()

	errs := &memErrors{records: []*domain.ProjectError{
		{ID: 1, Model: "A", Message: "boom", Traceback: "line one\nline two"},
		{ID: 2, Model: "B", Message: "other"},
	}}

	t.Run("summarizes the filtered page and stores the result", func(t *testing.T) {
		client := &fakeClient{result: `{"groups":[]}`}
		store := &memSummaries{}
		svc := &Service{
			Errors:   errs,
			Store:    store,
			Client:   client,
			Clock:    fixedClock{t: time.Date(2026, 8, 30, 12, 0, 0, 0, time.UTC)},
			PageSize: 10,
		}

		sum, err := svc.SummarizeAndStore(context.Background(), "t1", "p1", url.Values{"model": {"A"}})
		require.NoError(t, err)
		require.NotEmpty(t, sum.ID)
		assert.Equal(t, `{"groups":[]}`, sum.Result)
		assert.Equal(t, "model=A", sum.Filters)
		require.Len(t, store.saved, 1)

		// the prompt report carries only the filtered page
		assert.Contains(t, client.gotReport, "[A] boom")
		assert.NotContains(t, client.gotReport, "[B] other")
		// only the traceback head, never the full trace
		assert.Contains(t, client.gotReport, "line one")
		assert.NotContains(t, client.gotReport, "line two")
	})

	t.Run("empty filtered page is rejected", func(t *testing.T) {
		svc := &Service{Errors: errs, Client: &fakeClient{}, PageSize: 10}
		_, err := svc.SummarizeAndStore(context.Background(), "t1", "p1", url.Values{"model": {"Z"}})
		require.ErrorIs(t, err, ErrNothingToSummarize)
	})
}
