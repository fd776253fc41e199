package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pipescan-io/pipescan/internal/application/errorlist"
	"github.com/pipescan-io/pipescan/internal/application/summarize"
	"github.com/pipescan-io/pipescan/internal/domain/ai"
	domain "github.com/pipescan-io/pipescan/internal/domain/projerrors"
)

type quotaClient struct{}

func (quotaClient) Summarize(_ context.Context, _ string) (string, error) {
	return "", ai.ErrQuotaExceeded
}

type memRepo struct {
	records []*domain.ProjectError
}

func (m *memRepo) Save(_ context.Context, e *domain.ProjectError) error {
	e.ID = int64(len(m.records) + 1)
	m.records = append(m.records, e)
	return nil
}

func (m *memRepo) Snapshot(_ context.Context, _, _ string) ([]*domain.ProjectError, error) {
	return m.records, nil
}

func (m *memRepo) Count(_ context.Context, _, _ string) (int64, error) {
	return int64(len(m.records)), nil
}

type memReports struct{}

func (memReports) PutReport(_ context.Context, key string, _ []byte) (string, error) {
	return "http://minio.local/reports/" + key, nil
}

func newTestRouter(repo *memRepo) http.Handler {
	svc := &errorlist.Service{Repo: repo, Reports: memReports{}, PageSize: 2}
	return NewRouter(svc, nil, Options{})
}

func TestListErrorsEndpoint(t *testing.T) {
	repo := &memRepo{records: []*domain.ProjectError{
		{ID: 1, Model: "A", Message: "m1"},
		{ID: 2, Model: "B", Message: "m1"},
		{ID: 3, Model: "A", Message: "m2"},
	}}
	handler := newTestRouter(repo)

	t.Run("serves a filtered page as JSON", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/t1/projects/p1/errors?model=A", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var view errorlist.RenderModel
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &view))
		require.Len(t, view.Rows, 2)
		assert.Equal(t, "?model=A", view.Rows[0].Model.Href)
		assert.Equal(t, int64(3), view.TotalCount)
		require.NotNil(t, view.Filters.Model)
		assert.Equal(t, "A", *view.Filters.Model)
	})

	t.Run("rejects a malformed project slug", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/v1/t1/projects/bad!slug/errors", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("summarize without an AI client is unavailable", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/t1/projects/p1/errors/summarize", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusServiceUnavailable, rec.Code)
	})

	t.Run("provider quota errors map to 429", func(t *testing.T) {
		listSvc := &errorlist.Service{Repo: repo, Reports: memReports{}, PageSize: 2}
		sumSvc := &summarize.Service{Errors: repo, Client: quotaClient{}, PageSize: 2}
		limited := NewRouter(listSvc, sumSvc, Options{})

		req := httptest.NewRequest("POST", "/v1/t1/projects/p1/errors/summarize", nil)
		rec := httptest.NewRecorder()
		limited.ServeHTTP(rec, req)
		require.Equal(t, http.StatusTooManyRequests, rec.Code)
	})
}

func TestRecordErrorEndpoint(t *testing.T) {
	repo := &memRepo{}
	handler := newTestRouter(repo)

	t.Run("records a reported error", func(t *testing.T) {
		body := `{"model":"CodebaseResource","message":"scan failed","details":{"codebase_resource_pk":"42","codebase_resource_path":"/src/a.c"}}`
		req := httptest.NewRequest("POST", "/v1/t1/projects/p1/errors", strings.NewReader(body))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Len(t, repo.records, 1)
		saved := repo.records[0]
		assert.Equal(t, "CodebaseResource", saved.Model)

		// details survive with their document order intact
		require.Len(t, saved.Details, 2)
		assert.Equal(t, domain.DetailKeyResourcePK, saved.Details[0].Key)
		assert.Equal(t, domain.DetailKeyResourcePath, saved.Details[1].Key)
	})

	t.Run("rejects a record without a model", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/t1/projects/p1/errors", strings.NewReader(`{"message":"m"}`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("rejects a body that is not JSON", func(t *testing.T) {
		req := httptest.NewRequest("POST", "/v1/t1/projects/p1/errors", strings.NewReader(`not json`))
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestExportEndpoint(t *testing.T) {
	repo := &memRepo{records: []*domain.ProjectError{{ID: 1, Model: "A", Message: "m"}}}
	handler := newTestRouter(repo)

	req := httptest.NewRequest("GET", "/v1/t1/projects/p1/errors/export?model=A", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Contains(t, resp["report_url"], "t1/p1/errors-")
}
