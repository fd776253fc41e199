package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pipescan-io/pipescan/internal/application/errorlist"
	"github.com/pipescan-io/pipescan/internal/application/summarize"
	"github.com/pipescan-io/pipescan/internal/domain/ai"
	"github.com/pipescan-io/pipescan/internal/middleware"
)

// ErrSummariesDisabled is returned when no AI client is configured.
var ErrSummariesDisabled = errors.New("ai summaries are not configured")

type Router struct {
	listSvc *errorlist.Service
	sumSvc  *summarize.Service
}

// Options carries the ambient wiring the router needs beyond the
// services themselves.
type Options struct {
	// APIKeys maps tenant to API key; empty disables auth.
	APIKeys map[string]string
	// Checkers feed the /health endpoint.
	Checkers map[string]middleware.HealthChecker
	// RateCapacity / RateRefill configure the per-tenant token bucket;
	// zero capacity disables rate limiting.
	RateCapacity int
	RateRefill   int
}

func NewRouter(listSvc *errorlist.Service, sumSvc *summarize.Service, opts Options) http.Handler {
	r := &Router{listSvc: listSvc, sumSvc: sumSvc}
	mux := chi.NewRouter()

	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type"},
	}))
	mux.Use(middleware.LoggingMiddleware)
	mux.Use(middleware.MetricsMiddleware)
	if len(opts.APIKeys) > 0 {
		mux.Use(middleware.APIKeyAuth(opts.APIKeys))
	}
	if opts.RateCapacity > 0 {
		mux.Use(middleware.RateLimitMiddleware(opts.RateCapacity, opts.RateRefill))
	}

	mux.Get("/health", middleware.HealthHandler(opts.Checkers))
	mux.Get("/livez", middleware.LivenessHandler)
	mux.Get("/metrics", middleware.MetricsHandler)

	mux.Route("/v1/{tenant}/projects/{project}", func(rt chi.Router) {
		rt.Get("/errors", r.wrap(r.handleListErrors))
		rt.Post("/errors", r.wrap(r.handleRecordError))
		rt.Get("/errors/export", r.wrap(r.handleExportErrors))
		rt.Post("/errors/summarize", r.wrap(r.handleSummarize))
		rt.Get("/errors/summaries", r.wrap(r.handleListSummaries))
	})

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				http.Error(w, "not found", http.StatusNotFound)
			case errors.Is(err, ai.ErrQuotaExceeded):
				http.Error(w, "ai quota exceeded", http.StatusTooManyRequests)
			case errors.Is(err, ErrSummariesDisabled):
				http.Error(w, err.Error(), http.StatusServiceUnavailable)
			case errors.Is(err, errorlist.ErrModelRequired),
				errors.Is(err, summarize.ErrNothingToSummarize):
				http.Error(w, err.Error(), http.StatusBadRequest)
			default:
				http.Error(w, err.Error(), http.StatusInternalServerError)
			}
		}
	}
}

// scope pulls and validates the tenant/project pair every route shares.
func scope(req *http.Request) (tenant, project string, err error) {
	tenant = chi.URLParam(req, "tenant")
	project = chi.URLParam(req, "project")
	if err := middleware.ValidateTenantID(tenant); err != nil {
		return "", "", err
	}
	if err := middleware.ValidateProjectID(project); err != nil {
		return "", "", err
	}
	return tenant, project, nil
}

// GET /v1/{tenant}/projects/{project}/errors?model=&message=&page=
func (r *Router) handleListErrors(w http.ResponseWriter, req *http.Request) error {
	tenant, project, err := scope(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	view, err := r.listSvc.Render(req.Context(), tenant, project, req.URL.Query())
	if err != nil {
		return err
	}
	middleware.IncrementListings()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(view)
}

// POST /v1/{tenant}/projects/{project}/errors
// Body: {"model": "...", "message": "...", "details": {...}, "traceback": "..."}
// Pipelines report errors here; the listing itself never writes.
func (r *Router) handleRecordError(w http.ResponseWriter, req *http.Request) error {
	tenant, project, err := scope(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	var cmd errorlist.RecordCommand
	if err := json.NewDecoder(req.Body).Decode(&cmd); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return nil
	}

	e, err := r.listSvc.Record(req.Context(), tenant, project, cmd)
	if err != nil {
		return err
	}
	middleware.IncrementErrorsRecorded()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	return json.NewEncoder(w).Encode(e)
}

// GET /v1/{tenant}/projects/{project}/errors/export?model=&message=
func (r *Router) handleExportErrors(w http.ResponseWriter, req *http.Request) error {
	tenant, project, err := scope(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}

	url, err := r.listSvc.Export(req.Context(), tenant, project, req.URL.Query())
	if err != nil {
		return err
	}
	middleware.IncrementReportsExported()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(map[string]string{"report_url": url})
}

// POST /v1/{tenant}/projects/{project}/errors/summarize?model=&message=&page=
func (r *Router) handleSummarize(w http.ResponseWriter, req *http.Request) error {
	tenant, project, err := scope(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if r.sumSvc == nil {
		return ErrSummariesDisabled
	}

	sum, err := r.sumSvc.SummarizeAndStore(req.Context(), tenant, project, req.URL.Query())
	if err != nil {
		return err
	}
	middleware.IncrementSummaries()

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(sum)
}

// GET /v1/{tenant}/projects/{project}/errors/summaries?page=&page_size=
func (r *Router) handleListSummaries(w http.ResponseWriter, req *http.Request) error {
	tenant, project, err := scope(req)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return nil
	}
	if r.sumSvc == nil {
		return ErrSummariesDisabled
	}

	page, _ := strconv.Atoi(req.URL.Query().Get("page"))
	size, _ := strconv.Atoi(req.URL.Query().Get("page_size"))
	size = middleware.ValidatePageSize(size)

	list, err := r.sumSvc.List(req.Context(), tenant, project, page, size)
	if err != nil {
		return err
	}

	w.Header().Set("Content-Type", "application/json")
	return json.NewEncoder(w).Encode(list)
}
