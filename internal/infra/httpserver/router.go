package httpserver

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	apppipeline "github.com/bryanwahyu/insight-pipeline/internal/application/pipeline"
	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
	"github.com/bryanwahyu/insight-pipeline/internal/middleware"
)

const maxBodyBytes = 1 << 20

// Options wires the optional cross-cutting pieces
type Options struct {
	CORSOrigins    []string
	Metrics        *middleware.Metrics
	RateLimiter    *middleware.RateLimiter
	HealthCheckers map[string]middleware.HealthChecker
	Logger         *slog.Logger
}

type Router struct {
	svc    *apppipeline.Service
	logger *slog.Logger
}

func NewRouter(svc *apppipeline.Service, opts Options) http.Handler {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := &Router{svc: svc, logger: logger}
	mux := chi.NewRouter()

	mux.Use(middleware.RequestID)
	mux.Use(chimw.Recoverer)
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"*"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(middleware.Logging(logger))
	if opts.RateLimiter != nil {
		mux.Use(middleware.RateLimitMiddleware(opts.RateLimiter))
	}

	mux.Get("/health", middleware.HealthHandler(opts.HealthCheckers))
	mux.Get("/ready", middleware.ReadinessHandler)
	mux.Get("/live", middleware.LivenessHandler)
	if opts.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", opts.Metrics.Handler())
	}

	mux.Post("/pipeline", r.wrap(r.handleRunPipeline))
	mux.Get("/results", r.wrap(r.handleLatest))
	mux.Get("/results/{id}", r.wrap(r.handleGet))

	return mux
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				writeError(w, http.StatusNotFound, "not_found", "not found")
				return
			}
			if errors.Is(err, domain.ErrInvalidPayload) {
				writeError(w, http.StatusBadRequest, "invalid_payload", err.Error())
				return
			}
			r.logger.ErrorContext(req.Context(), "request failed",
				slog.String("request_id", middleware.GetRequestID(req.Context())),
				slog.String("path", req.URL.Path),
				slog.Any("err", err),
			)
			writeError(w, http.StatusInternalServerError, "internal", "unexpected server error")
		}
	}
}

// RunRequest is the accepted body of POST /pipeline
type RunRequest struct {
	Email  string `json:"email,omitempty"`
	Source string `json:"source,omitempty"`
}

// decodeRunRequest rejects anything that is not a single JSON object with
// optional string fields email and source.
func decodeRunRequest(w http.ResponseWriter, req *http.Request) (apppipeline.RunCommand, error) {
	dec := json.NewDecoder(http.MaxBytesReader(w, req.Body, maxBodyBytes))
	dec.DisallowUnknownFields()

	var body *RunRequest
	if err := dec.Decode(&body); err != nil {
		if errors.Is(err, io.EOF) {
			return apppipeline.RunCommand{}, fmt.Errorf("%w: request body must be a JSON object", domain.ErrInvalidPayload)
		}
		return apppipeline.RunCommand{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	if body == nil {
		return apppipeline.RunCommand{}, fmt.Errorf("%w: request body must be a JSON object", domain.ErrInvalidPayload)
	}
	if dec.More() {
		return apppipeline.RunCommand{}, fmt.Errorf("%w: unexpected data after JSON object", domain.ErrInvalidPayload)
	}

	email := strings.TrimSpace(body.Email)
	if err := middleware.ValidateEmail(email); err != nil {
		return apppipeline.RunCommand{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	source := middleware.SanitizeString(body.Source)
	if err := middleware.ValidateSource(source); err != nil {
		return apppipeline.RunCommand{}, fmt.Errorf("%w: %v", domain.ErrInvalidPayload, err)
	}
	return apppipeline.RunCommand{Email: email, Source: source}, nil
}

// POST /pipeline
// Body: {"email": "<optional>", "source": "<optional>"}
// Always 200 once the payload is valid, even if every iteration failed.
func (r *Router) handleRunPipeline(w http.ResponseWriter, req *http.Request) error {
	cmd, err := decodeRunRequest(w, req)
	if err != nil {
		return err
	}

	report := r.svc.Run(req.Context(), cmd)
	return writeJSON(w, http.StatusOK, report)
}

// GET /results?limit=20
func (r *Router) handleLatest(w http.ResponseWriter, req *http.Request) error {
	limit, _ := strconv.Atoi(req.URL.Query().Get("limit"))

	list, err := r.svc.Latest(req.Context(), middleware.ValidateLimit(limit))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, list)
}

// GET /results/{id}
func (r *Router) handleGet(w http.ResponseWriter, req *http.Request) error {
	id, err := strconv.ParseInt(chi.URLParam(req, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "invalid_id", "id must be a positive integer")
		return nil
	}

	rec, err := r.svc.Get(req.Context(), domain.RecordID(id))
	if err != nil {
		return err
	}
	return writeJSON(w, http.StatusOK, rec)
}
