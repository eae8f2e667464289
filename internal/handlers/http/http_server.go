package http

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"coffeeStatApp/internal/app/dto"
	"coffeeStatApp/internal/domain/model"
	"coffeeStatApp/internal/domain/repository"
	"coffeeStatApp/internal/domain/useCases"
	"coffeeStatApp/internal/infrastructure/export"
	"coffeeStatApp/internal/lib/logger/sl"
	"coffeeStatApp/pkg/generator"
)

// Options configures a Server. Archive, Metrics and Requests may be nil.
type Options struct {
	Datasets       useCases.DatasetService
	Archive        repository.SnapshotArchive
	Broadcaster    useCases.Broadcaster
	Requests       chan<- *dto.RegenerateRequestDTO
	Metrics        http.Handler
	Log            *slog.Logger
	DefaultRecords int
	MaxRecords     int
}

// Server represents an HTTP server with all routes configured
type Server struct {
	opts     Options
	validate *validator.Validate
	log      *slog.Logger
	mux      *http.ServeMux
	server   *http.Server
}

// DatasetQuery holds the query parameters shared by the dataset endpoints.
type DatasetQuery struct {
	Records    int     `validate:"gte=1,ltefield=MaxRecords"`
	MaxRecords int     `validate:"-"`
	Seed       *uint64 `validate:"-"`
	Limit      int     `validate:"gte=0"`
}

// RunsQuery holds the query parameters of /api/runs.
type RunsQuery struct {
	Limit int `validate:"gte=1,lte=1000"`
}

// Response is the envelope for error replies.
type Response struct {
	Status   string         `json:"status"`
	Data     any            `json:"data,omitempty"`
	Messages []ErrorMessage `json:"messages,omitempty"`
}

// ErrorMessage describes one rejected field.
type ErrorMessage struct {
	ErrCode string   `json:"errcode"`
	Field   string   `json:"field,omitempty"`
	Vals    []string `json:"vals,omitempty"`
}

// NewServer creates a new HTTP server with configured routes
func NewServer(addr string, opts Options) *Server {
	if opts.DefaultRecords <= 0 {
		opts.DefaultRecords = 1000
	}
	if opts.MaxRecords <= 0 {
		opts.MaxRecords = 100000
	}
	if opts.Log == nil {
		opts.Log = slog.Default()
	}

	mux := http.NewServeMux()
	server := &Server{
		opts:     opts,
		validate: validator.New(),
		log:      opts.Log.With(slog.String("component", "http")),
		mux:      mux,
		server: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}

	server.registerRoutes()

	return server
}

// registerRoutes configures all HTTP routes
func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /health", s.handleHealth)

	s.mux.HandleFunc("GET /api/report", s.handleReport)
	s.mux.HandleFunc("GET /api/transactions", s.handleTransactions)
	s.mux.HandleFunc("GET /api/transactions.csv", s.handleTransactionsCSV)
	s.mux.HandleFunc("POST /api/generate", s.handleGenerate)
	s.mux.HandleFunc("GET /api/runs", s.handleRuns)

	if s.opts.Broadcaster != nil {
		s.mux.HandleFunc("GET /ws", s.opts.Broadcaster.Handler())
	}
	if s.opts.Metrics != nil {
		s.mux.Handle("GET /metrics", s.opts.Metrics)
	}
}

// Handler exposes the router, mainly for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// handleReport serves the report of the current dataset, or of the seeded one when seed is given
func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	q, ok := s.datasetQuery(w, r)
	if !ok {
		return
	}
	_, report, err := s.lookup(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, report)
}

// handleTransactions serves raw rows, optionally capped by limit
func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	q, ok := s.datasetQuery(w, r)
	if !ok {
		return
	}
	snap, _, err := s.lookup(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	txs := snap.Dataset.Transactions
	if q.Limit > 0 && q.Limit < len(txs) {
		txs = txs[:q.Limit]
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"run_id":       snap.RunID,
		"params":       snap.Dataset.Params,
		"total":        snap.Dataset.Len(),
		"transactions": dto.FromModels(txs),
	})
}

func (s *Server) handleTransactionsCSV(w http.ResponseWriter, r *http.Request) {
	q, ok := s.datasetQuery(w, r)
	if !ok {
		return
	}
	snap, _, err := s.lookup(r.Context(), q)
	if err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", `attachment; filename="coffee_shop_sales.csv"`)
	if err := export.WriteCSV(w, snap.Dataset); err != nil {
		s.log.Error("failed to write csv", slog.String("run_id", snap.RunID), sl.Err(err))
	}
}

// handleGenerate queues a regeneration; the new report is pushed over /ws
func (s *Server) handleGenerate(w http.ResponseWriter, r *http.Request) {
	q, ok := s.datasetQuery(w, r)
	if !ok {
		return
	}
	if s.opts.Requests == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "unavailable"}},
		})
		return
	}

	req := &dto.RegenerateRequestDTO{ID: uuid.New().String(), Records: q.Records}
	select {
	case s.opts.Requests <- req:
	default:
		s.writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "busy"}},
		})
		return
	}

	s.log.Info("regeneration queued", slog.String("request_id", req.ID), slog.Int("records", req.Records))
	s.writeJSON(w, http.StatusAccepted, map[string]any{
		"request_id": req.ID,
		"records":    req.Records,
	})
}

// handleRuns lists the latest archived runs
func (s *Server) handleRuns(w http.ResponseWriter, r *http.Request) {
	q := RunsQuery{Limit: 20}
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeInvalid(w, "Limit", "number", v)
			return
		}
		q.Limit = n
	}
	if !s.valid(w, q) {
		return
	}
	if s.opts.Archive == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "unavailable", Field: "archive"}},
		})
		return
	}

	runs, err := s.opts.Archive.ListRuns(r.Context(), q.Limit)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if runs == nil {
		runs = []model.GenerationParams{}
	}
	s.writeJSON(w, http.StatusOK, runs)
}

func (s *Server) lookup(ctx context.Context, q DatasetQuery) (*model.Snapshot, *model.Report, error) {
	if q.Seed != nil {
		return s.opts.Datasets.Seeded(ctx, q.Records, *q.Seed)
	}
	return s.opts.Datasets.Current(ctx, q.Records)
}

// datasetQuery parses and validates records, seed and limit. It writes a 400 and
// returns false when the query is rejected.
func (s *Server) datasetQuery(w http.ResponseWriter, r *http.Request) (DatasetQuery, bool) {
	values := r.URL.Query()
	q := DatasetQuery{Records: s.opts.DefaultRecords, MaxRecords: s.opts.MaxRecords}

	if v := values.Get("records"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeInvalid(w, "Records", "number", v)
			return q, false
		}
		q.Records = n
	}
	if v := values.Get("seed"); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			s.writeInvalid(w, "Seed", "number", v)
			return q, false
		}
		q.Seed = &seed
	}
	if v := values.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.writeInvalid(w, "Limit", "number", v)
			return q, false
		}
		q.Limit = n
	}

	return q, s.valid(w, q)
}

// valid runs struct validation and writes the rejected fields as a 400
func (s *Server) valid(w http.ResponseWriter, data any) bool {
	err := s.validate.Struct(data)
	if err == nil {
		return true
	}

	var msgs []ErrorMessage
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		for _, fe := range validationErrs {
			msg := ErrorMessage{ErrCode: fe.Tag(), Field: fe.Field()}
			if fe.Param() != "" {
				msg.Vals = []string{fmt.Sprint(fe.Value()), fe.Param()}
			}
			msgs = append(msgs, msg)
		}
	} else {
		msgs = []ErrorMessage{{ErrCode: "invalid", Vals: []string{err.Error()}}}
	}

	s.writeJSON(w, http.StatusBadRequest, Response{Status: "error", Messages: msgs})
	return false
}

func (s *Server) writeInvalid(w http.ResponseWriter, field, code, value string) {
	s.writeJSON(w, http.StatusBadRequest, Response{
		Status:   "error",
		Messages: []ErrorMessage{{ErrCode: code, Field: field, Vals: []string{value}}},
	})
}

// writeError maps domain errors to status codes
func (s *Server) writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, generator.ErrInvalidArgument):
		s.writeJSON(w, http.StatusBadRequest, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "invalid", Vals: []string{err.Error()}}},
		})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		s.writeJSON(w, http.StatusServiceUnavailable, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "cancelled"}},
		})
	default:
		s.log.Error("request failed", sl.Err(err))
		s.writeJSON(w, http.StatusInternalServerError, Response{
			Status:   "error",
			Messages: []ErrorMessage{{ErrCode: "internal"}},
		})
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("failed to encode response", sl.Err(err))
	}
}

// Start begins listening for HTTP requests
func (s *Server) Start() error {
	return s.server.ListenAndServe()
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	return s.server.Shutdown(ctx)
}
