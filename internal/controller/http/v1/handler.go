package v1

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/domain"
	"github.com/paulasanjuan24/Auto-Reporting-Pipeline/internal/pipeline"
)

const maxRequestBody = 1 << 16

type Runner interface {
	Run(ctx context.Context, req pipeline.RunRequest) (*domain.RunReport, error)
}

type RunsRepository interface {
	Run(ctx context.Context, id string) (*domain.RunReport, error)
	Runs(ctx context.Context, limit, offset uint64) ([]*domain.RunReport, int, error)
}

type RunsHandler struct {
	log            *slog.Logger
	runner         Runner
	runsRepository RunsRepository
}

func NewRunsHandler(log *slog.Logger, runner Runner, runsRepository RunsRepository) *RunsHandler {
	return &RunsHandler{
		log:            log,
		runner:         runner,
		runsRepository: runsRepository,
	}
}

type GetRunsResponse struct {
	Runs       []*domain.RunReport `json:"runs"`
	Pagination Pagination          `json:"pagination"`
}

type ErrorResponse struct {
	Error string `json:"error"`
}

// StartRun runs the pipeline synchronously and responds with its report.
// The body is optional: {"run_id": "...", "query": "..."}.
func (h *RunsHandler) StartRun(w http.ResponseWriter, r *http.Request) {
	var req pipeline.RunRequest

	err := json.NewDecoder(io.LimitReader(r.Body, maxRequestBody)).Decode(&req)
	if err != nil && !errors.Is(err, io.EOF) {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	// the run outlives a client that hangs up
	report, err := h.runner.Run(context.WithoutCancel(r.Context()), req)
	if errors.Is(err, domain.ErrRunInProgress) {
		h.writeJSON(w, http.StatusConflict, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	status := http.StatusOK
	if report.Status == domain.StatusError {
		status = http.StatusInternalServerError
	}

	h.writeJSON(w, status, report)
}

func (h *RunsHandler) GetRuns(w http.ResponseWriter, r *http.Request) {
	pagination, err := parsePagination(r.URL.Query())
	if err != nil {
		h.writeJSON(w, http.StatusBadRequest, ErrorResponse{Error: err.Error()})
		return
	}

	runs, total, err := h.runsRepository.Runs(r.Context(), pagination.Limit, pagination.Offset())
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, GetRunsResponse{
		Runs:       runs,
		Pagination: pagination.WithTotal(total),
	})
}

func (h *RunsHandler) GetRun(w http.ResponseWriter, r *http.Request) {
	runID := chi.URLParam(r, "run_id")

	run, err := h.runsRepository.Run(r.Context(), runID)
	if errors.Is(err, domain.ErrRunNotFound) {
		h.writeJSON(w, http.StatusNotFound, ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		h.writeJSON(w, http.StatusInternalServerError, ErrorResponse{Error: err.Error()})
		return
	}

	h.writeJSON(w, http.StatusOK, run)
}

func (h *RunsHandler) Health(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *RunsHandler) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if _, err := w.Write(data); err != nil {
		h.log.Warn("failed to write response", slog.String("err", err.Error()))
	}
}
