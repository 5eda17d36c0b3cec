// internal/handlers/exports.go
package handlers

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"

	"github.com/avolio/stockbook-be/internal/workers"
)

// ExportHandler enqueues background export jobs.
type ExportHandler struct {
	client    *asynq.Client
	exportDir string
	logger    *slog.Logger
}

// NewExportHandler creates a new export handler
func NewExportHandler(client *asynq.Client, exportDir string, logger *slog.Logger) *ExportHandler {
	if exportDir == "" {
		exportDir = "exports"
	}
	return &ExportHandler{
		client:    client,
		exportDir: exportDir,
		logger:    logger.With(slog.String("handler", "exports")),
	}
}

// ExportValuationRequest is the optional body for export requests
type ExportValuationRequest struct {
	OutputPath string `json:"output_path"`
}

// ExportValuation handles POST /api/v1/valuation/export
func (h *ExportHandler) ExportValuation(w http.ResponseWriter, r *http.Request) {
	var req ExportValuationRequest
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			respondError(w, h.logger, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	jobID := uuid.New().String()
	outputPath := req.OutputPath
	if outputPath == "" {
		outputPath = filepath.Join(h.exportDir,
			fmt.Sprintf("valuation_%s_%s.xlsx", time.Now().Format("20060102"), jobID[:8]))
	}

	task, err := workers.NewValuationExportTask(jobID, outputPath)
	if err != nil {
		respondError(w, h.logger, http.StatusInternalServerError, "failed to build export task")
		return
	}

	info, err := h.client.EnqueueContext(r.Context(), task)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "failed to enqueue export",
			slog.String("job_id", jobID),
			slog.String("error", err.Error()))
		respondError(w, h.logger, http.StatusInternalServerError, "failed to enqueue export")
		return
	}

	h.logger.InfoContext(r.Context(), "valuation export enqueued",
		slog.String("job_id", jobID),
		slog.String("task_id", info.ID),
		slog.String("queue", info.Queue))

	respondJSON(w, h.logger, http.StatusAccepted, map[string]string{
		"job_id":      jobID,
		"task_id":     info.ID,
		"queue":       info.Queue,
		"output_path": outputPath,
	})
}
