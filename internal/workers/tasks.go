// internal/workers/tasks.go
package workers

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/hibiken/asynq"
)

// Task types handled by the worker process.
const (
	TypeReorderScan     = "reorder:scan"
	TypeValuationExport = "valuation:export"
	TypeCleanupDeleted  = "cleanup:soft_deleted"
)

// ValuationExportPayload is the payload for valuation export jobs
type ValuationExportPayload struct {
	JobID      string `json:"job_id"`
	OutputPath string `json:"output_path"`
}

// CleanupPayload is the payload for soft-delete purge jobs
type CleanupPayload struct {
	RetentionDays int `json:"retention_days"`
}

// NewValuationExportTask builds a queued export task.
func NewValuationExportTask(jobID, outputPath string) (*asynq.Task, error) {
	payload, err := json.Marshal(ValuationExportPayload{
		JobID:      jobID,
		OutputPath: outputPath,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal export payload: %w", err)
	}
	return asynq.NewTask(TypeValuationExport, payload,
		asynq.MaxRetry(3), asynq.Timeout(5*time.Minute)), nil
}

// NewReorderScanTask builds a reorder scan task.
func NewReorderScanTask() *asynq.Task {
	return asynq.NewTask(TypeReorderScan, nil, asynq.MaxRetry(2))
}

// NewCleanupTask builds a purge task for soft-deleted items.
func NewCleanupTask(retentionDays int) (*asynq.Task, error) {
	payload, err := json.Marshal(CleanupPayload{RetentionDays: retentionDays})
	if err != nil {
		return nil, fmt.Errorf("marshal cleanup payload: %w", err)
	}
	return asynq.NewTask(TypeCleanupDeleted, payload, asynq.Queue("low")), nil
}
