package mailbox

import (
	"context"

	"mailsweep-backend/pkg/metrics"

	"github.com/samber/lo"
)

// MaxBatchSize is the largest id list the provider accepts in one bulk call.
const MaxBatchSize = 1000

type BatchError struct {
	Batch int    `json:"batch"`
	Error string `json:"error"`
}

// BatchReport describes a bulk mutation that may have partially succeeded.
type BatchReport struct {
	Total     int          `json:"total"`
	Processed int          `json:"processed"`
	Batches   int          `json:"batches"`
	Errors    []BatchError `json:"errors"`
}

func (r *BatchReport) Success() bool {
	return len(r.Errors) == 0
}

// ApplyInBatches calls apply for each consecutive group of at most size ids.
// A failing group is recorded under its 1-based batch number and the
// remaining groups still run.
func ApplyInBatches(ctx context.Context, action string, ids []string, size int, apply func(ctx context.Context, batch []string) error) *BatchReport {
	if size <= 0 || size > MaxBatchSize {
		size = MaxBatchSize
	}

	batches := lo.Chunk(ids, size)
	report := &BatchReport{Total: len(ids), Batches: len(batches), Errors: []BatchError{}}
	for i, batch := range batches {
		if err := apply(ctx, batch); err != nil {
			report.Errors = append(report.Errors, BatchError{Batch: i + 1, Error: err.Error()})
			metrics.IncrementBulkBatch(action, "failed")
			continue
		}
		report.Processed += len(batch)
		metrics.IncrementBulkBatch(action, "ok")
	}
	return report
}
