package importer

// commit.go writes resolved drills in fixed-size batches.
//
// Each batch is attempted as a single multi-row insert. When that fails the
// batch is retried row by row so one bad row cannot sink its neighbours.
// After any batch, imported plus failed equals the batch length.

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// DefaultBatchSize is the number of rows written per multi-row insert.
const DefaultBatchSize = 100

// DrillWriter persists drills. InsertDrills must be atomic: either every row
// in the slice is written or none is.
type DrillWriter interface {
	InsertDrills(ctx context.Context, userID uuid.UUID, drills []DrillInput) (int, error)
	InsertDrill(ctx context.Context, userID uuid.UUID, drill DrillInput) error
}

// Committer writes drills for one user.
type Committer struct {
	writer    DrillWriter
	batchSize int
}

// NewCommitter returns a committer that writes batchSize rows at a time.
// A non-positive batchSize uses DefaultBatchSize.
func NewCommitter(w DrillWriter, batchSize int) *Committer {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Committer{writer: w, batchSize: batchSize}
}

// BatchOutcome reports the result of one batch.
type BatchOutcome struct {
	Imported int
	Failures []CommitError
	Fallback bool // true when the batch was retried row by row
}

// Commit writes drills in order, batch by batch. Batches run sequentially.
// If ctx is cancelled, rows not yet attempted are reported as failures.
func (c *Committer) Commit(ctx context.Context, userID uuid.UUID, drills []DrillInput) (int, []CommitError) {
	var (
		imported int
		failures []CommitError
	)

	for start := 0; start < len(drills); start += c.batchSize {
		end := min(start+c.batchSize, len(drills))
		batch := drills[start:end]

		if err := ctx.Err(); err != nil {
			for _, d := range drills[start:] {
				failures = append(failures, CommitError{Row: d.Row, Error: commitMessage(err)})
			}
			break
		}

		out := c.commitBatch(ctx, userID, batch)
		imported += out.Imported
		failures = append(failures, out.Failures...)
	}

	return imported, failures
}

func (c *Committer) commitBatch(ctx context.Context, userID uuid.UUID, batch []DrillInput) BatchOutcome {
	n, err := c.writer.InsertDrills(ctx, userID, batch)
	if err == nil {
		return BatchOutcome{Imported: n}
	}

	out := BatchOutcome{Fallback: true}
	for _, d := range batch {
		if err := c.writer.InsertDrill(ctx, userID, d); err != nil {
			out.Failures = append(out.Failures, CommitError{Row: d.Row, Error: commitMessage(err)})
			continue
		}
		out.Imported++
	}
	return out
}

// commitMessage renders a write failure for a single row, keeping the
// store's error text. Unique index violations are reported as duplicates.
func commitMessage(err error) string {
	if errors.Is(err, ErrDuplicate) {
		return "Duplicate drill name (already in your drill library)"
	}
	return fmt.Sprintf("insert failed: %v", err)
}
