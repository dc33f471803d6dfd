package importer

import (
	"cmp"
	"context"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/JonMunkholm/drillbook/internal/logging"
	"github.com/google/uuid"
)

// Store is the persistence the import pipeline needs.
type Store interface {
	CategoryStore
	DrillWriter

	// ListDrillNames returns the names of every drill the user owns.
	ListDrillNames(ctx context.Context, userID uuid.UUID) ([]string, error)
	RecordImportRun(ctx context.Context, run ImportRun) (ImportRun, error)
	ListImportRuns(ctx context.Context, userID uuid.UUID, limit int) ([]ImportRun, error)
}

// Config tunes the pipeline. Zero values fall back to defaults.
type Config struct {
	MaxFileSize    int64
	BatchSize      int
	DefaultMinutes int
	Timeout        time.Duration
	MaxConcurrent  int
	MaxWait        time.Duration
}

// DefaultTimeout bounds a single preview or confirm.
const DefaultTimeout = 5 * time.Minute

// DefaultHistoryLimit and MaxHistoryLimit bound History.
const (
	DefaultHistoryLimit = 20
	MaxHistoryLimit     = 100
)

// Service runs previews and confirms. It keeps no state between the two.
type Service struct {
	store   Store
	cfg     Config
	limiter *Limiter
	now     func() time.Time
}

// NewService creates a Service over store.
func NewService(store Store, cfg Config) *Service {
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = MaxFileSize
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = DefaultBatchSize
	}
	if cfg.DefaultMinutes < 0 {
		cfg.DefaultMinutes = 0
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Service{
		store:   store,
		cfg:     cfg,
		limiter: NewLimiter(cfg.MaxConcurrent, cfg.MaxWait),
		now:     time.Now,
	}
}

// Limiter exposes the import slot limiter for shutdown draining and status.
func (s *Service) Limiter() *Limiter {
	return s.limiter
}

// MaxFileSize returns the effective upload ceiling.
func (s *Service) MaxFileSize() int64 {
	return s.cfg.MaxFileSize
}

// Upload is a received file.
type Upload struct {
	FileName    string
	ContentType string
	Size        int64 // declared size; len(Data) is used when zero
	Data        []byte
}

// Preview detects, parses, validates and deduplicates an upload. Row-level
// problems are returned in the summary; only file-level problems are errors.
func (s *Service) Preview(ctx context.Context, userID uuid.UUID, up Upload) (StagedImport, error) {
	if err := s.limiter.Acquire(ctx); err != nil {
		return StagedImport{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	size := up.Size
	if size <= 0 {
		size = int64(len(up.Data))
	}
	log := logging.WithFields(ctx, "file", up.FileName, "size", size)
	log.Debug("import phase", "phase", PhaseUploaded)

	format, err := detectFormat(up.FileName, up.ContentType, size, s.cfg.MaxFileSize)
	if err != nil {
		log.Warn("upload rejected", "error", err)
		return StagedImport{}, err
	}
	if len(up.Data) == 0 {
		return StagedImport{}, ErrEmptyFile
	}

	raws, err := ParseFile(ctx, format, up.Data)
	if err != nil {
		log.Warn("parse failed", "format", format, "error", err)
		return StagedImport{}, err
	}
	log = log.With("format", format)
	log.Debug("import phase", "phase", PhaseParsed, "rows", len(raws))

	existing, err := s.store.ListDrillNames(ctx, userID)
	if err != nil {
		return StagedImport{}, fmt.Errorf("list drill names: %w", err)
	}

	staged := stage(raws, existing)
	log.Info("import staged",
		"phase", PhaseStaged,
		"total", staged.Summary.TotalRows,
		"valid", staged.Summary.ValidRows,
		"invalid", staged.Summary.InvalidRows,
	)
	return staged, nil
}

// stage validates raws in source order and drops duplicates, first
// occurrence wins.
func stage(raws []RawRow, existing []string) StagedImport {
	dups := NewDuplicateResolver(existing)
	rows := make([]NormalizedRow, 0, len(raws))
	errs := make([]RowError, 0)

	for _, raw := range raws {
		res := ValidateRow(raw)
		if !res.Valid {
			errs = append(errs, res.Error)
			continue
		}
		if rerr, ok := dups.Claim(raw.Line, res.Row.Name); !ok {
			errs = append(errs, rerr)
			continue
		}
		rows = append(rows, res.Row)
	}

	return StagedImport{
		Rows: rows,
		Summary: ImportSummary{
			TotalRows:   len(raws),
			ValidRows:   len(rows),
			InvalidRows: len(raws) - len(rows),
			Errors:      errs,
		},
	}
}

// Confirm commits a resubmitted row set. Rows are numbered by their 1-based
// position in req.Rows. Duplicates are counted as skipped and itemized;
// every other failure is itemized only.
func (s *Service) Confirm(ctx context.Context, userID uuid.UUID, req ConfirmRequest) (CommitResult, error) {
	if len(req.Rows) == 0 {
		return CommitResult{}, ErrNoRows
	}

	if err := s.limiter.Acquire(ctx); err != nil {
		return CommitResult{}, err
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := s.now()
	log := logging.WithFields(ctx, "file", req.FileName, "rows", len(req.Rows))
	log.Debug("import phase", "phase", PhaseConfirmed)

	existing, err := s.store.ListDrillNames(ctx, userID)
	if err != nil {
		return CommitResult{}, fmt.Errorf("list drill names: %w", err)
	}

	var (
		result  CommitResult
		pending []int
		rows    = make([]NormalizedRow, len(req.Rows))
		dups    = NewDuplicateResolver(existing)
	)

	for i, r := range req.Rows {
		row := i + 1
		rows[i] = normalizeConfirmed(r)

		if rows[i].Name == "" {
			result.Errors = append(result.Errors, CommitError{Row: row, Error: msgNameRequired})
			continue
		}
		// Confirmed rows bypass parseMinutes, so the column range is checked here.
		if m := rows[i].Minutes; m != nil && *m > math.MaxInt32 {
			result.Errors = append(result.Errors, CommitError{Row: row, Error: msgMinutesInvalid})
			continue
		}
		if rerr, ok := dups.Claim(row, rows[i].Name); !ok {
			result.Skipped++
			result.Errors = append(result.Errors, CommitError{Row: row, Error: rerr.Message})
			continue
		}
		pending = append(pending, i)
	}

	categories := NewCategoryResolver(s.store, userID)
	names := make([]string, len(pending))
	for j, i := range pending {
		names[j] = rows[i].Category
	}
	if err := categories.Resolve(ctx, names); err != nil {
		return CommitResult{}, fmt.Errorf("resolve categories: %w", err)
	}

	defaultMinutes := s.cfg.DefaultMinutes
	if d := req.DefaultMinutes; d != nil && *d >= 0 && *d <= math.MaxInt32 {
		defaultMinutes = *d
	}

	drills := make([]DrillInput, 0, len(pending))
	for _, i := range pending {
		row := i + 1
		categoryID, err := categories.Lookup(rows[i].Category)
		if err != nil {
			result.Errors = append(result.Errors, CommitError{Row: row, Error: err.Error()})
			continue
		}

		minutes := defaultMinutes
		if m := rows[i].Minutes; m != nil && *m > 0 {
			minutes = *m
		}

		drills = append(drills, DrillInput{
			Row:        row,
			CategoryID: categoryID,
			Name:       rows[i].Name,
			Minutes:    minutes,
			Notes:      rows[i].Notes,
			MediaLinks: rows[i].MediaLinks,
		})
	}

	imported, failures := NewCommitter(s.store, s.cfg.BatchSize).Commit(ctx, userID, drills)
	result.Imported = imported
	result.Errors = append(result.Errors, failures...)
	slices.SortStableFunc(result.Errors, func(a, b CommitError) int {
		return cmp.Compare(a.Row, b.Row)
	})

	elapsed := s.now().Sub(start)
	log.Info("import committed",
		"phase", PhaseCommitted,
		"imported", result.Imported,
		"skipped", result.Skipped,
		"failed", len(result.Errors)-result.Skipped,
		"duration", elapsed,
	)

	s.recordRun(ctx, userID, req, result, elapsed)
	return result, nil
}

// recordRun stores the import history entry. Failure is logged, never
// returned: the drills are already committed.
func (s *Service) recordRun(ctx context.Context, userID uuid.UUID, req ConfirmRequest, result CommitResult, elapsed time.Duration) {
	run := ImportRun{
		UserID:     userID,
		FileName:   strings.TrimSpace(req.FileName),
		TotalRows:  len(req.Rows),
		Imported:   result.Imported,
		Skipped:    result.Skipped,
		Failed:     len(result.Errors) - result.Skipped,
		DurationMs: elapsed.Milliseconds(),
	}
	if _, err := s.store.RecordImportRun(context.WithoutCancel(ctx), run); err != nil {
		logging.FromContext(ctx).Warn("record import run failed", "error", err)
	}
}

// History returns the user's most recent import runs, newest first.
func (s *Service) History(ctx context.Context, userID uuid.UUID, limit int) ([]ImportRun, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	limit = min(limit, MaxHistoryLimit)

	runs, err := s.store.ListImportRuns(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}
	return runs, nil
}
