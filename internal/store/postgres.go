// Package store persists drills, categories and import runs in PostgreSQL.
package store

import (
	"context"
	"errors"
	"fmt"

	db "github.com/JonMunkholm/drillbook/internal/database"
	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE for unique_violation.
const uniqueViolation = "23505"

// drillNameIndex is the per-user case-insensitive unique index on drills.
const drillNameIndex = "drills_user_lower_name_key"

// Postgres implements importer.Store over a pgx pool.
type Postgres struct {
	pool *pgxpool.Pool
}

var _ importer.Store = (*Postgres)(nil)

// New returns a store using pool.
func New(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

// Ping checks database connectivity, for the health endpoint.
func (p *Postgres) Ping(ctx context.Context) error {
	return p.pool.Ping(ctx)
}

func (p *Postgres) ListDrillNames(ctx context.Context, userID uuid.UUID) ([]string, error) {
	names, err := db.New(p.pool).ListDrillNames(ctx, toPgUUID(userID))
	if err != nil {
		return nil, fmt.Errorf("list drill names: %w", err)
	}
	return names, nil
}

func (p *Postgres) GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (importer.Category, error) {
	c, err := db.New(p.pool).GetCategoryByName(ctx, db.GetCategoryByNameParams{
		UserID: toPgUUID(userID),
		Name:   name,
	})
	if errors.Is(err, pgx.ErrNoRows) {
		return importer.Category{}, importer.ErrNotFound
	}
	if err != nil {
		return importer.Category{}, fmt.Errorf("get category: %w", err)
	}
	return toCategory(c), nil
}

// CreateCategory inserts the category, or returns the existing one when a
// concurrent import created it first.
func (p *Postgres) CreateCategory(ctx context.Context, userID uuid.UUID, name string) (importer.Category, error) {
	c, err := db.New(p.pool).CreateCategory(ctx, db.CreateCategoryParams{
		UserID: toPgUUID(userID),
		Name:   name,
	})
	if err != nil {
		return importer.Category{}, fmt.Errorf("create category: %w", err)
	}
	return toCategory(c), nil
}

// InsertDrills writes drills with COPY inside a transaction, so the batch
// lands completely or not at all.
func (p *Postgres) InsertDrills(ctx context.Context, userID uuid.UUID, drills []importer.DrillInput) (int, error) {
	if len(drills) == 0 {
		return 0, nil
	}

	tx, err := p.pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	params := make([]db.InsertDrillsParams, len(drills))
	for i, d := range drills {
		params[i] = db.InsertDrillsParams(toInsertDrillParams(userID, d))
	}

	n, err := db.New(p.pool).WithTx(tx).InsertDrills(ctx, params)
	if err != nil {
		return 0, fmt.Errorf("copy drills: %w", mapWriteError(err))
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return int(n), nil
}

func (p *Postgres) InsertDrill(ctx context.Context, userID uuid.UUID, d importer.DrillInput) error {
	if err := db.New(p.pool).InsertDrill(ctx, toInsertDrillParams(userID, d)); err != nil {
		return mapWriteError(err)
	}
	return nil
}

func (p *Postgres) RecordImportRun(ctx context.Context, run importer.ImportRun) (importer.ImportRun, error) {
	row, err := db.New(p.pool).InsertImportRun(ctx, db.InsertImportRunParams{
		UserID:     toPgUUID(run.UserID),
		FileName:   toPgText(run.FileName),
		TotalRows:  int32(run.TotalRows),
		Imported:   int32(run.Imported),
		Skipped:    int32(run.Skipped),
		Failed:     int32(run.Failed),
		DurationMs: run.DurationMs,
	})
	if err != nil {
		return importer.ImportRun{}, fmt.Errorf("insert import run: %w", err)
	}
	return toImportRun(row), nil
}

func (p *Postgres) ListImportRuns(ctx context.Context, userID uuid.UUID, limit int) ([]importer.ImportRun, error) {
	rows, err := db.New(p.pool).ListImportRuns(ctx, db.ListImportRunsParams{
		UserID: toPgUUID(userID),
		Limit:  int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list import runs: %w", err)
	}

	runs := make([]importer.ImportRun, len(rows))
	for i, r := range rows {
		runs[i] = toImportRun(r)
	}
	return runs, nil
}

// mapWriteError turns a violation of the drill name index into
// importer.ErrDuplicate, keeping the database detail.
func mapWriteError(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation && pgErr.ConstraintName == drillNameIndex {
		return fmt.Errorf("%w: %s", importer.ErrDuplicate, pgErr.Detail)
	}
	return err
}

// Helper functions for type conversion

func toInsertDrillParams(userID uuid.UUID, d importer.DrillInput) db.InsertDrillParams {
	return db.InsertDrillParams{
		UserID:     toPgUUID(userID),
		CategoryID: toPgUUID(d.CategoryID),
		Name:       d.Name,
		Minutes:    int32(d.Minutes),
		Notes:      toPgTextPtr(d.Notes),
		MediaLinks: toPgTextPtr(d.MediaLinks),
	}
}

func toPgUUID(id uuid.UUID) pgtype.UUID {
	if id == uuid.Nil {
		return pgtype.UUID{Valid: false}
	}
	return pgtype.UUID{Bytes: id, Valid: true}
}

func fromPgUUID(u pgtype.UUID) uuid.UUID {
	if !u.Valid {
		return uuid.Nil
	}
	return uuid.UUID(u.Bytes)
}

func toPgText(s string) pgtype.Text {
	if s == "" {
		return pgtype.Text{Valid: false}
	}
	return pgtype.Text{String: s, Valid: true}
}

func toPgTextPtr(s *string) pgtype.Text {
	if s == nil {
		return pgtype.Text{Valid: false}
	}
	return toPgText(*s)
}

func toCategory(c db.Category) importer.Category {
	return importer.Category{
		ID:     fromPgUUID(c.ID),
		UserID: fromPgUUID(c.UserID),
		Name:   c.Name,
	}
}

func toImportRun(r db.ImportRun) importer.ImportRun {
	run := importer.ImportRun{
		ID:         fromPgUUID(r.ID),
		UserID:     fromPgUUID(r.UserID),
		FileName:   r.FileName.String,
		TotalRows:  int(r.TotalRows),
		Imported:   int(r.Imported),
		Skipped:    int(r.Skipped),
		Failed:     int(r.Failed),
		DurationMs: r.DurationMs,
	}
	if r.CreatedAt.Valid {
		run.CreatedAt = r.CreatedAt.Time
	}
	return run
}
