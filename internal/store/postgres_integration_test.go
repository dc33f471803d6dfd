package store_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/JonMunkholm/drillbook/internal/importer"
	"github.com/JonMunkholm/drillbook/internal/store"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

func newTestStore(t *testing.T) *store.Postgres {
	t.Helper()

	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL is not set")
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		t.Fatalf("failed to connect db: %v", err)
	}
	t.Cleanup(pool.Close)

	files, err := filepath.Glob(filepath.Join("..", "..", "sql", "schema", "*.sql"))
	if err != nil || len(files) == 0 {
		t.Fatalf("schema files not found: %v", err)
	}
	for _, f := range files {
		data, err := os.ReadFile(f)
		if err != nil {
			t.Fatalf("read %s: %v", f, err)
		}
		up, _, _ := strings.Cut(string(data), "-- +goose Down")
		if _, err := pool.Exec(ctx, up); err != nil {
			t.Fatalf("apply %s: %v", f, err)
		}
	}

	return store.New(pool)
}

func TestPostgresCategoriesIntegration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	if _, err := s.GetCategoryByName(ctx, user, "Warmup"); !errors.Is(err, importer.ErrNotFound) {
		t.Fatalf("GetCategoryByName on empty store = %v, want ErrNotFound", err)
	}

	created, err := s.CreateCategory(ctx, user, "Warmup")
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}
	again, err := s.CreateCategory(ctx, user, "Warmup")
	if err != nil {
		t.Fatalf("second CreateCategory: %v", err)
	}
	if again.ID != created.ID {
		t.Errorf("CreateCategory is not idempotent: %s != %s", again.ID, created.ID)
	}

	got, err := s.GetCategoryByName(ctx, user, "Warmup")
	if err != nil {
		t.Fatalf("GetCategoryByName: %v", err)
	}
	if got.ID != created.ID || got.UserID != user {
		t.Errorf("GetCategoryByName = %+v, want id %s for user %s", got, created.ID, user)
	}
}

func TestPostgresInsertDrillsIntegration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	cat, err := s.CreateCategory(ctx, user, importer.UncategorizedName)
	if err != nil {
		t.Fatalf("CreateCategory: %v", err)
	}

	notes := "Keep the ball low"
	n, err := s.InsertDrills(ctx, user, []importer.DrillInput{
		{Row: 1, CategoryID: cat.ID, Name: "Rondo", Minutes: 10, Notes: &notes},
		{Row: 2, CategoryID: cat.ID, Name: "Shooting", Minutes: 15},
	})
	if err != nil {
		t.Fatalf("InsertDrills: %v", err)
	}
	if n != 2 {
		t.Errorf("InsertDrills = %d, want 2", n)
	}

	// A batch that collides with an existing name is rejected as a whole.
	_, err = s.InsertDrills(ctx, user, []importer.DrillInput{
		{Row: 1, CategoryID: cat.ID, Name: "Passing", Minutes: 5},
		{Row: 2, CategoryID: cat.ID, Name: "RONDO", Minutes: 5},
	})
	if !errors.Is(err, importer.ErrDuplicate) {
		t.Fatalf("InsertDrills with duplicate = %v, want ErrDuplicate", err)
	}

	err = s.InsertDrill(ctx, user, importer.DrillInput{CategoryID: cat.ID, Name: "rondo", Minutes: 5})
	if !errors.Is(err, importer.ErrDuplicate) {
		t.Errorf("InsertDrill with duplicate = %v, want ErrDuplicate", err)
	}

	names, err := s.ListDrillNames(ctx, user)
	if err != nil {
		t.Fatalf("ListDrillNames: %v", err)
	}
	if len(names) != 2 {
		t.Errorf("ListDrillNames = %v, want 2 names (failed batch must not leave rows)", names)
	}
}

func TestPostgresImportRunsIntegration(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	user := uuid.New()

	for i := 1; i <= 3; i++ {
		_, err := s.RecordImportRun(ctx, importer.ImportRun{
			UserID:    user,
			FileName:  "drills.xlsx",
			TotalRows: i,
			Imported:  i,
		})
		if err != nil {
			t.Fatalf("RecordImportRun: %v", err)
		}
	}

	runs, err := s.ListImportRuns(ctx, user, 2)
	if err != nil {
		t.Fatalf("ListImportRuns: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("ListImportRuns returned %d runs, want 2", len(runs))
	}
	if runs[0].CreatedAt.Before(runs[1].CreatedAt) {
		t.Errorf("runs not newest first: %v before %v", runs[0].CreatedAt, runs[1].CreatedAt)
	}
	if runs[0].FileName != "drills.xlsx" || runs[0].UserID != user {
		t.Errorf("unexpected run %+v", runs[0])
	}
}
