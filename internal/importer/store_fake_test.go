package importer

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store. Drill names are unique per store,
// case-insensitively, like the real index.
type fakeStore struct {
	mu sync.Mutex

	categories   map[string]Category
	created      []string
	categoryErrs map[string]error

	existing []string
	inserted []DrillInput

	batchErr   error                  // forced InsertDrills failure
	rowErr     func(DrillInput) error // forced InsertDrill failure
	batchCalls int

	listErr   error
	runErr    error
	runs      []ImportRun
	lastLimit int
}

func newFakeStore(existing ...string) *fakeStore {
	return &fakeStore{
		categories:   make(map[string]Category),
		categoryErrs: make(map[string]error),
		existing:     existing,
	}
}

func (s *fakeStore) GetCategoryByName(_ context.Context, userID uuid.UUID, name string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err, ok := s.categoryErrs[name]; ok {
		return Category{}, err
	}
	c, ok := s.categories[name]
	if !ok {
		return Category{}, ErrNotFound
	}
	return c, nil
}

func (s *fakeStore) CreateCategory(_ context.Context, userID uuid.UUID, name string) (Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := Category{ID: uuid.New(), UserID: userID, Name: name}
	s.categories[name] = c
	s.created = append(s.created, name)
	return c, nil
}

func (s *fakeStore) InsertDrills(_ context.Context, _ uuid.UUID, drills []DrillInput) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.batchCalls++
	if s.batchErr != nil {
		return 0, s.batchErr
	}

	taken := s.takenLocked()
	for _, d := range drills {
		if err := s.checkLocked(taken, d); err != nil {
			return 0, err
		}
		taken[strings.ToLower(d.Name)] = true
	}
	s.inserted = append(s.inserted, drills...)
	return len(drills), nil
}

func (s *fakeStore) InsertDrill(_ context.Context, _ uuid.UUID, d DrillInput) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.checkLocked(s.takenLocked(), d); err != nil {
		return err
	}
	s.inserted = append(s.inserted, d)
	return nil
}

func (s *fakeStore) takenLocked() map[string]bool {
	taken := make(map[string]bool, len(s.existing)+len(s.inserted))
	for _, n := range s.existing {
		taken[strings.ToLower(n)] = true
	}
	for _, d := range s.inserted {
		taken[strings.ToLower(d.Name)] = true
	}
	return taken
}

func (s *fakeStore) checkLocked(taken map[string]bool, d DrillInput) error {
	if s.rowErr != nil {
		if err := s.rowErr(d); err != nil {
			return err
		}
	}
	if taken[strings.ToLower(d.Name)] {
		return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
	}
	return nil
}

func (s *fakeStore) ListDrillNames(context.Context, uuid.UUID) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listErr != nil {
		return nil, s.listErr
	}
	names := slices.Clone(s.existing)
	for _, d := range s.inserted {
		names = append(names, d.Name)
	}
	return names, nil
}

func (s *fakeStore) RecordImportRun(_ context.Context, run ImportRun) (ImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runErr != nil {
		return ImportRun{}, s.runErr
	}
	run.ID = uuid.New()
	run.CreatedAt = time.Now()
	s.runs = append(s.runs, run)
	return run, nil
}

func (s *fakeStore) ListImportRuns(_ context.Context, userID uuid.UUID, limit int) ([]ImportRun, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.lastLimit = limit
	var out []ImportRun
	for i := len(s.runs) - 1; i >= 0 && len(out) < limit; i-- {
		if s.runs[i].UserID == userID {
			out = append(out, s.runs[i])
		}
	}
	return out, nil
}

func (s *fakeStore) insertedNames() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, len(s.inserted))
	for i, d := range s.inserted {
		names[i] = d.Name
	}
	return names
}

var _ Store = (*fakeStore)(nil)
