package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// CategoryStore looks up and creates categories for a user.
// GetCategoryByName returns ErrNotFound when no category matches exactly.
type CategoryStore interface {
	GetCategoryByName(ctx context.Context, userID uuid.UUID, name string) (Category, error)
	CreateCategory(ctx context.Context, userID uuid.UUID, name string) (Category, error)
}

// CategoryResolver maps category names to ids for one user, creating missing
// categories on demand. Names that fail to resolve are remembered so each row
// using them can be reported individually.
type CategoryResolver struct {
	store  CategoryStore
	userID uuid.UUID

	ids      map[string]uuid.UUID
	failures map[string]error
}

// NewCategoryResolver returns a resolver bound to userID.
func NewCategoryResolver(store CategoryStore, userID uuid.UUID) *CategoryResolver {
	return &CategoryResolver{
		store:    store,
		userID:   userID,
		ids:      make(map[string]uuid.UUID),
		failures: make(map[string]error),
	}
}

// categoryName maps a blank category onto UncategorizedName.
func categoryName(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return UncategorizedName
	}
	return s
}

// Resolve gets or creates every distinct category in names. A failure for one
// name does not stop the others; context cancellation does.
func (r *CategoryResolver) Resolve(ctx context.Context, names []string) error {
	for _, raw := range names {
		name := categoryName(raw)
		if _, done := r.ids[name]; done {
			continue
		}
		if _, failed := r.failures[name]; failed {
			continue
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		id, err := r.getOrCreate(ctx, name)
		if err != nil {
			r.failures[name] = err
			continue
		}
		r.ids[name] = id
	}
	return nil
}

func (r *CategoryResolver) getOrCreate(ctx context.Context, name string) (uuid.UUID, error) {
	c, err := r.store.GetCategoryByName(ctx, r.userID, name)
	if err == nil {
		return c.ID, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return uuid.Nil, fmt.Errorf("get category %q: %w", name, err)
	}

	c, err = r.store.CreateCategory(ctx, r.userID, name)
	if err != nil {
		return uuid.Nil, fmt.Errorf("create category %q: %w", name, err)
	}
	return c.ID, nil
}

// Lookup returns the id for a category name. Unresolved names yield an
// error; there is no fallback to another category.
func (r *CategoryResolver) Lookup(name string) (uuid.UUID, error) {
	name = categoryName(name)
	if id, ok := r.ids[name]; ok {
		return id, nil
	}
	if err, ok := r.failures[name]; ok {
		return uuid.Nil, fmt.Errorf("category could not be resolved: %w", err)
	}
	return uuid.Nil, fmt.Errorf("category could not be resolved: %q was never requested", name)
}
