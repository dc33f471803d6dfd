package importer

import (
	"fmt"
	"strings"
)

// DuplicateResolver detects case-insensitive drill name collisions within a
// batch and against the user's existing drills. The first occurrence of a
// name wins; later ones are reported.
type DuplicateResolver struct {
	// seen maps a name key to the row that claimed it; 0 means an existing drill.
	seen map[string]int
}

// NewDuplicateResolver seeds the resolver with names already stored for the user.
func NewDuplicateResolver(existing []string) *DuplicateResolver {
	d := &DuplicateResolver{seen: make(map[string]int, len(existing))}
	for _, name := range existing {
		if k := nameKey(name); k != "" {
			d.seen[k] = 0
		}
	}
	return d
}

// Claim registers name for row. If the name is already taken it returns a
// RowError describing the collision and false.
func (d *DuplicateResolver) Claim(row int, name string) (RowError, bool) {
	k := nameKey(name)
	first, taken := d.seen[k]
	if !taken {
		d.seen[k] = row
		return RowError{}, true
	}

	msg := fmt.Sprintf("Duplicate drill name %q (already in your drill library)", name)
	if first > 0 {
		msg = fmt.Sprintf("Duplicate drill name %q (first seen at row %d)", name, first)
	}
	return RowError{Row: row, Message: msg}, false
}

func nameKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
