// Package category tracks which aspects of a room the user wants redesigned.
package category

import (
	"fmt"
	"sort"
	"strings"
)

// Category identifies one redesignable aspect of a room.
type Category string

const (
	Floor     Category = "floor"
	Walls     Category = "walls"
	Furniture Category = "furniture"
	Lighting  Category = "lighting"
	Decor     Category = "decor"
)

// All lists every category in display order.
var All = []Category{Floor, Walls, Furniture, Lighting, Decor}

// Label returns the human-readable name for a category.
func (c Category) Label() string {
	switch c {
	case Floor:
		return "Floor"
	case Walls:
		return "Walls"
	case Furniture:
		return "Furniture"
	case Lighting:
		return "Lighting"
	case Decor:
		return "Decor"
	default:
		return string(c)
	}
}

func valid(c Category) bool {
	for _, known := range All {
		if c == known {
			return true
		}
	}
	return false
}

// Selection is a set of categories. Toggle semantics are idempotent in
// pairs: toggling the same id twice leaves the set unchanged.
type Selection struct {
	members map[Category]bool
}

func NewSelection() *Selection {
	return &Selection{members: make(map[Category]bool)}
}

// Toggle flips membership of c. Unknown ids are ignored.
func (s *Selection) Toggle(c Category) {
	if !valid(c) {
		return
	}
	if s.members[c] {
		delete(s.members, c)
	} else {
		s.members[c] = true
	}
}

// Has reports whether c is selected.
func (s *Selection) Has(c Category) bool {
	return s.members[c]
}

// Empty reports whether nothing is selected. The generate action must stay
// unreachable while this is true.
func (s *Selection) Empty() bool {
	return len(s.members) == 0
}

// Len returns the number of selected categories.
func (s *Selection) Len() int {
	return len(s.members)
}

// String serializes the selection as a comma-joined list. Downstream treats
// the result as an unordered tag list; the sort here only makes output
// deterministic.
func (s *Selection) String() string {
	ids := make([]string, 0, len(s.members))
	for c := range s.members {
		ids = append(ids, string(c))
	}
	sort.Strings(ids)
	return strings.Join(ids, ",")
}

// Parse rebuilds a selection from its comma-joined form. Unknown ids are an
// error; empty input yields an empty selection.
func Parse(serialized string) (*Selection, error) {
	s := NewSelection()
	if serialized == "" {
		return s, nil
	}
	for _, id := range strings.Split(serialized, ",") {
		c := Category(strings.TrimSpace(id))
		if !valid(c) {
			return nil, fmt.Errorf("unknown category %q", id)
		}
		s.members[c] = true
	}
	return s, nil
}
