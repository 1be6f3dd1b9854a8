// Package filter holds the user's current category and search text.
package filter

import (
	"strings"

	"storefront/catalog/internal/domain"
)

// State records filter changes and hands out immutable snapshots.
// It is not safe for concurrent use; its owner serializes access.
type State struct {
	current domain.Filter
}

func New() *State {
	return &State{}
}

func (s *State) SetCategory(category string) domain.Filter {
	s.current.Category = category
	return s.current
}

// SetSearchText stores text with surrounding whitespace removed.
func (s *State) SetSearchText(text string) domain.Filter {
	s.current.Search = strings.TrimSpace(text)
	return s.current
}

func (s *State) Snapshot() domain.Filter {
	return s.current
}
