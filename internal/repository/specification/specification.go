package specification

import (
	"library-assistant-be/internal/entity"

	"gorm.io/gorm"
)

// Specification defines the interface for query specifications
type Specification interface {
	Apply(db *gorm.DB) *gorm.DB
}

// BookSpecification is a catalogue predicate that can run both as SQL and in memory.
// Both forms must agree for every book.
type BookSpecification interface {
	Specification
	Matches(b *entity.Book) bool
}

// MatchesAll reports whether b satisfies every spec.
func MatchesAll(b *entity.Book, specs ...BookSpecification) bool {
	for _, spec := range specs {
		if !spec.Matches(b) {
			return false
		}
	}
	return true
}
