package contract

import (
	"context"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/repository/specification"
)

// ScoredBook pairs a book with its cosine distance to the query vector (0 = identical).
type ScoredBook struct {
	Book     *entity.Book
	Distance float64
}

type BookRepository interface {
	// FindByID returns nil, nil when the book does not exist
	FindByID(ctx context.Context, id int) (*entity.Book, error)
	FindOne(ctx context.Context, specs ...specification.BookSpecification) (*entity.Book, error)
	FindAll(ctx context.Context, specs ...specification.BookSpecification) ([]*entity.Book, error)
	// SearchSimilar orders the books passing every spec by ascending cosine distance to embedding
	SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.BookSpecification) ([]*ScoredBook, error)
}

type BookCopyRepository interface {
	// Availability returns an entry for every requested id; books without copies report 0/0
	Availability(ctx context.Context, bookIds []int) (map[int]entity.Availability, error)
}
