package memory

import (
	"context"
	"math"
	"sort"
	"sync"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/specification"
)

// Catalogue is an in-memory book store evaluating the same specifications as
// the gorm repositories. It backs tests and the CLI demo mode.
type Catalogue struct {
	mu          sync.RWMutex
	books       []*entity.Book
	copies      map[int]entity.Availability
	preferences map[int]*entity.UserPreference
}

var (
	_ contract.BookRepository           = &Catalogue{}
	_ contract.BookCopyRepository       = &Catalogue{}
	_ contract.UserPreferenceRepository = &Catalogue{}
)

func NewCatalogue(books ...*entity.Book) *Catalogue {
	return &Catalogue{
		books:       books,
		copies:      make(map[int]entity.Availability),
		preferences: make(map[int]*entity.UserPreference),
	}
}

func (c *Catalogue) AddBook(b *entity.Book) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.books = append(c.books, b)
}

func (c *Catalogue) SetAvailability(a entity.Availability) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.copies[a.BookId] = a
}

func (c *Catalogue) SetPreference(p *entity.UserPreference) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.preferences[p.UserId] = p
}

func (c *Catalogue) FindByID(_ context.Context, id int) (*entity.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, b := range c.books {
		if b.Id == id {
			return b, nil
		}
	}
	return nil, nil
}

func (c *Catalogue) FindOne(ctx context.Context, specs ...specification.BookSpecification) (*entity.Book, error) {
	all, err := c.FindAll(ctx, specs...)
	if err != nil || len(all) == 0 {
		return nil, err
	}
	return all[0], nil
}

func (c *Catalogue) FindAll(_ context.Context, specs ...specification.BookSpecification) ([]*entity.Book, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]*entity.Book, 0, len(c.books))
	for _, b := range c.books {
		if specification.MatchesAll(b, specs...) {
			out = append(out, b)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Id < out[j].Id })
	return out, nil
}

func (c *Catalogue) SearchSimilar(ctx context.Context, embedding []float32, limit int, specs ...specification.BookSpecification) ([]*contract.ScoredBook, error) {
	if limit <= 0 {
		limit = 5
	}
	candidates, err := c.FindAll(ctx, append([]specification.BookSpecification{specification.HasEmbedding{}}, specs...)...)
	if err != nil {
		return nil, err
	}

	scored := make([]*contract.ScoredBook, len(candidates))
	for i, b := range candidates {
		scored[i] = &contract.ScoredBook{Book: b, Distance: CosineDistance(embedding, b.Embedding)}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Distance < scored[j].Distance })
	if len(scored) > limit {
		scored = scored[:limit]
	}
	return scored, nil
}

func (c *Catalogue) Availability(_ context.Context, bookIds []int) (map[int]entity.Availability, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make(map[int]entity.Availability, len(bookIds))
	for _, id := range bookIds {
		a, ok := c.copies[id]
		if !ok {
			a = entity.Availability{BookId: id}
		}
		out[id] = a
	}
	return out, nil
}

func (c *Catalogue) FindByUserID(_ context.Context, userId int) (*entity.UserPreference, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.preferences[userId], nil
}

// CosineDistance mirrors pgvector's <=> operator. Zero vectors are at distance 1.
func CosineDistance(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 1
	}
	return 1 - dot/(math.Sqrt(na)*math.Sqrt(nb))
}
