// Package search implements hybrid retrieval: structured predicates over the
// catalogue combined with cosine-distance ranking.
package search

import (
	"context"
	"fmt"
	"strings"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/specification"
	"library-assistant-be/pkg/embedding"
	"library-assistant-be/pkg/rag/filter"
)

// Result is an ordered candidate set. Scores is parallel to Books and holds the
// cosine distance (vector paths) or the preference score (scorer path).
type Result struct {
	Books  []*entity.Book
	Scores []float64
}

func (r Result) Len() int {
	return len(r.Books)
}

func (r Result) IDs() []int {
	ids := make([]int, len(r.Books))
	for i, b := range r.Books {
		ids[i] = b.Id
	}
	return ids
}

func fromScored(scored []*contract.ScoredBook) Result {
	res := Result{
		Books:  make([]*entity.Book, len(scored)),
		Scores: make([]float64, len(scored)),
	}
	for i, s := range scored {
		res.Books[i] = s.Book
		res.Scores[i] = s.Distance
	}
	return res
}

// ClampLimit bounds a requested result size to [1, 20]; zero means the default.
func ClampLimit(limit int) int {
	switch {
	case limit == 0:
		return constant.DefaultBookLimit
	case limit < constant.MinBookLimit:
		return constant.MinBookLimit
	case limit > constant.MaxBookLimit:
		return constant.MaxBookLimit
	}
	return limit
}

// Specifications translates every populated filter field into an AND-combined predicate.
func Specifications(f filter.Filter) []specification.BookSpecification {
	var specs []specification.BookSpecification
	if f.MaxPages != nil {
		specs = append(specs, specification.PagesAtMost{Pages: *f.MaxPages})
	}
	if f.MinPages != nil {
		specs = append(specs, specification.PagesAtLeast{Pages: *f.MinPages})
	}
	if f.Genre != nil {
		specs = append(specs, specification.GenreLike{Genre: *f.Genre})
	}
	if f.Language != nil {
		specs = append(specs, specification.LanguageLike{Language: *f.Language})
	}
	if f.YearStart != nil {
		specs = append(specs, specification.PublishedFrom{Year: *f.YearStart})
	}
	if f.YearEnd != nil {
		specs = append(specs, specification.PublishedUntil{Year: *f.YearEnd})
	}
	if f.Pacing != nil {
		specs = append(specs, specification.PacingLike{Pacing: *f.Pacing})
	}
	if f.Tone != nil {
		specs = append(specs, specification.ToneLike{Tone: *f.Tone})
	}
	if len(f.Themes) > 0 {
		specs = append(specs, specification.ThemesContainAll{Terms: f.Themes})
	}
	if len(f.Moods) > 0 {
		specs = append(specs, specification.MoodsContainAll{Terms: f.Moods})
	}
	return specs
}

type Retriever struct {
	books    contract.BookRepository
	embedder embedding.EmbeddingProvider
	logger   logger.ILogger
	metrics  *metrics.Metrics
}

func NewRetriever(books contract.BookRepository, embedder embedding.EmbeddingProvider, log logger.ILogger, m *metrics.Metrics) *Retriever {
	return &Retriever{books: books, embedder: embedder, logger: log, metrics: m}
}

// Retrieve ranks indexed books passing f by distance to the search phrase, or to
// query when the filter carries none. No survivors is an empty result.
func (r *Retriever) Retrieve(ctx context.Context, query string, f filter.Filter, limit int) (Result, error) {
	limit = ClampLimit(limit)

	text := query
	if f.SearchPhrase != nil && strings.TrimSpace(*f.SearchPhrase) != "" {
		text = *f.SearchPhrase
	}

	vec, err := r.embedder.Embed(ctx, text)
	if err != nil {
		return Result{}, fmt.Errorf("embed query: %w", err)
	}

	specs := Specifications(f)
	scored, err := r.books.SearchSimilar(ctx, vec, limit, specs...)
	if err != nil {
		return Result{}, fmt.Errorf("search catalogue: %w", err)
	}

	r.logger.Info("SEARCH", "Hybrid retrieval completed", map[string]interface{}{
		"predicates": len(specs),
		"results":    len(scored),
		"limit":      limit,
	})
	r.metrics.Retrieved("filtered", len(scored))
	return fromScored(scored), nil
}

// RetrieveSimilar finds books close to the indexed book whose title matches
// target. An unknown title degrades to a plain semantic search on target.
func (r *Retriever) RetrieveSimilar(ctx context.Context, target string, limit int) (Result, error) {
	limit = ClampLimit(limit)

	source, err := r.books.FindOne(ctx, specification.HasEmbedding{}, specification.TitleLike{Title: target})
	if err != nil {
		return Result{}, fmt.Errorf("resolve target book: %w", err)
	}
	if source == nil {
		r.logger.Debug("SEARCH", "Target book not found, using semantic search", map[string]interface{}{
			"target": target,
		})
		return r.Retrieve(ctx, target, filter.Filter{}, limit)
	}

	scored, err := r.books.SearchSimilar(ctx, source.Embedding, limit, specification.ExcludeBook{Id: source.Id})
	if err != nil {
		return Result{}, fmt.Errorf("search similar books: %w", err)
	}

	r.logger.Info("SEARCH", "Similarity retrieval completed", map[string]interface{}{
		"source_id": source.Id,
		"results":   len(scored),
	})
	r.metrics.Retrieved("similarity", len(scored))
	return fromScored(scored), nil
}
