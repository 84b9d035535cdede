// Package recommend ranks the catalogue against a reader's stored taste profile.
package recommend

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"strings"
	"time"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/specification"
	"library-assistant-be/pkg/rag/search"
)

const (
	genreWeight  = 3
	pacingWeight = 2
	toneWeight   = 2
	themeWeight  = 1
	moodWeight   = 1
)

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}

func anyContains(values []string, term string) bool {
	for _, v := range values {
		if containsFold(v, term) {
			return true
		}
	}
	return false
}

// Excluded reports whether b hits a disliked genre or a trigger. Books without
// content warnings are never excluded by triggers.
func Excluded(b *entity.Book, p *entity.UserPreference) bool {
	for _, g := range p.DislikedGenres {
		if g != "" && b.Genres != "" && containsFold(b.Genres, g) {
			return true
		}
	}
	for _, t := range p.TriggersToAvoid {
		if t != "" && anyContains(b.ContentWarnings, t) {
			return true
		}
	}
	return false
}

// Score is additive over the matched criteria; each criterion only ever adds.
func Score(b *entity.Book, p *entity.UserPreference) int {
	score := 0
	for _, g := range p.FavoriteGenres {
		if g != "" && containsFold(b.Genres, g) {
			score += genreWeight
		}
	}
	if p.PacingPreference != "" && strings.EqualFold(b.Pacing, p.PacingPreference) {
		score += pacingWeight
	}
	if p.TonePreference != "" && b.Tone != "" && containsFold(b.Tone, p.TonePreference) {
		score += toneWeight
	}
	for _, th := range p.PreferredThemes {
		if th != "" && anyContains(b.Themes, th) {
			score += themeWeight
		}
	}
	for _, m := range p.PreferredMoods {
		if m != "" && anyContains(b.MoodTags, m) {
			score += moodWeight
		}
	}
	return score
}

// Rank drops excluded books, then orders the rest by descending score with
// ties broken by rng. The input slice is not modified.
func Rank(books []*entity.Book, p *entity.UserPreference, limit int, rng *rand.Rand) search.Result {
	type scored struct {
		book  *entity.Book
		score int
	}

	candidates := make([]scored, 0, len(books))
	for _, b := range books {
		if !Excluded(b, p) {
			candidates = append(candidates, scored{book: b, score: Score(b, p)})
		}
	}

	rng.Shuffle(len(candidates), func(i, j int) {
		candidates[i], candidates[j] = candidates[j], candidates[i]
	})
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}

	res := search.Result{
		Books:  make([]*entity.Book, len(candidates)),
		Scores: make([]float64, len(candidates)),
	}
	for i, c := range candidates {
		res.Books[i] = c.book
		res.Scores[i] = float64(c.score)
	}
	return res
}

// Sample returns up to limit books in random order.
func Sample(books []*entity.Book, limit int, rng *rand.Rand) search.Result {
	shuffled := append([]*entity.Book(nil), books...)
	rng.Shuffle(len(shuffled), func(i, j int) {
		shuffled[i], shuffled[j] = shuffled[j], shuffled[i]
	})
	if len(shuffled) > limit {
		shuffled = shuffled[:limit]
	}
	return search.Result{Books: shuffled, Scores: make([]float64, len(shuffled))}
}

type Scorer struct {
	books       contract.BookRepository
	preferences contract.UserPreferenceRepository
	logger      logger.ILogger
	metrics     *metrics.Metrics
	newRand     func() *rand.Rand
}

func NewScorer(books contract.BookRepository, preferences contract.UserPreferenceRepository, log logger.ILogger, m *metrics.Metrics) *Scorer {
	return &Scorer{
		books:       books,
		preferences: preferences,
		logger:      log,
		metrics:     m,
		newRand: func() *rand.Rand {
			return rand.New(rand.NewSource(time.Now().UnixNano()))
		},
	}
}

// WithRand fixes the tie-break source. Used by tests.
func (s *Scorer) WithRand(newRand func() *rand.Rand) *Scorer {
	s.newRand = newRand
	return s
}

// Profile loads the stored profile; anonymous users have none.
func (s *Scorer) Profile(ctx context.Context, userID *int) (*entity.UserPreference, error) {
	if userID == nil {
		return nil, nil
	}
	p, err := s.preferences.FindByUserID(ctx, *userID)
	if err != nil {
		return nil, fmt.Errorf("load preferences: %w", err)
	}
	return p, nil
}

// Recommend ranks the catalogue for userID. Without a profile it returns a random sample.
func (s *Scorer) Recommend(ctx context.Context, userID *int, limit int) (search.Result, error) {
	limit = search.ClampLimit(limit)

	profile, err := s.Profile(ctx, userID)
	if err != nil {
		return search.Result{}, err
	}

	books, err := s.books.FindAll(ctx, specification.WithoutEmbedding{})
	if err != nil {
		return search.Result{}, fmt.Errorf("load catalogue: %w", err)
	}

	var res search.Result
	if profile == nil {
		res = Sample(books, limit, s.newRand())
	} else {
		res = Rank(books, profile, limit, s.newRand())
	}

	s.logger.Info("RECOMMEND", "Preference ranking completed", map[string]interface{}{
		"has_profile": profile != nil,
		"catalogue":   len(books),
		"results":     res.Len(),
	})
	s.metrics.Retrieved("generic", res.Len())
	return res, nil
}
