package recommend

import (
	"context"
	"math/rand"
	"testing"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func books() []*entity.Book {
	return []*entity.Book{
		{Id: 1, Title: "Romance A", Genres: "Romance"},
		{Id: 2, Title: "Gone Girl", Genres: "Mystery, Thriller", Pacing: "Fast", Tone: "Dark and tense", ContentWarnings: []string{"Violence"}},
		{Id: 3, Title: "Rebecca", Genres: "Gothic, Mystery", Pacing: "Slow", Tone: "Atmospheric", Themes: []string{"Jealousy"}},
		{Id: 4, Title: "Horror B", Genres: "Horror"},
		{Id: 5, Title: "Cozy Case", Genres: "Cozy Mystery", Pacing: "fast", MoodTags: []string{"Cozy", "Warm"}},
		{Id: 6, Title: "Dragons", Genres: "Fantasy", Themes: []string{"Friendship"}},
		{Id: 7, Title: "Plain", Genres: ""},
	}
}

func profile() *entity.UserPreference {
	return &entity.UserPreference{
		UserId:           1,
		FavoriteGenres:   []string{"Mystery"},
		DislikedGenres:   []string{"romance", "Horror"},
		PacingPreference: "Fast",
		TriggersToAvoid:  []string{"abuse"},
		PreferredMoods:   []string{"cozy"},
	}
}

func seeded(seed int64) func() *rand.Rand {
	return func() *rand.Rand { return rand.New(rand.NewSource(seed)) }
}

func TestRankNeverReturnsDislikedGenres(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		res := Rank(books(), profile(), 20, seeded(seed)())
		for _, b := range res.Books {
			assert.NotContains(t, []int{1, 4}, b.Id, "seed %d", seed)
		}
		assert.Len(t, res.Books, 5)
	}
}

func TestRankMysteryFirst(t *testing.T) {
	for seed := int64(0); seed < 20; seed++ {
		res := Rank(books(), profile(), 5, seeded(seed)())
		require.Len(t, res.Books, 5)

		// 5: genre+pacing+mood, 2: genre+pacing, 3: genre only
		assert.Equal(t, []int{5, 2, 3}, []int{res.Books[0].Id, res.Books[1].Id, res.Books[2].Id})
		assert.Equal(t, []float64{6, 5, 3, 0, 0}, res.Scores)
		assert.ElementsMatch(t, []int{6, 7}, []int{res.Books[3].Id, res.Books[4].Id})
	}
}

func TestRankExcludesTriggers(t *testing.T) {
	p := profile()
	p.TriggersToAvoid = []string{"viol"}

	res := Rank(books(), p, 20, seeded(1)())
	for _, b := range res.Books {
		assert.NotEqual(t, 2, b.Id)
	}
	// books without content warnings survive the trigger check
	ids := make([]int, 0, len(res.Books))
	for _, b := range res.Books {
		ids = append(ids, b.Id)
	}
	assert.Contains(t, ids, 3)
}

func TestScoreIsMonotonic(t *testing.T) {
	b := &entity.Book{Genres: "Mystery, Sci-Fi", Pacing: "Fast", Tone: "Witty", Themes: []string{"Heist"}, MoodTags: []string{"Playful"}}

	steps := []func(p *entity.UserPreference){
		func(p *entity.UserPreference) { p.FavoriteGenres = append(p.FavoriteGenres, "mystery") },
		func(p *entity.UserPreference) { p.FavoriteGenres = append(p.FavoriteGenres, "romance") },
		func(p *entity.UserPreference) { p.PacingPreference = "fast" },
		func(p *entity.UserPreference) { p.TonePreference = "wit" },
		func(p *entity.UserPreference) { p.PreferredThemes = append(p.PreferredThemes, "heist") },
		func(p *entity.UserPreference) { p.PreferredMoods = append(p.PreferredMoods, "play") },
		func(p *entity.UserPreference) { p.FavoriteGenres = append(p.FavoriteGenres, "sci-fi") },
	}

	p := &entity.UserPreference{}
	prev := Score(b, p)
	assert.Equal(t, 0, prev)
	for i, apply := range steps {
		apply(p)
		next := Score(b, p)
		assert.GreaterOrEqual(t, next, prev, "step %d", i)
		prev = next
	}
	assert.Equal(t, 3+2+2+1+1+3, prev)
}

func TestScorerRecommend(t *testing.T) {
	cat := memory.NewCatalogue(books()...)
	cat.SetPreference(profile())
	s := NewScorer(cat, cat, logger.NewNopLogger(), nil).WithRand(seeded(7))

	user := 1
	res, err := s.Recommend(context.Background(), &user, 2)
	require.NoError(t, err)
	assert.Equal(t, []int{5, 2}, res.IDs())

	anon, err := s.Recommend(context.Background(), nil, 3)
	require.NoError(t, err)
	assert.Len(t, anon.Books, 3)

	stranger := 99
	noProfile, err := s.Recommend(context.Background(), &stranger, 50)
	require.NoError(t, err)
	assert.Len(t, noProfile.Books, len(books()))
}

func TestTopTags(t *testing.T) {
	bs := []*entity.Book{
		{Themes: []string{"found family", "Revenge"}, MoodTags: []string{"dark"}},
		{Themes: []string{"revenge ", "grief"}, MoodTags: []string{"Dark", "hopeful"}},
		{Themes: []string{"Found Family", "REVENGE"}},
		{},
	}

	assert.Equal(t, []string{"Revenge", "Found Family", "Grief"}, TopTags(bs, FacetThemes, 0))
	assert.Equal(t, []string{"Revenge"}, TopTags(bs, FacetThemes, 1))
	assert.Equal(t, []string{"Dark", "Hopeful"}, TopTags(bs, FacetMoods, 10))
	assert.Empty(t, TopTags(nil, FacetMoods, 10))
}
