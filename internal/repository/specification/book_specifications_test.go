package specification

import (
	"testing"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func intPtr(v int) *int { return &v }

func TestBookSpecificationsMatch(t *testing.T) {
	dune := &entity.Book{
		Id:            1,
		Title:         "Dune",
		Genres:        "Science Fiction, Sci-Fi",
		Language:      "en",
		Pages:         intPtr(412),
		DatePublished: "1965-08-01",
		Pacing:        "Medium",
		Tone:          "Epic, Dark",
		Themes:        []string{"Power and politics", "Revenge"},
		MoodTags:      []string{"tense", "adventurous"},
		Embedding:     []float32{1, 0},
	}
	bare := &entity.Book{Id: 2, Title: "Untitled"}

	tests := []struct {
		name string
		spec BookSpecification
		book *entity.Book
		want bool
	}{
		{"indexed", HasEmbedding{}, dune, true},
		{"not indexed", HasEmbedding{}, bare, false},
		{"pages upper bound inclusive", PagesAtMost{Pages: 412}, dune, true},
		{"pages upper bound", PagesAtMost{Pages: 300}, dune, false},
		{"pages unknown", PagesAtMost{Pages: 300}, bare, false},
		{"pages lower bound inclusive", PagesAtLeast{Pages: 412}, dune, true},
		{"genre substring case-insensitive", GenreLike{Genre: "sci-fi"}, dune, true},
		{"genre miss", GenreLike{Genre: "romance"}, dune, false},
		{"language", LanguageLike{Language: "EN"}, dune, true},
		{"published from", PublishedFrom{Year: 1960}, dune, true},
		{"published from later", PublishedFrom{Year: 1970}, dune, false},
		{"published until later", PublishedUntil{Year: 1970}, dune, true},
		{"published until same year full date is lexicographically after", PublishedUntil{Year: 1965}, dune, false},
		{"pacing", PacingLike{Pacing: "medium"}, dune, true},
		{"tone substring", ToneLike{Tone: "dark"}, dune, true},
		{"themes all match", ThemesContainAll{Terms: []string{"revenge", "politics"}}, dune, true},
		{"themes need every term", ThemesContainAll{Terms: []string{"revenge", "love"}}, dune, false},
		{"themes absent", ThemesContainAll{Terms: []string{"revenge"}}, bare, false},
		{"moods", MoodsContainAll{Terms: []string{"Tense"}}, dune, true},
		{"title", TitleLike{Title: "dun"}, dune, true},
		{"exclude", ExcludeBook{Id: 1}, dune, false},
		{"without embedding matches all", WithoutEmbedding{}, bare, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.spec.Matches(tt.book))
		})
	}
}

func TestMatchesAll(t *testing.T) {
	b := &entity.Book{Genres: "Mystery", Pages: intPtr(200)}
	assert.True(t, MatchesAll(b))
	assert.True(t, MatchesAll(b, GenreLike{Genre: "myst"}, PagesAtMost{Pages: 250}))
	assert.False(t, MatchesAll(b, GenreLike{Genre: "myst"}, PagesAtMost{Pages: 150}))
}

func TestBookSpecificationsSQL(t *testing.T) {
	db, err := gorm.Open(postgres.New(postgres.Config{DSN: "host=localhost user=test dbname=test sslmode=disable"}), &gorm.Config{
		DisableAutomaticPing: true,
	})
	require.NoError(t, err)

	toSQL := func(specs ...Specification) string {
		return db.ToSQL(func(tx *gorm.DB) *gorm.DB {
			tx = tx.Model(&model.Book{})
			for _, s := range specs {
				tx = s.Apply(tx)
			}
			var out []model.Book
			return tx.Find(&out)
		})
	}

	sql := toSQL(HasEmbedding{}, GenreLike{Genre: "100%_sci"}, ThemesContainAll{Terms: []string{"revenge"}})
	assert.Contains(t, sql, "books.embedding IS NOT NULL")
	assert.Contains(t, sql, `books.genres ILIKE '%100\%\_sci%'`)
	assert.Contains(t, sql, "jsonb_array_elements_text(books.themes)")

	sql = toSQL(PublishedFrom{Year: 1990}, PublishedUntil{Year: 2000})
	assert.Contains(t, sql, "books.date_published >= '1990'")
	assert.Contains(t, sql, "books.date_published <= '2000'")
}

func TestContainsPatternEscapesWildcards(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"sci-fi", "%sci-fi%"},
		{"100%", `%100\%%`},
		{"a_b", `%a\_b%`},
		{`back\slash`, `%back\\slash%`},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, containsPattern(tt.in))
		})
	}
}
