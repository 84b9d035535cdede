package context

import (
	"context"
	"errors"
	"strings"
	"testing"

	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/memory"

	"github.com/stretchr/testify/assert"
)

type failingCopies struct{}

func (failingCopies) Availability(context.Context, []int) (map[int]entity.Availability, error) {
	return nil, errors.New("connection reset")
}

func TestBuildEmptyIsSentinel(t *testing.T) {
	b := NewBuilder(memory.NewCatalogue(), logger.NewNopLogger())
	assert.Equal(t, constant.EmptyContextSentinel, b.Build(context.Background(), nil))
	assert.Equal(t, "No relevant books found matching your criteria.", Render(nil, nil))
}

func TestBuildEntry(t *testing.T) {
	pages := 412
	book := &entity.Book{
		Id: 42, Title: "Dune", Author: "Frank Herbert", Image: "http://img/dune.jpg",
		Genres: "Sci-Fi", Pages: &pages, DatePublished: "1965", Subjects: "Desert planets",
		Pacing: "Slow", Tone: "Epic", Themes: []string{"Power", "Ecology"},
		Synopsis: "Spice.",
	}
	cat := memory.NewCatalogue(book)
	cat.SetAvailability(entity.Availability{BookId: 42, TotalCopies: 3, AvailableCopies: 2})

	got := NewBuilder(cat, logger.NewNopLogger()).Build(context.Background(), []*entity.Book{book})

	want := "1. BOOK[42|Dune|Frank Herbert|http://img/dune.jpg|2/3 available]\n" +
		"   (Genre: Sci-Fi, Pages: 412, Year: 1965)\n" +
		"   (Pacing: Slow, Tone: Epic)\n" +
		"   (Themes: Power, Ecology)\n" +
		"   (Subjects: Desert planets)\n" +
		"   (Synopsis: Spice.)\n"
	assert.Equal(t, want, got)
}

func TestBuildAvailabilityFailureRendersZero(t *testing.T) {
	books := []*entity.Book{{Id: 1, Title: "A"}, {Id: 2, Title: "B"}}
	got := NewBuilder(failingCopies{}, logger.NewNopLogger()).Build(context.Background(), books)

	assert.Contains(t, got, "1. BOOK[1|A|||0/0 available]")
	assert.Contains(t, got, "2. BOOK[2|B|||0/0 available]")
	assert.NotContains(t, got, "Pacing")
	assert.NotContains(t, got, "Themes")
}

func TestPreview(t *testing.T) {
	long := strings.Repeat("é", 301)
	exact := strings.Repeat("a", 300)

	tests := []struct {
		name string
		book entity.Book
		want string
	}{
		{"synopsis preferred", entity.Book{Synopsis: "short", Description: "desc"}, "short"},
		{"description fallback", entity.Book{Description: "desc"}, "desc"},
		{"nothing", entity.Book{}, "No description."},
		{"exact length not marked", entity.Book{Synopsis: exact}, exact},
		{"truncated by rune", entity.Book{Synopsis: long}, strings.Repeat("é", 300) + "..."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Preview(&tt.book))
		})
	}
}
