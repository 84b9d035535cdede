package memory

import (
	"context"
	"testing"
	"time"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/repository/specification"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestContextCacheRoundTrip(t *testing.T) {
	c := NewContextCache(time.Minute)
	ctx := context.Background()

	_, found, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.False(t, found)

	require.NoError(t, c.Save(ctx, "s1", "1. BOOK[1|Dune|Herbert||1/1 available]"))
	got, found, err := c.Get(ctx, "s1")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "1. BOOK[1|Dune|Herbert||1/1 available]", got)

	c.Delete("s1")
	_, found, _ = c.Get(ctx, "s1")
	assert.False(t, found)
}

func TestContextCacheExpires(t *testing.T) {
	c := NewContextCache(10 * time.Millisecond)
	require.NoError(t, c.Save(context.Background(), "s1", "ctx"))
	time.Sleep(30 * time.Millisecond)
	_, found, _ := c.Get(context.Background(), "s1")
	assert.False(t, found)
}

func TestCatalogueSearchSimilarOrdersByDistance(t *testing.T) {
	cat := NewCatalogue(
		&entity.Book{Id: 1, Title: "Far", Genres: "Sci-Fi", Embedding: []float32{0, 1}},
		&entity.Book{Id: 2, Title: "Near", Genres: "Sci-Fi", Embedding: []float32{1, 0.1}},
		&entity.Book{Id: 3, Title: "Unindexed", Genres: "Sci-Fi"},
		&entity.Book{Id: 4, Title: "Mid", Genres: "Fantasy", Embedding: []float32{1, 1}},
	)

	res, err := cat.SearchSimilar(context.Background(), []float32{1, 0}, 10)
	require.NoError(t, err)
	require.Len(t, res, 3)
	assert.Equal(t, []int{2, 4, 1}, []int{res[0].Book.Id, res[1].Book.Id, res[2].Book.Id})
	assert.Less(t, res[0].Distance, res[1].Distance)

	res, err = cat.SearchSimilar(context.Background(), []float32{1, 0}, 1, specification.GenreLike{Genre: "sci"})
	require.NoError(t, err)
	require.Len(t, res, 1)
	assert.Equal(t, 2, res[0].Book.Id)
}

func TestCatalogueLookups(t *testing.T) {
	cat := NewCatalogue(&entity.Book{Id: 9, Title: "Rebecca"})
	cat.SetAvailability(entity.Availability{BookId: 9, TotalCopies: 2, AvailableCopies: 1})
	cat.SetPreference(&entity.UserPreference{UserId: 5, FavoriteGenres: []string{"Mystery"}})

	b, err := cat.FindByID(context.Background(), 9)
	require.NoError(t, err)
	assert.Equal(t, "Rebecca", b.Title)

	missing, err := cat.FindByID(context.Background(), 10)
	require.NoError(t, err)
	assert.Nil(t, missing)

	avail, err := cat.Availability(context.Background(), []int{9, 10})
	require.NoError(t, err)
	assert.Equal(t, "1/2 available", avail[9].Text())
	assert.Equal(t, "0/0 available", avail[10].Text())

	pref, err := cat.FindByUserID(context.Background(), 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"Mystery"}, pref.FavoriteGenres)

	none, err := cat.FindByUserID(context.Background(), 6)
	require.NoError(t, err)
	assert.Nil(t, none)
}

func TestCosineDistance(t *testing.T) {
	assert.InDelta(t, 0.0, CosineDistance([]float32{1, 0}, []float32{2, 0}), 1e-9)
	assert.InDelta(t, 1.0, CosineDistance([]float32{1, 0}, []float32{0, 1}), 1e-9)
	assert.InDelta(t, 2.0, CosineDistance([]float32{1, 0}, []float32{-1, 0}), 1e-9)
	assert.Equal(t, 1.0, CosineDistance([]float32{0, 0}, []float32{1, 0}))
}
