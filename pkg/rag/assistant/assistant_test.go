package assistant

import (
	"context"
	"math/rand"
	"strings"
	"testing"

	"library-assistant-be/internal/config"
	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/memory"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/llm/llmtest"
	ragcontext "library-assistant-be/pkg/rag/context"
	"library-assistant-be/pkg/rag/filter"
	"library-assistant-be/pkg/rag/intent"
	"library-assistant-be/pkg/rag/recommend"
	"library-assistant-be/pkg/rag/search"
	"library-assistant-be/pkg/rag/stream"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type staticEmbedder struct{}

func (staticEmbedder) Embed(context.Context, string) ([]float32, error) {
	return []float32{1, 0}, nil
}

func newCatalogue() *memory.Catalogue {
	cat := memory.NewCatalogue(
		&entity.Book{Id: 1, Title: "Red Rising", Author: "Pierce Brown", Genres: "Sci-Fi", Pacing: "Fast",
			Themes: []string{"Revenge"}, Embedding: []float32{1, 0.1}},
		&entity.Book{Id: 2, Title: "Emma", Author: "Jane Austen", Genres: "Romance", Pacing: "Slow",
			Embedding: []float32{0.1, 1}},
		&entity.Book{Id: 3, Title: "The Big Sleep", Author: "Raymond Chandler", Genres: "Mystery", Pacing: "Fast",
			Embedding: []float32{0.5, 0.5}},
	)
	cat.SetAvailability(entity.Availability{BookId: 1, TotalCopies: 1, AvailableCopies: 1})
	cat.SetPreference(&entity.UserPreference{UserId: 8, FavoriteGenres: []string{"Mystery"}, DislikedGenres: []string{"Romance"}})
	return cat
}

func replies(intentReply, filterReply string) func(string) (string, error) {
	return func(system string) (string, error) {
		switch system {
		case constant.IntentClassificationPrompt:
			return intentReply, nil
		case constant.FilterExtractionPrompt:
			return filterReply, nil
		}
		return "", llm.ErrBackendUnavailable
	}
}

func newAssistant(provider *llmtest.Provider, cat *memory.Catalogue) *Assistant {
	log := logger.NewNopLogger()
	return New(
		intent.NewClassifier(provider, log, nil, 0),
		filter.NewExtractor(provider, log, nil, 0),
		search.NewRetriever(cat, staticEmbedder{}, log, nil),
		recommend.NewScorer(cat, cat, log, nil).WithRand(func() *rand.Rand { return rand.New(rand.NewSource(1)) }),
		ragcontext.NewBuilder(cat, log),
		stream.NewSynthesizer(provider, cat, cat, log, nil, 0),
		config.LibraryConfig{Name: "Library Hub", Owner: "Shashwat Pasari", Timings: "9:00 AM to 9:00 PM"},
		log,
		nil,
	)
}

type collector struct{ events []stream.Event }

func (c *collector) emit(e stream.Event) error {
	c.events = append(c.events, e)
	return nil
}

func streamCall(t *testing.T, p *llmtest.Provider) llmtest.Call {
	t.Helper()
	for _, c := range p.Calls() {
		if c.Stream {
			return c
		}
	}
	t.Fatal("no streaming call recorded")
	return llmtest.Call{}
}

func TestGenerateFilteredScenario(t *testing.T) {
	provider := &llmtest.Provider{
		ReplyFor: replies(`{"intent":"filtered","target_book":null}`,
			`{"genre":"sci-fi","pacing":"Fast","themes":["revenge"]}`),
		Chunks: []string{"1. **Red Rising** by Pierce Brown BID[", "1]"},
	}
	c := &collector{}
	history := []llm.Message{{Role: llm.RoleUser, Content: "fast-paced sci-fi books about revenge"}}

	out, err := newAssistant(provider, newCatalogue()).Generate(context.Background(), Turn{History: history}, c.emit)
	require.NoError(t, err)

	require.NotNil(t, out.Intent)
	assert.Equal(t, intent.Filtered, out.Intent.Type)
	require.NotNil(t, out.Filter)
	assert.Equal(t, "sci-fi", *out.Filter.Genre)
	assert.False(t, out.Reused)
	assert.Equal(t, []int{1}, out.BookIDs)
	assert.True(t, strings.HasPrefix(out.Context, "1. BOOK[1|Red Rising|Pierce Brown||1/1 available]"))
	assert.NotContains(t, out.Context, "BOOK[2|")

	system := streamCall(t, provider).History[0].Content
	assert.Contains(t, system, "You are a smart, agentic library assistant for Library Hub.")
	assert.Contains(t, system, `Detected Search Filters: {"genre":"sci-fi"`)
	assert.Contains(t, system, out.Context)

	last := c.events[len(c.events)-1]
	assert.Equal(t, stream.KindBooks, last.Kind)
	require.Len(t, last.Books, 1)
	assert.Equal(t, "Red Rising", last.Books[0].Title)
}

func TestGenerateGenericUsesProfile(t *testing.T) {
	provider := &llmtest.Provider{
		ReplyFor: replies(`{"intent":"generic"}`, ""),
		Chunks:   []string{"Here you go."},
	}
	user := 8
	history := []llm.Message{{Role: llm.RoleUser, Content: "recommend 2 books"}}

	out, err := newAssistant(provider, newCatalogue()).Generate(context.Background(), Turn{History: history, UserID: &user}, (&collector{}).emit)
	require.NoError(t, err)

	assert.Equal(t, intent.Generic, out.Intent.Type)
	assert.Nil(t, out.Filter)
	assert.Equal(t, 2, out.BookLimit)
	assert.True(t, strings.HasPrefix(out.Context, "1. BOOK[3|The Big Sleep"))
	assert.NotContains(t, out.Context, "Emma")

	system := streamCall(t, provider).History[0].Content
	assert.Contains(t, system, "- Favorite Genres: Mystery")
	assert.Contains(t, system, "Detected Search Filters: None")

	for _, call := range provider.Calls() {
		if !call.Stream {
			assert.NotEqual(t, constant.FilterExtractionPrompt, call.History[0].Content)
		}
	}
}

func TestGenerateSimilarity(t *testing.T) {
	provider := &llmtest.Provider{
		ReplyFor: replies(`{"intent":"similarity","target_book":"red rising"}`, ""),
		Chunks:   []string{"Try BID[3]."},
	}
	history := []llm.Message{{Role: llm.RoleUser, Content: "something like Red Rising"}}

	out, err := newAssistant(provider, newCatalogue()).Generate(context.Background(), Turn{History: history}, (&collector{}).emit)
	require.NoError(t, err)

	assert.Equal(t, intent.Similarity, out.Intent.Type)
	assert.NotContains(t, out.Context, "BOOK[1|")
	assert.True(t, strings.HasPrefix(out.Context, "1. BOOK[3|"))
	assert.Equal(t, []int{3}, out.BookIDs)
}

func TestGenerateReusesCachedContext(t *testing.T) {
	provider := &llmtest.Provider{Chunks: []string{"It is about BID[2]."}}
	cached := "1. BOOK[2|Emma|Jane Austen||0/0 available]\n"
	history := []llm.Message{
		{Role: llm.RoleUser, Content: "tell me about classic romance novels please"},
		{Role: llm.RoleAssistant, Content: "1. **Emma** by Jane Austen, a witty classic."},
		{Role: llm.RoleUser, Content: "why that one?"},
	}
	c := &collector{}

	out, err := newAssistant(provider, newCatalogue()).Generate(context.Background(), Turn{History: history, CachedContext: &cached}, c.emit)
	require.NoError(t, err)

	assert.True(t, out.Reused)
	assert.Nil(t, out.Intent)
	assert.Equal(t, cached, out.Context)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Stream)
	assert.Len(t, calls[0].History, 4)

	last := c.events[len(c.events)-1]
	require.Len(t, last.Books, 1)
	assert.Equal(t, "Emma", last.Books[0].Title)
}

func TestGenerateTruncatedStream(t *testing.T) {
	provider := &llmtest.Provider{
		ReplyFor:  replies(`{"intent":"filtered"}`, `{}`),
		Chunks:    []string{"Partial answer"},
		StreamErr: llm.ErrBackendUnavailable,
	}
	c := &collector{}
	history := []llm.Message{{Role: llm.RoleUser, Content: "space books"}}

	out, err := newAssistant(provider, newCatalogue()).Generate(context.Background(), Turn{History: history}, c.emit)
	assert.ErrorIs(t, err, stream.ErrStreamTruncated)
	assert.NotEmpty(t, out.Context)
	for _, e := range c.events {
		assert.Equal(t, stream.KindText, e.Kind)
	}
}

func TestPersonalizationRendersGoals(t *testing.T) {
	tests := []struct {
		name  string
		goals map[string]any
		want  string
	}{
		{"none", nil, "- Goals: None\n"},
		{"sorted pairs", map[string]any{"yearly": 24, "focus": "classics"}, "- Goals: focus: classics, yearly: 24\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			block := Personalization(&entity.UserPreference{UserId: 1, FavoriteGenres: []string{"mystery"}, ReadingGoals: tt.goals})
			assert.Contains(t, block, tt.want)
			assert.Contains(t, block, "- Favorite Genres: mystery\n")
		})
	}
	assert.Empty(t, Personalization(nil))
}
