package stream

import (
	"context"
	"errors"
	"strings"
	"testing"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/repository/memory"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/llm/llmtest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	events []Event
	failAt int
}

func (r *recorder) emit(e Event) error {
	if r.failAt > 0 && len(r.events)+1 >= r.failAt {
		return errors.New("broken pipe")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *recorder) prose() string {
	var sb strings.Builder
	for _, e := range r.events {
		if e.Kind == KindText {
			sb.WriteString(e.Text)
		}
	}
	return sb.String()
}

func (r *recorder) books() [][]BookCard {
	var out [][]BookCard
	for _, e := range r.events {
		if e.Kind == KindBooks {
			out = append(out, e.Books)
		}
	}
	return out
}

func fixture() (*memory.Catalogue, []*entity.Book) {
	dune := &entity.Book{Id: 42, Title: "Dune", Author: "Frank Herbert", CoverImageUrl: "http://img/42"}
	emma := &entity.Book{Id: 7, Title: "Emma", Author: "Jane Austen"}
	stored := &entity.Book{Id: 99, Title: "Persuasion", Author: "Jane Austen", Image: "http://img/99"}

	cat := memory.NewCatalogue(dune, emma, stored)
	cat.SetAvailability(entity.Availability{BookId: 42, TotalCopies: 2, AvailableCopies: 1})
	return cat, []*entity.Book{dune, emma}
}

func newSynth(provider llm.LLMProvider, cat *memory.Catalogue) *Synthesizer {
	return NewSynthesizer(provider, cat, cat, logger.NewNopLogger(), nil, 0)
}

func TestStreamRoundTrip(t *testing.T) {
	cat, candidates := fixture()
	provider := &llmtest.Provider{Chunks: []string{"Try **Dune** B", "ID[4", "2] now. Also BID[404]", "."}}
	rec := &recorder{}

	summary, err := newSynth(provider, cat).Stream(context.Background(), Request{
		SystemPrompt: "system",
		History:      []llm.Message{{Role: llm.RoleUser, Content: "sci-fi?"}},
		Candidates:   candidates,
	}, rec.emit)
	require.NoError(t, err)

	assert.Equal(t, "Try **Dune**  now. Also .", rec.prose())
	for _, e := range rec.events {
		assert.NotContains(t, e.Text, "BID[")
	}

	books := rec.books()
	require.Len(t, books, 1)
	assert.Equal(t, []BookCard{{Id: 42, Title: "Dune", Author: "Frank Herbert", Cover: "http://img/42", Availability: "1/2 available"}}, books[0])
	assert.Equal(t, []int{42, 404}, summary.CitedIDs)
	assert.Equal(t, KindBooks, rec.events[len(rec.events)-1].Kind)

	calls := provider.Calls()
	require.Len(t, calls, 1)
	assert.True(t, calls[0].Stream)
	assert.Equal(t, llm.Message{Role: llm.RoleSystem, Content: "system"}, calls[0].History[0])
	assert.Equal(t, "sci-fi?", calls[0].History[1].Content)
}

func TestStreamResolvesFromCatalogue(t *testing.T) {
	cat, _ := fixture()
	provider := &llmtest.Provider{Chunks: []string{"From last time: BID[99] and BID[7]"}}
	rec := &recorder{}

	_, err := newSynth(provider, cat).Stream(context.Background(), Request{}, rec.emit)
	require.NoError(t, err)

	books := rec.books()
	require.Len(t, books, 1)
	require.Len(t, books[0], 2)
	assert.Equal(t, 99, books[0][0].Id)
	assert.Equal(t, "http://img/99", books[0][0].Cover)
	assert.Equal(t, "0/0 available", books[0][0].Availability)
	assert.Equal(t, 7, books[0][1].Id)
}

func TestStreamWithoutMarkersUsesCandidates(t *testing.T) {
	cat, candidates := fixture()
	provider := &llmtest.Provider{Chunks: []string{"Dune and Emma are both great."}}
	rec := &recorder{}

	_, err := newSynth(provider, cat).Stream(context.Background(), Request{Candidates: candidates}, rec.emit)
	require.NoError(t, err)

	books := rec.books()
	require.Len(t, books, 1)
	assert.Equal(t, []int{42, 7}, []int{books[0][0].Id, books[0][1].Id})
}

func TestStreamNoCandidatesNoMarkers(t *testing.T) {
	cat, _ := fixture()
	rec := &recorder{}

	_, err := newSynth(&llmtest.Provider{Chunks: []string{"Nothing matched."}}, cat).Stream(context.Background(), Request{}, rec.emit)
	require.NoError(t, err)

	books := rec.books()
	require.Len(t, books, 1)
	assert.Empty(t, books[0])
}

func TestStreamBackendFailureTruncates(t *testing.T) {
	cat, candidates := fixture()
	provider := &llmtest.Provider{
		Chunks:    []string{"1. **Dune** BID[42]\n\n2. **Em", "ma** BID[7"},
		StreamErr: llm.ErrBackendUnavailable,
	}
	rec := &recorder{}

	summary, err := newSynth(provider, cat).Stream(context.Background(), Request{Candidates: candidates}, rec.emit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamTruncated)
	assert.ErrorIs(t, err, llm.ErrBackendUnavailable)

	assert.Equal(t, "1. **Dune** \n\n2. **Emma** 7", rec.prose())
	assert.Empty(t, rec.books())
	assert.Equal(t, []int{42}, summary.CitedIDs)
}

func TestStreamStopsWhenClientLeaves(t *testing.T) {
	cat, candidates := fixture()
	provider := &llmtest.Provider{Chunks: []string{"one ", "two ", "three ", "four "}}
	rec := &recorder{failAt: 2}

	_, err := newSynth(provider, cat).Stream(context.Background(), Request{Candidates: candidates}, rec.emit)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrStreamTruncated)

	assert.Equal(t, "one ", rec.prose())
	assert.Empty(t, rec.books())
	assert.Len(t, provider.Calls(), 1)
}
