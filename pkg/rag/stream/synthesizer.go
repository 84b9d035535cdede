package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/pkg/llm"
)

// ErrStreamTruncated marks an answer that ended before the backend finished.
var ErrStreamTruncated = errors.New("answer stream truncated")

type Kind string

const (
	KindText  Kind = "text"
	KindBooks Kind = "books"
)

// BookCard is the display record attached to the end of an answer.
type BookCard struct {
	Id           int    `json:"id"`
	Title        string `json:"title"`
	Author       string `json:"author"`
	Cover        string `json:"cover"`
	Availability string `json:"availability"`
}

type Event struct {
	Kind  Kind
	Text  string
	Books []BookCard
}

func TextEvent(s string) Event {
	return Event{Kind: KindText, Text: s}
}

func BooksEvent(cards []BookCard) Event {
	return Event{Kind: KindBooks, Books: cards}
}

// Emitter delivers events to the client. A non-nil error means the client is gone.
type Emitter func(Event) error

type Request struct {
	SystemPrompt string
	History      []llm.Message
	Candidates   []*entity.Book
}

type Summary struct {
	CitedIDs []int
	Cards    []BookCard
}

type Synthesizer struct {
	llm     llm.LLMProvider
	books   contract.BookRepository
	copies  contract.BookCopyRepository
	logger  logger.ILogger
	metrics *metrics.Metrics
	timeout time.Duration
}

func NewSynthesizer(provider llm.LLMProvider, books contract.BookRepository, copies contract.BookCopyRepository, log logger.ILogger, m *metrics.Metrics, timeout time.Duration) *Synthesizer {
	if timeout <= 0 {
		timeout = 120 * time.Second
	}
	return &Synthesizer{llm: provider, books: books, copies: copies, logger: log, metrics: m, timeout: timeout}
}

// Stream generates the answer, emitting prose as it becomes safe and, when the
// backend completes, exactly one Books event. A backend failure ends the
// stream after the safe prose with no Books event.
func (s *Synthesizer) Stream(ctx context.Context, req Request, emit Emitter) (Summary, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	messages := make([]llm.Message, 0, len(req.History)+1)
	messages = append(messages, llm.Message{Role: llm.RoleSystem, Content: req.SystemPrompt})
	messages = append(messages, req.History...)

	scanner := NewMarkerScanner()
	var emitErr error
	send := func(fragments []string) error {
		for _, f := range fragments {
			if err := emit(TextEvent(f)); err != nil {
				emitErr = err
				cancel()
				return err
			}
		}
		return nil
	}

	err := s.llm.ChatStream(ctx, messages, func(chunk string) error {
		return send(scanner.Feed(chunk))
	}, llm.WithTemperature(0.7))

	if emitErr != nil {
		return Summary{CitedIDs: scanner.IDs()}, fmt.Errorf("%w: client disconnected: %w", ErrStreamTruncated, emitErr)
	}
	if err != nil {
		_ = send(scanner.Finish())
		s.logger.Error("STREAM", "Completion stream failed", map[string]interface{}{
			"error": err.Error(),
			"cited": scanner.IDs(),
			"state": scanner.State().String(),
		})
		return Summary{CitedIDs: scanner.IDs()}, fmt.Errorf("%w: %w", ErrStreamTruncated, err)
	}
	if err := send(scanner.Finish()); err != nil {
		return Summary{CitedIDs: scanner.IDs()}, fmt.Errorf("%w: client disconnected: %w", ErrStreamTruncated, err)
	}

	ids := scanner.IDs()
	cards := s.resolve(ctx, ids, req.Candidates)
	if err := emit(BooksEvent(cards)); err != nil {
		return Summary{CitedIDs: ids, Cards: cards}, fmt.Errorf("%w: client disconnected: %w", ErrStreamTruncated, err)
	}
	return Summary{CitedIDs: ids, Cards: cards}, nil
}

// resolve maps cited ids to cards, first through the candidates and then the
// catalogue. Unknown ids are dropped. With no citations every candidate is used.
func (s *Synthesizer) resolve(ctx context.Context, ids []int, candidates []*entity.Book) []BookCard {
	byID := make(map[int]*entity.Book, len(candidates))
	for _, b := range candidates {
		byID[b.Id] = b
	}

	var resolved []*entity.Book
	unresolved := 0
	if len(ids) == 0 {
		resolved = candidates
	} else {
		for _, id := range ids {
			if b, ok := byID[id]; ok {
				resolved = append(resolved, b)
				continue
			}
			b, err := s.books.FindByID(ctx, id)
			if err != nil {
				s.logger.Warn("STREAM", "Cited book lookup failed", map[string]interface{}{
					"book_id": id,
					"error":   err.Error(),
				})
			}
			if b == nil {
				unresolved++
				s.logger.Debug("STREAM", "Dropping unresolved reference", map[string]interface{}{"book_id": id})
				continue
			}
			resolved = append(resolved, b)
		}
		s.metrics.Markers(len(resolved), unresolved)
	}

	cards := make([]BookCard, 0, len(resolved))
	if len(resolved) == 0 {
		return cards
	}

	resolvedIDs := make([]int, len(resolved))
	for i, b := range resolved {
		resolvedIDs[i] = b.Id
	}
	avail, err := s.copies.Availability(ctx, resolvedIDs)
	if err != nil {
		s.logger.Warn("STREAM", "Availability lookup failed", map[string]interface{}{"error": err.Error()})
	}

	for _, b := range resolved {
		a, ok := avail[b.Id]
		if !ok {
			a = entity.Availability{BookId: b.Id}
		}
		cards = append(cards, BookCard{
			Id:           b.Id,
			Title:        b.Title,
			Author:       b.Author,
			Cover:        b.CoverURL(),
			Availability: a.Text(),
		})
	}
	return cards
}
