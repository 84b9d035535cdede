package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"library-assistant-be/internal/dto"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/pkg/events"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/rag/assistant"
	"library-assistant-be/pkg/rag/stream"
)

const (
	TransportHTTP      = "http"
	TransportSync      = "sync"
	TransportWebsocket = "websocket"
	TransportCLI       = "cli"

	afterTurnTimeout = 3 * time.Second
)

// Generator runs one chat turn.
type Generator interface {
	Generate(ctx context.Context, turn assistant.Turn, emit stream.Emitter) (assistant.Outcome, error)
}

type IChatService interface {
	// Stream delivers the answer through emit. A truncated answer is reported
	// through Truncated in the outcome, not as an error.
	Stream(ctx context.Context, req *dto.ChatRequest, userID *int, transport string, emit stream.Emitter) (*assistant.Outcome, error)
	Chat(ctx context.Context, req *dto.ChatRequest, userID *int) (*dto.ChatResponse, error)
}

type chatService struct {
	generator Generator
	cache     contract.ContextCache
	publisher events.Publisher
	logger    logger.ILogger
	metrics   *metrics.Metrics
}

func NewChatService(generator Generator, cache contract.ContextCache, publisher events.Publisher, log logger.ILogger, m *metrics.Metrics) IChatService {
	return &chatService{
		generator: generator,
		cache:     cache,
		publisher: publisher,
		logger:    log,
		metrics:   m,
	}
}

func toMessages(in []dto.ChatMessageDTO) []llm.Message {
	out := make([]llm.Message, len(in))
	for i, m := range in {
		out[i] = llm.Message{Role: m.Role, Content: m.Content}
	}
	return out
}

func (s *chatService) cachedContext(ctx context.Context, sessionID string) *string {
	if sessionID == "" || s.cache == nil {
		return nil
	}
	block, found, err := s.cache.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("CHAT", "Context cache read failed", map[string]interface{}{
			"session_id": sessionID,
			"error":      err.Error(),
		})
		return nil
	}
	if !found {
		return nil
	}
	return &block
}

func (s *chatService) Stream(ctx context.Context, req *dto.ChatRequest, userID *int, transport string, emit stream.Emitter) (*assistant.Outcome, error) {
	start := time.Now()

	out, err := s.generator.Generate(ctx, assistant.Turn{
		History:       toMessages(req.Messages),
		CachedContext: s.cachedContext(ctx, req.SessionId),
		UserID:        userID,
	}, emit)

	truncated := errors.Is(err, stream.ErrStreamTruncated)
	if err != nil && !truncated {
		return nil, err
	}
	elapsed := time.Since(start)

	// the client may already be gone; bookkeeping outlives the request
	after, cancel := context.WithTimeout(context.WithoutCancel(ctx), afterTurnTimeout)
	defer cancel()

	if req.SessionId != "" && s.cache != nil && out.Context != "" {
		if err := s.cache.Save(after, req.SessionId, out.Context); err != nil {
			s.logger.Warn("CHAT", "Context cache write failed", map[string]interface{}{
				"session_id": req.SessionId,
				"error":      err.Error(),
			})
		}
	}

	intentName := ""
	if out.Intent != nil {
		intentName = string(out.Intent.Type)
	}

	s.metrics.Turn(transport, elapsed, truncated)
	details := map[string]interface{}{
		"turn_id":   out.TurnID.String(),
		"transport": transport,
		"intent":    intentName,
		"reused":    out.Reused,
		"book_ids":  out.BookIDs,
		"duration":  elapsed.String(),
	}
	if truncated {
		details["error"] = err.Error()
		s.logger.Warn("CHAT", "Chat turn truncated", details)
	} else {
		s.logger.Info("CHAT", "Chat turn completed", details)
	}

	if s.publisher != nil {
		ev := events.ChatTurnCompleted(events.ChatTurn{
			TurnID:    out.TurnID.String(),
			SessionID: req.SessionId,
			UserID:    userID,
			Transport: transport,
			Intent:    intentName,
			Reused:    out.Reused,
			BookIDs:   out.BookIDs,
			Truncated: truncated,
			Duration:  elapsed,
		})
		if err := s.publisher.Publish(after, ev); err != nil {
			s.logger.Warn("EVENTS", "Failed to publish chat turn event", map[string]interface{}{"error": err.Error()})
		}
	}

	return &out, nil
}

func (s *chatService) Chat(ctx context.Context, req *dto.ChatRequest, userID *int) (*dto.ChatResponse, error) {
	var (
		sb    strings.Builder
		cards []stream.BookCard
		done  bool
	)
	out, err := s.Stream(ctx, req, userID, TransportSync, func(e stream.Event) error {
		switch e.Kind {
		case stream.KindText:
			sb.WriteString(e.Text)
		case stream.KindBooks:
			cards = e.Books
			done = true
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	res := &dto.ChatResponse{
		TurnId:    out.TurnID.String(),
		Response:  strings.TrimSpace(sb.String()),
		Books:     cards,
		Truncated: !done,
	}
	if res.Books == nil {
		res.Books = []stream.BookCard{}
	}
	if out.Intent != nil {
		res.Intent = string(out.Intent.Type)
	}
	return res, nil
}
