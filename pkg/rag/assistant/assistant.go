// Package assistant runs one chat turn end to end: retrieval decision,
// candidate selection, prompt assembly and the streamed answer.
package assistant

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"library-assistant-be/internal/config"
	"library-assistant-be/internal/constant"
	"library-assistant-be/internal/entity"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/pkg/llm"
	ragcontext "library-assistant-be/pkg/rag/context"
	"library-assistant-be/pkg/rag/filter"
	"library-assistant-be/pkg/rag/intent"
	"library-assistant-be/pkg/rag/recommend"
	"library-assistant-be/pkg/rag/search"
	"library-assistant-be/pkg/rag/stream"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("library-assistant/assistant")

type Turn struct {
	History       []llm.Message
	CachedContext *string
	UserID        *int
}

// Outcome describes a finished turn so callers can cache the context and publish events.
type Outcome struct {
	TurnID    uuid.UUID
	Context   string
	Reused    bool
	Intent    *intent.Intent
	Filter    *filter.Filter
	BookLimit int
	BookIDs   []int
	Cards     []stream.BookCard
}

type Assistant struct {
	classifier  *intent.Classifier
	extractor   *filter.Extractor
	retriever   *search.Retriever
	scorer      *recommend.Scorer
	builder     *ragcontext.Builder
	synthesizer *stream.Synthesizer
	library     config.LibraryConfig
	logger      logger.ILogger
	metrics     *metrics.Metrics
}

func New(
	classifier *intent.Classifier,
	extractor *filter.Extractor,
	retriever *search.Retriever,
	scorer *recommend.Scorer,
	builder *ragcontext.Builder,
	synthesizer *stream.Synthesizer,
	library config.LibraryConfig,
	log logger.ILogger,
	m *metrics.Metrics,
) *Assistant {
	return &Assistant{
		classifier:  classifier,
		extractor:   extractor,
		retriever:   retriever,
		scorer:      scorer,
		builder:     builder,
		synthesizer: synthesizer,
		library:     library,
		logger:      log,
		metrics:     m,
	}
}

// Generate answers the last user message in turn.History. Prose and the final
// book cards go to emit; a truncated answer returns an error wrapping
// stream.ErrStreamTruncated together with the partial Outcome.
func (a *Assistant) Generate(ctx context.Context, turn Turn, emit stream.Emitter) (Outcome, error) {
	out := Outcome{TurnID: uuid.New()}

	ctx, span := tracer.Start(ctx, "assistant.Generate", trace.WithAttributes(
		attribute.String("turn.id", out.TurnID.String()),
		attribute.Int("history.length", len(turn.History)),
	))
	defer span.End()

	query := LatestQuery(turn.History)
	out.BookLimit = BookLimit(query)

	var prior []llm.Message
	if len(turn.History) > 0 {
		prior = turn.History[:len(turn.History)-1]
	}

	profile, err := a.scorer.Profile(ctx, turn.UserID)
	if err != nil {
		a.logger.Warn("CHAT", "Preference lookup failed, continuing without profile", map[string]interface{}{
			"error": err.Error(),
		})
		profile = nil
	}

	var candidates []*entity.Book
	if turn.CachedContext != nil && !ShouldRetrieve(query, FormatHistory(prior)) {
		out.Context = *turn.CachedContext
		out.Reused = true
		a.logger.Info("CHAT", "Reusing cached context", map[string]interface{}{"turn_id": out.TurnID.String()})
	} else {
		retrieveCtx, retrieveSpan := tracer.Start(ctx, "assistant.retrieve")
		candidates = a.retrieve(retrieveCtx, query, turn.UserID, &out)
		out.Context = a.builder.Build(retrieveCtx, candidates)
		retrieveSpan.SetAttributes(attribute.Int("candidates", len(candidates)))
		retrieveSpan.End()
	}
	span.SetAttributes(attribute.Bool("context.reused", out.Reused))

	filters := "None"
	if out.Filter != nil && !out.Filter.IsEmpty() {
		filters = out.Filter.String()
	}

	system := fmt.Sprintf(constant.AssistantSystemPrompt,
		a.library.Name, a.library.Name, a.library.Owner, a.library.Timings,
		Personalization(profile), filters, out.Context,
	)

	streamCtx, streamSpan := tracer.Start(ctx, "assistant.stream")
	summary, err := a.synthesizer.Stream(streamCtx, stream.Request{
		SystemPrompt: system,
		History:      turn.History,
		Candidates:   candidates,
	}, emit)
	if err != nil {
		streamSpan.RecordError(err)
		streamSpan.SetStatus(codes.Error, err.Error())
	}
	streamSpan.SetAttributes(attribute.Int("books.cited", len(summary.CitedIDs)))
	streamSpan.End()

	out.BookIDs = summary.CitedIDs
	out.Cards = summary.Cards
	return out, err
}

// retrieve selects candidates for the classified intent. Retrieval errors are
// logged and yield no candidates.
func (a *Assistant) retrieve(ctx context.Context, query string, userID *int, out *Outcome) []*entity.Book {
	in := a.classifier.Classify(ctx, query)
	out.Intent = &in
	a.metrics.Intent(string(in.Type))

	var (
		res search.Result
		err error
	)
	switch {
	case in.Type == intent.Generic:
		res, err = a.scorer.Recommend(ctx, userID, out.BookLimit)
	case in.Type == intent.Similarity && in.TargetBook != nil:
		res, err = a.retriever.RetrieveSimilar(ctx, *in.TargetBook, out.BookLimit)
	default:
		f := a.extractor.Extract(ctx, query)
		out.Filter = &f
		res, err = a.retriever.Retrieve(ctx, query, f, out.BookLimit)
	}
	if err != nil {
		a.logger.Error("CHAT", "Retrieval failed", map[string]interface{}{
			"intent": string(in.Type),
			"error":  err.Error(),
		})
		return nil
	}

	a.logger.Info("CHAT", "Candidates retrieved", map[string]interface{}{
		"turn_id": out.TurnID.String(),
		"intent":  string(in.Type),
		"count":   res.Len(),
	})
	return res.Books
}

func joinOrNone(values []string) string {
	if len(values) == 0 {
		return "None"
	}
	return strings.Join(values, ", ")
}

func orNone(s string) string {
	if s == "" {
		return "None"
	}
	return s
}

// goals renders reading goals as sorted "key: value" pairs.
func goals(g map[string]any) string {
	if len(g) == 0 {
		return "None"
	}
	keys := make([]string, 0, len(g))
	for k := range g {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, len(keys))
	for i, k := range keys {
		pairs[i] = fmt.Sprintf("%s: %v", k, g[k])
	}
	return strings.Join(pairs, ", ")
}

// Personalization renders the profile section of the system prompt; empty without a profile.
func Personalization(p *entity.UserPreference) string {
	if p == nil {
		return ""
	}
	return fmt.Sprintf(constant.PersonalizationBlock,
		joinOrNone(p.FavoriteGenres),
		orNone(p.PacingPreference),
		orNone(p.TonePreference),
		joinOrNone(p.TriggersToAvoid),
		joinOrNone(p.DislikedGenres),
		joinOrNone(p.PreferredThemes),
		joinOrNone(p.PreferredMoods),
		goals(p.ReadingGoals),
		orNone(p.PacingPreference),
	)
}
