package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"time"

	"library-assistant-be/internal/config"
	"library-assistant-be/internal/controller"
	"library-assistant-be/internal/pkg/logger"
	"library-assistant-be/internal/pkg/metrics"
	"library-assistant-be/internal/repository/cache"
	"library-assistant-be/internal/repository/contract"
	"library-assistant-be/internal/repository/memory"
	"library-assistant-be/internal/repository/unitofwork"
	"library-assistant-be/internal/service"
	"library-assistant-be/pkg/database"
	"library-assistant-be/pkg/embedding"
	"library-assistant-be/pkg/events"
	"library-assistant-be/pkg/llm"
	"library-assistant-be/pkg/llm/factory"
	pktNats "library-assistant-be/pkg/nats"
	"library-assistant-be/pkg/rag/assistant"
	ragcontext "library-assistant-be/pkg/rag/context"
	"library-assistant-be/pkg/rag/filter"
	"library-assistant-be/pkg/rag/intent"
	"library-assistant-be/pkg/rag/recommend"
	"library-assistant-be/pkg/rag/search"
	"library-assistant-be/pkg/rag/stream"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const pingTimeout = 3 * time.Second

// Dependencies are the external systems a container is assembled from.
type Dependencies struct {
	Repos    unitofwork.RepositoryFactory
	LLM      llm.LLMProvider
	Embedder embedding.EmbeddingProvider
	Checks   map[string]controller.Check
}

type Container struct {
	// Controllers
	ChatController           controller.IChatController
	RecommendationController controller.IRecommendationController
	HealthController         controller.IHealthController

	// Services
	ChatService           service.IChatService
	RecommendationService service.IRecommendationService
	CatalogueService      service.ICatalogueService

	// TurnConsumerService audits chat turns; started by main.
	TurnConsumerService service.ITurnConsumerService

	Metrics *metrics.Metrics
	Logger  logger.ILogger

	closers []func() error
}

// NewContainer wires the production stack: postgres repositories, the
// configured LLM backend and the Ollama embedding model.
func NewContainer(db *gorm.DB, cfg *config.Config, log logger.ILogger) (*Container, error) {
	llmProvider, err := factory.NewLLMProvider(cfg.Ai)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM provider: %w", err)
	}
	log.Info("BOOTSTRAP", "LLM provider ready", map[string]interface{}{
		"provider": cfg.Ai.LLMProvider,
		"model":    cfg.Ai.LLMModel,
	})

	embedder, err := embedding.NewOllamaProvider(cfg.Ai.OllamaBaseURL, cfg.Ai.EmbeddingModel)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize embedding provider: %w", err)
	}

	return Assemble(Dependencies{
		Repos:    unitofwork.NewRepositoryFactory(db),
		LLM:      llmProvider,
		Embedder: embedder,
		Checks: map[string]controller.Check{
			"database": func(ctx context.Context) error { return database.Ping(ctx, db) },
		},
	}, cfg, log), nil
}

// Assemble builds the pipeline, services and controllers on top of deps.
// The context cache and event bus are chosen from cfg and degrade to their
// in-process variants when redis or NATS cannot be reached.
func Assemble(deps Dependencies, cfg *config.Config, log logger.ILogger) *Container {
	c := &Container{Metrics: metrics.New(), Logger: log}

	books := deps.Repos.BookRepository()
	copies := deps.Repos.BookCopyRepository()
	preferences := deps.Repos.UserPreferenceRepository()

	// 1. Pipeline
	embedder := embedding.NewService(deps.Embedder, cfg.Ai.EmbeddingDimension)
	classifier := intent.NewClassifier(deps.LLM, log, c.Metrics, cfg.Ai.ClassifyTimeout)
	extractor := filter.NewExtractor(deps.LLM, log, c.Metrics, cfg.Ai.ClassifyTimeout)
	retriever := search.NewRetriever(books, embedder, log, c.Metrics)
	scorer := recommend.NewScorer(books, preferences, log, c.Metrics)
	builder := ragcontext.NewBuilder(copies, log)
	synthesizer := stream.NewSynthesizer(deps.LLM, books, copies, log, c.Metrics, cfg.Ai.StreamTimeout)

	generator := assistant.New(classifier, extractor, retriever, scorer, builder, synthesizer, cfg.Library, log, c.Metrics)

	// 2. Infrastructure
	contextCache := c.contextCache(cfg)
	publisher, source := c.eventBus(cfg)

	// 3. Services
	c.ChatService = service.NewChatService(generator, contextCache, publisher, log, c.Metrics)
	c.RecommendationService = service.NewRecommendationService(scorer, copies, log)
	c.CatalogueService = service.NewCatalogueService(books)
	c.TurnConsumerService = service.NewTurnConsumerService(source, log)

	// 4. Controllers
	c.ChatController = controller.NewChatController(c.ChatService, log)
	c.RecommendationController = controller.NewRecommendationController(c.RecommendationService, c.CatalogueService)
	c.HealthController = controller.NewHealthController(deps.Checks)

	return c
}

func (c *Container) contextCache(cfg *config.Config) contract.ContextCache {
	if cfg.App.ContextCache != "redis" {
		return memory.NewContextCache(cfg.App.ContextCacheTTL)
	}

	opt, err := redis.ParseURL(cfg.App.RedisURL)
	if err != nil {
		c.Logger.Warn("BOOTSTRAP", "Failed to parse Redis URL, using direct Addr", map[string]interface{}{"error": err.Error()})
		opt = &redis.Options{Addr: cfg.App.RedisURL}
	}
	rdb := redis.NewClient(opt)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		c.Logger.Warn("BOOTSTRAP", "Redis unreachable, context cache falls back to memory", map[string]interface{}{"error": err.Error()})
		rdb.Close()
		return memory.NewContextCache(cfg.App.ContextCacheTTL)
	}

	c.closers = append(c.closers, rdb.Close)
	c.Logger.Info("BOOTSTRAP", "Context cache: redis", nil)
	return cache.NewContextCache(rdb, cfg.App.ContextCacheTTL)
}

func (c *Container) eventBus(cfg *config.Config) (events.Publisher, service.EventSource) {
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err == nil {
			sub, subErr := pktNats.NewSubscriber(cfg.App.NatsURL)
			if subErr == nil {
				c.closers = append(c.closers, pub.Close, func() error { sub.Close(); return nil })
				c.Logger.Info("BOOTSTRAP", "Event bus: NATS JetStream", map[string]interface{}{"url": cfg.App.NatsURL})
				return pub, sub.Source(cfg.App.EventsDurable)
			}
			pub.Close()
			err = subErr
		}
		c.Logger.Warn("BOOTSTRAP", "NATS unreachable, events stay in process", map[string]interface{}{"error": err.Error()})
	}

	bus := events.NewChannelBus()
	c.closers = append(c.closers, bus.Close)
	return bus, bus
}

// Close releases the event bus and cache connections.
func (c *Container) Close() error {
	var errs []error
	for i := len(c.closers) - 1; i >= 0; i-- {
		if err := c.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
