package embedding

import (
	"context"
	"fmt"
	"math"
	"sync"

	"golang.org/x/sync/singleflight"
)

// EmbeddingProvider defines the interface for generating text embeddings
type EmbeddingProvider interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Service is the process-wide embedding handle. The provider is probed once on
// first use; concurrent first callers share that probe, and a failed probe is
// retried by the next caller.
type Service struct {
	provider  EmbeddingProvider
	dimension int

	group singleflight.Group
	mu    sync.RWMutex
	ready bool
}

func NewService(provider EmbeddingProvider, dimension int) *Service {
	return &Service{provider: provider, dimension: dimension}
}

func (s *Service) Dimension() int {
	return s.dimension
}

func (s *Service) init(ctx context.Context) error {
	s.mu.RLock()
	ready := s.ready
	s.mu.RUnlock()
	if ready {
		return nil
	}

	_, err, _ := s.group.Do("init", func() (interface{}, error) {
		s.mu.RLock()
		ready := s.ready
		s.mu.RUnlock()
		if ready {
			return nil, nil
		}

		probe, err := s.provider.Embed(ctx, "warmup")
		if err != nil {
			return nil, fmt.Errorf("embedding init: %w", err)
		}
		if s.dimension > 0 && len(probe) != s.dimension {
			return nil, fmt.Errorf("embedding init: dimension mismatch: got %d, want %d", len(probe), s.dimension)
		}

		s.mu.Lock()
		s.ready = true
		s.mu.Unlock()
		return nil, nil
	})
	return err
}

// Embed returns the unit-length embedding of text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	if err := s.init(ctx); err != nil {
		return nil, err
	}
	vec, err := s.provider.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embed: %w", err)
	}
	if s.dimension > 0 && len(vec) != s.dimension {
		return nil, fmt.Errorf("embed: dimension mismatch: got %d, want %d", len(vec), s.dimension)
	}
	return normalizeVector(vec), nil
}

// normalizeVector normalizes a vector to unit length (magnitude = 1)
// This is REQUIRED for accurate cosine similarity calculation
func normalizeVector(vec []float32) []float32 {
	var magnitude float64
	for _, v := range vec {
		magnitude += float64(v) * float64(v)
	}
	magnitude = math.Sqrt(magnitude)

	// Avoid division by zero
	if magnitude == 0 {
		return vec
	}

	normalized := make([]float32, len(vec))
	for i, v := range vec {
		normalized[i] = float32(float64(v) / magnitude)
	}
	return normalized
}
