package embedding

import (
	"context"
	"errors"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	probes  atomic.Int32
	failFor atomic.Int32
	delay   time.Duration
	dim     int
}

func (p *countingProvider) Embed(_ context.Context, text string) ([]float32, error) {
	if text == "warmup" {
		p.probes.Add(1)
		time.Sleep(p.delay)
		if p.failFor.Load() > 0 {
			p.failFor.Add(-1)
			return nil, errors.New("model not loaded")
		}
	}
	vec := make([]float32, p.dim)
	vec[0] = 3
	if p.dim > 1 {
		vec[1] = 4
	}
	return vec, nil
}

func TestServiceInitializesOnceUnderConcurrentFirstUse(t *testing.T) {
	p := &countingProvider{delay: 20 * time.Millisecond, dim: 4}
	svc := NewService(p, 4)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := svc.Embed(context.Background(), "query")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), p.probes.Load())
}

func TestServiceRetriesFailedInit(t *testing.T) {
	p := &countingProvider{dim: 2}
	p.failFor.Store(1)
	svc := NewService(p, 2)

	_, err := svc.Embed(context.Background(), "query")
	require.Error(t, err)

	vec, err := svc.Embed(context.Background(), "query")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-6)
	assert.InDelta(t, 0.8, vec[1], 1e-6)
	assert.Equal(t, int32(2), p.probes.Load())
}

func TestServiceRejectsDimensionMismatch(t *testing.T) {
	svc := NewService(&countingProvider{dim: 3}, 384)
	_, err := svc.Embed(context.Background(), "query")
	assert.ErrorContains(t, err, "dimension mismatch")
}

func TestNormalizeVector(t *testing.T) {
	out := normalizeVector([]float32{1, 2, 2})
	var sum float64
	for _, v := range out {
		sum += float64(v) * float64(v)
	}
	assert.InDelta(t, 1.0, math.Sqrt(sum), 1e-6)

	zero := normalizeVector([]float32{0, 0})
	assert.Equal(t, []float32{0, 0}, zero)
}

func TestOllamaProviderEmbed(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embed", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, `{"model":"all-minilm","embeddings":[[0.5,0.25]]}`)
	}))
	defer srv.Close()

	p, err := NewOllamaProvider(srv.URL, "")
	require.NoError(t, err)
	assert.Equal(t, "all-minilm", p.Model)

	vec, err := p.Embed(context.Background(), "dune")
	require.NoError(t, err)
	assert.Equal(t, []float32{0.5, 0.25}, vec)
}
