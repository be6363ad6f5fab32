package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingProvider serves a fixed vector and counts calls, optionally
// failing the first failures attempts.
type countingProvider struct {
	mu       sync.Mutex
	calls    int
	inFlight int
	maxSeen  int
	failures int
	vec      []float64
	onCall   func()
}

func (p *countingProvider) EmbedText(_ context.Context, _ string) ([]float64, error) {
	p.mu.Lock()
	p.calls++
	call := p.calls
	p.inFlight++
	if p.inFlight > p.maxSeen {
		p.maxSeen = p.inFlight
	}
	p.mu.Unlock()

	if p.onCall != nil {
		p.onCall()
	}
	time.Sleep(5 * time.Millisecond)

	p.mu.Lock()
	p.inFlight--
	p.mu.Unlock()

	if call <= p.failures {
		return nil, errors.New("provider unavailable")
	}
	return p.vec, nil
}

func (p *countingProvider) Model() string {
	return "test-embedding-model"
}

func (p *countingProvider) callCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls
}

// memoryEmbeddingStore is an in-memory stand-in for the persistent cache.
type memoryEmbeddingStore struct {
	mu      sync.Mutex
	vectors map[uint][]float64
	saves   int
}

func (s *memoryEmbeddingStore) Get(_ context.Context, articleID uint) ([]float64, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	vec, ok := s.vectors[articleID]
	return vec, ok, nil
}

func (s *memoryEmbeddingStore) Save(_ context.Context, articleID uint, _ string, vector []float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.vectors == nil {
		s.vectors = map[uint][]float64{}
	}
	s.vectors[articleID] = vector
	s.saves++
	return nil
}

func (s *memoryEmbeddingStore) DeleteByArticleIDs(_ context.Context, ids []uint) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, id := range ids {
		if _, ok := s.vectors[id]; ok {
			delete(s.vectors, id)
			n++
		}
	}
	return n, nil
}

func embedderConfig() *config.Config {
	return &config.Config{
		Embeddings: config.Embeddings{
			MaxConcurrent:  2,
			MaxRetries:     3,
			RetryBaseDelay: time.Millisecond,
		},
	}
}

func TestEmbedArticle_SecondCallServedFromStore(t *testing.T) {
	provider := &countingProvider{vec: []float64{0.1, 0.2, 0.3}}
	store := &memoryEmbeddingStore{}
	svc := NewEmbedderService(embedderConfig(), newTestLogger(t), provider, store)

	article := &entity.Article{ID: 1, Title: "t", Content: "c"}

	first, err := svc.EmbedArticle(context.Background(), article)
	require.NoError(t, err)
	second, err := svc.EmbedArticle(context.Background(), article)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, 1, provider.callCount())
	assert.Equal(t, 1, store.saves)
}

func TestEmbedArticle_RetriesTransientFailures(t *testing.T) {
	provider := &countingProvider{vec: []float64{1, 0}, failures: 2}
	svc := NewEmbedderService(embedderConfig(), newTestLogger(t), provider, &memoryEmbeddingStore{})

	vec, err := svc.EmbedArticle(context.Background(), &entity.Article{ID: 1})
	require.NoError(t, err)

	assert.Equal(t, []float64{1, 0}, vec)
	assert.Equal(t, 3, provider.callCount())
}

func TestEmbedArticle_ExhaustedRetriesReturnError(t *testing.T) {
	provider := &countingProvider{vec: []float64{1, 0}, failures: 10}
	svc := NewEmbedderService(embedderConfig(), newTestLogger(t), provider, &memoryEmbeddingStore{})

	_, err := svc.EmbedArticle(context.Background(), &entity.Article{ID: 1})
	require.Error(t, err)
	assert.Equal(t, 3, provider.callCount())
}

func TestEmbedArticle_BackoffStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	provider := &countingProvider{vec: []float64{1, 0}, failures: 10, onCall: cancel}

	cfg := embedderConfig()
	cfg.Embeddings.RetryBaseDelay = time.Hour
	svc := NewEmbedderService(cfg, newTestLogger(t), provider, &memoryEmbeddingStore{})

	done := make(chan error, 1)
	go func() {
		_, err := svc.EmbedArticle(ctx, &entity.Article{ID: 1})
		done <- err
	}()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, provider.callCount())
	case <-time.After(2 * time.Second):
		t.Fatal("EmbedArticle did not return after context cancellation")
	}
}

func TestEmbedArticles_OmitsArticlesWithoutVectors(t *testing.T) {
	provider := &countingProvider{vec: []float64{1, 0}, failures: 3}
	store := &memoryEmbeddingStore{vectors: map[uint][]float64{
		1: {0.5, 0.5},
		2: {0.4, 0.6},
	}}
	cfg := embedderConfig()
	cfg.Embeddings.MaxRetries = 1
	svc := NewEmbedderService(cfg, newTestLogger(t), provider, store)

	// Articles 1 and 2 hit the store; 3 needs the provider, which is down.
	got := svc.EmbedArticles(context.Background(), []entity.Article{
		{ID: 1}, {ID: 2}, {ID: 3},
	})

	assert.Len(t, got, 2)
	assert.Contains(t, got, uint(1))
	assert.Contains(t, got, uint(2))
	assert.NotContains(t, got, uint(3))
}

func TestEmbedArticles_ConcurrencyStaysBounded(t *testing.T) {
	provider := &countingProvider{vec: []float64{1, 0}}
	svc := NewEmbedderService(embedderConfig(), newTestLogger(t), provider, &memoryEmbeddingStore{})

	articles := make([]entity.Article, 8)
	for i := range articles {
		articles[i] = entity.Article{ID: uint(i + 1)}
	}
	got := svc.EmbedArticles(context.Background(), articles)

	assert.Len(t, got, 8)
	assert.LessOrEqual(t, provider.maxSeen, 2)
}
