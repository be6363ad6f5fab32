package service

import (
	"context"
	"sync"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"
)

// EmbedderService resolves embedding vectors for articles, reading through
// the persistent store and calling the provider only on misses. A provider
// failure for one article never fails the batch; the article is simply
// absent from the result.
type EmbedderService interface {
	EmbedArticle(ctx context.Context, article *entity.Article) ([]float64, error)
	EmbedArticles(ctx context.Context, articles []entity.Article) map[uint][]float64
}

// NewEmbedderService creates a new instance of EmbedderService.
func NewEmbedderService(
	cfg *config.Config,
	log *logger.Logger,
	provider repository.EmbeddingRepository,
	store repository.EmbeddingStoreRepository,
) EmbedderService {
	return &embedderService{
		cfg:      cfg,
		logger:   log,
		provider: provider,
		store:    store,
	}
}

type embedderService struct {
	cfg      *config.Config
	logger   *logger.Logger
	provider repository.EmbeddingRepository
	store    repository.EmbeddingStoreRepository
}

// EmbedArticle returns the vector for one article, computing and persisting
// it when missing. Provider calls retry with exponential backoff.
func (s *embedderService) EmbedArticle(ctx context.Context, article *entity.Article) ([]float64, error) {
	if vec, ok, err := s.store.Get(ctx, article.ID); err != nil {
		return nil, err
	} else if ok {
		return vec, nil
	}

	vec, err := s.embedWithRetry(ctx, article.Text())
	if err != nil {
		return nil, err
	}

	if err := s.store.Save(ctx, article.ID, s.provider.Model(), vec); err != nil {
		s.logger.Warn("Failed to persist embedding",
			logger.IntField("article_id", int(article.ID)),
			logger.ErrorField(err),
		)
	}
	return vec, nil
}

// EmbedArticles resolves vectors for a batch concurrently, bounded by the
// configured concurrency. Articles whose embedding cannot be obtained are
// logged and omitted.
func (s *embedderService) EmbedArticles(ctx context.Context, articles []entity.Article) map[uint][]float64 {
	results := make(map[uint][]float64, len(articles))
	var mu sync.Mutex
	var wg sync.WaitGroup

	maxConcurrent := s.cfg.Embeddings.MaxConcurrent
	if maxConcurrent <= 0 {
		maxConcurrent = 1
	}
	sem := make(chan struct{}, maxConcurrent)

	for i := range articles {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		article := articles[i]
		wg.Add(1)
		sem <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-sem }()

			vec, err := s.EmbedArticle(ctx, &article)
			if err != nil {
				s.logger.Warn("Skipping article without embedding",
					logger.IntField("article_id", int(article.ID)),
					logger.ErrorField(err),
				)
				return
			}
			mu.Lock()
			results[article.ID] = vec
			mu.Unlock()
		})
	}
	wg.Wait()

	return results
}

func (s *embedderService) embedWithRetry(ctx context.Context, text string) ([]float64, error) {
	maxRetries := s.cfg.Embeddings.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	baseDelay := s.cfg.Embeddings.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		vec, err := s.provider.EmbedText(ctx, text)
		if err == nil {
			return vec, nil
		}
		lastErr = err
		s.logger.Warn("Embedding attempt failed",
			logger.IntField("attempt", attempt+1),
			logger.ErrorField(err),
		)
	}
	return nil, lastErr
}
