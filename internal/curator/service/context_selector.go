package service

import (
	"context"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/curator/strategy"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"
)

// ContextSelectorService assembles the bounded liked/disliked example sets
// handed to the scoring model. The example count stays fixed as history
// grows; the configured strategy decides which examples make the cut.
type ContextSelectorService interface {
	BuildContext(ctx context.Context, queryVec []float64) (liked, disliked []dto.ContextExample, err error)
}

// NewContextSelectorService creates a new instance of ContextSelectorService.
func NewContextSelectorService(
	cfg *config.Config,
	log *logger.Logger,
	feedbackRepo repository.FeedbackRepository,
	embedder EmbedderService,
	strat strategy.ContextStrategy,
) ContextSelectorService {
	return &contextSelectorService{
		cfg:          cfg,
		logger:       log,
		feedbackRepo: feedbackRepo,
		embedder:     embedder,
		strategy:     strat,
	}
}

type contextSelectorService struct {
	cfg          *config.Config
	logger       *logger.Logger
	feedbackRepo repository.FeedbackRepository
	embedder     EmbedderService
	strategy     strategy.ContextStrategy
}

// BuildContext selects and renders the examples. queryVec is the centroid of
// the current candidate batch; strategies that do not need it ignore it.
func (s *contextSelectorService) BuildContext(ctx context.Context, queryVec []float64) ([]dto.ContextExample, []dto.ContextExample, error) {
	liked, err := s.feedbackRepo.GetLiked(ctx)
	if err != nil {
		return nil, nil, err
	}
	disliked, err := s.feedbackRepo.GetDisliked(ctx)
	if err != nil {
		return nil, nil, err
	}

	likedPicked := s.strategy.Select(s.buildPool(ctx, liked), queryVec, s.cfg.LLMContext.MaxLikedExamples)
	dislikedPicked := s.strategy.Select(s.buildPool(ctx, disliked), queryVec, s.cfg.LLMContext.MaxDislikedExamples)

	s.logger.Debug("Built scoring context",
		logger.StringField("strategy", s.strategy.GetType()),
		logger.IntField("liked", len(likedPicked)),
		logger.IntField("disliked", len(dislikedPicked)),
	)

	return s.render(likedPicked, entity.RatingLike), s.render(dislikedPicked, entity.RatingDislike), nil
}

func (s *contextSelectorService) buildPool(ctx context.Context, rated []dto.RatedArticle) []strategy.PoolItem {
	articles := make([]entity.Article, 0, len(rated))
	for _, r := range rated {
		articles = append(articles, r.Article)
	}
	vecs := s.embedder.EmbedArticles(ctx, articles)

	pool := make([]strategy.PoolItem, 0, len(rated))
	for _, r := range rated {
		pool = append(pool, strategy.PoolItem{
			Article: r.Article,
			Vector:  vecs[r.Article.ID],
			RatedAt: r.RatedAt,
		})
	}
	return pool
}

func (s *contextSelectorService) render(items []strategy.PoolItem, rating string) []dto.ContextExample {
	out := make([]dto.ContextExample, 0, len(items))
	for _, it := range items {
		snippet := it.Article.Summary
		if snippet == "" {
			snippet = it.Article.Content
		}
		out = append(out, dto.ContextExample{
			Title:   it.Article.Title,
			Snippet: utils.TruncateText(snippet, s.cfg.LLMContext.SnippetMaxChars),
			Source:  it.Article.Source,
			Rating:  rating,
		})
	}
	return out
}
