package strategy

import (
	"fmt"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
)

const (
	TypeRecent  = "recent"
	TypeSimilar = "similar"
	TypeDiverse = "diverse"
	TypeHybrid  = "hybrid"
)

// PoolItem is one rated article available for context selection, with its
// embedding when one exists and the time the rating was given.
type PoolItem struct {
	Article entity.Article
	Vector  []float64
	RatedAt time.Time
}

// ContextStrategy picks at most limit examples out of a rated-article pool.
// queryVec is the centroid of the current candidate batch and may be nil;
// strategies that need it fall back to recency when it is missing. Selection
// must be deterministic for a fixed pool.
type ContextStrategy interface {
	Select(pool []PoolItem, queryVec []float64, limit int) []PoolItem
	GetType() string
}

// NewContextStrategy returns the strategy configured under llm_context.strategy.
func NewContextStrategy(cfg *config.Config, log *logger.Logger) (ContextStrategy, error) {
	switch cfg.LLMContext.Strategy {
	case TypeRecent:
		return NewRecentStrategy(), nil
	case TypeSimilar:
		return NewSimilarStrategy(), nil
	case TypeDiverse:
		return NewDiverseStrategy(cfg.LLMContext.DiverseClusters), nil
	case TypeHybrid:
		return NewHybridStrategy(cfg.LLMContext.Hybrid, cfg.LLMContext.DiverseClusters, log), nil
	default:
		return nil, fmt.Errorf("unknown context strategy: %s", cfg.LLMContext.Strategy)
	}
}
