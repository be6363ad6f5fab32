package strategy

import (
	"math"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/pkg/logger"
)

type hybridStrategy struct {
	weights config.HybridWeights
	recent  ContextStrategy
	similar ContextStrategy
	diverse ContextStrategy
	logger  *logger.Logger
}

// NewHybridStrategy returns a strategy that blends recent, similar and
// diverse picks according to the configured weights.
func NewHybridStrategy(weights config.HybridWeights, clusters int, log *logger.Logger) ContextStrategy {
	return &hybridStrategy{
		weights: weights,
		recent:  NewRecentStrategy(),
		similar: NewSimilarStrategy(),
		diverse: NewDiverseStrategy(clusters),
		logger:  log,
	}
}

func (s *hybridStrategy) GetType() string {
	return TypeHybrid
}

func (s *hybridStrategy) Select(pool []PoolItem, queryVec []float64, limit int) []PoolItem {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}

	total := s.weights.Recent + s.weights.Similar + s.weights.Diverse
	if total <= 0 {
		return s.recent.Select(pool, queryVec, limit)
	}

	quota := func(w float64) int {
		return int(math.Round(float64(limit) * w / total))
	}

	out := make([]PoolItem, 0, limit)
	seen := make(map[uint]bool, limit)
	appendUnique := func(items []PoolItem) {
		for _, it := range items {
			if len(out) >= limit {
				return
			}
			if seen[it.Article.ID] {
				continue
			}
			seen[it.Article.ID] = true
			out = append(out, it)
		}
	}

	appendUnique(s.recent.Select(pool, queryVec, quota(s.weights.Recent)))
	appendUnique(s.similar.Select(pool, queryVec, quota(s.weights.Similar)))
	appendUnique(s.diverse.Select(pool, queryVec, quota(s.weights.Diverse)))

	// Rounding and overlap can leave slots open; top up by recency.
	if len(out) < limit {
		appendUnique(s.recent.Select(pool, queryVec, limit))
	}
	return out
}
