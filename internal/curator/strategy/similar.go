package strategy

import (
	"sort"

	"rss-ai-curator/pkg/utils"
)

type similarStrategy struct{}

// NewSimilarStrategy returns a strategy that keeps the examples closest to the
// current candidate batch. Without a query vector it degrades to recency, so a
// cold embedding store never empties the context.
func NewSimilarStrategy() ContextStrategy {
	return &similarStrategy{}
}

func (s *similarStrategy) GetType() string {
	return TypeSimilar
}

func (s *similarStrategy) Select(pool []PoolItem, queryVec []float64, limit int) []PoolItem {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}
	if len(queryVec) == 0 {
		return NewRecentStrategy().Select(pool, nil, limit)
	}

	type scored struct {
		item PoolItem
		sim  float64
	}
	items := make([]scored, 0, len(pool))
	for _, it := range pool {
		items = append(items, scored{item: it, sim: utils.CosineSimilarity(it.Vector, queryVec)})
	}
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].sim != items[j].sim {
			return items[i].sim > items[j].sim
		}
		return items[i].item.Article.ID < items[j].item.Article.ID
	})

	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]PoolItem, 0, len(items))
	for _, it := range items {
		out = append(out, it.item)
	}
	return out
}
