package strategy

import "sort"

type recentStrategy struct{}

// NewRecentStrategy returns a strategy that keeps the most recently rated
// examples.
func NewRecentStrategy() ContextStrategy {
	return &recentStrategy{}
}

func (s *recentStrategy) GetType() string {
	return TypeRecent
}

func (s *recentStrategy) Select(pool []PoolItem, _ []float64, limit int) []PoolItem {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}

	sorted := make([]PoolItem, len(pool))
	copy(sorted, pool)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].RatedAt.Equal(sorted[j].RatedAt) {
			return sorted[i].RatedAt.After(sorted[j].RatedAt)
		}
		return sorted[i].Article.ID < sorted[j].Article.ID
	})

	if len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}
