package strategy

import (
	"sort"

	"rss-ai-curator/pkg/utils"
)

const kmeansMaxIterations = 20

type diverseStrategy struct {
	clusters int
}

// NewDiverseStrategy returns a strategy that clusters the pool embeddings and
// keeps one representative per cluster, so the context spans the breadth of
// the user's taste instead of one dominant topic.
func NewDiverseStrategy(clusters int) ContextStrategy {
	return &diverseStrategy{clusters: clusters}
}

func (s *diverseStrategy) GetType() string {
	return TypeDiverse
}

func (s *diverseStrategy) Select(pool []PoolItem, _ []float64, limit int) []PoolItem {
	if limit <= 0 || len(pool) == 0 {
		return nil
	}

	withVec := make([]PoolItem, 0, len(pool))
	for _, it := range pool {
		if len(it.Vector) > 0 {
			withVec = append(withVec, it)
		}
	}
	if len(withVec) == 0 {
		return NewRecentStrategy().Select(pool, nil, limit)
	}
	// Stable input order so clustering is reproducible for a fixed pool.
	sort.SliceStable(withVec, func(i, j int) bool {
		return withVec[i].Article.ID < withVec[j].Article.ID
	})

	k := s.clusters
	if k > limit {
		k = limit
	}
	if k > len(withVec) {
		k = len(withVec)
	}
	if k <= 1 {
		return NewRecentStrategy().Select(withVec, nil, limit)
	}

	assignments := kmeans(withVec, k)

	// One representative per cluster: the most recently rated member.
	reps := make([]PoolItem, 0, k)
	for c := 0; c < k; c++ {
		var best *PoolItem
		for i := range withVec {
			if assignments[i] != c {
				continue
			}
			if best == nil || withVec[i].RatedAt.After(best.RatedAt) {
				best = &withVec[i]
			}
		}
		if best != nil {
			reps = append(reps, *best)
		}
	}

	if len(reps) < limit {
		// Fill remaining slots by recency, skipping already-chosen articles.
		chosen := make(map[uint]bool, len(reps))
		for _, r := range reps {
			chosen[r.Article.ID] = true
		}
		for _, it := range NewRecentStrategy().Select(pool, nil, len(pool)) {
			if len(reps) >= limit {
				break
			}
			if !chosen[it.Article.ID] {
				chosen[it.Article.ID] = true
				reps = append(reps, it)
			}
		}
	}
	if len(reps) > limit {
		reps = reps[:limit]
	}
	return reps
}

// kmeans assigns each item to one of k clusters. Centroids initialize from
// evenly spaced items rather than random picks, so repeated runs over the same
// pool agree.
func kmeans(items []PoolItem, k int) []int {
	centroids := make([][]float64, k)
	for c := 0; c < k; c++ {
		idx := c * len(items) / k
		centroids[c] = append([]float64(nil), items[idx].Vector...)
	}

	assignments := make([]int, len(items))
	for iter := 0; iter < kmeansMaxIterations; iter++ {
		changed := false
		for i, it := range items {
			best, bestSim := 0, utils.CosineSimilarity(it.Vector, centroids[0])
			for c := 1; c < k; c++ {
				if sim := utils.CosineSimilarity(it.Vector, centroids[c]); sim > bestSim {
					best, bestSim = c, sim
				}
			}
			if assignments[i] != best {
				assignments[i] = best
				changed = true
			}
		}
		if !changed && iter > 0 {
			break
		}

		for c := 0; c < k; c++ {
			members := make([][]float64, 0)
			for i := range items {
				if assignments[i] == c {
					members = append(members, items[i].Vector)
				}
			}
			if mean := utils.MeanVector(members); mean != nil {
				centroids[c] = mean
			}
		}
	}
	return assignments
}
