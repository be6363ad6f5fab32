package service

import (
	"sort"

	"rss-ai-curator/pkg/logger"

	"rss-ai-curator/internal/curator/dto"
)

// BalancerService caps the candidate set for expensive ranking while keeping
// every source represented. Each source gets an equal quota; slots a sparse
// source cannot fill spill over to the best remaining candidates regardless
// of source.
type BalancerService interface {
	Balance(scored []dto.ScoredArticle, limit int) []dto.ScoredArticle
}

// NewBalancerService creates a new instance of BalancerService.
func NewBalancerService(log *logger.Logger) BalancerService {
	return &balancerService{logger: log}
}

type balancerService struct {
	logger *logger.Logger
}

// Balance selects at most limit articles. Input order is assumed
// best-first per the similarity stage; within a source, ties on similarity
// break toward the earlier-published article, then the lower ID.
func (s *balancerService) Balance(scored []dto.ScoredArticle, limit int) []dto.ScoredArticle {
	if limit <= 0 {
		return nil
	}
	if len(scored) <= limit {
		return scored
	}

	bySource := make(map[string][]dto.ScoredArticle)
	sources := make([]string, 0)
	for _, sa := range scored {
		if _, ok := bySource[sa.Article.Source]; !ok {
			sources = append(sources, sa.Article.Source)
		}
		bySource[sa.Article.Source] = append(bySource[sa.Article.Source], sa)
	}
	sort.Strings(sources)

	for _, src := range sources {
		sortCandidates(bySource[src])
	}

	quota := limit / len(sources)
	if quota < 1 {
		quota = 1
	}

	selected := make([]dto.ScoredArticle, 0, limit)
	leftovers := make([]dto.ScoredArticle, 0)
	for _, src := range sources {
		items := bySource[src]
		take := quota
		if take > len(items) {
			take = len(items)
		}
		selected = append(selected, items[:take]...)
		leftovers = append(leftovers, items[take:]...)
	}

	// Spillover: unused quota goes to the strongest remaining candidates,
	// whatever their source.
	if len(selected) < limit && len(leftovers) > 0 {
		sortCandidates(leftovers)
		remaining := limit - len(selected)
		if remaining > len(leftovers) {
			remaining = len(leftovers)
		}
		selected = append(selected, leftovers[:remaining]...)
	}

	// With more sources than slots the quota pass overfills; rank everything
	// on merit before cutting so survival is decided by similarity, not by
	// source name.
	sortCandidates(selected)
	if len(selected) > limit {
		selected = selected[:limit]
	}

	s.logger.Info("Balanced candidate set",
		logger.IntField("input", len(scored)),
		logger.IntField("selected", len(selected)),
		logger.IntField("sources", len(sources)),
	)
	return selected
}

func sortCandidates(items []dto.ScoredArticle) {
	sort.SliceStable(items, func(i, j int) bool {
		if items[i].Similarity != items[j].Similarity {
			return items[i].Similarity > items[j].Similarity
		}
		pi, pj := items[i].Article.PublishedAt, items[j].Article.PublishedAt
		if pi != nil && pj != nil && !pi.Equal(*pj) {
			return pi.Before(*pj)
		}
		if (pi == nil) != (pj == nil) {
			return pj == nil
		}
		return items[i].Article.ID < items[j].Article.ID
	})
}
