package dto

import "rss-ai-curator/internal/entity"

// DigestSummary is the observability record of one digest cycle.
type DigestSummary struct {
	Candidates      int            `json:"candidates"`
	AfterSimilarity int            `json:"after_similarity"`
	AfterBalancing  int            `json:"after_balancing"`
	Ranked          int            `json:"ranked"`
	PassedThreshold int            `json:"passed_threshold"`
	Delivered       int            `json:"delivered"`
	ScoreP75        float64        `json:"score_p75"`
	ScoreP90        float64        `json:"score_p90"`
	SourceCounts    map[string]int `json:"source_counts"`
}

// DigestResult is the outcome of one digest run: the articles actually
// delivered, in delivery order, plus the funnel summary.
type DigestResult struct {
	Delivered []entity.Article
	Summary   DigestSummary
}

// StatsResponse aggregates store-level counters for the stats surface.
type StatsResponse struct {
	TotalArticles    int64 `json:"total_articles"`
	ShownArticles    int64 `json:"shown_articles"`
	LikedArticles    int64 `json:"liked_articles"`
	DislikedArticles int64 `json:"disliked_articles"`
	TotalRankings    int64 `json:"total_rankings"`
}
