package dto

import (
	"rss-ai-curator/internal/entity"
)

// ScoredArticle is a candidate annotated with its similarity score. The
// annotation survives balancing so the ranking stage and run statistics can
// report it.
type ScoredArticle struct {
	Article    entity.Article
	Similarity float64
}

// ContextExample is one historical liked/disliked snippet presented to the
// scoring model as an in-context example.
type ContextExample struct {
	Title   string
	Snippet string
	Source  string
	Rating  string
}

// ScoreCandidate is one article as presented to the scoring model. Index is
// the 1-based position within the request; the model echoes it back so the
// response maps unambiguously onto the request order.
type ScoreCandidate struct {
	Index   int
	Title   string
	Source  string
	Content string
}

// ScoreArticlesRequest is the provider-agnostic batch scoring request.
type ScoreArticlesRequest struct {
	Candidates []ScoreCandidate
	Liked      []ContextExample
	Disliked   []ContextExample
}

// ArticleScore is one parsed entry of the model response.
type ArticleScore struct {
	Index     int     `json:"index"`
	Score     float64 `json:"score"`
	Reasoning string  `json:"reasoning"`
}

// ScoreArticlesResult is the parsed scoring response for one request.
type ScoreArticlesResult struct {
	Scores []ArticleScore
}

// RankedArticle pairs an article with its ranking result for finalization.
type RankedArticle struct {
	Article   entity.Article
	Score     float64
	Reasoning string
}
