package dto

import (
	"time"

	"rss-ai-curator/internal/entity"
)

// RatedArticle is an article joined with its latest rating time. The rating
// time, not the fetch time, orders recency-based context selection.
type RatedArticle struct {
	entity.Article `gorm:"embedded"`
	RatedAt        time.Time `json:"rated_at"`
}
