package entity

import "time"

// LLMRanking is the scoring result for one article in one ranking pass.
// Rows are written once and never mutated; they feed threshold filtering and
// the score-distribution statistics.
type LLMRanking struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	Provider  string    `gorm:"not null" json:"provider"`
	Model     string    `gorm:"not null" json:"model"`
	Score     float64   `gorm:"not null" json:"score"`
	Reasoning string    `json:"reasoning"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for the LLMRanking model.
func (LLMRanking) TableName() string {
	return "llm_rankings"
}
