package entity

import "time"

// CleanupLog records one retention sweep.
type CleanupLog struct {
	ID               uint      `gorm:"primaryKey" json:"id"`
	ArticlesDeleted  int       `json:"articles_deleted"`
	EmbeddingsPurged int       `json:"embeddings_purged"`
	RatedKept        int       `json:"rated_kept"`
	CreatedAt        time.Time `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the CleanupLog model.
func (CleanupLog) TableName() string {
	return "cleanup_log"
}
