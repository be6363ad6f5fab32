package entity

import (
	"time"

	"github.com/lib/pq"
)

// ArticleEmbedding stores one article's embedding vector. Keyed by article
// ID; recomputed only if absent, so embedding the same article twice yields
// the identical stored vector.
type ArticleEmbedding struct {
	ArticleID uint            `gorm:"primaryKey" json:"article_id"`
	Model     string          `gorm:"not null" json:"model"`
	Vector    pq.Float64Array `gorm:"type:float8[];not null" json:"vector"`
	CreatedAt time.Time       `gorm:"autoCreateTime" json:"created_at"`
}

// TableName specifies the table name for the ArticleEmbedding model.
func (ArticleEmbedding) TableName() string {
	return "article_embeddings"
}
