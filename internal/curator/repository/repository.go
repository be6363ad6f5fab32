package repository

import (
	"context"
	"errors"

	"rss-ai-curator/internal/curator/dto"
)

// ErrBatchTooLarge is returned by an AIRepository when the provider rejects
// a request for exceeding its size limits. The caller is expected to split
// the batch and retry.
var ErrBatchTooLarge = errors.New("scoring request exceeds provider size limit")

// AIRepository is the capability interface for batch article scoring,
// independent of the vendor behind it.
type AIRepository interface {
	ScoreArticles(ctx context.Context, req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error)
	Provider() string
	Model() string
}

// EmbeddingRepository is the capability interface for text embedding.
// Implementations must be idempotent: the same text yields the same vector.
type EmbeddingRepository interface {
	EmbedText(ctx context.Context, text string) ([]float64, error)
	Model() string
}
