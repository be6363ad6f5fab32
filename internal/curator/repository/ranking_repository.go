package repository

import (
	"context"

	"rss-ai-curator/internal/entity"

	"gorm.io/gorm"
)

// RankingRepository defines the interface for persisting scoring results.
type RankingRepository interface {
	CreateBatch(ctx context.Context, rankings []entity.LLMRanking) error
	Count(ctx context.Context) (int64, error)
}

// NewRankingRepository creates a new instance of RankingRepository.
func NewRankingRepository(db *gorm.DB) RankingRepository {
	return &rankingRepository{db: db}
}

type rankingRepository struct {
	db *gorm.DB
}

func (r *rankingRepository) CreateBatch(ctx context.Context, rankings []entity.LLMRanking) error {
	if len(rankings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&rankings).Error
}

func (r *rankingRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.LLMRanking{}).Count(&count).Error
	return count, err
}
