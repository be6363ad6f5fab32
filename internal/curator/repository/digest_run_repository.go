package repository

import (
	"context"

	"rss-ai-curator/internal/entity"

	"gorm.io/gorm"
)

// DigestRunRepository persists per-cycle funnel summaries.
type DigestRunRepository interface {
	Create(ctx context.Context, run *entity.DigestRun) error
}

// NewDigestRunRepository creates a new instance of DigestRunRepository.
func NewDigestRunRepository(db *gorm.DB) DigestRunRepository {
	return &digestRunRepository{db: db}
}

type digestRunRepository struct {
	db *gorm.DB
}

func (r *digestRunRepository) Create(ctx context.Context, run *entity.DigestRun) error {
	return r.db.WithContext(ctx).Create(run).Error
}
