package repository

import (
	"context"

	"rss-ai-curator/internal/entity"

	"gorm.io/gorm"
)

// CleanupLogRepository persists retention-sweep records.
type CleanupLogRepository interface {
	Create(ctx context.Context, log *entity.CleanupLog) error
}

// NewCleanupLogRepository creates a new instance of CleanupLogRepository.
func NewCleanupLogRepository(db *gorm.DB) CleanupLogRepository {
	return &cleanupLogRepository{db: db}
}

type cleanupLogRepository struct {
	db *gorm.DB
}

func (r *cleanupLogRepository) Create(ctx context.Context, log *entity.CleanupLog) error {
	return r.db.WithContext(ctx).Create(log).Error
}
