package repository

import (
	"context"

	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/entity"

	"gorm.io/gorm"
)

// FeedbackRepository defines the interface for recording and reading
// preference signals. Reads resolve the most recent rating per article, so
// a re-rated article moves between the liked and disliked sets.
type FeedbackRepository interface {
	Create(ctx context.Context, feedback *entity.Feedback) error
	GetLiked(ctx context.Context) ([]dto.RatedArticle, error)
	GetDisliked(ctx context.Context) ([]dto.RatedArticle, error)
	CountByRating(ctx context.Context, rating string) (int64, error)
}

// NewFeedbackRepository creates a new instance of FeedbackRepository.
func NewFeedbackRepository(db *gorm.DB) FeedbackRepository {
	return &feedbackRepository{db: db}
}

type feedbackRepository struct {
	db *gorm.DB
}

func (r *feedbackRepository) Create(ctx context.Context, feedback *entity.Feedback) error {
	return r.db.WithContext(ctx).Create(feedback).Error
}

func (r *feedbackRepository) GetLiked(ctx context.Context) ([]dto.RatedArticle, error) {
	return r.findByLatestRating(ctx, entity.RatingLike)
}

func (r *feedbackRepository) GetDisliked(ctx context.Context) ([]dto.RatedArticle, error) {
	return r.findByLatestRating(ctx, entity.RatingDislike)
}

// findByLatestRating joins articles against the newest feedback row per
// article (DISTINCT ON keeps the latest by created_at).
func (r *feedbackRepository) findByLatestRating(ctx context.Context, rating string) ([]dto.RatedArticle, error) {
	var articles []dto.RatedArticle
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.*, latest.created_at AS rated_at FROM articles a
		JOIN (
			SELECT DISTINCT ON (article_id) article_id, rating, created_at
			FROM feedback
			ORDER BY article_id, created_at DESC
		) latest ON latest.article_id = a.id
		WHERE latest.rating = ?
		ORDER BY latest.created_at DESC
	`, rating).Scan(&articles).Error
	return articles, err
}

func (r *feedbackRepository) CountByRating(ctx context.Context, rating string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Raw(`
		SELECT COUNT(*) FROM (
			SELECT DISTINCT ON (article_id) article_id, rating
			FROM feedback
			ORDER BY article_id, created_at DESC
		) latest
		WHERE latest.rating = ?
	`, rating).Scan(&count).Error
	return count, err
}
