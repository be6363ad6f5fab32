package repository

import (
	"context"
	"time"

	"rss-ai-curator/internal/entity"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ArticleRepository defines the interface for interacting with article data.
type ArticleRepository interface {
	CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error)
	FindByID(ctx context.Context, id uint) (*entity.Article, error)
	GetUnshownCandidates(ctx context.Context, since *time.Time) ([]entity.Article, error)
	MarkShown(ctx context.Context, articleID uint) error
	FindExpired(ctx context.Context, maxAge, keepShownFor time.Duration) ([]uint, error)
	DeleteByIDs(ctx context.Context, ids []uint) (int64, error)
	CountAll(ctx context.Context) (int64, error)
	CountShown(ctx context.Context) (int64, error)
}

// NewArticleRepository creates a new instance of ArticleRepository.
func NewArticleRepository(db *gorm.DB) ArticleRepository {
	return &articleRepository{db: db}
}

type articleRepository struct {
	db *gorm.DB
}

// CreateIgnoreConflict inserts an article, silently skipping duplicates by
// content hash or URL. Returns whether a row was actually inserted.
func (r *articleRepository) CreateIgnoreConflict(ctx context.Context, article *entity.Article) (bool, error) {
	tx := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "content_hash"}},
		DoNothing: true,
	}).Create(article)
	if tx.Error != nil {
		return false, tx.Error
	}
	return tx.RowsAffected > 0, nil
}

func (r *articleRepository) FindByID(ctx context.Context, id uint) (*entity.Article, error) {
	var article entity.Article
	if err := r.db.WithContext(ctx).First(&article, id).Error; err != nil {
		return nil, err
	}
	return &article, nil
}

// GetUnshownCandidates returns articles never delivered, newest first. An
// article already marked shown never appears here, regardless of any later
// feedback on it.
func (r *articleRepository) GetUnshownCandidates(ctx context.Context, since *time.Time) ([]entity.Article, error) {
	var articles []entity.Article
	q := r.db.WithContext(ctx).Where("shown_to_user = ?", false)
	if since != nil {
		q = q.Where("fetched_at >= ?", *since)
	}
	err := q.Order("fetched_at DESC").Find(&articles).Error
	return articles, err
}

// MarkShown flips the shown flag exactly once. The shown_to_user guard in
// the WHERE clause makes the transition monotonic even under concurrent
// runs.
func (r *articleRepository) MarkShown(ctx context.Context, articleID uint) error {
	now := time.Now()
	return r.db.WithContext(ctx).
		Model(&entity.Article{}).
		Where("id = ? AND shown_to_user = ?", articleID, false).
		Updates(map[string]interface{}{
			"shown_to_user": true,
			"shown_at":      now,
		}).Error
}

// FindExpired returns IDs of articles eligible for deletion: older than
// maxAge, never rated, and either never shown or shown longer than
// keepShownFor ago. Rated articles are always kept as training signal.
func (r *articleRepository) FindExpired(ctx context.Context, maxAge, keepShownFor time.Duration) ([]uint, error) {
	cutoff := time.Now().Add(-maxAge)
	shownCutoff := time.Now().Add(-keepShownFor)

	var ids []uint
	err := r.db.WithContext(ctx).Raw(`
		SELECT a.id FROM articles a
		LEFT JOIN feedback f ON f.article_id = a.id
		WHERE f.id IS NULL
		AND a.fetched_at < ?
		AND (a.shown_at IS NULL OR a.shown_at < ?)
	`, cutoff, shownCutoff).Scan(&ids).Error
	return ids, err
}

func (r *articleRepository) DeleteByIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	tx := r.db.WithContext(ctx).Delete(&entity.Article{}, ids)
	return tx.RowsAffected, tx.Error
}

func (r *articleRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Article{}).Count(&count).Error
	return count, err
}

func (r *articleRepository) CountShown(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.Article{}).Where("shown_to_user = ?", true).Count(&count).Error
	return count, err
}
