package repository

import (
	"context"
	"fmt"
	"time"

	"rss-ai-curator/internal/entity"

	"github.com/patrickmn/go-cache"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EmbeddingStoreRepository is the embedding cache: vectors persisted in
// Postgres with an in-memory read-through layer in front. Keyed by article
// ID; a stored vector is never overwritten.
type EmbeddingStoreRepository interface {
	Get(ctx context.Context, articleID uint) ([]float64, bool, error)
	Save(ctx context.Context, articleID uint, model string, vector []float64) error
	DeleteByArticleIDs(ctx context.Context, ids []uint) (int64, error)
}

// NewEmbeddingStoreRepository creates a new instance of EmbeddingStoreRepository.
func NewEmbeddingStoreRepository(db *gorm.DB) EmbeddingStoreRepository {
	return &embeddingStoreRepository{
		db:            db,
		inmemoryCache: cache.New(30*time.Minute, 10*time.Minute),
	}
}

type embeddingStoreRepository struct {
	db            *gorm.DB
	inmemoryCache *cache.Cache
}

func cacheKey(articleID uint) string {
	return fmt.Sprintf("embedding:%d", articleID)
}

func (r *embeddingStoreRepository) Get(ctx context.Context, articleID uint) ([]float64, bool, error) {
	if cached, ok := r.inmemoryCache.Get(cacheKey(articleID)); ok {
		return cached.([]float64), true, nil
	}

	var row entity.ArticleEmbedding
	err := r.db.WithContext(ctx).First(&row, "article_id = ?", articleID).Error
	if err == gorm.ErrRecordNotFound {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}

	vector := []float64(row.Vector)
	r.inmemoryCache.Set(cacheKey(articleID), vector, cache.DefaultExpiration)
	return vector, true, nil
}

func (r *embeddingStoreRepository) Save(ctx context.Context, articleID uint, model string, vector []float64) error {
	row := entity.ArticleEmbedding{
		ArticleID: articleID,
		Model:     model,
		Vector:    vector,
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "article_id"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return err
	}
	r.inmemoryCache.Set(cacheKey(articleID), vector, cache.DefaultExpiration)
	return nil
}

func (r *embeddingStoreRepository) DeleteByArticleIDs(ctx context.Context, ids []uint) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	for _, id := range ids {
		r.inmemoryCache.Delete(cacheKey(id))
	}
	tx := r.db.WithContext(ctx).Where("article_id IN ?", ids).Delete(&entity.ArticleEmbedding{})
	return tx.RowsAffected, tx.Error
}
