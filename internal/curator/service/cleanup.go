package service

import (
	"context"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
)

// CleanupService applies the retention policy: old unrated articles are
// deleted together with their embeddings, rated articles are kept
// indefinitely as training signal.
type CleanupService interface {
	Run(ctx context.Context) (*entity.CleanupLog, error)
}

// NewCleanupService creates a new instance of CleanupService.
func NewCleanupService(
	cfg *config.Config,
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	embeddingStore repository.EmbeddingStoreRepository,
	cleanupLogRepo repository.CleanupLogRepository,
	feedbackRepo repository.FeedbackRepository,
) CleanupService {
	return &cleanupService{
		cfg:            cfg,
		logger:         log,
		articleRepo:    articleRepo,
		embeddingStore: embeddingStore,
		cleanupLogRepo: cleanupLogRepo,
		feedbackRepo:   feedbackRepo,
	}
}

type cleanupService struct {
	cfg            *config.Config
	logger         *logger.Logger
	articleRepo    repository.ArticleRepository
	embeddingStore repository.EmbeddingStoreRepository
	cleanupLogRepo repository.CleanupLogRepository
	feedbackRepo   repository.FeedbackRepository
}

func (s *cleanupService) Run(ctx context.Context) (*entity.CleanupLog, error) {
	maxAge := time.Duration(s.cfg.Cleanup.MaxAgeDays) * 24 * time.Hour
	keepShown := time.Duration(s.cfg.Cleanup.KeepShownDays) * 24 * time.Hour

	expired, err := s.articleRepo.FindExpired(ctx, maxAge, keepShown)
	if err != nil {
		return nil, err
	}

	// Embeddings go first so a failure between the two deletes leaves no
	// orphaned vectors.
	purged, err := s.embeddingStore.DeleteByArticleIDs(ctx, expired)
	if err != nil {
		return nil, err
	}

	deleted, err := s.articleRepo.DeleteByIDs(ctx, expired)
	if err != nil {
		return nil, err
	}

	likedCount, err := s.feedbackRepo.CountByRating(ctx, entity.RatingLike)
	if err != nil {
		return nil, err
	}
	dislikedCount, err := s.feedbackRepo.CountByRating(ctx, entity.RatingDislike)
	if err != nil {
		return nil, err
	}

	logEntry := &entity.CleanupLog{
		ArticlesDeleted:  int(deleted),
		EmbeddingsPurged: int(purged),
		RatedKept:        int(likedCount + dislikedCount),
	}
	if err := s.cleanupLogRepo.Create(ctx, logEntry); err != nil {
		s.logger.Error("Failed to persist cleanup log", logger.ErrorField(err))
	}

	s.logger.Info("Cleanup sweep complete",
		logger.IntField("articles_deleted", int(deleted)),
		logger.IntField("embeddings_purged", int(purged)),
		logger.IntField("rated_kept", logEntry.RatedKept),
	)
	return logEntry, nil
}
