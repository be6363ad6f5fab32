package service

import (
	"context"
	"fmt"

	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
)

// PreferenceService records ratings and exposes store-level statistics.
// Ratings append; re-rating an article adds a newer row that supersedes the
// old one at read time.
type PreferenceService interface {
	RecordFeedback(ctx context.Context, articleID uint, rating string) error
	GetStats(ctx context.Context) (*dto.StatsResponse, error)
}

// NewPreferenceService creates a new instance of PreferenceService.
func NewPreferenceService(
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	feedbackRepo repository.FeedbackRepository,
	rankingRepo repository.RankingRepository,
) PreferenceService {
	return &preferenceService{
		logger:       log,
		articleRepo:  articleRepo,
		feedbackRepo: feedbackRepo,
		rankingRepo:  rankingRepo,
	}
}

type preferenceService struct {
	logger       *logger.Logger
	articleRepo  repository.ArticleRepository
	feedbackRepo repository.FeedbackRepository
	rankingRepo  repository.RankingRepository
}

func (s *preferenceService) RecordFeedback(ctx context.Context, articleID uint, rating string) error {
	if rating != entity.RatingLike && rating != entity.RatingDislike {
		return fmt.Errorf("invalid rating %q: must be %q or %q", rating, entity.RatingLike, entity.RatingDislike)
	}
	if _, err := s.articleRepo.FindByID(ctx, articleID); err != nil {
		return fmt.Errorf("article %d not found: %w", articleID, err)
	}

	if err := s.feedbackRepo.Create(ctx, &entity.Feedback{
		ArticleID: articleID,
		Rating:    rating,
	}); err != nil {
		return err
	}

	s.logger.Info("Feedback recorded",
		logger.IntField("article_id", int(articleID)),
		logger.StringField("rating", rating),
	)
	return nil
}

func (s *preferenceService) GetStats(ctx context.Context) (*dto.StatsResponse, error) {
	total, err := s.articleRepo.CountAll(ctx)
	if err != nil {
		return nil, err
	}
	shown, err := s.articleRepo.CountShown(ctx)
	if err != nil {
		return nil, err
	}
	liked, err := s.feedbackRepo.CountByRating(ctx, entity.RatingLike)
	if err != nil {
		return nil, err
	}
	disliked, err := s.feedbackRepo.CountByRating(ctx, entity.RatingDislike)
	if err != nil {
		return nil, err
	}
	rankings, err := s.rankingRepo.Count(ctx)
	if err != nil {
		return nil, err
	}

	return &dto.StatsResponse{
		TotalArticles:    total,
		ShownArticles:    shown,
		LikedArticles:    liked,
		DislikedArticles: disliked,
		TotalRankings:    rankings,
	}, nil
}
