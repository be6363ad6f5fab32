package service

import (
	"context"
	"errors"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"
)

// RankerService scores balanced candidates with the configured model. A
// response entry that cannot be mapped back to a request article is dropped,
// never guessed at; an empty result is a valid outcome.
type RankerService interface {
	RankArticles(ctx context.Context, candidates []dto.ScoredArticle, liked, disliked []dto.ContextExample) ([]dto.RankedArticle, error)
}

// NewRankerService creates a new instance of RankerService.
func NewRankerService(
	cfg *config.Config,
	log *logger.Logger,
	aiRepo repository.AIRepository,
	rankingRepo repository.RankingRepository,
) RankerService {
	return &rankerService{
		cfg:         cfg,
		logger:      log,
		aiRepo:      aiRepo,
		rankingRepo: rankingRepo,
	}
}

type rankerService struct {
	cfg         *config.Config
	logger      *logger.Logger
	aiRepo      repository.AIRepository
	rankingRepo repository.RankingRepository
}

// RankArticles splits the candidates into batches, scores each, persists the
// accepted scores, and returns them. A batch that fails after all retries is
// skipped rather than failing the run.
func (s *rankerService) RankArticles(ctx context.Context, candidates []dto.ScoredArticle, liked, disliked []dto.ContextExample) ([]dto.RankedArticle, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	batchSize := s.cfg.LLM.MaxBatchSize
	if batchSize <= 0 {
		batchSize = len(candidates)
	}

	ranked := make([]dto.RankedArticle, 0, len(candidates))
	for start := 0; start < len(candidates); start += batchSize {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		end := start + batchSize
		if end > len(candidates) {
			end = len(candidates)
		}
		ranked = append(ranked, s.scoreBatch(ctx, candidates[start:end], liked, disliked)...)
	}

	if len(ranked) > 0 {
		rows := make([]entity.LLMRanking, 0, len(ranked))
		for _, r := range ranked {
			rows = append(rows, entity.LLMRanking{
				ArticleID: r.Article.ID,
				Provider:  s.aiRepo.Provider(),
				Model:     s.aiRepo.Model(),
				Score:     r.Score,
				Reasoning: r.Reasoning,
			})
		}
		if err := s.rankingRepo.CreateBatch(ctx, rows); err != nil {
			s.logger.Error("Failed to persist rankings", logger.ErrorField(err))
		}
	}

	s.logger.Info("Ranking complete",
		logger.IntField("candidates", len(candidates)),
		logger.IntField("ranked", len(ranked)),
	)
	return ranked, nil
}

// scoreBatch scores one batch, halving it recursively when the provider
// reports the request as too large. A single oversized article is dropped.
func (s *rankerService) scoreBatch(ctx context.Context, batch []dto.ScoredArticle, liked, disliked []dto.ContextExample) []dto.RankedArticle {
	result, err := s.scoreWithRetry(ctx, batch, liked, disliked)
	if err != nil {
		if errors.Is(err, repository.ErrBatchTooLarge) {
			if len(batch) == 1 {
				s.logger.Error("Single article exceeds provider limits, dropping",
					logger.IntField("article_id", int(batch[0].Article.ID)),
				)
				return nil
			}
			mid := len(batch) / 2
			s.logger.Warn("Batch too large, splitting",
				logger.IntField("batch_size", len(batch)),
			)
			out := s.scoreBatch(ctx, batch[:mid], liked, disliked)
			return append(out, s.scoreBatch(ctx, batch[mid:], liked, disliked)...)
		}
		s.logger.Error("Batch scoring failed, skipping batch",
			logger.IntField("batch_size", len(batch)),
			logger.ErrorField(err),
		)
		return nil
	}

	return s.mapScores(batch, result.Scores)
}

func (s *rankerService) scoreWithRetry(ctx context.Context, batch []dto.ScoredArticle, liked, disliked []dto.ContextExample) (*dto.ScoreArticlesResult, error) {
	req := &dto.ScoreArticlesRequest{
		Candidates: make([]dto.ScoreCandidate, 0, len(batch)),
		Liked:      liked,
		Disliked:   disliked,
	}
	for i, sa := range batch {
		req.Candidates = append(req.Candidates, dto.ScoreCandidate{
			Index:   i + 1,
			Title:   sa.Article.Title,
			Source:  sa.Article.Source,
			Content: utils.TruncateText(sa.Article.Text(), s.cfg.LLMContext.SnippetMaxChars),
		})
	}

	maxRetries := s.cfg.LLM.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}
	baseDelay := s.cfg.LLM.RetryBaseDelay
	if baseDelay <= 0 {
		baseDelay = 2 * time.Second
	}

	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			delay := baseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(delay):
			}
		}
		result, err := s.aiRepo.ScoreArticles(ctx, req)
		if err == nil {
			return result, nil
		}
		// An oversized batch will stay oversized; retrying cannot help.
		if errors.Is(err, repository.ErrBatchTooLarge) {
			return nil, err
		}
		lastErr = err
		s.logger.Warn("Scoring attempt failed",
			logger.IntField("attempt", attempt+1),
			logger.ErrorField(err),
		)
	}
	return nil, lastErr
}

// mapScores validates each response entry against the request: the index
// must refer to a batch position, the score must be on the 0-10 scale, and a
// duplicated index keeps only its first occurrence.
func (s *rankerService) mapScores(batch []dto.ScoredArticle, scores []dto.ArticleScore) []dto.RankedArticle {
	seen := make(map[int]bool, len(scores))
	out := make([]dto.RankedArticle, 0, len(scores))
	for _, sc := range scores {
		if sc.Index < 1 || sc.Index > len(batch) {
			s.logger.Warn("Dropping score with out-of-range index",
				logger.IntField("index", sc.Index),
			)
			continue
		}
		if sc.Score < 0 || sc.Score > 10 {
			s.logger.Warn("Dropping score outside 0-10 scale",
				logger.IntField("index", sc.Index),
				logger.Float64Field("score", sc.Score),
			)
			continue
		}
		if seen[sc.Index] {
			s.logger.Warn("Dropping duplicate index in score response",
				logger.IntField("index", sc.Index),
			)
			continue
		}
		seen[sc.Index] = true
		out = append(out, dto.RankedArticle{
			Article:   batch[sc.Index-1].Article,
			Score:     sc.Score,
			Reasoning: sc.Reasoning,
		})
	}
	return out
}
