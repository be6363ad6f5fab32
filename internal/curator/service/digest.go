package service

import (
	"context"
	"encoding/json"
	"math"
	"sort"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/telegram"
	"rss-ai-curator/pkg/utils"
)

// DigestService runs the full selection pipeline for one cycle: candidate
// load, similarity filter, source balancing, context building, model
// ranking, finalization, and delivery. Each delivered article is marked
// shown individually, after its message goes out, so a mid-digest failure
// never burns undelivered articles.
type DigestService interface {
	RunDigest(ctx context.Context) (*dto.DigestResult, error)
}

// NewDigestService creates a new instance of DigestService.
func NewDigestService(
	cfg *config.Config,
	log *logger.Logger,
	articleRepo repository.ArticleRepository,
	digestRunRepo repository.DigestRunRepository,
	similarity SimilarityService,
	balancer BalancerService,
	contextSelector ContextSelectorService,
	ranker RankerService,
	embedder EmbedderService,
	notifier telegram.Notifier,
) DigestService {
	return &digestService{
		cfg:             cfg,
		logger:          log,
		articleRepo:     articleRepo,
		digestRunRepo:   digestRunRepo,
		similarity:      similarity,
		balancer:        balancer,
		contextSelector: contextSelector,
		ranker:          ranker,
		embedder:        embedder,
		notifier:        notifier,
	}
}

type digestService struct {
	cfg             *config.Config
	logger          *logger.Logger
	articleRepo     repository.ArticleRepository
	digestRunRepo   repository.DigestRunRepository
	similarity      SimilarityService
	balancer        BalancerService
	contextSelector ContextSelectorService
	ranker          RankerService
	embedder        EmbedderService
	notifier        telegram.Notifier
}

func (s *digestService) RunDigest(ctx context.Context) (*dto.DigestResult, error) {
	startedAt := time.Now()
	summary := dto.DigestSummary{SourceCounts: map[string]int{}}

	var since *time.Time
	if hours := s.cfg.Filtering.CandidateMaxAgeHours; hours > 0 {
		cutoff := startedAt.Add(-time.Duration(hours) * time.Hour)
		since = &cutoff
	}

	candidates, err := s.articleRepo.GetUnshownCandidates(ctx, since)
	if err != nil {
		return nil, err
	}
	summary.Candidates = len(candidates)

	scored, err := s.similarity.FilterCandidates(ctx, candidates)
	if err != nil {
		return nil, err
	}
	summary.AfterSimilarity = len(scored)

	balanced := s.balancer.Balance(scored, s.cfg.Filtering.TopCandidatesForLLM)
	summary.AfterBalancing = len(balanced)
	for _, sa := range balanced {
		summary.SourceCounts[sa.Article.Source]++
	}

	var ranked []dto.RankedArticle
	if len(balanced) > 0 {
		queryVec := s.batchCentroid(ctx, balanced)
		liked, disliked, err := s.contextSelector.BuildContext(ctx, queryVec)
		if err != nil {
			return nil, err
		}
		ranked, err = s.ranker.RankArticles(ctx, balanced, liked, disliked)
		if err != nil {
			return nil, err
		}
	}
	summary.Ranked = len(ranked)
	summary.ScoreP75 = percentile(ranked, 0.75)
	summary.ScoreP90 = percentile(ranked, 0.90)

	final := s.finalize(ranked)
	summary.PassedThreshold = len(final)

	delivered := s.deliver(ctx, final)
	summary.Delivered = len(delivered)

	s.recordRun(ctx, &summary, startedAt)

	s.logger.Info("Digest cycle complete",
		logger.IntField("candidates", summary.Candidates),
		logger.IntField("after_similarity", summary.AfterSimilarity),
		logger.IntField("after_balancing", summary.AfterBalancing),
		logger.IntField("ranked", summary.Ranked),
		logger.IntField("passed_threshold", summary.PassedThreshold),
		logger.IntField("delivered", summary.Delivered),
	)
	return &dto.DigestResult{Delivered: delivered, Summary: summary}, nil
}

// finalize applies the score threshold, orders best-first with ties going to
// the earlier-published article, and truncates to the digest size.
func (s *digestService) finalize(ranked []dto.RankedArticle) []dto.RankedArticle {
	final := make([]dto.RankedArticle, 0, len(ranked))
	for _, r := range ranked {
		if r.Score >= s.cfg.Filtering.MinScoreToShow {
			final = append(final, r)
		}
	}

	sort.SliceStable(final, func(i, j int) bool {
		if final[i].Score != final[j].Score {
			return final[i].Score > final[j].Score
		}
		pi, pj := final[i].Article.PublishedAt, final[j].Article.PublishedAt
		if pi != nil && pj != nil && !pi.Equal(*pj) {
			return pi.Before(*pj)
		}
		if (pi == nil) != (pj == nil) {
			return pj == nil
		}
		return final[i].Article.ID < final[j].Article.ID
	})

	if len(final) > s.cfg.Filtering.DigestSize {
		final = final[:s.cfg.Filtering.DigestSize]
	}
	return final
}

// deliver sends the digest. An article is marked shown only after its
// message is confirmed sent; a send failure leaves it eligible for the next
// cycle.
func (s *digestService) deliver(ctx context.Context, final []dto.RankedArticle) []entity.Article {
	if len(final) == 0 {
		if err := s.notifier.SendMessage(telegram.FormatEmptyDigest()); err != nil {
			s.logger.Error("Failed to send empty-digest notice", logger.ErrorField(err))
		}
		return nil
	}

	if err := s.notifier.SendMessage(telegram.FormatDigestHeader(len(final))); err != nil {
		s.logger.Error("Failed to send digest header", logger.ErrorField(err))
	}

	delivered := make([]entity.Article, 0, len(final))
	for i, r := range final {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		if i > 0 && s.cfg.Digest.DeliveryDelay > 0 {
			time.Sleep(s.cfg.Digest.DeliveryDelay)
		}

		msg := telegram.FormatArticleForTelegram(telegram.ArticleMessage{
			Title:       r.Article.Title,
			Source:      r.Article.Source,
			URL:         r.Article.URL,
			Summary:     r.Article.Summary,
			Score:       r.Score,
			Reasoning:   r.Reasoning,
			PublishedAt: r.Article.PublishedAt,
		})
		if err := s.notifier.SendMessage(msg); err != nil {
			s.logger.Error("Failed to deliver article, leaving it unshown",
				logger.IntField("article_id", int(r.Article.ID)),
				logger.ErrorField(err),
			)
			continue
		}

		if err := s.articleRepo.MarkShown(ctx, r.Article.ID); err != nil {
			s.logger.Error("Failed to mark article shown",
				logger.IntField("article_id", int(r.Article.ID)),
				logger.ErrorField(err),
			)
		}
		delivered = append(delivered, r.Article)
	}
	return delivered
}

func (s *digestService) batchCentroid(ctx context.Context, balanced []dto.ScoredArticle) []float64 {
	articles := make([]entity.Article, 0, len(balanced))
	for _, sa := range balanced {
		articles = append(articles, sa.Article)
	}
	byID := s.embedder.EmbedArticles(ctx, articles)
	vecs := make([][]float64, 0, len(byID))
	for _, a := range articles {
		if vec, ok := byID[a.ID]; ok {
			vecs = append(vecs, vec)
		}
	}
	return utils.MeanVector(vecs)
}

func (s *digestService) recordRun(ctx context.Context, summary *dto.DigestSummary, startedAt time.Time) {
	sourceCounts, err := json.Marshal(summary.SourceCounts)
	if err != nil {
		sourceCounts = []byte("{}")
	}
	run := entity.DigestRun{
		Candidates:      summary.Candidates,
		AfterSimilarity: summary.AfterSimilarity,
		AfterBalancing:  summary.AfterBalancing,
		Ranked:          summary.Ranked,
		PassedThreshold: summary.PassedThreshold,
		Delivered:       summary.Delivered,
		ScoreP75:        summary.ScoreP75,
		ScoreP90:        summary.ScoreP90,
		SourceCounts:    sourceCounts,
		StartedAt:       startedAt,
		CompletedAt:     time.Now(),
	}
	if err := s.digestRunRepo.Create(ctx, &run); err != nil {
		s.logger.Error("Failed to persist digest run", logger.ErrorField(err))
	}
}

// percentile computes the nearest-rank percentile of the ranked scores.
func percentile(ranked []dto.RankedArticle, q float64) float64 {
	if len(ranked) == 0 {
		return 0
	}
	scores := make([]float64, 0, len(ranked))
	for _, r := range ranked {
		scores = append(scores, r.Score)
	}
	sort.Float64s(scores)
	rank := int(math.Ceil(q * float64(len(scores))))
	if rank < 1 {
		rank = 1
	}
	return scores[rank-1]
}
