package service

import (
	"context"
	"sort"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"
)

// SimilarityService scores candidates against the user's rated history and
// drops everything below the configured threshold. With no liked history yet
// the filter passes every candidate through unchanged, so a new install still
// produces digests.
type SimilarityService interface {
	FilterCandidates(ctx context.Context, candidates []entity.Article) ([]dto.ScoredArticle, error)
}

// NewSimilarityService creates a new instance of SimilarityService.
func NewSimilarityService(
	cfg *config.Config,
	log *logger.Logger,
	feedbackRepo repository.FeedbackRepository,
	embedder EmbedderService,
) SimilarityService {
	return &similarityService{
		cfg:          cfg,
		logger:       log,
		feedbackRepo: feedbackRepo,
		embedder:     embedder,
	}
}

type similarityService struct {
	cfg          *config.Config
	logger       *logger.Logger
	feedbackRepo repository.FeedbackRepository
	embedder     EmbedderService
}

// FilterCandidates returns the candidates scoring at or above the similarity
// threshold, sorted by score descending. The score of a candidate is its
// best match against the liked set minus a penalty proportional to its best
// match against the disliked set; a single strong liked match is enough to
// surface an article even when the liked set is broad.
func (s *similarityService) FilterCandidates(ctx context.Context, candidates []entity.Article) ([]dto.ScoredArticle, error) {
	if len(candidates) == 0 {
		return nil, nil
	}

	liked, err := s.feedbackRepo.GetLiked(ctx)
	if err != nil {
		return nil, err
	}

	if len(liked) == 0 {
		s.logger.Info("No liked history yet, passing all candidates through",
			logger.IntField("candidates", len(candidates)),
		)
		out := make([]dto.ScoredArticle, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, dto.ScoredArticle{Article: c, Similarity: 0})
		}
		return out, nil
	}

	disliked, err := s.feedbackRepo.GetDisliked(ctx)
	if err != nil {
		return nil, err
	}

	likedVecs := s.embedRated(ctx, liked)
	dislikedVecs := s.embedRated(ctx, disliked)
	if len(likedVecs) == 0 {
		s.logger.Warn("No liked article could be embedded, passing all candidates through")
		out := make([]dto.ScoredArticle, 0, len(candidates))
		for _, c := range candidates {
			out = append(out, dto.ScoredArticle{Article: c, Similarity: 0})
		}
		return out, nil
	}

	candidateVecs := s.embedder.EmbedArticles(ctx, candidates)

	scored := make([]dto.ScoredArticle, 0, len(candidates))
	for _, c := range candidates {
		vec, ok := candidateVecs[c.ID]
		if !ok {
			continue
		}
		score := maxSimilarity(vec, likedVecs)
		if len(dislikedVecs) > 0 {
			score -= s.cfg.Filtering.DislikePenalty * maxSimilarity(vec, dislikedVecs)
		}
		if score < s.cfg.Filtering.SimilarityThreshold {
			continue
		}
		scored = append(scored, dto.ScoredArticle{Article: c, Similarity: score})
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].Similarity != scored[j].Similarity {
			return scored[i].Similarity > scored[j].Similarity
		}
		return scored[i].Article.ID < scored[j].Article.ID
	})

	s.logger.Info("Similarity filter applied",
		logger.IntField("candidates", len(candidates)),
		logger.IntField("passed", len(scored)),
		logger.Float64Field("threshold", s.cfg.Filtering.SimilarityThreshold),
	)
	return scored, nil
}

func (s *similarityService) embedRated(ctx context.Context, rated []dto.RatedArticle) [][]float64 {
	articles := make([]entity.Article, 0, len(rated))
	for _, r := range rated {
		articles = append(articles, r.Article)
	}
	byID := s.embedder.EmbedArticles(ctx, articles)
	vecs := make([][]float64, 0, len(byID))
	for _, a := range articles {
		if vec, ok := byID[a.ID]; ok {
			vecs = append(vecs, vec)
		}
	}
	return vecs
}

func maxSimilarity(vec []float64, against [][]float64) float64 {
	best := -1.0
	for _, other := range against {
		if sim := utils.CosineSimilarity(vec, other); sim > best {
			best = sim
		}
	}
	return best
}
