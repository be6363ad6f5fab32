package service

import (
	"context"
	"testing"
	"time"

	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"

	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func timePtr(t time.Time) *time.Time {
	return &t
}

// fakeEmbedder serves vectors from a fixed map and counts provider-style
// lookups.
type fakeEmbedder struct {
	vecs  map[uint][]float64
	calls int
}

func (f *fakeEmbedder) EmbedArticle(_ context.Context, article *entity.Article) ([]float64, error) {
	f.calls++
	if vec, ok := f.vecs[article.ID]; ok {
		return vec, nil
	}
	return nil, context.DeadlineExceeded
}

func (f *fakeEmbedder) EmbedArticles(_ context.Context, articles []entity.Article) map[uint][]float64 {
	out := make(map[uint][]float64)
	for _, a := range articles {
		f.calls++
		if vec, ok := f.vecs[a.ID]; ok {
			out[a.ID] = vec
		}
	}
	return out
}

// fakeFeedbackRepo serves fixed liked/disliked sets.
type fakeFeedbackRepo struct {
	liked    []dto.RatedArticle
	disliked []dto.RatedArticle
	created  []entity.Feedback
}

func (f *fakeFeedbackRepo) Create(_ context.Context, fb *entity.Feedback) error {
	f.created = append(f.created, *fb)
	return nil
}

func (f *fakeFeedbackRepo) GetLiked(_ context.Context) ([]dto.RatedArticle, error) {
	return f.liked, nil
}

func (f *fakeFeedbackRepo) GetDisliked(_ context.Context) ([]dto.RatedArticle, error) {
	return f.disliked, nil
}

func (f *fakeFeedbackRepo) CountByRating(_ context.Context, rating string) (int64, error) {
	if rating == entity.RatingLike {
		return int64(len(f.liked)), nil
	}
	return int64(len(f.disliked)), nil
}

func ratedArticle(id uint, source string, vecTime time.Time) dto.RatedArticle {
	return dto.RatedArticle{
		Article: entity.Article{ID: id, Title: "article", Source: source},
		RatedAt: vecTime,
	}
}
