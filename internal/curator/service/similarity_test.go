package service

import (
	"context"
	"testing"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newSimilarityFixture(t *testing.T, filtering config.Filtering, fb *fakeFeedbackRepo, emb *fakeEmbedder) SimilarityService {
	t.Helper()
	cfg := &config.Config{Filtering: filtering}
	return NewSimilarityService(cfg, newTestLogger(t), fb, emb)
}

func TestFilterCandidates_ColdStartPassesEverything(t *testing.T) {
	svc := newSimilarityFixture(t,
		config.Filtering{SimilarityThreshold: 0.9},
		&fakeFeedbackRepo{},
		&fakeEmbedder{vecs: map[uint][]float64{}},
	)

	candidates := []entity.Article{
		{ID: 1, Source: "A"},
		{ID: 2, Source: "B"},
	}
	got, err := svc.FilterCandidates(context.Background(), candidates)
	require.NoError(t, err)

	require.Len(t, got, 2)
	for _, sa := range got {
		assert.Zero(t, sa.Similarity)
	}
}

func TestFilterCandidates_ThresholdDropsWeakMatches(t *testing.T) {
	now := time.Now()
	fb := &fakeFeedbackRepo{
		liked: []dto.RatedArticle{ratedArticle(100, "A", now)},
	}
	emb := &fakeEmbedder{vecs: map[uint][]float64{
		100: {1, 0},
		1:   {1, 0},
		2:   {0, 1},
	}}
	svc := newSimilarityFixture(t, config.Filtering{SimilarityThreshold: 0.5}, fb, emb)

	got, err := svc.FilterCandidates(context.Background(), []entity.Article{
		{ID: 1, Source: "A"},
		{ID: 2, Source: "B"},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].Article.ID)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
}

func TestFilterCandidates_BestLikedMatchWins(t *testing.T) {
	// Two orthogonal liked articles: a candidate matching either one
	// perfectly must score 1.0, not the average of its matches.
	now := time.Now()
	fb := &fakeFeedbackRepo{
		liked: []dto.RatedArticle{
			ratedArticle(100, "A", now),
			ratedArticle(101, "A", now),
		},
	}
	emb := &fakeEmbedder{vecs: map[uint][]float64{
		100: {1, 0},
		101: {0, 1},
		1:   {0, 1},
	}}
	svc := newSimilarityFixture(t, config.Filtering{SimilarityThreshold: 0.9}, fb, emb)

	got, err := svc.FilterCandidates(context.Background(), []entity.Article{{ID: 1, Source: "A"}})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.InDelta(t, 1.0, got[0].Similarity, 1e-9)
}

func TestFilterCandidates_DislikePenaltyApplies(t *testing.T) {
	now := time.Now()
	fb := &fakeFeedbackRepo{
		liked:    []dto.RatedArticle{ratedArticle(100, "A", now)},
		disliked: []dto.RatedArticle{ratedArticle(200, "A", now)},
	}
	emb := &fakeEmbedder{vecs: map[uint][]float64{
		100: {1, 0},
		200: {1, 0},
		1:   {1, 0},
	}}
	svc := newSimilarityFixture(t, config.Filtering{
		SimilarityThreshold: 0.0,
		DislikePenalty:      0.3,
	}, fb, emb)

	got, err := svc.FilterCandidates(context.Background(), []entity.Article{{ID: 1, Source: "A"}})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.InDelta(t, 0.7, got[0].Similarity, 1e-9)
}

func TestFilterCandidates_UnembeddableCandidateIsDropped(t *testing.T) {
	now := time.Now()
	fb := &fakeFeedbackRepo{
		liked: []dto.RatedArticle{ratedArticle(100, "A", now)},
	}
	// Candidate 2 has no vector available.
	emb := &fakeEmbedder{vecs: map[uint][]float64{
		100: {1, 0},
		1:   {1, 0},
	}}
	svc := newSimilarityFixture(t, config.Filtering{SimilarityThreshold: 0.0}, fb, emb)

	got, err := svc.FilterCandidates(context.Background(), []entity.Article{
		{ID: 1, Source: "A"},
		{ID: 2, Source: "B"},
	})
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, uint(1), got[0].Article.ID)
}

func TestFilterCandidates_SortedBestFirst(t *testing.T) {
	now := time.Now()
	fb := &fakeFeedbackRepo{
		liked: []dto.RatedArticle{ratedArticle(100, "A", now)},
	}
	emb := &fakeEmbedder{vecs: map[uint][]float64{
		100: {1, 0},
		1:   {0.5, 0.5},
		2:   {1, 0},
	}}
	svc := newSimilarityFixture(t, config.Filtering{SimilarityThreshold: 0.0}, fb, emb)

	got, err := svc.FilterCandidates(context.Background(), []entity.Article{
		{ID: 1, Source: "A"},
		{ID: 2, Source: "A"},
	})
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].Article.ID)
	assert.Equal(t, uint(1), got[1].Article.ID)
}
