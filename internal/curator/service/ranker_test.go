package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeAIRepo delegates to a scripted scoring function.
type fakeAIRepo struct {
	score func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error)
	calls int
}

func (f *fakeAIRepo) ScoreArticles(_ context.Context, req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
	f.calls++
	return f.score(req)
}

func (f *fakeAIRepo) Provider() string { return "fake" }
func (f *fakeAIRepo) Model() string    { return "fake-model" }

type fakeRankingRepo struct {
	rows []entity.LLMRanking
}

func (f *fakeRankingRepo) CreateBatch(_ context.Context, rankings []entity.LLMRanking) error {
	f.rows = append(f.rows, rankings...)
	return nil
}

func (f *fakeRankingRepo) Count(_ context.Context) (int64, error) {
	return int64(len(f.rows)), nil
}

func newRankerFixture(t *testing.T, llm config.LLM, ai *fakeAIRepo, store *fakeRankingRepo) RankerService {
	t.Helper()
	cfg := &config.Config{LLM: llm, LLMContext: config.LLMContext{SnippetMaxChars: 500}}
	return NewRankerService(cfg, newTestLogger(t), ai, store)
}

func scoredArticles(n int) []dto.ScoredArticle {
	out := make([]dto.ScoredArticle, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, dto.ScoredArticle{
			Article: entity.Article{ID: uint(i + 1), Title: "t", Source: "A", Content: "c"},
		})
	}
	return out
}

func TestRankArticles_MapsScoresByIndex(t *testing.T) {
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		return &dto.ScoreArticlesResult{Scores: []dto.ArticleScore{
			{Index: 2, Score: 9.0, Reasoning: "strong match"},
			{Index: 1, Score: 6.5, Reasoning: "weak match"},
		}}, nil
	}}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 1}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(2), nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, uint(2), got[0].Article.ID)
	assert.Equal(t, 9.0, got[0].Score)
	assert.Equal(t, uint(1), got[1].Article.ID)
	assert.Equal(t, 6.5, got[1].Score)

	require.Len(t, store.rows, 2)
	assert.Equal(t, "fake", store.rows[0].Provider)
	assert.Equal(t, "fake-model", store.rows[0].Model)
}

func TestRankArticles_DropsInvalidEntries(t *testing.T) {
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		return &dto.ScoreArticlesResult{Scores: []dto.ArticleScore{
			{Index: 1, Score: 8.0},
			{Index: 1, Score: 5.0},  // duplicate, dropped
			{Index: 7, Score: 6.0},  // out of range, dropped
			{Index: 2, Score: 14.0}, // outside 0-10, dropped
			{Index: 3, Score: 0.0},  // boundary score, kept
		}}, nil
	}}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 1}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(3), nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.Equal(t, uint(1), got[0].Article.ID)
	assert.Equal(t, 8.0, got[0].Score)
	assert.Equal(t, uint(3), got[1].Article.ID)
}

func TestRankArticles_SplitsOversizedBatch(t *testing.T) {
	ai := &fakeAIRepo{}
	ai.score = func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		if len(req.Candidates) > 1 {
			return nil, repository.ErrBatchTooLarge
		}
		return &dto.ScoreArticlesResult{Scores: []dto.ArticleScore{
			{Index: 1, Score: 7.0},
		}}, nil
	}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 1}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(4), nil, nil)
	require.NoError(t, err)

	assert.Len(t, got, 4)
	// 1 rejected call for 4, 2 for the halves of 2, then 4 singles.
	assert.Equal(t, 7, ai.calls)
}

func TestRankArticles_DropsSingleOversizedArticle(t *testing.T) {
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		return nil, repository.ErrBatchTooLarge
	}}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 3, RetryBaseDelay: time.Millisecond}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(1), nil, nil)
	require.NoError(t, err)

	assert.Empty(t, got)
	// Oversized is not retried.
	assert.Equal(t, 1, ai.calls)
	assert.Empty(t, store.rows)
}

func TestRankArticles_RetriesTransientFailure(t *testing.T) {
	failures := 0
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		if failures < 2 {
			failures++
			return nil, errors.New("upstream hiccup")
		}
		return &dto.ScoreArticlesResult{Scores: []dto.ArticleScore{{Index: 1, Score: 5.0}}}, nil
	}}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 3, RetryBaseDelay: time.Millisecond}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(1), nil, nil)
	require.NoError(t, err)

	require.Len(t, got, 1)
	assert.Equal(t, 3, ai.calls)
}

func TestRankArticles_FailedBatchIsSkippedNotFatal(t *testing.T) {
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		return nil, errors.New("permanently down")
	}}
	store := &fakeRankingRepo{}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 2, RetryBaseDelay: time.Millisecond}, ai, store)

	got, err := svc.RankArticles(context.Background(), scoredArticles(3), nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRankArticles_EmptyInput(t *testing.T) {
	ai := &fakeAIRepo{score: func(req *dto.ScoreArticlesRequest) (*dto.ScoreArticlesResult, error) {
		t.Fatal("should not be called")
		return nil, nil
	}}
	svc := newRankerFixture(t, config.LLM{MaxBatchSize: 10, MaxRetries: 1}, ai, &fakeRankingRepo{})

	got, err := svc.RankArticles(context.Background(), nil, nil, nil)
	require.NoError(t, err)
	assert.Empty(t, got)
}
