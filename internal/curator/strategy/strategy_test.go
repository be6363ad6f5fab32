package strategy

import (
	"testing"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New("error", "console")
	require.NoError(t, err)
	return log
}

func item(id uint, ratedAgo time.Duration, vec []float64) PoolItem {
	return PoolItem{
		Article: entity.Article{ID: id, Title: "t", Source: "A"},
		Vector:  vec,
		RatedAt: time.Now().Add(-ratedAgo),
	}
}

func ids(items []PoolItem) []uint {
	out := make([]uint, 0, len(items))
	for _, it := range items {
		out = append(out, it.Article.ID)
	}
	return out
}

func TestRecentStrategy_KeepsNewestRatings(t *testing.T) {
	s := NewRecentStrategy()

	pool := []PoolItem{
		item(1, 3*time.Hour, nil),
		item(2, 1*time.Hour, nil),
		item(3, 2*time.Hour, nil),
	}
	got := s.Select(pool, nil, 2)

	assert.Equal(t, []uint{2, 3}, ids(got))
}

func TestRecentStrategy_LimitLargerThanPool(t *testing.T) {
	s := NewRecentStrategy()
	got := s.Select([]PoolItem{item(1, time.Hour, nil)}, nil, 10)
	assert.Len(t, got, 1)
}

func TestSimilarStrategy_OrdersByQueryCloseness(t *testing.T) {
	s := NewSimilarStrategy()

	pool := []PoolItem{
		item(1, time.Hour, []float64{0, 1}),
		item(2, time.Hour, []float64{1, 0}),
		item(3, time.Hour, []float64{0.7, 0.7}),
	}
	got := s.Select(pool, []float64{1, 0}, 2)

	assert.Equal(t, []uint{2, 3}, ids(got))
}

func TestSimilarStrategy_FallsBackToRecencyWithoutQuery(t *testing.T) {
	s := NewSimilarStrategy()

	pool := []PoolItem{
		item(1, 2*time.Hour, []float64{1, 0}),
		item(2, 1*time.Hour, []float64{0, 1}),
	}
	got := s.Select(pool, nil, 1)

	assert.Equal(t, []uint{2}, ids(got))
}

func TestDiverseStrategy_OnePerCluster(t *testing.T) {
	s := NewDiverseStrategy(2)

	// Two tight clusters around orthogonal directions.
	pool := []PoolItem{
		item(1, time.Hour, []float64{1, 0.01}),
		item(2, 2*time.Hour, []float64{1, 0.02}),
		item(3, time.Hour, []float64{0.01, 1}),
		item(4, 2*time.Hour, []float64{0.02, 1}),
	}
	got := s.Select(pool, nil, 2)
	require.Len(t, got, 2)

	// One representative from each cluster.
	first := got[0].Article.ID
	second := got[1].Article.ID
	assert.True(t, (first <= 2) != (second <= 2), "representatives must come from different clusters")
}

func TestDiverseStrategy_Deterministic(t *testing.T) {
	s := NewDiverseStrategy(3)

	pool := []PoolItem{
		item(1, time.Hour, []float64{1, 0, 0}),
		item(2, time.Hour, []float64{0, 1, 0}),
		item(3, time.Hour, []float64{0, 0, 1}),
		item(4, time.Hour, []float64{0.9, 0.1, 0}),
		item(5, time.Hour, []float64{0, 0.9, 0.1}),
	}

	first := ids(s.Select(pool, nil, 3))
	for i := 0; i < 5; i++ {
		assert.Equal(t, first, ids(s.Select(pool, nil, 3)))
	}
}

func TestDiverseStrategy_NoVectorsFallsBackToRecency(t *testing.T) {
	s := NewDiverseStrategy(2)

	pool := []PoolItem{
		item(1, 2*time.Hour, nil),
		item(2, time.Hour, nil),
	}
	got := s.Select(pool, nil, 1)
	assert.Equal(t, []uint{2}, ids(got))
}

func TestHybridStrategy_FillsLimitWithoutDuplicates(t *testing.T) {
	s := NewHybridStrategy(config.HybridWeights{Recent: 0.4, Similar: 0.4, Diverse: 0.2}, 2, newTestLogger(t))

	pool := []PoolItem{
		item(1, 1*time.Hour, []float64{1, 0}),
		item(2, 2*time.Hour, []float64{0, 1}),
		item(3, 3*time.Hour, []float64{0.7, 0.7}),
		item(4, 4*time.Hour, []float64{0.5, 0.8}),
	}
	got := s.Select(pool, []float64{1, 0}, 3)

	require.Len(t, got, 3)
	seen := map[uint]bool{}
	for _, id := range ids(got) {
		assert.False(t, seen[id], "duplicate article in hybrid selection")
		seen[id] = true
	}
}

func TestNewContextStrategy_UnknownName(t *testing.T) {
	cfg := &config.Config{LLMContext: config.LLMContext{Strategy: "wat"}}
	_, err := NewContextStrategy(cfg, newTestLogger(t))
	assert.Error(t, err)
}

func TestNewContextStrategy_SelectsConfigured(t *testing.T) {
	for _, name := range []string{TypeRecent, TypeSimilar, TypeDiverse, TypeHybrid} {
		cfg := &config.Config{LLMContext: config.LLMContext{Strategy: name, DiverseClusters: 2}}
		s, err := NewContextStrategy(cfg, newTestLogger(t))
		require.NoError(t, err)
		assert.Equal(t, name, s.GetType())
	}
}
