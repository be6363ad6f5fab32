package repository

import (
	"testing"

	"rss-ai-curator/internal/curator/dto"

	"github.com/stretchr/testify/assert"
)

func TestBuildScoreArticlesPrompt_IncludesCandidatesWithIndices(t *testing.T) {
	prompt := BuildScoreArticlesPrompt(&dto.ScoreArticlesRequest{
		Candidates: []dto.ScoreCandidate{
			{Index: 1, Title: "First Title", Source: "A", Content: "first body"},
			{Index: 2, Title: "Second Title", Source: "B", Content: "second body"},
		},
	})

	assert.Contains(t, prompt, "1. Title: First Title")
	assert.Contains(t, prompt, "2. Title: Second Title")
	assert.Contains(t, prompt, `"index"`)
	assert.Contains(t, prompt, "JSON array")
}

func TestBuildScoreArticlesPrompt_OmitsEmptyExampleSections(t *testing.T) {
	prompt := BuildScoreArticlesPrompt(&dto.ScoreArticlesRequest{
		Candidates: []dto.ScoreCandidate{{Index: 1, Title: "T", Source: "A", Content: "c"}},
	})

	assert.NotContains(t, prompt, "LIKED ARTICLES")
	assert.NotContains(t, prompt, "DISLIKED ARTICLES")
}

func TestBuildScoreArticlesPrompt_RendersExamples(t *testing.T) {
	prompt := BuildScoreArticlesPrompt(&dto.ScoreArticlesRequest{
		Candidates: []dto.ScoreCandidate{{Index: 1, Title: "T", Source: "A", Content: "c"}},
		Liked: []dto.ContextExample{
			{Title: "Loved This", Snippet: "great read", Source: "A"},
		},
		Disliked: []dto.ContextExample{
			{Title: "Hated This", Snippet: "clickbait", Source: "B"},
		},
	})

	assert.Contains(t, prompt, "USER'S LIKED ARTICLES")
	assert.Contains(t, prompt, "Loved This")
	assert.Contains(t, prompt, "USER'S DISLIKED ARTICLES")
	assert.Contains(t, prompt, "Hated This")
}
