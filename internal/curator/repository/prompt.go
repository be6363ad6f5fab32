package repository

import (
	"fmt"
	"strings"

	"rss-ai-curator/internal/curator/dto"
)

// BuildScoreArticlesPrompt renders the batch scoring prompt: the user's
// liked/disliked examples, the numbered candidates, and the output-format
// instructions. Candidates keep their request order so the model's index
// field maps back unambiguously.
func BuildScoreArticlesPrompt(req *dto.ScoreArticlesRequest) string {
	var b strings.Builder

	b.WriteString("You are a personalized news curator. ")
	b.WriteString("Rate how relevant each new article is to the user based on their past preferences.\n\n")

	if len(req.Liked) > 0 {
		b.WriteString("USER'S LIKED ARTICLES:\n")
		for i, ex := range req.Liked {
			writeExample(&b, i+1, ex)
		}
		b.WriteString("\n")
	}

	if len(req.Disliked) > 0 {
		b.WriteString("USER'S DISLIKED ARTICLES:\n")
		for i, ex := range req.Disliked {
			writeExample(&b, i+1, ex)
		}
		b.WriteString("\n")
	}

	b.WriteString("NEW ARTICLES TO RATE:\n")
	for _, c := range req.Candidates {
		b.WriteString(fmt.Sprintf("%d. Title: %s\n", c.Index, c.Title))
		b.WriteString(fmt.Sprintf("   Source: %s\n", c.Source))
		b.WriteString(fmt.Sprintf("   Content: %s\n\n", c.Content))
	}

	b.WriteString("TASK:\n")
	b.WriteString("Rate every article above from 0 to 10 based on the user's preferences, ")
	b.WriteString("with one concise sentence (max 20 words) of reasoning per article.\n\n")
	b.WriteString("Respond with ONLY a JSON array, one object per article, in this exact shape:\n")
	b.WriteString(`[{"index": 1, "score": 7.5, "reasoning": "..."}]` + "\n")
	b.WriteString("The index field must echo the article number shown above. Do not skip articles.")

	return b.String()
}

func writeExample(b *strings.Builder, n int, ex dto.ContextExample) {
	b.WriteString(fmt.Sprintf("%d. Title: %s\n", n, ex.Title))
	b.WriteString(fmt.Sprintf("   Summary: %s\n", ex.Snippet))
	b.WriteString(fmt.Sprintf("   Source: %s\n", ex.Source))
}
