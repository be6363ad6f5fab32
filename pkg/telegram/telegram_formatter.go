package telegram

import (
	"fmt"
	"strings"
	"time"

	"rss-ai-curator/pkg/utils"
)

// ArticleMessage carries the fields needed to render one digest entry.
type ArticleMessage struct {
	Title       string
	Source      string
	URL         string
	Summary     string
	Score       float64
	Reasoning   string
	PublishedAt *time.Time
}

const maxSummaryLen = 300

// FormatDigestHeader renders the header line sent before the digest items.
func FormatDigestHeader(count int) string {
	return fmt.Sprintf("📬 *Your digest* — %d article(s) picked for you", count)
}

// FormatEmptyDigest renders the message for a cycle with nothing to deliver.
// Distinct from a failed run: the pipeline completed, nothing qualified.
func FormatEmptyDigest() string {
	return "📭 No qualifying articles this cycle."
}

// FormatArticleForTelegram renders a single ranked article as a Markdown
// message for Telegram.
func FormatArticleForTelegram(a ArticleMessage) string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("*%s*\n", escapeMarkdown(a.Title)))
	b.WriteString(fmt.Sprintf("📡 %s", escapeMarkdown(a.Source)))
	if a.PublishedAt != nil {
		b.WriteString(fmt.Sprintf(" · %s", a.PublishedAt.Format("2 Jan 2006")))
	}
	b.WriteString("\n\n")

	if a.Summary != "" {
		b.WriteString(escapeMarkdown(utils.TruncateText(a.Summary, maxSummaryLen)))
		b.WriteString("\n\n")
	}

	b.WriteString(fmt.Sprintf("⭐ *%.1f/10* — %s\n", a.Score, escapeMarkdown(a.Reasoning)))
	if a.URL != "" {
		b.WriteString(fmt.Sprintf("\n🔗 %s", a.URL))
	}

	return b.String()
}

func escapeMarkdown(s string) string {
	replacer := strings.NewReplacer(
		"_", "\\_",
		"*", "\\*",
		"[", "\\[",
		"`", "\\`",
	)
	return replacer.Replace(s)
}
