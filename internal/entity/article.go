package entity

import (
	"time"
)

// Article represents one ingested RSS content item.
//
// ContentHash is unique across all articles and is the ingestion dedup key.
// ShownToUser is monotonic: once true it never reverts through normal
// operation, which is what keeps an article from ever being delivered twice.
type Article struct {
	ID          uint       `gorm:"primaryKey" json:"id"`
	URL         string     `gorm:"unique;not null" json:"url"`
	Title       string     `gorm:"not null" json:"title"`
	Content     string     `json:"content"`
	Summary     string     `json:"summary"`
	Source      string     `gorm:"index" json:"source"`
	PublishedAt *time.Time `json:"published_at,omitempty"`
	FetchedAt   time.Time  `gorm:"autoCreateTime;index" json:"fetched_at"`
	ContentHash string     `gorm:"unique;not null" json:"content_hash"`
	ShownToUser bool       `gorm:"default:false;index" json:"shown_to_user"`
	ShownAt     *time.Time `json:"shown_at,omitempty"`

	Feedback []Feedback   `gorm:"foreignKey:ArticleID" json:"feedback,omitempty"`
	Rankings []LLMRanking `gorm:"foreignKey:ArticleID" json:"rankings,omitempty"`
}

// TableName specifies the table name for the Article model.
func (Article) TableName() string {
	return "articles"
}

// Text returns the title and body combined, the form used for embedding and
// scoring input.
func (a *Article) Text() string {
	if a.Content == "" {
		return a.Title
	}
	return a.Title + "\n\n" + a.Content
}
