package entity

import "time"

// Rating polarity values.
const (
	RatingLike    = "like"
	RatingDislike = "dislike"
)

// Feedback is one rating event for an article. Multiple rows may reference
// the same article when the user changes their mind; the most recent row per
// article is the authoritative training signal.
type Feedback struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	ArticleID uint      `gorm:"not null;index" json:"article_id"`
	Rating    string    `gorm:"not null" json:"rating"`
	CreatedAt time.Time `gorm:"autoCreateTime;index" json:"created_at"`
}

// TableName specifies the table name for the Feedback model.
func (Feedback) TableName() string {
	return "feedback"
}
