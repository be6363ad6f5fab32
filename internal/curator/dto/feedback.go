package dto

// FeedbackRequest is the payload for rating an article.
type FeedbackRequest struct {
	Rating string `json:"rating"`
}
