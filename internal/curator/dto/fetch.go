package dto

// FetchResult summarizes one ingestion cycle across all configured feeds.
type FetchResult struct {
	Feeds       int `json:"feeds"`
	FailedFeeds int `json:"failed_feeds"`
	Items       int `json:"items"`
	NewArticles int `json:"new_articles"`
}
