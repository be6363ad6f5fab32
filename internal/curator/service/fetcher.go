package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/entity"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"

	"github.com/PuerkitoBio/goquery"
	"github.com/mauidude/go-readability"
	"github.com/mmcdole/gofeed"
)

const maxConcurrentFeeds = 4

// FetcherService ingests the configured RSS feeds. A feed that fails to
// parse is logged and skipped; one broken feed never blocks the others.
// Dedup happens at insert time via the content hash.
type FetcherService interface {
	FetchAll(ctx context.Context) (*dto.FetchResult, error)
	FetchFullContent(ctx context.Context, articleURL string) (string, error)
}

// NewFetcherService creates a new instance of FetcherService.
func NewFetcherService(cfg *config.Config, log *logger.Logger, articleRepo repository.ArticleRepository) FetcherService {
	return &fetcherService{
		cfg:         cfg,
		logger:      log,
		articleRepo: articleRepo,
		parser:      gofeed.NewParser(),
		client:      &http.Client{Timeout: 30 * time.Second},
	}
}

type fetcherService struct {
	cfg         *config.Config
	logger      *logger.Logger
	articleRepo repository.ArticleRepository
	parser      *gofeed.Parser
	client      *http.Client
}

// FetchAll pulls every configured feed concurrently and stores the new
// items.
func (s *fetcherService) FetchAll(ctx context.Context) (*dto.FetchResult, error) {
	result := &dto.FetchResult{Feeds: len(s.cfg.Feeds)}
	var mu sync.Mutex
	var wg sync.WaitGroup
	sem := make(chan struct{}, maxConcurrentFeeds)

	for _, feed := range s.cfg.Feeds {
		if !utils.ShouldContinue(ctx, s.logger) {
			break
		}
		feed := feed
		wg.Add(1)
		sem <- struct{}{}
		utils.GoSafe(func() {
			defer wg.Done()
			defer func() { <-sem }()

			items, inserted, err := s.fetchFeed(ctx, feed)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				result.FailedFeeds++
				s.logger.Error("Failed to fetch feed",
					logger.StringField("feed", feed.Name),
					logger.ErrorField(err),
				)
				return
			}
			result.Items += items
			result.NewArticles += inserted
		})
	}
	wg.Wait()

	s.logger.Info("Fetch cycle complete",
		logger.IntField("feeds", result.Feeds),
		logger.IntField("failed_feeds", result.FailedFeeds),
		logger.IntField("items", result.Items),
		logger.IntField("new_articles", result.NewArticles),
	)
	return result, nil
}

func (s *fetcherService) fetchFeed(ctx context.Context, feed config.Feed) (int, int, error) {
	parsed, err := s.parser.ParseURLWithContext(feed.URL, ctx)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to parse feed %s: %w", feed.URL, err)
	}

	inserted := 0
	for _, item := range parsed.Items {
		if item.Link == "" || item.Title == "" {
			continue
		}

		content := s.extractContent(item)
		article := entity.Article{
			URL:         item.Link,
			Title:       strings.TrimSpace(item.Title),
			Content:     content,
			Summary:     cleanHTML(item.Description),
			Source:      feed.Name,
			PublishedAt: item.PublishedParsed,
			ContentHash: contentHash(item.Title, content),
		}

		ok, err := s.articleRepo.CreateIgnoreConflict(ctx, &article)
		if err != nil {
			s.logger.Warn("Failed to store article",
				logger.StringField("url", item.Link),
				logger.ErrorField(err),
			)
			continue
		}
		if ok {
			inserted++
		}
	}
	return len(parsed.Items), inserted, nil
}

// extractContent prefers the full content element over the description and
// strips markup from whichever is present.
func (s *fetcherService) extractContent(item *gofeed.Item) string {
	raw := item.Content
	if raw == "" {
		raw = item.Description
	}
	return cleanHTML(raw)
}

// FetchFullContent downloads an article page and extracts its readable body,
// for feeds that only ship a teaser in the RSS item.
func (s *fetcherService) FetchFullContent(ctx context.Context, articleURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", articleURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to fetch article page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("received non-OK response fetching article page: %d", resp.StatusCode)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to parse article page: %w", err)
	}
	html, err := doc.Html()
	if err != nil {
		return "", fmt.Errorf("failed to serialize article page: %w", err)
	}

	readable, err := readability.NewDocument(html)
	if err != nil {
		return "", fmt.Errorf("failed to extract readable content: %w", err)
	}
	return cleanHTML(readable.Content()), nil
}

// cleanHTML strips tags, scripts and styles, returning normalized text.
func cleanHTML(raw string) string {
	if raw == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err != nil {
		return strings.TrimSpace(raw)
	}
	doc.Find("script, style").Remove()
	text := doc.Text()
	return strings.Join(strings.Fields(text), " ")
}

// contentHash is the dedup key: title plus normalized content, so the same
// story republished under a different URL still collapses to one row.
func contentHash(title, content string) string {
	h := sha256.Sum256([]byte(strings.TrimSpace(title) + "\n" + content))
	return hex.EncodeToString(h[:])
}
