package repository

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"

	"golang.org/x/time/rate"
)

// openAIEmbeddingRepository implements EmbeddingRepository using the OpenAI
// embeddings API.
type openAIEmbeddingRepository struct {
	client         *http.Client
	cfg            *config.Config
	logger         *logger.Logger
	requestLimiter *rate.Limiter
}

// NewOpenAIEmbeddingRepository creates a new instance of openAIEmbeddingRepository.
func NewOpenAIEmbeddingRepository(cfg *config.Config, log *logger.Logger) EmbeddingRepository {
	secondsPerRequest := time.Minute / time.Duration(cfg.Embeddings.MaxRequestPerMinute)
	requestLimiter := rate.NewLimiter(rate.Every(secondsPerRequest), 1)

	return &openAIEmbeddingRepository{
		client: &http.Client{
			Timeout: 60 * time.Second,
		},
		cfg:            cfg,
		logger:         log,
		requestLimiter: requestLimiter,
	}
}

func (r *openAIEmbeddingRepository) Model() string {
	return r.cfg.Embeddings.Model
}

// EmbedText requests an embedding vector for the given text, truncating the
// input to the configured maximum first so an oversized article cannot fail
// the call.
func (r *openAIEmbeddingRepository) EmbedText(ctx context.Context, text string) ([]float64, error) {
	if max := r.cfg.Embeddings.MaxInputChars; max > 0 {
		text = utils.TruncateText(text, max)
	}

	if err := r.requestLimiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("failed to wait for request limit: %w", err)
	}

	payload := dto.EmbeddingAPIReq{
		Input: text,
		Model: r.cfg.Embeddings.Model,
	}
	jsonPayload, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", r.cfg.Embeddings.BaseURL, bytes.NewBuffer(jsonPayload))
	if err != nil {
		return nil, fmt.Errorf("failed to create new http request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", fmt.Sprintf("Bearer %s", r.cfg.Embeddings.APIKey))

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request to embeddings API: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		r.logger.Error("Received non-OK response from embeddings API",
			logger.IntField("status_code", resp.StatusCode),
		)
		return nil, fmt.Errorf("received non-OK response from embeddings API: %d - %s", resp.StatusCode, string(body))
	}

	var embeddingResp dto.EmbeddingAPIRes
	if err := json.NewDecoder(resp.Body).Decode(&embeddingResp); err != nil {
		return nil, fmt.Errorf("failed to decode response body: %w", err)
	}

	if len(embeddingResp.Data) == 0 {
		return nil, fmt.Errorf("invalid response from embeddings API: no data found")
	}

	return embeddingResp.Data[0].Embedding, nil
}
