package config

import (
	"fmt"
	"time"

	"rss-ai-curator/pkg/config"
)

// Feed identifies one configured RSS source.
type Feed struct {
	Name string `mapstructure:"name"`
	URL  string `mapstructure:"url"`
}

// Embeddings holds the configuration for the embedding provider.
type Embeddings struct {
	APIKey              string        `mapstructure:"api_key"`
	Model               string        `mapstructure:"model"`
	BaseURL             string        `mapstructure:"base_url"`
	MaxInputChars       int           `mapstructure:"max_input_chars"`
	MaxRequestPerMinute int           `mapstructure:"max_request_per_minute"`
	MaxConcurrent       int           `mapstructure:"max_concurrent"`
	MaxRetries          int           `mapstructure:"max_retries"`
	RetryBaseDelay      time.Duration `mapstructure:"retry_base_delay"`
}

// Gemini holds the configuration for the Gemini API.
type Gemini struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// OpenAI holds the configuration for the OpenAI chat completions API.
type OpenAI struct {
	APIKey              string `mapstructure:"api_key"`
	Model               string `mapstructure:"model"`
	BaseURL             string `mapstructure:"base_url"`
	MaxRequestPerMinute int    `mapstructure:"max_request_per_minute"`
	MaxTokenPerMinute   int    `mapstructure:"max_token_per_minute"`
}

// AI selects the scoring provider.
type AI struct {
	Provider string `mapstructure:"provider"`
}

// LLM holds scoring-call behavior shared across providers.
type LLM struct {
	MaxBatchSize   int           `mapstructure:"max_batch_size"`
	MaxRetries     int           `mapstructure:"max_retries"`
	RetryBaseDelay time.Duration `mapstructure:"retry_base_delay"`
}

// Filtering holds the selection-pipeline thresholds and sizes.
type Filtering struct {
	SimilarityThreshold  float64 `mapstructure:"similarity_threshold"`
	DislikePenalty       float64 `mapstructure:"dislike_penalty"`
	TopCandidatesForLLM  int     `mapstructure:"top_candidates_for_llm"`
	MinScoreToShow       float64 `mapstructure:"min_score_to_show"`
	DigestSize           int     `mapstructure:"digest_size"`
	CandidateMaxAgeHours int     `mapstructure:"candidate_max_age_hours"`
}

// HybridWeights holds the strategy mix for the hybrid context selector.
type HybridWeights struct {
	Recent  float64 `mapstructure:"recent"`
	Similar float64 `mapstructure:"similar"`
	Diverse float64 `mapstructure:"diverse"`
}

// LLMContext bounds the in-context example set handed to the scorer.
type LLMContext struct {
	MaxLikedExamples    int           `mapstructure:"max_liked_examples"`
	MaxDislikedExamples int           `mapstructure:"max_disliked_examples"`
	Strategy            string        `mapstructure:"strategy"`
	SnippetMaxChars     int           `mapstructure:"snippet_max_chars"`
	DiverseClusters     int           `mapstructure:"diverse_clusters"`
	Hybrid              HybridWeights `mapstructure:"hybrid"`
}

// Scheduler holds the cron expressions for the periodic tasks.
type Scheduler struct {
	FetchCron   string `mapstructure:"fetch_cron"`
	DigestCron  string `mapstructure:"digest_cron"`
	CleanupCron string `mapstructure:"cleanup_cron"`
}

// Cleanup holds the retention policy.
type Cleanup struct {
	MaxAgeDays    int `mapstructure:"max_age_days"`
	KeepShownDays int `mapstructure:"keep_shown_days"`
}

// Digest holds delivery behavior.
type Digest struct {
	DeliveryDelay time.Duration `mapstructure:"delivery_delay"`
}

// Telegram holds configuration for the Telegram notifier.
type Telegram struct {
	BotToken string `mapstructure:"bot_token"`
	ChatID   int64  `mapstructure:"chat_id"`
}

// Config holds the full configuration for the curator service.
type Config struct {
	App        config.App      `mapstructure:"app"`
	Logger     config.Logger   `mapstructure:"logger"`
	Database   config.Database `mapstructure:"database"`
	Redis      config.Redis    `mapstructure:"redis"`
	API        config.API      `mapstructure:"api"`
	Feeds      []Feed          `mapstructure:"feeds"`
	Embeddings Embeddings      `mapstructure:"embeddings"`
	Gemini     Gemini          `mapstructure:"gemini"`
	OpenAI     OpenAI          `mapstructure:"openai"`
	AI         AI              `mapstructure:"ai"`
	LLM        LLM             `mapstructure:"llm"`
	Filtering  Filtering       `mapstructure:"filtering"`
	LLMContext LLMContext      `mapstructure:"llm_context"`
	Scheduler  Scheduler       `mapstructure:"scheduler"`
	Cleanup    Cleanup         `mapstructure:"cleanup"`
	Digest     Digest          `mapstructure:"digest"`
	Telegram   Telegram        `mapstructure:"telegram"`
}

var validStrategies = map[string]bool{
	"recent":  true,
	"similar": true,
	"diverse": true,
	"hybrid":  true,
}

// Validate checks the pipeline configuration before any provider call is
// made, so an invalid config fails the run at startup rather than mid-cycle.
func (c *Config) Validate() error {
	f := c.Filtering
	if f.SimilarityThreshold < -1 || f.SimilarityThreshold > 1 {
		return fmt.Errorf("filtering.similarity_threshold must be within [-1, 1], got %f", f.SimilarityThreshold)
	}
	if f.DislikePenalty < 0 {
		return fmt.Errorf("filtering.dislike_penalty must be non-negative, got %f", f.DislikePenalty)
	}
	if f.TopCandidatesForLLM <= 0 {
		return fmt.Errorf("filtering.top_candidates_for_llm must be positive, got %d", f.TopCandidatesForLLM)
	}
	if f.MinScoreToShow < 0 || f.MinScoreToShow > 10 {
		return fmt.Errorf("filtering.min_score_to_show must be within [0, 10], got %f", f.MinScoreToShow)
	}
	if f.DigestSize <= 0 {
		return fmt.Errorf("filtering.digest_size must be positive, got %d", f.DigestSize)
	}

	lc := c.LLMContext
	if !validStrategies[lc.Strategy] {
		return fmt.Errorf("llm_context.strategy %q is unknown (valid: recent, similar, diverse, hybrid)", lc.Strategy)
	}
	if lc.MaxLikedExamples <= 0 || lc.MaxDislikedExamples < 0 {
		return fmt.Errorf("llm_context example caps must be positive (liked) and non-negative (disliked)")
	}
	if lc.Strategy == "hybrid" {
		h := lc.Hybrid
		if h.Recent <= 0 && h.Similar <= 0 && h.Diverse <= 0 {
			return fmt.Errorf("llm_context.hybrid weights must not all be zero")
		}
	}
	if lc.Strategy == "diverse" && lc.DiverseClusters <= 0 {
		return fmt.Errorf("llm_context.diverse_clusters must be positive, got %d", lc.DiverseClusters)
	}

	// Rate limiters divide a minute by these values at construction time.
	if c.Embeddings.MaxRequestPerMinute <= 0 {
		return fmt.Errorf("embeddings.max_request_per_minute must be positive, got %d", c.Embeddings.MaxRequestPerMinute)
	}
	switch c.AI.Provider {
	case "gemini":
		if c.Gemini.MaxRequestPerMinute <= 0 || c.Gemini.MaxTokenPerMinute <= 0 {
			return fmt.Errorf("gemini.max_request_per_minute and gemini.max_token_per_minute must be positive")
		}
	case "openai":
		if c.OpenAI.MaxRequestPerMinute <= 0 || c.OpenAI.MaxTokenPerMinute <= 0 {
			return fmt.Errorf("openai.max_request_per_minute and openai.max_token_per_minute must be positive")
		}
	default:
		return fmt.Errorf("ai.provider %q is unknown (valid: gemini, openai)", c.AI.Provider)
	}

	return nil
}

// Load loads the curator configuration from the given path.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := config.Load(path, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
