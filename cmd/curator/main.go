package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/internal/curator/delivery/consumer"
	delivery "rss-ai-curator/internal/curator/delivery/http"
	"rss-ai-curator/internal/curator/repository"
	"rss-ai-curator/internal/curator/service"
	"rss-ai-curator/internal/curator/strategy"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/postgres"
	"rss-ai-curator/pkg/redis"
	"rss-ai-curator/pkg/telegram"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"google.golang.org/genai"
)

var configPath string

// app holds the wired dependency graph shared by all commands.
type app struct {
	cfg               *config.Config
	logger            *logger.Logger
	db                *postgres.DB
	fetcherService    service.FetcherService
	digestService     service.DigestService
	cleanupService    service.CleanupService
	preferenceService service.PreferenceService
}

func buildApp(ctx context.Context) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	appLogger, err := logger.New(cfg.Logger.Level, cfg.Logger.Encoding)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	db, err := postgres.NewDB(postgres.Config{
		Host:            cfg.Database.Host,
		Port:            cfg.Database.Port,
		User:            cfg.Database.User,
		Password:        cfg.Database.Password,
		DBName:          cfg.Database.DBName,
		SSLMode:         cfg.Database.SSLMode,
		TimeZone:        cfg.Database.TimeZone,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
		LogLevel:        cfg.Database.LogLevel,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}

	// Repositories
	articleRepo := repository.NewArticleRepository(db.DB)
	feedbackRepo := repository.NewFeedbackRepository(db.DB)
	rankingRepo := repository.NewRankingRepository(db.DB)
	digestRunRepo := repository.NewDigestRunRepository(db.DB)
	cleanupLogRepo := repository.NewCleanupLogRepository(db.DB)
	embeddingStore := repository.NewEmbeddingStoreRepository(db.DB)
	embeddingProvider := repository.NewOpenAIEmbeddingRepository(cfg, appLogger)

	// AI provider
	var aiRepo repository.AIRepository
	switch cfg.AI.Provider {
	case "gemini":
		genAiClient, err := genai.NewClient(ctx, &genai.ClientConfig{
			APIKey: cfg.Gemini.APIKey,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI client: %w", err)
		}
		aiRepo, err = repository.NewGeminiAIRepository(cfg, appLogger, genAiClient)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize Gemini AI repository: %w", err)
		}
	case "openai":
		aiRepo = repository.NewOpenAIRepository(cfg, appLogger)
	default:
		return nil, fmt.Errorf("invalid AI provider specified in config: %s", cfg.AI.Provider)
	}

	telegramNotifier, err := telegram.NewClient(cfg.Telegram.BotToken, cfg.Telegram.ChatID)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Telegram notifier: %w", err)
	}

	contextStrategy, err := strategy.NewContextStrategy(cfg, appLogger)
	if err != nil {
		return nil, err
	}

	// Services
	embedder := service.NewEmbedderService(cfg, appLogger, embeddingProvider, embeddingStore)
	similarity := service.NewSimilarityService(cfg, appLogger, feedbackRepo, embedder)
	balancer := service.NewBalancerService(appLogger)
	contextSelector := service.NewContextSelectorService(cfg, appLogger, feedbackRepo, embedder, contextStrategy)
	ranker := service.NewRankerService(cfg, appLogger, aiRepo, rankingRepo)

	return &app{
		cfg:            cfg,
		logger:         appLogger,
		db:             db,
		fetcherService: service.NewFetcherService(cfg, appLogger, articleRepo),
		digestService: service.NewDigestService(
			cfg, appLogger,
			articleRepo, digestRunRepo,
			similarity, balancer, contextSelector, ranker, embedder,
			telegramNotifier,
		),
		cleanupService:    service.NewCleanupService(cfg, appLogger, articleRepo, embeddingStore, cleanupLogRepo, feedbackRepo),
		preferenceService: service.NewPreferenceService(appLogger, articleRepo, feedbackRepo, rankingRepo),
	}, nil
}

func (a *app) close() {
	if sqlDB, err := a.db.DB.DB(); err == nil {
		sqlDB.Close()
	}
	_ = a.logger.Sync()
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the curator service with scheduler, consumer and HTTP API",
	Run:   runServe,
}

func runServe(cmd *cobra.Command, args []string) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Failed to start curator service: %v", err)
	}
	defer a.close()

	a.logger.Info("Starting curator service", zap.String("name", a.cfg.App.Name))

	redisClient, err := redis.NewClient(redis.Config{
		Host:     a.cfg.Redis.Host,
		Port:     a.cfg.Redis.Port,
		Password: a.cfg.Redis.Password,
		DB:       a.cfg.Redis.DB,
		PoolSize: a.cfg.Redis.PoolSize,
	})
	if err != nil {
		a.logger.Fatal("Failed to initialize Redis", zap.Error(err))
	}
	defer redisClient.Close()

	taskService := service.NewTaskService(a.logger, redisClient.Client, a.fetcherService, a.digestService, a.cleanupService)
	redisConsumer := consumer.NewRedisConsumer(redisClient.Client, taskService, a.logger)
	if err := redisConsumer.Start(ctx); err != nil {
		a.logger.Fatal("Failed to start Redis consumer", zap.Error(err))
	}

	schedulerSvc := service.NewSchedulerService(a.cfg, a.logger, redisClient.Client)
	if err := schedulerSvc.Start(ctx); err != nil {
		a.logger.Fatal("Failed to start scheduler", zap.Error(err))
	}

	// HTTP API
	e := echo.New()
	e.HideBanner = true

	curatorHandler := delivery.NewCuratorHandler(redisClient.Client, a.preferenceService, a.logger)
	apiV1 := e.Group("/api/v1")
	curatorHandler.RegisterRoutes(apiV1)

	go func() {
		addr := fmt.Sprintf(":%d", a.cfg.API.Port)
		a.logger.Info("HTTP server starting", logger.StringField("address", addr))
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			a.logger.Error("HTTP server failed to start", logger.ErrorField(err))
			cancel()
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case <-quit:
	case <-ctx.Done():
	}

	a.logger.Info("Shutting down curator service...")
	cancel()
	schedulerSvc.Stop()
	redisConsumer.Stop()
	if err := e.Shutdown(context.Background()); err != nil {
		a.logger.Error("HTTP server shutdown failed", logger.ErrorField(err))
	}
	a.logger.Info("Curator service stopped.")
}

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetches all configured feeds once",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app) error {
			result, err := a.fetcherService.FetchAll(ctx)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Runs one digest cycle and delivers it",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app) error {
			result, err := a.digestService.RunDigest(ctx)
			if err != nil {
				return err
			}
			return printJSON(result.Summary)
		})
	},
}

var cleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Runs one retention sweep",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app) error {
			result, err := a.cleanupService.Run(ctx)
			if err != nil {
				return err
			}
			return printJSON(result)
		})
	},
}

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Prints store-level statistics",
	Run: func(cmd *cobra.Command, args []string) {
		runOnce(func(ctx context.Context, a *app) error {
			stats, err := a.preferenceService.GetStats(ctx)
			if err != nil {
				return err
			}
			return printJSON(stats)
		})
	},
}

func runOnce(fn func(ctx context.Context, a *app) error) {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	a, err := buildApp(ctx)
	if err != nil {
		log.Fatalf("Failed to initialize: %v", err)
	}
	defer a.close()

	if err := fn(ctx, a); err != nil {
		a.logger.Fatal("Command failed", zap.Error(err))
	}
}

func printJSON(v interface{}) error {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "curator",
		Short: "A personalized RSS curator that ranks articles with an LLM",
	}

	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "configs/config.yaml", "Path to the configuration file")
	rootCmd.AddCommand(serveCmd, fetchCmd, digestCmd, cleanupCmd, statsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error executing curator CLI: %s\n", err)
		os.Exit(1)
	}
}
