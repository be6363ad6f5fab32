package service

import (
	"context"
	"fmt"

	"rss-ai-curator/internal/curator/config"
	"rss-ai-curator/pkg/common"
	"rss-ai-curator/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
)

// SchedulerService publishes fetch, digest and cleanup tasks onto the Redis
// stream on their configured cron schedules. Execution happens in the
// consumer; the scheduler only enqueues.
type SchedulerService interface {
	Start(ctx context.Context) error
	Stop()
}

// NewSchedulerService creates a new scheduler service.
func NewSchedulerService(cfg *config.Config, log *logger.Logger, redisClient *redis.Client) SchedulerService {
	return &schedulerService{
		cfg:         cfg,
		logger:      log,
		redisClient: redisClient,
		cron: cron.New(cron.WithParser(
			cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor),
		)),
	}
}

type schedulerService struct {
	cfg         *config.Config
	logger      *logger.Logger
	redisClient *redis.Client
	cron        *cron.Cron
}

func (s *schedulerService) Start(ctx context.Context) error {
	entries := map[string]string{
		common.TaskFetch:   s.cfg.Scheduler.FetchCron,
		common.TaskDigest:  s.cfg.Scheduler.DigestCron,
		common.TaskCleanup: s.cfg.Scheduler.CleanupCron,
	}

	for task, expr := range entries {
		if expr == "" {
			s.logger.Warn("No cron expression configured, task disabled",
				logger.StringField("task", task),
			)
			continue
		}
		task := task
		if _, err := s.cron.AddFunc(expr, func() {
			s.publishTask(ctx, task)
		}); err != nil {
			return fmt.Errorf("failed to register cron for task %s: %w", task, err)
		}
		s.logger.Info("Scheduled task",
			logger.StringField("task", task),
			logger.StringField("cron", expr),
		)
	}

	s.cron.Start()
	return nil
}

func (s *schedulerService) Stop() {
	<-s.cron.Stop().Done()
	s.logger.Info("Scheduler stopped")
}

func (s *schedulerService) publishTask(ctx context.Context, task string) {
	if err := s.redisClient.XAdd(ctx, &redis.XAddArgs{
		Stream: common.RedisStreamCuratorTask,
		Values: map[string]interface{}{"task": task},
		MaxLen: s.cfg.Redis.StreamMaxLen,
	}).Err(); err != nil {
		s.logger.Error("Failed to enqueue task",
			logger.StringField("task", task),
			logger.ErrorField(err),
		)
		return
	}
	s.logger.Info("Task published", logger.StringField("task", task))
}
