package service

import (
	"context"
	"time"

	"rss-ai-curator/pkg/common"
	"rss-ai-curator/pkg/logger"

	"github.com/redis/go-redis/v9"
)

// TaskService dequeues scheduled tasks from the Redis stream and dispatches
// them to the matching pipeline service.
type TaskService interface {
	ProcessTask(ctx context.Context)
}

// NewTaskService creates a new instance of TaskService.
func NewTaskService(
	log *logger.Logger,
	redisClient *redis.Client,
	fetcher FetcherService,
	digest DigestService,
	cleanup CleanupService,
) TaskService {
	return &taskService{
		logger:      log,
		redisClient: redisClient,
		fetcher:     fetcher,
		digest:      digest,
		cleanup:     cleanup,
	}
}

type taskService struct {
	logger      *logger.Logger
	redisClient *redis.Client
	fetcher     FetcherService
	digest      DigestService
	cleanup     CleanupService
}

// ProcessTask dequeues and executes a single task.
func (s *taskService) ProcessTask(ctx context.Context) {
	streams, err := s.redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
		Group:    common.RedisStreamGroup,
		Consumer: common.RedisStreamConsumer,
		Streams:  []string{common.RedisStreamCuratorTask, ">"},
		Count:    1,
		Block:    2 * time.Second,
		NoAck:    true,
	}).Result()

	if err != nil {
		if err == context.Canceled || err == redis.Nil {
			return
		}
		s.logger.Error("Failed to read from stream", logger.ErrorField(err))
		return
	}

	if len(streams) == 0 || len(streams[0].Messages) == 0 {
		return
	}

	message := streams[0].Messages[0]
	task, ok := message.Values["task"].(string)
	if !ok {
		s.logger.Error("field 'task' not found or not a string in stream message",
			logger.StringField("message_id", message.ID),
		)
		return
	}

	s.logger.Info("Processing task", logger.StringField("task", task))

	switch task {
	case common.TaskFetch:
		if _, err := s.fetcher.FetchAll(ctx); err != nil {
			s.logger.Error("Fetch task failed", logger.ErrorField(err))
		}
	case common.TaskDigest:
		if _, err := s.digest.RunDigest(ctx); err != nil {
			s.logger.Error("Digest task failed", logger.ErrorField(err))
		}
	case common.TaskCleanup:
		if _, err := s.cleanup.Run(ctx); err != nil {
			s.logger.Error("Cleanup task failed", logger.ErrorField(err))
		}
	default:
		s.logger.Error("Unknown task type", logger.StringField("task", task))
	}
}
