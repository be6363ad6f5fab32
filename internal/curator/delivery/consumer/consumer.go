package consumer

import (
	"context"
	"sync"
	"time"

	"rss-ai-curator/internal/curator/service"
	"rss-ai-curator/pkg/common"
	"rss-ai-curator/pkg/logger"
	"rss-ai-curator/pkg/utils"

	"github.com/redis/go-redis/v9"
)

const taskTimeout = 15 * time.Minute

// RedisConsumer manages the consumption of curator tasks from the Redis
// stream.
type RedisConsumer struct {
	redisClient *redis.Client
	taskService service.TaskService
	logger      *logger.Logger
	stopChan    chan struct{}
	wg          sync.WaitGroup
}

// NewRedisConsumer creates a new RedisConsumer.
func NewRedisConsumer(redisClient *redis.Client, taskService service.TaskService, log *logger.Logger) *RedisConsumer {
	return &RedisConsumer{
		redisClient: redisClient,
		taskService: taskService,
		logger:      log,
		stopChan:    make(chan struct{}),
	}
}

// Start creates the consumer group if needed and begins the processing loop.
func (c *RedisConsumer) Start(ctx context.Context) error {
	err := c.redisClient.XGroupCreateMkStream(ctx, common.RedisStreamCuratorTask, common.RedisStreamGroup, "$").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		return err
	}

	c.logger.Info("Redis consumer started")
	c.wg.Add(1)
	utils.GoSafe(func() {
		defer c.wg.Done()
		for {
			select {
			case <-ctx.Done():
				c.logger.Info("Redis consumer stopping due to context cancellation")
				return
			case <-c.stopChan:
				c.logger.Info("Redis consumer stopping")
				return
			default:
				ctxTimeout, cancel := context.WithTimeout(ctx, taskTimeout)
				c.taskService.ProcessTask(ctxTimeout)
				cancel()
			}
		}
	})
	return nil
}

// Stop gracefully shuts down the consumer.
func (c *RedisConsumer) Stop() {
	close(c.stopChan)
	c.wg.Wait()
	c.logger.Info("Redis consumer stopped")
}
