package http

import (
	"net/http"
	"strconv"

	"rss-ai-curator/internal/curator/dto"
	"rss-ai-curator/internal/curator/service"
	"rss-ai-curator/pkg/common"
	"rss-ai-curator/pkg/logger"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"
)

// CuratorHandler handles HTTP requests for the curator service: manual task
// triggers, feedback recording, and statistics.
type CuratorHandler struct {
	redisClient       *redis.Client
	preferenceService service.PreferenceService
	logger            *logger.Logger
}

// NewCuratorHandler creates a new CuratorHandler.
func NewCuratorHandler(redisClient *redis.Client, preferenceService service.PreferenceService, log *logger.Logger) *CuratorHandler {
	return &CuratorHandler{
		redisClient:       redisClient,
		preferenceService: preferenceService,
		logger:            log,
	}
}

// RegisterRoutes registers the curator routes to the Echo group.
func (h *CuratorHandler) RegisterRoutes(g *echo.Group) {
	g.POST("/tasks/:type", h.TriggerTask)
	g.POST("/articles/:id/feedback", h.RecordFeedback)
	g.GET("/stats", h.GetStats)
}

var triggerableTasks = map[string]bool{
	common.TaskFetch:   true,
	common.TaskDigest:  true,
	common.TaskCleanup: true,
}

// TriggerTask enqueues one task for the consumer, same path as a scheduled
// run.
func (h *CuratorHandler) TriggerTask(c echo.Context) error {
	task := c.Param("type")
	if !triggerableTasks[task] {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "unknown task type"})
	}

	if err := h.redisClient.XAdd(c.Request().Context(), &redis.XAddArgs{
		Stream: common.RedisStreamCuratorTask,
		Values: map[string]interface{}{"task": task},
	}).Err(); err != nil {
		h.logger.Error("Failed to enqueue task", logger.ErrorField(err))
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusAccepted, echo.Map{"task": task, "status": "queued"})
}

// RecordFeedback stores a like/dislike rating for an article.
func (h *CuratorHandler) RecordFeedback(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid article ID"})
	}

	var req dto.FeedbackRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "Invalid request payload"})
	}

	if err := h.preferenceService.RecordFeedback(c.Request().Context(), uint(id), req.Rating); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}

	return c.JSON(http.StatusCreated, echo.Map{"article_id": id, "rating": req.Rating})
}

// GetStats returns store-level counters.
func (h *CuratorHandler) GetStats(c echo.Context) error {
	stats, err := h.preferenceService.GetStats(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, stats)
}
