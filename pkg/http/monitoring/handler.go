package monitoring

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/Muscledia/gamification-outbox/pkg/core/health"
	"github.com/Muscledia/gamification-outbox/pkg/core/logger"
	"github.com/Muscledia/gamification-outbox/pkg/outbox"
	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
	"go.uber.org/zap"
)

type handler struct {
	readiness  health.ReadinessChecker
	reporter   outbox.Reporter
	deadLetter outbox.DeadLetterManager
	conf       *outbox.Config
}

func newHandler(readiness health.ReadinessChecker, reporter outbox.Reporter, deadLetter outbox.DeadLetterManager, conf *outbox.Config) *handler {
	return &handler{
		readiness:  readiness,
		reporter:   reporter,
		deadLetter: deadLetter,
		conf:       conf,
	}
}

func (h *handler) registerRoutes(engine *gin.Engine) {
	engine.GET("/health/live", h.live)
	engine.GET("/health/ready", h.ready)

	group := engine.Group("/outbox", h.requireEnabled)
	group.GET("/health", h.outboxHealth)
	group.GET("/statistics", h.statistics)
	group.GET("/metrics", h.metrics)
	group.GET("/dead-letters", h.listDeadLetters)
	group.POST("/dead-letters/:id/retry", h.retryDeadLetter)
}

func (h *handler) live(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "UP"})
}

func (h *handler) ready(c *gin.Context) {
	status := h.readiness.GetStatus()
	code := http.StatusOK
	if !status.Ready {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}

// requireEnabled rejects pipeline endpoints when the outbox is switched off:
// there is no backlog to inspect and nothing to re-drive.
func (h *handler) requireEnabled(c *gin.Context) {
	if !h.conf.IsEnabled() {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{"error": "outbox pipeline is disabled"})
		return
	}
	c.Next()
}

func (h *handler) outboxHealth(c *gin.Context) {
	healthView, err := h.reporter.Health(c)
	if err != nil {
		logger.Get(c).Error("failed to compute outbox health", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute outbox health"})
		return
	}

	code := http.StatusOK
	if !healthView.Healthy {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, healthView)
}

func (h *handler) statistics(c *gin.Context) {
	stats, err := h.reporter.Statistics(c)
	if err != nil {
		logger.Get(c).Error("failed to compute outbox statistics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute outbox statistics"})
		return
	}
	c.JSON(http.StatusOK, stats)
}

// metrics flattens the health view into scrape-friendly numeric keys.
func (h *handler) metrics(c *gin.Context) {
	healthView, err := h.reporter.Health(c)
	if err != nil {
		logger.Get(c).Error("failed to compute outbox metrics", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to compute outbox metrics"})
		return
	}

	stats := healthView.Statistics
	c.JSON(http.StatusOK, gin.H{
		"events_pending":      stats.Pending,
		"events_processing":   stats.Processing,
		"events_published":    stats.Published,
		"events_failed":       stats.Failed,
		"events_dead_letter":  stats.DeadLetter,
		"events_success_rate": stats.SuccessRate,
		"publisher_healthy":   boolMetric(healthView.PublisherHealthy),
		"processor_healthy":   boolMetric(healthView.ProcessorHealthy),
	})
}

type deadLetterResponse struct {
	ID           string     `json:"id"`
	EventID      string     `json:"eventId"`
	EventType    string     `json:"eventType"`
	Topic        string     `json:"topic"`
	AttemptCount int        `json:"attemptCount"`
	MaxAttempts  int        `json:"maxAttempts"`
	ErrorMessage string     `json:"errorMessage,omitempty"`
	CreatedAt    time.Time  `json:"createdAt"`
	UpdatedAt    time.Time  `json:"updatedAt"`
	PublishedAt  *time.Time `json:"publishedAt,omitempty"`
}

func (h *handler) listDeadLetters(c *gin.Context) {
	limit, err := strconv.ParseInt(c.DefaultQuery("limit", "100"), 10, 64)
	if err != nil || limit <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "limit must be a positive integer"})
		return
	}

	records, err := h.deadLetter.ListDeadLetters(c, limit)
	if err != nil {
		logger.Get(c).Error("failed to list dead-lettered records", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list dead-lettered records"})
		return
	}

	response := lo.Map(records, func(record outbox.OutboxRecord, _ int) deadLetterResponse {
		return deadLetterResponse{
			ID:           record.ID,
			EventID:      record.EventID,
			EventType:    record.EventType,
			Topic:        record.Topic,
			AttemptCount: record.AttemptCount,
			MaxAttempts:  record.MaxAttempts,
			ErrorMessage: record.ErrorMessage,
			CreatedAt:    record.CreatedAt,
			UpdatedAt:    record.UpdatedAt,
			PublishedAt:  record.PublishedAt,
		}
	})

	c.JSON(http.StatusOK, gin.H{"deadLetters": response, "count": len(response)})
}

func (h *handler) retryDeadLetter(c *gin.Context) {
	id := c.Param("id")

	if err := h.deadLetter.Retry(c, id); err != nil {
		if errors.Is(err, outbox.ErrRecordNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "dead-lettered record not found"})
			return
		}
		logger.Get(c).Error("failed to retry dead-lettered record", zap.String("recordId", id), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to retry dead-lettered record"})
		return
	}

	c.JSON(http.StatusAccepted, gin.H{"id": id, "status": string(outbox.StatusPending)})
}

func boolMetric(b bool) int {
	if b {
		return 1
	}
	return 0
}
