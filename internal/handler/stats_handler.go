package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/kuldeepjain-work/URLShortner/internal/domain"
	"github.com/kuldeepjain-work/URLShortner/internal/logger"
	"github.com/kuldeepjain-work/URLShortner/pkg/response"
)

type StatsService interface {
	GetStats(ctx context.Context, skip, limit int) (*domain.URLStats, error)
}

type StatsHandler struct {
	service StatsService
}

func NewStatsHandler(service StatsService) *StatsHandler {
	return &StatsHandler{service: service}
}

func (h *StatsHandler) GetStats(c *gin.Context) {
	skip, err := strconv.Atoi(c.DefaultQuery("skip", "0"))
	if err != nil || skip < 0 {
		response.BadRequest(c, "skip must be a non-negative integer")
		return
	}

	limit, err := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if err != nil || limit < 1 || limit > 100 {
		response.BadRequest(c, "limit must be between 1 and 100")
		return
	}

	stats, err := h.service.GetStats(c.Request.Context(), skip, limit)
	if err != nil {
		logger.FromContext(c.Request.Context()).Error("stats failed", "error", err)
		response.InternalServerError(c, "failed to load stats")
		return
	}

	response.OK(c, "stats", stats)
}
