package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
)

type HealthHandler struct {
	db *pgxpool.Pool
}

type HealthResponse struct {
	Status   string           `json:"status"`
	Checks   map[string]Check `json:"checks"`
	Metadata Metadata         `json:"metadata"`
}

type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

type Metadata struct {
	Version   string `json:"version"`
	Timestamp string `json:"timestamp"`
}

func NewHealthHandler(db *pgxpool.Pool) *HealthHandler {
	return &HealthHandler{db: db}
}

func (h *HealthHandler) Healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

func (h *HealthHandler) Readyz(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	checks := map[string]Check{
		"database": h.checkDatabase(ctx),
	}

	resp := HealthResponse{
		Status: "up",
		Checks: checks,
		Metadata: Metadata{
			Version:   "1.0.0",
			Timestamp: time.Now().Format(time.RFC3339),
		},
	}

	if checks["database"].Status != "up" {
		resp.Status = "down"
		c.JSON(http.StatusServiceUnavailable, resp)
		return
	}

	c.JSON(http.StatusOK, resp)
}

func (h *HealthHandler) checkDatabase(ctx context.Context) Check {
	if err := h.db.Ping(ctx); err != nil {
		return Check{
			Status:  "down",
			Message: err.Error(),
		}
	}

	return Check{
		Status:  "up",
		Message: "connected",
	}
}
