package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/kuldeepjain-work/URLShortner/internal/domain"
	"github.com/kuldeepjain-work/URLShortner/internal/logger"
	"github.com/kuldeepjain-work/URLShortner/pkg/response"
	"github.com/kuldeepjain-work/URLShortner/pkg/validator"
)

type ShortenerService interface {
	ShortenURL(ctx context.Context, req *domain.CreateURLRequest) (*domain.URL, error)
	Resolve(ctx context.Context, shortCode string) (string, error)
	Deactivate(ctx context.Context, shortCode string) (*domain.URL, error)
}

type ShortenerHandler struct {
	service ShortenerService
	baseURL string
}

func NewShortenerHandler(service ShortenerService, baseURL string) *ShortenerHandler {
	return &ShortenerHandler{
		service: service,
		baseURL: baseURL,
	}
}

func (h *ShortenerHandler) ShortenURL(c *gin.Context) {
	var req domain.CreateURLRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err.Error())
		return
	}

	if errs := validator.Validate(&req); len(errs) > 0 {
		response.ValidationErrors(c, errs)
		return
	}

	if req.CustomCode != "" && validator.IsReservedKeyword(req.CustomCode) {
		response.BadRequest(c, "custom_code is a reserved path")
		return
	}

	url, err := h.service.ShortenURL(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCodeTaken):
			response.Conflict(c, "Custom short URL already in use")
		default:
			logger.FromContext(c.Request.Context()).Error("shorten failed", "error", err)
			response.InternalServerError(c, "failed to create short URL")
		}
		return
	}

	response.Created(c, "short URL created", gin.H{
		"short_url":    h.baseURL + "/" + url.ShortCode,
		"short_code":   url.ShortCode,
		"original_url": url.OriginalURL,
		"created_at":   url.CreatedAt,
		"visits":       url.Visits,
		"is_active":    url.IsActive,
	})
}

// Redirect answers with 307 so browsers neither cache the hop nor keep
// serving a code after it has been deactivated.
func (h *ShortenerHandler) Redirect(c *gin.Context) {
	shortCode := c.Param("shortCode")

	originalURL, err := h.service.Resolve(c.Request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "URL not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("resolve failed", "error", err)
		response.InternalServerError(c, "failed to resolve short URL")
		return
	}

	c.Redirect(http.StatusTemporaryRedirect, originalURL)
}

func (h *ShortenerHandler) Deactivate(c *gin.Context) {
	shortCode := c.Param("shortCode")

	url, err := h.service.Deactivate(c.Request.Context(), shortCode)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			response.NotFound(c, "URL not found")
			return
		}
		logger.FromContext(c.Request.Context()).Error("deactivate failed", "error", err)
		response.InternalServerError(c, "failed to deactivate short URL")
		return
	}

	response.OK(c, "short URL deactivated", url)
}
