package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kuldeepjain-work/URLShortner/internal/domain"
	"github.com/kuldeepjain-work/URLShortner/internal/logger"
	"github.com/kuldeepjain-work/URLShortner/pkg/generator"
)

// maxGenerateRetries bounds the random-code loop. Each retry means a fresh
// 62^6 draw collided, so hitting the budget indicates a nearly exhausted
// codespace rather than bad luck.
const maxGenerateRetries = 5

type URLRepository interface {
	Create(ctx context.Context, url *domain.URL) error
	GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error)
	ResolveAndCount(ctx context.Context, shortCode string) (string, error)
	Deactivate(ctx context.Context, shortCode string) (*domain.URL, error)
	List(ctx context.Context, skip, limit int) ([]domain.URL, error)
	CountAll(ctx context.Context) (int64, error)
	SumVisits(ctx context.Context) (int64, error)
}

type ShortenerService struct {
	urlRepo URLRepository
}

func NewShortenerService(urlRepo URLRepository) *ShortenerService {
	return &ShortenerService{urlRepo: urlRepo}
}

// ShortenURL allocates a code and inserts the mapping. A custom code is
// pre-checked against every row ever created, active or not, then inserted;
// a random code is drawn and retried on collision. Either way the unique
// constraint on the insert is the source of truth, the pre-check is only a
// fast path.
func (s *ShortenerService) ShortenURL(ctx context.Context, req *domain.CreateURLRequest) (*domain.URL, error) {
	if req.CustomCode != "" {
		return s.createWithCustomCode(ctx, req)
	}
	return s.createWithGeneratedCode(ctx, req)
}

func (s *ShortenerService) createWithCustomCode(ctx context.Context, req *domain.CreateURLRequest) (*domain.URL, error) {
	_, err := s.urlRepo.GetByShortCode(ctx, req.CustomCode)
	if err == nil {
		return nil, domain.ErrCodeTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("failed to check custom code: %w", err)
	}

	url := &domain.URL{
		ShortCode:   req.CustomCode,
		OriginalURL: req.OriginalURL,
	}

	if err := s.urlRepo.Create(ctx, url); err != nil {
		// A concurrent creation can slip in between the check and the
		// insert; the constraint violation is authoritative.
		if isUniqueViolation(err) {
			return nil, domain.ErrCodeTaken
		}
		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	return url, nil
}

func (s *ShortenerService) createWithGeneratedCode(ctx context.Context, req *domain.CreateURLRequest) (*domain.URL, error) {
	for i := 0; i < maxGenerateRetries; i++ {
		shortCode, err := generator.GenerateShortCode()
		if err != nil {
			return nil, err
		}

		if _, err := s.urlRepo.GetByShortCode(ctx, shortCode); err == nil {
			continue
		} else if !errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("failed to check short code: %w", err)
		}

		url := &domain.URL{
			ShortCode:   shortCode,
			OriginalURL: req.OriginalURL,
		}

		err = s.urlRepo.Create(ctx, url)
		if err == nil {
			return url, nil
		}
		if isUniqueViolation(err) {
			continue
		}

		return nil, fmt.Errorf("failed to create short url: %w", err)
	}

	logger.FromContext(ctx).Error("short code generation exhausted retries",
		"retries", maxGenerateRetries,
	)
	return nil, domain.ErrRetriesExhausted
}

// Resolve maps a code to its target URL, counting the visit. The counter
// increment happens inside the store as a relative update, so this call
// contributes exactly one visit no matter how it interleaves with others.
func (s *ShortenerService) Resolve(ctx context.Context, shortCode string) (string, error) {
	originalURL, err := s.urlRepo.ResolveAndCount(ctx, shortCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", domain.ErrNotFound
		}
		return "", fmt.Errorf("failed to resolve short url: %w", err)
	}

	return originalURL, nil
}

// Deactivate retires a code from redirect serving. Deactivating a code
// that is already inactive is a no-op success.
func (s *ShortenerService) Deactivate(ctx context.Context, shortCode string) (*domain.URL, error) {
	url, err := s.urlRepo.Deactivate(ctx, shortCode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, fmt.Errorf("failed to deactivate short url: %w", err)
	}

	return url, nil
}

// GetStats returns a page of mappings newest-first plus totals over every
// mapping ever created, deactivated rows included.
func (s *ShortenerService) GetStats(ctx context.Context, skip, limit int) (*domain.URLStats, error) {
	urls, err := s.urlRepo.List(ctx, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list urls: %w", err)
	}

	totalURLs, err := s.urlRepo.CountAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count urls: %w", err)
	}

	totalVisits, err := s.urlRepo.SumVisits(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to sum visits: %w", err)
	}

	return &domain.URLStats{
		URLs:        urls,
		TotalURLs:   totalURLs,
		TotalVisits: totalVisits,
	}, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
