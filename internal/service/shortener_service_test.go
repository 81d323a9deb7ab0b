package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/kuldeepjain-work/URLShortner/internal/domain"
	"github.com/kuldeepjain-work/URLShortner/tests/mocks"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func uniqueViolation() *pgconn.PgError {
	return &pgconn.PgError{
		Code:           "23505",
		ConstraintName: "url_map_short_url_key",
	}
}

func TestShortenURL_Success_GeneratedCode(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com/a",
	}

	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows).Once()

	mockRepo.On("Create", ctx, mock.MatchedBy(func(url *domain.URL) bool {
		return url.OriginalURL == "https://example.com/a" &&
			len(url.ShortCode) == 6
	})).Return(nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, "https://example.com/a", result.OriginalURL)
	assert.Len(t, result.ShortCode, 6)
	assert.Regexp(t, "^[a-zA-Z0-9]+$", result.ShortCode)
	mockRepo.AssertExpectations(t)
}

func TestShortenURL_Success_CustomCode(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "promo1",
	}

	mockRepo.On("GetByShortCode", ctx, "promo1").
		Return(nil, pgx.ErrNoRows).Once()

	mockRepo.On("Create", ctx, mock.MatchedBy(func(url *domain.URL) bool {
		return url.ShortCode == "promo1" &&
			url.OriginalURL == "https://example.com"
	})).Return(nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.NoError(t, err)
	assert.Equal(t, "promo1", result.ShortCode)
	mockRepo.AssertExpectations(t)
}

func TestShortenURL_CustomCode_TakenOnPrecheck(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "promo1",
	}

	existing := &domain.URL{ShortCode: "promo1", OriginalURL: "https://other.com"}
	mockRepo.On("GetByShortCode", ctx, "promo1").
		Return(existing, nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.ErrorIs(t, err, domain.ErrCodeTaken)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestShortenURL_CustomCode_TakenByInactiveRow(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "retired",
	}

	// Deactivated rows keep their code; it must still block reuse.
	existing := &domain.URL{ShortCode: "retired", IsActive: false}
	mockRepo.On("GetByShortCode", ctx, "retired").
		Return(existing, nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.ErrorIs(t, err, domain.ErrCodeTaken)
	assert.Nil(t, result)
	mockRepo.AssertNotCalled(t, "Create")
}

func TestShortenURL_CustomCode_RaceLostOnInsert(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
		CustomCode:  "promo1",
	}

	mockRepo.On("GetByShortCode", ctx, "promo1").
		Return(nil, pgx.ErrNoRows).Once()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(uniqueViolation()).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.ErrorIs(t, err, domain.ErrCodeTaken)
	assert.Nil(t, result)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestShortenURL_GeneratedCode_RetryOnPrecheckHit(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
	}

	taken := &domain.URL{ShortCode: "AAAAAA"}
	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(taken, nil).Once()
	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows).Once()

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	mockRepo.AssertNumberOfCalls(t, "GetByShortCode", 2)
	mockRepo.AssertNumberOfCalls(t, "Create", 1)
}

func TestShortenURL_GeneratedCode_RetryOnInsertCollision(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
	}

	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows).Times(2)

	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(uniqueViolation()).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(nil).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	mockRepo.AssertNumberOfCalls(t, "Create", 2)
}

func TestShortenURL_GeneratedCode_ExhaustedRetries(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
	}

	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows).Times(maxGenerateRetries)
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(uniqueViolation()).Times(maxGenerateRetries)

	result, err := svc.ShortenURL(ctx, req)

	assert.ErrorIs(t, err, domain.ErrRetriesExhausted)
	assert.Nil(t, result)
	mockRepo.AssertNumberOfCalls(t, "Create", maxGenerateRetries)
}

func TestShortenURL_DatabaseError(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	req := &domain.CreateURLRequest{
		OriginalURL: "https://example.com",
	}

	mockRepo.On("GetByShortCode", ctx, mock.AnythingOfType("string")).
		Return(nil, pgx.ErrNoRows).Once()
	mockRepo.On("Create", ctx, mock.AnythingOfType("*domain.URL")).
		Return(errors.New("connection refused")).Once()

	result, err := svc.ShortenURL(ctx, req)

	assert.Error(t, err)
	assert.Nil(t, result)
	assert.Contains(t, err.Error(), "failed to create short url")
	assert.NotErrorIs(t, err, domain.ErrRetriesExhausted)
}

func TestResolve_Success(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ResolveAndCount", ctx, "abc123").
		Return("https://example.com/a", nil).Once()

	target, err := svc.Resolve(ctx, "abc123")

	assert.NoError(t, err)
	assert.Equal(t, "https://example.com/a", target)
	mockRepo.AssertExpectations(t)
}

func TestResolve_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ResolveAndCount", ctx, "missing").
		Return("", pgx.ErrNoRows).Once()

	target, err := svc.Resolve(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, target)
}

func TestResolve_DatabaseError(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("ResolveAndCount", ctx, "abc123").
		Return("", errors.New("connection timeout")).Once()

	target, err := svc.Resolve(ctx, "abc123")

	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrNotFound)
	assert.Empty(t, target)
}

func TestDeactivate_Success(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	deactivated := &domain.URL{
		ShortCode:   "abc123",
		OriginalURL: "https://example.com",
		Visits:      3,
		CreatedAt:   time.Now(),
		IsActive:    false,
	}

	mockRepo.On("Deactivate", ctx, "abc123").
		Return(deactivated, nil).Once()

	result, err := svc.Deactivate(ctx, "abc123")

	assert.NoError(t, err)
	assert.False(t, result.IsActive)
	assert.Equal(t, int64(3), result.Visits)
	mockRepo.AssertExpectations(t)
}

func TestDeactivate_NotFound(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("Deactivate", ctx, "missing").
		Return(nil, pgx.ErrNoRows).Once()

	result, err := svc.Deactivate(ctx, "missing")

	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Nil(t, result)
}

func TestDeactivate_AlreadyInactive_IsNoOpSuccess(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	inactive := &domain.URL{ShortCode: "abc123", IsActive: false}
	mockRepo.On("Deactivate", ctx, "abc123").
		Return(inactive, nil).Once()

	result, err := svc.Deactivate(ctx, "abc123")

	assert.NoError(t, err)
	assert.False(t, result.IsActive)
}

func TestGetStats_Success(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	urls := []domain.URL{
		{ShortCode: "bbb222", Visits: 5},
		{ShortCode: "aaa111", Visits: 2},
	}

	mockRepo.On("List", ctx, 0, 10).Return(urls, nil).Once()
	mockRepo.On("CountAll", ctx).Return(int64(2), nil).Once()
	mockRepo.On("SumVisits", ctx).Return(int64(7), nil).Once()

	stats, err := svc.GetStats(ctx, 0, 10)

	assert.NoError(t, err)
	assert.Len(t, stats.URLs, 2)
	assert.Equal(t, int64(2), stats.TotalURLs)
	assert.Equal(t, int64(7), stats.TotalVisits)
	mockRepo.AssertExpectations(t)
}

func TestGetStats_EmptyStore(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("List", ctx, 0, 10).Return([]domain.URL{}, nil).Once()
	mockRepo.On("CountAll", ctx).Return(int64(0), nil).Once()
	mockRepo.On("SumVisits", ctx).Return(int64(0), nil).Once()

	stats, err := svc.GetStats(ctx, 0, 10)

	assert.NoError(t, err)
	assert.Empty(t, stats.URLs)
	assert.Equal(t, int64(0), stats.TotalURLs)
	assert.Equal(t, int64(0), stats.TotalVisits)
}

func TestGetStats_ListError(t *testing.T) {
	mockRepo := new(mocks.MockURLRepository)
	svc := NewShortenerService(mockRepo)
	ctx := context.Background()

	mockRepo.On("List", ctx, 0, 10).
		Return(nil, errors.New("connection refused")).Once()

	stats, err := svc.GetStats(ctx, 0, 10)

	assert.Error(t, err)
	assert.Nil(t, stats)
	mockRepo.AssertNotCalled(t, "CountAll")
}
