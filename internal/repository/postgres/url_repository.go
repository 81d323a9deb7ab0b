package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kuldeepjain-work/URLShortner/internal/domain"
)

type URLRepository struct {
	db *pgxpool.Pool
}

func NewURLRepository(db *pgxpool.Pool) *URLRepository {
	return &URLRepository{db: db}
}

// EnsureSchema creates the url_map table and its indexes if they do not
// exist. Ran once at startup; migrations/ carries the same DDL for tests.
func (r *URLRepository) EnsureSchema(ctx context.Context) error {
	ddl := `
		CREATE TABLE IF NOT EXISTS url_map (
			id SERIAL PRIMARY KEY,
			short_url VARCHAR(255) UNIQUE NOT NULL,
			original_url TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			visits INTEGER NOT NULL DEFAULT 0,
			is_active BOOLEAN NOT NULL DEFAULT TRUE
		);
		CREATE INDEX IF NOT EXISTS idx_short_url ON url_map(short_url);
		CREATE INDEX IF NOT EXISTS idx_original_url ON url_map(original_url);
	`
	_, err := r.db.Exec(ctx, ddl)
	return err
}

// Create inserts the mapping. The UNIQUE constraint on short_url is the
// final arbiter for code collisions; a violation surfaces as a
// *pgconn.PgError with code 23505 and the caller decides whether to retry.
func (r *URLRepository) Create(ctx context.Context, url *domain.URL) error {
	query := `
		INSERT INTO url_map (short_url, original_url)
		VALUES ($1, $2)
		RETURNING id, created_at, visits, is_active
	`

	return r.db.QueryRow(ctx, query, url.ShortCode, url.OriginalURL).
		Scan(&url.ID, &url.CreatedAt, &url.Visits, &url.IsActive)
}

// GetByShortCode returns the row whether or not it is still active.
// Deactivated codes must stay visible here so they are never reissued.
func (r *URLRepository) GetByShortCode(ctx context.Context, shortCode string) (*domain.URL, error) {
	var url domain.URL

	query := `
		SELECT id, short_url, original_url, visits, created_at, is_active
		FROM url_map
		WHERE short_url = $1
	`

	err := r.db.QueryRow(ctx, query, shortCode).Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.Visits,
		&url.CreatedAt,
		&url.IsActive,
	)
	if err != nil {
		return nil, err
	}

	return &url, nil
}

// ResolveAndCount increments the visit counter and returns the target URL
// in one statement. The relative update means concurrent redirects each
// add exactly one; the is_active filter makes a deactivated code report
// pgx.ErrNoRows, same as a code that never existed.
func (r *URLRepository) ResolveAndCount(ctx context.Context, shortCode string) (string, error) {
	query := `
		UPDATE url_map
		SET visits = visits + 1
		WHERE short_url = $1 AND is_active = TRUE
		RETURNING original_url
	`

	var originalURL string
	if err := r.db.QueryRow(ctx, query, shortCode).Scan(&originalURL); err != nil {
		return "", err
	}

	return originalURL, nil
}

// Deactivate flips is_active off and returns the row. The update is not
// filtered on is_active, so deactivating an already-inactive code succeeds
// and returns the unchanged row.
func (r *URLRepository) Deactivate(ctx context.Context, shortCode string) (*domain.URL, error) {
	query := `
		UPDATE url_map
		SET is_active = FALSE
		WHERE short_url = $1
		RETURNING id, short_url, original_url, visits, created_at, is_active
	`

	var url domain.URL
	err := r.db.QueryRow(ctx, query, shortCode).Scan(
		&url.ID,
		&url.ShortCode,
		&url.OriginalURL,
		&url.Visits,
		&url.CreatedAt,
		&url.IsActive,
	)
	if err != nil {
		return nil, err
	}

	return &url, nil
}

// List returns a page of mappings, newest first. The id tie-break keeps
// rows created in the same instant in insertion order.
func (r *URLRepository) List(ctx context.Context, skip, limit int) ([]domain.URL, error) {
	query := `
		SELECT id, short_url, original_url, visits, created_at, is_active
		FROM url_map
		ORDER BY created_at DESC, id DESC
		OFFSET $1 LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, skip, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	urls := make([]domain.URL, 0, limit)
	for rows.Next() {
		var url domain.URL
		err := rows.Scan(
			&url.ID,
			&url.ShortCode,
			&url.OriginalURL,
			&url.Visits,
			&url.CreatedAt,
			&url.IsActive,
		)
		if err != nil {
			return nil, err
		}
		urls = append(urls, url)
	}

	return urls, rows.Err()
}

func (r *URLRepository) CountAll(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM url_map`).Scan(&count)
	return count, err
}

func (r *URLRepository) SumVisits(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.QueryRow(ctx, `SELECT COALESCE(SUM(visits), 0) FROM url_map`).Scan(&total)
	return total, err
}
