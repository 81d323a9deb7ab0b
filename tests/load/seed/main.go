// Seeds a url_map table with synthetic mappings for load testing the
// redirect and stats endpoints.
package main

import (
	"context"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/kuldeepjain-work/URLShortner/internal/config"
	"github.com/kuldeepjain-work/URLShortner/internal/repository/postgres"
)

const (
	rowCount  = 100000
	batchSize = 5000

	// Fraction of seeded rows deactivated so load runs also exercise the
	// not-found path.
	inactiveRatio = 0.05
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()
	pool, err := pgxpool.New(ctx, cfg.Database.URL)
	if err != nil {
		log.Fatalf("Unable to connect to database: %v\n", err)
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		log.Fatalf("Unable to ping database: %v\n", err)
	}

	repo := postgres.NewURLRepository(pool)
	if err := repo.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to create table: %v\n", err)
	}

	if _, err := pool.Exec(ctx, "TRUNCATE url_map RESTART IDENTITY"); err != nil {
		log.Fatalf("Failed to clear data: %v\n", err)
	}

	if err := seed(ctx, pool); err != nil {
		log.Fatalf("Failed to seed data: %v\n", err)
	}

	if err := verify(ctx, pool); err != nil {
		log.Fatalf("Data verification failed: %v\n", err)
	}

	log.Printf("Seeded %d mappings\n", rowCount)
}

func seed(ctx context.Context, pool *pgxpool.Pool) error {
	for start := 1; start <= rowCount; start += batchSize {
		end := start + batchSize - 1
		if end > rowCount {
			end = rowCount
		}

		batch := &pgx.Batch{}
		for i := start; i <= end; i++ {
			shortCode := fmt.Sprintf("seed%06d", i)
			originalURL := fmt.Sprintf("https://example.com/page/%06d", i)
			createdAt := time.Now().Add(-time.Duration(i) * time.Second)
			isActive := rand.Float64() >= inactiveRatio
			batch.Queue(
				"INSERT INTO url_map (short_url, original_url, created_at, visits, is_active) VALUES ($1, $2, $3, $4, $5)",
				shortCode, originalURL, createdAt, rand.Intn(1000), isActive,
			)
		}

		br := pool.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("batch exec failed: %w", err)
			}
		}
		br.Close()
	}

	_, err := pool.Exec(ctx, "ANALYZE url_map")
	return err
}

func verify(ctx context.Context, pool *pgxpool.Pool) error {
	var count int64
	if err := pool.QueryRow(ctx, "SELECT COUNT(*) FROM url_map").Scan(&count); err != nil {
		return err
	}

	if count != rowCount {
		return fmt.Errorf("expected %d rows but got %d", rowCount, count)
	}

	return nil
}
