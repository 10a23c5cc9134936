package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/store"
)

// PostgresImageStore implements the store.ImageStore interface using PostgreSQL.
type PostgresImageStore struct {
	db store.DBTX
}

// NewPostgresImageStore creates a new PostgresImageStore.
func NewPostgresImageStore(db store.DBTX) *PostgresImageStore {
	return &PostgresImageStore{
		db: db,
	}
}

// SetOptimizedKey records the optimized rendition's storage key against the
// image row identified by its original source key. The row is created if the
// application layer has not registered the upload yet, so the worker does
// not depend on upload bookkeeping ordering.
func (s *PostgresImageStore) SetOptimizedKey(ctx context.Context, sourceKey, optimizedKey string) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO images (source_key, optimized_key, created_at, updated_at)
		VALUES ($1, $2, $3, $3)
		ON CONFLICT (source_key)
		DO UPDATE SET optimized_key = EXCLUDED.optimized_key, updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query, sourceKey, optimizedKey, time.Now().UTC())
	if err != nil {
		log.Error("failed to record optimized key",
			"source_key", sourceKey,
			"optimized_key", optimizedKey,
			"error", err)
		return MapError(fmt.Errorf("failed to record optimized key: %w", err))
	}

	return nil
}
