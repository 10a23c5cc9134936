package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/store"
)

// PostgresUpdateStore implements the store.UpdateStore interface using PostgreSQL.
type PostgresUpdateStore struct {
	db store.DBTX
}

// NewPostgresUpdateStore creates a new PostgresUpdateStore.
func NewPostgresUpdateStore(db store.DBTX) *PostgresUpdateStore {
	return &PostgresUpdateStore{
		db: db,
	}
}

// WithTx returns a new UpdateStore instance that uses the provided transaction.
func (s *PostgresUpdateStore) WithTx(tx *sql.Tx) store.UpdateStore {
	return &PostgresUpdateStore{
		db: tx,
	}
}

// Create saves a new update record.
func (s *PostgresUpdateStore) Create(ctx context.Context, update *domain.Update) error {
	log := logger.FromContext(ctx)

	query := `
		INSERT INTO updates (id, project_id, transcript, summary, progress, next_steps, title, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := s.db.ExecContext(ctx, query,
		update.ID,
		update.ProjectID,
		update.Transcript,
		update.Summary,
		update.Progress,
		update.NextSteps,
		update.Title,
		update.CreatedAt,
		update.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to create update", "update_id", update.ID, "error", err)
		return MapError(fmt.Errorf("failed to create update: %w", err))
	}

	return nil
}

// GetByID retrieves an update record by its unique ID.
func (s *PostgresUpdateStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Update, error) {
	query := `
		SELECT id, project_id, transcript, summary, progress, next_steps, title, created_at, updated_at
		FROM updates
		WHERE id = $1
	`

	var update domain.Update
	var transcript, summary, progress, nextSteps, title sql.NullString

	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&update.ID,
		&update.ProjectID,
		&transcript,
		&summary,
		&progress,
		&nextSteps,
		&title,
		&update.CreatedAt,
		&update.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrUpdateNotFound
		}
		return nil, MapError(fmt.Errorf("failed to get update: %w", err))
	}

	update.Transcript = transcript.String
	update.Summary = summary.String
	update.Progress = progress.String
	update.NextSteps = nextSteps.String
	update.Title = title.String

	return &update, nil
}

// SetTranscriptionResult writes the transcription outcome fields onto an
// existing update record.
func (s *PostgresUpdateStore) SetTranscriptionResult(
	ctx context.Context,
	id uuid.UUID,
	result domain.TranscriptionResult,
) error {
	log := logger.FromContext(ctx)

	query := `
		UPDATE updates
		SET transcript = $1, summary = $2, progress = $3, next_steps = $4, title = $5, updated_at = $6
		WHERE id = $7
	`

	res, err := s.db.ExecContext(ctx, query,
		result.Transcript,
		result.Summary,
		result.Progress,
		result.NextSteps,
		result.Title,
		time.Now().UTC(),
		id,
	)
	if err != nil {
		log.Error("failed to write transcription result", "update_id", id, "error", err)
		return MapError(store.NewStoreError("update", "set transcription result", "exec failed", err))
	}

	rowsAffected, err := res.RowsAffected()
	if err != nil {
		return MapError(store.NewStoreError("update", "set transcription result", "rows affected", err))
	}
	if rowsAffected == 0 {
		return store.ErrUpdateNotFound
	}

	return nil
}
