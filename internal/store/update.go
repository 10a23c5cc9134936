package store

import (
	"context"
	"database/sql"

	"github.com/google/uuid"

	"github.com/crewlog/crewlog/internal/domain"
)

// UpdateStore defines the narrow write contract the transcription worker
// holds against project update records. Broader update access belongs to
// the application layer, not this subsystem.
type UpdateStore interface {
	// Create saves a new update record.
	Create(ctx context.Context, update *domain.Update) error

	// GetByID retrieves an update by its unique ID.
	// Returns ErrUpdateNotFound if the update does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Update, error)

	// SetTranscriptionResult writes the transcription outcome fields onto
	// an existing update record.
	// Returns ErrUpdateNotFound if the update does not exist.
	SetTranscriptionResult(ctx context.Context, id uuid.UUID, result domain.TranscriptionResult) error

	// WithTx returns a new UpdateStore instance that uses the provided
	// transaction. The transaction is created and managed by the caller.
	WithTx(tx *sql.Tx) UpdateStore
}

// ImageStore defines the narrow write contract the image-optimization
// worker holds against image records.
type ImageStore interface {
	// SetOptimizedKey records the storage key of the optimized rendition
	// for the image identified by its original source key.
	SetOptimizedKey(ctx context.Context, sourceKey, optimizedKey string) error
}
