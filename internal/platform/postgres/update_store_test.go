package postgres

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/store"
)

func TestUpdateStoreCreate(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	update := domain.NewUpdate(uuid.New())

	mock.ExpectExec("INSERT INTO updates").
		WithArgs(
			update.ID, update.ProjectID,
			update.Transcript, update.Summary, update.Progress, update.NextSteps,
			update.Title, update.CreatedAt, update.UpdatedAt,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresUpdateStore(db).Create(context.Background(), update)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStoreGetByID(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.New()
	projectID := uuid.New()
	now := time.Now().UTC()

	rows := sqlmock.NewRows([]string{
		"id", "project_id", "transcript", "summary", "progress", "next_steps",
		"title", "created_at", "updated_at",
	}).AddRow(id, projectID, "transcript text", "summary text", "50%", "next", "Plumbing", now, now)

	mock.ExpectQuery("SELECT (.+) FROM updates").WithArgs(id).WillReturnRows(rows)

	got, err := NewPostgresUpdateStore(db).GetByID(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
	assert.Equal(t, "transcript text", got.Transcript)
	assert.Equal(t, "Plumbing", got.Title)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStoreGetByIDNotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectQuery("SELECT (.+) FROM updates").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewPostgresUpdateStore(db).GetByID(context.Background(), uuid.New())
	assert.ErrorIs(t, err, store.ErrUpdateNotFound)
}

func TestUpdateStoreSetTranscriptionResult(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	id := uuid.New()
	result := domain.TranscriptionResult{
		Transcript: "We replaced the tap.",
		Summary:    "Replaced tap",
		Progress:   "50%",
		NextSteps:  "Test water pressure",
		Title:      "Plumbing",
	}

	mock.ExpectExec("UPDATE updates").
		WithArgs(
			result.Transcript, result.Summary, result.Progress,
			result.NextSteps, result.Title, sqlmock.AnyArg(), id,
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err = NewPostgresUpdateStore(db).SetTranscriptionResult(context.Background(), id, result)
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateStoreSetTranscriptionResultNotFound(t *testing.T) {
	t.Parallel()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer func() { _ = db.Close() }()

	mock.ExpectExec("UPDATE updates").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err = NewPostgresUpdateStore(db).SetTranscriptionResult(
		context.Background(), uuid.New(), domain.TranscriptionResult{})
	assert.ErrorIs(t, err, store.ErrUpdateNotFound)
}
