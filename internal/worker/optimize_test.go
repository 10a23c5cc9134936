package worker

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/domain"
)

type mockImageProcessor struct {
	output      []byte
	contentType string
	err         error
	calls       int
}

func (m *mockImageProcessor) Optimize(r io.Reader) ([]byte, string, error) {
	m.calls++
	if m.err != nil {
		return nil, "", m.err
	}
	if _, err := io.ReadAll(r); err != nil {
		return nil, "", err
	}
	return m.output, m.contentType, nil
}

type mockImageStore struct {
	optimized map[string]string
	err       error
}

func newMockImageStore() *mockImageStore {
	return &mockImageStore{optimized: make(map[string]string)}
}

func (m *mockImageStore) SetOptimizedKey(ctx context.Context, sourceKey, optimizedKey string) error {
	if m.err != nil {
		return m.err
	}
	m.optimized[sourceKey] = optimizedKey
	return nil
}

func optimizeJob(t *testing.T, sourceKey string) *domain.Job {
	t.Helper()
	job, err := domain.NewImageOptimizeJob(domain.ImageOptimizePayload{SourceKey: sourceKey})
	require.NoError(t, err)
	return job
}

func TestOptimizedKeyPrefixesSourceKey(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "optimized/uploads/photo.jpg", OptimizedKey("uploads/photo.jpg"))
}

func TestOptimizeHandlerStoresOptimizedRendition(t *testing.T) {
	t.Parallel()

	storage := newMockObjectStorage()
	storage.objects["uploads/photo.jpg"] = []byte("original-bytes")
	processor := &mockImageProcessor{output: []byte("smaller-bytes"), contentType: "image/jpeg"}
	images := newMockImageStore()

	handler := NewOptimizeHandler(storage, processor, images)
	err := handler.Handle(context.Background(), optimizeJob(t, "uploads/photo.jpg"))
	require.NoError(t, err)

	assert.Equal(t, []byte("smaller-bytes"), storage.puts["optimized/uploads/photo.jpg"],
		"optimized bytes must be written under the optimized/ prefix")
	assert.Equal(t, "optimized/uploads/photo.jpg", images.optimized["uploads/photo.jpg"])
}

func TestOptimizeHandlerRejectsInvalidPayloadBeforeProviders(t *testing.T) {
	t.Parallel()

	storage := newMockObjectStorage()
	processor := &mockImageProcessor{}
	handler := NewOptimizeHandler(storage, processor, newMockImageStore())

	job := &domain.Job{
		ID:      uuid.New(),
		Type:    domain.JobTypeImageOptimize,
		Status:  domain.JobStatusRunning,
		Payload: json.RawMessage(`{}`),
	}

	err := handler.Handle(context.Background(), job)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrInvalidPayload)
	assert.Zero(t, storage.fetches)
	assert.Zero(t, processor.calls)
}

func TestOptimizeHandlerPropagatesErrors(t *testing.T) {
	t.Parallel()

	t.Run("fetch error", func(t *testing.T) {
		t.Parallel()
		handler := NewOptimizeHandler(newMockObjectStorage(), &mockImageProcessor{}, newMockImageStore())

		err := handler.Handle(context.Background(), optimizeJob(t, "uploads/missing.jpg"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to fetch image object")
	})

	t.Run("processor error", func(t *testing.T) {
		t.Parallel()
		storage := newMockObjectStorage()
		storage.objects["uploads/bad.jpg"] = []byte("not-an-image")
		processor := &mockImageProcessor{err: errors.New("image: unknown format")}
		handler := NewOptimizeHandler(storage, processor, newMockImageStore())

		err := handler.Handle(context.Background(), optimizeJob(t, "uploads/bad.jpg"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "image optimization failed")
	})

	t.Run("store error", func(t *testing.T) {
		t.Parallel()
		storage := newMockObjectStorage()
		storage.objects["uploads/photo.jpg"] = []byte("original")
		images := newMockImageStore()
		images.err = errors.New("connection reset")
		processor := &mockImageProcessor{output: []byte("out"), contentType: "image/jpeg"}
		handler := NewOptimizeHandler(storage, processor, images)

		err := handler.Handle(context.Background(), optimizeJob(t, "uploads/photo.jpg"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "failed to record optimized key")
	})
}
