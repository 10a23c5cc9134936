package worker

import (
	"bytes"
	"context"
	"fmt"

	"github.com/crewlog/crewlog/internal/domain"
	"github.com/crewlog/crewlog/internal/platform/logger"
	"github.com/crewlog/crewlog/internal/store"
)

// optimizedKeyPrefix is prepended to the source key to name the optimized
// rendition, so the original object is never overwritten.
const optimizedKeyPrefix = "optimized/"

// OptimizeHandler produces a size-optimized rendition of an uploaded image
// and records its storage key alongside the original.
type OptimizeHandler struct {
	storage   ObjectStorage
	processor ImageProcessor
	images    store.ImageStore
}

// NewOptimizeHandler creates an OptimizeHandler with its provider
// dependencies.
func NewOptimizeHandler(storage ObjectStorage, processor ImageProcessor, images store.ImageStore) *OptimizeHandler {
	return &OptimizeHandler{
		storage:   storage,
		processor: processor,
		images:    images,
	}
}

// OptimizedKey returns the storage key used for the optimized rendition of
// the object at sourceKey.
func OptimizedKey(sourceKey string) string {
	return optimizedKeyPrefix + sourceKey
}

// Handle processes an IMAGE_OPTIMIZE job.
func (h *OptimizeHandler) Handle(ctx context.Context, job *domain.Job) error {
	log := logger.FromContext(ctx)

	payload, err := job.ImageOptimizePayload()
	if err != nil {
		return err
	}

	source, err := h.storage.Fetch(ctx, payload.SourceKey)
	if err != nil {
		return fmt.Errorf("failed to fetch image object %q: %w", payload.SourceKey, err)
	}
	defer func() { _ = source.Close() }()

	optimized, contentType, err := h.processor.Optimize(source)
	if err != nil {
		return fmt.Errorf("image optimization failed: %w", err)
	}

	optimizedKey := OptimizedKey(payload.SourceKey)
	if err := h.storage.Put(ctx, optimizedKey, bytes.NewReader(optimized), contentType); err != nil {
		return fmt.Errorf("failed to store optimized image %q: %w", optimizedKey, err)
	}

	if err := h.images.SetOptimizedKey(ctx, payload.SourceKey, optimizedKey); err != nil {
		return fmt.Errorf("failed to record optimized key: %w", err)
	}

	log.Info("image optimized",
		"source_key", payload.SourceKey,
		"optimized_key", optimizedKey,
		"optimized_bytes", len(optimized))
	return nil
}
