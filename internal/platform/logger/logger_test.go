package logger_test

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crewlog/crewlog/internal/config"
	"github.com/crewlog/crewlog/internal/platform/logger"
)

func TestSetup(t *testing.T) {
	cases := []struct {
		name     string
		logLevel string
	}{
		{name: "debug level", logLevel: "debug"},
		{name: "info level", logLevel: "info"},
		{name: "warn level", logLevel: "warn"},
		{name: "error level", logLevel: "error"},
		{name: "invalid level falls back to info", logLevel: "verbose"},
		{name: "mixed case accepted", logLevel: "DeBuG"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			log, err := logger.Setup(config.ServerConfig{LogLevel: tc.logLevel})
			require.NoError(t, err)
			require.NotNil(t, log)
		})
	}
}

func TestContextPropagation(t *testing.T) {
	t.Parallel()

	scoped := slog.New(slog.NewTextHandler(io.Discard, nil))

	t.Run("FromContext returns stored logger", func(t *testing.T) {
		t.Parallel()

		ctx := logger.WithContext(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContext(ctx))
	})

	t.Run("FromContext falls back to default", func(t *testing.T) {
		t.Parallel()

		assert.NotNil(t, logger.FromContext(context.Background()))
	})

	t.Run("FromContextOrDefault uses fallback", func(t *testing.T) {
		t.Parallel()

		fallback := slog.New(slog.NewTextHandler(io.Discard, nil))
		assert.Same(t, fallback, logger.FromContextOrDefault(context.Background(), fallback))
		ctx := logger.WithContext(context.Background(), scoped)
		assert.Same(t, scoped, logger.FromContextOrDefault(ctx, fallback))
	})
}
