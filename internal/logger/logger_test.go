package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestFromContext(t *testing.T) {
	t.Run("returns logger stored in context", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		l := zap.New(core).Sugar().With("runID", "abc")

		ctx := NewContext(context.Background(), l)
		FromContext(ctx).Infow("fetched portfolio", "account", "ИИС")

		require.Equal(t, 1, logs.Len())
		entry := logs.All()[0]
		require.Equal(t, "fetched portfolio", entry.Message)
		require.Equal(t, "abc", entry.ContextMap()["runID"])
		require.Equal(t, "ИИС", entry.ContextMap()["account"])
	})

	t.Run("falls back to global logger", func(t *testing.T) {
		require.NotNil(t, FromContext(context.Background()))
		require.Equal(t, zap.S(), FromContext(context.Background()))
	})
}
