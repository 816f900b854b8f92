package observability

import (
	"bytes"
	"context"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWithBuildID(t *testing.T) {
	ctx := WithBuildID(context.Background(), "build-123")
	assert.Equal(t, "build-123", GetContext(ctx).BuildID)
}

func TestContextValuesAccumulate(t *testing.T) {
	ctx := WithBuildID(context.Background(), "b1")
	ctx = WithStage(ctx, "render")
	ctx = WithEvent(ctx, "build-finished")

	lc := GetContext(ctx)
	assert.Equal(t, LogContext{BuildID: "b1", Stage: "render", Event: "build-finished"}, lc)
}

func TestNewBuildIDIsUUID(t *testing.T) {
	id := NewBuildID()
	_, err := uuid.Parse(id)
	require.NoError(t, err)
	assert.NotEqual(t, id, NewBuildID())
}

func TestInfoContextIncludesAttrs(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	ctx := WithStage(WithBuildID(context.Background(), "b42"), "generate")
	InfoContext(ctx, "generator finished", slog.String("generator", "doxygen"))
	DebugContext(context.Background(), "plain")

	out := buf.String()
	assert.Contains(t, out, "build_id=b42")
	assert.Contains(t, out, "stage=generate")
	assert.Contains(t, out, "generator=doxygen")
	assert.Contains(t, out, "msg=plain")
}
