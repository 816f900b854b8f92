package engine

import (
	"context"
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
)

func TestEvents_RunInRegistrationOrder(t *testing.T) {
	ev := NewEvents()
	var calls []string
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { calls = append(calls, "first"); return nil })
	ev.Connect(EventBuildFinished, func(context.Context, Event) error { calls = append(calls, "finished"); return nil })
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { calls = append(calls, "second"); return nil })

	require.NoError(t, ev.Emit(context.Background(), Event{Name: EventBuilderInited}))
	assert.Equal(t, []string{"first", "second"}, calls)
	assert.Equal(t, 2, ev.Count(EventBuilderInited))
	assert.Equal(t, 1, ev.Count(EventBuildFinished))
}

func TestEvents_FirstErrorStops(t *testing.T) {
	ev := NewEvents()
	boom := stderrors.New("boom")
	called := false
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { return boom })
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { called = true; return nil })

	err := ev.Emit(context.Background(), Event{Name: EventBuilderInited})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.True(t, errors.HasCategory(err, errors.CategoryRuntime))
	assert.False(t, called)
}

func TestEvents_ClassifiedErrorsPassThrough(t *testing.T) {
	ev := NewEvents()
	gen := errors.GeneratorError("An error has occurred while executing Doxygen").Build()
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { return gen })

	err := ev.Emit(context.Background(), Event{Name: EventBuilderInited})
	assert.Same(t, gen, err)
}

func TestEvents_Disconnect(t *testing.T) {
	ev := NewEvents()
	calls := 0
	id := ev.Connect(EventBuildFinished, func(context.Context, Event) error { calls++; return nil })
	ev.Connect(EventBuildFinished, func(context.Context, Event) error { calls += 10; return nil })

	assert.True(t, ev.Disconnect(id))
	assert.False(t, ev.Disconnect(id))
	require.NoError(t, ev.Emit(context.Background(), Event{Name: EventBuildFinished}))
	assert.Equal(t, 10, calls)
}

func TestEvents_CanceledContext(t *testing.T) {
	ev := NewEvents()
	called := false
	ev.Connect(EventBuilderInited, func(context.Context, Event) error { called = true; return nil })

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := ev.Emit(ctx, Event{Name: EventBuilderInited})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
	assert.False(t, called)
}
