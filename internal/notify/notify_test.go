package notify

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/metrics"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

type fakePublisher struct {
	subject    string
	data       []byte
	publishErr error
	flushed    bool
}

func (f *fakePublisher) Publish(subject string, data []byte) error {
	if f.publishErr != nil {
		return f.publishErr
	}
	f.subject = subject
	f.data = data
	return nil
}

func (f *fakePublisher) FlushTimeout(time.Duration) error {
	f.flushed = true
	return nil
}

func TestListener_PublishesOutcome(t *testing.T) {
	pub := &fakePublisher{}
	n := New(pub, "docs.build.finished")
	n.now = func() time.Time { return time.Date(2026, 10, 17, 9, 0, 0, 0, time.UTC) }

	app, err := engine.New(engine.Options{
		SourceDir: t.TempDir(),
		OutputDir: t.TempDir(),
		Site:      engine.SiteInfo{Project: "LightGBM", Release: "4.6.0"},
		Commit:    "abc1234",
	})
	require.NoError(t, err)

	ctx := observability.WithBuildID(context.Background(), "b1")
	err = n.Listener()(ctx, engine.Event{
		Name: engine.EventBuildFinished,
		App:  app,
		Err:  errors.DocsError("page failed").Build(),
	})
	require.NoError(t, err)

	assert.Equal(t, "docs.build.finished", pub.subject)
	assert.True(t, pub.flushed)

	var got BuildFinishedEvent
	require.NoError(t, json.Unmarshal(pub.data, &got))
	assert.Equal(t, "b1", got.BuildID)
	assert.Equal(t, "LightGBM", got.Project)
	assert.Equal(t, "4.6.0", got.Version)
	assert.Equal(t, "abc1234", got.Commit)
	assert.Equal(t, metrics.BuildOutcomeFailed, got.Outcome)
	assert.Contains(t, got.Error, "page failed")
	assert.Equal(t, app.OutputDir(), got.OutputDir)
}

func TestListener_PublishFailureDoesNotFailBuild(t *testing.T) {
	n := New(&fakePublisher{publishErr: stderrors.New("no responders")}, "s")
	err := n.Listener()(context.Background(), engine.Event{Name: engine.EventBuildFinished})
	assert.NoError(t, err)
}

func TestPublish_Error(t *testing.T) {
	n := New(&fakePublisher{publishErr: stderrors.New("closed")}, "s")
	err := n.Publish(context.Background(), BuildFinishedEvent{})
	require.Error(t, err)
	assert.True(t, errors.HasCategory(err, errors.CategoryNotify))
}
