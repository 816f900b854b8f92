// Package notify publishes build-finished events to NATS.
package notify

import (
	"context"
	"encoding/json"
	"time"

	"github.com/nats-io/nats.go"

	"git.home.luguber.info/inful/docorch/internal/engine"
	"git.home.luguber.info/inful/docorch/internal/foundation/errors"
	"git.home.luguber.info/inful/docorch/internal/logfields"
	"git.home.luguber.info/inful/docorch/internal/metrics"
	"git.home.luguber.info/inful/docorch/internal/observability"
)

// BuildFinishedEvent is the JSON payload published after every build.
type BuildFinishedEvent struct {
	BuildID   string                    `json:"build_id"`
	Project   string                    `json:"project"`
	Version   string                    `json:"version,omitempty"`
	Commit    string                    `json:"commit,omitempty"`
	Outcome   metrics.BuildOutcomeLabel `json:"outcome"`
	Error     string                    `json:"error,omitempty"`
	OutputDir string                    `json:"output_dir"`
	Timestamp time.Time                 `json:"timestamp"`
}

// Publisher is the subset of *nats.Conn used by the Notifier.
type Publisher interface {
	Publish(subject string, data []byte) error
	FlushTimeout(timeout time.Duration) error
}

// Notifier publishes BuildFinishedEvents to one subject.
type Notifier struct {
	pub     Publisher
	subject string
	now     func() time.Time
	close   func()
}

// New returns a Notifier publishing through pub.
func New(pub Publisher, subject string) *Notifier {
	return &Notifier{pub: pub, subject: subject, now: time.Now, close: func() {}}
}

// Connect dials the NATS server at url.
func Connect(url, subject string) (*Notifier, error) {
	conn, err := nats.Connect(url, nats.Name("docorch"), nats.Timeout(5*time.Second))
	if err != nil {
		return nil, errors.WrapError(err, errors.CategoryNotify, "failed to connect to NATS").
			WithContext("url", url).Build()
	}
	n := New(conn, subject)
	n.close = conn.Close
	return n, nil
}

// Close releases the connection, if the Notifier owns one.
func (n *Notifier) Close() { n.close() }

// Publish sends ev and waits for the server to acknowledge the flush.
func (n *Notifier) Publish(ctx context.Context, ev BuildFinishedEvent) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return errors.WrapError(err, errors.CategoryInternal, "failed to marshal build event").Build()
	}
	if err := n.pub.Publish(n.subject, data); err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to publish build event").
			WithContext("subject", n.subject).Build()
	}
	timeout := 5 * time.Second
	if deadline, ok := ctx.Deadline(); ok {
		timeout = time.Until(deadline)
	}
	if err := n.pub.FlushTimeout(timeout); err != nil {
		return errors.WrapError(err, errors.CategoryNotify, "failed to flush build event").
			WithContext("subject", n.subject).Build()
	}
	observability.DebugContext(ctx, "Published build event", logfields.Subject(n.subject))
	return nil
}

// Listener returns a build-finished listener. Publication failures are
// logged and never fail the build.
func (n *Notifier) Listener() engine.Listener {
	return func(ctx context.Context, ev engine.Event) error {
		payload := BuildFinishedEvent{
			BuildID:   observability.GetContext(ctx).BuildID,
			Outcome:   metrics.BuildOutcomeSuccess,
			Timestamp: n.now().UTC(),
		}
		if ev.App != nil {
			opts := ev.App.Options()
			payload.Project = opts.Site.Project
			payload.Version = opts.Site.Release
			payload.Commit = opts.Commit
			payload.OutputDir = opts.OutputDir
		}
		if ev.Err != nil {
			payload.Outcome = metrics.BuildOutcomeFailed
			payload.Error = ev.Err.Error()
		}
		if err := n.Publish(ctx, payload); err != nil {
			observability.WarnContext(ctx, "Build notification failed", logfields.Error(err))
		}
		return nil
	}
}
