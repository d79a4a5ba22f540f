// Package audit records administrative actions for traceability. Recording
// is best effort: a sink must never fail the operation it is describing.
package audit

import (
	"context"
	"log/slog"

	"github.com/yplabs/council/pkg/slogx"
)

// Event is a single administrative action.
type Event struct {
	Action string // e.g. "request.approve", "account.delete"
	Actor  string // identity id of the admin performing the action
	Target string // id of the record acted on
	Detail string // optional free-form context
}

// Sink receives audit events.
type Sink interface {
	Record(ctx context.Context, e Event)
}

// LogSink writes audit events to the structured log.
type LogSink struct{}

var _ Sink = LogSink{}

func (LogSink) Record(ctx context.Context, e Event) {
	attrs := []slog.Attr{
		slog.String("action", e.Action),
		slog.String("actor", e.Actor),
		slog.String("target", e.Target),
	}
	if e.Detail != "" {
		attrs = append(attrs, slog.String("detail", e.Detail))
	}
	slogx.FromContext(ctx).LogAttrs(ctx, slog.LevelInfo, "audit", attrs...)
}
