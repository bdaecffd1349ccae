// Package feedback carries transient user-facing notices (toasts) from
// domain operations to whatever surface serves the current request.
package feedback

import (
	"context"
	"log/slog"
	"sync"
)

// Level distinguishes positive and negative notices.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
)

// Toast is a short notice with an optional description.
type Toast struct {
	Level       Level  `json:"level"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// Sink receives toasts. Implementations must not block.
type Sink interface {
	Push(Toast)
}

type sinkKey struct{}

// WithSink returns a context whose toasts are delivered to sink.
func WithSink(ctx context.Context, sink Sink) context.Context {
	return context.WithValue(ctx, sinkKey{}, sink)
}

// SinkFrom returns the sink attached to ctx, if any.
func SinkFrom(ctx context.Context) (Sink, bool) {
	sink, ok := ctx.Value(sinkKey{}).(Sink)
	return sink, ok && sink != nil
}

// Notifier emits toasts fire-and-forget: to the context sink when the
// caller attached one, and to the debug log always.
type Notifier struct {
	logger *slog.Logger
}

// NewNotifier builds a Notifier. A nil logger disables the log copy.
func NewNotifier(logger *slog.Logger) *Notifier {
	return &Notifier{logger: logger}
}

// Success emits a success toast.
func (n *Notifier) Success(ctx context.Context, title, description string) {
	n.emit(ctx, Toast{Level: LevelSuccess, Title: title, Description: description})
}

// Error emits an error toast.
func (n *Notifier) Error(ctx context.Context, title, description string) {
	n.emit(ctx, Toast{Level: LevelError, Title: title, Description: description})
}

func (n *Notifier) emit(ctx context.Context, t Toast) {
	if sink, ok := SinkFrom(ctx); ok {
		sink.Push(t)
	}
	if n == nil || n.logger == nil {
		return
	}
	n.logger.DebugContext(ctx, "toast",
		slog.String("level", string(t.Level)),
		slog.String("title", t.Title),
		slog.String("description", t.Description),
	)
}

// Recorder collects toasts for a single request.
type Recorder struct {
	mu     sync.Mutex
	toasts []Toast
}

// Push records t.
func (r *Recorder) Push(t Toast) {
	r.mu.Lock()
	r.toasts = append(r.toasts, t)
	r.mu.Unlock()
}

// Toasts returns a copy of everything recorded so far.
func (r *Recorder) Toasts() []Toast {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Toast, len(r.toasts))
	copy(out, r.toasts)
	return out
}
