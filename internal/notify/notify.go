// Package notify is the user-notification port. The marketplace UI renders
// these as toasts; headless runs log them. Every terminal state of an
// asynchronous operation must pass through here so nothing fails silently.
package notify

import (
	"context"
	"log/slog"
	"sync"
)

// Level classifies a notification.
type Level string

const (
	LevelSuccess Level = "success"
	LevelError   Level = "error"
	LevelInfo    Level = "info"
)

// Notification is one user-facing message. ID is a stable key per message
// class so renderers can coalesce repeats.
type Notification struct {
	Level   Level
	ID      string
	Message string
}

// Notifier delivers notifications to the user.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier writes notifications to the structured log. Used headless and
// as the default when no UI sink is wired.
type LogNotifier struct {
	logger *slog.Logger
}

// NewLogNotifier creates a log-backed notifier.
func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{logger: logger}
}

// Notify logs the notification at a level matching its class.
func (l *LogNotifier) Notify(_ context.Context, n Notification) {
	switch n.Level {
	case LevelError:
		l.logger.Error("notification", "id", n.ID, "message", n.Message)
	default:
		l.logger.Info("notification", "id", n.ID, "level", string(n.Level), "message", n.Message)
	}
}

// Recorder collects notifications for tests.
type Recorder struct {
	mu   sync.Mutex
	sent []Notification
}

// NewRecorder creates an empty recorder.
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Notify appends the notification.
func (r *Recorder) Notify(_ context.Context, n Notification) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sent = append(r.sent, n)
}

// All returns a copy of everything recorded.
func (r *Recorder) All() []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Notification, len(r.sent))
	copy(out, r.sent)
	return out
}

// ByID returns recorded notifications with the given ID.
func (r *Recorder) ByID(id string) []Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Notification
	for _, n := range r.sent {
		if n.ID == id {
			out = append(out, n)
		}
	}
	return out
}
