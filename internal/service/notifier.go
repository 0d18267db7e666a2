package service

import (
	"context"

	"go.uber.org/zap"
)

// Notification is a user-facing outcome message. Presentation (toasts,
// banners) belongs to the UI collaborator; this service only emits the event.
type Notification struct {
	Success bool   `json:"success"`
	BatchID string `json:"batch_id"`
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Notifier delivers operation outcomes to the user-facing channel.
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// LogNotifier is the default Notifier; it writes outcomes to the log. A real
// deployment swaps in a push/websocket implementation.
type LogNotifier struct {
	logger *zap.Logger
}

// NewLogNotifier constructs a LogNotifier.
func NewLogNotifier(logger *zap.Logger) *LogNotifier {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &LogNotifier{logger: logger}
}

// Notify implements Notifier.
func (n *LogNotifier) Notify(_ context.Context, note Notification) {
	fields := []zap.Field{
		zap.String("batch_id", note.BatchID),
		zap.String("action", note.Action),
		zap.Bool("success", note.Success),
	}
	if note.Success {
		n.logger.Info(note.Message, fields...)
		return
	}
	n.logger.Warn(note.Message, fields...)
}
