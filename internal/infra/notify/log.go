package notify

import (
	"context"
	"log/slog"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

// LogNotifier writes a single line instead of sending anything.
type LogNotifier struct {
	Logger *slog.Logger
}

func NewLogNotifier(logger *slog.Logger) *LogNotifier {
	if logger == nil {
		logger = slog.Default()
	}
	return &LogNotifier{Logger: logger}
}

func (n *LogNotifier) Notify(ctx context.Context, recipient string, report domain.Report) error {
	n.Logger.InfoContext(ctx, "Notification sent",
		slog.String("to", recipient),
		slog.Int("items", len(report.Items)),
		slog.Int("errors", len(report.Errors)),
	)
	return nil
}
