package pipeline

import "context"

// IdentifierSource fetches a random identifier from an external service
type IdentifierSource interface {
	Fetch(ctx context.Context) (string, error)
}

// Analyzer sends text to a completion endpoint and labels the reply
type Analyzer interface {
	Analyze(ctx context.Context, text string) (Analysis, error)
}

// Repository port (append-only, no update/delete)
type Repository interface {
	Save(ctx context.Context, r *Record) error
	Get(ctx context.Context, id RecordID) (*Record, error)
	Latest(ctx context.Context, limit int) ([]*Record, error)
}

// Notifier stands in for an outbound notification integration
type Notifier interface {
	Notify(ctx context.Context, recipient string, report Report) error
}

// ReportArchive stores a copy of a finished run
type ReportArchive interface {
	Archive(ctx context.Context, runID string, report Report) (string, error)
}
