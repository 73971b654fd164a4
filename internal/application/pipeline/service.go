package pipeline

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/bryanwahyu/insight-pipeline/internal/application"
	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

// DefaultIterations is the number of fetch/analyze/store cycles per run.
const DefaultIterations = 3

// Step names reported to the Observer
const (
	StepFetch   = "fetch"
	StepAnalyze = "analyze"
	StepStore   = "store"
)

// Observer receives per-step outcomes, e.g. for metrics
type Observer interface {
	StepFailed(step string)
	ItemEmitted(stored bool)
}

// Service runs the pipeline. Dependencies are constructed once at process
// start and shared by all requests; Service is safe for concurrent use as
// long as they are.
type Service struct {
	Identifiers domain.IdentifierSource
	Analyzer    domain.Analyzer
	Repo        domain.Repository
	Notifier    domain.Notifier
	Archive     domain.ReportArchive // optional
	Observer    Observer             // optional
	Clock       application.Clock
	Logger      *slog.Logger

	Iterations       int
	DefaultRecipient string
}

// RunCommand is the validated request payload
type RunCommand struct {
	Email  string
	Source string
}

// Run executes the fixed-count loop. Step failures never abort the run; they
// are collected into Report.Errors.
func (s *Service) Run(ctx context.Context, cmd RunCommand) domain.Report {
	runID := uuid.NewString()
	log := s.logger().With(slog.String("run_id", runID))

	n := s.Iterations
	if n <= 0 {
		n = DefaultIterations
	}

	report := domain.Report{
		Items:  make([]domain.Item, 0, n),
		Errors: []string{},
	}

	for i := 0; i < n; i++ {
		ilog := log.With(slog.Int("iteration", i+1))

		original, err := s.Identifiers.Fetch(ctx)
		if err != nil {
			report.Errors = append(report.Errors, fmt.Sprintf("API error: %v", err))
			s.stepFailed(StepFetch)
			ilog.Warn("identifier fetch failed", slog.Any("err", err))
			continue
		}

		analysis, err := s.Analyzer.Analyze(ctx, original)
		if err != nil {
			analysis = domain.Analysis{
				Text:      fmt.Sprintf("AI Error: %v", err),
				Sentiment: domain.SentimentUnknown,
			}
			report.Errors = append(report.Errors, fmt.Sprintf("AI error: %v", err))
			s.stepFailed(StepAnalyze)
			ilog.Warn("analysis failed", slog.Any("err", err))
		}

		rec := &domain.Record{
			Original:  original,
			Analysis:  analysis.Text,
			Sentiment: analysis.Sentiment,
			Source:    cmd.Source,
			Timestamp: domain.FormatTimestamp(s.Clock.Now()),
		}

		stored := true
		if err := s.Repo.Save(ctx, rec); err != nil {
			stored = false
			report.Errors = append(report.Errors, fmt.Sprintf("DB error: %v", err))
			s.stepFailed(StepStore)
			ilog.Error("store failed", slog.Any("err", err))
		} else {
			ilog.Debug("record stored", slog.Int64("id", int64(rec.ID)), slog.String("sentiment", string(rec.Sentiment)))
		}

		if s.Observer != nil {
			s.Observer.ItemEmitted(stored)
		}
		report.Items = append(report.Items, domain.Item{
			Original:  rec.Original,
			Analysis:  rec.Analysis,
			Sentiment: rec.Sentiment,
			Stored:    stored,
			Timestamp: rec.Timestamp,
		})
	}

	report.NotificationSent = true
	report.ProcessedAt = domain.FormatTimestamp(s.Clock.Now())

	recipient := cmd.Email
	if recipient == "" {
		recipient = s.DefaultRecipient
	}
	if s.Notifier != nil {
		if err := s.Notifier.Notify(ctx, recipient, report); err != nil {
			log.Warn("notification stub failed", slog.Any("err", err))
		}
	}

	if s.Archive != nil {
		url, err := s.Archive.Archive(ctx, runID, report)
		if err != nil {
			log.Warn("report archive failed", slog.Any("err", err))
		} else {
			log.Info("report archived", slog.String("url", url))
		}
	}

	log.Info("pipeline run finished",
		slog.Int("items", len(report.Items)),
		slog.Int("errors", len(report.Errors)),
	)
	return report
}

// Latest ambil N record terakhir
func (s *Service) Latest(ctx context.Context, limit int) ([]*domain.Record, error) {
	return s.Repo.Latest(ctx, limit)
}

// Get ambil 1 record by id
func (s *Service) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) stepFailed(step string) {
	if s.Observer != nil {
		s.Observer.StepFailed(step)
	}
}

func (s *Service) logger() *slog.Logger {
	if s.Logger != nil {
		return s.Logger
	}
	return slog.Default()
}
