package mysql

import (
	"database/sql"
	"strings"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

// nullIfBlank stores empty/whitespace caller input as NULL
func nullIfBlank(s string) sql.NullString {
	if strings.TrimSpace(s) == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*domain.Record, error) {
	var rec domain.Record
	var original, analysis, sentiment, src, ts sql.NullString
	if err := row.Scan(&rec.ID, &original, &analysis, &sentiment, &src, &ts); err != nil {
		return nil, err
	}
	rec.Original = original.String
	rec.Analysis = analysis.String
	rec.Sentiment = domain.Sentiment(sentiment.String)
	rec.Source = src.String
	rec.Timestamp = ts.String
	return &rec, nil
}
