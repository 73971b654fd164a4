package postgres

import (
	"context"
	"database/sql"
	"strings"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save inserts one record. lib/pq has no LastInsertId, so the id comes back via RETURNING.
func (r *ResultRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = `
INSERT INTO results (original, analysis, sentiment, source, "timestamp")
VALUES ($1,$2,$3,$4,$5)
RETURNING id;`
	var source sql.NullString
	if strings.TrimSpace(rec.Source) != "" {
		source = sql.NullString{String: rec.Source, Valid: true}
	}
	var id int64
	if err := r.db.QueryRowContext(ctx, q,
		rec.Original, rec.Analysis, string(rec.Sentiment), source, rec.Timestamp,
	).Scan(&id); err != nil {
		return err
	}
	rec.ID = domain.RecordID(id)
	return nil
}

func (r *ResultRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	const q = `
SELECT id, original, analysis, sentiment, source, "timestamp"
FROM results
WHERE id = $1;`
	return scanRecord(r.db.QueryRowContext(ctx, q, int64(id)))
}

// Latest returns newest first
func (r *ResultRepository) Latest(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 { limit = 20 }
	const q = `
SELECT id, original, analysis, sentiment, source, "timestamp"
FROM results
ORDER BY id DESC
LIMIT $1;`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil { return nil, err }
	defer rows.Close()

	out := []*domain.Record{}
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, rows.Err()
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
