package mysql

import (
	"context"
	"database/sql"

	domain "github.com/bryanwahyu/insight-pipeline/internal/domain/pipeline"
)

type ResultRepository struct {
	db *sql.DB
}

func NewResultRepository(db *sql.DB) *ResultRepository {
	return &ResultRepository{db: db}
}

// Save inserts one record; AUTO_INCREMENT assigns the id
func (r *ResultRepository) Save(ctx context.Context, rec *domain.Record) error {
	const q = "INSERT INTO results (original, analysis, sentiment, source, `timestamp`) VALUES (?,?,?,?,?)"
	res, err := r.db.ExecContext(ctx, q,
		rec.Original, rec.Analysis, string(rec.Sentiment), nullIfBlank(rec.Source), rec.Timestamp)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	rec.ID = domain.RecordID(id)
	return nil
}

func (r *ResultRepository) Get(ctx context.Context, id domain.RecordID) (*domain.Record, error) {
	const q = "SELECT id, original, analysis, sentiment, source, `timestamp` FROM results WHERE id = ?"
	return scanRecord(r.db.QueryRowContext(ctx, q, int64(id)))
}

func (r *ResultRepository) Latest(ctx context.Context, limit int) ([]*domain.Record, error) {
	if limit <= 0 {
		limit = 20
	}
	const q = "SELECT id, original, analysis, sentiment, source, `timestamp` FROM results ORDER BY id DESC LIMIT ?"
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
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
