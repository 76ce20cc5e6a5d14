package repo

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BuzzLyutic/task-tracker/internal/model"
)

var (
	ErrorNotFound = errors.New("not found")
	ErrorInvalid  = errors.New("invalid record")
)

type GenerationRepo struct { // Журнал генераций в Postgres
	pool *pgxpool.Pool
}

func NewGenerationRepo(pool *pgxpool.Pool) *GenerationRepo {
	return &GenerationRepo{
		pool: pool,
	}
}

func (r *GenerationRepo) Create(ctx context.Context, rec model.GenerationRecord) (model.GenerationRecord, error) {
	err := r.pool.QueryRow(ctx, `
		INSERT INTO generations (model, query, outcome, detail)
		VALUES ($1, $2, $3, $4)
		RETURNING id, model, query, outcome, detail, created_at
	`, rec.Model, rec.Query, rec.Outcome, rec.Detail).Scan(
		&rec.ID, &rec.Model, &rec.Query, &rec.Outcome, &rec.Detail, &rec.CreatedAt,
	)
	return rec, r.mapError(err)
}

func (r *GenerationRepo) Get(ctx context.Context, id int64) (model.GenerationRecord, error) {
	var rec model.GenerationRecord
	err := r.pool.QueryRow(ctx, `
		SELECT id, model, query, outcome, detail, created_at
		FROM generations
		WHERE id = $1
	`, id).Scan(
		&rec.ID, &rec.Model, &rec.Query, &rec.Outcome, &rec.Detail, &rec.CreatedAt,
	)

	if errors.Is(err, pgx.ErrNoRows) {
		return rec, ErrorNotFound
	}
	return rec, err
}

func (r *GenerationRepo) List(ctx context.Context, filter model.GenerationFilter, limit int) ([]model.GenerationRecord, error) {
	query := `
		SELECT id, model, query, outcome, detail, created_at
		FROM generations
		WHERE ($1::text IS NULL OR outcome = $1)
		ORDER BY created_at DESC, id DESC
		LIMIT $2
	`

	var outcome *string
	if filter.Outcome != nil {
		s := string(*filter.Outcome)
		outcome = &s
	}

	rows, err := r.pool.Query(ctx, query, outcome, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]model.GenerationRecord, 0, limit)
	for rows.Next() {
		var rec model.GenerationRecord
		if err := rows.Scan(&rec.ID, &rec.Model, &rec.Query, &rec.Outcome, &rec.Detail, &rec.CreatedAt); err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (r *GenerationRepo) GetStats(ctx context.Context) (Stats, error) {
	stats := Stats{
		ByOutcome: make(map[string]int),
		ByModel:   make(map[string]int),
	}

	rows, err := r.pool.Query(ctx, `
		SELECT outcome, model, COUNT(*)
		FROM generations
		GROUP BY outcome, model
	`)
	if err != nil {
		return stats, err
	}
	defer rows.Close()

	for rows.Next() {
		var outcome, modelName string
		var n int
		if err := rows.Scan(&outcome, &modelName, &n); err != nil {
			return stats, err
		}
		stats.ByOutcome[outcome] += n
		stats.ByModel[modelName] += n
		stats.TotalGenerations += n
	}
	return stats, rows.Err()
}

func (r *GenerationRepo) mapError(err error) error {
	if err == nil {
		return nil
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23514" { // check_violation
			return ErrorInvalid
		}
	}
	return err
}
