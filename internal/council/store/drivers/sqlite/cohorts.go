package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/store"
)

type cohortsRepo struct {
	db *sql.DB
}

func (r *cohortsRepo) CreateCohort(ctx context.Context, c domain.Cohort) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO years (year, closed, created_at)
		VALUES (?, ?, ?)`,
		c.Year, c.Closed, c.CreatedAt.UnixMilli(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *cohortsRepo) GetCohort(ctx context.Context, year int) (domain.Cohort, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT year, closed, created_at FROM years WHERE year = ?`, year)

	c, err := scanCohort(row)
	if err != nil {
		return domain.Cohort{}, mapNotFound(err)
	}
	return c, nil
}

func (r *cohortsRepo) ListCohorts(ctx context.Context) ([]domain.Cohort, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year, closed, created_at FROM years ORDER BY year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Cohort
	for rows.Next() {
		c, err := scanCohort(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *cohortsRepo) ListOpenYears(ctx context.Context, limit int) ([]int, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT year FROM years WHERE closed = 0 ORDER BY year DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []int
	for rows.Next() {
		var year int
		if err := rows.Scan(&year); err != nil {
			return nil, err
		}
		out = append(out, year)
	}
	return out, rows.Err()
}

func scanCohort(row rowScanner) (domain.Cohort, error) {
	var (
		c         domain.Cohort
		createdAt int64
	)
	if err := row.Scan(&c.Year, &c.Closed, &createdAt); err != nil {
		return domain.Cohort{}, err
	}
	c.CreatedAt = time.UnixMilli(createdAt).UTC()
	return c, nil
}
