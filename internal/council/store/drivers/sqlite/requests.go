package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/yplabs/council/internal/council/domain"
)

type requestsRepo struct {
	db *sql.DB
}

func (r *requestsRepo) CreateRequest(ctx context.Context, req domain.RegistrationRequest) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO registration_requests
			(id, full_name, account_kind, student_id, email, password, year, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		req.ID, req.FullName, string(req.AccountKind), req.StudentID,
		req.Email, req.Password, req.Year, req.CreatedAt.UnixMilli(),
	)
	return err
}

func (r *requestsRepo) GetRequestByID(ctx context.Context, id string) (domain.RegistrationRequest, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, full_name, account_kind, student_id, email, password, year, created_at
		FROM registration_requests
		WHERE id = ?`, id)

	req, err := scanRequest(row)
	if err != nil {
		return domain.RegistrationRequest{}, mapNotFound(err)
	}
	return req, nil
}

func (r *requestsRepo) ListRequests(ctx context.Context) ([]domain.RegistrationRequest, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, full_name, account_kind, student_id, email, password, year, created_at
		FROM registration_requests
		ORDER BY created_at ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.RegistrationRequest
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, req)
	}
	return out, rows.Err()
}

func (r *requestsRepo) DeleteRequest(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM registration_requests WHERE id = ?`, id)
	return err
}

func (r *requestsRepo) ExistsByStudentID(ctx context.Context, studentID string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM registration_requests WHERE student_id = ?)`,
		studentID,
	).Scan(&exists)
	return exists, err
}

func (r *requestsRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx, `
		SELECT EXISTS (SELECT 1 FROM registration_requests WHERE email = ?)`,
		email,
	).Scan(&exists)
	return exists, err
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRequest(row rowScanner) (domain.RegistrationRequest, error) {
	var (
		req       domain.RegistrationRequest
		kind      string
		createdAt int64
	)
	err := row.Scan(&req.ID, &req.FullName, &kind, &req.StudentID,
		&req.Email, &req.Password, &req.Year, &createdAt)
	if err != nil {
		return domain.RegistrationRequest{}, err
	}
	req.AccountKind = domain.AccountKind(kind)
	req.CreatedAt = time.UnixMilli(createdAt).UTC()
	return req, nil
}
