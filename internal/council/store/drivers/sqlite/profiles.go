package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/yplabs/council/internal/council/domain"
	"github.com/yplabs/council/internal/council/store"
)

type profilesRepo struct {
	db *sql.DB
}

func (r *profilesRepo) CreateProfile(ctx context.Context, p domain.Profile) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO profiles
			(id, identity_id, full_name, account_kind, student_id, year, role, approved, disabled, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		p.ID, p.IdentityID, p.FullName, string(p.AccountKind), p.StudentID,
		p.Year, string(p.Role), p.Approved, p.Disabled, p.CreatedAt.UnixMilli(),
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

func (r *profilesRepo) GetProfileByIdentityID(ctx context.Context, identityID string) (domain.Profile, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, identity_id, full_name, account_kind, student_id, year, role, approved, disabled, created_at
		FROM profiles
		WHERE identity_id = ?`, identityID)

	p, err := scanProfile(row)
	if err != nil {
		return domain.Profile{}, mapNotFound(err)
	}
	return p, nil
}

func (r *profilesRepo) ListProfiles(ctx context.Context) ([]domain.Profile, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, identity_id, full_name, account_kind, student_id, year, role, approved, disabled, created_at
		FROM profiles
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Profile
	for rows.Next() {
		p, err := scanProfile(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

func (r *profilesRepo) UpdateProfileFlags(ctx context.Context, identityID string, update store.ProfileUpdate) error {
	p, err := r.GetProfileByIdentityID(ctx, identityID)
	if err != nil {
		return err
	}

	if update.Role != nil {
		p.Role = *update.Role
	}
	if update.Approved != nil {
		p.Approved = *update.Approved
	}
	if update.Disabled != nil {
		p.Disabled = *update.Disabled
	}

	_, err = r.db.ExecContext(ctx, `
		UPDATE profiles
		SET role = ?, approved = ?, disabled = ?
		WHERE identity_id = ?`,
		string(p.Role), p.Approved, p.Disabled, identityID,
	)
	return err
}

func (r *profilesRepo) DeleteProfileByIdentityID(ctx context.Context, identityID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM profiles WHERE identity_id = ?`, identityID)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return store.ErrNotFound
	}
	return nil
}

func scanProfile(row rowScanner) (domain.Profile, error) {
	var (
		p         domain.Profile
		kind      string
		role      string
		createdAt int64
	)
	err := row.Scan(&p.ID, &p.IdentityID, &p.FullName, &kind, &p.StudentID,
		&p.Year, &role, &p.Approved, &p.Disabled, &createdAt)
	if err != nil {
		return domain.Profile{}, err
	}
	p.AccountKind = domain.AccountKind(kind)
	p.Role = domain.Role(role)
	p.CreatedAt = time.UnixMilli(createdAt).UTC()
	return p, nil
}
