// Package local is a self-hosted identity provider backed by its own SQLite
// database. It stands in for a hosted auth vendor: the council service talks
// to it only through the identity.Store interface and shares no transaction
// with it.
package local

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/yplabs/council/internal/council/identity"
	"github.com/yplabs/council/pkg/cryptox"
	"github.com/yplabs/council/pkg/jwtx"
)

const schema = `
CREATE TABLE IF NOT EXISTS identities (
    id TEXT PRIMARY KEY,
    email TEXT NOT NULL,
    email_confirmed INTEGER NOT NULL DEFAULT 0,
    password_hash TEXT NOT NULL,
    full_name TEXT NOT NULL DEFAULT '',
    student_id TEXT NOT NULL DEFAULT '',
    created_at INTEGER NOT NULL
);
CREATE UNIQUE INDEX IF NOT EXISTS idx_identities_email ON identities (email);
`

type Store struct {
	db     *sql.DB
	signer *jwtx.Signer
}

var _ identity.Store = (*Store)(nil)

// NewStore opens the identity database at dsn and ensures its schema. The
// signer issues and verifies session tokens for Authenticate/ResolveToken.
func NewStore(ctx context.Context, dsn string, signer *jwtx.Signer) (*Store, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open identity database: %w", err)
	}

	// SQLite allows a single writer; one pooled connection avoids
	// SQLITE_BUSY and keeps in-memory databases on one connection.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("ensure identity schema: %w", err)
	}
	return &Store{db: db, signer: signer}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// normalizeEmail lowercases and trims so lookups are case-insensitive.
func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *Store) Create(ctx context.Context, params identity.CreateParams) (identity.Identity, error) {
	hash, err := cryptox.HashPassword(params.Password)
	if err != nil {
		return identity.Identity{}, fmt.Errorf("hash password: %w", err)
	}

	ident := identity.Identity{
		ID:             uuid.NewString(),
		Email:          normalizeEmail(params.Email),
		EmailConfirmed: params.EmailConfirmed,
		FullName:       params.FullName,
		StudentID:      params.StudentID,
		CreatedAt:      time.Now().UTC(),
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO identities
			(id, email, email_confirmed, password_hash, full_name, student_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		ident.ID, ident.Email, ident.EmailConfirmed, hash,
		ident.FullName, ident.StudentID, ident.CreatedAt.UnixMilli(),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return identity.Identity{}, identity.ErrAlreadyExists
		}
		return identity.Identity{}, err
	}
	return ident, nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM identities WHERE id = ?`, id)
	return err
}

func (s *Store) Get(ctx context.Context, id string) (identity.Identity, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, email, email_confirmed, full_name, student_id, created_at
		FROM identities
		WHERE id = ?`, id)
	return scanIdentity(row)
}

func (s *Store) List(ctx context.Context) ([]identity.Identity, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, email, email_confirmed, full_name, student_id, created_at
		FROM identities
		ORDER BY created_at DESC, id DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []identity.Identity
	for rows.Next() {
		ident, err := scanIdentity(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ident)
	}
	return out, rows.Err()
}

func (s *Store) Authenticate(ctx context.Context, email, password string) (string, error) {
	var (
		id   string
		hash string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, password_hash FROM identities WHERE email = ?`,
		normalizeEmail(email),
	).Scan(&id, &hash)
	if errors.Is(err, sql.ErrNoRows) {
		return "", identity.ErrInvalidCredentials
	}
	if err != nil {
		return "", err
	}

	if err := cryptox.VerifyPassword(password, hash); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return "", identity.ErrInvalidCredentials
		}
		return "", err
	}

	claims := jwtx.NewSessionClaims(id, normalizeEmail(email), s.signer.Issuer(), jwtx.DefaultSessionTTL, time.Now())
	return s.signer.Sign(claims)
}

func (s *Store) ResolveToken(ctx context.Context, token string) (string, error) {
	claims, err := s.signer.Verify(token)
	if err != nil {
		return "", identity.ErrInvalidToken
	}

	// The token subject must still exist; deleted identities stay revoked
	// even while their tokens are unexpired.
	var id string
	err = s.db.QueryRowContext(ctx, `SELECT id FROM identities WHERE id = ?`, claims.Subject).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return "", identity.ErrInvalidToken
	}
	if err != nil {
		return "", err
	}
	return id, nil
}

func (s *Store) UpdatePassword(ctx context.Context, id, password string) error {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE identities SET password_hash = ? WHERE id = ?`, hash, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return identity.ErrNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanIdentity(row rowScanner) (identity.Identity, error) {
	var (
		ident     identity.Identity
		createdAt int64
	)
	err := row.Scan(&ident.ID, &ident.Email, &ident.EmailConfirmed,
		&ident.FullName, &ident.StudentID, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return identity.Identity{}, identity.ErrNotFound
	}
	if err != nil {
		return identity.Identity{}, err
	}
	ident.CreatedAt = time.UnixMilli(createdAt).UTC()
	return ident, nil
}
