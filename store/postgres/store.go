package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/authward/authward/store"
	"github.com/authward/authward/store/postgres/migrations"
)

// Store is a PostgreSQL-backed [store.TokenStore] over database/sql
// (pgx stdlib driver). Records are keyed by the SHA-256 of the token value
// so the raw token never reaches the database.
type Store struct {
	db *sql.DB
}

// NewStore constructs a store bound to an already opened database handle.
// The caller keeps ownership of the handle unless the store was built with
// [Open].
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Open connects to PostgreSQL with the given DSN and runs the embedded
// migrations. The returned store owns the connection.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	s := &Store{db: db}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}

	return s, nil
}

// Migrate applies the embedded goose migrations.
func (s *Store) Migrate(ctx context.Context) error {
	goose.SetBaseFS(migrations.Migrations)

	if err := goose.UpContext(ctx, s.db, "."); err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}

	return nil
}

// Save inserts a new refresh token record.
func (s *Store) Save(ctx context.Context, rec *store.Record) error {
	query := `
		INSERT INTO refresh_tokens (id, token_hash, subject_id, issued_at, expires_at, revoked, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err := s.db.ExecContext(ctx, query,
		rec.ID,
		store.HashToken(rec.TokenValue),
		rec.SubjectID,
		rec.IssuedAt,
		rec.ExpiresAt,
		rec.Revoked,
		rec.CreatedAt,
		rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return nil
}

// Find returns the record for the token value, revoked or not.
func (s *Store) Find(ctx context.Context, tokenValue string) (*store.Record, error) {
	query := `
		SELECT id, subject_id, issued_at, expires_at, revoked, created_at, updated_at
		FROM refresh_tokens
		WHERE token_hash = $1
	`
	rec := &store.Record{TokenValue: tokenValue}
	err := s.db.QueryRowContext(ctx, query, store.HashToken(tokenValue)).Scan(
		&rec.ID,
		&rec.SubjectID,
		&rec.IssuedAt,
		&rec.ExpiresAt,
		&rec.Revoked,
		&rec.CreatedAt,
		&rec.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return rec, nil
}

// Revoke flips the revoked flag if it is still clear. The conditional
// UPDATE is the compare-and-swap: under concurrent calls for the same
// token exactly one caller sees one affected row.
func (s *Store) Revoke(ctx context.Context, tokenValue string) (bool, error) {
	tokenHash := store.HashToken(tokenValue)

	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, updated_at = NOW()
		WHERE token_hash = $1 AND NOT revoked
	`
	res, err := s.db.ExecContext(ctx, query, tokenHash)
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if affected > 0 {
		return true, nil
	}

	// Nothing flipped: either the record is already revoked or it does
	// not exist.
	var exists bool
	existsQuery := `SELECT EXISTS (SELECT 1 FROM refresh_tokens WHERE token_hash = $1)`
	if err := s.db.QueryRowContext(ctx, existsQuery, tokenHash).Scan(&exists); err != nil {
		return false, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	if !exists {
		return false, store.ErrNotFound
	}
	return false, nil
}

// RevokeAllForSubject revokes every live record for the subject and
// returns the number flipped.
func (s *Store) RevokeAllForSubject(ctx context.Context, subjectID string) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET revoked = TRUE, updated_at = NOW()
		WHERE subject_id = $1 AND NOT revoked AND expires_at > NOW()
	`
	res, err := s.db.ExecContext(ctx, query, subjectID)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return affected, nil
}

// PurgeExpired deletes records whose expiry is at or before now and
// returns the number deleted.
func (s *Store) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	query := `
		DELETE FROM refresh_tokens
		WHERE expires_at <= $1
	`
	res, err := s.db.ExecContext(ctx, query, now)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%w: %v", store.ErrUnavailable, err)
	}
	return affected, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}
