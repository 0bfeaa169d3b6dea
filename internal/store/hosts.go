package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

func (s *Store) CreateHost(ctx context.Context, h Host) (*Host, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hosts (uid, username, email, password_hash, created_at) VALUES (?, ?, ?, ?, ?)`,
		h.UID, h.Username, h.Email, h.PasswordHash, now,
	)
	if isConstraint(err) {
		return nil, fmt.Errorf("insert host %q: %w", h.Username, ErrDuplicate)
	}
	if err != nil {
		return nil, fmt.Errorf("insert host: %w", err)
	}
	return s.GetHost(ctx, h.UID)
}

func (s *Store) GetHost(ctx context.Context, uid string) (*Host, error) {
	return s.scanHost(s.db.QueryRowContext(ctx,
		`SELECT uid, username, email, password_hash, created_at FROM hosts WHERE uid = ?`, uid,
	), uid)
}

func (s *Store) GetHostByEmail(ctx context.Context, email string) (*Host, error) {
	return s.scanHost(s.db.QueryRowContext(ctx,
		`SELECT uid, username, email, password_hash, created_at FROM hosts WHERE email = ?`, email,
	), email)
}

func (s *Store) scanHost(row *sql.Row, key string) (*Host, error) {
	h := &Host{}
	var createdAt string
	err := row.Scan(&h.UID, &h.Username, &h.Email, &h.PasswordHash, &createdAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get host %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get host %q: %w", key, err)
	}
	h.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return h, nil
}

func isConstraint(err error) bool {
	var se *sqlite.Error
	if !errors.As(err, &se) {
		return false
	}
	switch se.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
