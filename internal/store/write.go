package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/markord/internal/rollback"
)

var _ rollback.Journal = (*Store)(nil)

var (
	// ErrSessionExists is returned when a session token is already journaled.
	ErrSessionExists = errors.New("session already exists")

	// ErrRegistrationExists is returned when a session already journaled the
	// same seq or the same marker.
	ErrRegistrationExists = errors.New("registration already exists")
)

// CreateSession records a new session.
//
// Each session token is journaled once. A second session under the same
// token fails with ErrSessionExists rather than appending to the first.
func (s *Store) CreateSession(ctx context.Context, token, name string, seq int64) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (token, name, created_seq)
		VALUES (?, ?, ?)
		ON CONFLICT(token) DO NOTHING
	`, token, name, seq)
	if err != nil {
		return fmt.Errorf("create session: %w", err)
	}
	return requireInserted(res, fmt.Errorf("create session %s: %w", token, ErrSessionExists))
}

// WriteRegistration appends a registration event for a session.
//
// A row that clashes on (session, seq) or (session, marker) fails with
// ErrRegistrationExists.
//
// Note: the session must exist (foreign key constraint).
func (s *Store) WriteRegistration(ctx context.Context, token string, reg rollback.Registration) error {
	res, err := s.db.ExecContext(ctx, `
		INSERT INTO registrations
		(session_token, seq, marker, order_at_insert, shifted)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT DO NOTHING
	`,
		token,
		reg.Seq,
		encodeMarker(reg.Marker),
		reg.Order,
		reg.Shifted,
	)
	if err != nil {
		return fmt.Errorf("write registration: %w", err)
	}
	return requireInserted(res, fmt.Errorf("write registration seq %d %s: %w", reg.Seq, reg.Marker, ErrRegistrationExists))
}

// requireInserted returns conflict when an ON CONFLICT DO NOTHING insert
// skipped its row.
func requireInserted(res sql.Result, conflict error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return conflict
	}
	return nil
}

// encodeMarker reinterprets the marker bits as a signed SQLite integer.
func encodeMarker(m rollback.Marker) int64 {
	return int64(m)
}

// decodeMarker reverses encodeMarker.
func decodeMarker(v int64) rollback.Marker {
	return rollback.Marker(uint64(v))
}
