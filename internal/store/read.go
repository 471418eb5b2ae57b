package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/markord/internal/rollback"
)

// ErrSessionNotFound is returned when a session token is not in the journal.
var ErrSessionNotFound = errors.New("session not found")

// SessionInfo summarizes a journaled session.
type SessionInfo struct {
	Token         string `json:"token"`
	Name          string `json:"name"`
	CreatedSeq    int64  `json:"created_seq"`
	Registrations int    `json:"registrations"`
}

// GetSession returns a single session summary.
func (s *Store) GetSession(ctx context.Context, token string) (SessionInfo, error) {
	var info SessionInfo
	err := s.db.QueryRowContext(ctx, `
		SELECT s.token, s.name, s.created_seq, COUNT(r.seq)
		FROM sessions s
		LEFT JOIN registrations r ON r.session_token = s.token
		WHERE s.token = ?
		GROUP BY s.token
	`, token).Scan(&info.Token, &info.Name, &info.CreatedSeq, &info.Registrations)
	if errors.Is(err, sql.ErrNoRows) {
		return SessionInfo{}, fmt.Errorf("get session %s: %w", token, ErrSessionNotFound)
	}
	if err != nil {
		return SessionInfo{}, fmt.Errorf("get session: %w", err)
	}
	return info, nil
}

// ListSessions returns all sessions in creation order.
//
// Returns an empty slice (not nil) if the journal has no sessions.
func (s *Store) ListSessions(ctx context.Context) ([]SessionInfo, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT s.token, s.name, s.created_seq, COUNT(r.seq)
		FROM sessions s
		LEFT JOIN registrations r ON r.session_token = s.token
		GROUP BY s.token
		ORDER BY s.created_seq ASC, s.rowid ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}
	defer rows.Close()

	sessions := []SessionInfo{}
	for rows.Next() {
		var info SessionInfo
		if err := rows.Scan(&info.Token, &info.Name, &info.CreatedSeq, &info.Registrations); err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, info)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// ReadRegistrations returns every registration for a session, ORDER BY seq ASC.
//
// Returns an empty slice (not nil) if the session has no registrations.
func (s *Store) ReadRegistrations(ctx context.Context, token string) ([]rollback.Registration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT seq, marker, order_at_insert, shifted
		FROM registrations
		WHERE session_token = ?
		ORDER BY seq ASC
	`, token)
	if err != nil {
		return nil, fmt.Errorf("query registrations: %w", err)
	}
	defer rows.Close()

	regs := []rollback.Registration{}
	for rows.Next() {
		var (
			reg    rollback.Registration
			marker int64
		)
		if err := rows.Scan(&reg.Seq, &marker, &reg.Order, &reg.Shifted); err != nil {
			return nil, fmt.Errorf("scan registration: %w", err)
		}
		reg.Marker = decodeMarker(marker)
		regs = append(regs, reg)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate registrations: %w", err)
	}
	return regs, nil
}
