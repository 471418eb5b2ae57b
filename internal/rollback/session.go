package rollback

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/roach88/markord/internal/entity"
)

// Config configures a new Session. Zero values select defaults.
type Config struct {
	// Name is a human-readable label stored with the session.
	Name string

	// Tokens generates the session token. Defaults to UUIDv7Generator.
	Tokens TokenGenerator

	// Clock stamps registrations. Defaults to NewClock().
	Clock SeqClock

	// Journal receives registration events. Optional.
	Journal Journal

	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Session is the explicit context for one simulation.
//
// Exactly one Session should exist per logical simulation. Its registry
// lives as long as the session and only grows.
type Session struct {
	token   string
	name    string
	clock   SeqClock
	journal Journal
	logger  *slog.Logger

	queue    *commandQueue
	registry *Synced[Marker]

	mu    sync.Mutex // guards alloc and tags; held for the whole of Flush
	alloc *entity.Allocator
	tags  map[entity.Handle]Marker
}

// NewSession creates an empty session and announces it to the journal.
func NewSession(ctx context.Context, cfg Config) (*Session, error) {
	tokens := cfg.Tokens
	if tokens == nil {
		tokens = UUIDv7Generator{}
	}
	clock := cfg.Clock
	if clock == nil {
		clock = NewClock()
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	s := &Session{
		token:    tokens.Generate(),
		name:     cfg.Name,
		clock:    clock,
		journal:  cfg.Journal,
		logger:   logger,
		queue:    newCommandQueue(),
		registry: NewSynced[Marker](),
		alloc:    entity.NewAllocator(),
		tags:     make(map[entity.Handle]Marker),
	}

	if s.journal != nil {
		if err := s.journal.CreateSession(ctx, s.token, s.name, clock.Current()); err != nil {
			return nil, fmt.Errorf("create session: %w", err)
		}
	}

	logger.Debug("session created", "session", s.token, "name", s.name)
	return s, nil
}

// Token returns the session token.
func (s *Session) Token() string {
	return s.token
}

// Name returns the session name.
func (s *Session) Name() string {
	return s.name
}

// Registry returns the read-only view of the session's markers.
// Safe to use from any goroutine.
func (s *Session) Registry() Reader[Marker] {
	return s.registry
}

// OrderOf returns the stable order index of m.
// Panics with a *ContractError if m was never registered.
func (s *Session) OrderOf(m Marker) int {
	return s.registry.OrderOf(m)
}

// MarkerOf returns the marker tagged on a live entity.
func (s *Session) MarkerOf(h entity.Handle) (Marker, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.tags[h]
	return m, ok
}

// IsAlive reports whether h refers to a live entity.
func (s *Session) IsAlive(h entity.Handle) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.alloc.IsAlive(h)
}

// Pending returns the number of commands waiting for Flush.
func (s *Session) Pending() int {
	return s.queue.Len()
}

// Close rejects further commands. Queued commands can still be flushed.
func (s *Session) Close() {
	s.queue.Close()
}

// Flush applies every queued command in FIFO order and returns the
// registrations it performed.
//
// A command that cannot be applied is skipped and its error is joined into
// the returned error; the remaining commands still run. If ctx is cancelled,
// Flush stops between commands and leaves the rest queued.
func (s *Session) Flush(ctx context.Context) ([]Registration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var applied []Registration
	var errs []error

	for {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		cmd, ok := s.queue.TryDequeue()
		if !ok {
			break
		}

		reg, registered, err := s.apply(ctx, cmd)
		if registered {
			applied = append(applied, reg)
		}
		if err != nil {
			s.logger.Warn("command failed", "session", s.token, "command", cmd.Type, "entity", cmd.Entity, "error", err)
			errs = append(errs, err)
		}
	}

	return applied, errors.Join(errs...)
}

// apply runs one command. Caller holds s.mu.
func (s *Session) apply(ctx context.Context, cmd Command) (Registration, bool, error) {
	switch cmd.Type {
	case CommandAddRollback:
		h := cmd.Entity
		if !s.alloc.IsAlive(h) {
			return Registration{}, false, fmt.Errorf("add rollback to %s: %w", h, entity.ErrNotAlive)
		}
		if _, ok := s.tags[h]; ok {
			return Registration{}, false, fmt.Errorf("add rollback to %s: %w", h, ErrAlreadyTagged)
		}
		m := newMarker(h)
		if s.registry.Contains(m) {
			return Registration{}, false, fmt.Errorf("add rollback to %s: %w", h, ErrMarkerExists)
		}
		s.tags[h] = m
		return s.register(ctx, m)

	case CommandRegisterMarker:
		if s.registry.Contains(cmd.Marker) {
			return Registration{}, false, fmt.Errorf("register %s: %w", cmd.Marker, ErrMarkerExists)
		}
		return s.register(ctx, cmd.Marker)

	case CommandDespawn:
		if err := s.alloc.Free(cmd.Entity); err != nil {
			return Registration{}, false, fmt.Errorf("despawn: %w", err)
		}
		delete(s.tags, cmd.Entity)
		s.logger.Debug("entity despawned", "session", s.token, "entity", cmd.Entity)
		return Registration{}, false, nil

	default:
		return Registration{}, false, fmt.Errorf("unknown command type %d", cmd.Type)
	}
}

// register inserts m into the registry and journals the event. The
// in-memory registration stands even if the journal write fails.
func (s *Session) register(ctx context.Context, m Marker) (Registration, bool, error) {
	before := s.registry.Len()
	idx := s.registry.register(m)

	reg := Registration{
		Seq:     s.clock.Next(),
		Marker:  m,
		Order:   idx,
		Shifted: before - idx,
	}
	s.logger.Debug("marker registered",
		"session", s.token,
		"marker", m,
		"order", idx,
		"shifted", reg.Shifted,
		"seq", reg.Seq,
	)

	if s.journal != nil {
		if err := s.journal.WriteRegistration(ctx, s.token, reg); err != nil {
			return reg, true, fmt.Errorf("journal %s: %w", m, err)
		}
	}
	return reg, true, nil
}
