package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/markord/internal/rollback"
	"github.com/roach88/markord/internal/testutil"
)

func TestCreateSession_DuplicateTokenRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.CreateSession(ctx, "s-1", "first", 0))
	err := s.CreateSession(ctx, "s-1", "renamed", 5)
	assert.ErrorIs(t, err, ErrSessionExists)

	info, err := s.GetSession(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, SessionInfo{Token: "s-1", Name: "first", CreatedSeq: 0}, info)
}

func TestGetSession_NotFound(t *testing.T) {
	s := createTestStore(t)
	_, err := s.GetSession(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestWriteRegistration_RequiresSession(t *testing.T) {
	s := createTestStore(t)
	err := s.WriteRegistration(context.Background(), "missing", rollback.Registration{Seq: 1, Marker: 1})
	assert.Error(t, err, "foreign key should reject unknown session")
}

func TestReadRegistrations_OrderedBySeq(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, "s-1", "test", 0))

	// Written out of seq order on purpose.
	regs := []rollback.Registration{
		{Seq: 3, Marker: 8, Order: 2},
		{Seq: 1, Marker: 5, Order: 0},
		{Seq: 2, Marker: 3, Order: 0, Shifted: 1},
	}
	for _, r := range regs {
		require.NoError(t, s.WriteRegistration(ctx, "s-1", r))
	}

	got, err := s.ReadRegistrations(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, []rollback.Registration{
		{Seq: 1, Marker: 5, Order: 0},
		{Seq: 2, Marker: 3, Order: 0, Shifted: 1},
		{Seq: 3, Marker: 8, Order: 2},
	}, got)
}

func TestReadRegistrations_Empty(t *testing.T) {
	s := createTestStore(t)
	got, err := s.ReadRegistrations(context.Background(), "none")
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestWriteRegistration_ConflictsRejected(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, "s-1", "test", 0))
	require.NoError(t, s.WriteRegistration(ctx, "s-1", rollback.Registration{Seq: 1, Marker: 9}))

	tests := []struct {
		name string
		reg  rollback.Registration
	}{
		{"same seq", rollback.Registration{Seq: 1, Marker: 4}},
		{"same marker", rollback.Registration{Seq: 2, Marker: 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := s.WriteRegistration(ctx, "s-1", tt.reg)
			assert.ErrorIs(t, err, ErrRegistrationExists)
		})
	}

	got, err := s.ReadRegistrations(ctx, "s-1")
	require.NoError(t, err)
	assert.Equal(t, []rollback.Registration{{Seq: 1, Marker: 9}}, got)
}

func TestMarkerEncoding_HighBit(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()
	require.NoError(t, s.CreateSession(ctx, "s-1", "test", 0))

	high := rollback.Marker(^uint64(0))
	require.NoError(t, s.WriteRegistration(ctx, "s-1", rollback.Registration{Seq: 1, Marker: high}))

	got, err := s.ReadRegistrations(ctx, "s-1")
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, high, got[0].Marker)
}

func TestListSessions(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	empty, err := s.ListSessions(ctx)
	require.NoError(t, err)
	assert.Empty(t, empty)

	require.NoError(t, s.CreateSession(ctx, "b", "second", 0))
	require.NoError(t, s.CreateSession(ctx, "a", "first", 0))
	require.NoError(t, s.WriteRegistration(ctx, "a", rollback.Registration{Seq: 1, Marker: 1}))
	require.NoError(t, s.WriteRegistration(ctx, "a", rollback.Registration{Seq: 2, Marker: 2, Order: 1}))

	sessions, err := s.ListSessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "b", sessions[0].Token, "ties on created_seq keep insertion order")
	assert.Equal(t, 0, sessions[0].Registrations)
	assert.Equal(t, "a", sessions[1].Token)
	assert.Equal(t, 2, sessions[1].Registrations)
}

func TestStore_AsSessionJournal(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	sess, err := rollback.NewSession(ctx, rollback.Config{
		Name:    "journaled",
		Tokens:  testutil.NewFixedTokenGenerator("s-journal"),
		Journal: s,
	})
	require.NoError(t, err)

	cmds := sess.Commands()
	for i := 0; i < 3; i++ {
		require.NoError(t, cmds.Spawn().AddRollback().Err())
	}
	_, err = sess.Flush(ctx)
	require.NoError(t, err)

	regs, err := s.ReadRegistrations(ctx, "s-journal")
	require.NoError(t, err)
	require.Len(t, regs, 3)

	_, mismatches, err := rollback.Replay(regs)
	require.NoError(t, err)
	assert.Empty(t, mismatches)
}

func TestStore_SecondSessionWithSameTokenFails(t *testing.T) {
	s := createTestStore(t)
	ctx := context.Background()

	_, err := rollback.NewSession(ctx, rollback.Config{
		Name:    "first",
		Tokens:  testutil.NewFixedTokenGenerator("shared"),
		Journal: s,
	})
	require.NoError(t, err)

	_, err = rollback.NewSession(ctx, rollback.Config{
		Name:    "second",
		Tokens:  testutil.NewFixedTokenGenerator("shared"),
		Journal: s,
	})
	assert.ErrorIs(t, err, ErrSessionExists)
}
