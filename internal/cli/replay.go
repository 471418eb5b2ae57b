package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/markord/internal/rollback"
	"github.com/roach88/markord/internal/snapshot"
	"github.com/roach88/markord/internal/store"
)

// ReplayOptions holds flags for the replay command.
type ReplayOptions struct {
	*RootOptions
	Database string
	Session  string // optional - specific session only
}

// ReplaySessionResult holds the replay result for a single session.
type ReplaySessionResult struct {
	Session       string                    `json:"session"`
	Registrations int                       `json:"registrations"`
	Digest        string                    `json:"digest"`
	Deterministic bool                      `json:"deterministic"`
	Mismatches    []rollback.ReplayMismatch `json:"mismatches,omitempty"`
}

// ReplayResult holds the overall replay result.
type ReplayResult struct {
	Sessions         []ReplaySessionResult `json:"sessions"`
	TotalSessions    int                   `json:"total_sessions"`
	AllDeterministic bool                  `json:"all_deterministic"`
}

// NewReplayCommand creates the replay command.
func NewReplayCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ReplayOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Rebuild orderings from the journal and verify determinism",
		Long: `Rebuild each session's ordering from its journaled registrations.

Markers are registered into a fresh registry in seq order. A session is
deterministic when every rebuilt index matches the index recorded at
registration time. The digest of the rebuilt order is printed with
--verbose (and always in JSON) for comparison across peers.

Exit codes:
  0 - All sessions are deterministic
  1 - Determinism verification failed
  2 - Command error (database not found, etc.)

Examples:
  markord replay --db ./markord.db
  markord replay --db ./markord.db --session test-session-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "replay specific session only")

	return cmd
}

func runReplay(opts *ReplayOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	var tokens []string
	if opts.Session != "" {
		if _, err := st.GetSession(ctx, opts.Session); err != nil {
			return WrapExitError(ExitCommandError, "failed to find session", err)
		}
		tokens = []string{opts.Session}
	} else {
		sessions, err := st.ListSessions(ctx)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to list sessions", err)
		}
		for _, s := range sessions {
			tokens = append(tokens, s.Token)
		}
	}

	result := ReplayResult{
		Sessions:         make([]ReplaySessionResult, 0, len(tokens)),
		TotalSessions:    len(tokens),
		AllDeterministic: true,
	}

	for _, token := range tokens {
		sr, err := replaySession(ctx, st, token)
		if err != nil {
			return WrapExitError(ExitCommandError, fmt.Sprintf("failed to replay session %s", token), err)
		}
		result.Sessions = append(result.Sessions, sr)
		if !sr.Deterministic {
			result.AllDeterministic = false
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		errCode := ""
		if !result.AllDeterministic {
			errCode = ErrCodeDeterminism
		}
		if err := writeJSON(w, result, errCode, "determinism verification failed"); err != nil {
			return err
		}
	} else {
		writeReplayText(w, result, opts.Verbose)
	}

	if !result.AllDeterministic {
		return NewExitError(ExitFailure, "determinism verification failed")
	}
	return nil
}

// replaySession rebuilds one session and compares each rebuilt index with
// the index recorded when the marker was registered.
func replaySession(ctx context.Context, st *store.Store, token string) (ReplaySessionResult, error) {
	regs, err := st.ReadRegistrations(ctx, token)
	if err != nil {
		return ReplaySessionResult{}, err
	}

	reg, mismatches, err := rollback.Replay(regs)
	if err != nil {
		return ReplaySessionResult{}, fmt.Errorf("replay failed: %w", err)
	}

	digest, err := snapshot.Build(token, reg).Digest()
	if err != nil {
		return ReplaySessionResult{}, err
	}

	return ReplaySessionResult{
		Session:       token,
		Registrations: len(regs),
		Digest:        digest,
		Deterministic: len(mismatches) == 0,
		Mismatches:    mismatches,
	}, nil
}

func writeReplayText(w io.Writer, result ReplayResult, verbose bool) {
	if result.TotalSessions == 0 {
		fmt.Fprintln(w, "No sessions found in database.")
		return
	}

	fmt.Fprintf(w, "Replay Summary: %d session(s)\n", result.TotalSessions)
	fmt.Fprintln(w)

	for _, s := range result.Sessions {
		status := "✓"
		if !s.Deterministic {
			status = "✗"
		}
		fmt.Fprintf(w, "%s Session: %s\n", status, s.Session)
		fmt.Fprintf(w, "  Registrations: %d\n", s.Registrations)
		if verbose {
			fmt.Fprintf(w, "  Digest: %s\n", s.Digest)
		}
		for _, m := range s.Mismatches {
			fmt.Fprintf(w, "  Mismatch: %s\n", m)
		}
		fmt.Fprintln(w)
	}

	if result.AllDeterministic {
		fmt.Fprintln(w, "✓ All sessions verified deterministic")
		return
	}
	fmt.Fprintln(w, "✗ Determinism verification failed")
}
