package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/markord/internal/rollback"
	"github.com/roach88/markord/internal/snapshot"
	"github.com/roach88/markord/internal/store"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	Database string
	Session  string
}

// TraceEvent is one registration in the trace timeline.
type TraceEvent struct {
	Seq     int64  `json:"seq"`
	Marker  string `json:"marker"`
	Bits    uint64 `json:"bits"`
	Order   int    `json:"order"`
	Shifted int    `json:"shifted"`
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Session  string           `json:"session"`
	Name     string           `json:"name"`
	Timeline []TraceEvent     `json:"timeline"`
	Order    []snapshot.Entry `json:"order"`
	Digest   string           `json:"digest"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace",
		Short: "Show how a session's ordering was built",
		Long: `Show the registration timeline for a journaled session.

Each registration lists the index it was assigned and how many previously
registered markers it shifted. The final order is rebuilt from the journal.

Examples:
  markord trace --db ./markord.db --session test-session-1
  markord trace --db ./markord.db --session test-session-1 --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")
	cmd.Flags().StringVar(&opts.Session, "session", "", "session token to trace (required)")
	_ = cmd.MarkFlagRequired("session")

	return cmd
}

func runTrace(opts *TraceOptions, cmd *cobra.Command) error {
	ctx := cmd.Context()

	st, err := store.Open(opts.Database)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open database", err)
	}
	defer st.Close()

	info, err := st.GetSession(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to find session", err)
	}

	regs, err := st.ReadRegistrations(ctx, opts.Session)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to read registrations", err)
	}

	reg, _, err := rollback.Replay(regs)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to rebuild order", err)
	}
	snap := snapshot.Build(info.Token, reg)
	digest, err := snap.Digest()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to compute digest", err)
	}

	result := TraceResult{
		Session:  info.Token,
		Name:     info.Name,
		Timeline: make([]TraceEvent, len(regs)),
		Order:    snap.Entries,
		Digest:   digest,
	}
	for i, r := range regs {
		result.Timeline[i] = TraceEvent{
			Seq:     r.Seq,
			Marker:  r.Marker.Handle().String(),
			Bits:    uint64(r.Marker),
			Order:   r.Order,
			Shifted: r.Shifted,
		}
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		return writeJSON(w, result, "", "")
	}
	writeTraceText(w, result)
	return nil
}

func writeTraceText(w io.Writer, result TraceResult) {
	fmt.Fprintf(w, "Session: %s (%s)\n", result.Session, result.Name)
	fmt.Fprintln(w)

	if len(result.Timeline) == 0 {
		fmt.Fprintln(w, "No registrations recorded.")
		return
	}

	fmt.Fprintln(w, "Timeline:")
	for _, ev := range result.Timeline {
		fmt.Fprintf(w, "  [%d] %s -> order %d (shifted %d)\n", ev.Seq, ev.Marker, ev.Order, ev.Shifted)
	}
	fmt.Fprintln(w)

	writeOrder(w, result.Order)
	fmt.Fprintf(w, "Digest: %s\n", result.Digest)
}
