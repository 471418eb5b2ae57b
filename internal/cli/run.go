package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/roach88/markord/internal/scenario"
	"github.com/roach88/markord/internal/snapshot"
	"github.com/roach88/markord/internal/store"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Database string // optional journal path
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run <scenario>",
		Short: "Execute a registration scenario",
		Long: `Execute a YAML or CUE registration scenario against a fresh session.

Each registration is printed with the index it was assigned and how many
markers it shifted, followed by the final order and its digest. With --db,
registrations are also written to a SQLite journal for later trace/replay.

Exit codes:
  0 - All expectations held
  1 - At least one expectation failed
  2 - Command error (scenario not found, invalid scenario, etc.)

Examples:
  markord run ./scenarios/reused_slot.yaml
  markord run ./scenarios/shift.cue --db ./markord.db --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(opts, args[0], cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite journal (optional)")

	return cmd
}

func runScenario(opts *RunOptions, path string, cmd *cobra.Command) error {
	logger := newLogger(cmd.ErrOrStderr(), opts.Verbose)

	sc, err := scenario.Load(path)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load scenario", err)
	}
	logger.Debug("scenario loaded", "name", sc.Name, "steps", len(sc.Steps))

	runOpts := scenario.Options{Logger: logger}
	if opts.Database != "" {
		st, err := store.Open(opts.Database)
		if err != nil {
			return WrapExitError(ExitCommandError, "failed to open database", err)
		}
		defer func() {
			if closeErr := st.Close(); closeErr != nil {
				logger.Error("error closing database", "error", closeErr)
			}
		}()
		runOpts.Journal = st
	}

	result, err := scenario.Run(cmd.Context(), sc, runOpts)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to run scenario", err)
	}

	w := cmd.OutOrStdout()
	if opts.Format == "json" {
		errCode := ""
		if !result.Pass {
			errCode = ErrCodeScenarioFailed
		}
		if err := writeJSON(w, result, errCode, "scenario expectations failed"); err != nil {
			return err
		}
	} else {
		writeRunText(w, sc.Name, result)
	}

	if !result.Pass {
		return NewExitError(ExitFailure, "scenario expectations failed")
	}
	return nil
}

func writeRunText(w io.Writer, name string, result *scenario.Result) {
	fmt.Fprintf(w, "Scenario: %s (session %s)\n", name, result.Session)
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Registrations:")
	for _, ev := range result.Trace {
		fmt.Fprintf(w, "  [%d] %s -> order %d (shifted %d)\n", ev.Seq, ev.Marker, ev.Order, ev.Shifted)
	}
	fmt.Fprintln(w)

	writeOrder(w, result.Final.Entries)
	fmt.Fprintf(w, "Digest: %s\n", result.Digest)
	fmt.Fprintln(w)

	if result.Pass {
		fmt.Fprintln(w, "✓ All expectations held")
		return
	}
	for _, e := range result.Errors {
		fmt.Fprintf(w, "  ✗ %s\n", e)
	}
	fmt.Fprintln(w, "✗ Scenario failed")
}

// writeOrder prints the final order table shared by run and trace.
func writeOrder(w io.Writer, entries []snapshot.Entry) {
	fmt.Fprintln(w, "Order:")
	for _, e := range entries {
		fmt.Fprintf(w, "  %d: %s\n", e.Order, e.Marker.Handle())
	}
	fmt.Fprintln(w)
}
