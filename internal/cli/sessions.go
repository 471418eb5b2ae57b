package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/markord/internal/store"
)

// SessionsOptions holds flags for the sessions command.
type SessionsOptions struct {
	*RootOptions
	Database string
}

// NewSessionsCommand creates the sessions command.
func NewSessionsCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &SessionsOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "List journaled sessions",
		Example: `  markord sessions --db ./markord.db
  markord sessions --db ./markord.db --format json`,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := store.Open(opts.Database)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to open database", err)
			}
			defer st.Close()

			sessions, err := st.ListSessions(cmd.Context())
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to list sessions", err)
			}

			w := cmd.OutOrStdout()
			if opts.Format == "json" {
				return writeJSON(w, sessions, "", "")
			}
			if len(sessions) == 0 {
				fmt.Fprintln(w, "No sessions found in database.")
				return nil
			}
			for _, s := range sessions {
				fmt.Fprintf(w, "%s  %-24s %d registration(s)\n", s.Token, s.Name, s.Registrations)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&opts.Database, "db", "", "path to SQLite database (required)")
	_ = cmd.MarkFlagRequired("db")

	return cmd
}
