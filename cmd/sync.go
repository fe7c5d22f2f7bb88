package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"querychat/cli/internal/render"
	"querychat/cli/internal/session"
)

var syncAsync bool

// syncCmd runs a one-shot schema synchronization. In async mode the backend
// answers with a job id and the CLI polls until the job reaches a terminal
// state.
var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Synchronize the database schema into the backend's vector index",
	Long: `The sync command asks the backend to re-ingest the database schema: extract
tables, chunk them, embed the chunks and upsert the vectors. For large schemas
pass --async; the backend then runs the sync as a background job and the CLI
polls its status until it finishes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := render.New()
		var failed bool
		sess := newSession(session.WithNotifier(func(n session.Notice) {
			if n.Kind == session.NoticeSyncFailed {
				failed = true
			}
			r.Notice(n)
		}))

		stopSpin := startInlineSpinner(os.Stdout, "syncing schema", brailleFrames, 120*time.Millisecond)
		sess.SyncSchema(cmd.Context(), syncAsync)
		stopSpin()

		if failed {
			return errors.New("schema sync failed")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)
	syncCmd.Flags().BoolVar(&syncAsync, "async", false, "Run the sync as a background job and poll its status")
}
