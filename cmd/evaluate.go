package cmd

import (
	"errors"
	"os"
	"time"

	"github.com/spf13/cobra"

	"querychat/cli/internal/render"
	"querychat/cli/internal/session"
)

// evaluateCmd triggers a full RAGAS benchmark run server-side and renders the
// averaged metrics plus the per-question records.
var evaluateCmd = &cobra.Command{
	Use:     "evaluate",
	Aliases: []string{"eval"},
	Short:   "Run the RAGAS benchmark evaluation on the backend",
	Long: `The evaluate command asks the backend to run its full benchmark set and
score the answers with RAGAS metrics (faithfulness, answer relevancy, context
precision, context recall, execution accuracy). The run happens entirely
server-side and can take several minutes.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := render.New()
		sess := newSession(session.WithNotifier(func(n session.Notice) {
			r.Notice(n)
		}))

		stopSpin := startInlineSpinner(os.Stdout, "running benchmark", brailleFrames, 120*time.Millisecond)
		sess.RunEvaluation(cmd.Context())
		stopSpin()

		snap := sess.Snapshot()
		if snap.EvalError != "" {
			return errors.New("evaluation failed")
		}
		r.Evaluation(snap.Evaluation)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(evaluateCmd)
}
