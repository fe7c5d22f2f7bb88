package cmd

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/pterm/pterm"
	"github.com/spf13/cobra"

	"querychat/cli/internal/render"
	"querychat/cli/internal/session"
	"querychat/cli/internal/xdg"
)

// chatCmd starts the interactive conversational query session. Lines are sent
// to the backend as natural-language questions; slash commands trigger the
// other operations without leaving the conversation. Schema syncs and
// evaluations run in the background, so the user can keep asking questions
// while they are in flight.
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Start an interactive conversational query session",
	Long: `The chat command opens a conversation with the querychat backend. Every line
you type is translated to SQL, executed, and answered with a result table and
a short summary.

Slash commands inside the session:
  /sync        synchronize the database schema (/sync async for large schemas)
  /eval        run the RAGAS benchmark evaluation
  /connection  show or hide the active connection profile
  /quit        leave the session`,
	RunE: func(cmd *cobra.Command, args []string) error {
		r := render.New()

		// Sync and eval notices arrive from background goroutines; printMu
		// keeps them from interleaving with the REPL's own output.
		var printMu sync.Mutex
		var sess *session.Session
		notify := func(n session.Notice) {
			printMu.Lock()
			defer printMu.Unlock()
			pterm.Println()
			r.Notice(n)
			if n.Kind == session.NoticeEvalCompleted {
				r.Evaluation(sess.Snapshot().Evaluation)
			}
		}
		sess = newSession(session.WithNotifier(notify))

		snap := sess.Snapshot()
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("querychat · ask your database anything"))
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("Server: " + baseURL()))
		if snap.Profile.Database == "" {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("No database configured; the backend's default connection will be used. Run 'querychat connect' to set one."))
		} else {
			p := snap.Profile
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("Database: %s@%s:%d/%s (%s)", p.User, p.Host, p.Port, p.Database, p.Type))
		}
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("Commands: /sync [async], /eval, /connection, /quit"))
		pterm.Println()

		ctx := cmd.Context()
		reader := bufio.NewReader(os.Stdin)
		for {
			printMu.Lock()
			pterm.Print(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("? "))
			printMu.Unlock()

			line, err := reader.ReadString('\n')
			if err != nil {
				// EOF ends the session like /quit
				fmt.Println()
				return nil
			}
			line = strings.TrimSpace(line)

			switch {
			case line == "":
				continue
			case line == "/quit" || line == "/exit":
				return nil
			case line == "/sync" || line == "/sync async":
				if sess.Snapshot().SyncBusy {
					pterm.Warning.Println("A schema sync is already running.")
					continue
				}
				pterm.Info.Println("Schema sync started in the background.")
				go sess.SyncSchema(ctx, strings.HasSuffix(line, "async"))
			case line == "/eval":
				if sess.Snapshot().EvalBusy {
					pterm.Warning.Println("An evaluation is already running.")
					continue
				}
				pterm.Info.Println("Benchmark evaluation started in the background.")
				go sess.RunEvaluation(ctx)
			case line == "/connection":
				sess.ToggleConnectionPanel()
				if snap := sess.Snapshot(); snap.ShowConnection {
					printMu.Lock()
					r.ConnectionPanel(snap.Profile)
					printMu.Unlock()
				}
			default:
				appendHistory(line)
				stopSpin := startInlineSpinner(os.Stdout, "thinking", brailleFrames, 120*time.Millisecond)
				sess.SubmitMessage(ctx, line)
				stopSpin()

				printMu.Lock()
				snap := sess.Snapshot()
				if n := len(snap.Messages); n > 0 {
					r.Message(snap.Messages[n-1])
				}
				r.Result(snap.CurrentResult)
				pterm.Println()
				printMu.Unlock()
			}
		}
	},
}

// appendHistory records one question in the state-dir history file. History
// is a convenience; every failure is silently ignored.
func appendHistory(line string) {
	dir, err := xdg.StateDir()
	if err != nil {
		return
	}
	f, err := os.OpenFile(filepath.Join(dir, "history"), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(line + "\n")
}

func init() {
	rootCmd.AddCommand(chatCmd)
}
