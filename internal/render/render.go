// Package render draws session state to the terminal. It consumes read-only
// snapshots and notices from the session and never mutates state itself.
package render

import (
	"fmt"
	"strings"

	"github.com/pterm/pterm"

	"querychat/cli/internal/backend"
	"querychat/cli/internal/config"
	"querychat/cli/internal/logging"
	"querychat/cli/internal/session"
)

// maxCellWidth caps table cells so one long value cannot wreck the layout.
const maxCellWidth = 48

// Renderer renders chat messages, query results, notices and the evaluation
// dashboard with pterm.
type Renderer struct{}

// New creates a renderer instance.
func New() *Renderer { return &Renderer{} }

// Message prints one conversation entry.
func (r *Renderer) Message(m session.Message) {
	switch m.Role {
	case session.RoleUser:
		pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("you › ") + m.Content)
	case session.RoleAssistant:
		pterm.Println(pterm.NewStyle(pterm.FgLightMagenta, pterm.Bold).Sprint("sql › ") + m.Content)
		if m.SQL != "" {
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("      " + m.SQL))
		}
	}
}

// Result prints the current query result. A non-empty multi-statement variant
// takes precedence over the single-result fields.
func (r *Renderer) Result(res *backend.ChatResult) {
	if res == nil {
		return
	}
	if res.Intent != nil && res.Intent.Intent != "" {
		line := "intent: " + res.Intent.Intent
		if len(res.Intent.Entities) > 0 {
			line += " (" + strings.Join(res.Intent.Entities, ", ") + ")"
		}
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(line))
	}
	if res.HasMultiResults() {
		for i, one := range res.MultiResults {
			if i > 0 {
				pterm.Println()
			}
			pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint(one.SQL))
			r.table(one.Columns, one.Rows, one.RowCount)
		}
		return
	}
	if !res.Valid {
		if res.Error != "" {
			pterm.Error.Println(res.Error)
		}
		return
	}
	r.table(res.Columns, res.Rows, res.RowCount)
}

// table renders one result set as a pterm table with a row-count footer.
func (r *Renderer) table(columns []string, rows [][]any, rowCount int) {
	if len(columns) == 0 {
		pterm.Println(pterm.NewStyle(pterm.FgGray).Sprint("(no result set)"))
		return
	}
	data := pterm.TableData{columns}
	for _, row := range rows {
		cells := make([]string, len(row))
		for i, v := range row {
			cells[i] = formatCell(v)
		}
		data = append(data, cells)
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	pterm.Println(pterm.NewStyle(pterm.FgGray).Sprintf("%d row(s)", rowCount))
}

// formatCell converts a cell value for display.
func formatCell(v any) string {
	if v == nil {
		return "NULL"
	}
	s := fmt.Sprintf("%v", v)
	if len(s) > maxCellWidth {
		s = s[:maxCellWidth] + "..."
	}
	return s
}

// Notice prints an out-of-band completion or failure notice.
func (r *Renderer) Notice(n session.Notice) {
	switch n.Kind {
	case session.NoticeSyncCompleted:
		title := pterm.NewStyle(pterm.FgGreen, pterm.Bold).Sprint("Schema Synced")
		details := fmt.Sprintf("Tables: %d\nChunks: %d\nVectors upserted: %d",
			n.Sync.Tables, n.Sync.Chunks, n.Sync.VectorsUpserted)
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(details))
	case session.NoticeSyncFailed:
		title := pterm.NewStyle(pterm.FgRed, pterm.Bold).Sprint("Sync Failed")
		pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(logging.Mask(n.Message)))
	case session.NoticeEvalCompleted:
		pterm.Success.Println("Evaluation completed.")
	case session.NoticeEvalFailed:
		pterm.Error.Println("Evaluation failed: " + logging.Mask(n.Message))
	}
}

// Evaluation prints the benchmark dashboard: averaged metrics first, then the
// per-question records.
func (r *Renderer) Evaluation(sum *backend.EvaluationSummary) {
	if sum == nil {
		return
	}
	pterm.Println(pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprintf("RAGAS benchmark (%d questions)", sum.N))
	averages := pterm.TableData{
		{"Metric", "Average"},
		{"Faithfulness", fmt.Sprintf("%.3f", sum.FaithfulnessAvg)},
		{"Answer relevancy", fmt.Sprintf("%.3f", sum.AnswerRelevancyAvg)},
		{"Context precision", fmt.Sprintf("%.3f", sum.ContextPrecisionAvg)},
		{"Context recall", fmt.Sprintf("%.3f", sum.ContextRecallAvg)},
		{"Execution accuracy", fmt.Sprintf("%.3f", sum.ExecutionAccuracyAvg)},
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(averages).Render()

	if len(sum.Results) == 0 {
		return
	}
	pterm.Println()
	data := pterm.TableData{{"Question", "SQL", "Exec", "Faith", "Relev", "Prec", "Recall", "Acc"}}
	for _, rec := range sum.Results {
		exec := "✓"
		if !rec.ExecutionSuccess {
			exec = "✗"
		}
		data = append(data, []string{
			formatCell(rec.Question),
			formatCell(rec.GeneratedSQL),
			exec,
			score(rec.Faithfulness),
			score(rec.AnswerRelevancy),
			score(rec.ContextPrecision),
			score(rec.ContextRecall),
			score(rec.ExecutionAccuracy),
		})
	}
	_ = pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

// score formats an optional metric value; missing metrics render as a dash.
func score(v *float64) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprintf("%.2f", *v)
}

// ConnectionPanel prints the active profile with the password masked.
func (r *Renderer) ConnectionPanel(p config.Profile) {
	pw := ""
	if p.Password != "" {
		pw = strings.Repeat("*", 8)
	}
	db := p.Database
	if db == "" {
		db = "(server default)"
	}
	lines := []string{
		"Type:     " + string(p.Type),
		fmt.Sprintf("Host:     %s:%d", p.Host, p.Port),
		"User:     " + p.User,
		"Password: " + pw,
		"Database: " + db,
	}
	title := pterm.NewStyle(pterm.FgLightCyan, pterm.Bold).Sprint("Connection")
	pterm.Println(pterm.DefaultBox.WithTitle(title).WithTopPadding(1).WithBottomPadding(1).WithLeftPadding(1).WithRightPadding(1).Sprint(strings.Join(lines, "\n")))
}
