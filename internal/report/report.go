// Package report renders engine results for the terminal.
package report

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/mattn/go-isatty"

	"github.com/humlab-speech/vispctl/internal/engine"
)

// Renderer writes tabular reports for update, status and lock operations.
type Renderer struct {
	Out io.Writer

	// Pretty selects box-drawing output; plain ASCII otherwise.
	Pretty bool
}

// NewRenderer creates a renderer for the given writer, using box-drawing
// tables when the writer is a terminal.
func NewRenderer(out io.Writer) *Renderer {
	pretty := false
	if f, ok := out.(*os.File); ok {
		pretty = isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return &Renderer{Out: out, Pretty: pretty}
}

func (r *Renderer) newTable() table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(r.Out)
	if r.Pretty {
		t.SetStyle(table.StyleLight)
	}
	return t
}

// Outcomes renders the result of an update run, one row per component,
// followed by a summary line.
func (r *Renderer) Outcomes(outcomes []engine.Outcome) {
	t := r.newTable()
	t.AppendHeader(table.Row{"COMPONENT", "STATUS", "DETAILS"})
	var updated, failed, locked int
	for _, o := range outcomes {
		t.AppendRow(table.Row{o.Name, string(o.Status), o.Details})
		switch {
		case o.Status == engine.StatusUpdated:
			updated++
		case o.Status == engine.StatusLocked:
			locked++
		case o.Failed():
			failed++
		}
	}
	t.Render()

	parts := []string{fmt.Sprintf("%d updated", updated)}
	if locked > 0 {
		parts = append(parts, fmt.Sprintf("%d locked", locked))
	}
	if failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", failed))
	}
	fmt.Fprintf(r.Out, "\n%d components: %s\n", len(outcomes), strings.Join(parts, ", "))
}

// Statuses renders the fleet status table with per-component lock state and
// summary lines for anything that needs attention.
func (r *Renderer) Statuses(statuses []engine.ComponentStatus) {
	t := r.newTable()
	t.AppendHeader(table.Row{"COMPONENT", "LOCK", "COMMIT", "STATE", "DETAILS"})
	var dirty, ahead, behind, broken []string
	for _, s := range statuses {
		lock := "unlocked"
		if s.Locked {
			v := s.Version
			if len(v) > 8 {
				v = v[:8]
			}
			lock = "locked @ " + v
		}
		commit := s.Commit
		if s.Dirty {
			commit += " *"
		}
		t.AppendRow(table.Row{s.Name, lock, commit, string(s.State), s.Details})

		if s.Dirty {
			dirty = append(dirty, s.Name)
		}
		switch s.State {
		case engine.SyncAhead, engine.SyncDiverged:
			ahead = append(ahead, s.Name)
		case engine.SyncMissing, engine.SyncNotARepo:
			broken = append(broken, s.Name)
		}
		if s.State == engine.SyncBehind || s.State == engine.SyncDiverged {
			behind = append(behind, s.Name)
		}
	}
	t.Render()

	fmt.Fprintln(r.Out)
	if len(dirty) > 0 {
		fmt.Fprintf(r.Out, "uncommitted changes: %s\n", strings.Join(dirty, ", "))
	}
	if len(ahead) > 0 {
		fmt.Fprintf(r.Out, "ahead of remote: %s\n", strings.Join(ahead, ", "))
	}
	if len(behind) > 0 {
		fmt.Fprintf(r.Out, "behind remote: %s\n", strings.Join(behind, ", "))
	}
	if len(broken) > 0 {
		fmt.Fprintf(r.Out, "not cloned: %s\n", strings.Join(broken, ", "))
	}
	if len(dirty)+len(ahead)+len(behind)+len(broken) == 0 {
		fmt.Fprintln(r.Out, "all components in sync")
	}
}

// Batch renders the result of a lock, unlock or rollback run.
func (r *Renderer) Batch(verb string, result *engine.BatchResult) {
	t := r.newTable()
	t.AppendHeader(table.Row{"COMPONENT", "RESULT"})
	for _, a := range result.Actions {
		t.AppendRow(table.Row{a.Name, a.Details})
	}
	t.Render()

	fmt.Fprintf(r.Out, "\n%d of %d components %s", result.Applied, len(result.Actions), verb)
	if result.Saved {
		fmt.Fprint(r.Out, "; versions file saved")
	}
	fmt.Fprintln(r.Out)
}
