// Package cliout renders a reconciliation pass for a human and asks for
// confirmation before a live pass runs. Grounded on rsinc/rclone.py's
// color-coded per-action print lines (cyn for local-bound, mgt for
// remote-bound, ylw for delete, red for conflict) and the teacher's
// format.go (humanize.IBytes-style summary formatting).
package cliout

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/cwilliams/rsinc/internal/reconcile"
)

// Reporter renders reconciliation passes to out and reads confirmation
// answers from in. It implements internal/driver.Reporter.
type Reporter struct {
	Out io.Writer
	In  io.Reader

	push     *color.Color
	pull     *color.Color
	move     *color.Color
	del      *color.Color
	conflict *color.Color
}

// New returns a Reporter writing to out and reading confirmation prompts
// from in. Color is disabled automatically when out is not a terminal.
func New(out io.Writer, in io.Reader) *Reporter {
	r := &Reporter{
		Out:      out,
		In:       in,
		push:     color.New(color.FgMagenta),
		pull:     color.New(color.FgCyan),
		move:     color.New(color.FgCyan),
		del:      color.New(color.FgYellow),
		conflict: color.New(color.FgRed),
	}

	if f, ok := out.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		r.push.DisableColor()
		r.pull.DisableColor()
		r.move.DisableColor()
		r.del.DisableColor()
		r.conflict.DisableColor()
	}

	return r
}

// ReportPass prints one line per action, then a one-line summary counting
// each kind. A dry pass and a live pass render identically except for the
// "[dry run]" / "[applied]" suffix on the summary line, since
// internal/reconcile records the same Action list either way.
func (r *Reporter) ReportPass(folder string, dryRun bool, actions []reconcile.Action) {
	counts := map[reconcile.ActionKind]int{}

	for _, a := range actions {
		fmt.Fprintln(r.Out, r.formatAction(a))
		counts[a.Kind]++
	}

	mode := "applied"
	if dryRun {
		mode = "dry run"
	}

	fmt.Fprintf(r.Out, "%s: %s actions (%d pushes, %d pulls, %d moves, %d deletes, %d conflicts) [%s]\n",
		folder, humanize.Comma(int64(len(actions))),
		counts[reconcile.ActionPush], counts[reconcile.ActionPull],
		counts[reconcile.ActionMove], counts[reconcile.ActionDelete],
		counts[reconcile.ActionConflict], mode)
}

func (r *Reporter) formatAction(a reconcile.Action) string {
	switch a.Kind {
	case reconcile.ActionPush:
		return r.push.Sprint("Push: ") + a.Dst
	case reconcile.ActionPull:
		return r.pull.Sprint("Pull: ") + a.Dst
	case reconcile.ActionMove:
		label := "Move:"
		if sameDir(a.Src, a.Dst) {
			label = "Rename:"
		}

		return r.move.Sprint(label) + fmt.Sprintf(" (%s) %s", a.Side, a.Src) + r.move.Sprint(" to: ") + a.Dst
	case reconcile.ActionDelete:
		return r.del.Sprint("Delete: ") + fmt.Sprintf("(%s) %s", a.Side, a.Src)
	case reconcile.ActionConflict:
		return r.conflict.Sprint("Conflict: ") + a.Src
	default:
		return "null: " + a.Src
	}
}

func sameDir(src, dst string) bool {
	return dirOf(src) == dirOf(dst)
}

func dirOf(path string) string {
	i := strings.LastIndex(path, "/")
	if i < 0 {
		return ""
	}

	return path[:i]
}

// Confirm prints a count and asks the user to proceed. A non-terminal In
// (piped input, e.g. under a test or cron) answers "no" rather than
// blocking, since -a is the documented way to skip confirmation
// non-interactively.
func (r *Reporter) Confirm(folder string, count int) (bool, error) {
	if f, ok := r.In.(*os.File); !ok || !isatty.IsTerminal(f.Fd()) {
		fmt.Fprintf(r.Out, "%s: %d actions pending, refusing to prompt on a non-terminal input (use -a)\n", folder, count)

		return false, nil
	}

	fmt.Fprintf(r.Out, "%s: execute %d actions? [y/N] ", folder, count)

	scanner := bufio.NewScanner(r.In)
	if !scanner.Scan() {
		return false, scanner.Err()
	}

	answer := strings.ToLower(strings.TrimSpace(scanner.Text()))

	return answer == "y" || answer == "yes", nil
}
