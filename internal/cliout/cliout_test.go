package cliout

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cwilliams/rsinc/internal/reconcile"
)

func TestReportPass_CountsEachKind(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, strings.NewReader(""))

	actions := []reconcile.Action{
		{Kind: reconcile.ActionPush, Dst: "remote:a.txt"},
		{Kind: reconcile.ActionPull, Dst: "local/b.txt"},
		{Kind: reconcile.ActionDelete, Side: "local", Src: "local/c.txt"},
		{Kind: reconcile.ActionConflict, Src: "d.txt"},
	}

	r.ReportPass("cpp", false, actions)

	out := buf.String()
	if !strings.Contains(out, "4 actions") {
		t.Fatalf("expected summary to mention 4 actions, got %q", out)
	}
	if !strings.Contains(out, "1 pushes, 1 pulls, 0 moves, 1 deletes, 1 conflicts") {
		t.Fatalf("expected per-kind breakdown, got %q", out)
	}
	if !strings.Contains(out, "[applied]") {
		t.Fatalf("expected live pass to be tagged applied, got %q", out)
	}
}

func TestReportPass_DryRunTagsSummary(t *testing.T) {
	var buf bytes.Buffer
	r := New(&buf, strings.NewReader(""))

	r.ReportPass("cpp", true, nil)

	if !strings.Contains(buf.String(), "[dry run]") {
		t.Fatalf("expected dry pass to be tagged dry run, got %q", buf.String())
	}
}

func TestFormatAction_RenameVsMove(t *testing.T) {
	r := New(&bytes.Buffer{}, strings.NewReader(""))

	rename := r.formatAction(reconcile.Action{Kind: reconcile.ActionMove, Side: "local", Src: "a/old.txt", Dst: "a/new.txt"})
	if !strings.Contains(rename, "Rename:") {
		t.Fatalf("expected a same-directory move to render as Rename, got %q", rename)
	}

	move := r.formatAction(reconcile.Action{Kind: reconcile.ActionMove, Side: "local", Src: "a/f.txt", Dst: "b/f.txt"})
	if !strings.Contains(move, "Move:") {
		t.Fatalf("expected a cross-directory move to render as Move, got %q", move)
	}
}

func TestConfirm_NonTerminalInputRefusesToPrompt(t *testing.T) {
	r := New(&bytes.Buffer{}, strings.NewReader("y\n"))

	proceed, err := r.Confirm("cpp", 3)
	if err != nil {
		t.Fatalf("Confirm: %v", err)
	}
	if proceed {
		t.Fatalf("expected Confirm to refuse on non-terminal input")
	}
}
