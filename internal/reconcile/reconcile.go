// Package reconcile implements the reconciliation engine: given a local
// snapshot, a remote snapshot, and (outside recovery) the base snapshot
// they were diffed against, it decides what copy/move/delete/conflict
// actions must run so the two trees converge. Ported from
// rsinc/sync.py+rsinc/rclone.py; a Planner replaces the Python module's
// process-global `track` state (spec.md Design Notes §9).
package reconcile

import (
	"context"
	"log/slog"

	"github.com/cwilliams/rsinc/internal/agent"
	"github.com/cwilliams/rsinc/internal/flat"
	"github.com/cwilliams/rsinc/internal/jobexec"
)

// ActionKind names the kind of operation an Action records.
type ActionKind int

const (
	ActionNull ActionKind = iota
	ActionPush
	ActionPull
	ActionMove
	ActionDelete
	ActionConflict
)

func (k ActionKind) String() string {
	switch k {
	case ActionPush:
		return "push"
	case ActionPull:
		return "pull"
	case ActionMove:
		return "move"
	case ActionDelete:
		return "delete"
	case ActionConflict:
		return "conflict"
	default:
		return "null"
	}
}

// Action is one primitive dispatched during planning, recorded regardless
// of DryRun so a dry pass and a live pass produce identical action lists
// (spec.md §4.4.5).
type Action struct {
	Kind ActionKind
	Side string // "local" or "remote"; meaningful for Move and Delete
	Src  string
	Dst  string
}

// Planner carries the state a reconciliation run needs: the working
// snapshot copies, counters, and collaborators. The driver builds one
// Planner per pass over a synced folder: one for the dry pass and, if the
// live pass runs, another for it.
type Planner struct {
	Agent           agent.Agent
	Pool            *jobexec.Pool
	Logger          *slog.Logger
	LclRoot         string
	RmtRoot         string
	CaseInsensitive bool
	DryRun          bool

	Count   int
	Actions []Action

	lcl *flat.Flat
	rmt *flat.Flat
}

// NewPlanner returns a Planner bound to ag and pool for one sync run.
func NewPlanner(ag agent.Agent, pool *jobexec.Pool, lclRoot, rmtRoot string, caseInsensitive, dryRun bool, logger *slog.Logger) *Planner {
	if logger == nil {
		logger = slog.Default()
	}

	return &Planner{
		Agent:           ag,
		Pool:            pool,
		Logger:          logger,
		LclRoot:         lclRoot,
		RmtRoot:         rmtRoot,
		CaseInsensitive: caseInsensitive,
		DryRun:          dryRun,
	}
}

// Plan reconciles lcl against rmt. If old is nil, recovery mode runs
// (newest-mtime-wins). Otherwise normal two-phase mode runs against old as
// the base. lcl and rmt are never mutated; Plan works on internal copies so
// the driver can re-snapshot both trees after the live pass. Returns the
// total action count and the set of directories the plan implies that
// neither original tree already had.
func (p *Planner) Plan(ctx context.Context, lcl, rmt, old *flat.Flat) (int, map[string]bool, error) {
	p.Count = 0
	p.Actions = nil
	p.lcl = lcl.Clone()
	p.rmt = rmt.Clone()

	if old == nil {
		p.matchStatesRecover(ctx, p.lcl, p.rmt)
		p.matchStatesRecover(ctx, p.rmt, p.lcl)
	} else {
		p.matchMoves(ctx, old, p.lcl, p.rmt)
		p.matchMoves(ctx, old, p.rmt, p.lcl)

		p.lcl.Clean()
		p.rmt.Clean()
		p.Pool.Wait()

		p.matchStates(ctx, p.lcl, p.rmt)
		p.matchStates(ctx, p.rmt, p.lcl)
	}

	p.Pool.Wait()

	dirs := make(map[string]bool)
	lclBefore, rmtBefore := lcl.Dirs(), rmt.Dirs()
	for _, after := range []map[string]bool{p.lcl.Dirs(), p.rmt.Dirs()} {
		for d := range after {
			if !lclBefore[d] && !rmtBefore[d] {
				dirs[d] = true
			}
		}
	}

	return p.Count, dirs, p.Pool.Errors()
}

// LclSnapshot returns the local-side snapshot as Plan left it: post-clone,
// post-reconciliation, with Synced/Moved/IsClone flags intact. Used by
// internal/driver's FAST_SAVE mode to merge the new base straight from
// memory instead of re-listing through the agent after the live pass.
func (p *Planner) LclSnapshot() *flat.Flat {
	return p.lcl
}

func (p *Planner) record(a Action) {
	p.Count++
	p.Actions = append(p.Actions, a)
}

func (p *Planner) rootOf(fl *flat.Flat) string {
	if fl == p.lcl {
		return p.LclRoot
	}

	return p.RmtRoot
}

func (p *Planner) sideOf(fl *flat.Flat) string {
	if fl == p.lcl {
		return "local"
	}

	return "remote"
}

func joinPath(root, name string) string {
	if root == "" {
		return name
	}

	return root + "/" + name
}
