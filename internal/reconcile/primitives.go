package reconcile

import (
	"context"
	"strings"

	"github.com/cwilliams/rsinc/internal/flat"
)

// primitive is the common shape every LOGIC table entry and trigger in
// match_moves dispatches through: (source name, dest name, source
// snapshot, dest snapshot). Some arguments go unused by a given primitive
// (e.g. delL ignores nameD and flD) purely to keep the dispatch table
// uniform, mirroring rsinc/rclone.py.
type primitive func(ctx context.Context, nameS, nameD string, flS, flD *flat.Flat)

// push copies nameS in src to nameD in dst. It records the action, queues
// the copy, and updates dst's index with a copy of src's entry (renamed to
// nameD, marked Synced) so dst accurately reflects the post-copy state for
// the rest of this pass and for any snapshot persisted straight out of
// dst afterward (e.g. FAST_SAVE's reuse of the live local snapshot).
func (p *Planner) push(ctx context.Context, nameS, nameD string, src, dst *flat.Flat) {
	kind := ActionPush
	if src == p.rmt {
		kind = ActionPull
	}

	p.record(Action{Kind: kind, Src: nameS, Dst: nameD})

	if e, ok := src.Get(nameS); ok {
		cp := *e
		cp.Name = nameD
		cp.Synced = true
		dst.Update(&cp)
	}

	if p.DryRun {
		return
	}

	srcRoot, dstRoot := p.rootOf(src), p.rootOf(dst)
	p.Pool.Run(ctx, func(ctx context.Context) error {
		return p.Agent.CopyTo(ctx, joinPath(srcRoot, nameS), joinPath(dstRoot, nameD))
	})
}

// pull is push with source and destination swapped.
func (p *Planner) pull(ctx context.Context, nameS, nameD string, src, dst *flat.Flat) {
	p.push(ctx, nameD, nameS, dst, src)
}

// move renames nameS to nameD inside fl, updating fl's index immediately
// (the physical rename is queued to the pool).
func (p *Planner) move(ctx context.Context, nameS, nameD string, fl *flat.Flat) {
	p.record(Action{Kind: ActionMove, Side: p.sideOf(fl), Src: nameS, Dst: nameD})

	if !p.DryRun {
		root := p.rootOf(fl)
		p.Pool.Run(ctx, func(ctx context.Context) error {
			return p.Agent.MoveTo(ctx, joinPath(root, nameS), joinPath(root, nameD))
		})
	}

	e, ok := fl.Get(nameS)
	if !ok {
		return
	}

	moved := *e
	moved.Name = nameD
	fl.Remove(nameS)
	fl.Update(&moved)
}

// delL deletes nameS from flS. nameD/flD are unused, kept only so delL
// matches the primitive signature for LOGIC table dispatch.
func (p *Planner) delL(ctx context.Context, nameS, _ string, flS, _ *flat.Flat) {
	p.record(Action{Kind: ActionDelete, Side: p.sideOf(flS), Src: nameS})

	if p.DryRun {
		return
	}

	root := p.rootOf(flS)
	p.Pool.Run(ctx, func(ctx context.Context) error {
		return p.Agent.Delete(ctx, joinPath(root, nameS))
	})
}

// delR deletes nameD from flD — delL with source and destination swapped.
func (p *Planner) delR(ctx context.Context, nameS, nameD string, flS, flD *flat.Flat) {
	p.delL(ctx, nameD, nameS, flD, flS)
}

// null is the no-op LOGIC table entry. It does not record an action.
func (p *Planner) null(context.Context, string, string, *flat.Flat, *flat.Flat) {}

// conflict preserves both versions of a name that changed incompatibly on
// both sides: rename the local copy to lcl_<name>, the remote copy to
// rmt_<name>, then push each renamed copy back to the other side.
func (p *Planner) conflict(ctx context.Context, nameS, nameD string, flS, flD *flat.Flat) {
	p.Logger.Warn("conflict", "name", nameS)
	p.record(Action{Kind: ActionConflict, Src: nameS, Dst: nameD})

	nnS := p.resolveCase(prependLeaf(nameS, "lcl_"), flS)
	nnD := p.resolveCase(prependLeaf(nameD, "rmt_"), flD)

	p.move(ctx, nameS, nnS, flS)
	p.move(ctx, nameD, nnD, flD)

	if nnS != nameS || nnD != nameD {
		p.Pool.Wait()
	}

	p.safePush(ctx, nnS, flS, flD)
	p.safePush(ctx, nnD, flD, flS)
}

// safePush picks a destination name by alternately case-resolving against
// dst then src until the name stabilizes, pushes under that name, and
// (if the name had to change) waits for the copy and renames the source
// to match so the two trees stay name-aligned.
func (p *Planner) safePush(ctx context.Context, name string, src, dst *flat.Flat) {
	pair := [2]*flat.Flat{src, dst}
	newName, old := name, ""
	c := 1

	for newName != old {
		old = newName
		newName = p.resolveCase(newName, pair[c])

		if c == 1 {
			c = 0
		} else {
			c = 1
		}
	}

	// push itself updates dst's index under newName; nothing left to do
	// here once the copy is queued.
	p.push(ctx, name, newName, src, dst)

	if newName != name {
		p.Pool.Wait()
		p.move(ctx, name, newName, src)
	}
}

// safeMove moves nameS to a case-resolved form of nameD inside flIn,
// renaming flMirror's entry at nameD out of the way first if needed.
func (p *Planner) safeMove(ctx context.Context, nameS, nameD string, flIn, flMirror *flat.Flat) {
	pair := [2]*flat.Flat{flIn, flMirror}
	newName, old := nameD, ""
	c := 0

	for newName != old {
		old = newName
		newName = p.resolveCase(newName, pair[c])

		if c == 1 {
			c = 0
		} else {
			c = 1
		}
	}

	if newName != nameD {
		p.move(ctx, nameD, newName, flMirror)
	}

	p.move(ctx, nameS, newName, flIn)
}

// resolveCase prepends underscores to name's leaf component until it no
// longer collides with an entry in fl — case-insensitively if
// CaseInsensitive is set, exact-match otherwise (spec.md §4.4.4).
func (p *Planner) resolveCase(name string, fl *flat.Flat) string {
	newName := name

	for {
		var collides bool
		if p.CaseInsensitive {
			collides = fl.HasLower(strings.ToLower(newName))
		} else {
			collides = fl.HasName(newName)
		}

		if !collides {
			return newName
		}

		newName = prependLeaf(newName, "_")
	}
}

// prependLeaf prepends prefix to name's final path component.
func prependLeaf(name, prefix string) string {
	idx := strings.LastIndex(name, "/")
	if idx < 0 {
		return prefix + name
	}

	return name[:idx+1] + prefix + name[idx+1:]
}
