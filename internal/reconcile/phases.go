package reconcile

import (
	"context"
	"sort"

	"github.com/cwilliams/rsinc/internal/flat"
)

// logic is the 4x4 LOGIC dispatch table from spec.md §4.4.2, indexed
// [lcl.State][rmt.State]. A plain table of action identifiers, not
// polymorphism or inheritance, per Design Notes §9.
func (p *Planner) logic() [4][4]primitive {
	return [4][4]primitive{
		flat.SAME:    {flat.SAME: p.null, flat.UPDATED: p.pull, flat.DELETED: p.delL, flat.CREATED: p.conflict},
		flat.UPDATED: {flat.SAME: p.push, flat.UPDATED: p.conflict, flat.DELETED: p.push, flat.CREATED: p.conflict},
		flat.DELETED: {flat.SAME: p.delR, flat.UPDATED: p.pull, flat.DELETED: p.null, flat.CREATED: p.pull},
		flat.CREATED: {flat.SAME: p.conflict, flat.UPDATED: p.conflict, flat.DELETED: p.push, flat.CREATED: p.conflict},
	}
}

// matchStates is Phase S: for each unsynced name in lcl, taken in sorted
// order, dispatch through LOGIC if rmt has the same name, safe_push if
// not (and lcl's state isn't DELETED), or warn on an unpaired delete.
func (p *Planner) matchStates(ctx context.Context, lcl, rmt *flat.Flat) {
	names := lcl.Names()
	sort.Strings(names)
	logic := p.logic()

	for _, name := range names {
		file, ok := lcl.Get(name)
		if !ok || file.Synced {
			continue
		}

		file.Synced = true

		if other, ok := rmt.Get(name); ok {
			other.Synced = true
			logic[file.State][other.State](ctx, name, name, lcl, rmt)
		} else if file.State != flat.DELETED {
			p.safePush(ctx, name, lcl, rmt)
		} else {
			p.Logger.Warn("unpaired delete", "root", p.rootOf(lcl), "name", name)
		}
	}
}

// matchStatesRecover is the recovery-mode pass (spec.md §4.4.1): for each
// name present on both sides with differing fingerprints, the newer
// modification time wins; a name missing from rmt is safe-pushed.
func (p *Planner) matchStatesRecover(ctx context.Context, lcl, rmt *flat.Flat) {
	names := lcl.Names()
	sort.Strings(names)

	for _, name := range names {
		file, ok := lcl.Get(name)
		if !ok || file.Synced {
			continue
		}

		file.Synced = true

		other, ok := rmt.Get(name)
		if !ok {
			if file.State != flat.DELETED {
				p.safePush(ctx, name, lcl, rmt)
			} else {
				p.Logger.Warn("unpaired delete", "root", p.rootOf(lcl), "name", name)
			}

			continue
		}

		other.Synced = true

		if file.Fingerprint == other.Fingerprint {
			continue
		}

		if file.ModTime > other.ModTime {
			p.push(ctx, name, name, lcl, rmt)
		} else {
			p.pull(ctx, name, name, lcl, rmt)
		}
	}
}

// traceResult classifies where a moved file's pre-move identity landed on
// the other side, as traced through the base.
type traceResult int

const (
	traceNoMove traceResult = iota
	traceMoved
	traceClone
	traceNotHere
)

// traceRmt traces file (a moved entry in lcl) back through old to find its
// corresponding entry in rmt, by name first and then by fingerprint.
func (p *Planner) traceRmt(file *flat.Entry, old, rmt *flat.Flat) (traceResult, *flat.Entry) {
	oldFile, ok := old.GetByFingerprint(file.Fingerprint)
	if !ok {
		return traceNotHere, nil
	}

	if rmtFile, ok := rmt.Get(oldFile.Name); ok {
		switch {
		case rmtFile.IsClone:
			if rmtFile.State == flat.CREATED {
				return traceClone, rmtFile
			}

			return traceNoMove, rmtFile
		case !rmtFile.Moved:
			return traceNoMove, rmtFile
		}
		// rmtFile is moved: fall through to the fingerprint-based trace.
	}

	if rmtFile, ok := rmt.GetByFingerprint(file.Fingerprint); ok {
		switch {
		case rmtFile.IsClone:
			return traceClone, rmtFile
		case rmtFile.Moved:
			return traceMoved, rmtFile
		default:
			return traceNoMove, rmtFile
		}
	}

	return traceNotHere, nil
}

// matchMoves is Phase M, run first on lcl then on rmt (spec.md §4.4.2).
func (p *Planner) matchMoves(ctx context.Context, old, lcl, rmt *flat.Flat) {
	names := lcl.Names()
	sort.Strings(names)

	for _, name := range names {
		file, ok := lcl.Get(name)
		if !ok || file.Synced || !file.Moved {
			continue
		}

		file.Synced = true

		if other, ok := rmt.Get(name); ok {
			other.Synced = true

			switch {
			case other.State == flat.DELETED:
				// Fall through: proceed as if the destination were free.
			case file.Fingerprint == other.Fingerprint:
				continue
			case other.Moved:
				// Two independent moves collided; Phase S treats this as
				// an edit-edit conflict.
				file.State = flat.UPDATED
				other.State = flat.UPDATED

				continue
			default:
				if p.degenerateDoubleMove(ctx, old, name, lcl, rmt) {
					break
				}

				nn := p.resolveCase(name, rmt)
				p.move(ctx, name, nn, rmt)
				p.Pool.Wait()
			}
		}

		trace, fRmt := p.traceRmt(file, old, rmt)

		switch trace {
		case traceNoMove:
			fRmt.Synced = true

			if fRmt.State == flat.DELETED {
				p.safePush(ctx, name, lcl, rmt)
			} else {
				p.safeMove(ctx, fRmt.Name, name, rmt, lcl)
			}
		case traceMoved:
			fRmt.Synced = true
			p.safeMove(ctx, name, fRmt.Name, lcl, rmt)
		case traceClone, traceNotHere:
			p.safePush(ctx, name, lcl, rmt)
		}
	}
}

// degenerateDoubleMove handles the case where both sides moved different
// files into overlapping names: if the file that originally held name's
// old fingerprint has itself moved on lcl, mirror that move in rmt instead
// of renaming rmt's entry out of the way. Returns true if it handled the
// collision.
func (p *Planner) degenerateDoubleMove(ctx context.Context, old *flat.Flat, name string, lcl, rmt *flat.Flat) bool {
	oldEntry, inOld := old.Get(name)
	if !inOld {
		return false
	}

	mvdLcl, ok := lcl.GetByFingerprint(oldEntry.Fingerprint)
	if !ok || !mvdLcl.Moved {
		return false
	}

	mvdLcl.Synced = true
	p.safeMove(ctx, name, mvdLcl.Name, rmt, lcl)

	return true
}
