// Package diffstate classifies every file in a freshly built snapshot
// against the base snapshot it was taken against, tagging each entry SAME,
// UPDATED, DELETED, or CREATED and flagging renames. Ported line-for-line
// in logic from rsinc/sync.py's calc_states.
package diffstate

import "github.com/cwilliams/rsinc/internal/flat"

// CalcStates mutates new in place, classifying every entry relative to
// old. It must run before the reconciliation engine sees new.
func CalcStates(old, newSnap *flat.Flat) {
	namesBeforeDeletes := newSnap.Names()

	for _, name := range old.Names() {
		oldEntry, _ := old.Get(name)
		if newSnap.HasName(name) {
			continue
		}

		if !fingerprintKnown(newSnap, oldEntry.Fingerprint) || oldEntry.IsClone {
			// Clones must leave placeholders: a clone-move can't be told
			// apart from a deletion without one.
			newSnap.Update(&flat.Entry{
				Name:        name,
				Fingerprint: oldEntry.Fingerprint,
				ModTime:     oldEntry.ModTime,
				State:       flat.DELETED,
			})
		}
	}

	for _, name := range namesBeforeDeletes {
		entry, ok := newSnap.Get(name)
		if !ok {
			// Overwritten by a DELETED placeholder of the same name above;
			// cannot happen since placeholders only use names from old not
			// present in new, but guard defensively.
			continue
		}

		classify(old, entry, name)
	}
}

// fingerprintKnown reports whether fp names any entry in snap, regardless
// of that entry's own clone status — mirrors the Python uid-set membership
// test (old.uids), which tracks presence only.
func fingerprintKnown(snap *flat.Flat, fp string) bool {
	_, ok := snap.GetByFingerprint(fp)

	return ok
}

func classify(old *flat.Flat, entry *flat.Entry, name string) {
	oldEntry, inOld := old.Get(name)

	switch {
	case inOld && oldEntry.Fingerprint == entry.Fingerprint:
		entry.State = flat.SAME
	case inOld:
		if fingerprintKnown(old, entry.Fingerprint) && !entry.IsClone {
			// Rename-plus-replace edge: the name changed its content, but
			// that content's fingerprint was already present elsewhere in
			// old under a different name, so it reads as a move too.
			entry.Moved = true
			entry.State = flat.SAME
		} else {
			entry.State = flat.UPDATED
		}
	case fingerprintKnown(old, entry.Fingerprint) && !entry.IsClone:
		entry.Moved = true
		entry.State = flat.SAME
	default:
		entry.State = flat.CREATED
	}
}
