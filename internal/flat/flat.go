// Package flat implements the in-memory snapshot of one side of a sync
// pair: the set of file entries under a tree root, indexed by name, by
// fingerprint, and by lowercased name for case-collision detection.
package flat

import "strings"

// State is a file's diff classification relative to the base snapshot.
type State int

const (
	// SAME means the file is unchanged (or a pure rename with unchanged
	// fingerprint, see the Moved flag).
	SAME State = iota
	// UPDATED means the file's content changed since the base.
	UPDATED
	// DELETED means the file is present in the base but absent here; a
	// synthetic placeholder entry records this during reconciliation.
	DELETED
	// CREATED means the file has no corresponding base entry.
	CREATED
)

func (s State) String() string {
	switch s {
	case SAME:
		return "SAME"
	case UPDATED:
		return "UPDATED"
	case DELETED:
		return "DELETED"
	case CREATED:
		return "CREATED"
	default:
		return "UNKNOWN"
	}
}

// Entry is one file in a snapshot.
type Entry struct {
	Name        string
	Fingerprint string
	ModTime     int64 // seconds since epoch, tiebreaker in recovery mode only
	State       State
	Moved       bool
	IsClone     bool
	Synced      bool
	Ignore      bool
}

// Flat is a snapshot of one tree: files indexed by name, by fingerprint,
// and by lowercased name, plus the set of directory paths the files imply.
// Mirrors rsinc/classes.py's Flat/File pair.
type Flat struct {
	Path string

	byName map[string]*Entry
	byFP   map[string]*Entry
	lower  map[string]bool
	dirs   map[string]bool
}

// New returns an empty snapshot rooted at path.
func New(path string) *Flat {
	return &Flat{
		Path:   path,
		byName: make(map[string]*Entry),
		byFP:   make(map[string]*Entry),
		lower:  make(map[string]bool),
		dirs:   make(map[string]bool),
	}
}

// Update inserts or replaces an entry. If another entry already holds this
// fingerprint, both entries are flagged IsClone=true (invariant 2, spec.md
// §3) and the most recently inserted entry wins the fingerprint slot
// (invariant 3: fingerprint->entry is well-defined only when unique).
func (f *Flat) Update(e *Entry) {
	if existing, ok := f.byFP[e.Fingerprint]; ok && existing.Name != e.Name {
		existing.IsClone = true
		e.IsClone = true
	}

	f.byName[e.Name] = e
	f.byFP[e.Fingerprint] = e
	f.lower[strings.ToLower(e.Name)] = true
	f.addDirsFor(e.Name)
}

// addDirsFor registers every ancestor directory implied by name.
func (f *Flat) addDirsFor(name string) {
	idx := strings.LastIndex(name, "/")
	for idx >= 0 {
		dir := name[:idx]
		if f.dirs[dir] {
			return
		}

		f.dirs[dir] = true
		idx = strings.LastIndex(dir, "/")
	}
}

// Get returns the entry with the given name, if present.
func (f *Flat) Get(name string) (*Entry, bool) {
	e, ok := f.byName[name]

	return e, ok
}

// GetByFingerprint returns the unique entry holding fingerprint, if any.
// Per invariant 3, this is meaningful only when the fingerprint is not
// shared by a clone; callers should check IsClone on the result.
func (f *Flat) GetByFingerprint(fp string) (*Entry, bool) {
	e, ok := f.byFP[fp]

	return e, ok
}

// Remove deletes name from the snapshot. If the entry is not a clone, its
// fingerprint slot is freed too (a clone's fingerprint slot is left alone,
// since it may still be claimed by the sibling clone -- mirrors
// rsinc/classes.py:Flat.rm).
func (f *Flat) Remove(name string) {
	e, ok := f.byName[name]
	if !ok {
		return
	}

	if !e.IsClone {
		delete(f.byFP, e.Fingerprint)
	}

	delete(f.byName, name)

	lower := strings.ToLower(name)
	if !f.anyNameWithLower(lower) {
		delete(f.lower, lower)
	}
}

func (f *Flat) anyNameWithLower(lower string) bool {
	for name := range f.byName {
		if strings.ToLower(name) == lower {
			return true
		}
	}

	return false
}

// HasLower reports whether lowered is the lowercased form of some name
// currently in the snapshot.
func (f *Flat) HasLower(lowered string) bool {
	return f.lower[lowered]
}

// HasName reports exact-case presence of name.
func (f *Flat) HasName(name string) bool {
	_, ok := f.byName[name]

	return ok
}

// Names returns every file name in the snapshot, unordered.
func (f *Flat) Names() []string {
	names := make([]string, 0, len(f.byName))
	for name := range f.byName {
		names = append(names, name)
	}

	return names
}

// Dirs returns every directory path implied by the snapshot's file names.
func (f *Flat) Dirs() map[string]bool {
	return f.dirs
}

// Len returns the number of file entries.
func (f *Flat) Len() int {
	return len(f.byName)
}

// Clean resets every entry's Synced flag to false, readying the snapshot
// for another reconciliation pass over the same data (mirrors
// rsinc/classes.py:Flat.clean, used between Phase M and Phase S).
func (f *Flat) Clean() {
	for _, e := range f.byName {
		e.Synced = false
	}
}

// Clone deep-copies the snapshot so the reconciliation engine can mutate a
// working copy while the driver retains the original for post-sync
// re-listing and directory-diff computation (spec.md §4.4, Design Notes §9).
func (f *Flat) Clone() *Flat {
	out := New(f.Path)

	for name, e := range f.byName {
		cp := *e
		out.byName[name] = &cp
	}

	for fp, e := range f.byFP {
		// Point at the cloned entry with the same name, not the original.
		out.byFP[fp] = out.byName[e.Name]
	}

	for lower := range f.lower {
		out.lower[lower] = true
	}

	for dir := range f.dirs {
		out.dirs[dir] = true
	}

	return out
}

// TagIgnore marks name as ignored if present, mirroring
// rsinc/classes.py:Flat.tag_ignore.
func (f *Flat) TagIgnore(name string) {
	if e, ok := f.byName[name]; ok {
		e.Ignore = true
	}
}

// RemoveIgnored deletes every entry flagged Ignore, mirroring
// rsinc/classes.py:Flat.rm_ignore.
func (f *Flat) RemoveIgnored() {
	for name, e := range f.byName {
		if e.Ignore {
			f.Remove(name)
		}
	}
}
