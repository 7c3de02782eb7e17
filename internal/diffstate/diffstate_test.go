package diffstate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwilliams/rsinc/internal/flat"
)

func baseSnap() *flat.Flat {
	old := flat.New("base")
	old.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1", State: flat.SAME})
	old.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2", State: flat.SAME})

	return old
}

func TestCalcStates_UnchangedFileIsSame(t *testing.T) {
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1"})
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})

	CalcStates(old, newSnap)

	e, _ := newSnap.Get("notes.txt")
	assert.Equal(t, flat.SAME, e.State)
	assert.False(t, e.Moved)
}

func TestCalcStates_CreatedFile(t *testing.T) {
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1"})
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})
	newSnap.Update(&flat.Entry{Name: "pics/b.jpg", Fingerprint: "50H3"})

	CalcStates(old, newSnap)

	e, _ := newSnap.Get("pics/b.jpg")
	require.NotNil(t, e)
	assert.Equal(t, flat.CREATED, e.State)
	assert.False(t, e.Moved)
}

func TestCalcStates_UpdatedFile(t *testing.T) {
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1a"})
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})

	CalcStates(old, newSnap)

	e, _ := newSnap.Get("notes.txt")
	assert.Equal(t, flat.UPDATED, e.State)
}

func TestCalcStates_DeletedFileGetsPlaceholder(t *testing.T) {
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})

	CalcStates(old, newSnap)

	e, ok := newSnap.Get("notes.txt")
	require.True(t, ok)
	assert.Equal(t, flat.DELETED, e.State)
	assert.Equal(t, "11H1", e.Fingerprint)
}

func TestCalcStates_PureRenameIsSameAndMoved(t *testing.T) {
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "notes2.txt", Fingerprint: "11H1"})
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})

	CalcStates(old, newSnap)

	renamed, ok := newSnap.Get("notes2.txt")
	require.True(t, ok)
	assert.Equal(t, flat.SAME, renamed.State)
	assert.True(t, renamed.Moved)

	// notes.txt's fingerprint is still present (under notes2.txt) and it was
	// not a clone, so no DELETED placeholder is inserted for it.
	_, ok = newSnap.Get("notes.txt")
	require.False(t, ok)
	assert.Len(t, newSnap.Names(), 2)
}

func TestCalcStates_CloneLeavesDeletedPlaceholderOnMove(t *testing.T) {
	old := flat.New("base")
	old.Update(&flat.Entry{Name: "a.txt", Fingerprint: "10H", IsClone: true})
	old.Update(&flat.Entry{Name: "b.txt", Fingerprint: "10H", IsClone: true})

	newSnap := flat.New("lcl")
	// a.txt moved to c.txt; b.txt (the clone) is untouched.
	newSnap.Update(&flat.Entry{Name: "c.txt", Fingerprint: "10H"})
	newSnap.Update(&flat.Entry{Name: "b.txt", Fingerprint: "10H"})

	CalcStates(old, newSnap)

	// A clone-move can't be told apart from a deletion, so a.txt must
	// still get a DELETED placeholder even though its fingerprint exists
	// elsewhere in new.
	placeholder, ok := newSnap.Get("a.txt")
	require.True(t, ok)
	assert.Equal(t, flat.DELETED, placeholder.State)
}

func TestCalcStates_RenamePlusReplaceEdge(t *testing.T) {
	// notes.txt's old content (11H1) now lives under a different name in
	// new, and notes.txt itself has new content that happens to match
	// pics/a.jpg's old fingerprint -- this reads as a move, not an edit.
	old := baseSnap()
	newSnap := flat.New("lcl")
	newSnap.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "200H2"})
	newSnap.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "11H1"})

	CalcStates(old, newSnap)

	notes, _ := newSnap.Get("notes.txt")
	assert.Equal(t, flat.SAME, notes.State)
	assert.True(t, notes.Moved)
}
