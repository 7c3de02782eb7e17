package basetree

import (
	"testing"

	"github.com/cwilliams/rsinc/internal/flat"
)

func TestPack_BuildsNestedTree(t *testing.T) {
	fl := flat.New("lcl")
	fl.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1"})
	fl.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})

	tree := Pack(fl)

	if got := tree.File["notes.txt"]; got != "11H1" {
		t.Fatalf("got %q, want 11H1", got)
	}

	sub, ok := tree.Fold["pics"]
	if !ok {
		t.Fatalf("expected pics folder")
	}

	if got := sub.File["a.jpg"]; got != "200H2" {
		t.Fatalf("got %q, want 200H2", got)
	}
}

func TestPack_SkipsDeletedPlaceholders(t *testing.T) {
	fl := flat.New("lcl")
	fl.Update(&flat.Entry{Name: "gone.txt", Fingerprint: "9H9", State: flat.DELETED})

	tree := Pack(fl)

	if _, ok := tree.File["gone.txt"]; ok {
		t.Fatalf("DELETED placeholder must not be packed into the base")
	}
}

func TestUnpack_RoundTripsThroughPack(t *testing.T) {
	fl := flat.New("lcl")
	fl.Update(&flat.Entry{Name: "notes.txt", Fingerprint: "11H1"})
	fl.Update(&flat.Entry{Name: "pics/a.jpg", Fingerprint: "200H2"})
	fl.Update(&flat.Entry{Name: "pics/nested/b.jpg", Fingerprint: "50H3"})

	tree := Pack(fl)
	out := Unpack(tree, "lcl")

	for _, name := range []string{"notes.txt", "pics/a.jpg", "pics/nested/b.jpg"} {
		e, ok := out.Get(name)
		if !ok {
			t.Fatalf("expected %s to round-trip", name)
		}

		orig, _ := fl.Get(name)
		if e.Fingerprint != orig.Fingerprint {
			t.Fatalf("%s: got fingerprint %q, want %q", name, e.Fingerprint, orig.Fingerprint)
		}
	}

	if out.Len() != fl.Len() {
		t.Fatalf("got %d entries, want %d", out.Len(), fl.Len())
	}
}
