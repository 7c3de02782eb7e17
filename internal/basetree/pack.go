package basetree

import (
	"sort"
	"strings"

	"github.com/cwilliams/rsinc/internal/flat"
)

// Pack converts a flat snapshot into a packed tree, mirroring
// rsinc/packed.py:pack.
func Pack(fl *flat.Flat) *Node {
	root := Empty()

	for _, name := range fl.Names() {
		e, ok := fl.Get(name)
		if !ok || e.State == flat.DELETED {
			continue
		}

		root.Insert(strings.Split(name, "/"), e.Fingerprint)
	}

	return root
}

// Unpack converts a packed tree back into a flat snapshot rooted at path,
// mirroring rsinc/packed.py:unpack.
func Unpack(n *Node, path string) *flat.Flat {
	fl := flat.New(path)
	unpackInto(n, fl, "")

	return fl
}

func unpackInto(n *Node, fl *flat.Flat, prefix string) {
	names := make([]string, 0, len(n.File))
	for name := range n.File {
		names = append(names, name)
	}

	sort.Strings(names)

	for _, name := range names {
		fl.Update(&flat.Entry{Name: prefix + name, Fingerprint: n.File[name]})
	}

	folds := make([]string, 0, len(n.Fold))
	for name := range n.Fold {
		folds = append(folds, name)
	}

	sort.Strings(folds)

	for _, name := range folds {
		unpackInto(n.Fold[name], fl, prefix+name+"/")
	}
}
