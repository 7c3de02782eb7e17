package basetree

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/zeebo/blake3"
)

// Document is the base file's full contents (spec.md §6): the sync
// history, the list of discovered .rignore files, and the packed tree.
// The wire format is a JSON array [history, ignores, tree] with an
// optional fourth element, a blake3 checksum of the first three encoded
// as hex -- a domain-stack addition (DESIGN.md) to detect a base file
// left behind half-written by a killed process.
type Document struct {
	History []string
	Ignores []string
	Tree    *Node
}

// EmptyDocument returns a Document with an empty tree and no history.
func EmptyDocument() *Document {
	return &Document{
		History: []string{},
		Ignores: []string{},
		Tree:    Empty(),
	}
}

// Encode serializes d into the [history, ignores, tree, checksum] array.
func (d *Document) Encode() ([]byte, error) {
	history := append([]string(nil), d.History...)
	ignores := append([]string(nil), d.Ignores...)
	sort.Strings(history)
	sort.Strings(ignores)

	tree := d.Tree
	if tree == nil {
		tree = Empty()
	}

	treeJSON, err := json.Marshal(tree)
	if err != nil {
		return nil, fmt.Errorf("encoding tree: %w", err)
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		return nil, fmt.Errorf("encoding history: %w", err)
	}

	ignoresJSON, err := json.Marshal(ignores)
	if err != nil {
		return nil, fmt.Errorf("encoding ignores: %w", err)
	}

	sum := checksumOf(historyJSON, ignoresJSON, treeJSON)

	return json.Marshal([]json.RawMessage{
		historyJSON,
		ignoresJSON,
		treeJSON,
		mustMarshalString(sum),
	})
}

// Decode parses the [history, ignores, tree] or [history, ignores, tree,
// checksum] array form. When a checksum element is present, a mismatch
// returns ErrChecksumMismatch -- treated identically to a missing base
// file by the driver (forces recovery).
func Decode(data []byte) (*Document, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("decoding base document: %w", err)
	}

	if len(raw) < 3 {
		return nil, fmt.Errorf("base document: expected at least 3 elements, got %d", len(raw))
	}

	var history, ignores []string
	if err := json.Unmarshal(raw[0], &history); err != nil {
		return nil, fmt.Errorf("decoding history: %w", err)
	}

	if err := json.Unmarshal(raw[1], &ignores); err != nil {
		return nil, fmt.Errorf("decoding ignores: %w", err)
	}

	tree := Empty()
	if err := json.Unmarshal(raw[2], tree); err != nil {
		return nil, fmt.Errorf("decoding tree: %w", err)
	}

	if len(raw) >= 4 {
		var want string
		if err := json.Unmarshal(raw[3], &want); err != nil {
			return nil, fmt.Errorf("decoding checksum: %w", err)
		}

		got := checksumOf(raw[0], raw[1], raw[2])
		if want != got {
			return nil, ErrChecksumMismatch
		}
	}

	if history == nil {
		history = []string{}
	}

	if ignores == nil {
		ignores = []string{}
	}

	return &Document{History: history, Ignores: ignores, Tree: tree}, nil
}

func checksumOf(parts ...[]byte) string {
	h := blake3.New()
	for _, p := range parts {
		h.Write(p) //nolint:errcheck // hash.Hash.Write never errors
	}

	return hex.EncodeToString(h.Sum(nil))
}

func mustMarshalString(s string) json.RawMessage {
	b, err := json.Marshal(s)
	if err != nil {
		panic(err) // s is always a valid hex string
	}

	return b
}
