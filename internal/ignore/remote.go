package ignore

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"path"
	"strings"

	"github.com/cwilliams/rsinc/internal/agent"
)

// CompileRemote discovers .rignore files under root through ag.List, reads
// each one through ag.ReadFile, and compiles a Filter rooted at root. The
// remote side has no local filesystem to walk, so discovery goes through
// the same agent the reconciliation engine uses for everything else.
func CompileRemote(ctx context.Context, ag agent.Agent, root string) (*Filter, error) {
	entries, err := ag.List(ctx, root)
	if err != nil {
		return nil, fmt.Errorf("listing %s for ignore files: %w", root, err)
	}

	perDir := make(map[string][]string)

	for _, e := range entries {
		if path.Base(e.RelPath) != ignoreFileName {
			continue
		}

		dir := path.Join(root, path.Dir(e.RelPath))

		data, err := ag.ReadFile(ctx, path.Join(root, e.RelPath))
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", e.RelPath, err)
		}

		perDir[dir] = append(perDir[dir], linesOf(data)...)
	}

	return CompileFromLines(root, perDir)
}

func linesOf(data []byte) []string {
	var lines []string

	scanner := bufio.NewScanner(bytes.NewReader(data))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		lines = append(lines, line)
	}

	return lines
}
