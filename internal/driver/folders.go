package driver

import (
	"path/filepath"
	"strings"
)

// ResolveFolders decides which folders to sync for one invocation, mirroring
// sinc.py's argument precedence: -D forces defaultDirs, explicit positional
// folders take second priority, and with neither the process's working
// directory is compared against baseL to derive a single implied folder,
// falling back to defaultDirs when cwd isn't under baseL.
func ResolveFolders(baseL string, defaultDirs, explicit []string, useDefault bool, cwd string) []string {
	switch {
	case useDefault:
		return defaultDirs
	case len(explicit) > 0:
		return explicit
	}

	if folder, ok := cwdRelativeFolder(baseL, cwd); ok {
		return []string{folder}
	}

	return defaultDirs
}

// cwdRelativeFolder reports the path of cwd relative to baseL, mirroring
// the component-popping loop at the bottom of sinc.py. Returns ok=false
// when cwd isn't under baseL, or equals baseL itself, in which case the
// caller falls back to defaultDirs.
func cwdRelativeFolder(baseL, cwd string) (string, bool) {
	baseParts := splitClean(baseL)
	cwdParts := splitClean(cwd)

	if len(cwdParts) < len(baseParts) {
		return "", false
	}

	for i, part := range baseParts {
		if cwdParts[i] != part {
			return "", false
		}
	}

	rel := cwdParts[len(baseParts):]
	if len(rel) == 0 {
		return "", false
	}

	return strings.Join(rel, "/"), true
}

func splitClean(path string) []string {
	clean := filepath.Clean(path)
	clean = strings.Trim(clean, string(filepath.Separator))

	if clean == "" || clean == "." {
		return nil
	}

	return strings.Split(clean, string(filepath.Separator))
}

// joinRoot joins root and folder the way BASE_L/BASE_R are joined with a
// synced folder name throughout spec.md §6: no separator is added when root
// already ends in "/" (a local path) or ":" (a bare remote name like
// "onedrive:").
func joinRoot(root, folder string) string {
	if root == "" {
		return folder
	}

	if strings.HasSuffix(root, "/") || strings.HasSuffix(root, ":") {
		return root + folder
	}

	return root + "/" + folder
}
