package agent

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os/exec"
	"strings"
	"time"
)

// isoModTime is the second-precision prefix of the timestamps rclone's
// lsjson emits; fractional seconds and any zone offset are cut off before
// parsing.
const isoModTime = "2006-01-02T15:04:05"

// RcloneAgent implements Agent by shelling out to an rclone-compatible
// binary. Every call is built from AgentConfig.Binary plus AgentConfig.Flags
// so alternate backends (anything accepting rclone's lsjson/hashsum/copyto
// verbs) can be substituted without code changes.
type RcloneAgent struct {
	Binary string
	Flags  []string
	Logger *slog.Logger
}

// New returns an RcloneAgent shelling out to binary, with extra flags
// appended to every invocation (e.g. --transfers, --config).
func New(binary string, flags []string, logger *slog.Logger) *RcloneAgent {
	if logger == nil {
		logger = slog.Default()
	}

	return &RcloneAgent{Binary: binary, Flags: flags, Logger: logger}
}

type lsjsonEntry struct {
	Path    string `json:"Path"`
	Size    int64  `json:"Size"`
	ModTime string `json:"ModTime"`
	IsDir   bool   `json:"IsDir"`
}

// List enumerates every file under path via `lsjson -R --files-only`.
func (a *RcloneAgent) List(ctx context.Context, path string) ([]ListEntry, error) {
	args := append(a.baseArgs(), "lsjson", "-R", "--files-only", path)

	out, err := a.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	var raw []lsjsonEntry
	if err := json.Unmarshal(out, &raw); err != nil {
		return nil, fmt.Errorf("parsing lsjson output for %s: %w", path, err)
	}

	entries := make([]ListEntry, 0, len(raw))
	for _, r := range raw {
		if r.IsDir {
			continue
		}

		modTime, err := time.Parse(isoModTime, truncateModTime(r.ModTime))
		if err != nil {
			a.Logger.Warn("unparseable modtime, using zero value", "path", r.Path, "raw", r.ModTime)
		}

		entries = append(entries, ListEntry{RelPath: r.Path, Size: r.Size, ModTime: modTime})
	}

	return entries, nil
}

// truncateModTime trims an RFC3339-with-fractional-seconds timestamp down
// to the second-precision isoModTime layout. The parsed time only feeds the
// entry's ModTime (the recovery-mode tiebreaker); fingerprints and the base
// store do not use it.
func truncateModTime(raw string) string {
	if len(raw) < len(isoModTime) {
		return raw
	}

	return raw[:len(isoModTime)]
}

// Hashsum returns relpath -> hex digest via `hashsum <algorithm> <path>`.
// Output format is "<hex>  <relpath>" per line, matching md5sum/sha1sum
// conventions.
func (a *RcloneAgent) Hashsum(ctx context.Context, algorithm, path string) (map[string]string, error) {
	args := append(a.baseArgs(), "hashsum", algorithm, path)

	out, err := a.run(ctx, args...)
	if err != nil {
		return nil, fmt.Errorf("hashing %s with %s: %w", path, algorithm, err)
	}

	sums := make(map[string]string)
	scanner := bufio.NewScanner(bytes.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		fields := strings.SplitN(strings.TrimSpace(line), "  ", 2)
		if len(fields) != 2 {
			continue
		}

		sums[fields[1]] = fields[0]
	}

	return sums, nil
}

// CopyTo copies src to dst via `copyto <src> <dst>`.
func (a *RcloneAgent) CopyTo(ctx context.Context, src, dst string) error {
	if _, err := a.run(ctx, append(a.baseArgs(), "copyto", src, dst)...); err != nil {
		return fmt.Errorf("copying %s to %s: %w", src, dst, err)
	}

	return nil
}

// MoveTo moves src to dst via `moveto <src> <dst>`.
func (a *RcloneAgent) MoveTo(ctx context.Context, src, dst string) error {
	if _, err := a.run(ctx, append(a.baseArgs(), "moveto", src, dst)...); err != nil {
		return fmt.Errorf("moving %s to %s: %w", src, dst, err)
	}

	return nil
}

// Delete removes the file at path via `delete <path>`.
func (a *RcloneAgent) Delete(ctx context.Context, path string) error {
	if _, err := a.run(ctx, append(a.baseArgs(), "delete", path)...); err != nil {
		return fmt.Errorf("deleting %s: %w", path, err)
	}

	return nil
}

// Mkdir ensures path exists via `mkdir <path>`.
func (a *RcloneAgent) Mkdir(ctx context.Context, path string) error {
	if _, err := a.run(ctx, append(a.baseArgs(), "mkdir", path)...); err != nil {
		return fmt.Errorf("creating directory %s: %w", path, err)
	}

	return nil
}

// ReadFile returns the contents of path via `cat <path>`.
func (a *RcloneAgent) ReadFile(ctx context.Context, path string) ([]byte, error) {
	out, err := a.run(ctx, append(a.baseArgs(), "cat", path)...)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return out, nil
}

// Rmdirs removes every empty directory under path via `rmdirs <path>`.
func (a *RcloneAgent) Rmdirs(ctx context.Context, path string) error {
	if _, err := a.run(ctx, append(a.baseArgs(), "rmdirs", path)...); err != nil {
		return fmt.Errorf("removing empty directories under %s: %w", path, err)
	}

	return nil
}

func (a *RcloneAgent) baseArgs() []string {
	args := make([]string, len(a.Flags))
	copy(args, a.Flags)

	return args
}

func (a *RcloneAgent) run(ctx context.Context, args ...string) ([]byte, error) {
	cmd := exec.CommandContext(ctx, a.Binary, args...)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s %s: %w: %s", a.Binary, strings.Join(args, " "), err, stderr.String())
	}

	return stdout.Bytes(), nil
}
