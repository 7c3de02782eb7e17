package config

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderEffective_AllFieldsShown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.BaseL = "/home/user/sync"
	cfg.BaseR = "remote:sync"
	cfg.Master = "/home/user/.local/share/rsinc/base.json"

	var buf bytes.Buffer
	err := RenderEffective(cfg, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "BASE_L")
	assert.Contains(t, output, "/home/user/sync")
	assert.Contains(t, output, "BASE_R")
	assert.Contains(t, output, "remote:sync")
	assert.Contains(t, output, "HASH_NAME")
	assert.Contains(t, output, "WORKERS")
	assert.Contains(t, output, "history db")
}

func TestRenderEffective_DefaultDirsShown(t *testing.T) {
	cfg := DefaultConfig()
	cfg.DefaultDirs = []string{"/a", "/b"}

	var buf bytes.Buffer
	err := RenderEffective(cfg, &buf)
	require.NoError(t, err)

	output := buf.String()
	assert.Contains(t, output, "DEFAULT_DIRS")
	assert.Contains(t, output, `"/a"`)
	assert.Contains(t, output, `"/b"`)
}

// failWriter is a writer that always fails, used to exercise error paths
// in the errWriter pattern.
type failWriter struct{}

var errWriteFailed = errors.New("write failed")

func (failWriter) Write([]byte) (int, error) {
	return 0, errWriteFailed
}

func TestRenderEffective_WriteError(t *testing.T) {
	cfg := DefaultConfig()

	err := RenderEffective(cfg, failWriter{})
	require.Error(t, err)
	assert.ErrorIs(t, err, errWriteFailed)
}

func TestJoinQuoted(t *testing.T) {
	assert.Equal(t, `"a", "b", "c"`, joinQuoted([]string{"a", "b", "c"}))
	assert.Equal(t, `"single"`, joinQuoted([]string{"single"}))
	assert.Equal(t, "", joinQuoted(nil))
}
