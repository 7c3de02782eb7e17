package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cwilliams/rsinc/internal/config"
)

func TestRunConfigShow_TextOutput(t *testing.T) {
	cmd := newConfigShowCmd()
	cc := &CLIContext{Cfg: config.DefaultConfig(), Logger: testLogger(t)}
	cmd.SetContext(contextWithCLI(cc))

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runConfigShow(cmd, nil)

	w.Close()
	os.Stdout = old

	require.NoError(t, err)

	var buf bytes.Buffer
	buf.ReadFrom(r)
	assert.Contains(t, buf.String(), "Effective configuration")
}

func TestRunConfigShow_JSONOutput(t *testing.T) {
	cmd := newConfigShowCmd()
	cc := &CLIContext{Cfg: config.DefaultConfig(), Flags: CLIFlags{JSON: true}, Logger: testLogger(t)}
	cmd.SetContext(contextWithCLI(cc))

	old := os.Stdout
	r, w, _ := os.Pipe()
	os.Stdout = w

	err := runConfigShow(cmd, nil)

	w.Close()
	os.Stdout = old

	require.NoError(t, err)

	var decoded config.Config
	require.NoError(t, json.NewDecoder(r).Decode(&decoded))
	assert.Equal(t, config.DefaultConfig().HashName, decoded.HashName)
}

func TestRunConfigInit_WritesDefaultConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")

	flagConfigPath = path
	t.Cleanup(func() { flagConfigPath = "" })

	cmd := newConfigInitCmd()

	require.NoError(t, runConfigInit(cmd, nil))

	// The written defaults leave BASE_L/BASE_R empty, so config.Load would
	// reject them; decode the file directly instead.
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	var cfg config.Config
	require.NoError(t, json.Unmarshal(data, &cfg))
	assert.Equal(t, config.DefaultConfig().AgentBinary, cfg.AgentBinary)
}

func TestRunConfigInit_RefusesToOverwriteWithoutForce(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.json")
	require.NoError(t, config.Write(path, config.DefaultConfig()))

	flagConfigPath = path
	t.Cleanup(func() { flagConfigPath = "" })

	cmd := newConfigInitCmd()

	err := runConfigInit(cmd, nil)
	assert.ErrorContains(t, err, "already exists")
}
