package main

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cwilliams/rsinc/internal/config"
)

func TestRunReload_NoRunningWatcherIsAnError(t *testing.T) {
	dir := t.TempDir()
	cc := &CLIContext{
		Cfg:    &config.Config{Master: filepath.Join(dir, "base.json")},
		Logger: testLogger(t),
	}

	cmd := newReloadCmd()
	cmd.SetContext(contextWithCLI(cc))

	err := runReload(cmd, nil)
	assert.ErrorContains(t, err, "no running daemon")
}
