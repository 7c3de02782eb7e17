package config

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_HistoryDBPath(t *testing.T) {
	cfg := &Config{Master: "/home/user/.local/share/rsinc/base.json"}

	assert.Equal(t, filepath.Join("/home/user/.local/share/rsinc", "history.db"), cfg.HistoryDBPath())
}

func TestConfig_HistoryDBPath_EmptyMaster(t *testing.T) {
	cfg := &Config{}

	assert.Empty(t, cfg.HistoryDBPath())
}
