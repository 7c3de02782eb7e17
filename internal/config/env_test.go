package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReadEnvOverrides_AllSet(t *testing.T) {
	t.Setenv("RSINC_CONFIG", "/custom/config.json")
	t.Setenv("RSINC_AGENT_BINARY", "rclone-beta")

	overrides := ReadEnvOverrides()
	assert.Equal(t, "/custom/config.json", overrides.ConfigPath)
	assert.Equal(t, "rclone-beta", overrides.AgentBinary)
}

func TestReadEnvOverrides_NoneSet(t *testing.T) {
	t.Setenv("RSINC_CONFIG", "")
	t.Setenv("RSINC_AGENT_BINARY", "")

	overrides := ReadEnvOverrides()
	assert.Empty(t, overrides.ConfigPath)
	assert.Empty(t, overrides.AgentBinary)
}

func TestReadEnvOverrides_PartiallySet(t *testing.T) {
	t.Setenv("RSINC_CONFIG", "")
	t.Setenv("RSINC_AGENT_BINARY", "rclone")

	overrides := ReadEnvOverrides()
	assert.Empty(t, overrides.ConfigPath)
	assert.Equal(t, "rclone", overrides.AgentBinary)
}

func TestEnvVarConstants(t *testing.T) {
	assert.Equal(t, "RSINC_CONFIG", EnvConfig)
	assert.Equal(t, "RSINC_AGENT_BINARY", EnvAgentBinary)
}
