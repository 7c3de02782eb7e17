package config

// Default values for configuration options not required in the config file.
// These are the "layer 0" of the override chain described in paths.go/load.go.
const (
	defaultHashName    = "md5"
	defaultAgentBinary = "rclone"
	defaultWorkers     = 7 // matches NUMBER_OF_WORKERS in rsinc/sync.py
)

// DefaultConfig returns a Config populated with safe defaults. Used as the
// starting point for JSON decoding (so unset fields retain defaults) and as
// the value `rsinc config init` writes (see runConfigInit, which passes it
// to Write).
func DefaultConfig() *Config {
	return &Config{
		HashName:    defaultHashName,
		AgentBinary: defaultAgentBinary,
		Workers:     defaultWorkers,
		DefaultDirs: []string{},
		AgentFlags:  []string{},
	}
}
