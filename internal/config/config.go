package config

import (
	"errors"
	"fmt"
	"strings"

	"simplestorage/internal/telemetry"
)

// Backend selects where contract slots are stored.
type Backend string

const (
	// BackendMemory keeps slots in process memory.
	BackendMemory Backend = "memory"
	// BackendLevelDB persists slots in a LevelDB directory.
	BackendLevelDB Backend = "leveldb"
)

// Config holds the node configuration.
type Config struct {
	NodeID       string
	ListenAddr   string
	MetricsAddr  string // empty disables the metrics endpoint
	Backend      Backend
	DataDir      string
	OTLPEndpoint string // empty disables tracing export
	LogLevel     string
	LogFormat    string
}

// Default returns the configuration used when no flags are given.
func Default() Config {
	return Config{
		NodeID:      "node1",
		ListenAddr:  "127.0.0.1:50051",
		MetricsAddr: "127.0.0.1:9090",
		Backend:     BackendMemory,
		LogLevel:    "info",
		LogFormat:   telemetry.FormatConsole,
	}
}

// ParseBackend parses a backend name, case-insensitively.
func ParseBackend(s string) (Backend, error) {
	switch b := Backend(strings.ToLower(strings.TrimSpace(s))); b {
	case BackendMemory, BackendLevelDB:
		return b, nil
	default:
		return "", fmt.Errorf("unknown backend %q (expected %s or %s)", s, BackendMemory, BackendLevelDB)
	}
}

// Validate checks the configuration for consistency.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.NodeID) == "" {
		return errors.New("node ID cannot be empty")
	}
	if strings.TrimSpace(c.ListenAddr) == "" {
		return errors.New("listen address cannot be empty")
	}
	if _, err := ParseBackend(string(c.Backend)); err != nil {
		return err
	}
	if c.Backend == BackendLevelDB && strings.TrimSpace(c.DataDir) == "" {
		return errors.New("leveldb backend requires a data directory")
	}
	if c.MetricsAddr != "" && c.MetricsAddr == c.ListenAddr {
		return fmt.Errorf("metrics address %s collides with listen address", c.MetricsAddr)
	}
	if err := telemetry.ValidateLogging(c.LogLevel, c.LogFormat); err != nil {
		return err
	}
	return nil
}
