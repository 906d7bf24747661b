package config

import (
	"fmt"
	"net"
	"os"
	"time"

	"github.com/rs/zerolog"
)

// IngestConfig configures the producer listener.
type IngestConfig struct {
	Address string `json:"address"`
	// IdleTimeoutSeconds closes a silent producer connection. Zero waits
	// forever.
	IdleTimeoutSeconds int `json:"idle_timeout_seconds"`
}

// SetDefaults applies the default listen address.
func (c *IngestConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5000"
	}
}

// Validate checks the listen address and timeout.
func (c IngestConfig) Validate() error {
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("ingest.address: %w", err)
	}
	if c.IdleTimeoutSeconds < 0 {
		return fmt.Errorf("ingest.idle_timeout_seconds must be >= 0")
	}
	return nil
}

// IdleTimeout returns the idle timeout as a duration.
func (c IngestConfig) IdleTimeout() time.Duration {
	return time.Duration(c.IdleTimeoutSeconds) * time.Second
}

// APIConfig configures the read-only HTTP API.
type APIConfig struct {
	// Disabled turns the HTTP API off.
	Disabled  bool   `json:"disabled"`
	Address   string `json:"address"`
	StaticDir string `json:"static_dir"`
}

func (c *APIConfig) SetDefaults() {
	if c.Address == "" {
		c.Address = ":5100"
	}
}

func (c APIConfig) Validate() error {
	if c.Disabled {
		return nil
	}
	if _, _, err := net.SplitHostPort(c.Address); err != nil {
		return fmt.Errorf("api.address: %w", err)
	}
	if c.StaticDir != "" {
		st, err := os.Stat(c.StaticDir)
		if err != nil {
			return fmt.Errorf("api.static_dir: %w", err)
		}
		if !st.IsDir() {
			return fmt.Errorf("api.static_dir %s is not a directory", c.StaticDir)
		}
	}
	return nil
}

// FleetConfig configures the fleet store.
type FleetConfig struct {
	// OfflineAfterSeconds marks a vehicle offline when no telemetry for it
	// was received in that many seconds. Zero keeps every vehicle online.
	OfflineAfterSeconds int `json:"offline_after_seconds"`
}

func (c FleetConfig) Validate() error {
	if c.OfflineAfterSeconds < 0 {
		return fmt.Errorf("fleet.offline_after_seconds must be >= 0")
	}
	return nil
}

// OfflineAfter returns the staleness threshold as a duration.
func (c FleetConfig) OfflineAfter() time.Duration {
	return time.Duration(c.OfflineAfterSeconds) * time.Second
}

// LogConfig configures logging.
type LogConfig struct {
	Level string `json:"level"`
}

func (c *LogConfig) SetDefaults() {
	if c.Level == "" {
		c.Level = "info"
	}
}

func (c LogConfig) Validate() error {
	if _, err := zerolog.ParseLevel(c.Level); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}
