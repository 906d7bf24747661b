package metrics

import (
	"fmt"

	"github.com/kilianp07/mineguard/core/factory"
)

// Config defines settings for metrics sinks.
type Config struct {
	Sinks []factory.ModuleConfig `json:"sinks"`
	// PrometheusAddress is where /metrics is served. Empty disables the
	// endpoint.
	PrometheusAddress string `json:"prometheus_address"`
}

// SetDefaults fills unset fields.
func (c *Config) SetDefaults() {
	if c.Sinks == nil {
		c.Sinks = []factory.ModuleConfig{}
	}
}

// Validate checks that every sink names a type.
func (c Config) Validate() error {
	for i, s := range c.Sinks {
		if s.Type == "" {
			return fmt.Errorf("metrics.sinks[%d]: type is required", i)
		}
	}
	return nil
}
