// Package config holds the runtime configuration for the reconstruction
// CLI: an optional YAML file layered over built-in defaults.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the full runtime configuration. The zero value is not usable;
// start from Default.
type Config struct {
	// PublisherID and InstrumentID are stamped into every output row.
	PublisherID  uint16 `yaml:"publisher_id"`
	InstrumentID uint32 `yaml:"instrument_id"`

	// OrderCapacity pre-sizes the order index for the expected number of
	// concurrently resting orders.
	OrderCapacity int `yaml:"order_capacity"`

	// ProgressEvery and AuditEvery are event cadences; zero disables.
	ProgressEvery uint64 `yaml:"progress_every"`
	AuditEvery    uint64 `yaml:"audit_every"`

	Logging Logging `yaml:"logging"`
}

// Logging controls the process logger.
type Logging struct {
	Level  string `yaml:"level"`
	Pretty bool   `yaml:"pretty"`
}

// Default returns the built-in configuration: the publisher, instrument
// and progress cadence of the reference feed.
func Default() Config {
	var c Config
	c.PublisherID = 2
	c.InstrumentID = 1108
	c.OrderCapacity = 8192
	c.ProgressEvery = 50000
	c.AuditEvery = 0
	c.Logging.Level = "info"
	c.Logging.Pretty = false
	return c
}

// Load layers the YAML file at path over Default. An empty path returns
// the defaults unchanged. Unknown keys are rejected so a typo cannot
// silently fall back to a default.
func Load(path string) (Config, error) {
	c := Default()
	if path == "" {
		return c, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("config: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil {
		if errors.Is(err, io.EOF) {
			// An empty file is an explicit "all defaults".
			return c, nil
		}
		return c, fmt.Errorf("config: parse %s: %w", path, err)
	}

	if err := c.validate(); err != nil {
		return c, fmt.Errorf("config: %s: %w", path, err)
	}
	return c, nil
}

func (c Config) validate() error {
	if c.OrderCapacity < 0 {
		return fmt.Errorf("order_capacity %d must not be negative", c.OrderCapacity)
	}
	return nil
}
