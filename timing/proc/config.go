package proc

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sarchlab/procsim/insts"
)

// Config holds the hardware configuration of the simulated processor.
type Config struct {
	// ResultBuses is the number of result-bus broadcast slots per cycle.
	// Default: 8.
	ResultBuses int `json:"result_buses"`

	// K0Units is the number of class-0 functional units. Default: 1.
	K0Units int `json:"k0_units"`

	// K1Units is the number of class-1 functional units. Default: 2.
	K1Units int `json:"k1_units"`

	// K2Units is the number of class-2 functional units. Default: 3.
	K2Units int `json:"k2_units"`

	// FetchRate is the maximum number of instructions fetched per cycle.
	// Default: 4.
	FetchRate int `json:"fetch_rate"`
}

// DefaultConfig returns the default hardware configuration.
func DefaultConfig() *Config {
	return &Config{
		ResultBuses: 8,
		K0Units:     1,
		K1Units:     2,
		K2Units:     3,
		FetchRate:   4,
	}
}

// LoadConfig loads a Config from a JSON file. Fields absent from the
// file keep their default values.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read processor config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse processor config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize processor config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write processor config file: %w", err)
	}

	return nil
}

// Validate checks that the configuration describes a machine that can
// make forward progress.
func (c *Config) Validate() error {
	if c.ResultBuses <= 0 {
		return fmt.Errorf("result_buses must be > 0, got %d", c.ResultBuses)
	}
	if c.FetchRate <= 0 {
		return fmt.Errorf("fetch_rate must be > 0, got %d", c.FetchRate)
	}
	if c.K0Units < 0 || c.K1Units < 0 || c.K2Units < 0 {
		return fmt.Errorf("functional unit counts must be >= 0, got k0=%d k1=%d k2=%d",
			c.K0Units, c.K1Units, c.K2Units)
	}
	if c.K0Units+c.K1Units+c.K2Units == 0 {
		return fmt.Errorf("at least one functional unit is required")
	}
	return nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// UnitCount returns the configured unit count for a class.
func (c *Config) UnitCount(class insts.FUClass) int {
	switch class {
	case insts.FUClass0:
		return c.K0Units
	case insts.FUClass1:
		return c.K1Units
	case insts.FUClass2:
		return c.K2Units
	default:
		return 0
	}
}

// StationCount returns the reservation-station capacity derived from
// the unit counts: twice the total number of functional units.
func (c *Config) StationCount() int {
	return 2 * (c.K0Units + c.K1Units + c.K2Units)
}
