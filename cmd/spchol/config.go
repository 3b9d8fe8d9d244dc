// SPDX-License-Identifier: MIT

package main

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config describes one run. Every field has a flag of the same name
// (underscores become dashes); flags given on the command line win over
// the config file.
type Config struct {
	Grid          int     `yaml:"grid"`
	Random        int     `yaml:"random"`
	Density       float64 `yaml:"density"`
	SupernodeSize int     `yaml:"supernode_size"`
	Workers       int     `yaml:"workers"`
	NRHS          int     `yaml:"nrhs"`
	Seed          int64   `yaml:"seed"`
	Spy           string  `yaml:"spy"`
	Dump          bool    `yaml:"dump"`
	Verbose       bool    `yaml:"verbose"`
}

var (
	errNoProblem   = errors.New("spchol: set exactly one of grid or random")
	errBadSettings = errors.New("spchol: invalid settings")
)

func defaultConfig() Config {
	return Config{
		Density:       0.05,
		SupernodeSize: 8,
		Workers:       0, // 0 = GOMAXPROCS
		NRHS:          1,
		Seed:          1,
	}
}

// loadConfig overlays the YAML file at path onto cfg.
func loadConfig(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("spchol: read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("spchol: parse config %s: %w", path, err)
	}

	return nil
}

// defaultGrid is used when neither grid nor random is set.
const defaultGrid = 16

// resolveProblem picks the default grid problem when none was chosen.
func (c *Config) resolveProblem() {
	if c.Grid == 0 && c.Random == 0 {
		c.Grid = defaultGrid
	}
}

// Validate checks the settings for consistency.
func (c Config) Validate() error {
	if (c.Grid > 0) == (c.Random > 0) {
		return errNoProblem
	}
	switch {
	case c.Grid < 0, c.Random < 0:
		return fmt.Errorf("%w: negative problem size", errBadSettings)
	case c.Random > 0 && (c.Density < 0 || c.Density > 1):
		return fmt.Errorf("%w: density %g outside [0,1]", errBadSettings, c.Density)
	case c.SupernodeSize < 1:
		return fmt.Errorf("%w: supernode size %d", errBadSettings, c.SupernodeSize)
	case c.Workers < 0:
		return fmt.Errorf("%w: workers %d", errBadSettings, c.Workers)
	case c.NRHS < 1:
		return fmt.Errorf("%w: nrhs %d", errBadSettings, c.NRHS)
	}

	return nil
}
