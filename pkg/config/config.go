package config

import (
	"os"
	"time"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"

	"github.com/i5heu/GoDequeBench/internal/testbench"
)

// Config is an alias for testbench.Config. This allows other programs to import
// the concurrency configuration without pulling in the entire testbench package.
type Config = testbench.Config

// Profile describes one full bench run.
type Profile struct {
	Iterations      int           `yaml:"iterations"`
	Duration        time.Duration `yaml:"duration"`
	InitialCapacity int           `yaml:"initial_capacity"`
	MixedOps        int           `yaml:"mixed_ops"`
	Concurrency     []Config      `yaml:"concurrency"`
}

// Default returns the profile used when no file is given.
func Default() Profile {
	return Profile{
		Iterations:      5,
		Duration:        5 * time.Second,
		InitialCapacity: 8,
		MixedOps:        1_000_000,
		Concurrency: []Config{
			{NumProducers: 1, NumConsumers: 1},
			{NumProducers: 2, NumConsumers: 2},
			{NumProducers: 10, NumConsumers: 10},
			{NumProducers: 50, NumConsumers: 50},
		},
	}
}

// HighConcurrency returns the extra settings enabled by -high-concurrency.
func HighConcurrency() []Config {
	return []Config{
		{NumProducers: 100, NumConsumers: 100},
		{NumProducers: 250, NumConsumers: 250},
		{NumProducers: 500, NumConsumers: 500},
	}
}

// Load reads a YAML profile. Fields missing from the file keep their
// Default values.
func Load(path string) (Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Profile{}, errors.Wrapf(err, "reading profile %q", path)
	}
	p := Default()
	if err := yaml.Unmarshal(data, &p); err != nil {
		return Profile{}, errors.Wrapf(err, "parsing profile %q", path)
	}
	if err := p.Validate(); err != nil {
		return Profile{}, errors.Wrapf(err, "profile %q", path)
	}
	return p, nil
}

// Validate checks that the profile can be run.
func (p Profile) Validate() error {
	if p.Iterations < 1 {
		return errors.Errorf("iterations must be >= 1, got %d", p.Iterations)
	}
	if p.Duration <= 0 {
		return errors.Errorf("duration must be positive, got %s", p.Duration)
	}
	if p.MixedOps < 0 {
		return errors.Errorf("mixed_ops must not be negative, got %d", p.MixedOps)
	}
	if len(p.Concurrency) == 0 {
		return errors.New("at least one concurrency setting is required")
	}
	for i, c := range p.Concurrency {
		if c.NumProducers < 1 || c.NumConsumers < 1 {
			return errors.Errorf("concurrency[%d]: producers and consumers must be >= 1", i)
		}
	}
	return nil
}
