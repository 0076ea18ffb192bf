// Package config defines program configuration. Defaults are embedded in
// the binary, a configuration file only needs to carry what it changes.
package config

import (
	"bytes"
	_ "embed"
	"fmt"
	"os"
	"runtime"

	yaml "gopkg.in/yaml.v3"

	"github.com/rupor-github/gencfg"
)

//go:embed config.yaml
var defaultConfig []byte

type (
	GenerateConfig struct {
		Source      string   `yaml:"source" validate:"omitempty,dir"`
		Destination string   `yaml:"destination" validate:"required"`
		Include     []string `yaml:"include" validate:"required,min=1,dive,required"`
		Exclude     []string `yaml:"exclude" validate:"dive,required"`
		Extension   string   `yaml:"extension" validate:"required,startswith=."`
		Header      string   `yaml:"header"`
		Workers     int      `yaml:"workers" validate:"gte=0"`
		Strict      bool     `yaml:"strict"`
		Verify      bool     `yaml:"verify"`
	}

	Config struct {
		Version  int            `yaml:"version" validate:"eq=1"`
		Generate GenerateConfig `yaml:"generate"`
		Logging  LoggingConfig  `yaml:"logging"`
	}
)

// WorkerCount returns the configured number of workers, one per CPU if unset.
func (g *GenerateConfig) WorkerCount() int {
	if g.Workers > 0 {
		return g.Workers
	}
	return runtime.NumCPU()
}

func unmarshalConfig(data []byte, cfg *Config) (*Config, error) {
	// We want to use only fields we defined so we cannot use yaml.Unmarshal
	// directly here
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration data: %w", err)
	}
	return cfg, nil
}

// LoadConfiguration reads the configuration from the file at the given path,
// superimposes its values on top of the embedded defaults and performs
// validation. An empty path gives the defaults.
func LoadConfiguration(path string) (*Config, error) {
	cfg, err := unmarshalConfig(defaultConfig, &Config{})
	if err != nil {
		return nil, fmt.Errorf("failed to process default configuration: %w", err)
	}

	if len(path) > 0 {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if cfg, err = unmarshalConfig(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to process configuration file: %w", err)
		}
	}

	if err := Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cfg, it has to be called again after values are changed
// from the command line.
func Validate(cfg *Config) error {
	if err := gencfg.Validate(cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

// Prepare returns the default configuration.
func Prepare() []byte {
	return bytes.Clone(defaultConfig)
}

func Dump(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal config to yaml: %v", err)
	}
	return data, nil
}
