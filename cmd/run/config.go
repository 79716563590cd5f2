package main

import (
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/wasm-hostcall/engine"
)

// Config is the optional YAML run configuration. Command-line flags
// override the matching fields.
type Config struct {
	Engine engine.Config `yaml:"engine"`

	// SemverMatching resolves "env@1.0.0" imports against compatible
	// definitions such as "env@1.3.2". Defaults to true.
	SemverMatching *bool `yaml:"semver_matching"`

	Func  string   `yaml:"func"`
	Args  []string `yaml:"args"`
	Stubs []string `yaml:"stubs" validate:"dive,required"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

func loadConfig(path string) (*Config, error) {
	cfg := &Config{}
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	return c.Engine.Validate()
}

func (c *Config) semverMatching() bool {
	return c.SemverMatching == nil || *c.SemverMatching
}
