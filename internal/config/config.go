// Package config reads the quire.yaml file of a root directory.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// FileName is the configuration file looked up in the root directory.
const FileName = "quire.yaml"

var validate = validator.New()

// Config is the content of quire.yaml.
type Config struct {
	Adapter  string `yaml:"adapter" validate:"oneof=fs badger sqlite postgres memory"`
	DSN      string `yaml:"dsn,omitempty" validate:"required_if=Adapter postgres"`
	Lenient  bool   `yaml:"lenient"`
	LogLevel string `yaml:"log_level" validate:"oneof=debug info warn error"`

	Watch struct {
		Debounce time.Duration `yaml:"debounce" validate:"gte=0"`
	} `yaml:"watch"`

	Badger struct {
		GCInterval time.Duration `yaml:"gc_interval" validate:"gte=0"`
	} `yaml:"badger"`
}

// Default returns the configuration written on first run.
func Default() Config {
	var c Config
	c.Adapter = "fs"
	c.LogLevel = "info"
	c.Watch.Debounce = 50 * time.Millisecond
	c.Badger.GCInterval = 5 * time.Minute
	return c
}

// Path returns the configuration file path under root.
func Path(root string) string {
	return filepath.Join(root, FileName)
}

// Load reads the configuration of root, writing the defaults first when the
// file does not exist. created reports whether the file was written.
func Load(root string) (cfg Config, created bool, err error) {
	if _, err := os.Stat(Path(root)); errors.Is(err, os.ErrNotExist) {
		if err := Save(root, Default()); err != nil {
			return Config{}, false, err
		}
		created = true
	}
	cfg, err = Read(root)
	return cfg, created, err
}

// Read reads the configuration of root without touching the disk. A missing
// file yields the defaults.
func Read(root string) (Config, error) {
	path := Path(root)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return Config{}, fmt.Errorf("failed to read %s: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse %s: %w", path, err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Save writes cfg to root, creating the directory when needed.
func Save(root string, cfg Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", root, err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return os.WriteFile(Path(root), data, 0o644)
}

// Validate checks the field constraints.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}
