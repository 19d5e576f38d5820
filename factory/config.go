package factory

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"github.com/tailored-agentic-units/fixtures/observability"
)

const defaultObserver = "noop"

// Environment variables that override values loaded from a config file.
const (
	EnvStrict   = "FIXTURES_STRICT"
	EnvSeed     = "FIXTURES_SEED"
	EnvObserver = "FIXTURES_OBSERVER"
)

// Config holds the settings a Manager is created from.
type Config struct {
	Strict   *bool  `json:"strict,omitempty" yaml:"strict,omitempty"`
	Seed     uint64 `json:"seed,omitempty" yaml:"seed,omitempty"`
	Observer string `json:"observer,omitempty" yaml:"observer,omitempty" validate:"required,observer"`
}

// DefaultConfig returns strict validation, nondeterministic collections, and
// a discarding observer.
func DefaultConfig() Config {
	strict := true
	return Config{
		Strict:   &strict,
		Observer: defaultObserver,
	}
}

// IsStrict reports the effective strict setting. An unset value is strict.
func (c *Config) IsStrict() bool {
	return c.Strict == nil || *c.Strict
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source.Strict != nil {
		strict := *source.Strict
		c.Strict = &strict
	}
	if source.Seed != 0 {
		c.Seed = source.Seed
	}
	if source.Observer != "" {
		c.Observer = source.Observer
	}
}

var configValidate = newConfigValidator()

func newConfigValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.RegisterValidation("observer", func(fl validator.FieldLevel) bool {
		_, err := observability.GetObserver(fl.Field().String())
		return err == nil
	})
	if err != nil {
		panic(fmt.Sprintf("factory: register observer validation: %v", err))
	}
	return v
}

// Validate reports whether c names a registered observer.
func (c *Config) Validate() error {
	if err := configValidate.Struct(c); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

// LoadConfig reads a JSON or YAML config file, chosen by extension, merges it
// onto DefaultConfig, applies FIXTURES_* environment overrides, and validates
// the result.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &loaded)
	case ".json":
		err = json.Unmarshal(data, &loaded)
	default:
		return nil, fmt.Errorf("%w: unsupported config format %q", ErrInvalidConfig, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	if err := cfg.applyEnv(os.Getenv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyEnv(getenv func(string) string) error {
	if v := getenv(EnvStrict); v != "" {
		strict, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvStrict, err)
		}
		c.Strict = &strict
	}
	if v := getenv(EnvSeed); v != "" {
		seed, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, EnvSeed, err)
		}
		c.Seed = seed
	}
	if v := getenv(EnvObserver); v != "" {
		c.Observer = v
	}
	return nil
}
