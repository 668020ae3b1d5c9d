package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config holds all grove configuration.
type Config struct {
	Dataset DatasetConfig `yaml:"dataset"`
	Server  ServerConfig  `yaml:"server"`
	Log     LogConfig     `yaml:"log"`
}

// DatasetConfig describes where the dataset lives and how it is prepared.
type DatasetConfig struct {
	Path         string `yaml:"path" validate:"required"`
	AssignTokens bool   `yaml:"assign_tokens"`
	// PrepareScript names a script under prepare/ ("default" is embedded).
	// Empty disables the prepare step.
	PrepareScript string `yaml:"prepare_script"`
	// ScriptsDir loads prepare scripts from disk instead of the embedded set.
	ScriptsDir string        `yaml:"scripts_dir"`
	Watch      bool          `yaml:"watch"`
	Debounce   time.Duration `yaml:"debounce" validate:"gte=0"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr            string        `yaml:"addr" validate:"required,hostname_port"`
	PublicDir       string        `yaml:"public_dir"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" validate:"gte=0"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" validate:"oneof=debug info warn warning error"`
	Format string `yaml:"format" validate:"oneof=text json"`
}

var validate = validator.New()

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Dataset: DatasetConfig{
			Path:          "tree.json",
			PrepareScript: "default",
			Debounce:      500 * time.Millisecond,
		},
		Server: ServerConfig{
			Addr:            ":8080",
			PublicDir:       "public",
			ShutdownTimeout: 10 * time.Second,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load builds the configuration: defaults, then the YAML file at path (if
// path is non-empty), then GROVE_* environment variables. The result is
// validated.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.mergeFile(path); err != nil {
			return Config{}, err
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) mergeFile(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(c); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return fmt.Errorf("config: parse %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnv() {
	c.Dataset.Path = getenv("GROVE_DATASET", c.Dataset.Path)
	c.Dataset.AssignTokens = getenvBool("GROVE_ASSIGN_TOKENS", c.Dataset.AssignTokens)
	c.Dataset.PrepareScript = getenvAllowEmpty("GROVE_PREPARE_SCRIPT", c.Dataset.PrepareScript)
	c.Dataset.ScriptsDir = getenv("GROVE_SCRIPTS_DIR", c.Dataset.ScriptsDir)
	c.Dataset.Watch = getenvBool("GROVE_WATCH", c.Dataset.Watch)
	c.Dataset.Debounce = getenvDuration("GROVE_DEBOUNCE", c.Dataset.Debounce)
	c.Server.Addr = getenv("GROVE_ADDR", c.Server.Addr)
	c.Server.PublicDir = getenvAllowEmpty("GROVE_PUBLIC_DIR", c.Server.PublicDir)
	c.Log.Level = getenv("GROVE_LOG_LEVEL", c.Log.Level)
	c.Log.Format = getenv("GROVE_LOG_FORMAT", c.Log.Format)
}

// Validate checks the configuration against its struct tags.
func (c Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getenvAllowEmpty is getenv where a set-but-empty variable clears the value.
func getenvAllowEmpty(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func getenvBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return fallback
	}
	return b
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return fallback
	}
	return d
}
