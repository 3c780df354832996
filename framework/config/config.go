package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the central typed configuration struct.
type Config struct {
	App         AppConfig         `toml:"app" envPrefix:"APP_"`
	Log         LogConfig         `toml:"log" envPrefix:"LOG_"`
	Container   ContainerConfig   `toml:"container" envPrefix:"CONTAINER_"`
	Performance PerformanceConfig `toml:"performance" envPrefix:"PERFORMANCE_"`
	Inspect     InspectConfig     `toml:"inspect" envPrefix:"INSPECT_"`
}

type AppConfig struct {
	Name    string `toml:"name" env:"NAME" validate:"required"`
	Env     string `toml:"env" env:"ENV" validate:"oneof=local production testing"`
	Version string `toml:"version" env:"VERSION" validate:"required"`
}

type LogConfig struct {
	Level  string `toml:"level" env:"LEVEL" validate:"oneof=debug info warn error"`
	Format string `toml:"format" env:"FORMAT" validate:"oneof=json console"`
}

type ContainerConfig struct {
	// AllowOverride lets a second Require replace a registration.
	AllowOverride bool `toml:"allow_override" env:"ALLOW_OVERRIDE"`
}

type PerformanceConfig struct {
	Enabled   bool   `toml:"enabled" env:"ENABLED"`
	File      string `toml:"file" env:"FILE"`
	Metrics   bool   `toml:"metrics" env:"METRICS"`
	Namespace string `toml:"namespace" env:"NAMESPACE" validate:"required_with=Metrics"`
	Tracing   bool   `toml:"tracing" env:"TRACING"`

	// TracingEndpoint is an OTLP/HTTP collector URL. Spans are dropped when empty.
	TracingEndpoint string `toml:"tracing_endpoint" env:"TRACING_ENDPOINT" validate:"omitempty,url"`
}

type InspectConfig struct {
	Addr string `toml:"addr" env:"ADDR" validate:"required,hostname_port"`
}

// Default returns the configuration used when no source sets a value.
func Default() Config {
	return Config{
		App: AppConfig{
			Name:    "clikernel",
			Env:     "local",
			Version: "0.0.0-dev",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Performance: PerformanceConfig{
			Namespace: "clikernel",
		},
		Inspect: InspectConfig{
			Addr: "127.0.0.1:8790",
		},
	}
}

// Options selects the configuration sources.
type Options struct {
	// EnvFiles are dotenv files read in order; missing files are skipped.
	// Defaults to ".env".
	EnvFiles []string

	// File is an optional TOML file. A missing file is an error.
	File string

	// Prefix is prepended to every environment variable name.
	Prefix string

	// Environment replaces the process environment when non-nil.
	Environment map[string]string
}

// Load builds a Config from, in increasing precedence: defaults, dotenv
// files, the TOML file and the environment. The result is validated.
//
//	cfg, err := config.Load(config.Options{File: "clikernel.toml"})
func Load(opts Options) (*Config, error) {
	cfg := Default()

	dotenv, err := readEnvFiles(opts.EnvFiles)
	if err != nil {
		return nil, err
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: opts.Prefix, Environment: dotenv}); err != nil {
		return nil, fmt.Errorf("config: parse dotenv: %w", err)
	}

	if opts.File != "" {
		if _, err := toml.DecodeFile(opts.File, &cfg); err != nil {
			return nil, fmt.Errorf("config: load %s: %w", opts.File, err)
		}
	}

	environ := opts.Environment
	if environ == nil {
		environ = env.ToMap(os.Environ())
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: opts.Prefix, Environment: environ}); err != nil {
		return nil, fmt.Errorf("config: parse env: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	out := make(map[string]string)
	for _, f := range files {
		values, err := godotenv.Read(f)
		if errors.Is(err, fs.ErrNotExist) {
			// .env may not exist in production
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("config: read %s: %w", f, err)
		}
		for k, v := range values {
			out[k] = v
		}
	}
	return out, nil
}

var validate = validator.New()

// Validate checks cfg against its validation tags.
func Validate(cfg *Config) error {
	err := validate.Struct(cfg)
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	msgs := make([]string, 0, len(fieldErrs))
	for _, e := range fieldErrs {
		msgs = append(msgs, formatFieldError(e))
	}
	return fmt.Errorf("config: %s", strings.Join(msgs, "; "))
}

func formatFieldError(e validator.FieldError) string {
	field := strings.ToLower(strings.TrimPrefix(e.Namespace(), "Config."))
	switch e.Tag() {
	case "required", "required_with":
		return fmt.Sprintf("%s is required", field)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", field, e.Param())
	case "hostname_port":
		return fmt.Sprintf("%s must be a host:port address", field)
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}
