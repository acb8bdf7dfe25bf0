package main

import (
	"errors"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	"github.com/alnah/go-dealdoc/internal/config"
)

// ErrInvalidEnv reports a DEALDOC_* variable that could not be parsed.
var ErrInvalidEnv = errors.New("invalid environment variable")

// envPrefix namespaces every variable read by the CLI.
const envPrefix = "DEALDOC_"

// envConfig holds configuration from environment variables.
// Provides CI/CD-friendly overrides without requiring YAML files.
type envConfig struct {
	ConfigPath   string        `env:"CONFIG"`
	OutputDir    string        `env:"OUTPUT_DIR"`
	Template     string        `env:"TEMPLATE"`
	DateFormat   string        `env:"DATE_FORMAT"`
	AssetPath    string        `env:"ASSET_PATH"`
	Addr         string        `env:"SERVER_ADDR"`
	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT"`
	LogLevel     string        `env:"LOG_LEVEL"`
	LogFormat    string        `env:"LOG_FORMAT"`
	Workers      int           `env:"WORKERS"`
}

// knownEnvVars lists valid DEALDOC_* environment variables.
// Used to detect typos and warn users about unknown variables.
var knownEnvVars = map[string]bool{
	"DEALDOC_CONFIG":               true,
	"DEALDOC_OUTPUT_DIR":           true,
	"DEALDOC_TEMPLATE":             true,
	"DEALDOC_DATE_FORMAT":          true,
	"DEALDOC_ASSET_PATH":           true,
	"DEALDOC_SERVER_ADDR":          true,
	"DEALDOC_SERVER_READ_TIMEOUT":  true,
	"DEALDOC_SERVER_WRITE_TIMEOUT": true,
	"DEALDOC_LOG_LEVEL":            true,
	"DEALDOC_LOG_FORMAT":           true,
	"DEALDOC_WORKERS":              true,
	"DEALDOC_CONTAINER":            true, // read by doctor
}

// loadEnvConfig parses DEALDOC_* variables from environ (KEY=value pairs).
func loadEnvConfig(environ []string) (*envConfig, error) {
	vars := make(map[string]string, len(environ))
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok {
			vars[k] = v
		}
	}

	var cfg envConfig
	if err := env.ParseWithOptions(&cfg, env.Options{
		Prefix:      envPrefix,
		Environment: vars,
	}); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEnv, err)
	}
	return &cfg, nil
}

// unknownEnvVars returns the sorted DEALDOC_* names that are not recognized.
func unknownEnvVars(environ []string) []string {
	var unknown []string
	for _, kv := range environ {
		name, _, _ := strings.Cut(kv, "=")
		if strings.HasPrefix(name, envPrefix) && !knownEnvVars[name] {
			unknown = append(unknown, name)
		}
	}
	sort.Strings(unknown)
	return unknown
}

// warnUnknownEnvVars prints a warning for each unrecognized DEALDOC_*
// variable. Helps catch typos like DEALDOC_OUTPUTDIR.
func warnUnknownEnvVars(environ []string, w io.Writer) {
	for _, name := range unknownEnvVars(environ) {
		fmt.Fprintf(w, "warning: unknown environment variable %s (typo?)\n", name)
	}
}

// applyEnvConfig overlays set environment values on cfg.
// Precedence: CLI flags > env vars > config file > defaults
// (CLI flags are applied afterwards by each command).
func applyEnvConfig(e *envConfig, cfg *config.Config) {
	setString(&cfg.Output.Dir, e.OutputDir)
	setString(&cfg.Template.Name, e.Template)
	setString(&cfg.Template.DateFormat, e.DateFormat)
	setString(&cfg.Assets.BasePath, e.AssetPath)
	setString(&cfg.Server.Addr, e.Addr)
	setString(&cfg.Log.Level, e.LogLevel)
	setString(&cfg.Log.Format, e.LogFormat)

	if e.ReadTimeout > 0 {
		cfg.Server.ReadTimeout = e.ReadTimeout
	}
	if e.WriteTimeout > 0 {
		cfg.Server.WriteTimeout = e.WriteTimeout
	}
	if e.Workers > 0 {
		cfg.Workers = e.Workers
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
