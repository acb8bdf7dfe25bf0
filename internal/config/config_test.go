package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	t.Parallel()

	cfg := DefaultConfig()

	if cfg.Output.Dir != "" {
		t.Errorf("Output.Dir = %q, want empty", cfg.Output.Dir)
	}
	if cfg.Assets.BasePath != "" {
		t.Errorf("Assets.BasePath = %q, want empty", cfg.Assets.BasePath)
	}
	if cfg.Server.Addr != DefaultAddr {
		t.Errorf("Server.Addr = %q, want %q", cfg.Server.Addr, DefaultAddr)
	}
	if cfg.Server.ReadTimeout != DefaultReadTimeout || cfg.Server.WriteTimeout != DefaultWriteTimeout {
		t.Errorf("Server timeouts = %v/%v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
	}
	if cfg.Log.Format != LogFormatJSON {
		t.Errorf("Log.Format = %q, want json", cfg.Log.Format)
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestValidateFieldLength(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		max     int
		wantErr bool
	}{
		{name: "empty value is valid", value: "", max: 10},
		{name: "value at limit is valid", value: "1234567890", max: 10},
		{name: "value over limit returns error", value: "12345678901", max: 10, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateFieldLength("test.field", tt.value, tt.max)
			if tt.wantErr {
				if !errors.Is(err, ErrFieldTooLong) {
					t.Errorf("error = %v, want ErrFieldTooLong", err)
				}
				if err != nil && !strings.Contains(err.Error(), "test.field") {
					t.Errorf("error %q does not name the field", err)
				}
				return
			}
			if err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr error
	}{
		{name: "defaults", mutate: func(*Config) {}},
		{name: "console debug", mutate: func(c *Config) { c.Log = LogConfig{Level: "DEBUG", Format: "console"} }},
		{name: "explicit workers", mutate: func(c *Config) { c.Workers = 8 }},
		{name: "negative workers", mutate: func(c *Config) { c.Workers = -1 }, wantErr: ErrInvalidValue},
		{name: "too many workers", mutate: func(c *Config) { c.Workers = MaxWorkers + 1 }, wantErr: ErrInvalidValue},
		{name: "unknown log level", mutate: func(c *Config) { c.Log.Level = "trace" }, wantErr: ErrInvalidValue},
		{name: "unknown log format", mutate: func(c *Config) { c.Log.Format = "xml" }, wantErr: ErrInvalidValue},
		{name: "negative read timeout", mutate: func(c *Config) { c.Server.ReadTimeout = -time.Second }, wantErr: ErrInvalidValue},
		{name: "negative write timeout", mutate: func(c *Config) { c.Server.WriteTimeout = -time.Second }, wantErr: ErrInvalidValue},
		{name: "long template name", mutate: func(c *Config) { c.Template.Name = strings.Repeat("a", MaxTemplateLength+1) }, wantErr: ErrFieldTooLong},
		{name: "long date format", mutate: func(c *Config) { c.Template.DateFormat = strings.Repeat("D", MaxDateFormatLength+1) }, wantErr: ErrFieldTooLong},
		{name: "long output dir", mutate: func(c *Config) { c.Output.Dir = strings.Repeat("d", MaxPathLength+1) }, wantErr: ErrFieldTooLong},
		{name: "long addr", mutate: func(c *Config) { c.Server.Addr = strings.Repeat("h", MaxAddrLength+1) }, wantErr: ErrFieldTooLong},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.mutate(cfg)
			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Validate() error = %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Parallel()

	write := func(t *testing.T, content string) string {
		t.Helper()
		path := filepath.Join(t.TempDir(), "dealdoc.yaml")
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
		return path
	}

	t.Run("full file", func(t *testing.T) {
		t.Parallel()

		path := write(t, `
output:
  dir: ./agreements
template:
  name: facility-agreement
  dateFormat: iso
assets:
  basePath: /srv/dealdoc
server:
  addr: "127.0.0.1:9090"
  readTimeout: 5s
  writeTimeout: 1m
log:
  level: debug
  format: console
workers: 4
`)
		cfg, err := LoadConfig(path)
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Output.Dir != "./agreements" {
			t.Errorf("Output.Dir = %q", cfg.Output.Dir)
		}
		if cfg.Template.Name != "facility-agreement" || cfg.Template.DateFormat != "iso" {
			t.Errorf("Template = %+v", cfg.Template)
		}
		if cfg.Assets.BasePath != "/srv/dealdoc" {
			t.Errorf("Assets.BasePath = %q", cfg.Assets.BasePath)
		}
		if cfg.Server.Addr != "127.0.0.1:9090" {
			t.Errorf("Server.Addr = %q", cfg.Server.Addr)
		}
		if cfg.Server.ReadTimeout != 5*time.Second || cfg.Server.WriteTimeout != time.Minute {
			t.Errorf("Server timeouts = %v/%v", cfg.Server.ReadTimeout, cfg.Server.WriteTimeout)
		}
		if cfg.Log.Level != "debug" || cfg.Log.Format != "console" {
			t.Errorf("Log = %+v", cfg.Log)
		}
		if cfg.Workers != 4 {
			t.Errorf("Workers = %d", cfg.Workers)
		}
	})

	t.Run("partial file keeps defaults", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfig(write(t, "workers: 2\n"))
		if err != nil {
			t.Fatalf("LoadConfig() error = %v", err)
		}
		if cfg.Server.Addr != DefaultAddr {
			t.Errorf("Server.Addr = %q, want default", cfg.Server.Addr)
		}
		if cfg.Workers != 2 {
			t.Errorf("Workers = %d", cfg.Workers)
		}
	})

	t.Run("unknown field rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(write(t, "output:\n  directory: x\n"))
		if !errors.Is(err, ErrConfigParse) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigParse", err)
		}
	})

	t.Run("invalid value rejected", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(write(t, "log:\n  format: xml\n"))
		if !errors.Is(err, ErrInvalidValue) {
			t.Errorf("LoadConfig() error = %v, want ErrInvalidValue", err)
		}
	})

	t.Run("missing file path", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig(filepath.Join(t.TempDir(), "absent.yaml"))
		if !errors.Is(err, ErrConfigNotFound) {
			t.Errorf("LoadConfig() error = %v, want ErrConfigNotFound", err)
		}
	})

	t.Run("unknown name lists tried paths", func(t *testing.T) {
		t.Parallel()

		_, err := LoadConfig("dealdoc-test-config-that-does-not-exist")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("LoadConfig() error = %v, want ErrConfigNotFound", err)
		}
		if !strings.Contains(err.Error(), "dealdoc-test-config-that-does-not-exist.yaml") {
			t.Errorf("error %q does not list tried paths", err)
		}
	})

	t.Run("empty name", func(t *testing.T) {
		t.Parallel()

		if _, err := LoadConfig(""); !errors.Is(err, ErrEmptyConfigName) {
			t.Errorf("LoadConfig() error = %v, want ErrEmptyConfigName", err)
		}
	})
}
