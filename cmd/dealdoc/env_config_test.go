package main

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/alnah/go-dealdoc/internal/config"
)

func TestLoadEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("reads every variable", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadEnvConfig([]string{
			"DEALDOC_CONFIG=prod",
			"DEALDOC_OUTPUT_DIR=/srv/out",
			"DEALDOC_TEMPLATE=short-form",
			"DEALDOC_DATE_FORMAT=iso",
			"DEALDOC_ASSET_PATH=/srv/assets",
			"DEALDOC_SERVER_ADDR=:9090",
			"DEALDOC_SERVER_READ_TIMEOUT=5s",
			"DEALDOC_SERVER_WRITE_TIMEOUT=1m",
			"DEALDOC_LOG_LEVEL=debug",
			"DEALDOC_LOG_FORMAT=console",
			"DEALDOC_WORKERS=3",
			"PATH=/usr/bin",
		})
		if err != nil {
			t.Fatalf("loadEnvConfig() error = %v", err)
		}

		want := envConfig{
			ConfigPath:   "prod",
			OutputDir:    "/srv/out",
			Template:     "short-form",
			DateFormat:   "iso",
			AssetPath:    "/srv/assets",
			Addr:         ":9090",
			ReadTimeout:  5 * time.Second,
			WriteTimeout: time.Minute,
			LogLevel:     "debug",
			LogFormat:    "console",
			Workers:      3,
		}
		if *cfg != want {
			t.Errorf("loadEnvConfig() = %+v, want %+v", *cfg, want)
		}
	})

	t.Run("empty environment", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadEnvConfig(nil)
		if err != nil {
			t.Fatalf("loadEnvConfig() error = %v", err)
		}
		if *cfg != (envConfig{}) {
			t.Errorf("loadEnvConfig(nil) = %+v, want zero", *cfg)
		}
	})

	t.Run("value containing equals sign", func(t *testing.T) {
		t.Parallel()

		cfg, err := loadEnvConfig([]string{"DEALDOC_OUTPUT_DIR=/tmp/a=b"})
		if err != nil {
			t.Fatalf("loadEnvConfig() error = %v", err)
		}
		if cfg.OutputDir != "/tmp/a=b" {
			t.Errorf("OutputDir = %q", cfg.OutputDir)
		}
	})

	for _, bad := range []string{"DEALDOC_WORKERS=many", "DEALDOC_SERVER_READ_TIMEOUT=soon"} {
		t.Run("invalid "+bad, func(t *testing.T) {
			t.Parallel()

			if _, err := loadEnvConfig([]string{bad}); !errors.Is(err, ErrInvalidEnv) {
				t.Errorf("loadEnvConfig(%q) error = %v, want ErrInvalidEnv", bad, err)
			}
		})
	}
}

func TestWarnUnknownEnvVars(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	warnUnknownEnvVars([]string{
		"DEALDOC_WORKERS=2",
		"DEALDOC_OUTPUTDIR=x",
		"DEALDOC_AMOUNT=y",
		"HOME=/root",
	}, &buf)

	out := buf.String()
	if strings.Count(out, "warning:") != 2 {
		t.Errorf("want 2 warnings, got:\n%s", out)
	}
	if strings.Index(out, "DEALDOC_AMOUNT") > strings.Index(out, "DEALDOC_OUTPUTDIR") {
		t.Error("warnings are not sorted")
	}
	if strings.Contains(out, "DEALDOC_WORKERS") || strings.Contains(out, "HOME") {
		t.Errorf("warned about a known variable:\n%s", out)
	}
}

func TestApplyEnvConfig(t *testing.T) {
	t.Parallel()

	t.Run("env overrides file values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "from-file"
		cfg.Workers = 2

		applyEnvConfig(&envConfig{OutputDir: "from-env", Workers: 8, Addr: ":9999", ReadTimeout: time.Second}, cfg)

		if cfg.Output.Dir != "from-env" {
			t.Errorf("Output.Dir = %q", cfg.Output.Dir)
		}
		if cfg.Workers != 8 {
			t.Errorf("Workers = %d", cfg.Workers)
		}
		if cfg.Server.Addr != ":9999" || cfg.Server.ReadTimeout != time.Second {
			t.Errorf("Server = %+v", cfg.Server)
		}
	})

	t.Run("unset env keeps file values", func(t *testing.T) {
		t.Parallel()

		cfg := config.DefaultConfig()
		cfg.Output.Dir = "from-file"
		cfg.Template.Name = "short-form"

		applyEnvConfig(&envConfig{}, cfg)

		if cfg.Output.Dir != "from-file" || cfg.Template.Name != "short-form" {
			t.Errorf("config changed: %+v", cfg)
		}
		if cfg.Server.WriteTimeout != config.DefaultWriteTimeout {
			t.Errorf("WriteTimeout = %v", cfg.Server.WriteTimeout)
		}
	})
}
