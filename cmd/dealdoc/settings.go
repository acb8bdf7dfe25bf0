package main

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/alnah/go-dealdoc"
	"github.com/alnah/go-dealdoc/internal/assets"
	"github.com/alnah/go-dealdoc/internal/config"
	"github.com/alnah/go-dealdoc/internal/hints"
)

// loadSettings resolves configuration from file and environment.
// The config file comes from --config, else DEALDOC_CONFIG, else defaults.
func loadSettings(c commonFlags, env *Environment) (*config.Config, error) {
	environ := env.Environ()
	warnUnknownEnvVars(environ, env.Stderr)

	envCfg, err := loadEnvConfig(environ)
	if err != nil {
		return nil, err
	}

	name := c.config
	if name == "" {
		name = envCfg.ConfigPath
	}

	cfg := config.DefaultConfig()
	if name != "" {
		cfg, err = config.LoadConfig(name)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w%s", err, configHint(err))
		}
	}

	applyEnvConfig(envCfg, cfg)
	if c.logFormat != "" {
		cfg.Log.Format = c.logFormat
	}
	return cfg, nil
}

// applyTemplateFlags overlays template flags on cfg.
func applyTemplateFlags(f templateFlags, cfg *config.Config) {
	setString(&cfg.Template.Name, f.name)
	setString(&cfg.Assets.BasePath, f.assetPath)
	setString(&cfg.Template.DateFormat, f.dateFormat)
}

// configHint extracts searched paths from a not-found error.
func configHint(err error) string {
	if !errors.Is(err, config.ErrConfigNotFound) {
		return ""
	}
	msg := err.Error()
	i := strings.Index(msg, "tried ")
	if i < 0 {
		return hints.ForConfigNotFound(nil)
	}
	return hints.ForConfigNotFound(strings.Split(msg[i+len("tried "):], ", "))
}

// newLogger builds the CLI logger writing to w. Verbose forces debug and
// quiet forces error, otherwise cfg.Level applies.
func newLogger(cfg config.LogConfig, c commonFlags, w io.Writer) (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if cfg.Level != "" {
		if err := level.UnmarshalText([]byte(strings.ToLower(cfg.Level))); err != nil {
			return nil, fmt.Errorf("%w: log.level: %v", config.ErrInvalidValue, err)
		}
	}
	switch {
	case c.verbose:
		level = zapcore.DebugLevel
	case c.quiet:
		level = zapcore.ErrorLevel
	}

	var encoder zapcore.Encoder
	if strings.ToLower(cfg.Format) == config.LogFormatConsole {
		encoder = zapcore.NewConsoleEncoder(zap.NewDevelopmentEncoderConfig())
	} else {
		encoder = zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	}

	core := zapcore.NewCore(encoder, zapcore.Lock(zapcore.AddSync(w)), level)
	return zap.New(core), nil
}

// newGenerator builds a generator from resolved settings.
func newGenerator(cfg *config.Config, now func() time.Time, logger *zap.Logger) (*dealdoc.Generator, error) {
	opts := []dealdoc.Option{
		dealdoc.WithClock(now),
		dealdoc.WithLogger(logger),
		dealdoc.WithAssetPath(cfg.Assets.BasePath),
		dealdoc.WithDateFormat(cfg.Template.DateFormat),
	}
	if cfg.Template.Name != "" {
		opts = append(opts, dealdoc.WithTemplate(cfg.Template.Name))
	}

	gen, err := dealdoc.NewGenerator(opts...)
	if err != nil {
		return nil, fmt.Errorf("%w%s", err, generatorHint(err, cfg.Assets.BasePath))
	}
	return gen, nil
}

func generatorHint(err error, assetPath string) string {
	switch {
	case errors.Is(err, dealdoc.ErrInvalidAssetPath):
		return hints.ForAssetPath()
	case errors.Is(err, dealdoc.ErrTemplateNotFound):
		resolver, rerr := assets.NewResolver(assetPath)
		if rerr != nil {
			return ""
		}
		names, _ := resolver.Templates()
		return hints.ForTemplateNotFound(names)
	}
	return ""
}
