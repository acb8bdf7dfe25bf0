package main

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-dealdoc/internal/hints"
	"github.com/alnah/go-dealdoc/internal/server"
)

// runServe serves agreements over HTTP until interrupted.
func runServe(ctx context.Context, args []string, env *Environment) error {
	flags, err := parseServeFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	applyTemplateFlags(flags.template, cfg)
	setString(&cfg.Server.Addr, flags.addr)
	if err := cfg.Validate(); err != nil {
		return err
	}

	logger, err := newLogger(cfg.Log, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := newGenerator(cfg, env.Now, logger)
	if err != nil {
		return err
	}

	srv := server.New(gen, server.Config{
		Addr:         cfg.Server.Addr,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}, logger)

	ctx, stop := notifyContext(ctx)
	defer stop()

	if !flags.common.quiet {
		fmt.Fprintf(env.Stdout, "Serving facility agreements on %s\n", cfg.Server.Addr)
	}

	if err := srv.ListenAndServe(ctx); err != nil {
		if errors.Is(err, server.ErrListen) {
			return fmt.Errorf("%w%s", err, hints.ForListen(cfg.Server.Addr))
		}
		return err
	}
	return nil
}
