package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-dealdoc"
	"github.com/alnah/go-dealdoc/internal/dateutil"
	"github.com/alnah/go-dealdoc/internal/hints"
	"github.com/alnah/go-dealdoc/internal/yamlutil"
)

// Sentinel errors for the generate command.
var (
	ErrNoDeals            = errors.New("no deals specified")
	ErrReadDealFile       = errors.New("failed to read deal file")
	ErrParseDealFile      = errors.New("failed to parse deal file")
	ErrInvalidWorkerCount = errors.New("invalid worker count")
	ErrBatchFailed        = errors.New("one or more agreements failed")
)

// dealJob is one deal to generate, with where it came from.
type dealJob struct {
	Source string // "deals.yaml#2" or "flags"
	Deal   dealdoc.DealInfo
}

// runGenerate orchestrates batch generation.
func runGenerate(ctx context.Context, args []string, env *Environment) error {
	flags, positional, err := parseGenerateFlags(args, env.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}
	if flags.workers < 0 {
		return fmt.Errorf("%w: %d (must be >= 0)", ErrInvalidWorkerCount, flags.workers)
	}

	cfg, err := loadSettings(flags.common, env)
	if err != nil {
		return err
	}
	applyTemplateFlags(flags.template, cfg)
	setString(&cfg.Output.Dir, flags.output)
	if flags.workers > 0 {
		cfg.Workers = flags.workers
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	now := env.Now
	if flags.date != "" {
		day, err := dateutil.ParseDay(flags.date, time.Local)
		if err != nil {
			return err
		}
		now = func() time.Time { return day }
	}

	logger, err := newLogger(cfg.Log, flags.common, env.Stderr)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	gen, err := newGenerator(cfg, now, logger)
	if err != nil {
		return err
	}

	jobs, err := collectJobs(positional, flags.deal)
	if err != nil {
		return err
	}

	ctx, stop := notifyContext(ctx)
	defer stop()

	workers := dealdoc.ResolveWorkers(cfg.Workers)
	logger.Debug("generating agreements", zap.Int("deals", len(jobs)), zap.Int("workers", workers))

	out := dealdoc.FileDelivery{Dir: cfg.Output.Dir}
	results := generateBatch(ctx, gen, jobs, out, workers)

	failed := printResults(results, flags.common.quiet, flags.common.verbose, env)
	if failed > 0 {
		return fmt.Errorf("%w: %d of %d", ErrBatchFailed, failed, len(results))
	}
	return nil
}

// collectJobs reads every deal file and appends the flag-defined deal.
func collectJobs(paths []string, df dealFlags) ([]dealJob, error) {
	var jobs []dealJob

	for _, path := range paths {
		data, err := os.ReadFile(path) // #nosec G304 -- user-provided deal file
		if err != nil {
			return nil, fmt.Errorf("%w: %w", ErrReadDealFile, err)
		}

		deals, err := yamlutil.DecodeAll[dealdoc.DealInfo](data, true)
		if err != nil {
			return nil, fmt.Errorf("%w: %s: %v%s", ErrParseDealFile, path, err, hints.ForDealFile())
		}

		for i, d := range deals {
			source := path
			if len(deals) > 1 {
				source = fmt.Sprintf("%s#%d", path, i+1)
			}
			jobs = append(jobs, dealJob{Source: source, Deal: d})
		}
	}

	if df.set() {
		jobs = append(jobs, dealJob{
			Source: "flags",
			Deal: dealdoc.DealInfo{
				BorrowerName:   df.borrower,
				FacilityAmount: df.amount,
				DealType:       df.dealType,
				Jurisdiction:   df.jurisdiction,
			},
		})
	}

	if len(jobs) == 0 {
		return nil, fmt.Errorf("%w: pass deal files or --borrower", ErrNoDeals)
	}
	return jobs, nil
}
