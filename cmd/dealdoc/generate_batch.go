package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/alnah/go-dealdoc"
	"github.com/alnah/go-dealdoc/internal/hints"
)

// ErrDuplicateOutput marks a deal whose filename an earlier deal in the
// same batch already claimed.
var ErrDuplicateOutput = errors.New("output filename already used in this batch")

// agreementGenerator is the part of *dealdoc.Generator the batch needs.
type agreementGenerator interface {
	GenerateFacilityAgreement(ctx context.Context, deal dealdoc.DealInfo, d dealdoc.Deliverer) error
}

// Compile-time interface implementation check.
var _ agreementGenerator = (*dealdoc.Generator)(nil)

// GenerationResult holds the outcome of a single deal.
type GenerationResult struct {
	Source     string
	OutputPath string
	Size       int
	Err        error
	Duration   time.Duration
}

// generateBatch runs up to workers generations at once. One failure does
// not stop the others; results keep job order.
func generateBatch(ctx context.Context, gen agreementGenerator, jobs []dealJob, out dealdoc.FileDelivery, workers int) []GenerationResult {
	if len(jobs) == 0 {
		return nil
	}

	results := make([]GenerationResult, len(jobs))
	claimed := make(map[string]string, len(jobs))

	var g errgroup.Group
	g.SetLimit(max(workers, 1))

	for i, job := range jobs {
		name := dealdoc.OutputFilename(job.Deal.BorrowerName)
		// Case-insensitive filesystems map both names to one file.
		key := strings.ToLower(name)
		if first, dup := claimed[key]; dup {
			results[i] = GenerationResult{
				Source: job.Source,
				Err:    fmt.Errorf("%w: %s (first used by %s)", ErrDuplicateOutput, name, first),
			}
			continue
		}
		claimed[key] = job.Source

		g.Go(func() error {
			results[i] = generateOne(ctx, gen, job, out)
			return nil
		})
	}

	_ = g.Wait()
	return results
}

// generateOne generates and writes a single agreement.
func generateOne(ctx context.Context, gen agreementGenerator, job dealJob, out dealdoc.FileDelivery) GenerationResult {
	start := time.Now()
	result := GenerationResult{Source: job.Source}

	if err := ctx.Err(); err != nil {
		result.Err = err
		return result
	}

	d := dealdoc.DelivererFunc(func(ctx context.Context, doc *dealdoc.Document) error {
		if err := out.Deliver(ctx, doc); err != nil {
			return err
		}
		result.OutputPath = out.Path(doc)
		result.Size = len(doc.Data)
		return nil
	})

	result.Err = gen.GenerateFacilityAgreement(ctx, job.Deal, d)
	result.Duration = time.Since(start)
	return result
}

// ResultSummary holds the count of succeeded and failed generations.
type ResultSummary struct {
	Succeeded int
	Failed    int
	Bytes     uint64
}

// countResults tallies succeeded and failed generations.
func countResults(results []GenerationResult) ResultSummary {
	var summary ResultSummary
	for _, r := range results {
		if r.Err != nil {
			summary.Failed++
			continue
		}
		summary.Succeeded++
		summary.Bytes += uint64(r.Size)
	}
	return summary
}

// printResults outputs per-deal lines and a summary. Returns the number of
// failures.
func printResults(results []GenerationResult, quiet, verbose bool, env *Environment) int {
	summary := countResults(results)

	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(env.Stderr, "FAILED %s: %v%s\n", r.Source, r.Err, failureHint(r.Err))
			continue
		}

		if quiet {
			continue
		}

		if verbose {
			fmt.Fprintf(env.Stdout, "%s -> %s (%s, %v)\n",
				r.Source, r.OutputPath, humanize.Bytes(uint64(r.Size)), r.Duration.Round(time.Millisecond))
		} else {
			fmt.Fprintf(env.Stdout, "Created %s\n", r.OutputPath)
		}
	}

	if !quiet && len(results) > 1 {
		p := message.NewPrinter(localeTag(env.Environ()))
		p.Fprintf(env.Stdout, "\n%d succeeded, %d failed (%s)\n",
			summary.Succeeded, summary.Failed, humanize.Bytes(summary.Bytes))
	}

	return summary.Failed
}

// localeTag picks the number-formatting locale from LC_ALL, LC_NUMERIC or
// LANG, e.g. "de_DE.UTF-8". Falls back to English.
func localeTag(environ []string) language.Tag {
	vars := make(map[string]string, 3)
	for _, kv := range environ {
		k, v, ok := strings.Cut(kv, "=")
		if ok && (k == "LC_ALL" || k == "LC_NUMERIC" || k == "LANG") {
			vars[k] = v
		}
	}

	for _, key := range []string{"LC_ALL", "LC_NUMERIC", "LANG"} {
		v := vars[key]
		if v == "" || v == "C" || v == "POSIX" {
			continue
		}
		v, _, _ = strings.Cut(v, ".")
		v, _, _ = strings.Cut(v, "@")
		tag, err := language.Parse(strings.ReplaceAll(v, "_", "-"))
		if err == nil {
			return tag
		}
	}
	return language.English
}

// failureHint suggests a fix for an unwritable output directory.
func failureHint(err error) string {
	if errors.Is(err, os.ErrPermission) || errors.Is(err, os.ErrNotExist) {
		return hints.ForOutputDirectory()
	}
	return ""
}
