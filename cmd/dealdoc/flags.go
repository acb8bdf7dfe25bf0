package main

import (
	"errors"
	"fmt"
	"io"

	flag "github.com/spf13/pflag"
)

// commonFlags holds flags shared across commands.
type commonFlags struct {
	config    string
	quiet     bool
	verbose   bool
	logFormat string
}

// templateFlags select and locate the agreement skeleton.
type templateFlags struct {
	name       string
	assetPath  string
	dateFormat string
}

// dealFlags describe a single deal given on the command line.
type dealFlags struct {
	borrower     string
	amount       string
	dealType     string
	jurisdiction string
}

// set reports whether any deal field was given.
func (d dealFlags) set() bool {
	return d.borrower != "" || d.amount != "" || d.dealType != "" || d.jurisdiction != ""
}

// generateFlags holds all flags for the generate command.
type generateFlags struct {
	common   commonFlags
	template templateFlags
	deal     dealFlags
	output   string
	workers  int
	date     string
}

// serveFlags holds all flags for the serve command.
type serveFlags struct {
	common   commonFlags
	template templateFlags
	addr     string
}

// addCommonFlags adds common flags to a FlagSet.
func addCommonFlags(fs *flag.FlagSet, f *commonFlags) {
	fs.StringVarP(&f.config, "config", "c", "", "config file name or path")
	fs.BoolVarP(&f.quiet, "quiet", "q", false, "only show errors")
	fs.BoolVarP(&f.verbose, "verbose", "v", false, "show sizes, timing, and debug logs")
	fs.StringVar(&f.logFormat, "log-format", "", "log format: json, console")
}

// addTemplateFlags adds skeleton selection flags to a FlagSet.
func addTemplateFlags(fs *flag.FlagSet, f *templateFlags) {
	fs.StringVar(&f.name, "template", "", "agreement template name")
	fs.StringVar(&f.assetPath, "asset-path", "", "custom asset directory (templates/{name}.md)")
	fs.StringVar(&f.dateFormat, "date-format", "", "date format preset or pattern")
}

// addDealFlags adds single-deal flags to a FlagSet.
func addDealFlags(fs *flag.FlagSet, f *dealFlags) {
	fs.StringVar(&f.borrower, "borrower", "", "borrower name")
	fs.StringVar(&f.amount, "amount", "", "facility amount, e.g. \"USD 25,000,000\"")
	fs.StringVar(&f.dealType, "deal-type", "", "deal type, e.g. \"Term Loan\"")
	fs.StringVar(&f.jurisdiction, "jurisdiction", "", "governing law")
}

// newGenerateFlagSet registers every generate flag on a new FlagSet.
func newGenerateFlagSet(f *generateFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)

	fs.StringVarP(&f.output, "output", "o", "", "output directory")
	fs.IntVarP(&f.workers, "workers", "w", 0, "parallel workers (0 = auto)")
	fs.StringVar(&f.date, "date", "", "agreement date YYYY-MM-DD (default: today)")

	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.template)
	addDealFlags(fs, &f.deal)
	return fs
}

// newServeFlagSet registers every serve flag on a new FlagSet.
func newServeFlagSet(f *serveFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("serve", flag.ContinueOnError)

	fs.StringVarP(&f.addr, "addr", "a", "", "listen address (default :8080)")

	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.template)
	return fs
}

// parseGenerateFlags parses generate command flags and returns positional args.
// -h and --help print usage and return flag.ErrHelp unwrapped.
func parseGenerateFlags(args []string, usage io.Writer) (*generateFlags, []string, error) {
	f := &generateFlags{}
	fs := newGenerateFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printGenerateUsage(usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, nil, err
		}
		return nil, nil, fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	return f, fs.Args(), nil
}

// parseServeFlags parses serve command flags.
func parseServeFlags(args []string, usage io.Writer) (*serveFlags, error) {
	f := &serveFlags{}
	fs := newServeFlagSet(f)
	fs.SetOutput(usage)
	fs.Usage = func() { printServeUsage(usage) }

	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidFlags, err)
	}
	if fs.NArg() > 0 {
		return nil, fmt.Errorf("%w: unexpected arguments %v", ErrInvalidFlags, fs.Args())
	}
	return f, nil
}
