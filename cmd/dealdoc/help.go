package main

import (
	"fmt"
	"io"
)

// printUsage prints the main usage message.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealdoc <command> [flags] [args]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  generate     Generate facility agreements (.docx)")
	fmt.Fprintln(w, "  serve        Serve agreements over HTTP")
	fmt.Fprintln(w, "  doctor       Check configuration and environment")
	fmt.Fprintln(w, "  completion   Generate shell completion script")
	fmt.Fprintln(w, "  version      Show version information")
	fmt.Fprintln(w, "  help         Show help for a command")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Run 'dealdoc help <command>' for details on a specific command.")
}

// printGenerateUsage prints usage for the generate command.
func printGenerateUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealdoc generate [deal files...] [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate one facility agreement per deal.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Arguments:")
	fmt.Fprintln(w, "  deal files   YAML or JSON files; YAML may hold several --- documents")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Deal (instead of files):")
	fmt.Fprintln(w, "      --borrower <s>        Borrower name")
	fmt.Fprintln(w, "      --amount <s>          Facility amount, e.g. \"USD 25,000,000\"")
	fmt.Fprintln(w, "      --deal-type <s>       Deal type, e.g. \"Term Loan\"")
	fmt.Fprintln(w, "      --jurisdiction <s>    Governing law")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "  -o, --output <dir>        Output directory")
	fmt.Fprintln(w, "  -w, --workers <n>         Parallel workers (0 = auto)")
	fmt.Fprintln(w, "      --date <YYYY-MM-DD>   Agreement date (default: today)")
	fmt.Fprintln(w)
	printTemplateUsage(w)
	printCommonUsage(w)
}

// printServeUsage prints usage for the serve command.
func printServeUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealdoc serve [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Serve agreements over HTTP until interrupted.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Endpoints:")
	fmt.Fprintln(w, "  POST /v1/facility-agreements   JSON deal in, .docx attachment out")
	fmt.Fprintln(w, "  GET  /v1/templates             Available templates")
	fmt.Fprintln(w, "  GET  /healthz                  Liveness probe")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Server:")
	fmt.Fprintln(w, "  -a, --addr <host:port>    Listen address (default :8080)")
	fmt.Fprintln(w)
	printTemplateUsage(w)
	printCommonUsage(w)
}

// printDoctorUsage prints usage for the doctor command.
func printDoctorUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealdoc doctor [flags]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Check that config, template, output directory, and environment are usable.")
	fmt.Fprintln(w, "Exits 1 when an error is found; warnings alone exit 0.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Output:")
	fmt.Fprintln(w, "      --json                Print results as JSON")
	fmt.Fprintln(w)
	printTemplateUsage(w)
	printCommonUsage(w)
}

func printTemplateUsage(w io.Writer) {
	fmt.Fprintln(w, "Template:")
	fmt.Fprintln(w, "      --template <name>     Template name (default: facility-agreement)")
	fmt.Fprintln(w, "      --asset-path <dir>    Custom asset directory")
	fmt.Fprintln(w, "      --date-format <s>     Date format: preset or pattern")
	fmt.Fprintln(w, "                            Tokens: YYYY, YY, MMMM, MMM, MM, M, DD, D")
	fmt.Fprintln(w, "                            Presets (case-insensitive): iso, european, us, long")
	fmt.Fprintln(w, "                            Use [text] to escape literals: [Dated] MMMM D")
	fmt.Fprintln(w)
}

func printCommonUsage(w io.Writer) {
	fmt.Fprintln(w, "Common:")
	fmt.Fprintln(w, "  -c, --config <name>       Config file name or path")
	fmt.Fprintln(w, "      --log-format <s>      Log format: json, console")
	fmt.Fprintln(w, "  -q, --quiet               Only show errors")
	fmt.Fprintln(w, "  -v, --verbose             Show sizes, timing, and debug logs")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DEALDOC_CONFIG, DEALDOC_OUTPUT_DIR, DEALDOC_TEMPLATE, DEALDOC_DATE_FORMAT,")
	fmt.Fprintln(w, "  DEALDOC_ASSET_PATH, DEALDOC_SERVER_ADDR, DEALDOC_SERVER_READ_TIMEOUT,")
	fmt.Fprintln(w, "  DEALDOC_SERVER_WRITE_TIMEOUT, DEALDOC_LOG_LEVEL, DEALDOC_LOG_FORMAT,")
	fmt.Fprintln(w, "  DEALDOC_WORKERS, DEALDOC_CONTAINER")
}

// runHelp prints help for a specific command.
func runHelp(args []string, env *Environment) {
	if len(args) == 0 {
		printUsage(env.Stdout)
		return
	}

	switch args[0] {
	case "generate":
		printGenerateUsage(env.Stdout)
	case "serve":
		printServeUsage(env.Stdout)
	case "doctor":
		printDoctorUsage(env.Stdout)
	case "completion":
		printCompletionUsage(env.Stdout)
	case "version":
		fmt.Fprintln(env.Stdout, "Usage: dealdoc version")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show version information.")
	case "help":
		fmt.Fprintln(env.Stdout, "Usage: dealdoc help [command]")
		fmt.Fprintln(env.Stdout)
		fmt.Fprintln(env.Stdout, "Show help for a command.")
	default:
		fmt.Fprintf(env.Stderr, "Unknown command: %s\n", args[0])
		printUsage(env.Stderr)
	}
}
