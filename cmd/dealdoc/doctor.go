package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"

	flag "github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/alnah/go-dealdoc"
	"github.com/alnah/go-dealdoc/internal/assets"
	"github.com/alnah/go-dealdoc/internal/config"
	"github.com/alnah/go-dealdoc/internal/dateutil"
	"github.com/alnah/go-dealdoc/internal/hints"
)

// Doctor status values.
const (
	statusReady    = "ready"
	statusWarnings = "warnings"
	statusErrors   = "errors"
)

// doctorFlags holds flags for the doctor command.
type doctorFlags struct {
	common   commonFlags
	template templateFlags
	json     bool
}

// doctorResult holds all diagnostic information.
type doctorResult struct {
	Status   string       `json:"status"` // "ready", "warnings", "errors"
	Config   configInfo   `json:"config"`
	Template templateInfo `json:"template"`
	Output   outputInfo   `json:"output"`
	Env      envInfo      `json:"environment"`
	Warnings []string     `json:"warnings,omitempty"`
	Errors   []string     `json:"errors,omitempty"`
}

// configInfo describes where settings came from.
type configInfo struct {
	Source string `json:"source"` // config name or "defaults"
	Loaded bool   `json:"loaded"`
}

// templateInfo holds skeleton resolution results.
type templateInfo struct {
	Name       string   `json:"name"`
	Custom     bool     `json:"custom"`
	Parsed     bool     `json:"parsed"`
	Available  []string `json:"available,omitempty"`
	DateFormat string   `json:"date_format,omitempty"`
	SampleDate string   `json:"sample_date,omitempty"`
}

// outputInfo holds output directory checks.
type outputInfo struct {
	Dir      string `json:"dir"`
	Exists   bool   `json:"exists"`
	Writable bool   `json:"writable"`
}

// envInfo holds environment detection results.
type envInfo struct {
	OS            string   `json:"os"`
	Arch          string   `json:"arch"`
	GOMAXPROCS    int      `json:"gomaxprocs"`
	Workers       int      `json:"workers"`
	Container     bool     `json:"container"`
	ContainerHint string   `json:"container_hint,omitempty"`
	CI            bool     `json:"ci"`
	ServerAddr    string   `json:"server_addr"`
	UnknownVars   []string `json:"unknown_vars,omitempty"`
}

// newDoctorFlagSet registers every doctor flag on a new FlagSet.
func newDoctorFlagSet(f *doctorFlags) *flag.FlagSet {
	fs := flag.NewFlagSet("doctor", flag.ContinueOnError)
	fs.BoolVar(&f.json, "json", false, "print results as JSON")
	addCommonFlags(fs, &f.common)
	addTemplateFlags(fs, &f.template)
	return fs
}

// runDoctorCmd executes the doctor command and returns an exit code.
// Exit codes: 0 = OK (including warnings), 1 = errors found.
func runDoctorCmd(args []string, env *Environment) int {
	f := &doctorFlags{}
	fs := newDoctorFlagSet(f)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { printDoctorUsage(env.Stderr) }
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return ExitSuccess
		}
		fmt.Fprintf(env.Stderr, "error: %v: %v\n", ErrInvalidFlags, err)
		return ExitUsage
	}

	result := runDoctor(f, env)

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		_ = enc.Encode(result)
	} else {
		printDoctorResult(env.Stdout, result)
	}

	if result.Status == statusErrors {
		return ExitGeneral
	}
	return ExitSuccess
}

// runDoctor performs all diagnostic checks.
func runDoctor(f *doctorFlags, env *Environment) *doctorResult {
	result := &doctorResult{
		Status: statusReady,
		Env: envInfo{
			OS:         runtime.GOOS,
			Arch:       runtime.GOARCH,
			GOMAXPROCS: runtime.GOMAXPROCS(0),
		},
	}

	cfg := checkConfig(result, f.common, env)
	applyTemplateFlags(f.template, cfg)
	checkTemplate(result, cfg, env)
	checkOutput(result, cfg.Output.Dir)
	checkEnvironment(result, cfg, env.Environ())

	if len(result.Errors) > 0 {
		result.Status = statusErrors
	} else if len(result.Warnings) > 0 {
		result.Status = statusWarnings
	}
	return result
}

// checkConfig loads settings the way generate and serve do. On failure the
// remaining checks run against defaults.
func checkConfig(result *doctorResult, c commonFlags, env *Environment) *config.Config {
	result.Config.Source = "defaults"
	if c.config != "" {
		result.Config.Source = c.config
	} else if name := lookupEnv(env.Environ(), envPrefix+"CONFIG"); name != "" {
		result.Config.Source = name
	}

	silent := *env
	silent.Stderr = io.Discard
	cfg, err := loadSettings(c, &silent)
	if err == nil {
		err = cfg.Validate()
	}
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Config: %v", err))
		return config.DefaultConfig()
	}
	result.Config.Loaded = true
	return cfg
}

// checkTemplate loads and parses the skeleton and renders a sample date.
func checkTemplate(result *doctorResult, cfg *config.Config, env *Environment) {
	result.Template.Name = cfg.Template.Name
	if result.Template.Name == "" {
		result.Template.Name = assets.DefaultTemplateName
	}
	result.Template.Custom = cfg.Assets.BasePath != ""
	result.Template.DateFormat = cfg.Template.DateFormat

	gen, err := newGenerator(cfg, env.Now, zap.NewNop())
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("Template: %v", err))
		return
	}
	result.Template.Parsed = true

	if names, err := gen.Templates(); err == nil {
		result.Template.Available = names
	}
	if f, err := dateutil.Resolve(cfg.Template.DateFormat); err == nil {
		result.Template.SampleDate = f.Format(env.Now())
	}
}

// checkOutput verifies agreements can be written to dir.
func checkOutput(result *doctorResult, dir string) {
	if dir == "" {
		dir = "."
	}
	result.Output.Dir = dir

	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("Output directory %s does not exist yet (created on first run)", dir))
			return
		}
		result.Errors = append(result.Errors, fmt.Sprintf("Output directory: %v", err))
		return
	}
	if !info.IsDir() {
		result.Errors = append(result.Errors, fmt.Sprintf("Output path %s is not a directory", dir))
		return
	}
	result.Output.Exists = true

	probe, err := os.CreateTemp(dir, ".dealdoc-doctor-*")
	if err != nil {
		result.Errors = append(result.Errors,
			fmt.Sprintf("Output directory %s not writable%s", dir, hints.ForOutputDirectory()))
		return
	}
	name := probe.Name()
	_ = probe.Close()
	_ = os.Remove(name)
	result.Output.Writable = true
}

// checkEnvironment detects container and CI environments and env typos.
func checkEnvironment(result *doctorResult, cfg *config.Config, environ []string) {
	result.Env.Workers = dealdoc.ResolveWorkers(cfg.Workers)
	result.Env.ServerAddr = cfg.Server.Addr
	result.Env.Container, result.Env.ContainerHint = isContainer(environ)

	for _, v := range []string{"CI", "GITHUB_ACTIONS", "GITLAB_CI", "JENKINS_URL", "CIRCLECI"} {
		if lookupEnv(environ, v) != "" {
			result.Env.CI = true
			break
		}
	}

	if result.Env.Container && isLoopback(cfg.Server.Addr) {
		result.Warnings = append(result.Warnings,
			fmt.Sprintf("Container detected but server binds %s; bind 0.0.0.0 to accept outside connections", cfg.Server.Addr))
	}

	result.Env.UnknownVars = unknownEnvVars(environ)
	for _, name := range result.Env.UnknownVars {
		result.Warnings = append(result.Warnings, fmt.Sprintf("Unknown environment variable %s (typo?)", name))
	}
}

// isContainer detects if running in a container environment.
// Returns (isContainer, hint) where hint indicates which signal was detected.
func isContainer(environ []string) (bool, string) {
	if lookupEnv(environ, envPrefix+"CONTAINER") == "1" {
		return true, envPrefix + "CONTAINER=1"
	}
	if hints.IsInContainer() {
		return true, "/.dockerenv"
	}
	if v := lookupEnv(environ, "container"); v != "" {
		return true, "container=" + v
	}
	if lookupEnv(environ, "KUBERNETES_SERVICE_HOST") != "" {
		return true, "KUBERNETES_SERVICE_HOST"
	}
	return false, ""
}

func isLoopback(addr string) bool {
	return strings.HasPrefix(addr, "127.") || strings.HasPrefix(addr, "localhost:") || strings.HasPrefix(addr, "[::1]")
}

// lookupEnv returns the last value of key in environ.
func lookupEnv(environ []string, key string) string {
	var value string
	for _, kv := range environ {
		if k, v, ok := strings.Cut(kv, "="); ok && k == key {
			value = v
		}
	}
	return value
}

// printDoctorResult outputs human-readable diagnostic results.
func printDoctorResult(w io.Writer, r *doctorResult) {
	fmt.Fprintln(w, "dealdoc doctor")
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Config")
	if r.Config.Loaded {
		fmt.Fprintf(w, "  [OK] Source: %s\n", r.Config.Source)
	} else {
		fmt.Fprintf(w, "  [ERROR] Source: %s\n", r.Config.Source)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Template")
	if r.Template.Parsed {
		origin := "embedded"
		if r.Template.Custom {
			origin = "custom asset path"
		}
		fmt.Fprintf(w, "  [OK] %s (%s)\n", r.Template.Name, origin)
		if len(r.Template.Available) > 0 {
			fmt.Fprintf(w, "  [OK] Available: %s\n", strings.Join(r.Template.Available, ", "))
		}
		if r.Template.SampleDate != "" {
			fmt.Fprintf(w, "  [OK] Date: %s\n", r.Template.SampleDate)
		}
	} else {
		fmt.Fprintf(w, "  [ERROR] %s not usable\n", r.Template.Name)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Output")
	switch {
	case r.Output.Writable:
		fmt.Fprintf(w, "  [OK] %s: writable\n", r.Output.Dir)
	case !r.Output.Exists:
		fmt.Fprintf(w, "  [WARN] %s: missing\n", r.Output.Dir)
	default:
		fmt.Fprintf(w, "  [ERROR] %s: not writable\n", r.Output.Dir)
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Environment")
	fmt.Fprintf(w, "  [OK] Platform: %s/%s\n", r.Env.OS, r.Env.Arch)
	fmt.Fprintf(w, "  [OK] Workers: %d (GOMAXPROCS %d)\n", r.Env.Workers, r.Env.GOMAXPROCS)
	fmt.Fprintf(w, "  [OK] Server address: %s\n", r.Env.ServerAddr)
	if r.Env.Container {
		fmt.Fprintf(w, "  [OK] Container: detected (%s)\n", r.Env.ContainerHint)
	}
	if r.Env.CI {
		fmt.Fprintln(w, "  [OK] CI: detected")
	}
	fmt.Fprintln(w)

	if len(r.Warnings) > 0 {
		fmt.Fprintln(w, "Warnings:")
		for _, warn := range r.Warnings {
			fmt.Fprintf(w, "  [WARN] %s\n", warn)
		}
		fmt.Fprintln(w)
	}

	if len(r.Errors) > 0 {
		fmt.Fprintln(w, "Errors:")
		for _, err := range r.Errors {
			fmt.Fprintf(w, "  [ERROR] %s\n", err)
		}
		fmt.Fprintln(w)
	}

	switch r.Status {
	case statusReady:
		fmt.Fprintln(w, "Status: Ready to generate")
	case statusWarnings:
		fmt.Fprintln(w, "Status: Ready with warnings")
	case statusErrors:
		fmt.Fprintln(w, "Status: Not ready (see errors above)")
	}
}
