package main

import (
	"errors"
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/alnah/go-dealdoc/internal/assets"
	"github.com/alnah/go-dealdoc/internal/dateutil"
)

// Shell represents a supported shell for completion generation.
type Shell string

// Supported shells for completion.
const (
	ShellBash Shell = "bash"
	ShellZsh  Shell = "zsh"
	ShellFish Shell = "fish"
)

// ErrUnsupportedShell is returned when an unknown shell is requested.
var ErrUnsupportedShell = errors.New("unsupported shell")

// flagType represents the completion type for a flag.
type flagType int

const (
	flagString flagType = iota // default
	flagBool
	flagInt
	flagEnum // has predefined values
	flagFile // file with glob pattern
	flagDir  // directory
)

// flagDef describes a flag for completion purposes.
type flagDef struct {
	Long     string   // --output
	Short    string   // -o (empty if none)
	Type     flagType // completion type
	Desc     string   // help text
	Values   []string // for enum flags
	FileGlob string   // for file flags
}

// commandDef describes a command for completion.
type commandDef struct {
	Name       string
	Desc       string
	Flags      []flagDef
	TakesFiles bool     // accepts deal file arguments
	Args       []string // fixed positional values
}

// completionMeta holds completion-specific metadata for flags.
// Flag names, types, and descriptions come from the FlagSet.
type completionMeta struct {
	Values   []string // enum values
	FileGlob string   // file glob pattern
	IsDir    bool     // directory completion
}

// flagCompletionMeta maps flag names to their completion metadata.
func flagCompletionMeta() map[string]completionMeta {
	templates, _ := assets.NewEmbeddedLoader().Templates()
	return map[string]completionMeta{
		"log-format":  {Values: []string{"json", "console"}},
		"date-format": {Values: slices.Sorted(maps.Keys(dateutil.Presets))},
		"template":    {Values: templates},

		"config": {FileGlob: "*.yaml,*.yml"},

		"output":     {IsDir: true},
		"asset-path": {IsDir: true},
	}
}

// extractFlagsFromFlagSet extracts flag definitions from a pflag.FlagSet.
// Enriches with completion metadata from flagCompletionMeta.
func extractFlagsFromFlagSet(fs *flag.FlagSet, meta map[string]completionMeta) []flagDef {
	var flags []flagDef

	fs.VisitAll(func(f *flag.Flag) {
		fd := flagDef{
			Long:  f.Name,
			Short: f.Shorthand,
			Desc:  f.Usage,
		}

		switch f.Value.Type() {
		case "bool":
			fd.Type = flagBool
		case "int", "int8", "int16", "int32", "int64", "uint", "uint8", "uint16", "uint32", "uint64":
			fd.Type = flagInt
		default:
			fd.Type = flagString
		}

		if m, ok := meta[f.Name]; ok {
			switch {
			case len(m.Values) > 0:
				fd.Type = flagEnum
				fd.Values = m.Values
			case m.FileGlob != "":
				fd.Type = flagFile
				fd.FileGlob = m.FileGlob
			case m.IsDir:
				fd.Type = flagDir
			}
		}

		flags = append(flags, fd)
	})

	return flags
}

// getCommands returns the command registry for completion.
// Flags are extracted from the actual FlagSets.
func getCommands() []commandDef {
	meta := flagCompletionMeta()
	commands := []commandDef{
		{
			Name:       "generate",
			Desc:       "Generate facility agreements (.docx)",
			Flags:      extractFlagsFromFlagSet(newGenerateFlagSet(&generateFlags{}), meta),
			TakesFiles: true,
		},
		{
			Name:  "serve",
			Desc:  "Serve agreements over HTTP",
			Flags: extractFlagsFromFlagSet(newServeFlagSet(&serveFlags{}), meta),
		},
		{
			Name:  "doctor",
			Desc:  "Check configuration and environment",
			Flags: extractFlagsFromFlagSet(newDoctorFlagSet(&doctorFlags{}), meta),
		},
		{
			Name: "completion",
			Desc: "Generate shell completion script",
			Args: []string{string(ShellBash), string(ShellZsh), string(ShellFish)},
		},
		{Name: "version", Desc: "Show version information"},
		{Name: "help", Desc: "Show help for a command"},
	}

	for i := range commands {
		if commands[i].Name == "help" {
			commands[i].Args = commandNames(commands)
		}
	}
	return commands
}

func commandNames(cmds []commandDef) []string {
	names := make([]string, len(cmds))
	for i, c := range cmds {
		names[i] = c.Name
	}
	return names
}

// GenerateCompletion writes shell completion script to w.
// Returns error if shell is unsupported or write fails.
func GenerateCompletion(w io.Writer, shell Shell) error {
	cmds := getCommands()
	var script string
	switch shell {
	case ShellBash:
		script = bashScript(cmds)
	case ShellZsh:
		script = zshScript(cmds)
	case ShellFish:
		script = fishScript(cmds)
	default:
		return fmt.Errorf("%w: %q (supported: bash, zsh, fish)", ErrUnsupportedShell, shell)
	}
	_, err := io.WriteString(w, script)
	return err
}

// runCompletion handles the completion command.
func runCompletion(args []string, env *Environment) error {
	if len(args) == 0 {
		printCompletionUsage(env.Stdout)
		return nil
	}
	return GenerateCompletion(env.Stdout, Shell(args[0]))
}

func bashScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# bash completion for dealdoc\n\n")
	b.WriteString("_dealdoc() {\n")
	b.WriteString("    local cur prev\n")
	b.WriteString("    COMPREPLY=()\n")
	b.WriteString("    cur=\"${COMP_WORDS[COMP_CWORD]}\"\n")
	b.WriteString("    prev=\"${COMP_WORDS[COMP_CWORD-1]}\"\n\n")
	fmt.Fprintf(&b, "    if [[ $COMP_CWORD -eq 1 ]]; then\n        COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n        return\n    fi\n\n",
		strings.Join(commandNames(cmds), " "))
	b.WriteString("    case \"${COMP_WORDS[1]}\" in\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "    %s)\n", c.Name)

		var valued []flagDef
		for _, f := range c.Flags {
			if f.Type != flagBool {
				valued = append(valued, f)
			}
		}
		if len(valued) > 0 {
			b.WriteString("        case \"$prev\" in\n")
			for _, f := range valued {
				fmt.Fprintf(&b, "        %s)\n            %s\n            return\n            ;;\n", bashPattern(f), bashValues(f))
			}
			b.WriteString("        esac\n")
		}

		var positional string
		switch {
		case c.TakesFiles:
			positional = "COMPREPLY=($(compgen -f -- \"$cur\"))"
		case len(c.Args) > 0:
			positional = fmt.Sprintf("COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))", strings.Join(c.Args, " "))
		}

		if len(c.Flags) > 0 {
			fmt.Fprintf(&b, "        if [[ \"$cur\" == -* ]]; then\n            COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))\n",
				strings.Join(flagWords(c.Flags), " "))
			if positional != "" {
				fmt.Fprintf(&b, "        else\n            %s\n", positional)
			}
			b.WriteString("        fi\n")
		} else if positional != "" {
			fmt.Fprintf(&b, "        %s\n", positional)
		}
		b.WriteString("        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("complete -o filenames -F _dealdoc dealdoc\n")
	return b.String()
}

func bashPattern(f flagDef) string {
	if f.Short != "" {
		return "--" + f.Long + "|-" + f.Short
	}
	return "--" + f.Long
}

func bashValues(f flagDef) string {
	switch f.Type {
	case flagEnum:
		return fmt.Sprintf("COMPREPLY=($(compgen -W \"%s\" -- \"$cur\"))", strings.Join(f.Values, " "))
	case flagDir:
		return "COMPREPLY=($(compgen -d -- \"$cur\"))"
	case flagFile:
		return "COMPREPLY=($(compgen -f -- \"$cur\"))"
	default:
		return "COMPREPLY=()"
	}
}

func flagWords(flags []flagDef) []string {
	words := make([]string, 0, len(flags)*2)
	for _, f := range flags {
		words = append(words, "--"+f.Long)
		if f.Short != "" {
			words = append(words, "-"+f.Short)
		}
	}
	return words
}

func zshScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("#compdef dealdoc\n\n")
	b.WriteString("_dealdoc() {\n")
	b.WriteString("    local -a commands\n")
	b.WriteString("    commands=(\n")
	for _, c := range cmds {
		fmt.Fprintf(&b, "        '%s:%s'\n", c.Name, zshQuote(c.Desc))
	}
	b.WriteString("    )\n\n")
	b.WriteString("    if (( CURRENT == 2 )); then\n")
	b.WriteString("        _describe 'command' commands\n")
	b.WriteString("        return\n")
	b.WriteString("    fi\n\n")
	b.WriteString("    shift words\n")
	b.WriteString("    (( CURRENT-- ))\n\n")
	b.WriteString("    case \"${words[1]}\" in\n")

	for _, c := range cmds {
		specs := make([]string, 0, len(c.Flags)+1)
		for _, f := range c.Flags {
			specs = append(specs, zshFlagSpec(f))
		}
		switch {
		case c.TakesFiles:
			specs = append(specs, "'*:deal file:_files'")
		case len(c.Args) > 0:
			specs = append(specs, fmt.Sprintf("'1:argument:(%s)'", strings.Join(c.Args, " ")))
		}
		if len(specs) == 0 {
			continue
		}

		fmt.Fprintf(&b, "    %s)\n", c.Name)
		b.WriteString("        _arguments")
		for _, s := range specs {
			fmt.Fprintf(&b, " \\\n            %s", s)
		}
		b.WriteString("\n        ;;\n")
	}

	b.WriteString("    esac\n")
	b.WriteString("}\n\n")
	b.WriteString("compdef _dealdoc dealdoc\n")
	return b.String()
}

func zshFlagSpec(f flagDef) string {
	desc := zshQuote(strings.NewReplacer("[", "\\[", "]", "\\]").Replace(f.Desc))

	var action string
	switch f.Type {
	case flagBool:
	case flagEnum:
		action = fmt.Sprintf(":%s:(%s)", f.Long, strings.Join(f.Values, " "))
	case flagDir:
		action = ":directory:_directories"
	case flagFile:
		action = ":file:_files"
	default:
		action = ":" + f.Long + ": "
	}

	if f.Short != "" {
		return fmt.Sprintf("'(-%s --%s)'{-%s,--%s}'[%s]%s'", f.Short, f.Long, f.Short, f.Long, desc, action)
	}
	return fmt.Sprintf("'--%s[%s]%s'", f.Long, desc, action)
}

// zshQuote escapes s for use inside single quotes.
func zshQuote(s string) string {
	return strings.ReplaceAll(s, "'", `'\''`)
}

func fishScript(cmds []commandDef) string {
	var b strings.Builder
	b.WriteString("# fish completion for dealdoc\n\n")
	b.WriteString("complete -c dealdoc -f\n\n")

	for _, c := range cmds {
		fmt.Fprintf(&b, "complete -c dealdoc -n __fish_use_subcommand -a %s -d '%s'\n", c.Name, fishQuote(c.Desc))
	}

	for _, c := range cmds {
		cond := fmt.Sprintf("'__fish_seen_subcommand_from %s'", c.Name)
		if len(c.Flags) > 0 || c.TakesFiles || len(c.Args) > 0 {
			b.WriteString("\n")
		}
		for _, f := range c.Flags {
			fmt.Fprintf(&b, "complete -c dealdoc -n %s", cond)
			if f.Short != "" {
				fmt.Fprintf(&b, " -s %s", f.Short)
			}
			fmt.Fprintf(&b, " -l %s -d '%s'%s\n", f.Long, fishQuote(f.Desc), fishValues(f))
		}
		if c.TakesFiles {
			fmt.Fprintf(&b, "complete -c dealdoc -n %s -F\n", cond)
		}
		if len(c.Args) > 0 {
			fmt.Fprintf(&b, "complete -c dealdoc -n %s -a '%s'\n", cond, strings.Join(c.Args, " "))
		}
	}
	return b.String()
}

func fishValues(f flagDef) string {
	switch f.Type {
	case flagBool:
		return ""
	case flagEnum:
		return fmt.Sprintf(" -r -a '%s'", strings.Join(f.Values, " "))
	case flagDir:
		return " -r -a '(__fish_complete_directories)'"
	case flagFile:
		return " -r -F"
	default:
		return " -r"
	}
}

// fishQuote escapes s for use inside single quotes.
func fishQuote(s string) string {
	return strings.NewReplacer(`\`, `\\`, "'", `\'`).Replace(s)
}

// printCompletionUsage prints help for the completion command.
func printCompletionUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: dealdoc completion <shell>")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Generate shell completion script for the specified shell.")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Supported shells:")
	fmt.Fprintln(w, "  bash        Bash completion script")
	fmt.Fprintln(w, "  zsh         Zsh completion script")
	fmt.Fprintln(w, "  fish        Fish completion script")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Installation:")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Bash:")
	fmt.Fprintln(w, "    # Add to ~/.bashrc:")
	fmt.Fprintln(w, "    eval \"$(dealdoc completion bash)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Zsh:")
	fmt.Fprintln(w, "    # Add to ~/.zshrc (after compinit):")
	fmt.Fprintln(w, "    eval \"$(dealdoc completion zsh)\"")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "  Fish:")
	fmt.Fprintln(w, "    dealdoc completion fish > ~/.config/fish/completions/dealdoc.fish")
}
