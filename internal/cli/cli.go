// Package cli provides command-line interface functionality for storyline.
package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/storyline/storyline/internal/config"
	"github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/output"
)

// Version is set at build time.
var Version = "dev"

// wantsHelp returns true if args contain -h or --help before any -- separator.
func wantsHelp(args []string) bool {
	for _, arg := range args {
		if arg == "-h" || arg == "--help" {
			return true
		}
		if arg == "--" {
			return false
		}
	}
	return false
}

// Run executes the CLI with the given arguments and returns an exit code.
func Run(args []string) int {
	if len(args) == 0 {
		printUsage()
		return 0
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return 0
	case "--version", "version":
		fmt.Printf("storyline %s\n", Version)
		return 0
	}

	opts, remaining, err := parseGlobalFlags(args)
	if err != nil {
		return fail(errors.Config(err.Error()))
	}

	// "storyline -w 4" runs like "storyline run -w 4"
	if len(remaining) == 0 {
		return cmdRun(nil, opts)
	}
	cmd := remaining[0]
	cmdArgs := remaining[1:]

	switch cmd {
	case "run":
		return cmdRun(cmdArgs, opts)
	case "check":
		return cmdCheck(cmdArgs, opts)
	case "actions":
		return cmdActions(cmdArgs, opts)
	case "completion":
		return cmdCompletion(cmdArgs)
	case "help":
		printUsage()
		return 0
	case "version":
		fmt.Printf("storyline %s\n", Version)
		return 0
	default:
		return fail(errors.Configf("unknown command %q (run 'storyline help' for usage)", cmd))
	}
}

// GlobalOptions holds parsed global flags. Zero values mean "not given".
type GlobalOptions struct {
	ConfigPath string
	Dir        string
	Pattern    string
	Workers    int
	BaseURL    string
	Language   string
	Quiet      bool
	Verbose    bool
}

// flagValue returns the value of a flag given as "--name value" or
// "--name=value", and how many arguments it consumed.
func flagValue(args []string, i int, names ...string) (value string, consumed int, ok bool, err error) {
	arg := args[i]
	for _, name := range names {
		if arg == name {
			if i+1 >= len(args) {
				return "", 0, true, fmt.Errorf("%s requires a value", name)
			}
			return args[i+1], 2, true, nil
		}
		if strings.HasPrefix(arg, name+"=") {
			return strings.TrimPrefix(arg, name+"="), 1, true, nil
		}
	}
	return "", 0, false, nil
}

// parseGlobalFlags manually parses global flags from arguments.
//
// Flags may appear before or after the command, so the stdlib flag package,
// which stops at the first non-flag argument, does not fit.
func parseGlobalFlags(args []string) (*GlobalOptions, []string, error) {
	opts := &GlobalOptions{}
	var remaining []string

	i := 0
	for i < len(args) {
		arg := args[i]

		switch {
		case arg == "-q" || arg == "--quiet":
			opts.Quiet = true
			i++
			continue
		case arg == "-v" || arg == "--verbose":
			opts.Verbose = true
			i++
			continue
		case arg == "--":
			remaining = append(remaining, args[i+1:]...)
			i = len(args)
			continue
		}

		targets := []struct {
			names []string
			set   func(string) error
		}{
			{[]string{"--config", "-c"}, func(v string) error { opts.ConfigPath = v; return nil }},
			{[]string{"--dir", "-d"}, func(v string) error { opts.Dir = v; return nil }},
			{[]string{"--pattern", "-p"}, func(v string) error { opts.Pattern = v; return nil }},
			{[]string{"--base-url", "-u"}, func(v string) error { opts.BaseURL = v; return nil }},
			{[]string{"--language", "-l"}, func(v string) error { opts.Language = v; return nil }},
			{[]string{"--workers", "-w"}, func(v string) error {
				n, err := strconv.Atoi(v)
				if err != nil {
					return fmt.Errorf("invalid --workers value %q: not a number", v)
				}
				opts.Workers = n
				return nil
			}},
		}

		matched := false
		for _, t := range targets {
			value, consumed, ok, err := flagValue(args, i, t.names...)
			if err != nil {
				return nil, nil, err
			}
			if !ok {
				continue
			}
			if err := t.set(value); err != nil {
				return nil, nil, err
			}
			i += consumed
			matched = true
			break
		}
		if matched {
			continue
		}

		if strings.HasPrefix(arg, "-") && arg != "-h" && arg != "--help" {
			return nil, nil, fmt.Errorf("unknown flag %s", arg)
		}
		remaining = append(remaining, arg)
		i++
	}

	if err := validateGlobalOptions(opts); err != nil {
		return nil, nil, err
	}

	applyVerbosityToOutput(opts)

	return opts, remaining, nil
}

// validateGlobalOptions checks that global options are valid.
func validateGlobalOptions(opts *GlobalOptions) error {
	if opts.Quiet && opts.Verbose {
		return fmt.Errorf("--quiet and --verbose are mutually exclusive")
	}
	if opts.Workers != 0 && (opts.Workers < config.MinWorkers || opts.Workers > config.MaxWorkers) {
		return fmt.Errorf("--workers must be between %d and %d, got %d", config.MinWorkers, config.MaxWorkers, opts.Workers)
	}
	return nil
}

// Help text alignment widths.
const (
	widthCommand = 12
	widthFlag    = 22
	widthEnv     = 20
)

func printUsage() {
	w := output.New()

	w.HelpTitle("storyline - acceptance stories for web applications")

	w.HelpSection("Usage:")
	w.HelpUsage("storyline <command> [flags]")

	w.HelpSection("Commands:")
	w.HelpCommand("run", "Run every story (default)", widthCommand)
	w.HelpCommand("check", "Parse stories without running them", widthCommand)
	w.HelpCommand("actions", "List the step phrases of a language", widthCommand)
	w.HelpCommand("completion", "Generate shell completion (bash, zsh, fish)", widthCommand)
	w.HelpCommand("version", "Show version information", widthCommand)
	w.HelpCommand("help", "Show this help", widthCommand)

	printGlobalFlags(w)

	w.HelpSection("Examples:")
	w.HelpExample("storyline run", "Run stories found from storyline.yaml")
	w.HelpExample("storyline run -w 4 --base-url http://localhost:8080", "Run on four workers against a local server")
	w.HelpExample("storyline check --dir stories", "Validate story files")
	w.HelpExample("storyline actions -l pt-br", "List Portuguese step phrases")
	w.Println("")
}

func printGlobalFlags(w *output.Writer) {
	w.HelpSection("Flags:")
	w.HelpFlag("-c, --config <file>", "Settings file (default: storyline.yaml found upwards)", widthFlag)
	w.HelpFlag("-d, --dir <dir>", "Directory containing story files", widthFlag)
	w.HelpFlag("-p, --pattern <glob>", "Story file name pattern (default: *.acc)", widthFlag)
	w.HelpFlag("-w, --workers <n>", "Number of parallel workers (1 = sequential)", widthFlag)
	w.HelpFlag("-u, --base-url <url>", "Base URL relative story URLs resolve against", widthFlag)
	w.HelpFlag("-l, --language <tag>", "Story language (en-us, pt-br)", widthFlag)
	w.HelpFlag("-q, --quiet", "Minimal output (errors only)", widthFlag)
	w.HelpFlag("-v, --verbose", "Maximum detail", widthFlag)
	w.HelpFlag("-h, --help", "Show this help", widthFlag)
	w.HelpFlag("--version", "Show version", widthFlag)

	w.HelpSection("Environment:")
	w.HelpEnvVar(config.EnvWorkers+"=<n>", "Default worker count", widthEnv)
	w.HelpEnvVar(config.EnvBaseURL+"=<url>", "Default base URL", widthEnv)
}
