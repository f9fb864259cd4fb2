package cli

import (
	"fmt"
	"strings"

	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/output"
)

// cmdCompletion generates shell completion scripts.
func cmdCompletion(args []string) int {
	w := output.New()
	shell := ""
	alias := ""

	for i := 0; i < len(args); i++ {
		arg := args[i]
		switch {
		case arg == "-h" || arg == "--help":
			printCompletionUsage()
			return 0
		case strings.HasPrefix(arg, "--alias="):
			alias = strings.TrimPrefix(arg, "--alias=")
		case arg == "--alias":
			w.ErrorPrefix("completion: --alias requires a value (--alias=<name>)")
			return 2
		case strings.HasPrefix(arg, "-"):
			w.ErrorPrefix("completion: unknown flag: %s", arg)
			printCompletionUsage()
			return 2
		default:
			if shell != "" {
				w.ErrorPrefix("completion: unexpected argument: %s", arg)
				return 2
			}
			shell = arg
		}
	}

	if shell == "" {
		w.ErrorPrefix("completion: shell required (bash, zsh, fish)")
		printCompletionUsage()
		return 2
	}

	cmdName := "storyline"
	if alias != "" {
		cmdName = alias
	}

	switch shell {
	case "bash":
		fmt.Print(generateBashCompletion(cmdName))
	case "zsh":
		fmt.Print(generateZshCompletion(cmdName))
	case "fish":
		fmt.Print(generateFishCompletion(cmdName))
	default:
		w.ErrorPrefix("completion: unsupported shell %q (use bash, zsh, or fish)", shell)
		return 2
	}

	return 0
}

// printCompletionUsage prints the help text for the completion command.
func printCompletionUsage() {
	w := output.New()

	w.HelpTitle("storyline completion - generate shell completion scripts")

	w.HelpSection("Usage:")
	w.HelpUsage("storyline completion <shell> [--alias=<name>]")

	w.HelpSection("Arguments:")
	w.HelpFlag("<shell>", "Shell type: bash, zsh, or fish", 10)
	w.HelpFlag("--alias", "Generate completion for an alias of storyline", 10)

	w.HelpSection("Setup:")
	w.Println("  Bash:  eval \"$(storyline completion bash)\"")
	w.Println("  Zsh:   eval \"$(storyline completion zsh)\"")
	w.Println("  Fish:  storyline completion fish | source")
	w.Println("")
}

// builtinCommands returns the list of CLI commands.
func builtinCommands() []string {
	return []string{"run", "check", "actions", "completion", "version", "help"}
}

// valueFlags returns the flags that take a value.
func valueFlags() []string {
	return []string{"--config", "--dir", "--pattern", "--workers", "--base-url", "--language"}
}

// globalFlags returns every global CLI flag.
func globalFlags() []string {
	return append(valueFlags(), "--quiet", "--verbose", "--help", "--version")
}

func generateBashCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_") + "_completions"

	return fmt.Sprintf(`# %[1]s bash completion
# Add to ~/.bashrc: eval "$(%[1]s completion bash)"

%[2]s() {
    local cur prev words cword
    _init_completion || return

    local commands="%[3]s"
    local flags="%[4]s"
    local languages="%[5]s"

    case "${prev}" in
        --language|-l|actions)
            COMPREPLY=($(compgen -W "${languages}" -- "${cur}"))
            return
            ;;
        --config|-c)
            _filedir yaml
            return
            ;;
        --dir|-d)
            _filedir -d
            return
            ;;
        --pattern|-p|--workers|-w|--base-url|-u)
            return
            ;;
        completion)
            COMPREPLY=($(compgen -W "bash zsh fish" -- "${cur}"))
            return
            ;;
    esac

    if [[ "${cur}" == -* ]]; then
        COMPREPLY=($(compgen -W "${flags}" -- "${cur}"))
        return
    fi

    COMPREPLY=($(compgen -W "${commands}" -- "${cur}"))
}

complete -F %[2]s %[1]s
`, cmdName, funcName, strings.Join(builtinCommands(), " "), strings.Join(globalFlags(), " "), strings.Join(language.Available(), " "))
}

func generateZshCompletion(cmdName string) string {
	funcName := "_" + strings.ReplaceAll(cmdName, "-", "_")

	var cmds strings.Builder
	descriptions := map[string]string{
		"run":        "Run every story",
		"check":      "Parse stories without running them",
		"actions":    "List step phrases",
		"completion": "Generate shell completion",
		"version":    "Show version information",
		"help":       "Show help",
	}
	for _, c := range builtinCommands() {
		fmt.Fprintf(&cmds, "        '%s:%s'\n", c, descriptions[c])
	}

	return fmt.Sprintf(`#compdef %[1]s
# %[1]s zsh completion
# Add to ~/.zshrc: eval "$(%[1]s completion zsh)"

%[2]s() {
    local -a commands
    commands=(
%[3]s    )

    _arguments -C \
        '(-c --config)'{-c,--config}'[Settings file]:file:_files -g "*.yaml"' \
        '(-d --dir)'{-d,--dir}'[Story directory]:directory:_directories' \
        '(-p --pattern)'{-p,--pattern}'[Story file pattern]:pattern:' \
        '(-w --workers)'{-w,--workers}'[Parallel workers]:count:' \
        '(-u --base-url)'{-u,--base-url}'[Base URL]:url:' \
        '(-l --language)'{-l,--language}'[Story language]:language:(%[4]s)' \
        '(-q --quiet -v --verbose)'{-q,--quiet}'[Minimal output]' \
        '(-q --quiet -v --verbose)'{-v,--verbose}'[Maximum detail]' \
        '1: :->command' \
        '*:: :->args'

    case $state in
        command)
            _describe 'command' commands
            ;;
        args)
            case $words[1] in
                completion)
                    _values 'shell' bash zsh fish
                    ;;
                actions)
                    _values 'language' %[4]s
                    ;;
            esac
            ;;
    esac
}

compdef %[2]s %[1]s
`, cmdName, funcName, cmds.String(), strings.Join(language.Available(), " "))
}

func generateFishCompletion(cmdName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s fish completion\n", cmdName)
	fmt.Fprintf(&b, "# Add to fish config: %s completion fish | source\n\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -f\n", cmdName)

	cond := "__fish_use_subcommand"
	for _, c := range builtinCommands() {
		fmt.Fprintf(&b, "complete -c %s -n '%s' -a %s\n", cmdName, cond, c)
	}

	langs := strings.Join(language.Available(), " ")
	fmt.Fprintf(&b, "complete -c %s -s c -l config -r -F -d 'Settings file'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s d -l dir -r -a '(__fish_complete_directories)' -d 'Story directory'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s p -l pattern -r -d 'Story file pattern'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s w -l workers -r -d 'Parallel workers'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s u -l base-url -r -d 'Base URL'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s l -l language -r -a '%s' -d 'Story language'\n", cmdName, langs)
	fmt.Fprintf(&b, "complete -c %s -s q -l quiet -d 'Minimal output'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -s v -l verbose -d 'Maximum detail'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -n '__fish_seen_subcommand_from completion' -a 'bash zsh fish'\n", cmdName)
	fmt.Fprintf(&b, "complete -c %s -n '__fish_seen_subcommand_from actions' -a '%s'\n", cmdName, langs)
	return b.String()
}
