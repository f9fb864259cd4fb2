package cli

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/storyline/storyline/internal/actions"
	"github.com/storyline/storyline/internal/browser"
	"github.com/storyline/storyline/internal/config"
	"github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/output"
	"github.com/storyline/storyline/internal/runner"
	"github.com/storyline/storyline/internal/story"
)

// out is the shared output writer for CLI commands.
var out = output.New()

// newDriverFactory creates browser drivers for a run. Tests replace it
// with an in-memory browser.
var newDriverFactory = browser.ChromeFactory

// fail reports err and returns the exit code for its kind.
func fail(err error) int {
	out.ErrorPrefix("%v", err)
	return errors.GetExitCode(err)
}

// applyVerbosityToOutput configures the output writer based on verbosity settings.
func applyVerbosityToOutput(opts *GlobalOptions) {
	out.SetQuiet(opts.Quiet)
	out.SetVerbose(opts.Verbose)
}

// loadSettings locates and loads the settings file, then applies command
// line overrides. Without a settings file the defaults are used.
// Returns nil and the exit code on failure.
func loadSettings(opts *GlobalOptions) (*config.Settings, int) {
	path := opts.ConfigPath
	if path == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fail(errors.Wrap(err, fmt.Sprintf("cannot determine working directory: %v", err)))
		}
		found, err := config.FindSettings(wd)
		if err != nil && !stderrors.Is(err, config.ErrNoSettings) {
			return nil, fail(errors.Wrap(err, fmt.Sprintf("cannot locate %s: %v", config.FileName, err)))
		}
		path = found
	}

	var (
		settings *config.Settings
		warnings []string
		err      error
	)
	if path == "" {
		settings, warnings = config.DefaultWithEnv()
	} else {
		settings, warnings, err = config.LoadAndValidate(path)
	}
	for _, w := range warnings {
		out.WarningSimple("%s", w)
	}
	if err != nil {
		return nil, fail(errors.Configf("%s: %v", path, err))
	}
	if path == "" {
		out.Debug("no %s found, using defaults", config.FileName)
	} else {
		settings.Resolve(path)
		out.Debug("loaded settings from %s", path)
	}

	applyOverrides(settings, opts)
	if err := config.Validate(settings); err != nil {
		return nil, fail(errors.Config(err.Error()))
	}
	return settings, 0
}

// applyOverrides copies flags given on the command line over settings.
func applyOverrides(s *config.Settings, opts *GlobalOptions) {
	if opts.Dir != "" {
		s.Tests.Directory = opts.Dir
	}
	if opts.Pattern != "" {
		s.Tests.Pattern = opts.Pattern
	}
	if opts.Workers != 0 {
		s.Workers = opts.Workers
	}
	if opts.BaseURL != "" {
		s.BaseURL = opts.BaseURL
	}
	if opts.Language != "" {
		s.Language = opts.Language
	}
}

// loadFixture loads the language, action registry and stories for settings.
// Returns nil and the exit code on failure.
func loadFixture(settings *config.Settings) (*model.Fixture, *language.Catalog, int) {
	catalog, err := language.Load(settings.Language)
	if err != nil {
		return nil, nil, fail(errors.Config(err.Error()))
	}

	registry, err := actions.NewRegistry(catalog)
	if err != nil {
		return nil, nil, fail(errors.Config(err.Error()))
	}

	fixture, err := story.LoadFixture(settings.Tests.Directory, settings.Tests.Pattern, story.NewParser(registry))
	if err != nil {
		return nil, nil, fail(errors.Config(err.Error()))
	}
	if len(fixture.Stories) == 0 && len(fixture.InvalidFiles) == 0 {
		out.WarningSimple("no stories matching %q found in %s", settings.Tests.Pattern, displayPath(settings.Tests.Directory))
	}
	return fixture, catalog, 0
}

func displayPath(path string) string {
	wd, err := os.Getwd()
	if err != nil {
		return path
	}
	if rel, err := filepath.Rel(wd, path); err == nil && !filepath.IsAbs(rel) && len(rel) < len(path) {
		return rel
	}
	return path
}

// cmdRun runs every story and reports the outcome.
func cmdRun(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printRunUsage()
		return 0
	}
	if len(args) > 0 {
		return fail(errors.Configf("run: unexpected argument: %s", args[0]))
	}

	settings, code := loadSettings(opts)
	if settings == nil {
		return code
	}
	fixture, catalog, code := loadFixture(settings)
	if fixture == nil {
		return code
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	factory := execution.NewFactory(newDriverFactory(opts.Verbose), catalog)
	r := runner.New(settings, factory, out)

	mode := "sequentially"
	if settings.Workers > 1 {
		mode = fmt.Sprintf("on %d workers", settings.Workers)
	}
	out.Info("Running %d scenarios %s", len(fixture.Scenarios()), mode)

	result, err := r.RunStories(ctx, settings, fixture, nil)
	out.Report(result, catalog)
	if !opts.Quiet {
		out.Summary(result)
	}

	if err != nil {
		if opts.Verbose {
			printStacks(err)
		} else if errors.IsExecution(err) {
			out.Info("Run with --verbose to see stack traces.")
		}
		return fail(err)
	}
	if !result.Successful() {
		return errors.ExitRuntimeError
	}
	return errors.ExitSuccess
}

// cmdCheck parses every story without starting a browser.
func cmdCheck(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printCheckUsage()
		return 0
	}
	if len(args) > 0 {
		return fail(errors.Configf("check: unexpected argument: %s", args[0]))
	}

	settings, code := loadSettings(opts)
	if settings == nil {
		return code
	}
	fixture, _, code := loadFixture(settings)
	if fixture == nil {
		return code
	}

	for _, inv := range fixture.InvalidFiles {
		out.Errorln("%v", inv.Err)
	}
	if opts.Verbose {
		for _, s := range fixture.Stories {
			out.Println("%s (%d scenarios)", displayPath(s.Identity), len(s.Scenarios))
		}
	}

	if len(fixture.InvalidFiles) > 0 {
		return fail(errors.Configf("%d of %d story files are invalid", len(fixture.InvalidFiles), len(fixture.InvalidFiles)+len(fixture.Stories)))
	}
	out.Success("%d stories, %d scenarios OK", len(fixture.Stories), len(fixture.Scenarios()))
	return errors.ExitSuccess
}

// cmdActions lists the registered step phrases.
func cmdActions(args []string, opts *GlobalOptions) int {
	if wantsHelp(args) {
		printActionsUsage()
		return 0
	}

	lang := opts.Language
	if lang == "" {
		lang = config.DefaultLanguage
	}
	if len(args) > 1 {
		return fail(errors.Configf("actions: unexpected argument: %s", args[1]))
	}
	if len(args) == 1 {
		lang = args[0]
	}

	catalog, err := language.Load(lang)
	if err != nil {
		return fail(errors.Config(err.Error()))
	}
	registry, err := actions.NewRegistry(catalog)
	if err != nil {
		return fail(errors.Config(err.Error()))
	}

	var rows [][]string
	for _, p := range registry.Patterns() {
		rows = append(rows, []string{p.Name, p.Pattern})
	}
	out.Table([]string{"ACTION", "PATTERN"}, rows)
	return errors.ExitSuccess
}

// printStacks writes the stack trace of every execution error in err.
func printStacks(err error) {
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		for _, e := range joined.Unwrap() {
			printStacks(e)
		}
		return
	}
	var ee *errors.ExecutionError
	if stderrors.As(err, &ee) && ee.Stack != "" {
		out.Errorln("%s", ee.Stack)
	}
}

func printRunUsage() {
	w := output.New()

	w.HelpTitle("storyline run - run acceptance stories")

	w.HelpSection("Usage:")
	w.HelpUsage("storyline run [flags]")

	w.HelpSection("Description:")
	w.Println("  Runs every scenario of every story file. With one worker scenarios run")
	w.Println("  in order and a fatal action error stops the run. With more workers each")
	w.Println("  scenario gets its own browser session and fatal errors are reported at")
	w.Println("  the end. Ctrl-C interrupts the run.")

	printGlobalFlags(w)
	w.Println("")
}

func printCheckUsage() {
	w := output.New()

	w.HelpTitle("storyline check - validate story files")

	w.HelpSection("Usage:")
	w.HelpUsage("storyline check [flags]")

	w.HelpSection("Description:")
	w.Println("  Parses every story file and resolves its steps without opening a browser.")
	w.Println("  Exits with code 2 when any file is invalid.")

	printGlobalFlags(w)
	w.Println("")
}

func printActionsUsage() {
	w := output.New()

	w.HelpTitle("storyline actions - list step phrases")

	w.HelpSection("Usage:")
	w.HelpUsage("storyline actions [language]")

	w.HelpSection("Arguments:")
	w.HelpFlag("[language]", fmt.Sprintf("Language tag (default: %s)", config.DefaultLanguage), widthFlag)
	w.Println("")
}
