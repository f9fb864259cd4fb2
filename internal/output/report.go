package output

import (
	"fmt"
	"strings"
	"time"

	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
)

// ScenarioStart prints the scenario being started (verbose mode only).
func (w *Writer) ScenarioStart(sc *model.Scenario) {
	if w.quiet || !w.verbose {
		return
	}
	w.Debug("starting %s", scenarioLabel(sc))
}

// ScenarioDone prints a one-line outcome for a finished scenario.
func (w *Writer) ScenarioDone(sc *model.Scenario) {
	if w.quiet {
		return
	}
	label := scenarioLabel(sc)
	dur := FormatDuration(sc.Duration())
	switch sc.Status() {
	case model.Passed:
		if w.color {
			w.Println("%s✓%s %s %s(%s)%s", green, reset, label, dim, dur, reset)
		} else {
			w.Println("+ %s (%s)", label, dur)
		}
	default:
		if w.color {
			w.Println("%s✗%s %s %s(%s)%s", red, reset, label, dim, dur, reset)
		} else {
			w.Println("x %s (%s)", label, dur)
		}
	}
}

func scenarioLabel(sc *model.Scenario) string {
	var b strings.Builder
	if sc.Story != nil && sc.Story.Identity != "" {
		b.WriteString(sc.Story.Identity)
		b.WriteString(": ")
	}
	fmt.Fprintf(&b, "Scenario %d - %s", sc.Index, sc.Title)
	return b.String()
}

// Report prints the action tree of every scenario that did not pass,
// using catalog keywords for the story and step headers. With verbose set
// passing scenarios are included.
func (w *Writer) Report(result *model.Result, catalog *language.Catalog) {
	if result == nil || result.Fixture == nil {
		return
	}

	for _, inv := range result.Fixture.InvalidFiles {
		w.Errorln("invalid story file: %v", inv.Err)
	}

	for _, story := range result.Fixture.Stories {
		var shown []*model.Scenario
		for _, sc := range story.Scenarios {
			if w.verbose || sc.Status() != model.Passed {
				shown = append(shown, sc)
			}
		}
		if len(shown) == 0 {
			continue
		}

		w.Section(story.Identity)
		w.Println("%s %s", keyword(catalog, "as_a", "As a"), story.AsA)
		w.Println("%s %s", keyword(catalog, "i_want_to", "I want to"), story.IWant)
		w.Println("%s %s", keyword(catalog, "so_that", "So that"), story.SoThat)

		for _, sc := range shown {
			w.Println("")
			w.Println("  %s %d - %s", keyword(catalog, "scenario", "Scenario"), sc.Index, sc.Title)
			w.reportActions(keyword(catalog, "given", "Given"), sc.Givens)
			w.reportActions(keyword(catalog, "when", "When"), sc.Whens)
			w.reportActions(keyword(catalog, "then", "Then"), sc.Thens)
		}
	}
}

func (w *Writer) reportActions(header string, actions []*model.Action) {
	if len(actions) == 0 {
		return
	}
	w.Println("    %s", header)
	for _, a := range actions {
		switch a.Status() {
		case model.Passed:
			w.Println("      %s %s", w.mark(green, "✓", "+"), a.Description)
		case model.Failed:
			w.Println("      %s %s", w.mark(red, "✗", "x"), a.Description)
			if a.Message() != "" {
				w.Println("          %s", a.Message())
			}
		default:
			w.Println("      %s %s (skipped)", w.mark(dim, "-", "-"), a.Description)
		}
	}
}

func (w *Writer) mark(c, symbol, plain string) string {
	if w.color {
		return c + symbol + reset
	}
	return plain
}

func keyword(catalog *language.Catalog, key, fallback string) string {
	if catalog != nil && catalog.Has(key) {
		return catalog.Keyword(key)
	}
	return fallback
}

// Summary prints run totals and the failed scenarios, followed by a final
// success or failure line.
func (w *Writer) Summary(result *model.Result) {
	if result == nil {
		return
	}
	sum := result.Summary()

	w.SummaryHeader("Run Summary")
	w.SummaryItem("Run ID", result.RunID)
	w.SummaryItem("Stories", fmt.Sprintf("%d", sum.Stories))
	w.SummaryItem("Scenarios", formatCounts(sum.Scenarios))
	w.SummaryItem("Actions", formatCounts(sum.Actions))
	if sum.InvalidFiles > 0 {
		w.SummaryFailed("Invalid files", fmt.Sprintf("%d", sum.InvalidFiles))
	}
	w.SummaryItem("Duration", FormatDuration(sum.Duration))
	for _, sc := range result.FailedScenarios() {
		w.SummaryFailed("Failed", scenarioLabel(sc))
	}

	switch {
	case result.Interrupted:
		w.FinalFailure("Run interrupted.")
	case result.Successful():
		w.FinalSuccess("All %d scenarios passed.", sum.Scenarios.Total)
	default:
		w.FinalFailure("%d of %d scenarios failed.", sum.Scenarios.Total-sum.Scenarios.Passed, sum.Scenarios.Total)
	}
}

func formatCounts(c model.Counts) string {
	parts := []string{fmt.Sprintf("%d total", c.Total), fmt.Sprintf("%d passed", c.Passed)}
	if c.Failed > 0 {
		parts = append(parts, fmt.Sprintf("%d failed", c.Failed))
	}
	if c.Pending > 0 {
		parts = append(parts, fmt.Sprintf("%d pending", c.Pending))
	}
	return strings.Join(parts, ", ")
}

// SummaryHeader prints a summary section header.
func (w *Writer) SummaryHeader(title string) {
	w.Println("")
	if w.color {
		w.Println("%s=== %s ===%s", bold, title, reset)
	} else {
		w.Println("=== %s ===", title)
	}
	w.Println("")
}

// SummaryItem prints a label/value pair.
func (w *Writer) SummaryItem(label, value string) {
	if w.color {
		w.Println("%s%s:%s %s", bold, label, reset, value)
	} else {
		w.Println("%s: %s", label, value)
	}
}

// SummaryFailed prints a failed label/value pair in red.
func (w *Writer) SummaryFailed(label, value string) {
	if w.color {
		w.Println("%s%s:%s %s", red, label, reset, value)
	} else {
		w.Println("%s: %s", label, value)
	}
}

// FormatDuration formats a duration in a human-readable way.
func FormatDuration(d time.Duration) string {
	if d < time.Second {
		return fmt.Sprintf("%dms", d.Milliseconds())
	}
	if d < time.Minute {
		return fmt.Sprintf("%.1fs", d.Seconds())
	}
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	return fmt.Sprintf("%dm%ds", m, s)
}
