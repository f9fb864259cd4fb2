package actions

import (
	"context"
	"fmt"
	"math"
	"net/url"
	"strconv"
	"strings"
	"time"

	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/model"
)

// Builtin returns the page action definitions in matching order.
func Builtin() []Definition {
	return []Definition{
		{Name: "page_go_to", PatternKey: "page_go_to_regex", Func: PageGoTo},
		{Name: "page_am_in", PatternKey: "page_am_in_regex", Func: PageAmIn},
		{Name: "page_see_title", PatternKey: "page_see_title_regex", Func: PageSeeTitle},
		// "does not contain" must be tried before "contains"
		{Name: "page_check_does_not_contain_markup", PatternKey: "page_check_does_not_contain_markup_regex", Func: PageDoesNotContainMarkup},
		{Name: "page_check_contains_markup", PatternKey: "page_check_contains_markup_regex", Func: PageContainsMarkup},
		{Name: "page_wait_for_page_to_load", PatternKey: "page_wait_for_page_to_load_regex", Func: PageWaitForPageToLoad},
		{Name: "page_wait_for_seconds", PatternKey: "page_wait_for_seconds_regex", Func: PageWaitForSeconds},
	}
}

// PageGoTo opens a registered page by name or a URL relative to the base URL,
// then waits for it to load.
func PageGoTo(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	target := args.Named["url"]
	page, isPage := ec.Page(target)
	if isPage {
		target = page.URL
	}

	if _, err := url.Parse(target); err != nil || strings.TrimSpace(target) == "" {
		return storylineerrors.Failed(ec.Language.Format("page_go_to_failure", target))
	}

	if err := open(ctx, ec, target); err != nil {
		return err
	}
	if isPage {
		ec.CurrentPage = page
	} else {
		ec.CurrentPage = nil
	}
	return nil
}

// PageAmIn opens a page registered in the settings and makes it current.
func PageAmIn(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	name := args.Named["page"]
	page, ok := ec.Page(name)
	if !ok {
		return storylineerrors.Failed(ec.Language.Format("page_am_in_failure", name))
	}
	if err := open(ctx, ec, page.URL); err != nil {
		return err
	}
	ec.CurrentPage = page
	return nil
}

func open(ctx context.Context, ec *execution.Context, target string) error {
	if err := ec.Browser.PageOpen(ctx, target); err != nil {
		return fmt.Errorf("open %s: %w", target, err)
	}
	if err := ec.Browser.WaitForPage(ctx, 0); err != nil {
		return fmt.Errorf("wait for %s: %w", target, err)
	}
	ec.CurrentURL = target
	return nil
}

// PageSeeTitle checks the title of the current page.
func PageSeeTitle(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	expected := args.Named["title"]
	actual, err := ec.Browser.Title(ctx)
	if err != nil {
		return fmt.Errorf("read page title: %w", err)
	}
	if actual != expected {
		return storylineerrors.Failed(ec.Language.Format("page_see_title_failure", expected, actual))
	}
	return nil
}

// PageContainsMarkup checks that the page source contains the markup.
func PageContainsMarkup(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	markup := args.Named["markup"]
	html, err := ec.Browser.HTMLSource(ctx)
	if err != nil {
		return fmt.Errorf("read page source: %w", err)
	}
	if !strings.Contains(html, markup) {
		return storylineerrors.Failed(ec.Language.Format("page_check_contains_markup_failure", markup))
	}
	return nil
}

// PageDoesNotContainMarkup checks that the page source lacks the markup.
func PageDoesNotContainMarkup(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	markup := args.Named["markup"]
	html, err := ec.Browser.HTMLSource(ctx)
	if err != nil {
		return fmt.Errorf("read page source: %w", err)
	}
	if strings.Contains(html, markup) {
		return storylineerrors.Failed(ec.Language.Format("page_check_does_not_contain_markup_failure", markup))
	}
	return nil
}

// PageWaitForPageToLoad waits for the current page. An optional timeout in
// seconds overrides the driver default; an unparsable one is ignored.
func PageWaitForPageToLoad(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	var timeout time.Duration
	if seconds, err := parseSeconds(args.Named["timeout"]); err == nil {
		timeout = seconds
	}
	if err := ec.Browser.WaitForPage(ctx, timeout); err != nil {
		return fmt.Errorf("wait for page: %w", err)
	}
	return nil
}

// PageWaitForSeconds pauses the scenario. A value that is not a
// non-negative number fails the step.
func PageWaitForSeconds(ctx context.Context, ec *execution.Context, args model.Arguments) error {
	raw := args.Named["timeout"]
	d, err := parseSeconds(raw)
	if err != nil {
		return storylineerrors.Failed(ec.Language.Format("page_wait_for_seconds_failure", raw))
	}

	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// maxSeconds bounds waits to what a time.Duration can hold.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// parseSeconds accepts "2", "0.5" and "1,5".
func parseSeconds(s string) (time.Duration, error) {
	s = strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(f) || math.IsInf(f, 0) || f < 0 || f >= maxSeconds {
		return 0, fmt.Errorf("invalid duration %s", s)
	}
	return time.Duration(f * float64(time.Second)), nil
}
