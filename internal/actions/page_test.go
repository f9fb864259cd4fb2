package actions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/storyline/storyline/internal/config"
	storylineerrors "github.com/storyline/storyline/internal/errors"
	"github.com/storyline/storyline/internal/execution"
	"github.com/storyline/storyline/internal/language"
	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/testing/mocks"
)

const testBase = "http://shop.test"

// startedContext returns a context over a started in-memory browser.
func startedContext(t *testing.T, b *mocks.Browser) *execution.Context {
	t.Helper()
	settings := config.Default()
	settings.BaseURL = testBase
	settings.Pages = map[string]string{"Search Results": "/search"}
	ec := execution.New(settings, b, language.MustLoad("en-us"))
	if err := b.StartTest(context.Background(), testBase); err != nil {
		t.Fatal(err)
	}
	return ec
}

func named(key, value string) model.Arguments {
	return model.Arguments{Positional: []string{value}, Named: map[string]string{key: value}}
}

func assertFailed(t *testing.T, err error, contains string) {
	t.Helper()
	ae, ok := storylineerrors.AsAssertion(err)
	if !ok {
		t.Fatalf("err = %v, want assertion failure", err)
	}
	if !strings.Contains(ae.Message, contains) {
		t.Errorf("message = %q, want it to contain %q", ae.Message, contains)
	}
}

func TestPageGoTo(t *testing.T) {
	b := mocks.NewBrowser()
	ec := startedContext(t, b)

	if err := PageGoTo(context.Background(), ec, named("url", "/about")); err != nil {
		t.Fatalf("PageGoTo() error = %v", err)
	}

	if b.CurrentURL() != testBase+"/about" {
		t.Errorf("CurrentURL() = %q", b.CurrentURL())
	}
	if ec.CurrentURL != "/about" || ec.CurrentPage != nil {
		t.Errorf("context = %q, %v", ec.CurrentURL, ec.CurrentPage)
	}
	calls := b.Calls()
	if calls[len(calls)-1] != "wait" {
		t.Errorf("last call = %q, want wait", calls[len(calls)-1])
	}
}

func TestPageGoTo_RegisteredPage(t *testing.T) {
	b := mocks.NewBrowser()
	ec := startedContext(t, b)

	if err := PageGoTo(context.Background(), ec, named("url", "search results")); err != nil {
		t.Fatal(err)
	}

	if b.CurrentURL() != testBase+"/search" {
		t.Errorf("CurrentURL() = %q", b.CurrentURL())
	}
	if ec.CurrentPage == nil || ec.CurrentPage.Name != "Search Results" {
		t.Errorf("CurrentPage = %v", ec.CurrentPage)
	}
}

func TestPageGoTo_InvalidURL(t *testing.T) {
	ec := startedContext(t, mocks.NewBrowser())

	err := PageGoTo(context.Background(), ec, named("url", "http://[::1"))

	assertFailed(t, err, `The url "http://[::1" is not valid.`)
}

func TestPageGoTo_DriverErrorIsFatal(t *testing.T) {
	b := mocks.NewBrowser()
	b.OpenErr = errors.New("connection refused")
	ec := startedContext(t, b)

	err := PageGoTo(context.Background(), ec, named("url", "/"))

	if err == nil || storylineerrors.IsAssertion(err) {
		t.Errorf("err = %v, want non-assertion error", err)
	}
}

func TestPageAmIn(t *testing.T) {
	b := mocks.NewBrowser()
	ec := startedContext(t, b)

	if err := PageAmIn(context.Background(), ec, named("page", "Search Results")); err != nil {
		t.Fatal(err)
	}
	if ec.CurrentPage == nil || ec.CurrentPage.URL != "/search" {
		t.Errorf("CurrentPage = %v", ec.CurrentPage)
	}

	err := PageAmIn(context.Background(), ec, named("page", "checkout"))
	assertFailed(t, err, `Page "checkout" was not found`)
}

func TestPageSeeTitle(t *testing.T) {
	b := mocks.NewBrowser().WithPage(testBase+"/", "Home", "<html></html>")
	ec := startedContext(t, b)
	if err := PageGoTo(context.Background(), ec, named("url", "/")); err != nil {
		t.Fatal(err)
	}

	if err := PageSeeTitle(context.Background(), ec, named("title", "Home")); err != nil {
		t.Errorf("PageSeeTitle(Home) error = %v", err)
	}

	err := PageSeeTitle(context.Background(), ec, named("title", "Shop"))
	assertFailed(t, err, `expected to be "Shop", but it was "Home"`)
}

func TestPageSeeTitle_NoPageIsFatal(t *testing.T) {
	ec := startedContext(t, mocks.NewBrowser())

	err := PageSeeTitle(context.Background(), ec, named("title", "x"))

	if err == nil || storylineerrors.IsAssertion(err) {
		t.Errorf("err = %v, want driver error", err)
	}
}

func TestPageMarkup(t *testing.T) {
	b := mocks.NewBrowser().WithPage(testBase+"/", "Home", `<div id="cart">3 items</div>`)
	ec := startedContext(t, b)
	if err := PageGoTo(context.Background(), ec, named("url", "/")); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		fn      model.Func
		markup  string
		failure string
	}{
		{"contains present", PageContainsMarkup, `<div id="cart">`, ""},
		{"contains absent", PageContainsMarkup, "<table>", `does not contain the expected markup "<table>"`},
		{"not contains absent", PageDoesNotContainMarkup, "error", ""},
		{"not contains present", PageDoesNotContainMarkup, "3 items", `contains the markup "3 items" but it should not`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.fn(context.Background(), ec, named("markup", tt.markup))
			if tt.failure == "" {
				if err != nil {
					t.Errorf("error = %v", err)
				}
				return
			}
			assertFailed(t, err, tt.failure)
		})
	}
}

func TestPageWaitForPageToLoad(t *testing.T) {
	tests := []struct {
		timeout string
		want    string
	}{
		{"", "wait"},
		{"5", "wait 5s"},
		{"0.5", "wait 500ms"},
		{"soon", "wait"},
	}

	for _, tt := range tests {
		t.Run(tt.timeout, func(t *testing.T) {
			b := mocks.NewBrowser()
			ec := startedContext(t, b)

			if err := PageWaitForPageToLoad(context.Background(), ec, named("timeout", tt.timeout)); err != nil {
				t.Fatal(err)
			}

			calls := b.Calls()
			if got := calls[len(calls)-1]; got != tt.want {
				t.Errorf("last call = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPageWaitForSeconds(t *testing.T) {
	ec := startedContext(t, mocks.NewBrowser())

	start := time.Now()
	if err := PageWaitForSeconds(context.Background(), ec, named("timeout", "0.02")); err != nil {
		t.Fatal(err)
	}
	if time.Since(start) < 20*time.Millisecond {
		t.Error("PageWaitForSeconds() returned early")
	}

	err := PageWaitForSeconds(context.Background(), ec, named("timeout", "a while"))
	assertFailed(t, err, "cannot be parsed into a number: a while")

	err = PageWaitForSeconds(context.Background(), ec, named("timeout", "1e300"))
	assertFailed(t, err, "cannot be parsed into a number: 1e300")
}

func TestPageWaitForSeconds_Cancelled(t *testing.T) {
	ec := startedContext(t, mocks.NewBrowser())
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := PageWaitForSeconds(ctx, ec, named("timeout", "60"))

	if !errors.Is(err, context.Canceled) {
		t.Errorf("err = %v, want context.Canceled", err)
	}
}

func TestParseSeconds(t *testing.T) {
	tests := []struct {
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"2", 2 * time.Second, false},
		{" 1.5 ", 1500 * time.Millisecond, false},
		{"1,5", 1500 * time.Millisecond, false},
		{"-1", 0, true},
		{"NaN", 0, true},
		{"1e300", 0, true},
		{"9223372037", 0, true},
		{"", 0, true},
	}
	for _, tt := range tests {
		got, err := parseSeconds(tt.in)
		if (err != nil) != tt.wantErr {
			t.Errorf("parseSeconds(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			continue
		}
		if got != tt.want {
			t.Errorf("parseSeconds(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}
