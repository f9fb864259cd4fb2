package integration

import (
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/storyline/storyline/internal/model"
	"github.com/storyline/storyline/internal/output"
	"github.com/storyline/storyline/internal/runner"
	"github.com/storyline/storyline/internal/testing/mocks"
)

func quiet() *output.Writer {
	return output.NewWithWriters(io.Discard, io.Discard, false)
}

func TestShopProject_Loads(t *testing.T) {
	p := loadProject(t, "shop")

	if len(p.fixture.Stories) != 2 {
		t.Fatalf("len(Stories) = %d, want 2", len(p.fixture.Stories))
	}
	if len(p.fixture.InvalidFiles) != 1 || !strings.HasSuffix(p.fixture.InvalidFiles[0].Path, "broken.acc") {
		t.Errorf("InvalidFiles = %+v", p.fixture.InvalidFiles)
	}
	if !strings.Contains(p.fixture.InvalidFiles[0].Err.Error(), "I click the big red button") {
		t.Errorf("invalid file error = %v", p.fixture.InvalidFiles[0].Err)
	}
	if p.settings.Pages["cart"] != "/cart" {
		t.Errorf("Pages = %v", p.settings.Pages)
	}
}

func TestShopProject_Sequential(t *testing.T) {
	p := loadProject(t, "shop")

	result, err := runner.NewSequential(p.factory(shopSite, nil, nil)).WithOutput(quiet()).
		RunStories(context.Background(), p.settings, p.fixture, nil)
	if err != nil {
		t.Fatalf("RunStories() error = %v", err)
	}

	sum := result.Summary()
	if sum.Scenarios != (model.Counts{Total: 4, Passed: 3, Failed: 1}) {
		t.Errorf("Scenarios = %+v", sum.Scenarios)
	}
	if sum.InvalidFiles != 1 {
		t.Errorf("InvalidFiles = %d", sum.InvalidFiles)
	}
	if result.Successful() {
		t.Error("Successful() = true with a failed scenario")
	}

	failed := result.FailedScenarios()
	if len(failed) != 1 || failed[0].Title != "Wrong title" {
		t.Fatalf("FailedScenarios() = %v", failed)
	}
	thens := failed[0].Thens
	if thens[0].Message() != `The page title was expected to be "Results", but it was "Search".` {
		t.Errorf("failure message = %q", thens[0].Message())
	}
	if thens[1].Status() != model.Pending {
		t.Errorf("step after failure = %v, want pending", thens[1].Status())
	}
}

func TestShopProject_ParallelMatchesSequential(t *testing.T) {
	seq := loadProject(t, "shop")
	if _, err := runner.NewSequential(seq.factory(shopSite, nil, nil)).WithOutput(quiet()).
		RunStories(context.Background(), seq.settings, seq.fixture, nil); err != nil {
		t.Fatal(err)
	}

	par := loadProject(t, "shop")
	par.settings.Workers = 3
	var (
		mu      sync.Mutex
		created []*mocks.Browser
	)
	r := runner.New(par.settings, par.factory(shopSite, &created, &mu), quiet())
	result, err := r.RunStories(context.Background(), par.settings, par.fixture, nil)
	if err != nil {
		t.Fatalf("RunStories() error = %v", err)
	}

	if diff := cmp.Diff(statuses(seq.fixture), statuses(par.fixture)); diff != "" {
		t.Errorf("parallel outcome differs from sequential (-seq +par):\n%s", diff)
	}
	if len(created) != 4 {
		t.Errorf("browsers created = %d, want one per scenario", len(created))
	}
	for _, b := range created {
		if b.Started() {
			t.Error("browser session left open")
		}
	}
	if result.Interrupted {
		t.Error("result marked interrupted")
	}
}

func TestShopProject_Interrupted(t *testing.T) {
	p := loadProject(t, "shop")
	p.settings.Workers = 2
	p.settings.Parallel.GraceDelay = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(10*time.Millisecond, cancel)
	defer cancel()

	start := time.Now()
	result, err := runner.New(p.settings, p.factory(shopSite, nil, nil), quiet()).
		RunStories(ctx, p.settings, p.fixture, nil)
	if err != nil {
		t.Fatalf("RunStories() error = %v", err)
	}
	if !result.Interrupted {
		t.Error("result not marked interrupted")
	}
	if time.Since(start) > 5*time.Second {
		t.Error("interrupt not observed during the grace delay")
	}
	if p.fixture.EndTime.IsZero() {
		t.Error("fixture end time not recorded on interrupt")
	}
}

func TestLojaProject_Portuguese(t *testing.T) {
	p := loadProject(t, "loja")
	var (
		mu      sync.Mutex
		created []*mocks.Browser
	)

	result, err := runner.NewSequential(p.factory(lojaSite, &created, &mu)).WithOutput(quiet()).
		RunStories(context.Background(), p.settings, p.fixture, nil)
	if err != nil {
		t.Fatalf("RunStories() error = %v", err)
	}
	if !result.Successful() {
		t.Errorf("statuses = %v", statuses(p.fixture))
	}
	calls := strings.Join(created[0].Calls(), ",")
	if !strings.Contains(calls, "wait 2s") {
		t.Errorf("browser calls = %s, want explicit 2s wait", calls)
	}
}
