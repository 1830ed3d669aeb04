package plugin

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/matzehuels/respimg/pkg/cache"
	"github.com/matzehuels/respimg/pkg/diag"
	rerrors "github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/observability"
	"github.com/matzehuels/respimg/pkg/section"
)

func heroDef() section.Definition {
	return section.Definition{
		ID: "hero",
		Sizes: []section.SizeRule{
			{ScreenMinWidth: section.Bound("1200px"), ContainerMaxWidth: "800px"},
			{ScreenMaxWidth: section.Bound("600px"), ContainerMaxWidth: "400px"},
		},
	}
}

func sidebarDef() section.Definition {
	return section.Definition{
		ID:    "sidebar",
		Sizes: []section.SizeRule{{ScreenMinWidth: section.Bound("768px"), ContainerMaxWidth: "300px"}},
	}
}

// newTestPlugin creates a set-up plugin with hero and sidebar registered.
func newTestPlugin(t *testing.T, opts Options) (*Plugin, *diag.Recorder) {
	t.Helper()
	rec := &diag.Recorder{}
	if opts.Sink == nil {
		opts.Sink = rec
	}
	if opts.Source == nil {
		opts.Source = Definitions{heroDef(), sidebarDef()}
	}
	p := New(opts)
	if err := p.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	return p, rec
}

func TestComputeSizesOutsideSection(t *testing.T) {
	p, _ := newTestPlugin(t, Options{})

	in := "(max-width: 1024px) 100vw,   1024px "
	got, err := p.ComputeSizes(context.Background(), ImageRequest{Sizes: in})
	if err != nil {
		t.Fatalf("ComputeSizes: %v", err)
	}
	if got != in {
		t.Errorf("ComputeSizes() = %q, want input unchanged %q", got, in)
	}

	// Outside a section even unparseable input passes through.
	if got, err := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "garbage"}); err != nil || got != "garbage" {
		t.Errorf("ComputeSizes(garbage) = %q, %v", got, err)
	}
}

func TestComputeSizesInsideSection(t *testing.T) {
	p, _ := newTestPlugin(t, Options{})

	p.BeginSection("hero", nil)
	got, err := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "(max-width: 300px) 100vw, 300px"})
	if err != nil {
		t.Fatalf("ComputeSizes: %v", err)
	}
	want := "(max-width: 600px) 400px, (min-width: 1200px) 800px, 300px"
	if got != want {
		t.Errorf("ComputeSizes() = %q, want %q", got, want)
	}

	p.BeginSection("sidebar", nil)
	got, _ = p.ComputeSizes(context.Background(), ImageRequest{Sizes: "(max-width: 150px) 100vw, 150px"})
	if got != "(min-width: 768px) 300px, 150px" {
		t.Errorf("nested ComputeSizes() = %q", got)
	}

	p.EndSection("sidebar")
	p.EndSection("hero")
	got, _ = p.ComputeSizes(context.Background(), ImageRequest{Sizes: "x, 10px"})
	if got != "x, 10px" {
		t.Errorf("after EndSection ComputeSizes() = %q, want passthrough", got)
	}
}

func TestComputeSizesParseError(t *testing.T) {
	p, _ := newTestPlugin(t, Options{})
	p.BeginSection("hero", nil)

	got, err := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "300px"})
	if err == nil {
		t.Fatalf("ComputeSizes(300px) = %q, want error", got)
	}
	var pe *rerrors.ParseError
	if !errors.As(err, &pe) || pe.Input != "300px" {
		t.Errorf("error = %v, want *ParseError for 300px", err)
	}
	if !rerrors.Is(err, rerrors.ErrCodeInvalidSizes) {
		t.Errorf("error code = %q", rerrors.GetCode(err))
	}
}

func TestPostProcessorReceivesEverything(t *testing.T) {
	var got PostProcessInput
	pp := PostProcessorFunc(func(_ context.Context, in PostProcessInput) string {
		got = in
		return in.Sizes + " [filtered]"
	})
	p, _ := newTestPlugin(t, Options{PostProcessor: pp})

	src := "https://example.com/a.jpg"
	req := ImageRequest{
		Sizes:        "(max-width: 300px) 100vw, 300px",
		Size:         RequestedSize{Width: 300, Height: 200},
		Src:          &src,
		Meta:         map[string]any{"width": 300},
		AttachmentID: 7,
	}
	ctxData := map[string]string{"template": "single"}

	p.BeginSection("hero", ctxData)
	out, err := p.ComputeSizes(context.Background(), req)
	if err != nil {
		t.Fatalf("ComputeSizes: %v", err)
	}

	if out != "(max-width: 600px) 400px, (min-width: 1200px) 800px, 300px [filtered]" {
		t.Errorf("ComputeSizes() = %q, want post-processed result", out)
	}
	if got.Sizes != "(max-width: 600px) 400px, (min-width: 1200px) 800px, 300px" {
		t.Errorf("post-processor Sizes = %q", got.Sizes)
	}
	if !reflect.DeepEqual(got.Request, req) {
		t.Errorf("post-processor Request = %+v, want %+v", got.Request, req)
	}
	if !got.Section.Equal(heroDef()) {
		t.Errorf("post-processor Section = %+v", got.Section)
	}
	if !reflect.DeepEqual(got.Context, ctxData) {
		t.Errorf("post-processor Context = %v, want %v", got.Context, ctxData)
	}
}

func TestChain(t *testing.T) {
	upper := PostProcessorFunc(func(_ context.Context, in PostProcessInput) string { return strings.ToUpper(in.Sizes) })
	suffix := PostProcessorFunc(func(_ context.Context, in PostProcessInput) string { return in.Sizes + "!" })

	got := Chain{upper, nil, suffix}.PostProcessSizes(context.Background(), PostProcessInput{Sizes: "a"})
	if got != "A!" {
		t.Errorf("Chain = %q, want A!", got)
	}
}

func TestSetupWithoutSectionsNeverComputes(t *testing.T) {
	p := New(Options{Source: Definitions{{ID: "invalid"}}, Sink: &diag.Recorder{}})
	if err := p.Setup(context.Background()); err != nil {
		t.Fatalf("Setup: %v", err)
	}
	if p.Subscribed() {
		t.Fatal("plugin without valid sections should not be subscribed")
	}

	// Sections registered after setup do not change the decision.
	if err := p.RegisterSection(heroDef()); err != nil {
		t.Fatalf("RegisterSection: %v", err)
	}
	_ = p.Setup(context.Background())
	p.BeginSection("hero", nil)

	got, err := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "300px"})
	if err != nil || got != "300px" {
		t.Errorf("ComputeSizes() = %q, %v; want passthrough without parsing", got, err)
	}
	if p.Subscribed() {
		t.Error("second Setup must not re-evaluate the subscription")
	}
}

func TestComputeBeforeSetupPassesThrough(t *testing.T) {
	p := New(Options{})
	_ = p.RegisterSection(heroDef())
	p.BeginSection("hero", nil)

	if got, _ := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "a, 300px"}); got != "a, 300px" {
		t.Errorf("ComputeSizes before Setup = %q, want passthrough", got)
	}
}

func TestSetupSourceError(t *testing.T) {
	boom := errors.New("boom")
	src := Sources{
		Definitions{heroDef()},
		SourceFunc(func(context.Context, Registrar) error { return boom }),
		Definitions{sidebarDef()},
	}
	p := New(Options{Source: src})

	err := p.Setup(context.Background())
	if !errors.Is(err, boom) {
		t.Fatalf("Setup error = %v, want boom", err)
	}
	if !p.Subscribed() {
		t.Error("sections registered before the error should still activate the plugin")
	}
	if p.Registry().IsRegistered("sidebar") {
		t.Error("sources after a failing one should not run")
	}
}

func TestSetDebug(t *testing.T) {
	p, rec := newTestPlugin(t, Options{})

	p.BeginSection("missing", nil)
	p.EndSection("hero")
	if len(rec.Records()) != 0 {
		t.Fatalf("diagnostics before SetDebug: %v", rec.Records())
	}

	p.SetDebug(true)
	if !p.Debug() {
		t.Error("Debug() = false after SetDebug(true)")
	}
	p.BeginSection("missing", nil)
	p.EndSection("hero")
	_ = p.RegisterSection(heroDef())

	want := []diag.Kind{diag.KindUnknownSection, diag.KindEndWithoutBegin, diag.KindDuplicateSection}
	if got := rec.Kinds(); !reflect.DeepEqual(got, want) {
		t.Errorf("diagnostics = %v, want %v", got, want)
	}
}

func TestReregisteredSectionIsUsed(t *testing.T) {
	p, _ := newTestPlugin(t, Options{})
	_ = p.RegisterSection(section.Definition{
		ID:    "hero",
		Sizes: []section.SizeRule{{ScreenMinWidth: section.Bound("960px"), ContainerMaxWidth: "640px"}},
	})

	p.BeginSection("hero", nil)
	got, _ := p.ComputeSizes(context.Background(), ImageRequest{Sizes: "a, 320px"})
	if got != "(min-width: 960px) 640px, 320px" {
		t.Errorf("ComputeSizes() = %q, want the second definition", got)
	}
}

func TestRendersAreIndependent(t *testing.T) {
	p, _ := newTestPlugin(t, Options{})

	a, b := p.NewRender(), p.NewRender()
	if a.ID == "" || a.ID == b.ID {
		t.Errorf("render ids = %q, %q; want distinct", a.ID, b.ID)
	}

	a.Begin("hero", nil)
	if b.Depth() != 0 || p.DefaultRender().Depth() != 0 {
		t.Error("Begin on one render must not affect others")
	}
	if act, ok := a.Active(); !ok || act.Section != "hero" {
		t.Errorf("Active() = %v, %v", act, ok)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			r := p.NewRender()
			r.Begin("sidebar", nil)
			got, err := r.ComputeSizes(context.Background(), ImageRequest{Sizes: "a, 100px"})
			if err != nil || got != "(min-width: 768px) 300px, 100px" {
				t.Errorf("concurrent ComputeSizes = %q, %v", got, err)
			}
			r.End("sidebar")
		}()
	}
	wg.Wait()
}

func TestComputeSizesUsesCache(t *testing.T) {
	ctx := context.Background()
	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	p, _ := newTestPlugin(t, Options{Cache: fc})
	p.BeginSection("hero", nil)

	first, _ := p.ComputeSizes(ctx, ImageRequest{Sizes: "a, 300px"})
	key := cache.NewDefaultKeyer().SizesKey(300, heroDef())
	if data, hit, _ := fc.Get(ctx, key); !hit || string(data) != first {
		t.Errorf("cache entry = %q (hit %v), want %q", data, hit, first)
	}
}

// countingHooks counts section events.
type countingHooks struct {
	observability.NoopSectionHooks
	mu                         sync.Mutex
	registered, rejected       int
	begins, ends, computations int
}

func (h *countingHooks) OnSectionRegistered(_ context.Context, _ string, err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if err != nil {
		h.rejected++
		return
	}
	h.registered++
}

func (h *countingHooks) OnSectionBegin(context.Context, string, bool) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.begins++
}

func (h *countingHooks) OnSectionEnd(context.Context, string, int) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.ends++
}

func (h *countingHooks) OnSizesComputed(context.Context, string, time.Duration, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.computations++
}

func TestHooks(t *testing.T) {
	h := &countingHooks{}
	p, _ := newTestPlugin(t, Options{Hooks: h, Source: Definitions{heroDef(), {ID: "bad"}}})

	p.BeginSection("hero", nil)
	_, _ = p.ComputeSizes(context.Background(), ImageRequest{Sizes: "a, 1px"})
	p.EndSection("hero")

	if h.registered != 1 || h.rejected != 1 || h.begins != 1 || h.ends != 1 || h.computations != 1 {
		t.Errorf("hooks = %+v", h)
	}
}
