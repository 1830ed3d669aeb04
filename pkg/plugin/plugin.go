package plugin

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/respimg/pkg/cache"
	"github.com/matzehuels/respimg/pkg/diag"
	"github.com/matzehuels/respimg/pkg/observability"
	"github.com/matzehuels/respimg/pkg/section"
	"github.com/matzehuels/respimg/pkg/sizes"
)

// Registrar accepts section definitions. *Plugin implements it.
type Registrar interface {
	RegisterSection(def section.Definition) error
}

// SectionSource registers sections during setup.
type SectionSource interface {
	RegisterSections(ctx context.Context, r Registrar) error
}

// SourceFunc adapts a function to the SectionSource interface.
type SourceFunc func(ctx context.Context, r Registrar) error

// RegisterSections calls f(ctx, r).
func (f SourceFunc) RegisterSections(ctx context.Context, r Registrar) error { return f(ctx, r) }

// Sources runs several sources in order and stops at the first error.
type Sources []SectionSource

// RegisterSections implements SectionSource.
func (s Sources) RegisterSections(ctx context.Context, r Registrar) error {
	for _, src := range s {
		if src == nil {
			continue
		}
		if err := src.RegisterSections(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// Definitions is a SectionSource registering a fixed list of definitions.
// Invalid definitions are reported as diagnostics and skipped.
type Definitions []section.Definition

// RegisterSections implements SectionSource.
func (d Definitions) RegisterSections(_ context.Context, r Registrar) error {
	for _, def := range d {
		_ = r.RegisterSection(def)
	}
	return nil
}

// Options configures a Plugin. The zero value is usable.
type Options struct {
	// Source registers sections during Setup.
	Source SectionSource

	// PostProcessor adjusts generated expressions. Defaults to Identity.
	PostProcessor SizesPostProcessor

	// Logger receives debug output and, unless Sink is set, diagnostics.
	// Defaults to log.Default().
	Logger *log.Logger

	// Sink receives diagnostics while debugging is enabled.
	Sink diag.Sink

	// Debug enables diagnostics from the start.
	Debug bool

	// Cache memoizes generated expressions. Defaults to no caching.
	Cache cache.Cache

	// Keyer builds cache keys. Defaults to cache.NewDefaultKeyer().
	Keyer cache.Keyer

	// Hooks receives section events. Defaults to observability.Sections().
	Hooks observability.SectionHooks
}

// Plugin holds the section registry and the default render.
type Plugin struct {
	registry *section.Registry
	diag     *diag.Diagnostics
	source   SectionSource
	post     SizesPostProcessor
	memo     *sizes.Memo
	hooks    observability.SectionHooks
	logger   *log.Logger

	setupMu    sync.Mutex
	setupDone  bool
	subscribed atomic.Bool

	render *Render
}

// New creates a Plugin. Sections can be registered right away; sizes are
// only computed once Setup has run.
func New(opts Options) *Plugin {
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	sink := opts.Sink
	if sink == nil {
		sink = diag.NewLogSink(logger)
	}
	post := opts.PostProcessor
	if post == nil {
		post = Identity{}
	}
	hooks := opts.Hooks
	if hooks == nil {
		hooks = observability.Sections()
	}

	d := diag.New(sink)
	d.SetEnabled(opts.Debug)

	p := &Plugin{
		registry: section.NewRegistry(d),
		diag:     d,
		source:   opts.Source,
		post:     post,
		memo:     sizes.NewMemo(opts.Cache, sizes.WithKeyer(opts.Keyer), sizes.WithLogger(logger)),
		hooks:    hooks,
		logger:   logger,
	}
	p.render = p.NewRender()
	return p
}

// Setup runs the section source and decides whether sizes are computed for
// the rest of the plugin's life. Only the first call has any effect.
//
// Sections registered before a source error stay registered and count
// towards the decision; the error is returned.
func (p *Plugin) Setup(ctx context.Context) error {
	p.setupMu.Lock()
	defer p.setupMu.Unlock()
	if p.setupDone {
		return nil
	}
	p.setupDone = true

	var srcErr error
	if p.source != nil {
		if err := p.source.RegisterSections(ctx, p); err != nil {
			srcErr = fmt.Errorf("register sections: %w", err)
		}
	}

	n := p.registry.Len()
	if n > 0 {
		p.subscribed.Store(true)
	}
	p.logger.Debug("section setup complete", "sections", n, "active", n > 0)
	return srcErr
}

// Subscribed reports whether Setup found sections and sizes are being computed.
func (p *Plugin) Subscribed() bool {
	return p.subscribed.Load()
}

// Registry returns the plugin's section registry.
func (p *Plugin) Registry() *section.Registry {
	return p.registry
}

// RegisterSection validates and stores def. An invalid definition is
// reported as a diagnostic and its validation error returned.
func (p *Plugin) RegisterSection(def section.Definition) error {
	err := p.registry.Register(def)
	p.hooks.OnSectionRegistered(context.Background(), def.ID, err)
	if err == nil {
		p.logger.Debug("registered section", "section", def.ID, "rules", len(def.Sizes))
	}
	return err
}

// SetDebug turns diagnostics on or off.
func (p *Plugin) SetDebug(debug bool) {
	p.diag.SetEnabled(debug)
}

// Debug reports whether diagnostics are enabled.
func (p *Plugin) Debug() bool {
	return p.diag.Enabled()
}

// BeginSection starts a section on the default render. ctx is passed
// untouched to the post-processor for images sized inside the section.
func (p *Plugin) BeginSection(id string, ctx any) {
	p.render.Begin(id, ctx)
}

// EndSection ends a section on the default render.
func (p *Plugin) EndSection(id string) {
	p.render.End(id)
}

// ComputeSizes computes the sizes attribute of an image on the default render.
func (p *Plugin) ComputeSizes(ctx context.Context, req ImageRequest) (string, error) {
	return p.render.ComputeSizes(ctx, req)
}

// DefaultRender returns the render used by the Plugin's own methods.
func (p *Plugin) DefaultRender() *Render {
	return p.render
}

var _ Registrar = (*Plugin)(nil)
