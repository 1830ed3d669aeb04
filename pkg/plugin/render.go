package plugin

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/respimg/pkg/section"
	"github.com/matzehuels/respimg/pkg/sizes"
)

// RequestedSize is the image size the host asked for: either a named size
// such as "large" or explicit pixel dimensions.
type RequestedSize struct {
	Name   string `json:"name,omitempty"`
	Width  int    `json:"width,omitempty"`
	Height int    `json:"height,omitempty"`
}

// ImageRequest is the host's request for the sizes attribute of one image.
type ImageRequest struct {
	Sizes        string         `json:"sizes"` // Host default, ending in ", <width>px"
	Size         RequestedSize  `json:"size"`
	Src          *string        `json:"src,omitempty"`
	Meta         map[string]any `json:"meta,omitempty"`
	AttachmentID int            `json:"attachment_id,omitempty"`
}

// Render is one page render: a section stack over the plugin's registry.
type Render struct {
	ID     string
	plugin *Plugin
	stack  *section.Stack
}

// NewRender creates a render with its own empty section stack.
func (p *Plugin) NewRender() *Render {
	return &Render{
		ID:     uuid.NewString(),
		plugin: p,
		stack:  section.NewStack(p.registry, p.diag),
	}
}

// Begin starts section id with the given context.
func (r *Render) Begin(id string, ctx any) {
	pushed := r.stack.Begin(id, ctx)
	r.plugin.hooks.OnSectionBegin(context.Background(), id, pushed)
}

// End ends section id.
func (r *Render) End(id string) {
	removed := r.stack.End(id)
	r.plugin.hooks.OnSectionEnd(context.Background(), id, removed)
}

// Active returns the innermost active section.
func (r *Render) Active() (section.Activation, bool) {
	return r.stack.Top()
}

// Depth returns the number of active sections.
func (r *Render) Depth() int {
	return r.stack.Len()
}

// ComputeSizes returns the sizes attribute for req.
//
// Outside any section, or when the plugin found no sections during setup,
// req.Sizes is returned unchanged. Inside a section the image width is
// parsed from req.Sizes, the section's expression is generated and the
// post-processor's result is returned. A req.Sizes without a trailing
// ", <n>px" fails with an INVALID_SIZES error.
func (r *Render) ComputeSizes(ctx context.Context, req ImageRequest) (string, error) {
	p := r.plugin
	if !p.Subscribed() {
		return req.Sizes, nil
	}

	top, ok := r.stack.Top()
	if !ok {
		p.hooks.OnSizesComputed(ctx, "", 0, nil)
		return req.Sizes, nil
	}
	def, ok := p.registry.Get(top.Section)
	if !ok {
		return req.Sizes, nil
	}

	start := time.Now()
	width, err := sizes.ParseWidth(req.Sizes)
	if err != nil {
		p.hooks.OnSizesComputed(ctx, def.ID, time.Since(start), err)
		return "", err
	}

	generated := p.memo.Generate(ctx, width, def)
	out := p.post.PostProcessSizes(ctx, PostProcessInput{
		Sizes:   generated,
		Request: req,
		Section: def,
		Context: top.Context,
	})

	p.hooks.OnSizesComputed(ctx, def.ID, time.Since(start), nil)
	p.logger.Debug("computed sizes", "render", r.ID, "section", def.ID, "width", width, "sizes", out)
	return out, nil
}
