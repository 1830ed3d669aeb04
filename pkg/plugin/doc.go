// Package plugin wires sections, the section stack and the sizes generator
// together behind the calls a page renderer makes.
//
// # Lifecycle
//
// A [Plugin] is created once per process. [Plugin.Setup] asks the configured
// [SectionSource] to register sections; only if at least one section was
// registered does the plugin start computing sizes. That decision is made
// once and never revisited, so a plugin without sections passes every host
// sizes string through unchanged.
//
//	p := plugin.New(plugin.Options{
//	    Source: io.NewFileSource("sections.toml"),
//	    Logger: logger,
//	})
//	if err := p.Setup(ctx); err != nil {
//	    return err
//	}
//
// # Rendering
//
// While rendering, callers bracket regions with [Plugin.BeginSection] and
// [Plugin.EndSection]. When the host computes the sizes attribute of an
// image it calls [Plugin.ComputeSizes]:
//
//	p.BeginSection("single-content", map[string]any{"columns": 2})
//	sizes, err := p.ComputeSizes(ctx, plugin.ImageRequest{
//	    Sizes: "(max-width: 1024px) 100vw, 1024px",
//	})
//	p.EndSection("single-content")
//
// The generated expression is handed to the [SizesPostProcessor] together
// with the request, the active section and the context given to
// BeginSection; its result is returned as is.
//
// # Concurrency
//
// The Plugin's own Begin/End/Compute methods share one section stack and are
// meant for a single render at a time. Concurrent renders each take their own
// [Render] from [Plugin.NewRender]; renders share the plugin's section
// registry, which must not change once they start.
package plugin
