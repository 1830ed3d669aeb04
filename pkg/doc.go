// Package pkg provides the libraries behind respimg, which computes
// section-aware sizes attributes for responsive images.
//
// # Overview
//
// A page is made of layout sections such as a content column or a sidebar.
// Each section declares how wide its images are at different viewport
// widths. While a section is active, the host's default sizes attribute for
// an image is replaced by one generated from the section's rules.
//
//  1. [section] - Definitions, the registry and the per-render section stack
//  2. [sizes] - Sizes expression generation and host width parsing
//  3. [plugin] - Setup, begin/end section and sizes computation for hosts
//  4. [io] - JSON, TOML and YAML section files
//  5. [diag] - Debug-gated diagnostics for misuse
//  6. [cache], [errors], [observability], [buildinfo] - Infrastructure
//
// # Quick Start
//
//	p := plugin.New(plugin.Options{Source: io.NewFileSource("sections.toml")})
//	if err := p.Setup(ctx); err != nil {
//	    return err
//	}
//
//	p.BeginSection("single-content", nil)
//	sizes, err := p.ComputeSizes(ctx, plugin.ImageRequest{
//	    Sizes: "(max-width: 1024px) 100vw, 1024px",
//	})
//	p.EndSection("single-content")
//
// [section]: github.com/matzehuels/respimg/pkg/section
// [sizes]: github.com/matzehuels/respimg/pkg/sizes
// [plugin]: github.com/matzehuels/respimg/pkg/plugin
// [io]: github.com/matzehuels/respimg/pkg/io
// [diag]: github.com/matzehuels/respimg/pkg/diag
// [cache]: github.com/matzehuels/respimg/pkg/cache
// [errors]: github.com/matzehuels/respimg/pkg/errors
// [observability]: github.com/matzehuels/respimg/pkg/observability
// [buildinfo]: github.com/matzehuels/respimg/pkg/buildinfo
package pkg
