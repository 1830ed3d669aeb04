// Package io reads and writes section definition files.
//
// # Formats
//
// Sections can be declared in JSON, TOML or YAML; the format is chosen from
// the file extension. All three share one shape: a top-level "sections"
// list whose entries have an id and a list of size rules.
//
// JSON:
//
//	{
//	  "sections": [
//	    {
//	      "id": "single-content",
//	      "sizes": [
//	        {"screen_min_width": "1200px", "container_max_width": "800px"},
//	        {"screen_max_width": "600px", "container_max_width": "100vw"}
//	      ]
//	    }
//	  ]
//	}
//
// A JSON file may also be a bare array of sections.
//
// TOML:
//
//	[[sections]]
//	id = "single-content"
//
//	  [[sections.sizes]]
//	  screen_min_width = "1200px"
//	  container_max_width = "800px"
//
// YAML:
//
//	sections:
//	  - id: single-content
//	    sizes:
//	      - screen_min_width: 1200px
//	        container_max_width: 800px
//
// # Rule Fields
//
//   - screen_min_width: optional CSS length, lower viewport bound
//   - screen_max_width: optional CSS length, upper viewport bound
//   - container_max_width: CSS length the image container occupies
//   - section_max_width: accepted as an older name for container_max_width
//
// Reading does not validate definitions; that is the job of
// [section.Registry], which reports invalid entries as diagnostics. A file
// that cannot be decoded fails with an INVALID_FORMAT error.
//
// # Registering Files
//
// [FileSource] implements [plugin.SectionSource], registering every
// definition of its files during plugin setup:
//
//	p := plugin.New(plugin.Options{Source: io.NewFileSource("sections.toml")})
//
// [section.Registry]: github.com/matzehuels/respimg/pkg/section.Registry
// [plugin.SectionSource]: github.com/matzehuels/respimg/pkg/plugin.SectionSource
package io
