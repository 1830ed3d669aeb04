package io

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/respimg/pkg/diag"
	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/plugin"
	"github.com/matzehuels/respimg/pkg/section"
)

func heroDef() section.Definition {
	return section.Definition{
		ID: "hero",
		Sizes: []section.SizeRule{
			{ScreenMinWidth: section.Bound("1200px"), ContainerMaxWidth: "800px"},
			{ScreenMinWidth: section.Bound("600px"), ScreenMaxWidth: section.Bound("1199px"), ContainerMaxWidth: "90vw"},
			{ScreenMaxWidth: section.Bound("599px"), ContainerMaxWidth: "100vw"},
		},
	}
}

const heroJSON = `{
  "sections": [
    {
      "id": "hero",
      "sizes": [
        {"screen_min_width": "1200px", "container_max_width": "800px"},
        {"screen_min_width": "600px", "screen_max_width": "1199px", "container_max_width": "90vw"},
        {"screen_max_width": "599px", "container_max_width": "100vw"}
      ]
    }
  ]
}`

const heroTOML = `
[[sections]]
id = "hero"

  [[sections.sizes]]
  screen_min_width = "1200px"
  container_max_width = "800px"

  [[sections.sizes]]
  screen_min_width = "600px"
  screen_max_width = "1199px"
  container_max_width = "90vw"

  [[sections.sizes]]
  screen_max_width = "599px"
  container_max_width = "100vw"
`

const heroYAML = `
sections:
  - id: hero
    sizes:
      - screen_min_width: 1200px
        container_max_width: 800px
      - screen_min_width: 600px
        screen_max_width: 1199px
        container_max_width: 90vw
      - screen_max_width: 599px
        container_max_width: 100vw
`

func TestRead(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, heroJSON},
		{"toml", FormatTOML, heroTOML},
		{"yaml", FormatYAML, heroYAML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			defs, err := Read(strings.NewReader(tt.input), tt.format)
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(defs) != 1 {
				t.Fatalf("Read() returned %d sections, want 1", len(defs))
			}
			if !defs[0].Equal(heroDef()) {
				t.Errorf("Read() = %+v, want %+v", defs[0], heroDef())
			}
		})
	}
}

func TestReadJSONBareArray(t *testing.T) {
	input := `[{"id": "a", "sizes": [{"screen_min_width": "0px", "container_max_width": "100vw"}]}]`
	defs, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(defs) != 1 || defs[0].ID != "a" {
		t.Errorf("ReadJSON() = %+v, want one section 'a'", defs)
	}
}

func TestReadLegacySectionMaxWidth(t *testing.T) {
	input := `{"sections": [{"id": "a", "sizes": [{"screen_min_width": "0px", "section_max_width": "640px"}]}]}`
	defs, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if got := defs[0].Sizes[0].ContainerMaxWidth; got != "640px" {
		t.Errorf("ContainerMaxWidth = %q, want 640px", got)
	}
}

func TestReadKeepsInvalidDefinitions(t *testing.T) {
	input := `{"sections": [{"id": "", "sizes": []}, {"id": "b"}]}`
	defs, err := ReadJSON(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadJSON() error = %v", err)
	}
	if len(defs) != 2 {
		t.Fatalf("ReadJSON() returned %d sections, want 2", len(defs))
	}
	if err := section.Validate(defs[1]); err == nil {
		t.Error("section without sizes should not validate")
	}
}

func TestReadMalformed(t *testing.T) {
	tests := []struct {
		name   string
		format Format
		input  string
	}{
		{"json", FormatJSON, `{"sections": [`},
		{"toml", FormatTOML, `[[sections]`},
		{"yaml", FormatYAML, "sections: [\n  - id: a\n    sizes: {"},
		{"unknown format", Format("xml"), `<sections/>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(strings.NewReader(tt.input), tt.format)
			if !errors.Is(err, errors.ErrCodeInvalidFormat) {
				t.Errorf("Read() error = %v, want INVALID_FORMAT", err)
			}
		})
	}
}

func TestReadYAMLEmpty(t *testing.T) {
	defs, err := ReadYAML(strings.NewReader(""))
	if err != nil {
		t.Fatalf("ReadYAML() error = %v", err)
	}
	if len(defs) != 0 {
		t.Errorf("ReadYAML() = %+v, want no sections", defs)
	}
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr errors.Code
	}{
		{"sections.json", FormatJSON, ""},
		{"conf/Sections.TOML", FormatTOML, ""},
		{"sections.yaml", FormatYAML, ""},
		{"sections.yml", FormatYAML, ""},
		{"sections.xml", "", errors.ErrCodeInvalidFormat},
		{"", "", errors.ErrCodeInvalidPath},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr != "" {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("FormatFromPath(%q) error = %v, want %s", tt.path, err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("FormatFromPath(%q) error = %v", tt.path, err)
			}
			if got != tt.want {
				t.Errorf("FormatFromPath(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}

func TestImportFileNotFound(t *testing.T) {
	_, err := ImportFile(filepath.Join(t.TempDir(), "missing.json"))
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("ImportFile() error = %v, want FILE_NOT_FOUND", err)
	}
}

func TestExportImportRoundTrip(t *testing.T) {
	defs := []section.Definition{heroDef(), {
		ID:    "sidebar",
		Sizes: []section.SizeRule{{ScreenMinWidth: section.Bound("0px"), ContainerMaxWidth: "300px"}},
	}}

	for _, ext := range []string{".json", ".toml", ".yaml"} {
		t.Run(ext, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "sections"+ext)
			if err := ExportFile(path, defs); err != nil {
				t.Fatalf("ExportFile() error = %v", err)
			}
			got, err := ImportFile(path)
			if err != nil {
				t.Fatalf("ImportFile() error = %v", err)
			}
			if len(got) != len(defs) {
				t.Fatalf("ImportFile() returned %d sections, want %d", len(got), len(defs))
			}
			for i := range defs {
				if !got[i].Equal(defs[i]) {
					t.Errorf("section %d = %+v, want %+v", i, got[i], defs[i])
				}
			}
		})
	}
}

func TestWriteJSONOmitsAbsentBounds(t *testing.T) {
	var buf bytes.Buffer
	def := section.Definition{
		ID:    "a",
		Sizes: []section.SizeRule{{ScreenMinWidth: section.Bound("0px"), ContainerMaxWidth: "100vw"}},
	}
	if err := WriteJSON(&buf, []section.Definition{def}); err != nil {
		t.Fatalf("WriteJSON() error = %v", err)
	}
	if strings.Contains(buf.String(), "screen_max_width") {
		t.Errorf("WriteJSON() output contains absent bound:\n%s", buf.String())
	}
	if strings.Contains(buf.String(), "section_max_width") {
		t.Errorf("WriteJSON() output contains legacy key:\n%s", buf.String())
	}
}

func TestFileSourceRegistersSections(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.json")
	second := filepath.Join(dir, "b.yaml")
	if err := os.WriteFile(first, []byte(heroJSON), 0o644); err != nil {
		t.Fatal(err)
	}
	bad := "sections:\n  - id: broken\n    sizes:\n      - screen_max_width: 600px\n        container_max_width: 100vw\n"
	if err := os.WriteFile(second, []byte(bad), 0o644); err != nil {
		t.Fatal(err)
	}

	rec := &diag.Recorder{}
	p := plugin.New(plugin.Options{
		Source: NewFileSource(first, second),
		Sink:   rec,
		Debug:  true,
	})
	if err := p.Setup(context.Background()); err != nil {
		t.Fatalf("Setup() error = %v", err)
	}

	if !p.Registry().IsRegistered("hero") {
		t.Error("hero should be registered")
	}
	if p.Registry().IsRegistered("broken") {
		t.Error("broken should have been rejected")
	}
	if kinds := rec.Kinds(); len(kinds) != 1 || kinds[0] != diag.KindInvalidDefinition {
		t.Errorf("diagnostics = %v, want [%s]", kinds, diag.KindInvalidDefinition)
	}
	if !p.Subscribed() {
		t.Error("plugin should subscribe when a file registered a section")
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	src := NewFileSource(filepath.Join(t.TempDir(), "missing.toml"))
	p := plugin.New(plugin.Options{Source: src})
	err := p.Setup(context.Background())
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("Setup() error = %v, want FILE_NOT_FOUND", err)
	}
	if p.Subscribed() {
		t.Error("plugin should not subscribe without sections")
	}
}
