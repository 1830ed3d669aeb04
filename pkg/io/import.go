package io

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/plugin"
	"github.com/matzehuels/respimg/pkg/section"
)

// Format is a section file encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatTOML Format = "toml"
	FormatYAML Format = "yaml"
)

// FormatFromPath returns the format implied by the extension of path.
func FormatFromPath(path string) (Format, error) {
	if err := errors.ValidateSectionFile(path); err != nil {
		return "", err
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		return FormatJSON, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return FormatYAML, nil
	}
}

// fileDoc is the on-disk shape shared by all formats.
type fileDoc struct {
	Sections []fileSection `json:"sections" toml:"sections" yaml:"sections"`
}

type fileSection struct {
	ID    string     `json:"id" toml:"id" yaml:"id"`
	Sizes []fileRule `json:"sizes" toml:"sizes" yaml:"sizes"`
}

type fileRule struct {
	ScreenMinWidth    *string `json:"screen_min_width,omitempty" toml:"screen_min_width,omitempty" yaml:"screen_min_width,omitempty"`
	ScreenMaxWidth    *string `json:"screen_max_width,omitempty" toml:"screen_max_width,omitempty" yaml:"screen_max_width,omitempty"`
	ContainerMaxWidth string  `json:"container_max_width,omitempty" toml:"container_max_width,omitempty" yaml:"container_max_width,omitempty"`
	SectionMaxWidth   string  `json:"section_max_width,omitempty" toml:"section_max_width,omitempty" yaml:"section_max_width,omitempty"`
}

func (d fileDoc) definitions() []section.Definition {
	defs := make([]section.Definition, 0, len(d.Sections))
	for _, s := range d.Sections {
		def := section.Definition{ID: s.ID}
		if s.Sizes != nil {
			def.Sizes = make([]section.SizeRule, len(s.Sizes))
		}
		for i, r := range s.Sizes {
			container := r.ContainerMaxWidth
			if container == "" {
				container = r.SectionMaxWidth
			}
			rule := section.SizeRule{ContainerMaxWidth: section.Length(container)}
			if r.ScreenMinWidth != nil {
				rule.ScreenMinWidth = section.Bound(*r.ScreenMinWidth)
			}
			if r.ScreenMaxWidth != nil {
				rule.ScreenMaxWidth = section.Bound(*r.ScreenMaxWidth)
			}
			def.Sizes[i] = rule
		}
		defs = append(defs, def)
	}
	return defs
}

// Read decodes section definitions from r in the given format.
// Definitions are returned in file order and are not validated.
func Read(r io.Reader, f Format) ([]section.Definition, error) {
	switch f {
	case FormatJSON:
		return ReadJSON(r)
	case FormatTOML:
		return ReadTOML(r)
	case FormatYAML:
		return ReadYAML(r)
	}
	return nil, errors.New(errors.ErrCodeInvalidFormat, "unknown section file format %q", f)
}

// ReadJSON decodes a JSON object with a "sections" array, or a bare array of sections.
func ReadJSON(r io.Reader) ([]section.Definition, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}

	var doc fileDoc
	if trimmed := bytes.TrimSpace(data); len(trimmed) > 0 && trimmed[0] == '[' {
		err = json.Unmarshal(trimmed, &doc.Sections)
	} else {
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode JSON sections")
	}
	return doc.definitions(), nil
}

// ReadTOML decodes a TOML document with a [[sections]] array of tables.
func ReadTOML(r io.Reader) ([]section.Definition, error) {
	var doc fileDoc
	if _, err := toml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode TOML sections")
	}
	return doc.definitions(), nil
}

// ReadYAML decodes a YAML document with a "sections" sequence.
// An empty document yields no sections.
func ReadYAML(r io.Reader) ([]section.Definition, error) {
	var doc fileDoc
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil && err != io.EOF {
		return nil, errors.Wrap(errors.ErrCodeInvalidFormat, err, "decode YAML sections")
	}
	return doc.definitions(), nil
}

// ImportFile reads the section file at path, choosing the format from its extension.
func ImportFile(path string) ([]section.Definition, error) {
	f, err := FormatFromPath(path)
	if err != nil {
		return nil, err
	}

	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrap(errors.ErrCodeFileNotFound, err, "section file %s", path)
		}
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer file.Close()

	defs, err := Read(file, f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return defs, nil
}

// FileSource registers the sections of one or more files.
type FileSource struct {
	Paths  []string
	Logger *log.Logger
}

// NewFileSource creates a source for the given files.
func NewFileSource(paths ...string) *FileSource {
	return &FileSource{Paths: paths}
}

// RegisterSections implements plugin.SectionSource. Files are read in
// order; the first unreadable file stops registration. Invalid definitions
// are left to the registrar to report.
func (s *FileSource) RegisterSections(ctx context.Context, r plugin.Registrar) error {
	logger := s.Logger
	if logger == nil {
		logger = log.Default()
	}
	for _, path := range s.Paths {
		if err := ctx.Err(); err != nil {
			return err
		}
		defs, err := ImportFile(path)
		if err != nil {
			return err
		}
		registered := 0
		for _, def := range defs {
			if r.RegisterSection(def) == nil {
				registered++
			}
		}
		logger.Debug("loaded section file", "path", path, "sections", len(defs), "registered", registered)
	}
	return nil
}

var _ plugin.SectionSource = (*FileSource)(nil)
