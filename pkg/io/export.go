package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/matzehuels/respimg/pkg/errors"
	"github.com/matzehuels/respimg/pkg/section"
)

func newFileDoc(defs []section.Definition) fileDoc {
	doc := fileDoc{Sections: make([]fileSection, 0, len(defs))}
	for _, def := range defs {
		s := fileSection{ID: def.ID, Sizes: make([]fileRule, len(def.Sizes))}
		for i, r := range def.Sizes {
			fr := fileRule{ContainerMaxWidth: string(r.ContainerMaxWidth)}
			if r.ScreenMinWidth != nil {
				v := string(*r.ScreenMinWidth)
				fr.ScreenMinWidth = &v
			}
			if r.ScreenMaxWidth != nil {
				v := string(*r.ScreenMaxWidth)
				fr.ScreenMaxWidth = &v
			}
			s.Sizes[i] = fr
		}
		doc.Sections = append(doc.Sections, s)
	}
	return doc
}

// Write encodes defs to w in the given format.
func Write(w io.Writer, f Format, defs []section.Definition) error {
	switch f {
	case FormatJSON:
		return WriteJSON(w, defs)
	case FormatTOML:
		return WriteTOML(w, defs)
	case FormatYAML:
		return WriteYAML(w, defs)
	}
	return errors.New(errors.ErrCodeInvalidFormat, "unknown section file format %q", f)
}

// WriteJSON encodes defs as an indented JSON object with a "sections" array.
func WriteJSON(w io.Writer, defs []section.Definition) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(newFileDoc(defs))
}

// WriteTOML encodes defs as a TOML [[sections]] array of tables.
func WriteTOML(w io.Writer, defs []section.Definition) error {
	return toml.NewEncoder(w).Encode(newFileDoc(defs))
}

// WriteYAML encodes defs as a YAML document with a "sections" sequence.
func WriteYAML(w io.Writer, defs []section.Definition) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(newFileDoc(defs)); err != nil {
		return err
	}
	return enc.Close()
}

// ExportFile writes defs to path, choosing the format from its extension.
func ExportFile(path string, defs []section.Definition) error {
	f, err := FormatFromPath(path)
	if err != nil {
		return err
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := Write(file, f, defs); err != nil {
		file.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return file.Close()
}
