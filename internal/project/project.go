// Package project stores a project's named properties in a YAML or TOML
// document, giving build step editing a persistent target outside an IDE.
package project

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/klauern/installsync/internal/buildstep"
	"github.com/klauern/installsync/internal/logging"
)

// Format is the serialization of a project document.
type Format string

const (
	FormatYAML Format = "yaml"
	FormatTOML Format = "toml"
)

// ErrUnsupportedFormat is returned for files whose extension is not recognized.
var ErrUnsupportedFormat = errors.New("unsupported project file format")

// Document is the on-disk shape of a project file.
type Document struct {
	Name       string            `yaml:"name,omitempty" toml:"name,omitempty"`
	Properties map[string]string `yaml:"properties" toml:"properties"`
}

// File is a project document bound to a path. It implements buildstep.Target.
type File struct {
	path   string
	format Format
	doc    Document
	dirty  bool
}

var _ buildstep.Target = (*File)(nil)

// FormatFor picks the document format from the file extension.
func FormatFor(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML, nil
	case ".toml":
		return FormatTOML, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, path)
	}
}

// Open loads the project file at path. A missing file yields a new document
// that exposes both build event properties, empty. It is written on Save only
// once a property changes.
func Open(path string) (*File, error) {
	format, err := FormatFor(path)
	if err != nil {
		return nil, err
	}
	f := &File{path: path, format: format}

	// #nosec G304 - path is provided by caller
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			f.doc = newDocument(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
			logging.Debug("project file not found, starting empty", logging.Path(path))
			return f, nil
		}
		return nil, fmt.Errorf("failed to read project %q: %w", path, err)
	}

	switch format {
	case FormatTOML:
		err = toml.Unmarshal(data, &f.doc)
	default:
		err = yaml.Unmarshal(data, &f.doc)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse project %q: %w", path, err)
	}
	if f.doc.Properties == nil {
		f.doc.Properties = map[string]string{}
	}
	return f, nil
}

func newDocument(name string) Document {
	props := make(map[string]string, len(buildstep.AllSlots()))
	for _, slot := range buildstep.AllSlots() {
		props[slot.Property()] = ""
	}
	return Document{Name: name, Properties: props}
}

// Path returns the file path the project is bound to.
func (f *File) Path() string {
	return f.path
}

// Format returns the document serialization.
func (f *File) Format() Format {
	return f.format
}

// Name returns the project name recorded in the document.
func (f *File) Name() string {
	return f.doc.Name
}

// Property returns a property value. Properties the document does not
// declare are unavailable.
func (f *File) Property(name string) (string, error) {
	v, ok := f.doc.Properties[name]
	if !ok {
		return "", fmt.Errorf("%w: %s in %s", buildstep.ErrNoProperty, name, f.path)
	}
	return v, nil
}

// SetProperty replaces a declared property value in memory. Call Save to persist.
func (f *File) SetProperty(name, value string) error {
	if _, ok := f.doc.Properties[name]; !ok {
		return fmt.Errorf("%w: %s in %s", buildstep.ErrNoProperty, name, f.path)
	}
	if f.doc.Properties[name] != value {
		f.doc.Properties[name] = value
		f.dirty = true
	}
	return nil
}

// Dirty reports whether there are unsaved changes.
func (f *File) Dirty() bool {
	return f.dirty
}

// Save writes the document if it has changed.
func (f *File) Save() error {
	if !f.dirty {
		return nil
	}

	var data []byte
	switch f.format {
	case FormatTOML:
		var buf bytes.Buffer
		if err := toml.NewEncoder(&buf).Encode(f.doc); err != nil {
			return fmt.Errorf("failed to encode project %q: %w", f.path, err)
		}
		data = buf.Bytes()
	default:
		out, err := yaml.Marshal(f.doc)
		if err != nil {
			return fmt.Errorf("failed to encode project %q: %w", f.path, err)
		}
		data = out
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0o750); err != nil {
		return err
	}
	// #nosec G306 - project files are shared with the build tool
	if err := os.WriteFile(f.path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write project %q: %w", f.path, err)
	}
	f.dirty = false
	logging.Debug("saved project", logging.Path(f.path))
	return nil
}
