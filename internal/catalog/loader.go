package catalog

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/dshills/snipstorm/internal/engine/graph"
)

// fileDoc is the on-disk shape of a catalog file: one or more snippet
// definitions.
type fileDoc struct {
	Snippets []graph.Definition `toml:"snippets" yaml:"snippets"`
}

// LoadFile decodes one catalog file. The extension selects the codec:
// .toml, .yaml, or .yml.
func LoadFile(path string) ([]graph.Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading catalog file %s: %w", path, err)
	}

	var doc fileDoc
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		if err := toml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", path, err)
		}
	default:
		return nil, fmt.Errorf("unsupported catalog file %s", path)
	}

	for i, def := range doc.Snippets {
		if def.Name == "" {
			return nil, fmt.Errorf("%s: snippet %d has no name", path, i)
		}
	}
	return doc.Snippets, nil
}

// IsCatalogFile reports whether a path has a recognized extension.
func IsCatalogFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml", ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// LoadDir loads every catalog file directly under dir into the
// registry. Files that fail to decode are reported; the rest still
// load.
func LoadDir(r *Registry, dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading catalog dir %s: %w", dir, err)
	}

	var errs []error
	for _, e := range entries {
		if e.IsDir() || !IsCatalogFile(e.Name()) {
			continue
		}
		defs, err := LoadFile(filepath.Join(dir, e.Name()))
		if err != nil {
			errs = append(errs, err)
			continue
		}
		for _, def := range defs {
			r.Put(def)
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("catalog load: %d file(s) failed: %v", len(errs), errs)
	}
	return nil
}
