package catalog

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dshills/snipstorm/internal/engine/graph"
	"github.com/dshills/snipstorm/internal/event"
)

const tomlCatalog = `
[[snippets]]
name = "greeting"

[[snippets.body]]
kind = "text"
text = "Hello "

[[snippets.body]]
kind = "placeholder"
id = "who"

[[snippets.body.body]]
kind = "text"
text = "John"

[[snippets.tabs]]
num = 1
field = "who"
`

const yamlCatalog = `
snippets:
  - name: shout
    body:
      - kind: placeholder
        id: word
        body:
          - kind: text
            text: go
      - kind: transformation
        source: "field:word"
        pattern: "(.+)"
        format: '\U$1'
    tabs:
      - num: 1
        field: word
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing %s: %v", name, err)
	}
	return path
}

func TestLoadFile_TOML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snips.toml", tomlCatalog)

	defs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(defs) != 1 {
		t.Fatalf("got %d definitions, want 1", len(defs))
	}

	def := defs[0]
	if def.Name != "greeting" {
		t.Errorf("Name = %q, want greeting", def.Name)
	}
	if len(def.Body) != 2 || def.Body[1].Kind != graph.KindPlaceholder {
		t.Errorf("body = %+v", def.Body)
	}
	if len(def.Tabs) != 1 || def.Tabs[0].Field != "who" {
		t.Errorf("tabs = %+v", def.Tabs)
	}

	// The decoded definition must build.
	if _, _, err := graph.Build(def); err != nil {
		t.Errorf("decoded definition does not build: %v", err)
	}
}

func TestLoadFile_YAML(t *testing.T) {
	path := writeFile(t, t.TempDir(), "snips.yaml", yamlCatalog)

	defs, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(defs) != 1 || defs[0].Name != "shout" {
		t.Fatalf("defs = %+v", defs)
	}
	if defs[0].Body[1].Format != `\U$1` {
		t.Errorf("Format = %q, want literal backslash-U", defs[0].Body[1].Format)
	}
	if _, _, err := graph.Build(defs[0]); err != nil {
		t.Errorf("decoded definition does not build: %v", err)
	}
}

func TestLoadFile_Errors(t *testing.T) {
	dir := t.TempDir()

	t.Run("unsupported extension", func(t *testing.T) {
		path := writeFile(t, dir, "snips.json", "{}")
		if _, err := LoadFile(path); err == nil {
			t.Error("expected error for unsupported extension")
		}
	})

	t.Run("malformed toml", func(t *testing.T) {
		path := writeFile(t, dir, "bad.toml", "not [valid")
		if _, err := LoadFile(path); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("unnamed snippet", func(t *testing.T) {
		path := writeFile(t, dir, "anon.yaml", "snippets:\n  - body: []\n")
		if _, err := LoadFile(path); err == nil || !strings.Contains(err.Error(), "no name") {
			t.Errorf("err = %v, want unnamed snippet error", err)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadFile(filepath.Join(dir, "gone.toml")); err == nil {
			t.Error("expected error for missing file")
		}
	})
}

func TestIsCatalogFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"a.toml", true},
		{"a.yaml", true},
		{"a.yml", true},
		{"A.TOML", true},
		{"a.json", false},
		{"a.toml.bak", false},
		{"toml", false},
	}
	for _, tt := range tests {
		if got := IsCatalogFile(tt.path); got != tt.want {
			t.Errorf("IsCatalogFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.toml", tomlCatalog)
	writeFile(t, dir, "b.yaml", yamlCatalog)
	writeFile(t, dir, "ignored.txt", "not a catalog")

	r := NewRegistry()
	if err := LoadDir(r, dir); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	names := r.Names()
	if len(names) != 2 || names[0] != "greeting" || names[1] != "shout" {
		t.Errorf("Names() = %v, want [greeting shout]", names)
	}
}

func TestLoadDir_PartialFailure(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "good.toml", tomlCatalog)
	writeFile(t, dir, "bad.toml", "not [valid")

	r := NewRegistry()
	err := LoadDir(r, dir)
	if err == nil {
		t.Fatal("expected error reporting the bad file")
	}
	// The good file still loads.
	if _, ok := r.Get("greeting"); !ok {
		t.Error("good file should load despite a bad sibling")
	}
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Put(graph.Definition{Name: "one"})
	r.Put(graph.Definition{Name: "two"})
	r.Put(graph.Definition{Name: "one"}) // replace, not duplicate

	if r.Len() != 2 {
		t.Errorf("Len() = %d, want 2", r.Len())
	}
	if _, ok := r.Get("one"); !ok {
		t.Error("Get(one) failed")
	}

	r.Remove("one")
	if _, ok := r.Get("one"); ok {
		t.Error("Remove(one) did not take")
	}
}

func TestWatcher_Reload(t *testing.T) {
	dir := t.TempDir()
	r := NewRegistry()
	bus := event.NewBus()

	reloaded := make(chan event.Event, 1)
	bus.Subscribe(event.TopicCatalogReloaded, func(ev event.Event) {
		select {
		case reloaded <- ev:
		default:
		}
	})

	w, err := NewWatcher(r, dir, bus)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Close()

	writeFile(t, dir, "new.toml", tomlCatalog)

	select {
	case ev := <-reloaded:
		if !strings.HasSuffix(ev.Payload.(string), "new.toml") {
			t.Errorf("payload = %v, want the file path", ev.Payload)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for catalog reload")
	}

	if _, ok := r.Get("greeting"); !ok {
		t.Error("watcher did not load the new file into the registry")
	}
}

func TestWatcher_RemovedFileDropsSnippets(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "doomed.toml", tomlCatalog)

	r := NewRegistry()
	if err := LoadDir(r, dir); err != nil {
		t.Fatalf("LoadDir failed: %v", err)
	}

	bus := event.NewBus()
	changed := make(chan string, 4)
	bus.Subscribe(event.TopicCatalogReloaded, func(ev event.Event) {
		select {
		case changed <- ev.Payload.(string):
		default:
		}
	})

	// NewWatcher indexes the pre-existing file, so its snippets are
	// droppable even though the watcher never saw them load.
	w, err := NewWatcher(r, dir, bus)
	if err != nil {
		t.Fatalf("NewWatcher failed: %v", err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	w.Start(ctx)
	defer w.Close()

	if err := os.Remove(path); err != nil {
		t.Fatalf("removing catalog file: %v", err)
	}

	select {
	case got := <-changed:
		if !strings.HasSuffix(got, "doomed.toml") {
			t.Errorf("event payload = %q, want the removed path", got)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for catalog removal")
	}

	if _, ok := r.Get("greeting"); ok {
		t.Error("snippets from a removed file must leave the registry")
	}
}
