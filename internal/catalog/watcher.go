package catalog

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"pkt.systems/pslog"

	"github.com/dshills/snipstorm/internal/event"
)

// Watcher keeps a registry in sync with catalog files on disk. It is
// the registry's single writer: changed files reload their snippets,
// and removed or renamed-away files drop theirs.
type Watcher struct {
	registry *Registry
	dir      string
	bus      *event.Bus

	watcher *fsnotify.Watcher

	// provided maps a catalog file to the snippet names it last
	// supplied, so a removal can drop exactly those names.
	mu       sync.Mutex
	provided map[string][]string

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// NewWatcher creates a watcher over one catalog directory. Events are
// published on bus (may be nil) under TopicCatalogReloaded. Files
// already present in the directory are indexed so a later removal can
// drop their snippets.
func NewWatcher(r *Registry, dir string, bus *event.Bus) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(dir); err != nil {
		_ = fsw.Close()
		return nil, err
	}
	w := &Watcher{
		registry: r,
		dir:      dir,
		bus:      bus,
		watcher:  fsw,
		provided: make(map[string][]string),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	w.index()
	return w, nil
}

// index records which snippet names each existing catalog file
// provides. Files that fail to decode are skipped; the loader already
// reported them.
func (w *Watcher) index() {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return
	}
	for _, e := range entries {
		if e.IsDir() || !IsCatalogFile(e.Name()) {
			continue
		}
		path := filepath.Join(w.dir, e.Name())
		defs, err := LoadFile(path)
		if err != nil {
			continue
		}
		names := make([]string, 0, len(defs))
		for _, def := range defs {
			names = append(names, def.Name)
		}
		w.provided[path] = names
	}
}

// Start processes file events until the context is cancelled or Close
// is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.loop(ctx)
}

// Close stops the watcher and waits for the event loop to exit.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		close(w.closed)
		_ = w.watcher.Close()
	})
	<-w.done
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.done)
	log := pslog.Ctx(ctx).With("dir", w.dir)

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.closed:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ctx, ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.With("err", err).Warn("catalog watcher error")
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev fsnotify.Event) {
	if !IsCatalogFile(ev.Name) {
		return
	}
	switch {
	case ev.Op&(fsnotify.Write|fsnotify.Create) != 0:
		w.reload(ctx, ev.Name)
	case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
		w.drop(ctx, ev.Name)
	}
}

// reload loads one changed file into the registry, removing any of its
// previous snippets that the new content no longer defines.
func (w *Watcher) reload(ctx context.Context, path string) {
	log := pslog.Ctx(ctx).With("file", path)
	defs, err := LoadFile(path)
	if err != nil {
		log.With("err", err).Warn("catalog reload failed")
		return
	}

	names := make([]string, 0, len(defs))
	current := make(map[string]bool, len(defs))
	for _, def := range defs {
		w.registry.Put(def)
		names = append(names, def.Name)
		current[def.Name] = true
	}

	w.mu.Lock()
	for _, name := range w.provided[path] {
		if !current[name] {
			w.registry.Remove(name)
		}
	}
	w.provided[path] = names
	w.mu.Unlock()

	log.With("snippets", len(defs)).Debug("catalog file reloaded")
	w.publish(path)
}

// drop removes the snippets a deleted or renamed-away file provided.
func (w *Watcher) drop(ctx context.Context, path string) {
	w.mu.Lock()
	names := w.provided[path]
	delete(w.provided, path)
	w.mu.Unlock()

	if len(names) == 0 {
		return
	}
	for _, name := range names {
		w.registry.Remove(name)
	}

	pslog.Ctx(ctx).With("file", path).With("snippets", len(names)).Debug("catalog file removed")
	w.publish(path)
}

func (w *Watcher) publish(path string) {
	if w.bus != nil {
		w.bus.Publish(event.TopicCatalogReloaded, "", path)
	}
}
