// Package main is the entry point for the snipstorm host harness.
//
// It loads a snippet catalog, expands a named snippet into a session,
// resolves variables and code, and either prints the rendered text or
// opens an interactive terminal preview.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pkt.systems/pslog"

	"github.com/dshills/snipstorm/internal/catalog"
	"github.com/dshills/snipstorm/internal/event"
	"github.com/dshills/snipstorm/internal/session"
	"github.com/dshills/snipstorm/internal/tui"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	os.Exit(run())
}

type options struct {
	catalogDir  string
	snippet     string
	list        bool
	interactive bool
	watch       bool
	timeout     time.Duration
	showVersion bool
}

func run() int {
	opts := parseFlags()

	if opts.showVersion {
		fmt.Printf("snipstorm %s (%s)\n", version, commit)
		return 0
	}

	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx, cancel := context.WithCancel(pslog.ContextWithLogger(context.Background(), logger))
	defer cancel()

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-signals
		cancel()
	}()

	if opts.catalogDir == "" {
		fmt.Fprintln(os.Stderr, "Error: -catalog is required")
		return 2
	}

	registry := catalog.NewRegistry()
	if err := catalog.LoadDir(registry, opts.catalogDir); err != nil {
		logger.With("err", err).Warn("catalog load incomplete")
	}

	if opts.list {
		for _, name := range registry.Names() {
			fmt.Println(name)
		}
		return 0
	}

	if opts.snippet == "" {
		fmt.Fprintln(os.Stderr, "Error: -snippet is required (or use -list)")
		return 2
	}

	bus := event.NewBus()
	sub := bus.Subscribe("resolve", func(ev event.Event) {
		logger.With("topic", ev.Topic.String()).With("detail", ev.Payload).Warn("resolution event")
	})
	defer sub.Cancel()

	if opts.watch {
		watcher, err := catalog.NewWatcher(registry, opts.catalogDir, bus)
		if err != nil {
			logger.With("err", err).Warn("catalog watcher unavailable")
		} else {
			watcher.Start(ctx)
			defer watcher.Close()
		}
	}

	manager := session.NewManager(registry,
		session.WithBus(bus),
		session.WithTimeout(opts.timeout),
	)
	defer manager.Shutdown(2 * time.Second)

	sess, err := manager.Expand(ctx, opts.snippet)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer func() { _ = manager.Dismiss(sess.ID) }()

	rctx, rcancel := context.WithTimeout(ctx, opts.timeout)
	defer rcancel()
	if err := sess.Resolve(rctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	if opts.interactive {
		ui, err := tui.New(sess)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		text, accepted, err := ui.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if !accepted {
			return 1
		}
		fmt.Println(text)
		return 0
	}

	fmt.Println(sess.Render())
	return 0
}

func parseFlags() options {
	var opts options

	flag.StringVar(&opts.catalogDir, "catalog", "", "Directory of snippet catalog files")
	flag.StringVar(&opts.snippet, "snippet", "", "Snippet name to expand")
	flag.BoolVar(&opts.list, "list", false, "List catalog snippet names and exit")
	flag.BoolVar(&opts.interactive, "tui", false, "Open the interactive terminal preview")
	flag.BoolVar(&opts.watch, "watch", false, "Reload catalog files as they change")
	flag.DurationVar(&opts.timeout, "timeout", 5*time.Second, "Resolution deadline")
	flag.BoolVar(&opts.showVersion, "version", false, "Print version and exit")
	flag.Parse()

	return opts
}
