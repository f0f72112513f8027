package watch

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"paperwatch/internal/paper"
)

// Notifier receives the flat deduplicated sequence an incremental cycle
// surfaced.
type Notifier interface {
	Name() string
	Notify(ctx context.Context, papers []paper.Enriched) error
}

// Archiver records surfaced papers for later feed serving.
type Archiver interface {
	StoreCycle(ctx context.Context, papers []paper.Enriched) error
}

// Watcher invokes the engine on a wall-clock interval and hands results
// to the archive and the notifiers. One cycle runs to completion before
// the next tick is honored.
type Watcher struct {
	engine    *Engine
	registry  RegistrySource
	archive   Archiver
	notifiers []Notifier
	interval  time.Duration
	runOnce   bool
	paused    atomic.Bool
	stopCh    chan struct{}
	stopOnce  sync.Once
	mu        sync.Mutex
	running   bool
}

type WatcherConfig struct {
	Engine    *Engine
	Registry  RegistrySource
	Archive   Archiver
	Notifiers []Notifier
	Interval  time.Duration
	RunOnce   bool
}

func NewWatcher(cfg WatcherConfig) *Watcher {
	if cfg.Interval == 0 {
		cfg.Interval = time.Hour
	}

	return &Watcher{
		engine:    cfg.Engine,
		registry:  cfg.Registry,
		archive:   cfg.Archive,
		notifiers: cfg.Notifiers,
		interval:  cfg.Interval,
		runOnce:   cfg.RunOnce,
		stopCh:    make(chan struct{}),
	}
}

// Run blocks until the context is canceled or Stop is called. Cycle
// failures are logged, not fatal: the next tick retries with the
// un-advanced watermark.
func (w *Watcher) Run(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return fmt.Errorf("watcher already running")
	}
	w.running = true
	w.mu.Unlock()

	defer func() {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
	}()

	if w.runOnce {
		return w.CheckAndNotify(ctx)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	if err := w.CheckAndNotify(ctx); err != nil {
		slog.Error("watch cycle failed", "error", err)
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-w.stopCh:
			return nil
		case <-ticker.C:
			if err := w.CheckAndNotify(ctx); err != nil {
				slog.Error("watch cycle failed", "error", err)
			}
		}
	}
}

// CheckAndNotify runs one incremental cycle and fans the surfaced
// papers out to the archive and notifiers. Notifier failures are logged
// per target; the cycle itself already succeeded by then.
func (w *Watcher) CheckAndNotify(ctx context.Context) error {
	if w.paused.Load() {
		slog.Info("watcher paused, skipping cycle")
		return nil
	}

	results, err := w.engine.CheckNewPapers(ctx)
	if err != nil {
		return err
	}

	keywords, _, err := w.registry.Snapshot()
	if err != nil {
		return fmt.Errorf("load registry: %w", err)
	}

	flat := Flatten(results, keywords)
	if len(flat) == 0 {
		return nil
	}

	if w.archive != nil {
		if err := w.archive.StoreCycle(ctx, flat); err != nil {
			slog.Error("archiving surfaced papers failed", "error", err)
		}
	}

	for _, n := range w.notifiers {
		if err := n.Notify(ctx, flat); err != nil {
			slog.Error("notification failed", "notifier", n.Name(), "error", err)
		}
	}

	return nil
}

func (w *Watcher) Pause() {
	w.paused.Store(true)
	slog.Info("watcher paused")
}

func (w *Watcher) Resume() {
	w.paused.Store(false)
	slog.Info("watcher resumed")
}

// Processing reports whether cycles are currently being executed (the
// inverse of paused).
func (w *Watcher) Processing() bool {
	return !w.paused.Load()
}

func (w *Watcher) Stop() {
	w.stopOnce.Do(func() { close(w.stopCh) })
}
