package config

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const reloadDebounce = 200 * time.Millisecond

// Holder keeps the current configuration and supports hot reloading when the
// config file or the Lua overlay changes on disk. A reload that fails to load
// or validate leaves the previous configuration in place.
type Holder struct {
	mu      sync.RWMutex
	current Config
	load    func() (Config, error)
	logger  *zap.Logger

	listenerMu sync.Mutex
	listeners  []func(Config)

	watcher *fsnotify.Watcher
}

// NewHolder executes the newHolder function.
func NewHolder(initial Config, load func() (Config, error), logger *zap.Logger) *Holder {
	return &Holder{
		current: initial,
		load:    load,
		logger:  logger,
	}
}

// Get returns the current configuration.
func (h *Holder) Get() Config {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Subscribe registers a listener invoked after each successful reload.
func (h *Holder) Subscribe(listener func(Config)) {
	h.listenerMu.Lock()
	defer h.listenerMu.Unlock()
	h.listeners = append(h.listeners, listener)
}

// Reload executes the reload method.
func (h *Holder) Reload() error {
	newCfg, err := h.load()
	if err != nil {
		h.logger.Error("config reload failed; keeping previous config", zap.Error(err))
		return fmt.Errorf("reload config: %w", err)
	}

	h.mu.Lock()
	h.current = newCfg
	h.mu.Unlock()

	h.logger.Info("config reloaded",
		zap.Int("ring_buffer_size", newCfg.RingBufferSize),
		zap.Float64("default_volume", newCfg.DefaultVolume),
		zap.Bool("enable_eq", newCfg.EnableEQ),
		zap.Int("eq_bands", len(newCfg.EQBands)),
	)

	h.listenerMu.Lock()
	listeners := make([]func(Config), len(h.listeners))
	copy(listeners, h.listeners)
	h.listenerMu.Unlock()

	for _, listener := range listeners {
		listener(newCfg)
	}
	return nil
}

// Watch observes the given files and reloads on change until ctx is done.
func (h *Holder) Watch(ctx context.Context, paths ...string) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create config watcher: %w", err)
	}
	h.watcher = watcher

	watched := 0
	for _, path := range paths {
		if path == "" {
			continue
		}
		if err := watcher.Add(path); err != nil {
			h.logger.Warn("cannot watch config file", zap.String("path", path), zap.Error(err))
			continue
		}
		watched++
	}
	if watched == 0 {
		_ = watcher.Close()
		h.watcher = nil
		return nil
	}

	go h.run(ctx)
	return nil
}

// Close executes the close method.
func (h *Holder) Close() error {
	if h.watcher == nil {
		return nil
	}
	return h.watcher.Close()
}

func (h *Holder) run(ctx context.Context) {
	var debounce *time.Timer
	defer func() {
		if debounce != nil {
			debounce.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case event, ok := <-h.watcher.Events:
			if !ok {
				return
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
				continue
			}
			h.logger.Debug("config file changed", zap.String("path", event.Name))
			// Editors often produce bursts of events for one save.
			if debounce != nil {
				debounce.Stop()
			}
			debounce = time.AfterFunc(reloadDebounce, func() {
				_ = h.Reload()
			})
		case err, ok := <-h.watcher.Errors:
			if !ok {
				return
			}
			h.logger.Warn("config watcher error", zap.Error(err))
		}
	}
}
