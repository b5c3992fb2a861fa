// ABOUTME: Typed JSON value over one backend key with explicit two-phase hydration.
// ABOUTME: Writes are write-through and fail-open: memory always takes the new value.
package kv

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"

	"github.com/charmbracelet/log"
)

// Cell holds one typed value persisted under key.
//
// A new cell holds its default and has done no I/O. Hydrate loads the stored
// value once. Update is a read-modify-write whose persistence failures are
// reported to the fault hook and then dropped; the in-memory value is
// authoritative for the rest of the process.
type Cell[T any] struct {
	backend Backend
	key     string
	logger  *log.Logger

	mu       sync.Mutex
	value    T
	written  bool
	hydrated bool
	onFault  func(WriteResult)

	once  sync.Once
	ready chan struct{}
}

// NewCell creates a cell holding def. No I/O happens until Hydrate.
func NewCell[T any](backend Backend, key string, def T, logger *log.Logger) *Cell[T] {
	if logger == nil {
		logger = log.New(io.Discard)
	}
	c := &Cell[T]{
		backend: backend,
		key:     key,
		logger:  logger,
		value:   def,
		ready:   make(chan struct{}),
	}
	c.onFault = func(r WriteResult) {
		c.logger.Warn("write failed, keeping in-memory value", "key", r.Key, "err", r.Err)
	}
	return c
}

// Key returns the backend key.
func (c *Cell[T]) Key() string {
	return c.key
}

// OnFault replaces the hook that receives failed writes.
func (c *Cell[T]) OnFault(fn func(WriteResult)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onFault = fn
}

// Hydrate loads the stored value. Only the first call does anything.
// Missing keys, read errors and undecodable data keep the default.
// A value written before hydration finishes is not overwritten.
func (c *Cell[T]) Hydrate(ctx context.Context) {
	c.once.Do(func() {
		defer close(c.ready)

		if err := ctx.Err(); err != nil {
			c.logger.Debug("hydrate skipped", "key", c.key, "err", err)
			c.markHydrated(nil)
			return
		}

		data, err := c.backend.Get(c.key)
		switch {
		case errors.Is(err, ErrNotFound):
			c.logger.Debug("no stored value, using default", "key", c.key)
			c.markHydrated(nil)
			return
		case err != nil:
			c.logger.Warn("read failed, using default", "key", c.key, "err", err)
			c.markHydrated(nil)
			return
		}

		var v T
		if err := json.Unmarshal(data, &v); err != nil {
			c.logger.Warn("stored value unreadable, using default", "key", c.key, "err", err)
			c.markHydrated(nil)
			return
		}
		c.markHydrated(&v)
	})
}

func (c *Cell[T]) markHydrated(v *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if v != nil && !c.written {
		c.value = *v
	}
	c.hydrated = true
}

// HydrateAsync runs Hydrate on its own goroutine. Wait on Ready for completion.
func (c *Cell[T]) HydrateAsync(ctx context.Context) {
	go c.Hydrate(ctx)
}

// Ready is closed once hydration has finished.
func (c *Cell[T]) Ready() <-chan struct{} {
	return c.ready
}

// Hydrated reports whether hydration has finished.
func (c *Cell[T]) Hydrated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hydrated
}

// Get returns the current value.
func (c *Cell[T]) Get() T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.value
}

// Update applies fn to the current value, stores the result and writes it
// through to the backend. The returned value is always fn(old).
func (c *Cell[T]) Update(fn func(T) T) T {
	c.mu.Lock()
	next := fn(c.value)
	c.value = next
	c.written = true
	res := c.persist(next)
	hook := c.onFault
	c.mu.Unlock()

	if !res.OK() && hook != nil {
		hook(res)
	}
	return next
}

// Set replaces the value.
func (c *Cell[T]) Set(v T) {
	c.Update(func(T) T { return v })
}

func (c *Cell[T]) persist(v T) WriteResult {
	data, err := json.Marshal(v)
	if err != nil {
		return WriteResult{Key: c.key, Err: err}
	}
	return WriteResult{Key: c.key, Err: c.backend.Set(c.key, data)}
}
