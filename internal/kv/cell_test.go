// ABOUTME: Tests for Cell hydration and fail-open write-through.
// ABOUTME: Uses the memory backend plus a backend whose writes always fail.
package kv

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/harperreed/big3/internal/logging"
)

type failingBackend struct {
	*MemoryBackend
	getErr error
	setErr error
}

func (f *failingBackend) Get(key string) ([]byte, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.MemoryBackend.Get(key)
}

func (f *failingBackend) Set(key string, value []byte) error {
	if f.setErr != nil {
		return f.setErr
	}
	return f.MemoryBackend.Set(key, value)
}

type counter struct {
	N    int      `json:"n"`
	Tags []string `json:"tags"`
}

func TestCellBeforeHydrate(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":5}`))

	c := NewCell(mem, "c", counter{N: 1}, logging.Discard())
	if c.Hydrated() {
		t.Error("expected cell to start unhydrated")
	}
	if c.Get().N != 1 {
		t.Errorf("N = %d, want default 1", c.Get().N)
	}
	select {
	case <-c.Ready():
		t.Error("Ready closed before hydration")
	default:
	}
}

func TestCellHydrateLoadsStoredValue(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":5,"tags":["a"]}`))

	c := NewCell(mem, "c", counter{N: 1}, logging.Discard())
	c.Hydrate(context.Background())

	if !c.Hydrated() {
		t.Error("expected Hydrated after Hydrate")
	}
	got := c.Get()
	if got.N != 5 || len(got.Tags) != 1 {
		t.Errorf("Get() = %+v, want stored value", got)
	}
	<-c.Ready()
}

func TestCellHydrateKeepsDefault(t *testing.T) {
	tests := []struct {
		name    string
		backend func() Backend
	}{
		{"absent key", func() Backend { return NewMemory() }},
		{"corrupt data", func() Backend {
			m := NewMemory()
			_ = m.Set("c", []byte("{not json"))
			return m
		}},
		{"read error", func() Backend {
			return &failingBackend{MemoryBackend: NewMemory(), getErr: errors.New("disk gone")}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := NewCell(tt.backend(), "c", counter{N: 7}, logging.Discard())
			c.Hydrate(context.Background())
			if c.Get().N != 7 {
				t.Errorf("N = %d, want default 7", c.Get().N)
			}
			if !c.Hydrated() {
				t.Error("expected Hydrated even on failure")
			}
		})
	}
}

func TestCellHydrateRunsOnce(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":1}`))
	c := NewCell(mem, "c", counter{}, logging.Discard())
	c.Hydrate(context.Background())

	_ = mem.Set("c", []byte(`{"n":99}`))
	c.Hydrate(context.Background())

	if c.Get().N != 1 {
		t.Errorf("N = %d, second Hydrate should be a no-op", c.Get().N)
	}
}

func TestCellHydrateCanceledContext(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":3}`))
	c := NewCell(mem, "c", counter{N: 1}, logging.Discard())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	c.Hydrate(ctx)

	if c.Get().N != 1 || !c.Hydrated() {
		t.Errorf("got %+v hydrated=%v, want default and hydrated", c.Get(), c.Hydrated())
	}
}

func TestCellWriteBeforeHydrateWins(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":5}`))
	c := NewCell(mem, "c", counter{}, logging.Discard())

	c.Set(counter{N: 42})
	c.Hydrate(context.Background())

	if c.Get().N != 42 {
		t.Errorf("N = %d, hydration overwrote a newer write", c.Get().N)
	}
}

func TestCellHydrateAsync(t *testing.T) {
	mem := NewMemory()
	_ = mem.Set("c", []byte(`{"n":8}`))
	c := NewCell(mem, "c", counter{}, logging.Discard())

	c.HydrateAsync(context.Background())

	select {
	case <-c.Ready():
	case <-time.After(2 * time.Second):
		t.Fatal("hydration did not finish")
	}
	if c.Get().N != 8 {
		t.Errorf("N = %d, want 8", c.Get().N)
	}
}

func TestCellUpdateWritesThrough(t *testing.T) {
	mem := NewMemory()
	c := NewCell(mem, "c", counter{}, logging.Discard())

	got := c.Update(func(v counter) counter {
		v.N++
		return v
	})
	if got.N != 1 {
		t.Errorf("Update returned %+v", got)
	}

	data, err := mem.Get("c")
	if err != nil {
		t.Fatalf("expected persisted value: %v", err)
	}
	if string(data) != `{"n":1,"tags":null}` {
		t.Errorf("persisted %s", data)
	}

	// A second cell over the same backend sees it.
	other := NewCell(mem, "c", counter{}, logging.Discard())
	other.Hydrate(context.Background())
	if other.Get().N != 1 {
		t.Errorf("reloaded N = %d, want 1", other.Get().N)
	}
}

func TestCellUpdateFailOpen(t *testing.T) {
	fb := &failingBackend{MemoryBackend: NewMemory(), setErr: errors.New("quota exceeded")}
	c := NewCell(fb, "c", counter{}, logging.Discard())

	var faults []WriteResult
	c.OnFault(func(r WriteResult) { faults = append(faults, r) })

	got := c.Update(func(v counter) counter {
		v.N = 10
		return v
	})

	if got.N != 10 || c.Get().N != 10 {
		t.Errorf("in-memory value = %+v, want new value despite failed write", c.Get())
	}
	if len(faults) != 1 || faults[0].OK() || faults[0].Key != "c" {
		t.Errorf("faults = %+v, want one failed write for c", faults)
	}
	if _, err := fb.MemoryBackend.Get("c"); !errors.Is(err, ErrNotFound) {
		t.Error("nothing should have been persisted")
	}
}

func TestCellConcurrentUpdates(t *testing.T) {
	c := NewCell(NewMemory(), "c", counter{}, logging.Discard())
	c.HydrateAsync(context.Background())

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c.Update(func(v counter) counter {
				v.N++
				return v
			})
		}()
	}
	wg.Wait()
	<-c.Ready()

	if c.Get().N != 50 {
		t.Errorf("N = %d, want 50", c.Get().N)
	}
}
