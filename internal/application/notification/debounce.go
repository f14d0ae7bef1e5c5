package notification

import (
	"sync"
	"time"
)

// DefaultDebounce is the quiet period of search-as-you-type
const DefaultDebounce = 300 * time.Millisecond

// Debouncer calls fn with the latest pushed value once no new value has
// arrived for wait.
type Debouncer[T any] struct {
	wait time.Duration
	fn   func(T)

	mu     sync.Mutex
	timer  *time.Timer
	latest T
}

// NewDebouncer creates a debouncer; wait <= 0 uses DefaultDebounce
func NewDebouncer[T any](wait time.Duration, fn func(T)) *Debouncer[T] {
	if wait <= 0 {
		wait = DefaultDebounce
	}
	return &Debouncer[T]{wait: wait, fn: fn}
}

// Push records v and restarts the quiet period
func (d *Debouncer[T]) Push(v T) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.latest = v
	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.wait, d.fire)
}

func (d *Debouncer[T]) fire() {
	d.mu.Lock()
	v := d.latest
	d.timer = nil
	d.mu.Unlock()
	d.fn(v)
}

// Stop drops any pending call
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Flush runs a pending call immediately and reports whether there was one
func (d *Debouncer[T]) Flush() bool {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return false
	}
	d.timer = nil
	v := d.latest
	d.mu.Unlock()
	d.fn(v)
	return true
}
