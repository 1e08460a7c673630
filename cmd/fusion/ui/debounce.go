// Package ui provides debouncing utilities for event handling.
package ui

import (
	"sync"
	"time"
)

// Debouncer coalesces rapid events like terminal resizes into one callback.
type Debouncer struct {
	mu       sync.Mutex
	timer    *time.Timer
	duration time.Duration
}

// NewDebouncer creates a debouncer with the specified duration.
func NewDebouncer(duration time.Duration) *Debouncer {
	return &Debouncer{duration: duration}
}

// Debounce schedules fn after the debounce duration. Rapid successive calls
// reset the timer, so only the last fn runs.
func (d *Debouncer) Debounce(fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.duration, fn)
}

// Cancel drops any pending call.
func (d *Debouncer) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// ResizeDebouncer is a Debouncer specialized for window resize events: it
// remembers the most recent dimensions and hands the handler only the final
// ones once the burst settles.
type ResizeDebouncer struct {
	debouncer     *Debouncer
	mu            sync.Mutex
	pendingWidth  int
	pendingHeight int
}

// NewResizeDebouncer creates a debouncer for resize events.
func NewResizeDebouncer(duration time.Duration) *ResizeDebouncer {
	return &ResizeDebouncer{debouncer: NewDebouncer(duration)}
}

// Resize records the dimensions and schedules the handler.
func (rd *ResizeDebouncer) Resize(width, height int, handler func(int, int)) {
	rd.mu.Lock()
	rd.pendingWidth = width
	rd.pendingHeight = height
	rd.mu.Unlock()

	rd.debouncer.Debounce(func() {
		rd.mu.Lock()
		w, h := rd.pendingWidth, rd.pendingHeight
		rd.mu.Unlock()
		handler(w, h)
	})
}

// Cancel drops any pending resize.
func (rd *ResizeDebouncer) Cancel() {
	rd.debouncer.Cancel()
}

// DefaultResizeDuration is the recommended debounce duration for resizes.
const DefaultResizeDuration = 300 * time.Millisecond
