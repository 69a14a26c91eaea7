package notify

import (
	"sync"
	"time"
)

// DefaultDuration is how long a toast stays visible
const DefaultDuration = 3000 * time.Millisecond

// Toast is the transient notification shown after cart changes
type Toast struct {
	Message string
	Visible bool
}

// Toaster owns a single toast and hides it automatically after a fixed duration.
// Showing a new message before expiry replaces the text and restarts the timer.
type Toaster struct {
	mu       sync.Mutex
	current  Toast
	duration time.Duration
	timer    *time.Timer
	gen      uint64
	onChange func(Toast)
}

// Option configures a Toaster
type Option func(*Toaster)

// WithDuration overrides the display duration
func WithDuration(d time.Duration) Option {
	return func(t *Toaster) {
		if d > 0 {
			t.duration = d
		}
	}
}

// WithOnChange registers a callback invoked after every visibility or message change.
// The callback runs outside the toaster lock.
func WithOnChange(fn func(Toast)) Option {
	return func(t *Toaster) {
		t.onChange = fn
	}
}

// NewToaster creates a hidden toaster
func NewToaster(opts ...Option) *Toaster {
	t := &Toaster{duration: DefaultDuration}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Show displays message and (re)starts the hide timer
func (t *Toaster) Show(message string) {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
	}
	t.gen++
	gen := t.gen
	t.current = Toast{Message: message, Visible: true}
	t.timer = time.AfterFunc(t.duration, func() { t.expire(gen) })
	snapshot := t.current
	t.mu.Unlock()

	t.notify(snapshot)
}

// Hide clears visibility immediately
func (t *Toaster) Hide() {
	t.mu.Lock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
	t.gen++
	changed := t.current.Visible
	t.current.Visible = false
	snapshot := t.current
	t.mu.Unlock()

	if changed {
		t.notify(snapshot)
	}
}

// Current returns the toast as it is now
func (t *Toaster) Current() Toast {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Stop cancels a pending hide timer without changing the toast
func (t *Toaster) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

func (t *Toaster) expire(gen uint64) {
	t.mu.Lock()
	// a newer Show or Hide owns the toast now
	if gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.current.Visible = false
	t.timer = nil
	snapshot := t.current
	t.mu.Unlock()

	t.notify(snapshot)
}

func (t *Toaster) notify(toast Toast) {
	if t.onChange != nil {
		t.onChange(toast)
	}
}
