package resolver

import (
	"strings"
	"sync"
	"time"
	"unicode/utf8"
)

// DebounceConfig is the input coalescing policy.
type DebounceConfig struct {
	// Delay is the quiet period after the last input before delivery.
	Delay time.Duration

	// MinLength is the minimum trimmed length for delivery. Empty input is
	// always delivered since it clears the filter.
	MinLength int
}

// DefaultDebounceConfig returns the default policy: 300ms, 2 characters.
func DefaultDebounceConfig() DebounceConfig {
	return DebounceConfig{
		Delay:     300 * time.Millisecond,
		MinLength: 2,
	}
}

// Debouncer coalesces rapid text input and delivers the settled value.
type Debouncer struct {
	config  DebounceConfig
	deliver func(string)

	mu         sync.Mutex
	timer      *time.Timer
	seq        uint64
	pending    string
	hasPending bool
	last       string
	delivered  bool
	stopped    bool
}

// NewDebouncer creates a debouncer calling deliver with accepted input.
func NewDebouncer(cfg DebounceConfig, deliver func(string)) *Debouncer {
	if cfg.Delay < 0 {
		cfg.Delay = 0
	}
	return &Debouncer{config: cfg, deliver: deliver}
}

// Input records text and restarts the quiet period.
func (d *Debouncer) Input(text string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	d.pending = text
	d.hasPending = true
	d.seq++
	seq := d.seq

	if d.timer != nil {
		d.timer.Stop()
	}
	d.timer = time.AfterFunc(d.config.Delay, func() { d.fire(seq) })
}

// Flush delivers pending input immediately.
func (d *Debouncer) Flush() {
	d.mu.Lock()
	if d.timer != nil {
		d.timer.Stop()
	}
	d.seq++
	text, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.deliver(text)
	}
}

// Stop drops pending input. Later input is ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.hasPending = false
	if d.timer != nil {
		d.timer.Stop()
	}
}

func (d *Debouncer) fire(seq uint64) {
	d.mu.Lock()
	if seq != d.seq {
		// a newer input restarted the timer
		d.mu.Unlock()
		return
	}
	text, ok := d.take()
	d.mu.Unlock()

	if ok {
		d.deliver(text)
	}
}

// take consumes the pending input and applies the policy. Callers hold mu.
func (d *Debouncer) take() (string, bool) {
	if !d.hasPending || d.stopped {
		return "", false
	}
	d.hasPending = false

	text := strings.TrimSpace(d.pending)
	if text != "" && utf8.RuneCountInString(text) < d.config.MinLength {
		return "", false
	}
	if d.delivered && text == d.last {
		return "", false
	}
	d.last = text
	d.delivered = true
	return text, true
}
