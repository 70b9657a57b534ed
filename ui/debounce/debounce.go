package debounce

import (
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// Debouncer delays an operation until input has settled. Each call to
// Trigger supersedes the previous one; only the latest fires.
type Debouncer struct {
	delay   time.Duration
	mutex   sync.Mutex
	seq     uint64
	pending bool
}

// FiredMsg is delivered when a triggered delay elapses. Pass it to Settled
// to learn whether it is still the latest trigger.
type FiredMsg struct {
	d   *Debouncer
	seq uint64
	Msg tea.Msg
}

// New creates a new debouncer with the specified delay
func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay}
}

// Trigger returns a command that yields a FiredMsg carrying msg after the
// delay. An earlier trigger that has not fired yet is superseded.
func (d *Debouncer) Trigger(msg tea.Msg) tea.Cmd {
	d.mutex.Lock()
	d.seq++
	seq := d.seq
	delay := d.delay
	d.pending = true
	d.mutex.Unlock()

	return tea.Tick(delay, func(time.Time) tea.Msg {
		return FiredMsg{d: d, seq: seq, Msg: msg}
	})
}

// Settled reports whether f belongs to this debouncer and is the latest
// trigger, returning the carried message if so.
func (d *Debouncer) Settled(f FiredMsg) (tea.Msg, bool) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	if f.d != d || f.seq != d.seq || !d.pending {
		return nil, false
	}
	d.pending = false
	return f.Msg, true
}

// Cancel drops any pending trigger.
func (d *Debouncer) Cancel() {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.seq++
	d.pending = false
}

// SetDelay changes the delay duration for future triggers
func (d *Debouncer) SetDelay(delay time.Duration) {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	d.delay = delay
}

// IsActive returns true if there is a pending operation
func (d *Debouncer) IsActive() bool {
	d.mutex.Lock()
	defer d.mutex.Unlock()

	return d.pending
}
