package cmd

import (
	"fmt"
	"strings"
	"sync"
	"unicode"
	"unicode/utf8"

	"bizdesk/keys"
	"bizdesk/log"
)

// Shortcut binds a key chord to an action on a page.
type Shortcut struct {
	Chord       keys.Chord
	Action      func()
	Description string
	Category    Category

	// AllowInInput lets the shortcut fire while a text field has focus.
	// Only the escape binding sets it.
	AllowInInput bool
}

// Bind builds a shortcut from a chord string such as "ctrl+k" or "N". It
// panics on a malformed chord since bindings are declared statically.
func Bind(chord, description string, action func()) Shortcut {
	return Shortcut{
		Chord:       keys.MustParseChord(chord),
		Action:      action,
		Description: description,
		Category:    CategoryActions,
	}
}

// In returns the shortcut filed under category c.
func (s Shortcut) In(c Category) Shortcut {
	s.Category = c
	return s
}

// WhileTyping returns the shortcut with AllowInInput set.
func (s Shortcut) WhileTyping() Shortcut {
	s.AllowInInput = true
	return s
}

// Conflict records a binding that was shadowed by a later one with the same
// (key, ctrl, shift) tuple.
type Conflict struct {
	Chord    keys.Chord
	Shadowed string
	Winner   string
}

func (c Conflict) String() string {
	return fmt.Sprintf("%s: %q shadowed by %q", c.Chord, c.Shadowed, c.Winner)
}

// Registry holds the shortcut table of one mounted page and its single
// listener on the hub.
type Registry struct {
	hub  *Hub
	name string

	mu          sync.Mutex
	bindings    []Shortcut
	index       map[keys.Chord]int
	conflicts   []Conflict
	fingerprint string
	sub         *Subscription
}

// NewRegistry creates a registry that will listen on hub. name is used in
// log lines.
func NewRegistry(hub *Hub, name string) *Registry {
	return &Registry{
		hub:   hub,
		name:  name,
		index: make(map[keys.Chord]int),
	}
}

// Subscription is the lifetime handle returned by Register. Closing it
// removes the page's listener from the hub.
type Subscription struct {
	reg         *Registry
	unsubscribe func()
	once        sync.Once
}

// Close removes the listener. It is safe to call more than once.
func (s *Subscription) Close() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.unsubscribe()
		s.reg.mu.Lock()
		if s.reg.sub == s {
			s.reg.sub = nil
			s.reg.fingerprint = ""
		}
		s.reg.mu.Unlock()
	})
}

// Register installs bindings. When the list equals the current one by value
// the live listener is kept and only the action closures are swapped;
// otherwise the listener is recreated. Either way the page owns exactly one
// listener on the hub.
func (r *Registry) Register(bindings []Shortcut) *Subscription {
	fp := fingerprint(bindings)

	r.mu.Lock()
	if r.sub != nil && r.fingerprint == fp {
		r.install(bindings)
		sub := r.sub
		r.mu.Unlock()
		return sub
	}

	// Drop the previous listener before subscribing so the hub never sees
	// two listeners for one page. The hub lock is never held while calling
	// into a registry, so taking it under r.mu is safe.
	if old := r.sub; old != nil {
		old.once.Do(old.unsubscribe)
	}
	r.install(bindings)
	r.fingerprint = fp
	sub := &Subscription{reg: r}
	sub.unsubscribe = r.hub.Subscribe(r.Dispatch)
	r.sub = sub
	conflicts := r.conflicts
	r.mu.Unlock()

	for _, c := range conflicts {
		log.WarningLog.Printf("[%s] duplicate shortcut %s", r.name, c)
	}
	return sub
}

// install rebuilds the lookup index. Later bindings win on duplicate tuples.
// Caller holds r.mu.
func (r *Registry) install(bindings []Shortcut) {
	r.bindings = make([]Shortcut, len(bindings))
	copy(r.bindings, bindings)
	r.index = make(map[keys.Chord]int, len(bindings))
	r.conflicts = nil

	for i, b := range r.bindings {
		if prev, ok := r.index[b.Chord]; ok {
			r.conflicts = append(r.conflicts, Conflict{
				Chord:    b.Chord,
				Shadowed: r.bindings[prev].Description,
				Winner:   b.Description,
			})
		}
		r.index[b.Chord] = i
	}
}

// fingerprint identifies a binding list by value, ignoring the closures.
func fingerprint(bindings []Shortcut) string {
	var sb strings.Builder
	for _, b := range bindings {
		fmt.Fprintf(&sb, "%s|%t|%t|%s|%s|%t\x1f",
			b.Chord.Key, b.Chord.Ctrl, b.Chord.Shift, b.Description, b.Category, b.AllowInInput)
	}
	return sb.String()
}

// lookup finds the binding for ev. An exact tuple match wins; a shifted
// letter falls back to its unshifted binding. Caller holds r.mu.
func (r *Registry) lookup(ev keys.Event) (Shortcut, bool) {
	if ev.Alt {
		return Shortcut{}, false
	}
	c := ev.Chord()
	if i, ok := r.index[c]; ok {
		return r.bindings[i], true
	}
	if c.Shift && isLetter(c.Key) {
		if i, ok := r.index[c.Unshifted()]; ok {
			return r.bindings[i], true
		}
	}
	return Shortcut{}, false
}

func isLetter(key string) bool {
	r, size := utf8.DecodeRuneInString(key)
	return size == len(key) && unicode.IsLetter(r)
}

// Dispatch runs the action bound to ev and reports whether it did. While a
// text field has focus only AllowInInput bindings fire, so typed characters
// reach the field. A registry without a live subscription handles nothing.
func (r *Registry) Dispatch(ev keys.Event) bool {
	r.mu.Lock()
	if r.sub == nil {
		r.mu.Unlock()
		return false
	}
	b, ok := r.lookup(ev)
	r.mu.Unlock()

	if !ok || b.Action == nil {
		return false
	}
	if ev.InInput && !b.AllowInInput {
		return false
	}
	b.Action()
	return true
}

// Active returns the bindings that can fire, in registration order. Bindings
// shadowed by a later duplicate are left out.
func (r *Registry) Active() []Shortcut {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Shortcut, 0, len(r.bindings))
	for i, b := range r.bindings {
		if r.index[b.Chord] == i {
			out = append(out, b)
		}
	}
	return out
}

// Conflicts returns the duplicate tuples found by the last Register call.
func (r *Registry) Conflicts() []Conflict {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Conflict, len(r.conflicts))
	copy(out, r.conflicts)
	return out
}

// Live reports whether the registry currently has a listener on the hub.
func (r *Registry) Live() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sub != nil
}
