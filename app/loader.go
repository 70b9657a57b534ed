package app

import (
	"context"
	"net/url"
	"time"

	"bizdesk/api"
	"bizdesk/log"

	tea "github.com/charmbracelet/bubbletea"
)

// loadedMsg carries one list response back to its page.
type loadedMsg struct {
	resource string
	gen      uint64
	rows     []api.Entity
	err      error
}

func (m loadedMsg) resourceID() string { return m.resource }

// staleEvery keeps dropped-response logging quiet when the user types fast.
var staleEvery = log.NewEvery(5 * time.Second)

// loader tags every list request with a generation. Only the response to
// the newest request is applied, and nothing is applied once the page has
// been unmounted, even if it is mounted again before the response lands.
type loader struct {
	gen     uint64
	mounted bool
}

func (l *loader) mount() {
	l.mounted = true
}

func (l *loader) unmount() {
	l.mounted = false
	l.gen++
}

// fetch starts a request and supersedes any request still in flight.
func (l *loader) fetch(ctx context.Context, svc api.Service, resource string, filters url.Values) tea.Cmd {
	l.gen++
	gen := l.gen
	return func() tea.Msg {
		rows, err := svc.List(ctx, resource, filters)
		return loadedMsg{resource: resource, gen: gen, rows: rows, err: err}
	}
}

// accept reports whether msg answers the latest request of a mounted page.
func (l *loader) accept(msg loadedMsg) bool {
	if l.mounted && msg.gen == l.gen {
		return true
	}
	if staleEvery.ShouldLog() {
		log.InfoLog.Printf("dropping stale %s response (generation %d, latest %d, mounted %t)",
			msg.resource, msg.gen, l.gen, l.mounted)
	}
	return false
}
