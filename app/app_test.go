package app

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"
	"time"

	"bizdesk/api"
	"bizdesk/cmd"
	"bizdesk/config"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

var namedKeys = map[string]tea.KeyType{
	"esc":       tea.KeyEsc,
	"enter":     tea.KeyEnter,
	"up":        tea.KeyUp,
	"down":      tea.KeyDown,
	"tab":       tea.KeyTab,
	"shift+tab": tea.KeyShiftTab,
	"backspace": tea.KeyBackspace,
	"ctrl+k":    tea.KeyCtrlK,
	"ctrl+u":    tea.KeyCtrlU,
}

func keyMsg(s string) tea.KeyMsg {
	if t, ok := namedKeys[s]; ok {
		return tea.KeyMsg{Type: t}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// run executes c and flattens batches. Commands that block, such as the
// three second banner timer or cursor blinking, are abandoned.
func run(c tea.Cmd) []tea.Msg {
	if c == nil {
		return nil
	}
	ch := make(chan tea.Msg, 1)
	go func() { ch <- c() }()
	select {
	case msg := <-ch:
		if batch, ok := msg.(tea.BatchMsg); ok {
			var out []tea.Msg
			for _, sub := range batch {
				out = append(out, run(sub)...)
			}
			return out
		}
		if msg == nil {
			return nil
		}
		return []tea.Msg{msg}
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// settle feeds the messages produced by c back into the model until it is
// quiet.
func settle(h *home, c tea.Cmd) {
	queue := run(c)
	for i := 0; len(queue) > 0 && i < 200; i++ {
		msg := queue[0]
		queue = queue[1:]
		if _, ok := msg.(spinner.TickMsg); ok {
			continue
		}
		_, next := h.Update(msg)
		queue = append(queue, run(next)...)
	}
}

func press(h *home, keys ...string) {
	for _, k := range keys {
		_, c := h.Update(keyMsg(k))
		settle(h, c)
	}
}

type testEnv struct {
	h     *home
	svc   *api.Memory
	state *memoryState
}

func newTestEnv(t *testing.T, opts ...func(*Options)) *testEnv {
	t.Helper()
	svc := api.NewDemo()
	st := &memoryState{seen: ^uint32(0)}
	o := Options{
		Config: &config.Config{UI: config.UIConfig{StartResource: "products"}},
		Service: svc,
		State:   st,
	}
	for _, fn := range opts {
		fn(&o)
	}
	h, err := newHome(context.Background(), o)
	require.NoError(t, err)
	h.Update(tea.WindowSizeMsg{Width: 120, Height: 30})
	settle(h, h.mountCurrent())
	return &testEnv{h: h, svc: svc, state: st}
}

func (e *testEnv) page() *page {
	return e.h.current()
}

func (e *testEnv) selectedName() string {
	row, ok := e.page().list.Selected()
	if !ok {
		return ""
	}
	return row.String("name")
}

func TestMountLoadsRows(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	assert.Equal(t, "products", p.res.ID)
	assert.Equal(t, 5, p.list.NumRows())
	assert.False(t, p.list.Loading())
	assert.Equal(t, -1, p.list.Cursor().Index())
	assert.True(t, p.reg.Live())
	assert.Equal(t, 1, env.h.hub.Len())
	assert.Contains(t, env.h.View(), "Espresso beans 1kg")
}

// Typing N into the focused search field must not open the create form.
func TestTypingIntoSearchDoesNotNavigate(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "/")
	require.True(t, p.search.Focused())

	press(env.h, "N", "?")
	assert.Equal(t, cmd.ListView, p.route.View)
	assert.Equal(t, "N?", p.search.Value())
	assert.Equal(t, "N?", p.list.Query())
	assert.False(t, p.overlay.HelpOpen())

	press(env.h, "enter")
	assert.False(t, p.search.Focused(), "enter leaves the field")
	assert.Equal(t, "N?", p.list.Query(), "and keeps the query")
}

func TestCtrlKFocusesSearch(t *testing.T) {
	env := newTestEnv(t)
	press(env.h, "ctrl+k", "o", "u")
	p := env.page()
	assert.Equal(t, "ou", p.list.Query())
	assert.Empty(t, p.remoteQuery, "fetched rows match, the backend is not asked")
	assert.Equal(t, []string{"Orange juice 1L", "Sourdough loaf"}, visibleNames(p))
}

func visibleNames(p *page) []string {
	var out []string
	for _, row := range p.list.Visible() {
		out = append(out, row.String("name"))
	}
	return out
}

func TestFuzzyMatchSurvivesSettledSearch(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "/", "e", "s", "p", "r", "s", "o", "s")
	assert.Equal(t, "esprsos", p.list.Query())
	assert.Empty(t, p.remoteQuery)
	assert.Equal(t, 5, p.list.NumRows())
	assert.Equal(t, []string{"Espresso beans 1kg"}, visibleNames(p))
}

// firstPage serves at most two rows unless the backend search is used.
type firstPage struct {
	*api.Memory
}

func (f firstPage) List(ctx context.Context, resource string, filters url.Values) ([]api.Entity, error) {
	rows, err := f.Memory.List(ctx, resource, filters)
	if err != nil || filters.Get(api.SearchParam) != "" {
		return rows, err
	}
	return rows[:min(len(rows), 2)], nil
}

func TestBackendSearchWhenNothingFetchedMatches(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		o.Service = firstPage{Memory: api.NewDemo()}
	})
	p := env.page()
	require.Equal(t, 2, p.list.NumRows())

	press(env.h, "/", "c", "r", "o")
	assert.Equal(t, "cro", p.remoteQuery)
	assert.Equal(t, []string{"Croissant"}, visibleNames(p))

	press(env.h, "backspace", "backspace", "backspace")
	assert.Empty(t, p.remoteQuery, "clearing the query restores the list")
	assert.Equal(t, 2, p.list.NumRows())
}

func TestEscapeCascadeOnPage(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "down")
	require.Equal(t, 0, p.list.Cursor().Index())

	press(env.h, "?")
	require.True(t, p.overlay.HelpOpen())
	assert.Contains(t, env.h.View(), "Products Shortcuts")

	press(env.h, "esc")
	assert.False(t, p.overlay.HelpOpen())
	assert.Nil(t, p.helpOverlay)
	assert.Equal(t, 0, p.list.Cursor().Index(), "closing help keeps the selection")

	press(env.h, "esc")
	assert.Equal(t, -1, p.list.Cursor().Index())

	press(env.h, "/", "x")
	require.Equal(t, "x", p.list.Query())
	press(env.h, "esc")
	assert.False(t, p.search.Focused())
	assert.Empty(t, p.search.Value())
	assert.Empty(t, p.list.Query())
	assert.Equal(t, 5, p.list.NumRows(), "rows fetched without the search are restored")
}

func TestAnyKeyClosesHelp(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	press(env.h, "down", "?", "j")
	assert.False(t, p.overlay.HelpOpen())
	assert.Equal(t, 0, p.list.Cursor().Index())
	assert.Equal(t, cmd.ListView, p.route.View)
}

func TestDeleteAsksFirst(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "down", "d")
	require.NotNil(t, p.overlay.Pending())
	assert.Equal(t, "1", p.overlay.Pending().TargetID)
	assert.Contains(t, env.h.View(), `Delete "Espresso beans 1kg" from Products?`)

	press(env.h, "n")
	assert.Nil(t, p.overlay.Pending())
	assert.Equal(t, cmd.ListView, p.route.View, "n answers the dialog instead of creating")
	assert.Equal(t, 5, p.list.NumRows())

	press(env.h, "d", "esc")
	assert.Nil(t, p.overlay.Pending(), "escape closes the dialog")
	assert.Equal(t, 0, p.list.Cursor().Index())

	press(env.h, "d", "y")
	assert.Nil(t, p.overlay.Pending())
	assert.Equal(t, 4, p.list.NumRows())
	assert.Equal(t, "deleted Products #1", env.h.errBox.Text())
}

func TestRowActionsNeedSelection(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	press(env.h, "d", "e", "enter", "s")
	assert.Nil(t, p.overlay.Pending())
	assert.Nil(t, p.prompt)
	assert.Equal(t, cmd.ListView, p.route.View)
}

func TestFilterToggleResetsCursor(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "down", "down")
	require.Equal(t, "Orange juice 1L", env.selectedName())

	press(env.h, "2")
	assert.Equal(t, -1, p.list.Cursor().Index())
	assert.Len(t, p.list.Visible(), 1)

	press(env.h, "2")
	assert.Len(t, p.list.Visible(), 5)
}

func TestQuickSale(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	sales, err := env.svc.List(context.Background(), "sales", nil)
	require.NoError(t, err)

	press(env.h, "down", "s")
	require.NotNil(t, p.prompt)
	press(env.h, "9", "9", "enter")
	require.NotNil(t, p.prompt, "too many units keeps the prompt open")
	assert.Contains(t, env.h.View(), "only 42 in stock")

	press(env.h, "backspace", "backspace", "3", "enter")
	assert.Nil(t, p.prompt)

	after, err := env.svc.List(context.Background(), "sales", nil)
	require.NoError(t, err)
	require.Len(t, after, len(sales)+1)
	sale := after[len(after)-1]
	assert.Equal(t, "Walk-in", sale.String("customer"))
	total, _ := sale.Float("total")
	assert.InDelta(t, 55.5, total, 0.001)
	assert.Contains(t, env.h.errBox.Text(), "sold 3 × Espresso beans 1kg")
}

func TestQuickSaleCancel(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	press(env.h, "down", "s", "esc")
	assert.Nil(t, p.prompt)
	assert.Equal(t, 0, p.list.Cursor().Index(), "the prompt owns escape")
}

func TestGenerateAlerts(t *testing.T) {
	env := newTestEnv(t)
	_, err := env.svc.Update(context.Background(), "products", "4", map[string]any{"stock": 5.0})
	require.NoError(t, err)

	press(env.h, "tab")
	p := env.page()
	require.Equal(t, "alerts", p.res.ID)
	before := p.list.NumRows()

	press(env.h, "g")
	assert.Equal(t, "1 new alert(s)", env.h.errBox.Text())
	assert.Equal(t, before+1, p.list.NumRows())
}

func TestGenerateNotBoundWithoutAction(t *testing.T) {
	env := newTestEnv(t)
	for _, s := range env.page().reg.Active() {
		assert.NotEqual(t, "g", s.Chord.Key)
	}
}

func TestDetailThenEdit(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "down", "enter")
	require.Equal(t, p.res.DetailRoute("1"), p.route)
	require.NotNil(t, p.form)
	assert.True(t, p.form.readOnly)
	assert.False(t, p.reg.Live(), "list shortcuts are off on the detail view")
	assert.Equal(t, 0, env.h.hub.Len())
	assert.Contains(t, env.h.View(), "BEV-001")

	press(env.h, "e")
	require.Equal(t, p.res.EditRoute("1"), p.route)
	require.NotNil(t, p.form)
	assert.False(t, p.form.readOnly)

	press(env.h, "ctrl+u", "Decaf", "enter")
	assert.Equal(t, cmd.ListView, p.route.View)
	assert.True(t, p.reg.Live())
	assert.Equal(t, 1, env.h.hub.Len())
	assert.Equal(t, "updated Products #1", env.h.errBox.Text())

	got, err := env.svc.Get(context.Background(), "products", "1")
	require.NoError(t, err)
	assert.Equal(t, "Decaf", got.String("name"))
	assert.Equal(t, "BEV-001", got.String("sku"))
}

func TestEscapeLeavesDetail(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()
	press(env.h, "down", "enter", "esc")
	assert.Equal(t, cmd.ListView, p.route.View)
	assert.Nil(t, p.form)
	assert.Equal(t, 0, p.list.Cursor().Index())
}

func TestCreateFromForm(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	press(env.h, "N")
	require.Equal(t, p.res.NewRoute(), p.route)
	press(env.h, "enter")
	assert.Equal(t, cmd.NewView, p.route.View, "an empty form is not submitted")
	assert.Equal(t, "fill in at least one field", env.h.errBox.Text())

	press(env.h, "Green tea", "tab", "BEV-010", "enter")
	assert.Equal(t, cmd.ListView, p.route.View)
	assert.Equal(t, 6, p.list.NumRows())
	assert.Equal(t, "created Products #6", env.h.errBox.Text())
}

func TestLoadFailureShowsBanner(t *testing.T) {
	env := newTestEnv(t, func(o *Options) {
		m := api.NewDemo()
		m.Fail = func(op, resource string) error {
			if op == "list" {
				return errors.New("backend unavailable")
			}
			return nil
		}
		o.Service = m
	})
	p := env.page()
	assert.Zero(t, p.list.NumRows())
	assert.False(t, p.list.Loading())
	require.Error(t, env.h.errBox.Err())
	assert.Contains(t, env.h.errBox.Text(), "backend unavailable")

	press(env.h, "down")
	assert.Equal(t, -1, p.list.Cursor().Index())
}

func TestStaleResponseIsDropped(t *testing.T) {
	env := newTestEnv(t)
	p := env.page()

	first := p.load()
	second := p.load()
	env.h.Update(second())
	require.Equal(t, 5, p.list.NumRows())

	_, err := env.svc.Create(context.Background(), "products", map[string]any{"name": "Green tea"})
	require.NoError(t, err)
	env.h.Update(first())
	assert.Equal(t, 5, p.list.NumRows(), "an older generation never overwrites a newer one")

	settle(env.h, p.load())
	assert.Equal(t, 6, p.list.NumRows())
}

func TestUnmountedPageIgnoresLateResponse(t *testing.T) {
	env := newTestEnv(t)
	products := env.page()
	late := products.load()

	press(env.h, "tab")
	alerts := env.page()
	require.Equal(t, "alerts", alerts.res.ID)
	assert.False(t, products.reg.Live())
	assert.True(t, alerts.reg.Live())
	assert.Equal(t, 1, env.h.hub.Len())
	assert.Equal(t, "alerts", env.state.last)

	_, err := env.svc.Create(context.Background(), "products", map[string]any{"name": "Green tea"})
	require.NoError(t, err)
	env.h.Update(late())
	assert.Equal(t, 5, products.list.NumRows())

	press(env.h, "shift+tab")
	assert.Equal(t, "products", env.page().res.ID)
	assert.Equal(t, 6, products.list.NumRows())
	assert.Equal(t, 1, env.h.hub.Len())
}

func TestTabIgnoredWhileTyping(t *testing.T) {
	env := newTestEnv(t)
	press(env.h, "/", "tab")
	assert.Equal(t, "products", env.page().res.ID)
}

func TestHelpShownOncePerResource(t *testing.T) {
	st := &memoryState{}
	env := newTestEnv(t, func(o *Options) { o.State = st })
	products := env.page()
	require.True(t, products.overlay.HelpOpen(), "first visit shows the legend")
	assert.Equal(t, uint32(1<<1), st.seen)

	press(env.h, "x", "tab")
	alerts := env.page()
	assert.True(t, alerts.overlay.HelpOpen())
	assert.Equal(t, uint32(1<<1|1<<2), st.seen)

	press(env.h, "esc", "shift+tab")
	assert.False(t, products.overlay.HelpOpen(), "the legend is not shown twice")
}

func TestHelpSeenByAnotherInstance(t *testing.T) {
	dir := t.TempDir()
	st := config.NewState(dir)
	t.Cleanup(func() { _ = st.Close() })

	other := config.NewState(dir)
	require.NoError(t, other.SetHelpScreensSeen(1<<1))
	require.NoError(t, other.Close())

	env := newTestEnv(t, func(o *Options) { o.State = st })
	assert.False(t, env.page().overlay.HelpOpen(), "products legend was shown elsewhere")

	press(env.h, "tab")
	assert.True(t, env.page().overlay.HelpOpen())
	assert.Equal(t, uint32(1<<1|1<<2), st.GetHelpScreensSeen())
}

func TestCopyID(t *testing.T) {
	var copied []string
	orig := copyToClipboard
	copyToClipboard = func(s string) error {
		copied = append(copied, s)
		return nil
	}
	t.Cleanup(func() { copyToClipboard = orig })

	env := newTestEnv(t)
	press(env.h, "down", "down", "y")
	assert.Equal(t, []string{"2"}, copied)
	assert.Equal(t, "copied id 2", env.h.errBox.Text())

	copyToClipboard = func(string) error { return errors.New("no clipboard") }
	press(env.h, "y")
	assert.Contains(t, env.h.errBox.Text(), "no clipboard")
}

func TestConfigChangeUpdatesToken(t *testing.T) {
	var (
		mu   sync.Mutex
		auth string
	)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		auth = r.Header.Get("Authorization")
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := api.NewClient(api.Options{BaseURL: srv.URL, Token: "old", Timeout: time.Second})
	require.NoError(t, err)

	env := newTestEnv(t, func(o *Options) {
		o.Service = client
		o.Client = client
		o.Config.API.Token = "old"
	})

	cfg := &config.Config{API: config.APIConfig{Token: "new"}, UI: config.UIConfig{SearchDebounce: time.Second}}
	env.h.Update(configChangedMsg{cfg: cfg})
	assert.Equal(t, "configuration reloaded", env.h.errBox.Text())

	_, err = client.List(context.Background(), "products", nil)
	require.NoError(t, err)
	mu.Lock()
	assert.Equal(t, "Bearer new", auth)
	mu.Unlock()

	env.h.Update(configChangedMsg{err: errors.New("bad toml")})
	assert.Contains(t, env.h.errBox.Text(), "config not reloaded")
}

func TestStartResource(t *testing.T) {
	env := newTestEnv(t, func(o *Options) { o.Resource = "roles" })
	assert.Equal(t, "roles", env.page().res.ID)

	_, err := newHome(context.Background(), Options{
		Config:   &config.Config{},
		Service:  api.NewMemory(),
		Resource: "payroll",
	})
	assert.ErrorContains(t, err, `unknown resource "payroll"`)
}

func TestQuitUnmounts(t *testing.T) {
	env := newTestEnv(t)
	_, c := env.h.Update(keyMsg("q"))
	require.NotNil(t, c)
	assert.IsType(t, tea.QuitMsg{}, c())
	assert.Zero(t, env.h.hub.Len())
}
