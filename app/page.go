package app

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"bizdesk/api"
	"bizdesk/cmd"
	"bizdesk/cmd/commands"
	"bizdesk/cmd/help"
	"bizdesk/cmd/state"
	"bizdesk/keys"
	"bizdesk/log"
	"bizdesk/ui"
	"bizdesk/ui/debounce"
	"bizdesk/ui/overlay"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// resourceMsg is implemented by every message addressed to one page.
type resourceMsg interface {
	resourceID() string
}

type searchSettledMsg struct {
	resource string
	query    string
}

type deletedMsg struct {
	resource, id string
	err          error
}

type generatedMsg struct {
	resource string
	status   string
	err      error
}

type saleMsg struct {
	resource string
	sale     api.Entity
	qty      int
	product  string
	err      error
}

type entityMsg struct {
	resource string
	route    cmd.Route
	entity   api.Entity
	err      error
}

type savedMsg struct {
	resource string
	created  bool
	entity   api.Entity
	err      error
}

// statusMsg asks the shell to show an error or a status line.
type statusMsg struct {
	err  error
	info string
}

func (m searchSettledMsg) resourceID() string { return m.resource }
func (m deletedMsg) resourceID() string       { return m.resource }
func (m generatedMsg) resourceID() string     { return m.resource }
func (m saleMsg) resourceID() string          { return m.resource }
func (m entityMsg) resourceID() string        { return m.resource }
func (m savedMsg) resourceID() string         { return m.resource }

// copyToClipboard is swapped out in tests.
var copyToClipboard = clipboard.WriteAll

var searchBarStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))

// page is one resource screen: the list with its shortcuts, search field,
// modals and the detail and form views reached from it.
type page struct {
	ctx    context.Context
	res    cmd.Resource
	index  int
	svc    api.Service
	hub    *cmd.Hub
	reg    *cmd.Registry
	sub    *cmd.Subscription
	logger *log.Loggers

	list      *ui.List
	search    textinput.Model
	overlay   state.Overlay
	cascade   *state.Cascade
	loader    loader
	debouncer *debounce.Debouncer
	helpGen   *help.Generator

	route cmd.Route
	form  *form

	helpOverlay    *overlay.TextOverlay
	confirmOverlay *overlay.ConfirmationOverlay
	prompt         *overlay.TextInputOverlay

	// remoteQuery is the backend search the current rows were fetched with.
	// It stays empty while the fetched rows satisfy the search.
	remoteQuery string
	mounted     bool
	pending     []tea.Cmd

	width, height int
}

func newPage(ctx context.Context, res cmd.Resource, svc api.Service, hub *cmd.Hub, s *spinner.Model, searchDelay time.Duration) *page {
	search := textinput.New()
	search.Prompt = "/ "
	search.Placeholder = "search " + res.Name
	search.CharLimit = 128

	p := &page{
		ctx:       ctx,
		res:       res,
		index:     cmd.ResourceIndex(res.ID),
		svc:       svc,
		hub:       hub,
		reg:       cmd.NewRegistry(hub, res.ID),
		logger:    log.Scoped(res.ID),
		list:      ui.NewList(res.Name, res.Columns, res.SearchFields, ui.NewFilterSet(res.FilterMode, res.Filters), s),
		search:    search,
		debouncer: debounce.New(searchDelay),
		helpGen:   help.NewGenerator(),
		route:     res.ListRoute(),
	}
	p.cascade = &state.Cascade{
		Overlay:   &p.overlay,
		Input:     &p.search,
		Selection: p.list.Cursor(),
		Name:      res.ID,
	}
	return p
}

// TextInputFocused reports whether keystrokes go into the search field.
func (p *page) TextInputFocused() bool {
	return p.search.Focused()
}

// capturing reports whether the page needs keys the shell would otherwise
// take, such as tab and q.
func (p *page) capturing() bool {
	return p.route.View != cmd.ListView || p.search.Focused() || p.prompt != nil || p.overlay.Any()
}

func (p *page) queue(c tea.Cmd) {
	if c != nil {
		p.pending = append(p.pending, c)
	}
}

// flush returns the commands queued by shortcut actions.
func (p *page) flush() tea.Cmd {
	cmds := p.pending
	p.pending = nil
	return tea.Batch(cmds...)
}

func (p *page) notify(err error, info string) tea.Cmd {
	return func() tea.Msg { return statusMsg{err: err, info: info} }
}

func (p *page) mount() tea.Cmd {
	p.mounted = true
	p.loader.mount()
	p.bind()
	return p.load()
}

func (p *page) unmount() {
	p.mounted = false
	p.loader.unmount()
	p.debouncer.Cancel()
	p.search.Blur()
	p.list.SetLoading(false)
	p.sub.Close()
	p.sub = nil
}

// bind registers the list shortcuts while the list view is showing and
// removes them otherwise. Calling it again with an unchanged set only
// refreshes the action closures.
func (p *page) bind() {
	if !p.mounted || p.route.View != cmd.ListView {
		p.sub.Close()
		p.sub = nil
		return
	}
	p.sub = p.reg.Register(p.shortcuts())
}

func (p *page) shortcuts() []cmd.Shortcut {
	h := commands.ListHandlers{
		FocusSearch:  p.focusSearch,
		New:          func() { p.navigate(p.res.NewRoute()) },
		Help:         p.openHelp,
		Up:           p.list.Up,
		Down:         p.list.Down,
		Escape:       p.escape,
		Reload:       func() { p.queue(p.load()) },
		Open:         p.openSelected(cmd.DetailView),
		Edit:         p.openSelected(cmd.EditView),
		Delete:       p.askDelete,
		CopyID:       p.copyID,
		HasSelection: p.list.Cursor().Selected,
		ToggleFilter: p.toggleFilter,
	}
	for _, f := range p.res.Filters {
		h.Filters = append(h.Filters, commands.FilterKey{Digit: f.Digit, Label: f.Label})
	}
	if p.res.Generate != nil {
		h.Generate = p.generate
	}
	if p.res.QuickSale {
		h.QuickSale = p.openQuickSale
	}
	return commands.ListShortcuts(h)
}

// load fetches the rows again, keeping the backend search they were last
// fetched with.
func (p *page) load() tea.Cmd {
	var filters url.Values
	if p.remoteQuery != "" {
		filters = url.Values{api.SearchParam: {p.remoteQuery}}
	}
	p.list.SetLoading(true)
	return p.loader.fetch(p.ctx, p.svc, p.res.ID, filters)
}

// searchRemote fetches the rows the backend finds for query. An empty query
// fetches the full list.
func (p *page) searchRemote(query string) tea.Cmd {
	p.remoteQuery = query
	return p.load()
}

// settleSearch runs once typing has paused. Search is fuzzy over the fetched
// rows; the backend is only asked when none of them match, and rows narrowed
// for an earlier query are replaced by the full list first.
func (p *page) settleSearch(query string) tea.Cmd {
	switch {
	case query == p.remoteQuery:
		return nil
	case p.remoteQuery != "":
		return p.searchRemote("")
	case query != "" && p.list.QueryMatches() == 0:
		return p.searchRemote(query)
	}
	return nil
}

func (p *page) focusSearch() {
	p.queue(p.search.Focus())
}

func (p *page) toggleFilter(digit int) {
	if p.list.ToggleFilter(digit) {
		p.logger.InfoLog.Printf("filters now %v", p.list.Filters().Active())
	}
}

func (p *page) escape() {
	outcome := p.cascade.Resolve()
	switch outcome {
	case state.OutcomeCloseHelp:
		p.helpOverlay = nil
	case state.OutcomeCloseConfirm:
		p.confirmOverlay = nil
	case state.OutcomeBlurInput:
		p.list.SetQuery("")
		p.debouncer.Cancel()
		if p.remoteQuery != "" {
			p.queue(p.searchRemote(""))
		}
	}
}

func (p *page) openHelp() {
	p.overlay.OpenHelp()
	p.helpOverlay = overlay.NewTextOverlay(helpTypeResource{p: p}.toContent())
	p.helpOverlay.SetWidth(max(min(p.width-6, 96), 40))
	p.helpOverlay.OnDismiss = p.overlay.CloseHelp
}

func (p *page) openSelected(view cmd.View) func() {
	return func() {
		row, ok := p.list.Selected()
		if !ok {
			return
		}
		if view == cmd.EditView {
			p.navigate(p.res.EditRoute(row.ID))
		} else {
			p.navigate(p.res.DetailRoute(row.ID))
		}
	}
}

// rowLabel names a row for prompts by its first column.
func (p *page) rowLabel(row api.Entity) string {
	if len(p.res.Columns) > 0 {
		if s := row.String(p.res.Columns[0].Field); s != "" {
			return s
		}
	}
	return "#" + row.ID
}

func (p *page) askDelete() {
	row, ok := p.list.Selected()
	if !ok {
		return
	}
	id := row.ID
	message := fmt.Sprintf("Delete %q from %s?", p.rowLabel(row), p.res.Name)
	p.overlay.Ask(state.Confirmation{
		TargetID: id,
		Message:  message,
		OnConfirm: func() tea.Cmd {
			return p.deleteCmd(id)
		},
	})
	p.confirmOverlay = overlay.NewConfirmationOverlay(message)
	p.confirmOverlay.OnConfirm = func() { p.queue(p.overlay.Accept()) }
	p.confirmOverlay.OnCancel = p.overlay.Dismiss
}

func (p *page) deleteCmd(id string) tea.Cmd {
	p.list.SetLoading(true)
	ctx, svc, resource := p.ctx, p.svc, p.res.ID
	return func() tea.Msg {
		err := svc.Delete(ctx, resource, id)
		return deletedMsg{resource: resource, id: id, err: err}
	}
}

func (p *page) copyID() {
	row, ok := p.list.Selected()
	if !ok {
		return
	}
	if err := copyToClipboard(row.ID); err != nil {
		p.queue(p.notify(fmt.Errorf("could not copy id: %w", err), ""))
		return
	}
	p.queue(p.notify(nil, fmt.Sprintf("copied id %s", row.ID)))
}

func (p *page) generate() {
	p.list.SetLoading(true)
	ctx, svc, resource, gen := p.ctx, p.svc, p.res.ID, p.res.Generate
	p.queue(func() tea.Msg {
		status, err := gen(ctx, svc)
		return generatedMsg{resource: resource, status: status, err: err}
	})
}

func (p *page) openQuickSale() {
	row, ok := p.list.Selected()
	if !ok {
		return
	}
	name := p.rowLabel(row)
	p.prompt = overlay.NewTextInputOverlay(fmt.Sprintf("Sell %s (%s in stock)", name, row.String("stock")), "")
	p.prompt.Validate = func(v string) error {
		_, err := api.ParseQuantity(v, row)
		return err
	}
	p.prompt.OnSubmit = func(v string) {
		qty, err := api.ParseQuantity(v, row)
		if err != nil {
			return
		}
		p.list.SetLoading(true)
		ctx, svc, resource := p.ctx, p.svc, p.res.ID
		p.queue(func() tea.Msg {
			sale, err := api.QuickSale(ctx, svc, row, qty)
			return saleMsg{resource: resource, sale: sale, qty: qty, product: name, err: err}
		})
	}
	p.queue(p.prompt.Init())
}

// navigate switches between the list, detail and form views.
func (p *page) navigate(route cmd.Route) {
	p.logger.InfoLog.Printf("navigate %s", route)
	p.route = route
	p.form = nil
	p.bind()

	switch route.View {
	case cmd.NewView:
		p.form = newForm(route, "New · "+p.res.Name, p.res.Fields, p.res.NumericFields, api.Entity{}, false)
		p.form.setWidth(p.width)
	case cmd.DetailView, cmd.EditView:
		ctx, svc := p.ctx, p.svc
		p.queue(func() tea.Msg {
			e, err := svc.Get(ctx, route.Resource, route.ID)
			return entityMsg{resource: route.Resource, route: route, entity: e, err: err}
		})
	}
}

func (p *page) back() tea.Cmd {
	p.navigate(p.res.ListRoute())
	return p.flush()
}

func (p *page) submit() tea.Cmd {
	payload, err := p.form.payload()
	if err != nil {
		return p.notify(err, "")
	}
	ctx, svc, route := p.ctx, p.svc, p.form.route
	return func() tea.Msg {
		var (
			e   api.Entity
			err error
		)
		if route.View == cmd.NewView {
			e, err = svc.Create(ctx, route.Resource, payload)
		} else {
			e, err = svc.Update(ctx, route.Resource, route.ID, payload)
		}
		return savedMsg{resource: route.Resource, created: route.View == cmd.NewView, entity: e, err: err}
	}
}

// handleKey routes a key press: open modals first, then the form views, then
// the shortcut hub, and whatever the hub leaves goes to the search field.
func (p *page) handleKey(msg tea.KeyMsg) tea.Cmd {
	defer p.bind()

	if p.prompt != nil {
		if p.prompt.HandleKeyPress(msg) {
			p.prompt = nil
		}
		return p.flush()
	}

	if p.route.View != cmd.ListView {
		return p.handleFormKey(msg)
	}

	ev := keys.Normalize(msg, p)
	if ev.Key != "esc" {
		if p.helpOverlay != nil && p.overlay.HelpOpen() {
			p.helpOverlay.HandleKeyPress(msg)
			p.helpOverlay = nil
			return p.flush()
		}
		if p.confirmOverlay != nil && p.overlay.Pending() != nil {
			if p.confirmOverlay.HandleKeyPress(msg) {
				p.confirmOverlay = nil
			}
			return p.flush()
		}
	}

	if p.hub.Dispatch(ev) {
		return p.flush()
	}

	if p.search.Focused() {
		if msg.Type == tea.KeyEnter {
			p.search.Blur()
			return p.flush()
		}
		before := p.search.Value()
		var c tea.Cmd
		p.search, c = p.search.Update(msg)
		p.queue(c)
		if v := p.search.Value(); v != before {
			p.list.SetQuery(v)
			p.queue(p.debouncer.Trigger(searchSettledMsg{resource: p.res.ID, query: v}))
		}
	}
	return p.flush()
}

func (p *page) handleFormKey(msg tea.KeyMsg) tea.Cmd {
	if key.Matches(msg, keys.Binding(keys.KeyBack)) {
		return p.back()
	}
	if p.form == nil {
		return nil
	}
	if p.form.readOnly {
		if msg.String() == "e" {
			p.navigate(p.res.EditRoute(p.route.ID))
		}
		return p.flush()
	}
	c, submit := p.form.update(msg)
	if submit {
		return p.submit()
	}
	return c
}

// update handles messages addressed to this page.
func (p *page) update(msg tea.Msg) tea.Cmd {
	defer p.bind()

	switch msg := msg.(type) {
	case loadedMsg:
		if !p.loader.accept(msg) {
			return nil
		}
		p.list.SetLoading(false)
		if msg.err != nil {
			p.list.SetRows(nil)
			return p.notify(fmt.Errorf("could not load %s: %w", p.res.Name, msg.err), "")
		}
		p.list.SetRows(msg.rows)
		if q := p.list.Query(); q != "" && !p.debouncer.IsActive() {
			return p.settleSearch(q)
		}
		return nil

	case searchSettledMsg:
		if !p.mounted || msg.query != p.list.Query() {
			return nil
		}
		return p.settleSearch(msg.query)

	case deletedMsg:
		p.list.SetLoading(false)
		if msg.err != nil {
			return p.notify(fmt.Errorf("could not delete: %w", msg.err), "")
		}
		return tea.Batch(p.notify(nil, fmt.Sprintf("deleted %s #%s", p.res.Name, msg.id)), p.load())

	case generatedMsg:
		p.list.SetLoading(false)
		if msg.err != nil {
			return p.notify(msg.err, "")
		}
		return tea.Batch(p.notify(nil, msg.status), p.load())

	case saleMsg:
		p.list.SetLoading(false)
		if msg.err != nil {
			return p.notify(msg.err, "")
		}
		info := fmt.Sprintf("sold %d × %s (sale #%s)", msg.qty, msg.product, msg.sale.ID)
		return tea.Batch(p.notify(nil, info), p.load())

	case entityMsg:
		if msg.route != p.route {
			return nil
		}
		if msg.err != nil {
			return tea.Batch(p.notify(msg.err, ""), p.back())
		}
		readOnly := msg.route.View == cmd.DetailView
		title := fmt.Sprintf("%s · %s", p.res.Name, p.rowLabel(msg.entity))
		fields := p.res.Fields
		if !readOnly {
			title = "Edit · " + title
		}
		p.form = newForm(msg.route, title, fields, p.res.NumericFields, msg.entity, readOnly)
		p.form.setWidth(p.width)
		return nil

	case savedMsg:
		if msg.err != nil {
			return p.notify(msg.err, "")
		}
		verb := "updated"
		if msg.created {
			verb = "created"
		}
		return tea.Batch(p.notify(nil, fmt.Sprintf("%s %s #%s", verb, p.res.Name, msg.entity.ID)), p.back(), p.load())
	}
	return nil
}

func (p *page) SetSize(width, height int) {
	p.width, p.height = width, height
	p.search.Width = max(width-4, 10)
	// search bar and status line
	p.list.SetSize(width, max(height-2, 1))
	if p.form != nil {
		p.form.setWidth(width)
	}
}

func (p *page) View() string {
	if p.route.View != cmd.ListView {
		if p.form == nil {
			return lipgloss.Place(p.width, p.height, lipgloss.Left, lipgloss.Top, "Loading "+p.route.String()+"…")
		}
		return lipgloss.Place(p.width, p.height, lipgloss.Left, lipgloss.Top, p.form.View())
	}

	searchLine := p.search.View()
	if !p.search.Focused() && p.search.Value() == "" {
		searchLine = searchBarStyle.Render("/ or ctrl+k to search")
	}
	view := lipgloss.JoinVertical(lipgloss.Left,
		searchLine,
		p.list.String(),
		p.helpGen.GenerateStatusLine(p.reg.Active(), p.width),
	)

	switch {
	case p.prompt != nil:
		return overlay.PlaceOverlay(0, 0, p.prompt.Render(), view, true, true)
	case p.helpOverlay != nil && p.overlay.HelpOpen():
		return overlay.PlaceOverlay(0, 0, p.helpOverlay.Render(), view, true, true)
	case p.confirmOverlay != nil && p.overlay.Pending() != nil:
		return overlay.PlaceOverlay(0, 0, p.confirmOverlay.Render(), view, true, true)
	}
	return view
}
