// Package ui is the interactive terminal browser for the claims list. It
// drives a viewstate.Controller whose "address bar" is an in-memory
// navigator, so every view can still be copied as a shareable URL.
package ui

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/internal/platform/clipboard"
	"github.com/claimsview/claimsview/internal/viewstate"
	"github.com/claimsview/claimsview/pkg/pagination"
)

// Options configures a browser Model.
type Options struct {
	// Location is the starting URL; its query seeds the view state.
	Location *url.URL
	// BaseURL is the public origin copied URLs are built on.
	BaseURL  string
	Debounce time.Duration
	// Scheduler overrides the search debounce timer.
	Scheduler viewstate.Scheduler
	Copier    *clipboard.Copier
	// Loaded receives the result of a background load. Nil when the
	// service is already loaded.
	Loaded <-chan error
	Logger zerolog.Logger
}

// stateChangedMsg signals that the controller committed a change, possibly
// from the debounce timer goroutine.
type stateChangedMsg struct{}

type loadedMsg struct{ err error }

type copyExpiredMsg struct{}

// Model is the bubbletea model of the claims browser.
type Model struct {
	width  int
	height int

	svc     *claims.Service
	ctrl    *viewstate.Controller
	nav     *viewstate.MemoryNavigator
	copier  *clipboard.Copier
	baseURL string
	changes chan struct{}
	loaded  <-chan error
	logger  zerolog.Logger

	state   viewstate.ViewState
	result  claims.Result
	loading bool
	loadErr error

	search        textinput.Model
	searchFocused bool
	table         table.Model

	styles Styles
}

func New(svc *claims.Service, opts Options) Model {
	loc := opts.Location
	if loc == nil {
		loc = &url.URL{Path: "/claims"}
	}
	copier := opts.Copier
	if copier == nil {
		copier = clipboard.NewCopier(clipboard.DefaultFeedback, opts.Logger)
	}

	changes := make(chan struct{}, 1)
	nav := viewstate.NewMemoryNavigator(loc)
	ctrlOpts := []viewstate.Option{
		viewstate.WithLogger(opts.Logger),
		viewstate.WithOnChange(func(viewstate.ViewState) {
			// Coalesce: the model re-reads the whole state on receipt.
			select {
			case changes <- struct{}{}:
			default:
			}
		}),
	}
	if opts.Debounce > 0 {
		ctrlOpts = append(ctrlOpts, viewstate.WithDebounce(opts.Debounce))
	}
	if opts.Scheduler != nil {
		ctrlOpts = append(ctrlOpts, viewstate.WithScheduler(opts.Scheduler))
	}
	ctrl := viewstate.NewController(loc, nav, ctrlOpts...)

	si := textinput.New()
	si.Placeholder = "Search by patient name..."
	si.CharLimit = 64
	si.Width = 40
	si.SetValue(ctrl.State().SearchInput)

	t := table.New(
		table.WithColumns(columns(ctrl.State())),
		table.WithFocused(true),
		table.WithHeight(pagination.DefaultPageSize),
	)

	m := Model{
		svc:     svc,
		ctrl:    ctrl,
		nav:     nav,
		copier:  copier,
		baseURL: opts.BaseURL,
		changes: changes,
		loaded:  opts.Loaded,
		logger:  opts.Logger,
		search:  si,
		table:   t,
		styles:  DefaultStyles(),
	}
	m.refresh()
	return m
}

// Run starts the browser full screen and blocks until the user quits or
// ctx is cancelled.
func Run(ctx context.Context, m Model) error {
	defer m.ctrl.Close()
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{m.waitForChange()}
	if m.loaded != nil {
		cmds = append(cmds, m.waitForLoad())
	}
	return tea.Batch(cmds...)
}

// waitForChange listens for committed view state changes.
func (m Model) waitForChange() tea.Cmd {
	return func() tea.Msg {
		<-m.changes
		return stateChangedMsg{}
	}
}

func (m Model) waitForLoad() tea.Cmd {
	return func() tea.Msg {
		return loadedMsg{err: <-m.loaded}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case stateChangedMsg:
		m.refresh()
		return m, m.waitForChange()

	case loadedMsg:
		m.loadErr = msg.err
		m.refresh()
		return m, nil

	case copyExpiredMsg:
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.ctrl.Close()
			return m, tea.Quit
		}
		if m.searchFocused {
			return m.updateSearch(msg)
		}
		if handled, cmd := m.handleKey(msg); handled {
			m.refresh()
			return m, cmd
		}
	}

	if !m.searchFocused {
		m.table, cmd = m.table.Update(msg)
	}
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.searchFocused = false
		m.search.Blur()
		m.ctrl.FlushSearch()
		m.refresh()
		return m, nil
	case "esc":
		m.searchFocused = false
		m.search.Blur()
		return m, nil
	}

	before := m.search.Value()
	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	if after := m.search.Value(); after != before {
		m.ctrl.SetSearch(after)
		m.state = m.ctrl.State()
	}
	return m, cmd
}

// handleKey applies a browsing shortcut. It reports false for keys the
// table should handle.
func (m *Model) handleKey(msg tea.KeyMsg) (bool, tea.Cmd) {
	switch msg.String() {
	case "q":
		m.ctrl.Close()
		return true, tea.Quit
	case "/":
		m.searchFocused = true
		return true, m.search.Focus()
	case "s":
		_ = m.ctrl.SetStatusFilter(nextStatus(m.state.Status))
	case "n":
		m.ctrl.SetSort(claims.SortPatientName)
	case "t":
		m.ctrl.SetSort(claims.SortStatus)
	case "d":
		m.ctrl.SetSort(claims.SortServiceDate)
	case "u":
		m.ctrl.SetSort(claims.SortLastUpdated)
	case "left", "h":
		m.ctrl.SetPage(m.state.Page - 1)
	case "right", "l":
		if m.state.Page < m.result.TotalPages {
			m.ctrl.SetPage(m.state.Page + 1)
		}
	case "home", "g":
		m.ctrl.SetPage(1)
	case "end", "G":
		if m.result.TotalPages > 0 {
			m.ctrl.SetPage(m.result.TotalPages)
		}
	case "z":
		_ = m.ctrl.SetPageSize(nextPageSize(m.state.PageSize))
	case "r":
		if !m.state.HasActiveFilters() {
			return true, nil
		}
		m.ctrl.Reset()
		m.search.SetValue("")
	case "y":
		return true, m.copyURL()
	default:
		return false, nil
	}
	return true, nil
}

func (m *Model) copyURL() tea.Cmd {
	share, err := viewstate.ShareURL(m.baseURL, m.ctrl.Location())
	if err != nil {
		m.logger.Warn().Err(err).Msg("cannot build share url")
		return nil
	}
	if !m.copier.Copy(share) {
		return nil
	}
	return tea.Tick(m.copier.Feedback(), func(time.Time) tea.Msg { return copyExpiredMsg{} })
}

// refresh re-reads the controller state and re-runs the query. A page past
// the end is pulled back to the last page.
func (m *Model) refresh() {
	m.state = m.ctrl.State()

	res, err := m.svc.List(context.Background(), m.state.Query())
	if err != nil {
		m.loading = errors.Is(err, claims.ErrLoading)
		m.result = claims.Result{}
		m.table.SetRows(nil)
		return
	}
	m.loading = false

	if res.TotalPages > 0 && m.state.Page > res.TotalPages {
		m.ctrl.SetPage(res.TotalPages)
		m.state = m.ctrl.State()
		res, _ = m.svc.List(context.Background(), m.state.Query())
	}
	m.result = res

	m.table.SetColumns(columns(m.state))
	rows := make([]table.Row, 0, len(res.Rows))
	for i := range res.Rows {
		rows = append(rows, row(&res.Rows[i]))
	}
	m.table.SetRows(rows)
	m.table.SetHeight(max(len(rows), 1) + 1)
}

// SetSize updates the size.
func (m *Model) SetSize(w, h int) {
	m.width = w
	m.height = h
	m.table.SetWidth(w - 4)
}

// Location returns the browser's current address.
func (m Model) Location() *url.URL {
	return m.nav.Current()
}

// State returns the view state as last rendered.
func (m Model) State() viewstate.ViewState {
	return m.state
}

func (m Model) View() string {
	var sb strings.Builder

	sb.WriteString(m.styles.Header.Render(" Claims "))
	sb.WriteString("  ")
	sb.WriteString(m.styles.Muted.Render(m.Location().String()))
	sb.WriteString("\n\n")

	sb.WriteString(m.renderFilterBar())
	sb.WriteString("\n\n")

	switch {
	case m.loadErr != nil:
		sb.WriteString(m.styles.Warning.Render("Failed to load claims: " + m.loadErr.Error()))
	case m.loading:
		sb.WriteString(m.styles.Muted.Render("Loading claims..."))
	case m.result.Empty:
		sb.WriteString(m.styles.Muted.Render("No claims found"))
	case m.result.Total == 0:
		sb.WriteString("No matching claims\n")
		sb.WriteString(m.styles.Muted.Render("Try adjusting your search or filter criteria. [r] Clear Filters"))
	default:
		sb.WriteString(m.styles.Content.Render(m.table.View()))
		sb.WriteString("\n")
		sb.WriteString(m.renderFooter())
	}

	sb.WriteString("\n\n")
	sb.WriteString(m.styles.Muted.Render("[/] Search  [s] Status  [n/t/d/u] Sort  [←/→] Page  [z] Rows  [r] Reset  [y] Copy URL  [q] Quit"))
	return sb.String()
}

func (m Model) renderFilterBar() string {
	var sb strings.Builder

	input := m.styles.Input
	if m.searchFocused {
		input = m.styles.Focused
	}
	sb.WriteString(input.Render(m.search.View()))
	sb.WriteString("  ")

	for _, st := range append([]claims.Status{""}, claims.Statuses...) {
		label := string(st)
		if st == "" {
			label = "All Statuses"
		}
		style := m.styles.Muted
		if m.state.Status == st {
			style = m.styles.Active
		}
		sb.WriteString(style.Render(label))
		sb.WriteString("  ")
	}

	if m.state.HasActiveFilters() {
		sb.WriteString(m.styles.Muted.Render("[r] Reset All Filters"))
	} else {
		sb.WriteString(m.styles.Disabled.Render("Reset All Filters"))
	}
	if m.copier.Copied(time.Now()) {
		sb.WriteString("  ")
		sb.WriteString(m.styles.Success.Render("Copied!"))
	}
	return sb.String()
}

func (m Model) renderFooter() string {
	return m.styles.Muted.Render(fmt.Sprintf("Rows per page: %d    Page %d of %d    %d claims",
		m.state.PageSize, m.result.Page, m.result.TotalPages, m.result.Total))
}

var sortColumns = map[string]claims.SortField{
	"Patient":      claims.SortPatientName,
	"Service Date": claims.SortServiceDate,
	"Status":       claims.SortStatus,
	"Last Updated": claims.SortLastUpdated,
}

func columns(s viewstate.ViewState) []table.Column {
	cols := []table.Column{
		{Title: "Patient", Width: 22},
		{Title: "Service Date", Width: 14},
		{Title: "Carrier", Width: 16},
		{Title: "Type", Width: 10},
		{Title: "Amount", Width: 11},
		{Title: "Status", Width: 12},
		{Title: "Last Updated", Width: 22},
		{Title: "User", Width: 5},
		{Title: "PMS Sync", Width: 11},
		{Title: "Provider", Width: 20},
	}
	for i := range cols {
		if f, ok := sortColumns[cols[i].Title]; ok && f == s.SortField {
			if s.SortDir == claims.SortDesc {
				cols[i].Title += " ↓"
			} else {
				cols[i].Title += " ↑"
			}
		}
	}
	return cols
}

func row(c *claims.Claim) table.Row {
	return table.Row{
		c.PatientName(),
		c.ServiceDateLabel(),
		c.InsuranceCarrier,
		string(c.InsuranceType),
		c.AmountLabel(),
		string(c.Status),
		c.LastUpdatedLabel(),
		c.User,
		string(c.PMSSyncStatus),
		c.ProviderName(),
	}
}

// nextStatus cycles none → each status → none.
func nextStatus(current claims.Status) claims.Status {
	if current == "" {
		return claims.Statuses[0]
	}
	for i, st := range claims.Statuses {
		if st == current && i+1 < len(claims.Statuses) {
			return claims.Statuses[i+1]
		}
	}
	return ""
}

func nextPageSize(current int) int {
	for i, n := range pagination.PageSizes {
		if n == current && i+1 < len(pagination.PageSizes) {
			return pagination.PageSizes[i+1]
		}
	}
	return pagination.PageSizes[0]
}
