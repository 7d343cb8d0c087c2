package ui

import (
	"context"
	"errors"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/claimsview/claimsview/internal/domain/claims"
	"github.com/claimsview/claimsview/internal/platform/clipboard"
	"github.com/claimsview/claimsview/internal/viewstate"
)

type manualTimer struct {
	mu      sync.Mutex
	stopped bool
}

func (t *manualTimer) Stop() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	was := !t.stopped
	t.stopped = true
	return was
}

// manualScheduler holds debounce callbacks until the test fires them.
type manualScheduler struct {
	mu      sync.Mutex
	pending []func()
}

func (s *manualScheduler) schedule(_ time.Duration, f func()) viewstate.Timer {
	t := &manualTimer{}
	s.mu.Lock()
	s.pending = append(s.pending, func() {
		if !t.Stop() {
			return
		}
		f()
	})
	s.mu.Unlock()
	return t
}

func (s *manualScheduler) fire() {
	s.mu.Lock()
	pending := s.pending
	s.pending = nil
	s.mu.Unlock()
	for _, f := range pending {
		f()
	}
}

func readyService(t *testing.T) *claims.Service {
	t.Helper()
	store, err := claims.NewStore(claims.Generate(claims.DefaultRecordCount, 1))
	if err != nil {
		t.Fatalf("build store: %v", err)
	}
	return claims.NewServiceWithStore(store, zerolog.Nop())
}

func newTestModel(t *testing.T, start string, opts Options) Model {
	t.Helper()
	u, err := url.Parse(start)
	if err != nil {
		t.Fatalf("parse %q: %v", start, err)
	}
	opts.Location = u
	if opts.BaseURL == "" {
		opts.BaseURL = "http://localhost:8000"
	}
	m := New(readyService(t), opts)
	t.Cleanup(m.ctrl.Close)
	return m
}

func press(t *testing.T, m Model, keys ...string) Model {
	t.Helper()
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "left":
			msg = tea.KeyMsg{Type: tea.KeyLeft}
		case "right":
			msg = tea.KeyMsg{Type: tea.KeyRight}
		case "end":
			msg = tea.KeyMsg{Type: tea.KeyEnd}
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "esc":
			msg = tea.KeyMsg{Type: tea.KeyEsc}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		next, _ := m.Update(msg)
		m = next.(Model)
	}
	return m
}

func TestBrowser_InitialView(t *testing.T) {
	m := newTestModel(t, "/claims", Options{})

	view := m.View()
	if !strings.Contains(view, "Page 1 of 13") {
		t.Errorf("expected page indicator, got:\n%s", view)
	}
	if len(m.table.Rows()) != 20 {
		t.Errorf("expected 20 rows, got %d", len(m.table.Rows()))
	}
}

func TestBrowser_StatusCycle(t *testing.T) {
	m := newTestModel(t, "/claims?page=3", Options{})

	m = press(t, m, "s")
	if m.State().Status != claims.StatusRejected {
		t.Errorf("expected first status, got %q", m.State().Status)
	}
	if got := m.Location().RawQuery; got != "status=REJECTED" {
		t.Errorf("expected status in URL and page reset, got %q", got)
	}

	m = press(t, m, "s", "s", "s", "s")
	if m.State().Status != "" {
		t.Errorf("expected cycle back to all statuses, got %q", m.State().Status)
	}
	if m.Location().RawQuery != "" {
		t.Errorf("expected empty query, got %q", m.Location().RawQuery)
	}
}

func TestBrowser_SortToggle(t *testing.T) {
	m := newTestModel(t, "/claims", Options{})

	m = press(t, m, "t")
	if m.Location().RawQuery != "sortField=status" {
		t.Errorf("unexpected query %q", m.Location().RawQuery)
	}
	m = press(t, m, "t")
	if m.State().SortDir != claims.SortDesc {
		t.Error("expected second press to sort descending")
	}
	m = press(t, m, "t")
	if m.State().SortDir != claims.SortAsc {
		t.Error("expected third press to sort ascending again")
	}
	if !strings.Contains(m.View(), "Status ↑") {
		t.Error("expected sort arrow in the header")
	}
}

func TestBrowser_Paging(t *testing.T) {
	m := newTestModel(t, "/claims", Options{})

	m = press(t, m, "right")
	if m.State().Page != 2 {
		t.Fatalf("expected page 2, got %d", m.State().Page)
	}
	m = press(t, m, "left", "left")
	if m.State().Page != 1 {
		t.Errorf("expected page to stop at 1, got %d", m.State().Page)
	}
	m = press(t, m, "end", "right")
	if m.State().Page != 13 {
		t.Errorf("expected page to stop at 13, got %d", m.State().Page)
	}
}

func TestBrowser_PagePastEndIsClamped(t *testing.T) {
	m := newTestModel(t, "/claims?page=99", Options{})

	if m.State().Page != 13 {
		t.Errorf("expected last page, got %d", m.State().Page)
	}
	if m.Location().RawQuery != "page=13" {
		t.Errorf("expected URL to follow the clamp, got %q", m.Location().RawQuery)
	}
}

func TestBrowser_PageSizeResetsPage(t *testing.T) {
	m := newTestModel(t, "/claims?page=3", Options{})

	m = press(t, m, "z")
	if m.State().PageSize != 25 || m.State().Page != 1 {
		t.Errorf("expected 25 rows on page 1, got %d rows on page %d", m.State().PageSize, m.State().Page)
	}
	if m.Location().RawQuery != "pageSize=25" {
		t.Errorf("unexpected query %q", m.Location().RawQuery)
	}
}

func TestBrowser_DebouncedSearch(t *testing.T) {
	sched := &manualScheduler{}
	m := newTestModel(t, "/claims?page=2", Options{Scheduler: sched.schedule})

	m = press(t, m, "/", "j", "o", "h", "n")
	if m.State().SearchInput != "john" {
		t.Errorf("expected raw input to echo immediately, got %q", m.State().SearchInput)
	}
	if m.Location().Query().Has("search") {
		t.Error("expected no URL change before the debounce elapses")
	}

	sched.fire()
	next, _ := m.Update(stateChangedMsg{})
	m = next.(Model)

	if m.State().Search != "john" {
		t.Errorf("expected committed search, got %q", m.State().Search)
	}
	if got := m.Location().RawQuery; got != "search=john" {
		t.Errorf("expected search in URL and page dropped, got %q", got)
	}
	for _, r := range m.table.Rows() {
		if !strings.Contains(strings.ToLower(r[0]), "john") {
			t.Errorf("row %q does not match search", r[0])
		}
	}
}

func TestBrowser_EnterFlushesSearch(t *testing.T) {
	sched := &manualScheduler{}
	m := newTestModel(t, "/claims", Options{Scheduler: sched.schedule})

	m = press(t, m, "/", "a", "enter")
	if m.State().Search != "a" {
		t.Errorf("expected enter to commit, got %q", m.State().Search)
	}
	if m.searchFocused {
		t.Error("expected search to lose focus")
	}

	// The superseded timer must not commit again.
	sched.fire()
	if n := len(m.nav.History()); n != 1 {
		t.Errorf("expected one navigation, got %d", n)
	}
}

func TestBrowser_Reset(t *testing.T) {
	m := newTestModel(t, "/claims?sortField=status&utm=mail", Options{})

	m = press(t, m, "r")
	if m.Location().RawQuery == "" {
		t.Error("expected reset to be disabled without active filters")
	}

	m = press(t, m, "s", "r")
	if m.State() != viewstate.Defaults() {
		t.Errorf("expected defaults, got %+v", m.State())
	}
	if m.Location().RawQuery != "" {
		t.Errorf("expected cleared query, got %q", m.Location().RawQuery)
	}
}

func TestBrowser_NoMatches(t *testing.T) {
	m := newTestModel(t, "/claims?search=zzzzzz", Options{})

	if !strings.Contains(m.View(), "No matching claims") {
		t.Error("expected no-results branch")
	}
}

func TestBrowser_CopyURL(t *testing.T) {
	var copied string
	copier := clipboard.NewCopier(time.Minute, zerolog.Nop(), clipboard.WithWriter(func(s string) error {
		copied = s
		return nil
	}))
	m := newTestModel(t, "/claims?status=CALL", Options{BaseURL: "https://claims.example.com", Copier: copier})

	m = press(t, m, "y")
	if copied != "https://claims.example.com/claims?status=CALL" {
		t.Errorf("unexpected clipboard content %q", copied)
	}
	if !strings.Contains(m.View(), "Copied!") {
		t.Error("expected copy confirmation")
	}
}

func TestBrowser_CopyFailureShowsNoConfirmation(t *testing.T) {
	copier := clipboard.NewCopier(time.Minute, zerolog.Nop(), clipboard.WithWriter(func(string) error {
		return errors.New("no clipboard")
	}))
	m := newTestModel(t, "/claims", Options{Copier: copier})

	m = press(t, m, "y")
	if strings.Contains(m.View(), "Copied!") {
		t.Error("expected no confirmation after a failed copy")
	}
}

func TestBrowser_Loading(t *testing.T) {
	svc := claims.NewService(zerolog.Nop())
	loaded := make(chan error, 1)
	m := New(svc, Options{Location: &url.URL{Path: "/claims"}, Loaded: loaded})
	defer m.ctrl.Close()

	if !strings.Contains(m.View(), "Loading claims...") {
		t.Fatal("expected loading notice")
	}

	err := svc.Load(context.Background(), 0, claims.GeneratedSource(30, 1))
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	next, _ := m.Update(loadedMsg{})
	m = next.(Model)
	if !strings.Contains(m.View(), "Page 1 of 2") {
		t.Errorf("expected rows after load, got:\n%s", m.View())
	}
}

func TestBrowser_Quit(t *testing.T) {
	m := newTestModel(t, "/claims", Options{})

	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("expected tea.QuitMsg")
	}
}

func TestNextStatusAndPageSize(t *testing.T) {
	if nextStatus(claims.StatusResubmitted) != "" {
		t.Error("expected last status to wrap to none")
	}
	if nextPageSize(50) != 10 {
		t.Error("expected largest page size to wrap")
	}
}
