package viewstate

import (
	"net/url"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/claimsview/claimsview/internal/domain/claims"
)

// DefaultDebounce is the pause after the last keystroke before a search
// is committed.
const DefaultDebounce = 300 * time.Millisecond

type Option func(*Controller)

func WithDebounce(d time.Duration) Option {
	return func(c *Controller) { c.delay = d }
}

// WithScheduler replaces the timer used for debouncing.
func WithScheduler(s Scheduler) Option {
	return func(c *Controller) { c.scheduler = s }
}

// WithOnChange registers fn to be called with the new state after every
// change, including raw search input echo.
func WithOnChange(fn func(ViewState)) Option {
	return func(c *Controller) { c.onChange = fn }
}

func WithLogger(logger zerolog.Logger) Option {
	return func(c *Controller) { c.logger = logger }
}

// Controller owns a ViewState and the location it is mirrored to. Every
// committed change pushes the updated location to the Navigator, in commit
// order. Methods are safe to call from multiple goroutines. The Navigator
// must not call back into the controller; onChange may.
type Controller struct {
	// navMu is held from computing a location until it has been pushed, so
	// the Navigator never ends on an older location than the controller.
	navMu    sync.Mutex
	mu       sync.Mutex
	state    ViewState
	location *url.URL
	nav      Navigator
	debounce *Debouncer

	delay     time.Duration
	scheduler Scheduler
	onChange  func(ViewState)
	logger    zerolog.Logger
}

// NewController initializes the state from location's query parameters.
func NewController(location *url.URL, nav Navigator, opts ...Option) *Controller {
	loc := *location
	c := &Controller{
		state:     Parse(loc.Query()),
		location:  &loc,
		nav:       nav,
		delay:     DefaultDebounce,
		scheduler: RealScheduler,
		logger:    zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.debounce = NewDebouncer(c.delay, c.scheduler)
	return c
}

func (c *Controller) State() ViewState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Location returns a copy of the current location.
func (c *Controller) Location() *url.URL {
	c.mu.Lock()
	defer c.mu.Unlock()
	u := *c.location
	return &u
}

// SetSearch records raw input immediately and commits it once input has
// paused for the debounce delay.
func (c *Controller) SetSearch(text string) {
	c.mu.Lock()
	c.state.SearchInput = text
	s := c.state
	c.mu.Unlock()

	c.notify(s)
	c.debounce.Trigger(c.commitSearch)
}

// FlushSearch commits pending search input right away.
func (c *Controller) FlushSearch() {
	c.debounce.Cancel()
	c.commitSearch()
}

func (c *Controller) commitSearch() {
	c.update(func(s ViewState) (ViewState, Patch) {
		return s.CommitSearch()
	})
}

// SetStatusFilter filters on st; the empty status clears the filter.
func (c *Controller) SetStatusFilter(st claims.Status) error {
	if st != "" && !st.Valid() {
		return ErrInvalidStatus
	}
	c.update(func(s ViewState) (ViewState, Patch) {
		return s.WithStatus(st)
	})
	return nil
}

func (c *Controller) SetSort(field claims.SortField) {
	c.update(func(s ViewState) (ViewState, Patch) {
		return s.ToggleSort(field)
	})
}

func (c *Controller) SetPage(page int) {
	c.update(func(s ViewState) (ViewState, Patch) {
		return s.WithPage(page)
	})
}

func (c *Controller) SetPageSize(size int) error {
	var err error
	c.update(func(s ViewState) (ViewState, Patch) {
		next, p, e := s.WithPageSize(size)
		err = e
		return next, p
	})
	return err
}

// Reset restores every default, drops a pending search commit and clears
// the query string, including parameters the controller does not own.
func (c *Controller) Reset() {
	c.debounce.Cancel()

	c.navMu.Lock()
	c.mu.Lock()
	c.state = Defaults()
	c.location = Clear(c.location)
	s, loc := c.state, *c.location
	c.mu.Unlock()
	c.push(&loc)
	c.navMu.Unlock()

	c.notify(s)
}

// Close cancels the pending search commit. The controller must not be used
// for searching afterwards.
func (c *Controller) Close() {
	c.debounce.Stop()
}

func (c *Controller) update(fn func(ViewState) (ViewState, Patch)) {
	c.navMu.Lock()
	c.mu.Lock()
	next, patch := fn(c.state)
	if patch == nil {
		c.mu.Unlock()
		c.navMu.Unlock()
		return
	}
	c.state = next
	c.location = Apply(c.location, patch)
	s, loc := c.state, *c.location
	c.mu.Unlock()
	c.push(&loc)
	c.navMu.Unlock()

	c.notify(s)
}

func (c *Controller) push(loc *url.URL) {
	c.logger.Debug().Str("location", loc.String()).Msg("view state changed")
	if c.nav != nil {
		c.nav.Navigate(loc)
	}
}

func (c *Controller) notify(s ViewState) {
	if c.onChange != nil {
		c.onChange(s)
	}
}
