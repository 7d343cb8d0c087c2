package viewstate

import (
	"net/url"
	"sync"
)

// Navigator receives every location the controller pushes.
type Navigator interface {
	Navigate(u *url.URL)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(u *url.URL)

func (f NavigatorFunc) Navigate(u *url.URL) { f(u) }

// MemoryNavigator is an in-process address bar: it keeps the current
// location and the history of pushed locations.
type MemoryNavigator struct {
	mu      sync.Mutex
	current *url.URL
	history []string
}

func NewMemoryNavigator(start *url.URL) *MemoryNavigator {
	u := *start
	return &MemoryNavigator{current: &u}
}

func (n *MemoryNavigator) Navigate(u *url.URL) {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := *u
	n.current = &cp
	n.history = append(n.history, u.String())
}

// Current returns a copy of the latest location.
func (n *MemoryNavigator) Current() *url.URL {
	n.mu.Lock()
	defer n.mu.Unlock()
	cp := *n.current
	return &cp
}

// History returns every pushed location in order.
func (n *MemoryNavigator) History() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.history...)
}
