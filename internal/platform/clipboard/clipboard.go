// Package clipboard copies shareable view URLs to the system clipboard and
// tracks the short "copied" confirmation window that follows.
package clipboard

import (
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/rs/zerolog"
)

// clipboardWriteAll is a package-level variable to allow mocking in tests.
var clipboardWriteAll = clipboard.WriteAll

// DefaultFeedback is how long a successful copy stays confirmed.
const DefaultFeedback = 2 * time.Second

// Copier writes text to the clipboard. A successful copy opens a feedback
// window during which Copied reports true; a failure is only logged.
type Copier struct {
	mu       sync.Mutex
	write    func(string) error
	feedback time.Duration
	until    time.Time
	now      func() time.Time
	logger   zerolog.Logger
}

type Option func(*Copier)

// WithWriter replaces the system clipboard, for callers without one.
func WithWriter(write func(string) error) Option {
	return func(c *Copier) { c.write = write }
}

func NewCopier(feedback time.Duration, logger zerolog.Logger, opts ...Option) *Copier {
	if feedback <= 0 {
		feedback = DefaultFeedback
	}
	c := &Copier{write: clipboardWriteAll, feedback: feedback, now: time.Now, logger: logger}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Copy writes text and reports whether it reached the clipboard. Each
// success restarts the feedback window.
func (c *Copier) Copy(text string) bool {
	if err := c.write(text); err != nil {
		c.logger.Warn().Err(err).Msg("failed to copy URL to clipboard")
		return false
	}

	c.mu.Lock()
	c.until = c.now().Add(c.feedback)
	c.mu.Unlock()
	return true
}

// Copied reports whether the last successful copy is still inside its
// feedback window at now.
func (c *Copier) Copied(now time.Time) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return now.Before(c.until)
}

// Feedback returns the length of the confirmation window.
func (c *Copier) Feedback() time.Duration {
	return c.feedback
}
