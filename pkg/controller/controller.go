// Package controller implements the paginated fetch controller.
//
// A Controller owns all state for one paginated remote resource: the
// loading flag, the last error, the decoded items, and the page tokens
// for forward/backward navigation. It performs cancellable retrieval,
// retries transient failures with exponential backoff, fails fast on
// client errors, and auto-dismisses surfaced errors after a fixed delay.
//
// One controller models exactly one active page view. Navigation is
// last-write-wins: starting a new fetch supersedes the previous one, and
// a superseded fetch never mutates state.
package controller

import (
	"context"
	"sync"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// PageFetcher performs a single network attempt for one page.
// *client.Client implements this interface.
type PageFetcher interface {
	// FetchPage fetches the page identified by pageURL, or the default
	// first page when pageURL is empty.
	FetchPage(ctx context.Context, pageURL string) (*client.Page, error)
}

// Pages holds the navigation tokens around the current page.
// The empty string means "no such page". Current is empty on the first page.
type Pages struct {
	Previous string
	Current  string
	Next     string
}

// State is the consumer-facing snapshot of the controller.
//
// Loading is true while a fetch sequence (including its retries and
// backoff waits) is outstanding. Error is the message of the last
// unrecoverable failure, or empty. Items and Pages always come from the
// same successful response.
type State struct {
	Loading bool
	Error   string
	Items   []client.Person
	Pages   Pages
}

// Config holds the controller configuration.
type Config struct {
	// MaxAttempts is the total number of network attempts per fetch
	// sequence, including the initial one.
	MaxAttempts int

	// InitialBackoff is the wait before the first retry. Each further
	// retry multiplies the wait by BackoffMultiplier.
	InitialBackoff time.Duration

	// BackoffMultiplier is the multiplier for exponential backoff.
	BackoffMultiplier float64

	// ErrorDismissAfter is how long a surfaced error stays visible
	// before it clears itself.
	ErrorDismissAfter time.Duration
}

// DefaultConfig returns the default controller configuration:
// 3 attempts with 1s/2s backoff, errors dismissed after 3s.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:       3,
		InitialBackoff:    1 * time.Second,
		BackoffMultiplier: 2.0,
		ErrorDismissAfter: 3 * time.Second,
	}
}

// Controller drives paginated retrieval of one remote resource.
type Controller struct {
	fetcher PageFetcher
	config  Config
	logger  zerolog.Logger

	mu      sync.Mutex
	state   State
	cursor  string
	gen     uint64 // fetch sequence generation, bumped on every new sequence
	cancel  context.CancelFunc
	errSeq  uint64 // bumped on every error transition, invalidates dismiss timers
	dismiss *time.Timer
	subs    map[int]chan State
	nextSub int
	closed  bool
}

// New creates a controller and immediately starts fetching the first page.
// The caller must Close the controller when the owning view goes away.
func New(fetcher PageFetcher, cfg Config) *Controller {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = 3
	}
	if cfg.InitialBackoff <= 0 {
		cfg.InitialBackoff = 1 * time.Second
	}
	if cfg.BackoffMultiplier <= 0 {
		cfg.BackoffMultiplier = 2.0
	}
	if cfg.ErrorDismissAfter <= 0 {
		cfg.ErrorDismissAfter = 3 * time.Second
	}

	c := &Controller{
		fetcher: fetcher,
		config:  cfg,
		logger:  log.With().Str("component", "fetch-controller").Logger(),
		state:   State{Loading: true},
		subs:    make(map[int]chan State),
	}

	c.mu.Lock()
	c.startSequenceLocked()
	c.mu.Unlock()

	return c
}

// State returns a snapshot of the current state. The items slice is
// copied, so callers may hold it across further state changes.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe registers for state updates. The returned channel always
// carries the latest state: when the consumer lags, intermediate
// snapshots are coalesced rather than queued. The returned function
// unsubscribes and closes the channel.
func (c *Controller) Subscribe() (<-chan State, func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	ch := make(chan State, 1)
	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subs[id] = ch

	return ch, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if sub, ok := c.subs[id]; ok {
			delete(c.subs, id)
			close(sub)
		}
	}
}

// GoToPage navigates to the page identified by token.
//
// An empty token is a no-op: the controller never navigates to an
// unspecified page. Navigating to the current cursor is also a no-op.
// Otherwise the token becomes the new cursor and a fresh fetch sequence
// starts, superseding any in-flight one.
func (c *Controller) GoToPage(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || token == "" || token == c.cursor {
		return
	}

	c.cursor = token
	pageNavigationsTotal.Inc()

	c.logger.Debug().
		Str("page_url", token).
		Msg("Navigating to page")

	c.startSequenceLocked()
}

// Close tears the controller down: the in-flight fetch is cancelled, a
// pending error-dismiss timer is stopped, and subscriber channels are
// closed. No state mutation is observable afterwards.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true

	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.stopDismissLocked()

	for id, ch := range c.subs {
		delete(c.subs, id)
		close(ch)
	}
}

// startSequenceLocked begins a new logical fetch sequence for the current
// cursor, cancelling the previous one. The previous error is deliberately
// left in place; it clears on success or when its dismiss timer fires.
func (c *Controller) startSequenceLocked() {
	if c.cancel != nil {
		c.cancel()
	}

	c.gen++
	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	c.state.Loading = true
	c.notifyLocked()

	go c.run(ctx, c.gen, c.cursor)
}

// snapshotLocked copies the current state for hand-out.
func (c *Controller) snapshotLocked() State {
	st := c.state
	if st.Items != nil {
		st.Items = append([]client.Person(nil), st.Items...)
	}
	return st
}

// notifyLocked delivers the current state to all subscribers. Each
// subscriber channel holds at most one pending snapshot; a stale pending
// snapshot is replaced by the newest one.
func (c *Controller) notifyLocked() {
	if len(c.subs) == 0 {
		return
	}

	st := c.snapshotLocked()
	for _, ch := range c.subs {
		select {
		case ch <- st:
		default:
			select {
			case <-ch:
			default:
			}
			ch <- st
		}
	}
}
