package controller

import (
	"context"
	"errors"
	"time"

	"github.com/Sternrassler/swapi-client/pkg/client"
)

// run executes one logical fetch sequence: up to MaxAttempts network
// attempts for the given cursor, with exponential backoff between
// transient failures. gen identifies the sequence; once a newer sequence
// starts (or the controller closes), this one stops mutating state.
func (c *Controller) run(ctx context.Context, gen uint64, cursor string) {
	backoff := c.config.InitialBackoff

	for attempt := 0; ; attempt++ {
		page, err := c.fetcher.FetchPage(ctx, cursor)

		// Superseded or torn down: terminate silently. The cancellation
		// check must come before any state mutation derived from this
		// attempt, so a just-cancelled attempt cannot apply its result.
		if ctx.Err() != nil || errors.Is(err, context.Canceled) {
			c.logger.Debug().
				Str("page_url", cursor).
				Int("attempt", attempt).
				Msg("Fetch sequence cancelled")
			return
		}

		if err == nil {
			c.settleSuccess(gen, cursor, page)
			return
		}

		if !client.Retryable(err) {
			// Permanent client error: surface immediately, no retry.
			c.logger.Warn().
				Err(err).
				Str("page_url", cursor).
				Msg("Permanent fetch error")
			fetchSequencesTotal.WithLabelValues("client_error").Inc()
			c.settleFailure(gen, client.Message(err))
			return
		}

		if attempt >= c.config.MaxAttempts-1 {
			c.logger.Warn().
				Err(err).
				Str("page_url", cursor).
				Int("max_attempts", c.config.MaxAttempts).
				Msg("Retry attempts exhausted")
			retryExhaustedTotal.Inc()
			fetchSequencesTotal.WithLabelValues("exhausted").Inc()
			c.settleFailure(gen, client.Message(err))
			return
		}

		retriesTotal.Inc()
		retryBackoffSeconds.Observe(backoff.Seconds())

		c.logger.Debug().
			Err(err).
			Str("page_url", cursor).
			Int("attempt", attempt).
			Dur("backoff", backoff).
			Msg("Retrying fetch after backoff")

		// Loading stays true throughout the wait and the retry.
		select {
		case <-ctx.Done():
			return
		case <-time.After(backoff):
		}

		backoff = time.Duration(float64(backoff) * c.config.BackoffMultiplier)
	}
}

// settleSuccess applies a successful response: items and page links are
// replaced together, the error is cleared, loading ends.
func (c *Controller) settleSuccess(gen uint64, cursor string, page *client.Page) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return
	}

	c.state.Items = page.Results
	c.state.Pages = Pages{
		Previous: page.Previous,
		Current:  cursor,
		Next:     page.Next,
	}
	c.clearErrorLocked()
	c.state.Loading = false

	fetchSequencesTotal.WithLabelValues("success").Inc()

	c.logger.Debug().
		Str("page_url", cursor).
		Int("items", len(page.Results)).
		Msg("Fetch sequence settled")

	c.notifyLocked()
}

// settleFailure surfaces a terminal failure and arms the dismiss timer.
func (c *Controller) settleFailure(gen uint64, message string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || gen != c.gen {
		return
	}

	c.state.Error = message
	c.state.Loading = false
	c.armDismissLocked()

	c.notifyLocked()
}

// armDismissLocked schedules the auto-dismiss of the current error,
// superseding any previously armed timer.
func (c *Controller) armDismissLocked() {
	c.stopDismissLocked()

	c.errSeq++
	seq := c.errSeq
	c.dismiss = time.AfterFunc(c.config.ErrorDismissAfter, func() {
		c.dismissError(seq)
	})
}

// dismissError clears the error set under errSeq seq, unless a newer
// error transition has superseded the timer in the meantime.
func (c *Controller) dismissError(seq uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed || seq != c.errSeq || c.state.Error == "" {
		return
	}

	c.state.Error = ""
	c.logger.Debug().Msg("Error auto-dismissed")
	c.notifyLocked()
}

// clearErrorLocked clears a surfaced error and invalidates its timer.
func (c *Controller) clearErrorLocked() {
	if c.state.Error == "" {
		return
	}
	c.state.Error = ""
	c.errSeq++
	c.stopDismissLocked()
}

// stopDismissLocked stops a pending dismiss timer, if any.
func (c *Controller) stopDismissLocked() {
	if c.dismiss != nil {
		c.dismiss.Stop()
		c.dismiss = nil
	}
}
