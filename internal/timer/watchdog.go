package timer

import (
	"context"
	"time"
)

// watch sleeps until deadline and then stops the timer identified by token.
//
// The clock is re-read after every wake-up, so a wake that arrives early
// (or a clock that moved backwards) just waits again.
func (c *Controller) watch(ctx context.Context, token string, deadline time.Time) {
	defer c.watchers.Done()

	for {
		remaining := deadline.Sub(c.clock.Now())
		if remaining <= 0 {
			c.expire(token)
			return
		}
		select {
		case <-ctx.Done():
			return
		case <-c.clock.After(remaining):
		}
	}
}

// expire runs the stop path on behalf of the watchdog.
// A token mismatch means the timer was stopped (and maybe replaced) already.
func (c *Controller) expire(token string) {
	c.mu.Lock()
	if c.current == nil || c.current.token != token {
		c.mu.Unlock()
		c.logger.Debug("watchdog fired for finished timer", "token", token)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.stopTimeout)
	snap, err := c.stopLocked(ctx, true)
	cancel()
	c.mu.Unlock()

	if err != nil {
		c.logger.Error("watchdog stop failed", "token", token, "error", err)
		return
	}
	if c.onAutoStop != nil {
		c.onAutoStop(snap)
	}
}
