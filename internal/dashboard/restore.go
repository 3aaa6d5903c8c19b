package dashboard

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/urlstate"
)

// Init brings the engine up, loads live options, runs the unfiltered load
// that fixes the baseline order and finally restores fragment, if any.
// An engine failure is fatal for the session.
func (c *Controller) Init(ctx context.Context, fragment string) error {
	if c.engine != nil {
		if err := c.engine.Initialize(ctx); err != nil {
			c.mu.Lock()
			c.failed = err
			c.mu.Unlock()
			c.logger.Error("engine initialization failed", zap.Error(err))
			return fmt.Errorf("%w: %w", ErrSessionFailed, err)
		}
	}

	if c.loadOptions != nil {
		opts, err := c.loadOptions(ctx)
		if err != nil {
			c.logger.Warn("live options unavailable, using registry options", zap.Error(err))
		} else {
			c.mu.Lock()
			c.options = opts
			c.mu.Unlock()
		}
	}
	c.restorer.OptionsReady()

	c.mu.Lock()
	t := c.refreshLocked(models.ColumnA)
	c.mu.Unlock()
	c.Run(ctx, t)

	if fragment != "" {
		c.HashChanged(ctx, fragment)
	}
	return nil
}

// Restoring reports whether a fragment restoration is in flight. The
// address writer holds off while it is.
func (c *Controller) Restoring() bool {
	return c.restorer.Phase() != urlstate.Idle
}

// HashChanged restores state from a fragment, as on back/forward
// navigation. It does nothing while options are missing, another
// restoration is in flight or the fragment matches the current state.
func (c *Controller) HashChanged(ctx context.Context, fragment string) ([]Update, bool) {
	if !c.restorer.Begin() {
		return nil, false
	}
	defer c.restorer.Finish()

	parsed := c.codec.Parse(fragment, c.Options())

	c.mu.Lock()
	if c.failed != nil {
		c.mu.Unlock()
		return nil, false
	}
	c.section = parsed.SectionID

	var tickets []Ticket
	switch {
	case parsed.Comparison != nil:
		cmp := *parsed.Comparison
		if c.comparing && cmp.A.Equal(c.cmp.A) && cmp.B.Equal(c.cmp.B) {
			break
		}
		c.comparing = true
		c.cmp = cmp
		tickets = append(tickets,
			c.issueLocked(models.ColumnA, cmp.A),
			c.issueLocked(models.ColumnB, cmp.B))
	default:
		if !c.comparing && parsed.Filters.Equal(c.single) {
			break
		}
		c.comparing = false
		c.single = parsed.Filters
		tickets = append(tickets, c.issueLocked(models.ColumnA, parsed.Filters))
	}
	c.mu.Unlock()

	if len(tickets) == 0 {
		return nil, false
	}
	c.restorer.Restore()
	c.logger.Debug("restoring from fragment",
		zap.String("section", parsed.SectionID),
		zap.Bool("compare", parsed.Comparison != nil))

	updates := make([]Update, len(tickets))
	var g errgroup.Group
	for i, t := range tickets {
		g.Go(func() error {
			updates[i] = c.Run(ctx, t)
			return nil
		})
	}
	_ = g.Wait()
	return updates, true
}
