package dashboard

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/survey"
)

// Run fetches the ticket's snapshot and applies it unless a newer ticket
// for the same column was issued meanwhile.
func (c *Controller) Run(ctx context.Context, t Ticket) Update {
	u := Update{Column: t.Column, Seq: t.Seq, RefreshID: t.RefreshID}
	if !t.Valid() {
		return u
	}

	data := c.fetch(ctx, t.Filters)

	c.mu.Lock()
	defer c.mu.Unlock()

	if t.Seq != c.seq[t.Column] {
		c.logger.Debug("discarding stale refresh",
			zap.Stringer("column", t.Column),
			zap.Uint64("seq", t.Seq),
			zap.Uint64("latest", c.seq[t.Column]),
			zap.String("refresh_id", t.RefreshID))
		u.Stale = true
		return u
	}

	c.captureBaselineLocked(data)
	c.applyBaselineLocked(&data)

	c.data[t.Column] = data
	c.pending[t.Column] = false
	u.Viewport = c.memento[t.Column]
	c.memento[t.Column] = nil
	u.Data = data

	c.logger.Debug("refresh applied",
		zap.Stringer("column", t.Column),
		zap.Uint64("seq", t.Seq),
		zap.String("refresh_id", t.RefreshID),
		zap.Duration("took", data.Duration),
		zap.Bool("degraded", data.Degraded))
	return u
}

// fetch fans out every read operation for one state. Failures stay inside
// their own result and never abort siblings.
func (c *Controller) fetch(ctx context.Context, state models.FilterState) ColumnData {
	start := time.Now()
	charts := c.reg.Charts()

	d := ColumnData{Filters: state}
	results := make([]models.Result[models.Breakdown], len(charts))

	var g errgroup.Group
	if c.limit > 0 {
		g.SetLimit(c.limit)
	}
	g.Go(func() error {
		d.Count = c.fetcher.RespondentCount(ctx, state)
		return nil
	})
	g.Go(func() error {
		d.Rows = c.fetcher.DashboardRows(ctx, state)
		return nil
	})
	g.Go(func() error {
		d.Sections = c.fetcher.SectionCounts(ctx, state)
		return nil
	})
	for i, ch := range charts {
		g.Go(func() error {
			results[i] = c.fetcher.Breakdown(ctx, ch.ID, state)
			return nil
		})
	}
	_ = g.Wait()

	d.Charts = make(map[string]models.Result[models.Breakdown], len(charts))
	d.Degraded = d.Count.Degraded || d.Rows.Degraded || d.Sections.Degraded
	for i, ch := range charts {
		d.Charts[ch.ID] = results[i]
		d.Degraded = d.Degraded || results[i].Degraded
	}
	d.FetchedAt = time.Now()
	d.Duration = d.FetchedAt.Sub(start)
	return d
}

// captureBaselineLocked records label order from the first unfiltered load
func (c *Controller) captureBaselineLocked(d ColumnData) {
	if c.baseline != nil || !d.Filters.IsEmpty() {
		return
	}
	c.baseline = make(map[string][]string, len(d.Charts))
	for id, r := range d.Charts {
		if r.Failed() || len(r.Data.Items) == 0 {
			continue
		}
		c.baseline[id] = survey.Labels(r.Data.Items)
	}
	c.logger.Debug("baseline order captured", zap.Int("charts", len(c.baseline)))
}

func (c *Controller) applyBaselineLocked(d *ColumnData) {
	for id, r := range d.Charts {
		order, ok := c.baseline[id]
		if !ok || r.Failed() {
			continue
		}
		r.Data.Items = survey.ApplyOrder(r.Data.Items, order)
		d.Charts[id] = r
	}
}

// Baseline returns the captured label order of a chart
func (c *Controller) Baseline(chartID string) []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.baseline[chartID]
}
