// Package dashboard owns the filter and comparison state of a session and
// sequences the fetches that keep chart data consistent with it.
//
// Mutations compute the next state synchronously and return a Ticket that
// carries a snapshot of it. Run performs the fetch; a ticket superseded by
// a newer one for the same column resolves as stale and is discarded.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/presets"
	"github.com/rebeliceyang/surveylens/internal/registry"
	"github.com/rebeliceyang/surveylens/internal/urlstate"
)

// ErrSessionFailed marks every operation after a failed initialization
var ErrSessionFailed = errors.New("session failed")

// Fetcher runs the read operations charts depend on
type Fetcher interface {
	RespondentCount(ctx context.Context, state models.FilterState) models.Result[int64]
	DashboardRows(ctx context.Context, state models.FilterState) models.Result[[]models.DashboardRow]
	SectionCounts(ctx context.Context, state models.FilterState) models.Result[map[string]int64]
	Breakdown(ctx context.Context, chartID string, state models.FilterState) models.Result[models.Breakdown]
}

// Initializer brings the query engine up
type Initializer interface {
	Initialize(ctx context.Context) error
}

// Config wires a controller
type Config struct {
	Registry *registry.Registry
	Fetcher  Fetcher
	Engine   Initializer
	// LoadOptions returns live option values per category. Optional.
	LoadOptions func(ctx context.Context) (map[string][]string, error)
	Presets     *presets.Manager
	Codec       *urlstate.Codec
	Logger      *zap.Logger
	// FetchLimit caps concurrent queries of one refresh; 0 means no cap
	FetchLimit int
}

// Controller is the session orchestrator
type Controller struct {
	reg         *registry.Registry
	fetcher     Fetcher
	engine      Initializer
	loadOptions func(ctx context.Context) (map[string][]string, error)
	presets     *presets.Manager
	codec       *urlstate.Codec
	logger      *zap.Logger
	limit       int
	restorer    urlstate.Restorer

	mu        sync.Mutex
	single    models.FilterState
	cmp       models.ComparisonState
	comparing bool
	section   string
	options   map[string][]string
	seq       [2]uint64
	data      [2]ColumnData
	pending   [2]bool
	viewport  Viewport
	memento   [2]*Viewport
	baseline  map[string][]string
	failed    error
}

// New creates a controller with empty filters in single mode
func New(cfg Config) *Controller {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	reg := cfg.Registry
	if reg == nil {
		reg = registry.Default()
	}
	codec := cfg.Codec
	if codec == nil {
		codec = urlstate.NewCodec(reg, logger.Named("urlstate"), false)
	}
	return &Controller{
		reg:         reg,
		fetcher:     cfg.Fetcher,
		engine:      cfg.Engine,
		loadOptions: cfg.LoadOptions,
		presets:     cfg.Presets,
		codec:       codec,
		logger:      logger,
		limit:       cfg.FetchLimit,
		single:      reg.NewState(),
		cmp: models.ComparisonState{
			A: reg.NewState(),
			B: reg.NewState(),
		},
	}
}

// View returns a snapshot of the session
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()
	return View{
		Comparing:  c.comparing,
		Comparison: c.cmp.Clone(),
		Single:     c.single.Clone(),
		SectionID:  c.section,
		Columns:    c.data,
		Pending:    c.pending,
		Err:        c.failed,
	}
}

// Options returns the live option values loaded at initialization
func (c *Controller) Options() map[string][]string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.options
}

// Registry returns the filter catalog
func (c *Controller) Registry() *registry.Registry {
	return c.reg
}

// Fragment serializes the current state for the address bar
func (c *Controller) Fragment() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.comparing {
		cmp := c.cmp.Clone()
		return c.codec.Serialize(nil, c.section, &cmp)
	}
	return c.codec.Serialize(c.single, c.section, nil)
}

// NextFragment returns the fragment for the current state and whether it
// differs from prev
func (c *Controller) NextFragment(prev string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.comparing {
		cmp := c.cmp.Clone()
		return c.codec.NextFragment(prev, nil, c.section, &cmp)
	}
	return c.codec.NextFragment(prev, c.single, c.section, nil)
}

// Presets returns the preset manager, nil when presets are disabled
func (c *Controller) Presets() *presets.Manager {
	return c.presets
}

// SavePreset stores the active filters as a user preset
func (c *Controller) SavePreset(name, description string) (*presets.Preset, error) {
	if c.presets == nil {
		return nil, fmt.Errorf("presets are not configured")
	}
	c.mu.Lock()
	_, state := c.activeLocked()
	state = state.Clone()
	c.mu.Unlock()
	return c.presets.Add(name, description, state)
}

// SetSection records the section in view
func (c *Controller) SetSection(id string) {
	c.mu.Lock()
	c.section = id
	c.mu.Unlock()
}

// SetViewport records where the user is looking. It is captured by the
// next mutation and handed back with that refresh's update.
func (c *Controller) SetViewport(v Viewport) {
	c.mu.Lock()
	c.viewport = v
	c.mu.Unlock()
}

// Toggle adds or removes one value of the active state
func (c *Controller) Toggle(key, value string) Ticket {
	return c.mutate(func(fs models.FilterState) bool {
		return fs.Toggle(key, c.codec.Canonical(key, value, c.options))
	})
}

// Set replaces the values of one category of the active state
func (c *Controller) Set(key string, values []string) Ticket {
	return c.mutate(func(fs models.FilterState) bool {
		return fs.Set(key, c.canonicalLocked(key, values))
	})
}

// Clear empties the active state
func (c *Controller) Clear() Ticket {
	return c.replace(c.reg.NewState())
}

// ApplyPreset replaces the active state with a preset overlaid on an empty
// state
func (c *Controller) ApplyPreset(id string) (Ticket, error) {
	if c.presets == nil {
		return Ticket{}, fmt.Errorf("presets are not configured")
	}
	p, err := c.presets.Get(id)
	if err != nil {
		return Ticket{}, err
	}
	c.logger.Debug("applying preset", zap.String("preset", p.ID))
	return c.replace(c.presets.Overlay(*p)), nil
}

// EnterCompare seeds column A with the single-mode filters and resets
// column B. Only column B needs a fetch, and only when its last data was
// for other filters.
func (c *Controller) EnterCompare() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil || c.comparing {
		return Ticket{}
	}

	c.comparing = true
	c.cmp.A = c.single.Clone()
	c.cmp.B = c.reg.NewState()
	c.cmp.Active = models.ColumnA
	c.cmp.BMounted = true

	b := c.data[models.ColumnB]
	if b.Loaded() && b.Filters.Equal(c.cmp.B) {
		return Ticket{}
	}
	return c.issueLocked(models.ColumnB, c.cmp.B)
}

// ExitCompare makes column A the single-mode state. Column B stays mounted.
func (c *Controller) ExitCompare() Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil || !c.comparing {
		return Ticket{}
	}

	c.comparing = false
	c.single = c.cmp.A.Clone()

	a := c.data[models.ColumnA]
	if c.pending[models.ColumnA] || (a.Loaded() && a.Filters.Equal(c.single)) {
		return Ticket{}
	}
	return c.issueLocked(models.ColumnA, c.single)
}

// Refresh refetches every mounted column with its current filters
func (c *Controller) Refresh() []Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil {
		return nil
	}
	tickets := []Ticket{c.refreshLocked(models.ColumnA)}
	if c.comparing {
		tickets = append(tickets, c.refreshLocked(models.ColumnB))
	}
	return tickets
}

// SetActiveColumn selects which column edits apply to in comparison mode
func (c *Controller) SetActiveColumn(col models.Column) {
	c.mu.Lock()
	if c.comparing {
		c.cmp.Active = col
	}
	c.mu.Unlock()
}

func (c *Controller) mutate(fn func(models.FilterState) bool) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil {
		return Ticket{}
	}

	col, state := c.activeLocked()
	next := state.Clone()
	if !fn(next) {
		return Ticket{}
	}
	c.storeLocked(col, next)
	return c.issueLocked(col, next)
}

func (c *Controller) replace(next models.FilterState) Ticket {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.failed != nil {
		return Ticket{}
	}
	for key, vals := range next {
		next[key] = c.canonicalLocked(key, vals)
	}
	col, _ := c.activeLocked()
	c.storeLocked(col, next)
	return c.issueLocked(col, next)
}

// canonicalLocked maps values to the storage form of the option rows, so
// presets and typed values toggle the same entries as the filter panel
func (c *Controller) canonicalLocked(key string, values []string) []string {
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = c.codec.Canonical(key, v, c.options)
		if !slices.ContainsFunc(out, func(o string) bool { return models.SameValue(o, v) }) {
			out = append(out, v)
		}
	}
	return out
}

func (c *Controller) activeLocked() (models.Column, models.FilterState) {
	if c.comparing {
		return c.cmp.Active, c.cmp.Column(c.cmp.Active)
	}
	return models.ColumnA, c.single
}

func (c *Controller) storeLocked(col models.Column, state models.FilterState) {
	switch {
	case !c.comparing:
		c.single = state
	case col == models.ColumnB:
		c.cmp.B = state
	default:
		c.cmp.A = state
	}
}

// issueLocked bumps the column sequence and captures the viewport
func (c *Controller) issueLocked(col models.Column, state models.FilterState) Ticket {
	c.seq[col]++
	c.pending[col] = true
	vp := c.viewport
	c.memento[col] = &vp

	t := Ticket{
		Column:    col,
		Seq:       c.seq[col],
		RefreshID: uuid.NewString(),
		Filters:   state.Clone(),
	}
	c.logger.Debug("refresh issued",
		zap.Stringer("column", col),
		zap.Uint64("seq", t.Seq),
		zap.String("refresh_id", t.RefreshID),
		zap.Int("active_filters", state.Active()))
	return t
}

// refreshLocked issues a ticket for a column's current state
func (c *Controller) refreshLocked(col models.Column) Ticket {
	state := c.single
	if c.comparing {
		state = c.cmp.Column(col)
	}
	return c.issueLocked(col, state)
}
