package dashboard

import (
	"time"

	"github.com/rebeliceyang/surveylens/internal/models"
)

// ColumnData is everything fetched for one filter state
type ColumnData struct {
	Filters  models.FilterState
	Count    models.Result[int64]
	Rows     models.Result[[]models.DashboardRow]
	Sections models.Result[map[string]int64]
	Charts   map[string]models.Result[models.Breakdown]
	// Degraded is set when any query ran with its filters dropped
	Degraded  bool
	FetchedAt time.Time
	Duration  time.Duration
}

// Loaded reports whether the column has been fetched at least once
func (d ColumnData) Loaded() bool {
	return !d.FetchedAt.IsZero()
}

// Viewport is the position the user was looking at before a refetch
type Viewport struct {
	SectionID string
	ChartID   string
	Offset    int
}

// Ticket is a pending refresh of one column. The filter snapshot is taken
// when the ticket is issued, never read back from the controller.
type Ticket struct {
	Column    models.Column
	Seq       uint64
	RefreshID string
	Filters   models.FilterState
}

// Valid reports whether the ticket requests a fetch
func (t Ticket) Valid() bool {
	return t.Seq > 0
}

// Update is the outcome of running a ticket
type Update struct {
	Column    models.Column
	Seq       uint64
	RefreshID string
	// Stale is set when a newer ticket for the column was issued before
	// this one resolved; the data was discarded.
	Stale bool
	Data  ColumnData
	// Viewport is handed back once, with the first fresh update after the
	// mutation that captured it.
	Viewport *Viewport
}

// View is a read-only snapshot of the controller
type View struct {
	Comparing  bool
	Comparison models.ComparisonState
	Single     models.FilterState
	SectionID  string
	Columns    [2]ColumnData
	Pending    [2]bool
	// Err is set once initialization failed; the session cannot recover
	Err error
}

// Active returns the filter state edits currently apply to
func (v View) Active() models.FilterState {
	if v.Comparing {
		return v.Comparison.Column(v.Comparison.Active)
	}
	return v.Single
}

// Failed reports whether the session is in the fatal state
func (v View) Failed() bool {
	return v.Err != nil
}
