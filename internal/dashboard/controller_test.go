package dashboard

import (
	"context"
	"errors"
	"slices"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/presets"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const slowValue = "5 to 10 years"

// fakeFetcher answers from the filter state alone. Queries whose
// experience filter holds slowValue block until release is closed.
type fakeFetcher struct {
	release   chan struct{}
	failChart string
	counts    atomic.Int64
}

func newFakeFetcher() *fakeFetcher {
	return &fakeFetcher{release: make(chan struct{})}
}

func (f *fakeFetcher) wait(state models.FilterState) {
	if slices.Contains(state[registry.Experience], slowValue) {
		<-f.release
	}
}

func (f *fakeFetcher) RespondentCount(_ context.Context, state models.FilterState) models.Result[int64] {
	f.counts.Add(1)
	f.wait(state)
	return models.OK(int64(600 - 100*state.Active()))
}

func (f *fakeFetcher) DashboardRows(_ context.Context, state models.FilterState) models.Result[[]models.DashboardRow] {
	f.wait(state)
	return models.OK([]models.DashboardRow{{QuestionID: "ElR6d2", Section: registry.SectionRespondents, Answered: 10}})
}

func (f *fakeFetcher) SectionCounts(_ context.Context, state models.FilterState) models.Result[map[string]int64] {
	f.wait(state)
	return models.OK(map[string]int64{registry.SectionRespondents: 10})
}

// Breakdown returns a, b, c largest first when unfiltered and c, b, a
// once anything is filtered.
func (f *fakeFetcher) Breakdown(_ context.Context, chartID string, state models.FilterState) models.Result[models.Breakdown] {
	f.wait(state)
	if chartID == f.failChart {
		return models.Fail(models.KindEngine, errors.New("boom"), models.Breakdown{ChartID: chartID, Items: []models.BreakdownItem{}})
	}
	items := []models.BreakdownItem{{Label: "a", Count: 3}, {Label: "b", Count: 2}, {Label: "c", Count: 1}}
	if !state.IsEmpty() {
		items = []models.BreakdownItem{{Label: "c", Count: 5}, {Label: "b", Count: 1}, {Label: "a", Count: 0}}
	}
	return models.OK(models.Breakdown{ChartID: chartID, Items: items})
}

type fakeEngine struct {
	err error
}

func (e fakeEngine) Initialize(context.Context) error {
	return e.err
}

func newController(t *testing.T, f *fakeFetcher) *Controller {
	t.Helper()
	pm, err := presets.NewManager(t.TempDir(), registry.Default(), nil)
	require.NoError(t, err)
	c := New(Config{
		Registry: registry.Default(),
		Fetcher:  f,
		Engine:   fakeEngine{},
		Presets:  pm,
	})
	require.NoError(t, c.Init(context.Background(), ""))
	return c
}

func labels(r models.Result[models.Breakdown]) []string {
	out := make([]string, len(r.Data.Items))
	for i, it := range r.Data.Items {
		out[i] = it.Label
	}
	return out
}

func TestInit_LoadsUnfilteredAndBaseline(t *testing.T) {
	c := newController(t, newFakeFetcher())

	v := c.View()
	require.False(t, v.Failed())
	assert.True(t, v.Columns[models.ColumnA].Loaded())
	assert.Equal(t, int64(600), v.Columns[models.ColumnA].Count.Data)
	assert.Len(t, v.Columns[models.ColumnA].Charts, len(registry.Default().Charts()))
	assert.Equal(t, []string{"a", "b", "c"}, c.Baseline("experience"))
	assert.False(t, v.Columns[models.ColumnB].Loaded(), "column B is never fetched before comparison")
}

func TestToggle_KeepsBaselineOrder(t *testing.T) {
	c := newController(t, newFakeFetcher())
	ctx := context.Background()

	tk := c.Toggle(registry.Experience, "2 to 5 years")
	require.True(t, tk.Valid())
	assert.Equal(t, []string{"2 to 5 years"}, tk.Filters[registry.Experience])

	u := c.Run(ctx, tk)
	require.False(t, u.Stale)
	assert.Equal(t, int64(500), u.Data.Count.Data)
	assert.Equal(t, []string{"a", "b", "c"}, labels(u.Data.Charts["experience"]), "bars must not reorder under filters")
}

func TestToggle_UnknownKeyIsNoop(t *testing.T) {
	c := newController(t, newFakeFetcher())
	assert.False(t, c.Toggle("bogus", "x").Valid())
	assert.False(t, c.View().Single.Has("bogus"))
}

func TestTicket_SnapshotIsIsolated(t *testing.T) {
	c := newController(t, newFakeFetcher())

	first := c.Toggle(registry.Experience, "2 to 5 years")
	second := c.Toggle(registry.Experience, "1 to 2 years")

	assert.Equal(t, []string{"2 to 5 years"}, first.Filters[registry.Experience])
	assert.Equal(t, []string{"2 to 5 years", "1 to 2 years"}, second.Filters[registry.Experience])
	assert.Greater(t, second.Seq, first.Seq)
}

func TestRun_StaleResultIsDiscarded(t *testing.T) {
	f := newFakeFetcher()
	c := newController(t, f)
	ctx := context.Background()

	slow := c.Set(registry.Experience, []string{slowValue})
	fast := c.Set(registry.Experience, []string{"2 to 5 years"})

	var wg sync.WaitGroup
	var slowUpdate Update
	wg.Add(1)
	go func() {
		defer wg.Done()
		slowUpdate = c.Run(ctx, slow)
	}()

	fastUpdate := c.Run(ctx, fast)
	require.False(t, fastUpdate.Stale)

	close(f.release)
	wg.Wait()

	assert.True(t, slowUpdate.Stale)
	got := c.View().Columns[models.ColumnA].Filters
	assert.Equal(t, []string{"2 to 5 years"}, got[registry.Experience])
}

func TestChartFailureDoesNotBlockSiblings(t *testing.T) {
	f := newFakeFetcher()
	f.failChart = "industry"
	c := newController(t, f)

	d := c.View().Columns[models.ColumnA]
	failed := d.Charts["industry"]
	assert.True(t, failed.Failed())
	assert.Equal(t, models.KindEngine, failed.Kind)
	assert.Empty(t, failed.Data.Items)

	assert.False(t, d.Charts["experience"].Failed())
	assert.False(t, d.Count.Failed())
	assert.Equal(t, int64(600), d.Count.Data)
}

func TestCompare_Isolation(t *testing.T) {
	c := newController(t, newFakeFetcher())
	ctx := context.Background()

	c.Run(ctx, c.Toggle(registry.Experience, "2 to 5 years"))
	before := c.View().Single

	b := c.EnterCompare()
	require.True(t, b.Valid())
	assert.Equal(t, models.ColumnB, b.Column)
	assert.True(t, b.Filters.IsEmpty())
	c.Run(ctx, b)

	v := c.View()
	require.True(t, v.Comparing)
	assert.True(t, v.Comparison.BMounted)
	assert.Empty(t, cmp.Diff(before, v.Comparison.A))

	c.SetActiveColumn(models.ColumnB)
	tk := c.Toggle(registry.Industry, "Healthcare")
	assert.Equal(t, models.ColumnB, tk.Column)
	c.Run(ctx, tk)

	c.SetActiveColumn(models.ColumnA)
	c.Run(ctx, c.Toggle(registry.Continent, "Europe"))
	wantA := c.View().Comparison.A

	assert.False(t, c.ExitCompare().Valid(), "column A data is already current")

	v = c.View()
	assert.False(t, v.Comparing)
	assert.True(t, v.Comparison.BMounted, "B stays mounted after exit")
	assert.Empty(t, cmp.Diff(wantA, v.Single))
	assert.Empty(t, v.Single[registry.Industry], "column B must not leak")
}

func TestCompare_ReentryResetsB(t *testing.T) {
	f := newFakeFetcher()
	c := newController(t, f)
	ctx := context.Background()

	c.Run(ctx, c.EnterCompare())
	c.SetActiveColumn(models.ColumnB)
	c.Run(ctx, c.Toggle(registry.Industry, "Healthcare"))
	c.ExitCompare()

	b := c.EnterCompare()
	require.True(t, b.Valid(), "B data was for other filters")
	assert.True(t, b.Filters.IsEmpty())
	c.Run(ctx, b)
	c.ExitCompare()

	calls := f.counts.Load()
	assert.False(t, c.EnterCompare().Valid(), "B already holds unfiltered data")
	assert.Equal(t, calls, f.counts.Load())
}

func TestApplyPreset_PartialOverlay(t *testing.T) {
	c := newController(t, newFakeFetcher())

	c.Toggle(registry.Industry, "Healthcare")
	tk, err := c.ApplyPreset("newcomers")
	require.NoError(t, err)

	want := registry.Default().NewState()
	want.Set(registry.Experience, []string{"Less than 1 year", "1 to 2 years"})
	assert.Empty(t, cmp.Diff(want, tk.Filters))
	assert.Empty(t, cmp.Diff(want, c.View().Single))

	_, err = c.ApplyPreset("missing")
	assert.Error(t, err)
}

func TestApplyPreset_ValuesMatchLiveOptions(t *testing.T) {
	pm, err := presets.NewManager(t.TempDir(), registry.Default(), nil)
	require.NoError(t, err)
	c := New(Config{
		Fetcher: newFakeFetcher(),
		Engine:  fakeEngine{},
		Presets: pm,
		LoadOptions: func(context.Context) (map[string][]string, error) {
			return map[string][]string{registry.Experience: {
				`["Less than 1 year"]`, `["1 to 2 years"]`, `["2 to 5 years"]`,
			}}, nil
		},
	})
	require.NoError(t, c.Init(context.Background(), ""))

	tk, err := c.ApplyPreset("newcomers")
	require.NoError(t, err)
	assert.Equal(t, []string{`["Less than 1 year"]`, `["1 to 2 years"]`}, tk.Filters[registry.Experience])

	// unchecking the panel row removes the preset value
	tk = c.Toggle(registry.Experience, `["Less than 1 year"]`)
	assert.Equal(t, []string{`["1 to 2 years"]`}, tk.Filters[registry.Experience])
	tk = c.Toggle(registry.Experience, "1 to 2 years")
	assert.Empty(t, tk.Filters[registry.Experience])

	c.Set(registry.Experience, []string{"2 to 5 years", `["2 to 5 years"]`})
	assert.Equal(t, []string{`["2 to 5 years"]`}, c.View().Single[registry.Experience])

	_, ok := c.HashChanged(context.Background(), c.Fragment())
	assert.False(t, ok, "own fragment echo must not refetch")
}

func TestClear(t *testing.T) {
	c := newController(t, newFakeFetcher())
	c.Toggle(registry.Experience, "2 to 5 years")

	tk := c.Clear()
	require.True(t, tk.Valid())
	assert.True(t, tk.Filters.IsEmpty())
	assert.True(t, c.View().Single.IsEmpty())
}

func TestViewportMementoHandedBackOnce(t *testing.T) {
	c := newController(t, newFakeFetcher())
	ctx := context.Background()

	vp := Viewport{SectionID: "section-usage", ChartID: "use-cases", Offset: 12}
	c.SetViewport(vp)
	u := c.Run(ctx, c.Toggle(registry.Experience, "2 to 5 years"))
	require.NotNil(t, u.Viewport)
	assert.Equal(t, vp, *u.Viewport)

	assert.Nil(t, c.Run(ctx, Ticket{}).Viewport)
}

func TestInitFailureIsFatal(t *testing.T) {
	f := newFakeFetcher()
	c := New(Config{Fetcher: f, Engine: fakeEngine{err: errors.New("attach failed")}})

	err := c.Init(context.Background(), "#?experience=2-to-5-years")
	require.ErrorIs(t, err, ErrSessionFailed)

	v := c.View()
	assert.True(t, v.Failed())
	assert.False(t, c.Toggle(registry.Experience, "2 to 5 years").Valid())
	assert.False(t, c.EnterCompare().Valid())
	assert.Zero(t, f.counts.Load(), "no query after a failed init")
}

func TestInit_RestoresFragment(t *testing.T) {
	f := newFakeFetcher()
	c := New(Config{
		Fetcher: f,
		Engine:  fakeEngine{},
		LoadOptions: func(context.Context) (map[string][]string, error) {
			return map[string][]string{registry.Experience: {`["2 to 5 years"]`}}, nil
		},
	})
	require.NoError(t, c.Init(context.Background(), "#section-experience?experience=2-to-5-years"))

	v := c.View()
	assert.Equal(t, "section-experience", v.SectionID)
	assert.Equal(t, []string{`["2 to 5 years"]`}, v.Single[registry.Experience])
	assert.Equal(t, []string{`["2 to 5 years"]`}, v.Columns[models.ColumnA].Filters[registry.Experience])
	assert.Equal(t, []string{"a", "b", "c"}, c.Baseline("experience"), "baseline comes from the unfiltered load")
	assert.False(t, c.Restoring())
}

func TestHashChanged(t *testing.T) {
	c := newController(t, newFakeFetcher())
	ctx := context.Background()

	updates, ok := c.HashChanged(ctx, "#?compare=true&a_continent=oceania&b_industry=manufacturing")
	require.True(t, ok)
	require.Len(t, updates, 2)

	v := c.View()
	require.True(t, v.Comparing)
	assert.Equal(t, []string{"Oceania"}, v.Comparison.A[registry.Continent])
	assert.Equal(t, []string{"Manufacturing"}, v.Comparison.B[registry.Industry])
	assert.Equal(t, "#?compare=true&a_continent=oceania&b_industry=manufacturing", c.Fragment())

	_, ok = c.HashChanged(ctx, c.Fragment())
	assert.False(t, ok, "own fragment echo must not refetch")

	_, ok = c.HashChanged(ctx, "#section-usage")
	require.True(t, ok)
	v = c.View()
	assert.False(t, v.Comparing)
	assert.True(t, v.Single.IsEmpty())
	assert.Equal(t, "#section-usage", c.Fragment())
}

func TestHashChanged_IgnoredWhileRestoring(t *testing.T) {
	f := newFakeFetcher()
	c := newController(t, f)
	ctx := context.Background()

	done := make(chan bool)
	go func() {
		_, ok := c.HashChanged(ctx, "#?experience=5-to-10-years")
		done <- ok
	}()

	require.Eventually(t, c.Restoring, time.Second, time.Millisecond)
	_, ok := c.HashChanged(ctx, "#?experience=2-to-5-years")
	assert.False(t, ok)

	close(f.release)
	assert.True(t, <-done)
	assert.Equal(t, []string{slowValue}, c.View().Single[registry.Experience])
}
