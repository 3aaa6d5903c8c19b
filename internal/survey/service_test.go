package survey

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/surveylens/internal/db/connection"
	"github.com/rebeliceyang/surveylens/internal/db/dbtest"
	"github.com/rebeliceyang/surveylens/internal/db/query"
	"github.com/rebeliceyang/surveylens/internal/models"
	"github.com/rebeliceyang/surveylens/internal/registry"
)

func newService(t *testing.T, schema string) *Service {
	t.Helper()
	engine := connection.NewEngine(dbtest.Config(dbtest.Seed(t), schema), nil)
	require.NoError(t, engine.Initialize(context.Background()))
	t.Cleanup(func() { _ = engine.Close() })
	return NewService(registry.Default(), query.NewExecutor(engine, 32, 0, nil), nil)
}

func TestRespondentCount(t *testing.T) {
	for _, schema := range []string{"survey", ""} {
		t.Run("schema="+schema, func(t *testing.T) {
			s := newService(t, schema)
			ctx := context.Background()
			reg := registry.Default()

			all := s.RespondentCount(ctx, reg.NewState())
			require.NoError(t, all.Err)
			assert.Equal(t, int64(dbtest.Respondents), all.Data)

			state := reg.NewState()
			state.Set(registry.Experience, []string{`["2 to 5 years"]`})
			assert.Equal(t, int64(3), s.RespondentCount(ctx, state).Data)

			state.Set(registry.Continent, []string{"Oceania"})
			assert.Equal(t, int64(2), s.RespondentCount(ctx, state).Data)

			multi := reg.NewState()
			multi.Set(registry.UseCases, []string{`"Home automation"`})
			assert.Equal(t, int64(2), s.RespondentCount(ctx, multi).Data)
		})
	}
}

func TestBreakdown_SingleSelect(t *testing.T) {
	s := newService(t, "survey")
	res := s.Breakdown(context.Background(), "experience", registry.Default().NewState())
	require.NoError(t, res.Err)

	assert.Equal(t, "ElR6d2", res.Data.QuestionID)
	assert.Equal(t, int64(5), res.Data.Total)
	assert.Equal(t, []string{"2 to 5 years", "5 to 10 years", "Less than 1 year"}, Labels(res.Data.Items))
	assert.InDelta(t, 0.6, res.Data.Items[0].Share, 1e-9)
}

func TestBreakdown_MultiSelect(t *testing.T) {
	s := newService(t, "survey")
	res := s.Breakdown(context.Background(), "use-cases", registry.Default().NewState())
	require.NoError(t, res.Err)

	want := []models.BreakdownItem{
		{Label: "AI/LLM workflows", Count: 2, Share: 0.5},
		{Label: "Home automation", Count: 2, Share: 0.5},
		{Label: "Data processing/ETL", Count: 1, Share: 0.25},
	}
	if diff := cmp.Diff(want, res.Data.Items); diff != "" {
		t.Errorf("items mismatch (-want +got):\n%s", diff)
	}
}

func TestBreakdown_FilteredByContinent(t *testing.T) {
	s := newService(t, "survey")
	state := registry.Default().NewState()
	state.Set(registry.Continent, []string{"Oceania"})

	res := s.Breakdown(context.Background(), "experience", state)
	require.NoError(t, res.Err)
	require.Len(t, res.Data.Items, 1)
	assert.Equal(t, "2 to 5 years", res.Data.Items[0].Label)
	assert.Equal(t, int64(2), res.Data.Items[0].Count)
}

func TestBreakdown_Themes(t *testing.T) {
	s := newService(t, "survey")
	res := s.Breakdown(context.Background(), "challenges", registry.Default().NewState())
	require.NoError(t, res.Err)

	assert.Equal(t, "themes", res.Data.Kind)
	assert.Equal(t, []string{"Documentation", "Debugging", "Performance"}, Labels(res.Data.Items))
}

func TestBreakdown_Matrix(t *testing.T) {
	s := newService(t, "survey")
	res := s.Breakdown(context.Background(), "feature-ratings", registry.Default().NewState())
	require.NoError(t, res.Err)

	assert.Equal(t, int64(3), res.Data.Total)
	rows := map[string]int64{}
	for _, it := range res.Data.Items {
		rows[it.Row] += it.Count
	}
	assert.Equal(t, map[string]int64{"Editor": 3, "Debugging": 2}, rows)
}

func TestBreakdown_UnknownChart(t *testing.T) {
	s := newService(t, "survey")
	res := s.Breakdown(context.Background(), "nope", registry.Default().NewState())
	assert.True(t, res.Failed())
	assert.Equal(t, models.KindValidation, res.Kind)
	assert.ErrorIs(t, res.Err, ErrUnknownChart)
}

func TestChartSQL(t *testing.T) {
	s := newService(t, "survey")
	state := registry.Default().NewState()
	state.Set(registry.Experience, []string{"2 to 5 years"})

	sql, err := s.ChartSQL("experience", state)
	require.NoError(t, err)
	assert.Contains(t, sql, "survey.responses")
	assert.Contains(t, sql, "'ElR6d2'")
	assert.Contains(t, sql, "2 to 5 years")
	assert.NotContains(t, sql, "{{")

	_, err = s.ChartSQL("nope", state)
	assert.ErrorIs(t, err, ErrUnknownChart)
}

func TestDashboardRowsAndSections(t *testing.T) {
	s := newService(t, "survey")
	ctx := context.Background()

	rows := s.DashboardRows(ctx, registry.Default().NewState())
	require.NoError(t, rows.Err)
	require.Len(t, rows.Data, 6)
	assert.Equal(t, models.DashboardRow{QuestionID: "Lc8Xv1", Section: "Respondents", Answered: 6}, rows.Data[0])
	assert.Equal(t, int64(0), rows.Data[5].Answered)

	sections := s.SectionCounts(ctx, registry.Default().NewState())
	require.NoError(t, sections.Err)
	assert.Equal(t, map[string]int64{"Respondents": 6, "Usage": 4, "Satisfaction": 4}, sections.Data)
}

func TestService_EngineNotReady(t *testing.T) {
	engine := connection.NewEngine(dbtest.Config("missing.db", "survey"), nil)
	s := NewService(registry.Default(), query.NewExecutor(engine, 0, 0, nil), nil)

	res := s.RespondentCount(context.Background(), registry.Default().NewState())
	assert.True(t, res.Failed())
	assert.Equal(t, models.KindInit, res.Kind)
	assert.Zero(t, res.Data)

	b := s.Breakdown(context.Background(), "experience", registry.Default().NewState())
	assert.Equal(t, models.KindInit, b.Kind)
	assert.NotNil(t, b.Data.Items)
}

func TestApplyOrder(t *testing.T) {
	items := []models.BreakdownItem{
		{Label: "b", Count: 5},
		{Label: "new", Count: 4},
		{Label: "a", Count: 1},
	}
	got := Labels(ApplyOrder(items, []string{"a", "b", "c"}))
	assert.Equal(t, []string{"a", "b", "new"}, got)

	assert.Equal(t, items, ApplyOrder(items, nil))
}

func TestClassify(t *testing.T) {
	assert.Equal(t, models.KindNone, Classify(nil))
	assert.Equal(t, models.KindInit, Classify(connection.ErrNotReady))
	assert.Equal(t, models.KindEngine, Classify(assert.AnError))
}
