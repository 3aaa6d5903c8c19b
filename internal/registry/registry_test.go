package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rebeliceyang/surveylens/internal/models"
)

func TestDefault_Keys(t *testing.T) {
	reg := Default()
	keys := reg.Keys()
	require.NotEmpty(t, keys)
	assert.Equal(t, Continent, keys[0], "continent compiles first")

	seen := make(map[string]bool)
	for _, k := range keys {
		assert.False(t, seen[k], "duplicate key %s", k)
		seen[k] = true
		assert.True(t, reg.Has(k))
	}
	assert.False(t, reg.Has("nope"))

	state := reg.NewState()
	assert.Len(t, state, len(keys))
	assert.True(t, state.IsEmpty())
}

func TestDefault_Categories(t *testing.T) {
	reg := Default()
	for _, c := range reg.Categories() {
		assert.NotEmpty(t, c.Name, c.Key)
		assert.NotEmpty(t, c.QuestionID, c.Key)
		assert.NotEmpty(t, c.Options, "%s has no options", c.Key)
	}

	purpose, ok := reg.Category(Purpose)
	require.True(t, ok)
	assert.True(t, purpose.MultiSelect)
	assert.True(t, reg.IsMultiSelect(purpose.QuestionID))

	exp, ok := reg.Category(Experience)
	require.True(t, ok)
	assert.False(t, reg.IsMultiSelect(exp.QuestionID))

	_, ok = reg.Category("nope")
	assert.False(t, ok)
}

func TestDefault_Charts(t *testing.T) {
	reg := Default()
	ids := make(map[string]bool)
	for _, c := range reg.Charts() {
		assert.False(t, ids[c.ID], "duplicate chart %s", c.ID)
		ids[c.ID] = true
		assert.NotEmpty(t, c.Heading, c.ID)
		if c.Kind == models.ChartMatrix {
			assert.NotEmpty(t, c.Rows, c.ID)
		}
	}

	chart, ok := reg.Chart("world-map")
	require.True(t, ok)
	assert.Equal(t, models.ChartMap, chart.Kind)
	assert.Equal(t, GeographyQuestionID, chart.QuestionID)

	_, ok = reg.Chart("nope")
	assert.False(t, ok)

	// returned slices are copies
	charts := reg.Charts()
	charts[0].ID = "changed"
	assert.NotEqual(t, "changed", reg.Charts()[0].ID)
}

func TestContinents(t *testing.T) {
	reg := Default()
	for _, name := range reg.StaticOptions(Continent) {
		codes := reg.ContinentCodes(name)
		require.NotEmpty(t, codes, name)
		for _, code := range codes {
			got, ok := reg.ContinentOf(code)
			require.True(t, ok)
			assert.Equal(t, name, got, "code %d", code)
		}
	}

	_, ok := reg.ContinentOf(-1)
	assert.False(t, ok)
	assert.Empty(t, reg.ContinentCodes("Atlantis"))
}

func TestLabel(t *testing.T) {
	reg := Default()
	assert.Equal(t, "Hobbyist / personal",
		reg.Label(Purpose, "Hobbyist/Personal projects (home automation, learning, experiments)"))
	assert.Equal(t, "Hobbyist / personal",
		reg.Label(Purpose, `["Hobbyist/Personal projects (home automation, learning, experiments)"]`),
		"wrapped live values resolve to the same label")
	assert.Equal(t, "unknown value", reg.Label(Purpose, "unknown value"))
	assert.Equal(t, "x", reg.Label("nope", "x"))
}

func TestStaticOptions(t *testing.T) {
	reg := Default()
	assert.Contains(t, reg.StaticOptions(Continent), "Europe")
	assert.Nil(t, reg.StaticOptions("nope"))
}
