package integrity

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetAndSetPath(t *testing.T) {
	m := map[string]interface{}{
		"status": map[string]interface{}{"medical": "cleared"},
	}

	v, ok := getPath(m, "status.medical")
	require.True(t, ok)
	assert.Equal(t, "cleared", v)

	_, ok = getPath(m, "status.medical.deeper")
	assert.False(t, ok)
	_, ok = getPath(m, "skills.passing")
	assert.False(t, ok)

	setPath(m, "status.medical", "restricted")
	setPath(m, "skills.passing", 7.5)
	v, _ = getPath(m, "status.medical")
	assert.Equal(t, "restricted", v)
	v, ok = getPath(m, "skills.passing")
	require.True(t, ok)
	assert.Equal(t, 7.5, v)
}

func TestTopLevelAndPathWithin(t *testing.T) {
	assert.Equal(t, "status", topLevel("status.medical"))
	assert.Equal(t, "injuries", topLevel("injuries"))

	assert.True(t, pathWithin("status.medical", "status"))
	assert.True(t, pathWithin("status", "status"))
	assert.False(t, pathWithin("statusFoo", "status"))
	assert.False(t, pathWithin("status", "status.medical"))
}

func TestResolveUpdate(t *testing.T) {
	updates := map[string]interface{}{
		"status":         map[string]interface{}{"medical": "restricted"},
		"skills.passing": 8.0,
	}

	v, ok := resolveUpdate(updates, "skills.passing")
	require.True(t, ok)
	assert.Equal(t, 8.0, v)

	// rule path nested under a whole-namespace write
	v, ok = resolveUpdate(updates, "status.medical")
	require.True(t, ok)
	assert.Equal(t, "restricted", v)

	_, ok = resolveUpdate(updates, "status.fitness")
	assert.False(t, ok)
	_, ok = resolveUpdate(updates, "gameStats")
	assert.False(t, ok)
}

func TestKnownPath(t *testing.T) {
	for _, path := range []string{
		"personal",
		"personal.name",
		"status.medical",
		"injuries",
		"gameStats.goals",
		"skills",
		"skills.passing",
		"aiRating.overall",
		"playerValue.totalScore",
		"cohesionMetrics.teamwork",
	} {
		assert.True(t, knownPath(path), path)
	}
	for _, path := range []string{
		"status.mood",
		"injuries.0.status", // lists are replaced wholesale
		"skills.passing.depth",
		"salary",
	} {
		assert.False(t, knownPath(path), path)
	}
}

func TestDeriveCategoryPriority(t *testing.T) {
	assert.Equal(t, CategoryMedical, deriveCategory([]string{"injuries", "status.availability"}))
	assert.Equal(t, CategoryPersonal, deriveCategory([]string{"personal.name", "injuries"}))
	assert.Equal(t, CategoryAvailability, deriveCategory([]string{"status.fitness"}))
	assert.Equal(t, CategoryPersonal, deriveCategory([]string{"playerValue.totalScore"}))
}

func TestToFloat(t *testing.T) {
	for _, value := range []interface{}{42, int64(42), float32(42), 42.0} {
		f, ok := toFloat(value)
		require.True(t, ok)
		assert.InDelta(t, 42.0, f, 1e-6)
	}
	_, ok := toFloat("42")
	assert.False(t, ok)
}
