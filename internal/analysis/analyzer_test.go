package analysis

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
)

func TestNewSelectsFallbackWithoutAPIKey(t *testing.T) {
	a := New("", "gpt-4o-mini", zap.NewNop())
	assert.Nil(t, a.client)

	a = New("sk-test", "gpt-4o-mini", zap.NewNop())
	assert.NotNil(t, a.client)
}

func TestRateFallbackMatchesCascadeFormulas(t *testing.T) {
	doc := player.NewDocument(player.Personal{Name: "Robin Ash"})
	doc.Skills = map[string]float64{"passing": 8, "shooting": 6}
	doc.GameStats = player.GameStats{GamesPlayed: 10, Goals: 5, Assists: 2, MinutesPlayed: 800}
	doc.PhysicalAttributes = []player.PhysicalSnapshot{
		{WeightKG: 74, BodyFatPercent: 10, MuscleMassKG: 36},
	}

	a := New("", "", zap.NewNop())
	rating, err := a.Rate(context.Background(), &doc)
	require.NoError(t, err)

	assert.InDelta(t, integrity.PhysicalityScore(doc.PhysicalAttributes), rating.Physicality, 1e-9)
	assert.InDelta(t, integrity.SkillsetScore(doc.Skills), rating.Skillset, 1e-9)
	assert.InDelta(t, integrity.GameImpactScore(doc.GameStats), rating.GameImpact, 1e-9)
	assert.InDelta(t,
		integrity.OverallRating(rating.Physicality, rating.Skillset, rating.GameImpact),
		rating.Overall, 1e-9)
}

func TestFallbackEmptyDocument(t *testing.T) {
	doc := player.NewDocument(player.Personal{Name: "Robin Ash"})
	rating := Fallback(&doc)
	assert.Zero(t, rating.Physicality)
	assert.Zero(t, rating.Skillset)
	assert.Zero(t, rating.GameImpact)
	assert.Zero(t, rating.Overall)
}

func TestParseRating(t *testing.T) {
	rating, err := parseRating(`{"physicality": 7.5, "skillset": 8, "gameImpact": 6, "overall": 7.2}`)
	require.NoError(t, err)
	assert.InDelta(t, 7.5, rating.Physicality, 1e-9)
	assert.InDelta(t, 7.2, rating.Overall, 1e-9)

	// fenced replies are tolerated
	rating, err = parseRating("```json\n{\"physicality\": 5, \"skillset\": 5, \"gameImpact\": 5, \"overall\": 5}\n```")
	require.NoError(t, err)
	assert.InDelta(t, 5.0, rating.Skillset, 1e-9)

	// out-of-range values are clamped
	rating, err = parseRating(`{"physicality": 14, "skillset": -3, "gameImpact": 5, "overall": 5}`)
	require.NoError(t, err)
	assert.InDelta(t, 10.0, rating.Physicality, 1e-9)
	assert.Zero(t, rating.Skillset)

	_, err = parseRating("the player looks great")
	assert.Error(t, err)
}
