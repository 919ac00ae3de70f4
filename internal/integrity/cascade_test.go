package integrity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/squadpulse/squadpulse/internal/player"
)

func TestMedicalScore(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name     string
		injuries []player.Injury
		want     float64
	}{
		{"no injuries", nil, 10},
		{
			"one active",
			[]player.Injury{{ID: "i1", Status: player.InjuryActive, Date: now}},
			8,
		},
		{
			"recently cleared",
			[]player.Injury{{ID: "i1", Status: player.InjuryCleared, Date: now.Add(-10 * 24 * time.Hour)}},
			9.5,
		},
		{
			"old cleared injury stops counting",
			[]player.Injury{{ID: "i1", Status: player.InjuryCleared, Date: now.Add(-120 * 24 * time.Hour)}},
			10,
		},
		{
			"many active injuries floor at zero",
			[]player.Injury{
				{ID: "i1", Status: player.InjuryActive, Date: now},
				{ID: "i2", Status: player.InjuryActive, Date: now},
				{ID: "i3", Status: player.InjuryActive, Date: now},
				{ID: "i4", Status: player.InjuryActive, Date: now},
				{ID: "i5", Status: player.InjuryActive, Date: now},
				{ID: "i6", Status: player.InjuryActive, Date: now},
			},
			0,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, MedicalScore(tt.injuries, now), 1e-9)
		})
	}
}

func TestAttendanceScore(t *testing.T) {
	now := time.Now()
	recent := func(status string) player.AttendanceRecord {
		return player.AttendanceRecord{Date: now.Add(-5 * 24 * time.Hour), Status: status}
	}

	var records []player.AttendanceRecord
	for i := 0; i < 7; i++ {
		records = append(records, recent(player.AttendancePresent))
	}
	records = append(records, recent(player.AttendanceLate))
	records = append(records, recent(player.AttendanceAbsent), recent(player.AttendanceAbsent))

	// 7 present + 1 late out of 10
	assert.InDelta(t, 8.0, AttendanceScore(records, now), 1e-9)

	// records outside the 90-day window are ignored
	old := player.AttendanceRecord{Date: now.Add(-120 * 24 * time.Hour), Status: player.AttendanceAbsent}
	assert.InDelta(t, 8.0, AttendanceScore(append(records, old), now), 1e-9)

	assert.Zero(t, AttendanceScore(nil, now))
	assert.Zero(t, AttendanceScore([]player.AttendanceRecord{old}, now))
}

func TestReliabilityScore(t *testing.T) {
	assert.InDelta(t, 10.0, ReliabilityScore(nil), 1e-9)

	appointments := []player.MedicalAppointment{
		{ID: "a1", Status: player.AppointmentCompleted},
		{ID: "a2", Status: player.AppointmentCompleted},
		{ID: "a3", Status: player.AppointmentCompleted},
		{ID: "a4", Status: player.AppointmentMissed},
		{ID: "a5", Status: player.AppointmentScheduled}, // pending, not counted
		{ID: "a6", Status: player.AppointmentCancelled},
	}
	assert.InDelta(t, 7.5, ReliabilityScore(appointments), 1e-9)
}

func TestFitnessAndPhysicalityScores(t *testing.T) {
	_, ok := FitnessScore(nil)
	require.False(t, ok)

	lean := player.PhysicalSnapshot{WeightKG: 74, BodyFatPercent: 10, MuscleMassKG: 36}
	score, ok := FitnessScore([]player.PhysicalSnapshot{lean})
	require.True(t, ok)
	assert.InDelta(t, 9.4, score, 1e-9)

	// muscle mass above 45% of body weight earns the bonus
	assert.InDelta(t, 9.9, PhysicalityScore([]player.PhysicalSnapshot{lean}), 1e-9)

	light := player.PhysicalSnapshot{WeightKG: 80, BodyFatPercent: 10, MuscleMassKG: 30}
	assert.InDelta(t, 9.4, PhysicalityScore([]player.PhysicalSnapshot{light}), 1e-9)

	// only the newest snapshot counts
	older := player.PhysicalSnapshot{WeightKG: 74, BodyFatPercent: 20, MuscleMassKG: 30}
	score, ok = FitnessScore([]player.PhysicalSnapshot{older, lean})
	require.True(t, ok)
	assert.InDelta(t, 9.4, score, 1e-9)
}

func TestPerformanceAndImpactScores(t *testing.T) {
	assert.Zero(t, PerformanceScore(player.GameStats{}))
	assert.Zero(t, GameImpactScore(player.GameStats{}))

	stats := player.GameStats{
		GamesPlayed:   10,
		Goals:         4,
		Assists:       5,
		MinutesPlayed: 720,
		PassAccuracy:  85,
	}
	// involvement (4 + 0.7*5)/10 = 0.75
	assert.InDelta(t, 5*0.75+85.0/25, PerformanceScore(stats), 1e-9)
	assert.InDelta(t, 6*0.75+2*(720.0/900), GameImpactScore(stats), 1e-9)

	prolific := player.GameStats{GamesPlayed: 10, Goals: 30, PassAccuracy: 90}
	assert.InDelta(t, 10.0, PerformanceScore(prolific), 1e-9)
}

func TestSkillsetAndComposites(t *testing.T) {
	assert.Zero(t, SkillsetScore(nil))
	assert.InDelta(t, 7.0, SkillsetScore(map[string]float64{"passing": 6, "shooting": 8}), 1e-9)

	assert.InDelta(t, 0.3*8+0.35*7+0.35*6, OverallRating(8, 7, 6), 1e-9)
	assert.InDelta(t, 10.0, OverallRating(12, 12, 12), 1e-9)

	v := player.PlayerValue{MedicalScore: 8, FitnessScore: 6, PerformanceScore: 7, AttendanceScore: 9}
	assert.InDelta(t, 7.5, TotalScore(v), 1e-9)
}
