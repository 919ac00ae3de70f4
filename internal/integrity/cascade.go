package integrity

import (
	"fmt"
	"time"

	"github.com/squadpulse/squadpulse/internal/player"
)

// CascadeRule recomputes derived fields when its source field appears in an
// incoming update batch. Apply is a pure function of the proposed source
// value and the current document; it returns the derived path -> value map.
// Targets must be unique across the rule table (enforced by NewEngine), so
// declaration order can never silently decide a winner.
type CascadeRule struct {
	Source  string
	Targets []string
	Apply   func(value interface{}, doc *player.Document) (map[string]interface{}, error)
}

// recentInjuryWindow is how long a cleared injury keeps decaying the
// medical score.
const recentInjuryWindow = 90 * 24 * time.Hour

// attendanceWindow is the period attendance is scored over.
const attendanceWindow = 90 * 24 * time.Hour

func defaultCascadeRules() []CascadeRule {
	return []CascadeRule{
		{
			Source:  "injuries",
			Targets: []string{"status.medical", "status.availability", "playerValue.medicalScore"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				injuries, err := decodeAs[[]player.Injury](value)
				if err != nil {
					return nil, fmt.Errorf("injuries: %w", err)
				}
				medical, availability := player.MedicalCleared, player.AvailabilityAvailable
				for _, inj := range injuries {
					if inj.Status == player.InjuryActive {
						medical, availability = player.MedicalRestricted, player.AvailabilityInjured
						break
					}
				}
				return map[string]interface{}{
					"status.medical":           medical,
					"status.availability":      availability,
					"playerValue.medicalScore": MedicalScore(injuries, time.Now()),
				}, nil
			},
		},
		{
			Source:  "trainingAttendance",
			Targets: []string{"playerValue.attendanceScore"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				records, err := decodeAs[[]player.AttendanceRecord](value)
				if err != nil {
					return nil, fmt.Errorf("trainingAttendance: %w", err)
				}
				return map[string]interface{}{
					"playerValue.attendanceScore": AttendanceScore(records, time.Now()),
				}, nil
			},
		},
		{
			Source:  "medicalAppointments",
			Targets: []string{"cohesionMetrics.reliability"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				appointments, err := decodeAs[[]player.MedicalAppointment](value)
				if err != nil {
					return nil, fmt.Errorf("medicalAppointments: %w", err)
				}
				return map[string]interface{}{
					"cohesionMetrics.reliability": ReliabilityScore(appointments),
				}, nil
			},
		},
		{
			Source:  "physicalAttributes",
			Targets: []string{"playerValue.fitnessScore", "aiRating.physicality"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				snapshots, err := decodeAs[[]player.PhysicalSnapshot](value)
				if err != nil {
					return nil, fmt.Errorf("physicalAttributes: %w", err)
				}
				score, ok := FitnessScore(snapshots)
				if !ok {
					return nil, nil // nothing measured yet, nothing to derive
				}
				return map[string]interface{}{
					"playerValue.fitnessScore": score,
					"aiRating.physicality":     PhysicalityScore(snapshots),
				}, nil
			},
		},
		{
			Source:  "gameStats",
			Targets: []string{"playerValue.performanceScore", "aiRating.gameImpact"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				stats, err := decodeAs[player.GameStats](value)
				if err != nil {
					return nil, fmt.Errorf("gameStats: %w", err)
				}
				return map[string]interface{}{
					"playerValue.performanceScore": PerformanceScore(stats),
					"aiRating.gameImpact":          GameImpactScore(stats),
				}, nil
			},
		},
		{
			Source:  "skills",
			Targets: []string{"aiRating.skillset"},
			Apply: func(value interface{}, doc *player.Document) (map[string]interface{}, error) {
				skills, err := decodeAs[map[string]float64](value)
				if err != nil {
					return nil, fmt.Errorf("skills: %w", err)
				}
				return map[string]interface{}{
					"aiRating.skillset": SkillsetScore(skills),
				}, nil
			},
		},
	}
}

// MedicalScore rates medical availability on a 0-10 scale: each active
// injury costs 2 points, each recently cleared injury half a point.
func MedicalScore(injuries []player.Injury, now time.Time) float64 {
	active, recentCleared := 0, 0
	for _, inj := range injuries {
		switch {
		case inj.Status == player.InjuryActive:
			active++
		case now.Sub(inj.Date) <= recentInjuryWindow:
			recentCleared++
		}
	}
	return clamp(10-2*float64(active)-0.5*float64(recentCleared), 0, 10)
}

// AttendanceScore scales present+late sessions over the last 90 days to a
// 0-10 range. No records in the window scores 0.
func AttendanceScore(records []player.AttendanceRecord, now time.Time) float64 {
	total, attended := 0, 0
	for _, rec := range records {
		if now.Sub(rec.Date) > attendanceWindow {
			continue
		}
		total++
		if rec.Status == player.AttendancePresent || rec.Status == player.AttendanceLate {
			attended++
		}
	}
	if total == 0 {
		return 0
	}
	return clamp(float64(attended)/float64(total)*10, 0, 10)
}

// ReliabilityScore rates appointment discipline from the completed/missed
// ratio. Players with no resolved appointments start at 10.
func ReliabilityScore(appointments []player.MedicalAppointment) float64 {
	completed, missed := 0, 0
	for _, appt := range appointments {
		switch appt.Status {
		case player.AppointmentCompleted:
			completed++
		case player.AppointmentMissed:
			missed++
		}
	}
	if completed+missed == 0 {
		return 10
	}
	return clamp(float64(completed)/float64(completed+missed)*10, 0, 10)
}

// FitnessScore derives a 0-10 score from the latest physical snapshot.
// Returns false when no snapshot exists.
func FitnessScore(snapshots []player.PhysicalSnapshot) (float64, bool) {
	if len(snapshots) == 0 {
		return 0, false
	}
	latest := snapshots[len(snapshots)-1]
	// 8% body fat scores 10, each extra point costs 0.3.
	return clamp(10-0.3*(latest.BodyFatPercent-8), 0, 10), true
}

// PhysicalityScore mirrors FitnessScore with a muscle-mass bonus.
func PhysicalityScore(snapshots []player.PhysicalSnapshot) float64 {
	base, ok := FitnessScore(snapshots)
	if !ok {
		return 0
	}
	latest := snapshots[len(snapshots)-1]
	bonus := 0.0
	if latest.WeightKG > 0 && latest.MuscleMassKG/latest.WeightKG > 0.45 {
		bonus = 0.5
	}
	return clamp(base+bonus, 0, 10)
}

// PerformanceScore rates seasonal output: goal involvement per game plus a
// pass-accuracy term.
func PerformanceScore(stats player.GameStats) float64 {
	if stats.GamesPlayed == 0 {
		return 0
	}
	involvement := (float64(stats.Goals) + 0.7*float64(stats.Assists)) / float64(stats.GamesPlayed)
	return clamp(5*involvement+stats.PassAccuracy/25, 0, 10)
}

// GameImpactScore weights goal involvement by how much of the available
// minutes the player was actually on the pitch for.
func GameImpactScore(stats player.GameStats) float64 {
	if stats.GamesPlayed == 0 {
		return 0
	}
	involvement := (float64(stats.Goals) + 0.7*float64(stats.Assists)) / float64(stats.GamesPlayed)
	minutesShare := float64(stats.MinutesPlayed) / (90 * float64(stats.GamesPlayed))
	return clamp(6*involvement+2*minutesShare, 0, 10)
}

// SkillsetScore is the mean of the named skill ratings.
func SkillsetScore(skills map[string]float64) float64 {
	if len(skills) == 0 {
		return 0
	}
	sum := 0.0
	for _, rating := range skills {
		sum += rating
	}
	return clamp(sum/float64(len(skills)), 0, 10)
}

// OverallRating combines the three AI rating components.
func OverallRating(physicality, skillset, gameImpact float64) float64 {
	return clamp(0.3*physicality+0.35*skillset+0.35*gameImpact, 0, 10)
}

// TotalScore is the mean of the four player-value component scores.
func TotalScore(v player.PlayerValue) float64 {
	return clamp((v.MedicalScore+v.FitnessScore+v.PerformanceScore+v.AttendanceScore)/4, 0, 10)
}
