package integrity

import (
	"context"

	"github.com/squadpulse/squadpulse/internal/player"
)

// ValidationRule is one declarative predicate attached to a field path.
// Check sees the proposed value and the current player and returns false to
// reject it; all violated rules for a batch are reported together. Rules may
// do I/O (the jersey-number check queries the store), hence the context.
type ValidationRule struct {
	Path    string
	Message string
	Check   func(ctx context.Context, value interface{}, p *player.Player) bool
}

func isOneOf(value interface{}, allowed ...string) bool {
	s, ok := value.(string)
	if !ok {
		return false
	}
	for _, a := range allowed {
		if s == a {
			return true
		}
	}
	return false
}

func defaultValidationRules(store Store) []ValidationRule {
	return []ValidationRule{
		{
			Path:    "personal.name",
			Message: "player name must be a non-empty string",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				s, ok := value.(string)
				return ok && s != ""
			},
		},
		{
			Path:    "personal.jerseyNumber",
			Message: "jersey number must be between 1 and 99",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				n, ok := toFloat(value)
				return ok && n == float64(int(n)) && n >= 1 && n <= 99
			},
		},
		{
			Path:    "personal.jerseyNumber",
			Message: "jersey number is already taken by another player",
			Check: func(ctx context.Context, value interface{}, p *player.Player) bool {
				n, ok := toFloat(value)
				if !ok {
					return false
				}
				other, err := store.FindByJerseyNumber(ctx, int(n), p.ID)
				if err != nil {
					// store errors surface through the persistence path,
					// not as a false uniqueness verdict
					return true
				}
				return other == nil
			},
		},
		{
			Path:    "status.medical",
			Message: "medical status must be 'cleared' or 'restricted'",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				return isOneOf(value, player.MedicalCleared, player.MedicalRestricted)
			},
		},
		{
			Path:    "status.medical",
			Message: "medical status cannot be 'cleared' while the player has an active injury",
			Check: func(_ context.Context, value interface{}, p *player.Player) bool {
				if value != player.MedicalCleared {
					return true
				}
				return len(p.Doc.ActiveInjuries()) == 0
			},
		},
		{
			Path:    "status.availability",
			Message: "availability must be 'available', 'injured' or 'modified'",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				return isOneOf(value, player.AvailabilityAvailable, player.AvailabilityInjured, player.AvailabilityModified)
			},
		},
		{
			Path:    "status.availability",
			Message: "availability cannot be 'available' while medical status is 'restricted' or fitness needs attention",
			Check: func(_ context.Context, value interface{}, p *player.Player) bool {
				if value != player.AvailabilityAvailable {
					return true
				}
				return p.Doc.Status.Medical != player.MedicalRestricted &&
					p.Doc.Status.Fitness != player.FitnessNeedsAttention
			},
		},
		{
			Path:    "status.fitness",
			Message: "fitness status must be 'excellent', 'good', 'average' or 'needs_attention'",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				return isOneOf(value, player.FitnessExcellent, player.FitnessGood,
					player.FitnessAverage, player.FitnessNeedsAttention)
			},
		},
		{
			Path:    "injuries",
			Message: "each injury needs an id, a status of 'active' or 'cleared' and a date",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				injuries, err := decodeAs[[]player.Injury](value)
				if err != nil {
					return false
				}
				for _, inj := range injuries {
					if inj.ID == "" || inj.Date.IsZero() {
						return false
					}
					if inj.Status != player.InjuryActive && inj.Status != player.InjuryCleared {
						return false
					}
				}
				return true
			},
		},
		{
			Path:    "medicalAppointments",
			Message: "each appointment needs an id and a status of 'scheduled', 'completed', 'missed' or 'cancelled'",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				appointments, err := decodeAs[[]player.MedicalAppointment](value)
				if err != nil {
					return false
				}
				for _, appt := range appointments {
					if appt.ID == "" {
						return false
					}
					if !isOneOf(appt.Status, player.AppointmentScheduled, player.AppointmentCompleted,
						player.AppointmentMissed, player.AppointmentCancelled) {
						return false
					}
				}
				return true
			},
		},
		{
			Path:    "trainingAttendance",
			Message: "each attendance record needs a date and a status of 'present', 'absent', 'late' or 'excused'",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				records, err := decodeAs[[]player.AttendanceRecord](value)
				if err != nil {
					return false
				}
				for _, rec := range records {
					if rec.Date.IsZero() {
						return false
					}
					if !isOneOf(rec.Status, player.AttendancePresent, player.AttendanceAbsent,
						player.AttendanceLate, player.AttendanceExcused) {
						return false
					}
				}
				return true
			},
		},
		{
			Path:    "skills",
			Message: "skill ratings must be numbers between 0 and 10",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				// matches both a whole-map write and a single skills.<name> key
				if ratings, err := decodeAs[map[string]float64](value); err == nil {
					for _, r := range ratings {
						if r < 0 || r > 10 {
							return false
						}
					}
					return true
				}
				n, ok := toFloat(value)
				return ok && n >= 0 && n <= 10
			},
		},
		{
			Path:    "gameStats",
			Message: "game statistics cannot be negative",
			Check: func(_ context.Context, value interface{}, _ *player.Player) bool {
				if stats, err := decodeAs[player.GameStats](value); err == nil {
					return stats.GamesPlayed >= 0 && stats.Goals >= 0 && stats.Assists >= 0 &&
						stats.MinutesPlayed >= 0 && stats.PassAccuracy >= 0
				}
				if n, ok := toFloat(value); ok {
					return n >= 0
				}
				// gameStats.season
				_, isString := value.(string)
				return isString
			},
		},
	}
}
