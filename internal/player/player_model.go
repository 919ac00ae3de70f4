// player/model.go
package player

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Player is one roster member. The full denormalized record lives in Doc,
// stored as a single JSONB column; a few fields are mirrored into plain
// columns so list queries can filter without unpacking the document.
type Player struct {
	ID           string    `json:"id" gorm:"primaryKey;type:varchar(64)"`
	Name         string    `json:"name" gorm:"not null;index"`
	Position     string    `json:"position" gorm:"index"`
	Squad        string    `json:"squad" gorm:"index"`
	JerseyNumber int       `json:"jersey_number" gorm:"index"`
	Doc          Document  `json:"doc" gorm:"type:jsonb;not null"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Document is the denormalized player record the integrity engine operates on.
type Document struct {
	Personal            Personal             `json:"personal"`
	Status              Status               `json:"status"`
	Injuries            []Injury             `json:"injuries"`
	MedicalAppointments []MedicalAppointment `json:"medicalAppointments"`
	TrainingAttendance  []AttendanceRecord   `json:"trainingAttendance"`
	PhysicalAttributes  []PhysicalSnapshot   `json:"physicalAttributes"`
	GameStats           GameStats            `json:"gameStats"`
	Skills              map[string]float64   `json:"skills"`
	AIRating            AIRating             `json:"aiRating"`
	PlayerValue         PlayerValue          `json:"playerValue"`
	CohesionMetrics     CohesionMetrics      `json:"cohesionMetrics"`
}

type Personal struct {
	Name         string `json:"name"`
	DateOfBirth  string `json:"dateOfBirth"`
	Position     string `json:"position"`
	JerseyNumber int    `json:"jerseyNumber"`
	Squad        string `json:"squad"`
}

// Medical/availability/fitness status enums.
const (
	MedicalCleared    = "cleared"
	MedicalRestricted = "restricted"

	AvailabilityAvailable = "available"
	AvailabilityInjured   = "injured"
	AvailabilityModified  = "modified"

	FitnessExcellent      = "excellent"
	FitnessGood           = "good"
	FitnessAverage        = "average"
	FitnessNeedsAttention = "needs_attention"
)

type Status struct {
	Medical      string `json:"medical"`
	Availability string `json:"availability"`
	Fitness      string `json:"fitness"`
}

// Injury lifecycle statuses.
const (
	InjuryActive  = "active"
	InjuryCleared = "cleared"
)

type Injury struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	Notes  string    `json:"notes,omitempty"`
}

// Appointment statuses.
const (
	AppointmentScheduled = "scheduled"
	AppointmentCompleted = "completed"
	AppointmentMissed    = "missed"
	AppointmentCancelled = "cancelled"
)

type MedicalAppointment struct {
	ID     string    `json:"id"`
	Type   string    `json:"type"`
	Status string    `json:"status"`
	Date   time.Time `json:"date"`
	Notes  string    `json:"notes,omitempty"`
}

// Attendance statuses.
const (
	AttendancePresent = "present"
	AttendanceAbsent  = "absent"
	AttendanceLate    = "late"
	AttendanceExcused = "excused"
)

type AttendanceRecord struct {
	ID     string    `json:"id"`
	Date   time.Time `json:"date"`
	Status string    `json:"status"`
}

// PhysicalSnapshot is one dated measurement entry; the list is time-ordered
// with the newest snapshot appended last.
type PhysicalSnapshot struct {
	Date           time.Time `json:"date"`
	WeightKG       float64   `json:"weightKg"`
	HeightCM       float64   `json:"heightCm"`
	BodyFatPercent float64   `json:"bodyFatPercent"`
	MuscleMassKG   float64   `json:"muscleMassKg"`
}

// GameStats holds seasonal aggregate performance numbers.
type GameStats struct {
	Season        string  `json:"season"`
	GamesPlayed   int     `json:"gamesPlayed"`
	Goals         int     `json:"goals"`
	Assists       int     `json:"assists"`
	MinutesPlayed int     `json:"minutesPlayed"`
	PassAccuracy  float64 `json:"passAccuracy"`
}

// AIRating holds derived composite scores, all on a 0-10 scale.
type AIRating struct {
	Physicality float64   `json:"physicality"`
	Skillset    float64   `json:"skillset"`
	GameImpact  float64   `json:"gameImpact"`
	Overall     float64   `json:"overall"`
	LastUpdated time.Time `json:"lastUpdated"`
}

// PlayerValue holds derived composite scores, all on a 0-10 scale.
type PlayerValue struct {
	MedicalScore     float64 `json:"medicalScore"`
	FitnessScore     float64 `json:"fitnessScore"`
	PerformanceScore float64 `json:"performanceScore"`
	AttendanceScore  float64 `json:"attendanceScore"`
	TotalScore       float64 `json:"totalScore"`
}

type CohesionMetrics struct {
	Reliability float64 `json:"reliability"`
	Teamwork    float64 `json:"teamwork"`
}

// NewDocument returns a document with the defaults a freshly imported
// player starts with: cleared, available, no derived scores yet.
func NewDocument(p Personal) Document {
	return Document{
		Personal: p,
		Status: Status{
			Medical:      MedicalCleared,
			Availability: AvailabilityAvailable,
			Fitness:      FitnessGood,
		},
		Injuries:            []Injury{},
		MedicalAppointments: []MedicalAppointment{},
		TrainingAttendance:  []AttendanceRecord{},
		PhysicalAttributes:  []PhysicalSnapshot{},
		Skills:              map[string]float64{},
	}
}

// ActiveInjuries returns the injuries still marked active.
func (d *Document) ActiveInjuries() []Injury {
	var active []Injury
	for _, inj := range d.Injuries {
		if inj.Status == InjuryActive {
			active = append(active, inj)
		}
	}
	return active
}

// Value implements driver.Valuer so gorm stores the document as JSONB.
func (d Document) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, fmt.Errorf("marshal player document: %w", err)
	}
	return string(b), nil
}

// Scan implements sql.Scanner for the JSONB document column.
func (d *Document) Scan(value interface{}) error {
	if value == nil {
		*d = Document{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for player document column")
	}
	return json.Unmarshal(data, d)
}
