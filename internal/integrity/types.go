// Package integrity is the single choke point for player-record mutation.
// Every accepted write is validated against a static rule table, derived
// fields are recomputed through cascade rules, and the result is persisted
// together with an append-only history entry.
package integrity

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"
)

// Source identifies where an update batch originated.
type Source string

const (
	SourceManual        Source = "manual"
	SourceCSVUpload     Source = "csv_upload"
	SourceAPICall       Source = "api_call"
	SourceAIAnalysis    Source = "ai_analysis"
	SourceMedicalUpdate Source = "medical_update"
	SourcePhysioUpdate  Source = "physio_update"
)

// Category classifies a history entry by the top-level namespace that changed.
type Category string

const (
	CategoryPersonal     Category = "personal"
	CategoryPhysical     Category = "physical"
	CategoryMedical      Category = "medical"
	CategoryPerformance  Category = "performance"
	CategorySkills       Category = "skills"
	CategoryAIRating     Category = "ai_rating"
	CategoryAvailability Category = "availability"
)

// Failure distinguishes why a call did not succeed, for HTTP status mapping.
type Failure string

const (
	FailureNone        Failure = ""
	FailureNotFound    Failure = "not_found"
	FailureValidation  Failure = "validation"
	FailurePersistence Failure = "persistence"
)

// Result is the structured outcome every engine call returns. The engine
// never lets an error escape as a panic or raw error; callers always get a
// Result and map it onto their own error surface.
type Result struct {
	Success  bool     `json:"success"`
	Errors   []string `json:"errors"`
	Warnings []string `json:"warnings"`
	Failure  Failure  `json:"-"`
}

func okResult() *Result {
	return &Result{Success: true, Errors: []string{}, Warnings: []string{}}
}

func failResult(failure Failure, errs ...string) *Result {
	return &Result{Success: false, Errors: errs, Warnings: []string{}, Failure: failure}
}

// FailureResult builds a failed Result for callers (the update façade) that
// hit a precondition before reaching the engine.
func FailureResult(failure Failure, errs ...string) *Result {
	return failResult(failure, errs...)
}

// JSONMap stores an arbitrary update snapshot as a JSONB column.
type JSONMap map[string]interface{}

func (m JSONMap) Value() (driver.Value, error) {
	if m == nil {
		return "{}", nil
	}
	b, err := json.Marshal(m)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (m *JSONMap) Scan(value interface{}) error {
	if value == nil {
		*m = JSONMap{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for jsonb map column")
	}
	return json.Unmarshal(data, m)
}

// StringList stores a list of labels as a JSONB column.
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		return "[]", nil
	}
	b, err := json.Marshal(l)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (l *StringList) Scan(value interface{}) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("unsupported type for jsonb list column")
	}
	return json.Unmarshal(data, l)
}

// DataUpdate is one immutable audit-log entry: the batch a caller submitted,
// the prior values of every path it touched, and the values actually applied
// after cascading. Rows are only ever inserted, never updated.
type DataUpdate struct {
	ID              string     `json:"id" gorm:"primaryKey;type:varchar(64)"`
	PlayerID        string     `json:"player_id" gorm:"index:idx_data_updates_player_ts,priority:1;not null"`
	Timestamp       time.Time  `json:"timestamp" gorm:"index:idx_data_updates_player_ts,priority:2;not null"`
	Source          Source     `json:"source" gorm:"type:varchar(32)"`
	Category        Category   `json:"category" gorm:"type:varchar(32)"`
	Previous        JSONMap    `json:"previous" gorm:"type:jsonb"`
	Applied         JSONMap    `json:"applied" gorm:"type:jsonb"`
	Actor           string     `json:"actor"`
	Reason          string     `json:"reason"`
	AffectedMetrics StringList `json:"affected_metrics" gorm:"type:jsonb"`
}

// TableName keeps the audit table name stable regardless of struct renames.
func (DataUpdate) TableName() string {
	return "data_updates"
}

// IntegrityReport is the read-only consistency scan for one player.
type IntegrityReport struct {
	PlayerID         string    `json:"player_id"`
	ConsistencyScore int       `json:"consistency_score"`
	Issues           []string  `json:"issues"`
	Recommendations  []string  `json:"recommendations"`
	LastValidation   time.Time `json:"last_validation"`
}
