// Package update translates domain events (a logged injury, a missed
// appointment, a GPS session upload, an AI rating refresh, a CSV row) into
// generic update batches for the integrity engine. Nothing here persists
// anything itself; every mutation funnels through the engine.
package update

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/squadpulse/squadpulse/internal/analysis"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
)

// Service is the façade in front of the integrity engine.
type Service struct {
	engine   *integrity.Engine
	analyzer *analysis.Analyzer
	log      *zap.Logger
}

// NewService wires the façade. The analyzer may be running in fallback mode
// (no API key); it always produces ratings.
func NewService(engine *integrity.Engine, analyzer *analysis.Analyzer, log *zap.Logger) *Service {
	return &Service{engine: engine, analyzer: analyzer, log: log}
}

func (s *Service) load(ctx context.Context, playerID string) (*player.Player, *integrity.Result) {
	p, err := s.engine.GetPlayer(ctx, playerID)
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			return nil, integrity.FailureResult(integrity.FailureNotFound, "player not found: "+playerID)
		}
		s.log.Error("loading player failed", zap.String("player_id", playerID), zap.Error(err))
		return nil, integrity.FailureResult(integrity.FailurePersistence, "database error while loading player")
	}
	return p, nil
}

// UpdateMedicalAppointment upserts the appointment into the player's list
// and submits the complete list, so the appointment cascade always sees the
// full set (a missed appointment changes the reliability score).
func (s *Service) UpdateMedicalAppointment(ctx context.Context, playerID string, appt player.MedicalAppointment, actor string) *integrity.Result {
	p, fail := s.load(ctx, playerID)
	if fail != nil {
		return fail
	}
	appointments := upsertAppointment(p.Doc.MedicalAppointments, appt)
	updates := map[string]interface{}{
		"medicalAppointments": appointments,
	}
	reason := "appointment " + appt.Status
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceMedicalUpdate, actor, reason)
}

// UpdateTrainingAttendance records one attendance entry and the attendance
// score computed over the last 90 days (present+late over total, scaled to
// 0-10). The cascade recomputes the same score from the submitted list and
// takes precedence.
func (s *Service) UpdateTrainingAttendance(ctx context.Context, playerID string, rec player.AttendanceRecord, actor string) *integrity.Result {
	p, fail := s.load(ctx, playerID)
	if fail != nil {
		return fail
	}
	records := upsertAttendance(p.Doc.TrainingAttendance, rec)
	updates := map[string]interface{}{
		"trainingAttendance":          records,
		"playerValue.attendanceScore": integrity.AttendanceScore(records, time.Now()),
	}
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceManual, actor, "training attendance logged")
}

// ProcessInjuryUpdate upserts the injury by id (replace on matching id,
// append otherwise) and submits the full list; this is what triggers the
// medical-status cascade.
func (s *Service) ProcessInjuryUpdate(ctx context.Context, playerID string, injury player.Injury, actor string) *integrity.Result {
	p, fail := s.load(ctx, playerID)
	if fail != nil {
		return fail
	}
	injuries := upsertInjury(p.Doc.Injuries, injury)
	updates := map[string]interface{}{
		"injuries": injuries,
	}
	reason := "injury " + injury.ID + " " + injury.Status
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourcePhysioUpdate, actor, reason)
}

// GPSData is one training-session upload from the GPS vendor.
type GPSData struct {
	SessionID             string    `json:"session_id"`
	Date                  time.Time `json:"date"`
	DurationMinutes       float64   `json:"duration_minutes"`
	TotalDistance         float64   `json:"total_distance"`
	HighIntensityDistance float64   `json:"high_intensity_distance"`
	MaxSpeed              float64   `json:"max_speed"`
}

// FitnessLevel derives a 1-10 fitness level from a GPS session: base 5,
// adjusted against fixed distance-per-minute and high-intensity-ratio
// thresholds.
func FitnessLevel(gps GPSData) int {
	level := 5
	if gps.DurationMinutes > 0 {
		perMinute := gps.TotalDistance / gps.DurationMinutes
		switch {
		case perMinute > 110:
			level += 2
		case perMinute > 90:
			level++
		case perMinute < 60:
			level--
		}
	}
	if gps.TotalDistance > 0 {
		ratio := gps.HighIntensityDistance / gps.TotalDistance
		switch {
		case ratio > 0.12:
			level++
		case ratio < 0.05:
			level--
		}
	}
	if level < 1 {
		level = 1
	}
	if level > 10 {
		level = 10
	}
	return level
}

// ProcessGPSDataUpdate converts a GPS session into a fitness score. Only
// the extremes move the fitness flag: needs_attention below 6, excellent
// above 8; mid-range sessions leave the current grade alone.
func (s *Service) ProcessGPSDataUpdate(ctx context.Context, playerID string, gps GPSData, actor string) *integrity.Result {
	if actor == "" {
		actor = "system"
	}
	level := FitnessLevel(gps)
	updates := map[string]interface{}{
		"playerValue.fitnessScore": float64(level),
	}
	switch {
	case level < 6:
		updates["status.fitness"] = player.FitnessNeedsAttention
	case level > 8:
		updates["status.fitness"] = player.FitnessExcellent
	}
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceAPICall, actor, "GPS session "+gps.SessionID)
}

// RatingsInput carries caller-provided AI rating components.
type RatingsInput struct {
	Physicality float64 `json:"physicality"`
	Skillset    float64 `json:"skillset"`
	GameImpact  float64 `json:"gameImpact"`
	Overall     float64 `json:"overall"`
}

// ProcessAIAnalysisUpdate writes a refreshed AI rating. When ratings is nil
// the analyzer computes one from the current document (LLM-backed when an
// API key is configured, deterministic formulas otherwise).
func (s *Service) ProcessAIAnalysisUpdate(ctx context.Context, playerID string, ratings *RatingsInput, actor string) *integrity.Result {
	if ratings == nil {
		p, fail := s.load(ctx, playerID)
		if fail != nil {
			return fail
		}
		rated, err := s.analyzer.Rate(ctx, &p.Doc)
		if err != nil {
			s.log.Error("ai analysis failed", zap.String("player_id", playerID), zap.Error(err))
			return integrity.FailureResult(integrity.FailureValidation, "ai analysis failed: "+err.Error())
		}
		ratings = &RatingsInput{
			Physicality: rated.Physicality,
			Skillset:    rated.Skillset,
			GameImpact:  rated.GameImpact,
			Overall:     rated.Overall,
		}
	}
	updates := map[string]interface{}{
		"aiRating.physicality": ratings.Physicality,
		"aiRating.skillset":    ratings.Skillset,
		"aiRating.gameImpact":  ratings.GameImpact,
		"aiRating.overall":     ratings.Overall,
	}
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceAIAnalysis, actor, "ai rating refresh")
}

// UpdatePlayerValue maps caller-provided value components onto their
// document paths. Unknown component names are rejected by the engine's
// path registry.
func (s *Service) UpdatePlayerValue(ctx context.Context, playerID string, components map[string]float64, actor string) *integrity.Result {
	updates := make(map[string]interface{}, len(components))
	for name, score := range components {
		updates["playerValue."+name] = score
	}
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceManual, actor, "player value adjustment")
}

// ProcessCSVImport applies one CSV row to a player.
func (s *Service) ProcessCSVImport(ctx context.Context, playerID string, row map[string]string, actor string) *integrity.Result {
	updates := TransformCSVData(row)
	if len(updates) == 0 {
		return integrity.FailureResult(integrity.FailureValidation, "csv row contains no recognized columns")
	}
	return s.engine.ProcessUpdate(ctx, playerID, updates, integrity.SourceCSVUpload, actor, "csv import")
}

// BulkItem is one entry of a bulk update request.
type BulkItem struct {
	PlayerID string                 `json:"player_id"`
	Updates  map[string]interface{} `json:"updates"`
}

// ProcessBulkPlayerUpdate applies each item independently and reports one
// result per player; a failed item never rolls back the others.
func (s *Service) ProcessBulkPlayerUpdate(ctx context.Context, items []BulkItem, actor string) map[string]*integrity.Result {
	results := make(map[string]*integrity.Result, len(items))
	for _, item := range items {
		results[item.PlayerID] = s.engine.ProcessUpdate(ctx, item.PlayerID, item.Updates, integrity.SourceManual, actor, "bulk update")
	}
	return results
}
