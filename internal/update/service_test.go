package update

import (
	"context"
	"encoding/json"
	"sort"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/squadpulse/squadpulse/internal/analysis"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/pkg/metrics"
)

// fakeStore is an in-memory integrity.Store so the façade tests run the real
// engine pipeline without Postgres.
type fakeStore struct {
	players map[string]*player.Player
	history []integrity.DataUpdate
}

func newFakeStore(players ...*player.Player) *fakeStore {
	s := &fakeStore{players: map[string]*player.Player{}}
	for _, p := range players {
		s.players[p.ID] = p
	}
	return s
}

func copyPlayer(p *player.Player) *player.Player {
	b, _ := json.Marshal(p)
	var out player.Player
	_ = json.Unmarshal(b, &out)
	return &out
}

func (s *fakeStore) GetPlayer(_ context.Context, id string) (*player.Player, error) {
	p, ok := s.players[id]
	if !ok {
		return nil, player.ErrPlayerNotFound
	}
	return copyPlayer(p), nil
}

func (s *fakeStore) FindByJerseyNumber(_ context.Context, number int, excludeID string) (*player.Player, error) {
	for _, p := range s.players {
		if p.ID != excludeID && p.JerseyNumber == number {
			return copyPlayer(p), nil
		}
	}
	return nil, nil
}

func (s *fakeStore) ReplaceAndLog(_ context.Context, p *player.Player, record *integrity.DataUpdate) error {
	s.players[p.ID] = copyPlayer(p)
	s.history = append(s.history, *record)
	return nil
}

func (s *fakeStore) History(_ context.Context, playerID string, limit int) ([]integrity.DataUpdate, error) {
	var out []integrity.DataUpdate
	for _, rec := range s.history {
		if rec.PlayerID == playerID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func newTestService(t *testing.T, store *fakeStore) *Service {
	t.Helper()
	engine, err := integrity.NewEngine(store, zap.NewNop(), metrics.NewManager())
	require.NoError(t, err)
	analyzer := analysis.New("", "", zap.NewNop())
	return NewService(engine, analyzer, zap.NewNop())
}

func seedPlayer(id string) *player.Player {
	return &player.Player{
		ID:   id,
		Name: "Robin Ash",
		Doc: player.NewDocument(player.Personal{
			Name:         "Robin Ash",
			Position:     "forward",
			JerseyNumber: 9,
		}),
	}
}

func TestUpdateMedicalAppointmentMissed(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	result := service.UpdateMedicalAppointment(context.Background(), "p1",
		player.MedicalAppointment{ID: "a1", Type: "physio", Status: player.AppointmentMissed, Date: time.Now()},
		"medic_a")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	require.Len(t, stored.Doc.MedicalAppointments, 1)
	// 0 completed / 1 missed
	assert.Zero(t, stored.Doc.CohesionMetrics.Reliability)

	require.Len(t, store.history, 1)
	assert.Equal(t, integrity.SourceMedicalUpdate, store.history[0].Source)
	assert.Equal(t, "appointment missed", store.history[0].Reason)
}

func TestUpdateMedicalAppointmentReplacesByID(t *testing.T) {
	p := seedPlayer("p1")
	p.Doc.MedicalAppointments = []player.MedicalAppointment{
		{ID: "a1", Type: "physio", Status: player.AppointmentScheduled, Date: time.Now()},
	}
	store := newFakeStore(p)
	service := newTestService(t, store)

	result := service.UpdateMedicalAppointment(context.Background(), "p1",
		player.MedicalAppointment{ID: "a1", Type: "physio", Status: player.AppointmentCompleted, Date: time.Now()},
		"medic_a")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	require.Len(t, stored.Doc.MedicalAppointments, 1)
	assert.Equal(t, player.AppointmentCompleted, stored.Doc.MedicalAppointments[0].Status)
	assert.InDelta(t, 10.0, stored.Doc.CohesionMetrics.Reliability, 1e-9)
}

func TestUpdateTrainingAttendanceScore(t *testing.T) {
	p := seedPlayer("p1")
	now := time.Now()
	add := func(status string, daysAgo int) {
		p.Doc.TrainingAttendance = append(p.Doc.TrainingAttendance, player.AttendanceRecord{
			Date: now.Add(-time.Duration(daysAgo) * 24 * time.Hour), Status: status,
		})
	}
	for i := 0; i < 6; i++ {
		add(player.AttendancePresent, i+1)
	}
	add(player.AttendanceLate, 7)
	add(player.AttendanceAbsent, 8)
	add(player.AttendanceAbsent, 9)
	store := newFakeStore(p)
	service := newTestService(t, store)

	result := service.UpdateTrainingAttendance(context.Background(), "p1",
		player.AttendanceRecord{ID: "t10", Date: now, Status: player.AttendancePresent},
		"coach")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	require.Len(t, stored.Doc.TrainingAttendance, 10)
	// 7 present + 1 late out of 10 sessions in the window
	assert.InDelta(t, 8.0, stored.Doc.PlayerValue.AttendanceScore, 1e-9)
}

func TestProcessInjuryUpdateLifecycle(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	result := service.ProcessInjuryUpdate(context.Background(), "p1",
		player.Injury{ID: "i1", Type: "hamstring", Status: player.InjuryActive, Date: time.Now()},
		"medic_a")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.Equal(t, player.MedicalRestricted, stored.Doc.Status.Medical)
	assert.Equal(t, player.AvailabilityInjured, stored.Doc.Status.Availability)
	assert.InDelta(t, 8.0, stored.Doc.PlayerValue.MedicalScore, 1e-9)

	result = service.ProcessInjuryUpdate(context.Background(), "p1",
		player.Injury{ID: "i1", Type: "hamstring", Status: player.InjuryCleared, Date: time.Now()},
		"medic_a")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ = store.GetPlayer(context.Background(), "p1")
	require.Len(t, stored.Doc.Injuries, 1)
	assert.Equal(t, player.InjuryCleared, stored.Doc.Injuries[0].Status)
	assert.Equal(t, player.MedicalCleared, stored.Doc.Status.Medical)
	assert.Equal(t, player.AvailabilityAvailable, stored.Doc.Status.Availability)
	assert.InDelta(t, 9.5, stored.Doc.PlayerValue.MedicalScore, 1e-9)
}

func TestProcessInjuryUpdateUnknownPlayer(t *testing.T) {
	service := newTestService(t, newFakeStore())

	result := service.ProcessInjuryUpdate(context.Background(), "ghost",
		player.Injury{ID: "i1", Status: player.InjuryActive, Date: time.Now()},
		"medic_a")
	require.False(t, result.Success)
	assert.Equal(t, integrity.FailureNotFound, result.Failure)
}

func TestFitnessLevel(t *testing.T) {
	tests := []struct {
		name string
		gps  GPSData
		want int
	}{
		{"no data", GPSData{}, 5},
		{
			"high output session",
			GPSData{DurationMinutes: 60, TotalDistance: 7000, HighIntensityDistance: 1000},
			8, // +2 distance rate, +1 intensity ratio
		},
		{
			"steady session",
			GPSData{DurationMinutes: 60, TotalDistance: 6000, HighIntensityDistance: 500},
			6, // +1 distance rate, neutral ratio
		},
		{
			"poor session",
			GPSData{DurationMinutes: 60, TotalDistance: 3000, HighIntensityDistance: 100},
			3, // -1 distance rate, -1 intensity ratio
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FitnessLevel(tt.gps))
		})
	}
}

func TestProcessGPSDataUpdate(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	poor := GPSData{SessionID: "s1", DurationMinutes: 60, TotalDistance: 3000, HighIntensityDistance: 100}
	result := service.ProcessGPSDataUpdate(context.Background(), "p1", poor, "")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 3.0, stored.Doc.PlayerValue.FitnessScore, 1e-9)
	assert.Equal(t, player.FitnessNeedsAttention, stored.Doc.Status.Fitness)

	// empty actor defaults to system
	require.Len(t, store.history, 1)
	assert.Equal(t, "system", store.history[0].Actor)
	assert.Equal(t, integrity.SourceAPICall, store.history[0].Source)

	strong := GPSData{SessionID: "s2", DurationMinutes: 60, TotalDistance: 7200, HighIntensityDistance: 1100}
	result = service.ProcessGPSDataUpdate(context.Background(), "p1", strong, "trainer")
	require.True(t, result.Success, "errors: %v", result.Errors)

	// a mid-band session updates the score but never moves the flag
	stored, _ = store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 8.0, stored.Doc.PlayerValue.FitnessScore, 1e-9)
	assert.Equal(t, player.FitnessNeedsAttention, stored.Doc.Status.Fitness)
}

func TestProcessGPSDataUpdateKeepsExistingGrade(t *testing.T) {
	p := seedPlayer("p1")
	p.Doc.Status.Fitness = player.FitnessExcellent
	store := newFakeStore(p)
	service := newTestService(t, store)

	steady := GPSData{SessionID: "s1", DurationMinutes: 60, TotalDistance: 6000, HighIntensityDistance: 500}
	result := service.ProcessGPSDataUpdate(context.Background(), "p1", steady, "trainer")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 6.0, stored.Doc.PlayerValue.FitnessScore, 1e-9)
	assert.Equal(t, player.FitnessExcellent, stored.Doc.Status.Fitness)
}

func TestProcessAIAnalysisUpdateWithRatings(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	result := service.ProcessAIAnalysisUpdate(context.Background(), "p1",
		&RatingsInput{Physicality: 7, Skillset: 8, GameImpact: 6, Overall: 7.1},
		"analyst")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 7.0, stored.Doc.AIRating.Physicality, 1e-9)
	assert.InDelta(t, 8.0, stored.Doc.AIRating.Skillset, 1e-9)
	assert.InDelta(t, 6.0, stored.Doc.AIRating.GameImpact, 1e-9)
	// caller-provided overall wins over the recomputed composite
	assert.InDelta(t, 7.1, stored.Doc.AIRating.Overall, 1e-9)
	assert.False(t, stored.Doc.AIRating.LastUpdated.IsZero())
}

func TestProcessAIAnalysisUpdateFallback(t *testing.T) {
	p := seedPlayer("p1")
	p.Doc.Skills = map[string]float64{"passing": 8, "shooting": 6}
	p.Doc.GameStats = player.GameStats{Season: "2025/26", GamesPlayed: 10, Goals: 5, MinutesPlayed: 900, PassAccuracy: 80}
	store := newFakeStore(p)
	service := newTestService(t, store)

	want := analysis.Fallback(&p.Doc)

	result := service.ProcessAIAnalysisUpdate(context.Background(), "p1", nil, "scheduler")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, want.Skillset, stored.Doc.AIRating.Skillset, 1e-9)
	assert.InDelta(t, want.GameImpact, stored.Doc.AIRating.GameImpact, 1e-9)
	assert.InDelta(t, want.Overall, stored.Doc.AIRating.Overall, 1e-9)
}

func TestUpdatePlayerValue(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	result := service.UpdatePlayerValue(context.Background(), "p1",
		map[string]float64{"fitnessScore": 7, "performanceScore": 6}, "analyst")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 7.0, stored.Doc.PlayerValue.FitnessScore, 1e-9)
	assert.InDelta(t, 6.0, stored.Doc.PlayerValue.PerformanceScore, 1e-9)
	// total recomputed over the four components
	assert.InDelta(t, 13.0/4, stored.Doc.PlayerValue.TotalScore, 1e-9)

	result = service.UpdatePlayerValue(context.Background(), "p1",
		map[string]float64{"marketValue": 3}, "analyst")
	require.False(t, result.Success)
	assert.Contains(t, result.Errors, "unknown field path: playerValue.marketValue")
}

func TestProcessCSVImport(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	row := map[string]string{
		"Name":           "Robin Ash",
		"Position":       "forward",
		"Jersey Number":  "9",
		"Season":         "2025/26",
		"Games Played":   "18",
		"Goals":          "11",
		"Pass Accuracy":  "79.4",
		"Skill: Passing": "7.5",
		"Agent Phone":    "555-0100", // unrecognized, skipped
	}
	result := service.ProcessCSVImport(context.Background(), "p1", row, "importer")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.Equal(t, 18, stored.Doc.GameStats.GamesPlayed)
	assert.Equal(t, 11, stored.Doc.GameStats.Goals)
	assert.InDelta(t, 79.4, stored.Doc.GameStats.PassAccuracy, 1e-9)
	assert.InDelta(t, 7.5, stored.Doc.Skills["passing"], 1e-9)
	// the imported stats cascade into the derived scores
	assert.Greater(t, stored.Doc.PlayerValue.PerformanceScore, 0.0)
	assert.Greater(t, stored.Doc.AIRating.Skillset, 0.0)

	result = service.ProcessCSVImport(context.Background(), "p1",
		map[string]string{"Agent Phone": "555-0100"}, "importer")
	require.False(t, result.Success)
	assert.Equal(t, integrity.FailureValidation, result.Failure)
}

func TestProcessBulkPlayerUpdate(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"), seedPlayer("p2"))
	service := newTestService(t, store)

	results := service.ProcessBulkPlayerUpdate(context.Background(), []BulkItem{
		{PlayerID: "p1", Updates: map[string]interface{}{"status.fitness": player.FitnessExcellent}},
		{PlayerID: "p2", Updates: map[string]interface{}{"status.fitness": "sleepy"}},
		{PlayerID: "ghost", Updates: map[string]interface{}{"status.fitness": player.FitnessGood}},
	}, "coach")

	require.Len(t, results, 3)
	assert.True(t, results["p1"].Success)
	assert.False(t, results["p2"].Success)
	assert.Equal(t, integrity.FailureValidation, results["p2"].Failure)
	assert.Equal(t, integrity.FailureNotFound, results["ghost"].Failure)

	// the failed items never blocked the successful one
	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.Equal(t, player.FitnessExcellent, stored.Doc.Status.Fitness)
	stored, _ = store.GetPlayer(context.Background(), "p2")
	assert.Equal(t, player.FitnessGood, stored.Doc.Status.Fitness)
}

func TestSyncExternalData(t *testing.T) {
	store := newFakeStore(seedPlayer("p1"))
	service := newTestService(t, store)

	result := service.SyncExternalData(context.Background(), "p1", SyncSourceCohesionAnalytics,
		map[string]interface{}{"reliability": 8.5, "teamwork": 7.0}, "")
	require.True(t, result.Success, "errors: %v", result.Errors)

	stored, _ := store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 8.5, stored.Doc.CohesionMetrics.Reliability, 1e-9)
	assert.InDelta(t, 7.0, stored.Doc.CohesionMetrics.Teamwork, 1e-9)

	result = service.SyncExternalData(context.Background(), "p1", SyncSourceGPSVendor,
		map[string]interface{}{
			"session_id": "s9", "duration_minutes": 60.0,
			"total_distance": 6000.0, "high_intensity_distance": 500.0,
		}, "")
	require.True(t, result.Success, "errors: %v", result.Errors)
	stored, _ = store.GetPlayer(context.Background(), "p1")
	assert.InDelta(t, 6.0, stored.Doc.PlayerValue.FitnessScore, 1e-9)

	result = service.SyncExternalData(context.Background(), "p1", SyncSourceSheets,
		map[string]interface{}{"Goals": 4, "Games Played": 12, "Season": "2025/26"}, "")
	require.True(t, result.Success, "errors: %v", result.Errors)
	stored, _ = store.GetPlayer(context.Background(), "p1")
	assert.Equal(t, 4, stored.Doc.GameStats.Goals)
	assert.Equal(t, 12, stored.Doc.GameStats.GamesPlayed)

	result = service.SyncExternalData(context.Background(), "p1", "carrier_pigeon", nil, "")
	require.False(t, result.Success)
	assert.Equal(t, integrity.FailureValidation, result.Failure)

	result = service.SyncExternalData(context.Background(), "p1", SyncSourceCohesionAnalytics,
		map[string]interface{}{"vibes": 11}, "")
	require.False(t, result.Success)
}
