package update

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/squadpulse/squadpulse/config"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/pkg/utils"
	"github.com/squadpulse/squadpulse/pkg/validator"
)

// Controller exposes the integrity engine and the update façade over HTTP.
type Controller struct {
	service   *Service
	engine    *integrity.Engine
	appConfig *config.Config
}

// NewController creates a new update controller.
func NewController(service *Service, engine *integrity.Engine, appConfig *config.Config) *Controller {
	return &Controller{service: service, engine: engine, appConfig: appConfig}
}

// actor attribution comes from a header; authentication is out of scope.
func actorFrom(ctx *gin.Context) string {
	if actor := ctx.GetHeader("X-Actor"); actor != "" {
		return actor
	}
	return "unknown"
}

// respond maps an engine result onto the HTTP surface: validation failures
// are the caller's to fix (400), missing players are 404, persistence
// faults are 500.
func respond(ctx *gin.Context, result *integrity.Result) {
	switch result.Failure {
	case integrity.FailureNotFound:
		ctx.JSON(http.StatusNotFound, result)
	case integrity.FailureValidation:
		ctx.JSON(http.StatusBadRequest, result)
	case integrity.FailurePersistence:
		ctx.JSON(http.StatusInternalServerError, result)
	default:
		ctx.JSON(http.StatusOK, result)
	}
}

// UpdateMedicalAppointment godoc
// @Summary Record a medical appointment
// @Description Upsert an appointment into the player's list; a missed appointment lowers the reliability score
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param appointment body player.MedicalAppointment true "Appointment"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/medical/appointments [post]
func (c *Controller) UpdateMedicalAppointment(ctx *gin.Context) {
	var appt player.MedicalAppointment
	if err := ctx.ShouldBindJSON(&appt); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid appointment payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.UpdateMedicalAppointment(ctx.Request.Context(), ctx.Param("id"), appt, actorFrom(ctx)))
}

// UpdateTrainingAttendance godoc
// @Summary Record training attendance
// @Description Log one attendance entry and recompute the 90-day attendance score
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param attendance body player.AttendanceRecord true "Attendance record"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/training/attendance [post]
func (c *Controller) UpdateTrainingAttendance(ctx *gin.Context) {
	var rec player.AttendanceRecord
	if err := ctx.ShouldBindJSON(&rec); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid attendance payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.UpdateTrainingAttendance(ctx.Request.Context(), ctx.Param("id"), rec, actorFrom(ctx)))
}

// ProcessInjuryUpdate godoc
// @Summary Log or update an injury
// @Description Upsert an injury by id; cascades into medical status, availability and medical score
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param injury body player.Injury true "Injury record"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/injuries [post]
func (c *Controller) ProcessInjuryUpdate(ctx *gin.Context) {
	var injury player.Injury
	if err := ctx.ShouldBindJSON(&injury); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid injury payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.ProcessInjuryUpdate(ctx.Request.Context(), ctx.Param("id"), injury, actorFrom(ctx)))
}

// ProcessGPSData godoc
// @Summary Ingest a GPS session
// @Description Derive a fitness level from session distance and intensity and flag the fitness status
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param session body GPSData true "GPS session data"
// @Param X-Actor header string false "Acting user (defaults to system)"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/gps-data [post]
func (c *Controller) ProcessGPSData(ctx *gin.Context) {
	var gps GPSData
	if err := ctx.ShouldBindJSON(&gps); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid gps payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.ProcessGPSDataUpdate(ctx.Request.Context(), ctx.Param("id"), gps, ctx.GetHeader("X-Actor")))
}

// AIAnalysisRequest asks for a rating refresh, either with precomputed
// components or by letting the analyzer rate the current record.
type AIAnalysisRequest struct {
	Ratings *RatingsInput `json:"ratings"`
}

// ProcessAIAnalysis godoc
// @Summary Refresh the AI rating
// @Description Write precomputed rating components, or compute them when none are supplied
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param request body AIAnalysisRequest true "Analysis request"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/ai-analysis [post]
func (c *Controller) ProcessAIAnalysis(ctx *gin.Context) {
	var req AIAnalysisRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid analysis payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.ProcessAIAnalysisUpdate(ctx.Request.Context(), ctx.Param("id"), req.Ratings, actorFrom(ctx)))
}

// CSVImportRequest carries one raw CSV row keyed by header name.
type CSVImportRequest struct {
	Row map[string]string `json:"row" binding:"required"`
}

// ProcessCSVImport godoc
// @Summary Import a CSV row
// @Description Map spreadsheet columns onto the player record with numeric coercion
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param request body CSVImportRequest true "CSV row"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/csv-import [post]
func (c *Controller) ProcessCSVImport(ctx *gin.Context) {
	var req CSVImportRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid csv payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.ProcessCSVImport(ctx.Request.Context(), ctx.Param("id"), req.Row, actorFrom(ctx)))
}

// BulkUpdateRequest applies several update batches in one call.
type BulkUpdateRequest struct {
	Items []BulkItem `json:"items" binding:"required,min=1"`
}

// ProcessBulkUpdate godoc
// @Summary Bulk-update players
// @Description Apply one update batch per player; items succeed or fail independently
// @Tags updates
// @Accept json
// @Produce json
// @Param request body BulkUpdateRequest true "Bulk update items"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} map[string]integrity.Result "Per-player results"
// @Failure 400 {object} utils.ErrorResponse "Invalid payload"
// @Router /players/bulk-update [post]
func (c *Controller) ProcessBulkUpdate(ctx *gin.Context) {
	var req BulkUpdateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid bulk payload", validator.ParseErrorFields(err))
		return
	}
	results := c.service.ProcessBulkPlayerUpdate(ctx.Request.Context(), req.Items, actorFrom(ctx))
	ctx.JSON(http.StatusOK, results)
}

// PlayerValueRequest carries value component adjustments.
type PlayerValueRequest struct {
	Components map[string]float64 `json:"components" binding:"required,min=1"`
}

// UpdatePlayerValue godoc
// @Summary Adjust player value components
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param request body PlayerValueRequest true "Value components"
// @Param X-Actor header string false "Acting user"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/player-value [post]
func (c *Controller) UpdatePlayerValue(ctx *gin.Context) {
	var req PlayerValueRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid player value payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.UpdatePlayerValue(ctx.Request.Context(), ctx.Param("id"), req.Components, actorFrom(ctx)))
}

// SyncRequest carries an external vendor payload.
type SyncRequest struct {
	Source  string                 `json:"source" binding:"required"`
	Payload map[string]interface{} `json:"payload" binding:"required"`
}

// SyncExternalData godoc
// @Summary Sync data from an external vendor
// @Description Map a gps_vendor, cohesion_analytics or sheets payload onto the player record
// @Tags updates
// @Accept json
// @Produce json
// @Param id path string true "Player ID"
// @Param request body SyncRequest true "Vendor payload"
// @Param X-Actor header string false "Acting user (defaults to system)"
// @Success 200 {object} integrity.Result "Update applied"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /players/{id}/sync [post]
func (c *Controller) SyncExternalData(ctx *gin.Context) {
	var req SyncRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid sync payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.service.SyncExternalData(ctx.Request.Context(), ctx.Param("id"), req.Source, req.Payload, ctx.GetHeader("X-Actor")))
}

// HistoryInput bounds the history page size.
type HistoryInput struct {
	Limit int `form:"limit,default=0" binding:"min=0"`
}

// GetUpdateHistory godoc
// @Summary Get the update history for a player
// @Description Newest-first audit trail of accepted update batches
// @Tags updates
// @Produce json
// @Param id path string true "Player ID"
// @Param limit query int false "Maximum entries (default 50, cap 200)"
// @Success 200 {object} utils.SuccessResponse{data=[]integrity.DataUpdate} "History entries"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players/{id}/update-history [get]
func (c *Controller) GetUpdateHistory(ctx *gin.Context) {
	var input HistoryInput
	if err := ctx.ShouldBindQuery(&input); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}
	limit := input.Limit
	if limit <= 0 {
		limit = c.appConfig.History.DefaultLimit
	}
	if limit > c.appConfig.History.MaxLimit {
		limit = c.appConfig.History.MaxLimit
	}
	history, err := c.engine.History(ctx.Request.Context(), ctx.Param("id"), limit)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "update history", history)
}

// GetIntegrityReport godoc
// @Summary Run the integrity report for a player
// @Description Read-only consistency scan; 100 minus 10 points per issue found
// @Tags updates
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} integrity.IntegrityReport "Report"
// @Failure 404 {object} utils.ErrorResponse "Player not found"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players/{id}/integrity-report [get]
func (c *Controller) GetIntegrityReport(ctx *gin.Context) {
	report, err := c.engine.Report(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, player.ErrPlayerNotFound) {
			utils.NotFoundJSON(ctx, "player")
		} else {
			utils.InternalErrorJSON(ctx, err)
		}
		return
	}
	ctx.JSON(http.StatusOK, report)
}

// ValidateRequest is a dry-run validation batch.
type ValidateRequest struct {
	PlayerID string                 `json:"player_id" binding:"required"`
	Updates  map[string]interface{} `json:"updates" binding:"required"`
}

// ValidateUpdates godoc
// @Summary Dry-run validation
// @Description Run the validation rules against a proposed batch without persisting anything
// @Tags updates
// @Accept json
// @Produce json
// @Param request body ValidateRequest true "Proposed updates"
// @Success 200 {object} integrity.Result "Validation outcome"
// @Failure 400 {object} integrity.Result "Validation failed"
// @Failure 404 {object} integrity.Result "Player not found"
// @Router /data/validate [post]
func (c *Controller) ValidateUpdates(ctx *gin.Context) {
	var req ValidateRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid validation payload", validator.ParseErrorFields(err))
		return
	}
	respond(ctx, c.engine.Validate(ctx.Request.Context(), req.PlayerID, req.Updates))
}
