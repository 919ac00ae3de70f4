// update/routes.go
package update

import (
	"github.com/gin-gonic/gin"

	"github.com/squadpulse/squadpulse/config"
	"github.com/squadpulse/squadpulse/internal/integrity"
)

// RegisterUpdateRoutes wires the integrity-engine endpoints. The engine and
// service are constructed once in main and shared.
func RegisterUpdateRoutes(router *gin.RouterGroup, service *Service, engine *integrity.Engine, appConfig *config.Config) {
	controller := NewController(service, engine, appConfig)

	players := router.Group("/players")
	{
		players.POST("/bulk-update", controller.ProcessBulkUpdate)
		players.POST("/:id/medical/appointments", controller.UpdateMedicalAppointment)
		players.POST("/:id/training/attendance", controller.UpdateTrainingAttendance)
		players.POST("/:id/injuries", controller.ProcessInjuryUpdate)
		players.POST("/:id/gps-data", controller.ProcessGPSData)
		players.POST("/:id/ai-analysis", controller.ProcessAIAnalysis)
		players.POST("/:id/csv-import", controller.ProcessCSVImport)
		players.POST("/:id/player-value", controller.UpdatePlayerValue)
		players.POST("/:id/sync", controller.SyncExternalData)
		players.GET("/:id/update-history", controller.GetUpdateHistory)
		players.GET("/:id/integrity-report", controller.GetIntegrityReport)
	}

	data := router.Group("/data")
	{
		data.POST("/validate", controller.ValidateUpdates)
	}
}
