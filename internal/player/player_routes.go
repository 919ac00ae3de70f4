// player/routes.go
package player

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/squadpulse/squadpulse/config"
)

// RegisterPlayerRoutes wires the roster CRUD endpoints.
func RegisterPlayerRoutes(router *gin.RouterGroup, db *gorm.DB, appConfig *config.Config) {
	repo := NewRepository(db)
	controller := NewController(repo, appConfig)

	players := router.Group("/players")
	{
		players.POST("", controller.CreatePlayer)
		players.GET("", controller.GetAllPlayers)
		players.GET("/:id", controller.GetPlayerByID)
		players.DELETE("/:id", controller.DeletePlayer)
	}
}
