package routes

import (
	"net/http"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"

	"github.com/squadpulse/squadpulse/config"
	"github.com/squadpulse/squadpulse/internal/integrity"
	"github.com/squadpulse/squadpulse/internal/player"
	"github.com/squadpulse/squadpulse/internal/update"
	"github.com/squadpulse/squadpulse/pkg/metrics"
)

// SetupRoutes builds the gin engine and mounts every route group. The
// integrity engine and update service are constructed once in main and
// passed in; route registration never builds its own.
func SetupRoutes(db *gorm.DB, appConfig *config.Config, engine *integrity.Engine, service *update.Service, m *metrics.Manager) *gin.Engine {
	r := gin.Default()
	r.Use(cors.Default()) // allows all origins, GET/POST/PUT

	r.GET("/", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"service": "squadpulse",
			"status":  "ok",
		})
	})

	// Swagger route
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	// Prometheus metrics
	r.GET("/metrics", gin.WrapH(m.Handler()))

	// API routes
	api := r.Group("/api")
	api.Use(requestCounter(m))

	player.RegisterPlayerRoutes(api, db, appConfig)
	update.RegisterUpdateRoutes(api, service, engine, appConfig)

	return r
}

func requestCounter(m *metrics.Manager) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		m.HTTPRequest(c.Request.Method, c.FullPath(), http.StatusText(c.Writer.Status()))
	}
}
