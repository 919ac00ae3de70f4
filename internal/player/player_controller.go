package player

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/squadpulse/squadpulse/config"
	"github.com/squadpulse/squadpulse/pkg/utils"
	"github.com/squadpulse/squadpulse/pkg/validator"
)

// Controller handles roster HTTP requests.
type Controller struct {
	repo      Repository
	appConfig *config.Config
}

// NewController creates a new player controller.
func NewController(repo Repository, appConfig *config.Config) *Controller {
	return &Controller{
		repo:      repo,
		appConfig: appConfig,
	}
}

// PlayerInput is the payload for creating a roster entry.
type PlayerInput struct {
	ID           string `json:"id" binding:"required"`
	Name         string `json:"name" binding:"required"`
	DateOfBirth  string `json:"date_of_birth"`
	Position     string `json:"position"`
	JerseyNumber int    `json:"jersey_number" binding:"omitempty,min=1,max=99"`
	Squad        string `json:"squad"`
}

// PaginationInput mirrors the standard page/limit query parameters.
type PaginationInput struct {
	Page  int `form:"page,default=1" binding:"min=1"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

// CreatePlayer godoc
// @Summary Create a new player
// @Description Add a roster entry; the denormalized document starts with cleared/available defaults
// @Tags players
// @Accept json
// @Produce json
// @Param player body PlayerInput true "Player information"
// @Success 201 {object} Player "Player created successfully"
// @Failure 400 {object} utils.ErrorResponse "Invalid input"
// @Failure 409 {object} utils.ErrorResponse "Player already exists"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players [post]
func (c *Controller) CreatePlayer(ctx *gin.Context) {
	var input PlayerInput
	if err := ctx.ShouldBindJSON(&input); err != nil {
		utils.ValidationErrorJSON(ctx, "invalid player payload", validator.ParseErrorFields(err))
		return
	}

	if existing, err := c.repo.GetByID(ctx.Request.Context(), input.ID); err == nil && existing != nil {
		utils.ConflictJSON(ctx, "player already exists: "+input.ID)
		return
	}

	p := &Player{
		ID:           input.ID,
		Name:         input.Name,
		Position:     input.Position,
		Squad:        input.Squad,
		JerseyNumber: input.JerseyNumber,
		Doc: NewDocument(Personal{
			Name:         input.Name,
			DateOfBirth:  input.DateOfBirth,
			Position:     input.Position,
			JerseyNumber: input.JerseyNumber,
			Squad:        input.Squad,
		}),
	}

	if err := c.repo.Create(ctx.Request.Context(), p); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, p)
}

// GetPlayerByID godoc
// @Summary Get player by ID
// @Description Get the full denormalized player record
// @Tags players
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} Player "Player record"
// @Failure 404 {object} utils.ErrorResponse "Player not found"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players/{id} [get]
func (c *Controller) GetPlayerByID(ctx *gin.Context) {
	p, err := c.repo.GetByID(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			utils.NotFoundJSON(ctx, "player")
		} else {
			utils.InternalErrorJSON(ctx, err)
		}
		return
	}
	ctx.JSON(http.StatusOK, p)
}

// GetAllPlayers godoc
// @Summary List players
// @Description Get a paginated roster list with optional filters
// @Tags players
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 10, max: 100)"
// @Param squad query string false "Filter by squad"
// @Param position query string false "Filter by position"
// @Param name query string false "Filter by name (partial match)"
// @Success 200 {object} utils.PaginatedResponse{data=[]Player} "Roster page"
// @Failure 400 {object} utils.ErrorResponse "Invalid query parameters"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players [get]
func (c *Controller) GetAllPlayers(ctx *gin.Context) {
	var pagination PaginationInput
	if err := ctx.ShouldBindQuery(&pagination); err != nil {
		utils.BadRequestJSON(ctx, err.Error())
		return
	}

	filters := make(map[string]interface{})
	if squad := ctx.Query("squad"); squad != "" {
		filters["squad"] = squad
	}
	if position := ctx.Query("position"); position != "" {
		filters["position"] = position
	}
	if name := ctx.Query("name"); name != "" {
		filters["name"] = name
	}

	players, totalCount, err := c.repo.GetAll(ctx.Request.Context(), pagination.Page, pagination.Limit, filters)
	if err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}

	utils.PaginatedJSON(ctx, players, pagination.Page, pagination.Limit, totalCount)
}

// DeletePlayer godoc
// @Summary Delete a player
// @Description Remove a roster entry
// @Tags players
// @Produce json
// @Param id path string true "Player ID"
// @Success 200 {object} utils.SuccessResponse "Player deleted"
// @Failure 404 {object} utils.ErrorResponse "Player not found"
// @Failure 500 {object} utils.ErrorResponse "Internal server error"
// @Router /players/{id} [delete]
func (c *Controller) DeletePlayer(ctx *gin.Context) {
	id := ctx.Param("id")
	if _, err := c.repo.GetByID(ctx.Request.Context(), id); err != nil {
		if errors.Is(err, ErrPlayerNotFound) {
			utils.NotFoundJSON(ctx, "player")
		} else {
			utils.InternalErrorJSON(ctx, err)
		}
		return
	}
	if err := c.repo.Delete(ctx.Request.Context(), id); err != nil {
		utils.InternalErrorJSON(ctx, err)
		return
	}
	utils.SuccessJSON(ctx, http.StatusOK, "player deleted", nil)
}
