package trips

import (
	"net/http"
	"strings"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

// Create godoc
// @Summary Create a trip
// @Tags trips
// @Accept json
// @Produce json
// @Param request body CreateTripRequest true "Trip"
// @Success 201 {object} types.Trip
// @Failure 400 {object} types.ErrorResponse
// @Router /api/v1/trips [post]
func (ctrl *Controller) Create(c *gin.Context) {
	var req CreateTripRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	trip, err := ctrl.service.Create(c.Request.Context(), shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (ctrl *Controller) Get(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	trip, err := ctrl.service.Get(c.Request.Context(), id, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (ctrl *Controller) Update(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req UpdateTripRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	trip, err := ctrl.service.Update(c.Request.Context(), id, shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (ctrl *Controller) Delete(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if err := ctrl.service.Delete(c.Request.Context(), id, shared.CurrentUserID(c)); err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// List godoc
// @Summary List trips
// @Tags trips
// @Produce json
// @Param q query string false "Title substring"
// @Param destination query string false "Destination substring"
// @Param tag query string false "Tag"
// @Param user query string false "Owner ID"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ListResponse[types.Trip]
// @Router /api/v1/trips [get]
func (ctrl *Controller) List(c *gin.Context) {
	page, err := utils.ParsePage(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	q := ListQuery{
		Query:       strings.TrimSpace(c.Query("q")),
		Destination: strings.TrimSpace(c.Query("destination")),
		Tag:         NormalizeTag(c.Query("tag")),
		Limit:       page.Limit,
		Offset:      page.Offset,
	}
	if raw := c.Query("user"); raw != "" {
		id, err := uuid.Parse(raw)
		if err != nil {
			utils.RespondError(c, utils.BadRequest("user must be a valid UUID"))
			return
		}
		q.UserID = &id
	}

	trips, err := ctrl.service.List(c.Request.Context(), shared.CurrentUserID(c), q)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewList(trips, page.Limit, page.Offset))
}

func (ctrl *Controller) SetCover(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req SetCoverRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	trip, err := ctrl.service.SetCover(c.Request.Context(), id, shared.CurrentUserID(c), req.PhotoID)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}
