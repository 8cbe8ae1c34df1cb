package itinerary

import (
	"net/http"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
)

type Controller struct {
	service *Service
}

func NewController(service *Service) *Controller {
	return &Controller{service: service}
}

type response struct {
	Days []types.ItineraryDay `json:"days"`
}

func (ctrl *Controller) Get(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	days, err := ctrl.service.Get(c.Request.Context(), tripID, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Days: days})
}

// Replace godoc
// @Summary Replace a trip's itinerary
// @Tags itinerary
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body ReplaceRequest true "Itinerary"
// @Success 200 {object} response
// @Failure 400 {object} types.ErrorResponse
// @Failure 403 {object} types.ErrorResponse
// @Router /api/v1/trips/{id}/itinerary [put]
func (ctrl *Controller) Replace(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req ReplaceRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	days, err := ctrl.service.Replace(c.Request.Context(), tripID, shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response{Days: days})
}
