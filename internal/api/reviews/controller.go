package reviews

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

// Create godoc
// @Summary Review a trip
// @Tags reviews
// @Accept json
// @Produce json
// @Param id path string true "Trip ID"
// @Param request body CreateReviewRequest true "Review"
// @Success 201 {object} types.Review
// @Failure 400 {object} types.ErrorResponse
// @Failure 409 {object} types.ErrorResponse
// @Router /api/v1/trips/{id}/reviews [post]
func (ctrl *Controller) Create(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req CreateReviewRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	review, err := ctrl.service.Create(c.Request.Context(), tripID, shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, review)
}

func (ctrl *Controller) List(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	page, err := utils.ParsePage(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	reviews, err := ctrl.service.List(c.Request.Context(), tripID, shared.CurrentUserID(c), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewList(reviews, page.Limit, page.Offset))
}

func (ctrl *Controller) Update(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	var req UpdateReviewRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	review, err := ctrl.service.Update(c.Request.Context(), id, shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, review)
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
