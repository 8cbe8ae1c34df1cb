package users

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

// Get godoc
// @Summary Public profile of a user
// @Tags users
// @Produce json
// @Param id path string true "User ID"
// @Success 200 {object} types.UserProfile
// @Failure 404 {object} types.ErrorResponse
// @Router /api/v1/users/{id} [get]
func (ctrl *Controller) Get(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	p, err := ctrl.service.Profile(c.Request.Context(), id, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Me returns the caller's own profile, including the email address.
func (ctrl *Controller) Me(c *gin.Context) {
	me := shared.CurrentUserID(c)
	p, err := ctrl.service.Profile(c.Request.Context(), me, me)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (ctrl *Controller) UpdateMe(c *gin.Context) {
	var req UpdateProfileRequest
	if err := utils.BindJSON(c, &req); err != nil {
		utils.RespondError(c, err)
		return
	}
	u, err := ctrl.service.Update(c.Request.Context(), shared.CurrentUserID(c), req)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

// Search godoc
// @Summary Find users by username or display name
// @Tags users
// @Produce json
// @Param q query string true "Search term"
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ListResponse[types.User]
// @Router /api/v1/users [get]
func (ctrl *Controller) Search(c *gin.Context) {
	page, err := utils.ParsePage(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	found, err := ctrl.service.Search(c.Request.Context(), c.Query("q"), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewList(found, page.Limit, page.Offset))
}
