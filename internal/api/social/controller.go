package social

import (
	"context"
	"net/http"

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

func (ctrl *Controller) setLike(liked bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		tripID, err := utils.ParseUUIDParam(c, "id")
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		resp, err := ctrl.service.SetLike(c.Request.Context(), tripID, shared.CurrentUserID(c), liked)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

func (ctrl *Controller) setFollow(follow bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, err := utils.ParseUUIDParam(c, "id")
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		resp, err := ctrl.service.SetFollow(c.Request.Context(), shared.CurrentUserID(c), userID, follow)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, resp)
	}
}

type userLister func(ctx context.Context, id, viewer uuid.UUID, page utils.Page) ([]types.User, error)

// listUsers serves a paginated user list keyed by the :id path parameter.
func listUsers(list userLister) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := utils.ParseUUIDParam(c, "id")
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		page, err := utils.ParsePage(c)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		users, err := list(c.Request.Context(), id, shared.CurrentUserID(c), page)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		c.JSON(http.StatusOK, types.NewList(users, page.Limit, page.Offset))
	}
}

func (ctrl *Controller) Likers() gin.HandlerFunc {
	return listUsers(ctrl.service.Likers)
}

func (ctrl *Controller) Followers() gin.HandlerFunc {
	return listUsers(func(ctx context.Context, id, _ uuid.UUID, page utils.Page) ([]types.User, error) {
		return ctrl.service.Followers(ctx, id, page)
	})
}

func (ctrl *Controller) Following() gin.HandlerFunc {
	return listUsers(func(ctx context.Context, id, _ uuid.UUID, page utils.Page) ([]types.User, error) {
		return ctrl.service.Following(ctx, id, page)
	})
}

// Feed godoc
// @Summary Trips from followed users, newest first
// @Tags social
// @Produce json
// @Param limit query int false "Page size"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ListResponse[types.Trip]
// @Failure 401 {object} types.ErrorResponse
// @Router /api/v1/feed [get]
func (ctrl *Controller) Feed(c *gin.Context) {
	page, err := utils.ParsePage(c)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	trips, err := ctrl.service.Feed(c.Request.Context(), shared.CurrentUserID(c), page)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewList(trips, page.Limit, page.Offset))
}
