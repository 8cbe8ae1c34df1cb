package photos

import (
	"errors"
	"net/http"

	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/types"
	"github.com/Conversly/tripshare/internal/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// multipartOverhead is allowed on top of the file size for the other form
// fields and part headers.
const multipartOverhead = 1 << 20

type Controller struct {
	service  *Service
	maxBytes int64
}

func NewController(service *Service, maxBytes int64) *Controller {
	return &Controller{service: service, maxBytes: maxBytes}
}

// Upload godoc
// @Summary Upload a photo to a trip
// @Tags photos
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Trip ID"
// @Param file formData file true "Photo"
// @Param caption formData string false "Caption"
// @Success 202 {object} types.Photo
// @Failure 400 {object} types.ErrorResponse
// @Failure 413 {object} types.ErrorResponse
// @Failure 503 {object} types.ErrorResponse
// @Router /api/v1/trips/{id}/photos [post]
func (ctrl *Controller) Upload(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, ctrl.maxBytes+multipartOverhead)
	header, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			utils.RespondError(c, utils.TooLarge("photo exceeds %d bytes", ctrl.maxBytes))
			return
		}
		utils.RespondError(c, utils.BadRequest("multipart field \"file\" is required"))
		return
	}
	f, err := header.Open()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	defer f.Close()

	photo, err := ctrl.service.Upload(c.Request.Context(), tripID, shared.CurrentUserID(c), Upload{
		Filename:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		Caption:     c.PostForm("caption"),
		Body:        f,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusAccepted, photo)
}

func (ctrl *Controller) List(c *gin.Context) {
	tripID, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	photos, err := ctrl.service.List(c.Request.Context(), tripID, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, types.NewList(photos, len(photos), 0))
}

func (ctrl *Controller) Get(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	photo, err := ctrl.service.Get(c.Request.Context(), id, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, photo)
}

// File streams the stored photo. The checksum doubles as the ETag.
func (ctrl *Controller) File(c *gin.Context) {
	id, err := utils.ParseUUIDParam(c, "id")
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	photo, path, err := ctrl.service.File(c.Request.Context(), id, shared.CurrentUserID(c))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	c.Header("Content-Type", photo.ContentType)
	c.Header("Cache-Control", "private, max-age=86400")
	if photo.Checksum != "" {
		c.Header("ETag", `"`+photo.Checksum+`"`)
	}
	utils.Zlog.Debug("Serving photo", zap.String("photoId", photo.ID.String()))
	c.File(path)
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
