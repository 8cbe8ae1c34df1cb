package trips

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, files FileRemover, tokens *shared.TokenManager) {
	controller := NewController(NewService(store, files))

	group := router.Group("/trips")
	group.POST("", shared.RequireAuth(tokens), controller.Create)
	group.GET("", shared.OptionalAuth(tokens), controller.List)
	group.GET("/:id", shared.OptionalAuth(tokens), controller.Get)
	group.PATCH("/:id", shared.RequireAuth(tokens), controller.Update)
	group.DELETE("/:id", shared.RequireAuth(tokens), controller.Delete)
	group.POST("/:id/cover", shared.RequireAuth(tokens), controller.SetCover)
}
