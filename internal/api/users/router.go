package users

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, tokens *shared.TokenManager) {
	controller := NewController(NewService(store))

	group := router.Group("/users")
	group.GET("", shared.OptionalAuth(tokens), controller.Search)
	group.GET("/me", shared.RequireAuth(tokens), controller.Me)
	group.PATCH("/me", shared.RequireAuth(tokens), controller.UpdateMe)
	group.GET("/:id", shared.OptionalAuth(tokens), controller.Get)
}
