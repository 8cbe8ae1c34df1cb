package itinerary

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, tokens *shared.TokenManager) {
	controller := NewController(NewService(store))

	group := router.Group("/trips/:id/itinerary")
	group.GET("", shared.OptionalAuth(tokens), controller.Get)
	group.PUT("", shared.RequireAuth(tokens), controller.Replace)
}
