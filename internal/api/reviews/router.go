package reviews

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, tokens *shared.TokenManager) {
	controller := NewController(NewService(store))

	router.POST("/trips/:id/reviews", shared.RequireAuth(tokens), controller.Create)
	router.GET("/trips/:id/reviews", shared.OptionalAuth(tokens), controller.List)
	router.PATCH("/reviews/:id", shared.RequireAuth(tokens), controller.Update)
	router.DELETE("/reviews/:id", shared.RequireAuth(tokens), controller.Delete)
}
