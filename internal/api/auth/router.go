package auth

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, tokens *shared.TokenManager) {
	controller := NewController(NewService(store, tokens))

	group := router.Group("/auth")
	group.POST("/register", controller.Register)
	group.POST("/login", controller.Login)
}
