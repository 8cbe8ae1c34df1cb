package social

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/gin-gonic/gin"
)

func RegisterRoutes(router *gin.RouterGroup, store Store, tokens *shared.TokenManager) {
	controller := NewController(NewService(store))
	auth := shared.RequireAuth(tokens)
	optional := shared.OptionalAuth(tokens)

	router.PUT("/trips/:id/like", auth, controller.setLike(true))
	router.DELETE("/trips/:id/like", auth, controller.setLike(false))
	router.GET("/trips/:id/likes", optional, controller.Likers())

	router.PUT("/users/:id/follow", auth, controller.setFollow(true))
	router.DELETE("/users/:id/follow", auth, controller.setFollow(false))
	router.GET("/users/:id/followers", optional, controller.Followers())
	router.GET("/users/:id/following", optional, controller.Following())

	router.GET("/feed", auth, controller.Feed)
}
