package api

import (
	"github.com/Conversly/tripshare/internal/api/auth"
	"github.com/Conversly/tripshare/internal/api/health"
	"github.com/Conversly/tripshare/internal/api/itinerary"
	"github.com/Conversly/tripshare/internal/api/photos"
	"github.com/Conversly/tripshare/internal/api/reviews"
	"github.com/Conversly/tripshare/internal/api/social"
	"github.com/Conversly/tripshare/internal/api/trips"
	"github.com/Conversly/tripshare/internal/api/users"
	"github.com/Conversly/tripshare/internal/config"
	"github.com/Conversly/tripshare/internal/loaders"
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/gin-gonic/gin"
)

// Store is everything the feature packages need from the database.
// *loaders.PostgresClient implements it.
type Store interface {
	auth.Store
	users.Store
	trips.Store
	itinerary.Store
	photos.Store
	reviews.Store
	social.Store
	health.Pinger
}

var _ Store = (*loaders.PostgresClient)(nil)

type Dependencies struct {
	Store  Store
	Schema health.SchemaChecker
	Photos *storage.PhotoStore
	Tokens *shared.TokenManager
	Config *config.Config
}

// RegisterRoutes mounts every feature router on the engine. It returns the
// photo worker pool, which the caller stops on shutdown.
func RegisterRoutes(engine *gin.Engine, deps Dependencies) *photos.WorkerPool {
	health.RegisterRoutes(engine, deps.Store, deps.Schema)

	v1 := engine.Group("/api/v1")
	auth.RegisterRoutes(v1, deps.Store, deps.Tokens)
	users.RegisterRoutes(v1, deps.Store, deps.Tokens)
	trips.RegisterRoutes(v1, deps.Store, deps.Photos, deps.Tokens)
	itinerary.RegisterRoutes(v1, deps.Store, deps.Tokens)
	reviews.RegisterRoutes(v1, deps.Store, deps.Tokens)
	social.RegisterRoutes(v1, deps.Store, deps.Tokens)

	queueCapacity := deps.Config.BatchSize * deps.Config.WorkerCount
	if queueCapacity <= 0 {
		queueCapacity = 100
	}
	return photos.RegisterRoutes(v1, deps.Store, deps.Photos, deps.Tokens, photos.Options{
		Workers:        deps.Config.WorkerCount,
		QueueCapacity:  queueCapacity,
		MaxUploadBytes: deps.Config.MaxUploadBytes,
	})
}
