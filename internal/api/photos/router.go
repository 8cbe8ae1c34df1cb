package photos

import (
	"github.com/Conversly/tripshare/internal/shared"
	"github.com/Conversly/tripshare/internal/storage"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes wires the photo endpoints and starts the worker pool that
// moves uploads into storage. The caller stops the returned pool on
// shutdown.
func RegisterRoutes(router *gin.RouterGroup, store Store, files *storage.PhotoStore, tokens *shared.TokenManager, opts Options) *WorkerPool {
	service := NewService(store, files, opts.MaxUploadBytes)
	workers := NewWorkerPool(opts.Workers, opts.QueueCapacity, service.StorePhoto, service.MarkFailed)
	service.SetWorkers(workers)
	workers.Start()

	controller := NewController(service, opts.MaxUploadBytes)
	router.POST("/trips/:id/photos", shared.RequireAuth(tokens), controller.Upload)
	router.GET("/trips/:id/photos", shared.OptionalAuth(tokens), controller.List)
	router.GET("/photos/:id", shared.OptionalAuth(tokens), controller.Get)
	router.GET("/photos/:id/file", shared.OptionalAuth(tokens), controller.File)
	router.DELETE("/photos/:id", shared.RequireAuth(tokens), controller.Delete)
	return workers
}
