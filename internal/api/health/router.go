package health

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RegisterRoutes mounts the probes and the Prometheus endpoint at the root
// of the engine, outside the versioned API.
func RegisterRoutes(router gin.IRoutes, db Pinger, schema SchemaChecker) {
	controller := NewController(db, schema)
	router.GET("/healthz", controller.Live)
	router.GET("/readyz", controller.Ready)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
