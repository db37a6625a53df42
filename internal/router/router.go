package router

import (
	"github.com/gin-gonic/gin"

	"vendex/internal/handler"
	"vendex/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
func Setup(
	callbackH *handler.CallbackHandler,
	batchH *handler.BatchHandler,
	vendorH *handler.VendorHandler,
	schedulerH *handler.SchedulerHandler,
	statsH *handler.StatsHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger())

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)

	v1 := r.Group("/api/v1")

	// Extraction service callback
	v1.POST("/callbacks/extraction", callbackH.Receive)

	// Batch inspection and retry
	batches := v1.Group("/batches")
	batches.GET("", batchH.List)
	batches.GET("/:id", batchH.GetByID)
	batches.POST("/:id/retry", batchH.Retry)

	// Vendor inspection
	v1.GET("/vendors/:id", vendorH.GetByID)

	// Batching trigger and scheduler control
	v1.POST("/batching/trigger", schedulerH.Trigger)
	scheduler := v1.Group("/scheduler")
	scheduler.POST("/pause", schedulerH.Pause)
	scheduler.POST("/resume", schedulerH.Resume)
	scheduler.GET("/stats", schedulerH.Stats)

	// Pipeline statistics
	v1.GET("/stats", statsH.GetStats)

	return r
}
