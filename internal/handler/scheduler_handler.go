package handler

import (
	"github.com/gin-gonic/gin"

	"vendex/internal/port"
	"vendex/internal/service"
)

// SchedulerHandler handles batching trigger and scheduler control endpoints.
type SchedulerHandler struct {
	batchingService service.BatchingService
	scheduler       port.SchedulerControl
}

// NewSchedulerHandler creates a new SchedulerHandler.
func NewSchedulerHandler(batchingService service.BatchingService, scheduler port.SchedulerControl) *SchedulerHandler {
	return &SchedulerHandler{batchingService: batchingService, scheduler: scheduler}
}

// Trigger handles POST /api/v1/batching/trigger
//
// The pass runs synchronously so the caller gets the summary back. Overlap
// with a scheduled pass is safe: vendor claiming is a conditional update, so
// concurrent passes split the ready set instead of double-batching it.
func (h *SchedulerHandler) Trigger(c *gin.Context) {
	summary, err := h.batchingService.CreateBatchesFromReadyVendors(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, summary)
}

// Pause handles POST /api/v1/scheduler/pause
func (h *SchedulerHandler) Pause(c *gin.Context) {
	if err := h.scheduler.Pause(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"paused": true})
}

// Resume handles POST /api/v1/scheduler/resume
func (h *SchedulerHandler) Resume(c *gin.Context) {
	if err := h.scheduler.Resume(c.Request.Context()); err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, gin.H{"paused": false})
}

// Stats handles GET /api/v1/scheduler/stats
func (h *SchedulerHandler) Stats(c *gin.Context) {
	stats, err := h.scheduler.Stats(c.Request.Context())
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, stats)
}
