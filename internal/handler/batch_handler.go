package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendex/internal/domain"
	"vendex/internal/service"
)

// BatchHandler handles batch inspection and retry endpoints.
type BatchHandler struct {
	batchingService service.BatchingService
	batchReader     service.BatchReader
}

// NewBatchHandler creates a new BatchHandler.
func NewBatchHandler(batchingService service.BatchingService, batchReader service.BatchReader) *BatchHandler {
	return &BatchHandler{batchingService: batchingService, batchReader: batchReader}
}

// List handles GET /api/v1/batches
func (h *BatchHandler) List(c *gin.Context) {
	offset, limit := parsePagination(c)

	var filter domain.BatchFilter
	if s := c.Query("status"); s != "" {
		status := domain.BatchStatus(s)
		filter.Status = &status
	}
	if t := c.Query("document_type"); t != "" {
		dt := domain.NormalizeDocumentType(t)
		filter.DocumentType = &dt
	}

	batches, total, err := h.batchReader.List(c.Request.Context(), filter, offset, limit)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondPaginated(c, batches, PagMeta{Total: total, Offset: offset, Limit: limit})
}

// GetByID handles GET /api/v1/batches/:id
func (h *BatchHandler) GetByID(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	batch, err := h.batchReader.GetByID(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, batch)
}

// Retry handles POST /api/v1/batches/:id/retry
func (h *BatchHandler) Retry(c *gin.Context) {
	batchID, ok := parseBatchID(c)
	if !ok {
		return
	}
	batch, err := h.batchingService.RetryBatch(c.Request.Context(), batchID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondAccepted(c, batch)
}

func parseBatchID(c *gin.Context) (uuid.UUID, bool) {
	batchID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BATCH_ID", "batch id must be a valid UUID")
		return uuid.Nil, false
	}
	return batchID, true
}

// parsePagination extracts offset and limit from query params with defaults.
func parsePagination(c *gin.Context) (offset, limit int) {
	offset, _ = strconv.Atoi(c.DefaultQuery("offset", "0"))
	limit, _ = strconv.Atoi(c.DefaultQuery("limit", "20"))
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return offset, limit
}
