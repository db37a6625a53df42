package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"vendex/internal/domain"
	"vendex/internal/service"
)

// CallbackHandler receives completion notifications from the extraction
// service.
type CallbackHandler struct {
	callbackService service.CallbackService
}

// NewCallbackHandler creates a new CallbackHandler.
func NewCallbackHandler(callbackService service.CallbackService) *CallbackHandler {
	return &CallbackHandler{callbackService: callbackService}
}

// Receive handles POST /api/v1/callbacks/extraction
func (h *CallbackHandler) Receive(c *gin.Context) {
	var cb domain.ExtractionCallback
	if err := c.ShouldBindJSON(&cb); err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_BODY", "invalid callback payload")
		return
	}
	if cb.TaskID == "" {
		RespondError(c, http.StatusBadRequest, "MISSING_TASK_ID", "task_id is required")
		return
	}
	if cb.Status != domain.CallbackStatusSuccess && cb.Status != domain.CallbackStatusError {
		RespondError(c, http.StatusBadRequest, "INVALID_STATUS", "status must be success or error")
		return
	}

	result, err := h.callbackService.HandleCallback(c.Request.Context(), &cb)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, result)
}
