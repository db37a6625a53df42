package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"vendex/internal/service"
)

// VendorHandler handles vendor inspection endpoints.
type VendorHandler struct {
	vendorReader service.VendorReader
}

// NewVendorHandler creates a new VendorHandler.
func NewVendorHandler(vendorReader service.VendorReader) *VendorHandler {
	return &VendorHandler{vendorReader: vendorReader}
}

// GetByID handles GET /api/v1/vendors/:id
func (h *VendorHandler) GetByID(c *gin.Context) {
	vendorID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "INVALID_VENDOR_ID", "vendor id must be a valid UUID")
		return
	}
	view, err := h.vendorReader.GetVendor(c.Request.Context(), vendorID)
	if err != nil {
		HandleError(c, err)
		return
	}
	RespondOK(c, view)
}
