package handler_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
	"vendex/internal/handler"
	"vendex/internal/service"
	"vendex/mocks"
)

func TestVendorHandler_GetByID_Success(t *testing.T) {
	mockReader := new(mocks.MockVendorReader)
	h := handler.NewVendorHandler(mockReader)

	vendorID := uuid.New()
	mockReader.On("GetVendor", mock.Anything, vendorID).Return(&service.VendorView{
		Vendor:       &domain.Vendor{ID: vendorID, Status: domain.VendorStatusProcessing},
		MissingTypes: []domain.DocumentType{domain.DocumentTypeGST},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vendors/"+vendorID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: vendorID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockReader.AssertExpectations(t)
}

func TestVendorHandler_GetByID_InvalidID(t *testing.T) {
	mockReader := new(mocks.MockVendorReader)
	h := handler.NewVendorHandler(mockReader)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vendors/not-a-uuid", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "INVALID_VENDOR_ID", resp.Error.Code)
	mockReader.AssertNotCalled(t, "GetVendor", mock.Anything, mock.Anything)
}

func TestVendorHandler_GetByID_NotFound(t *testing.T) {
	mockReader := new(mocks.MockVendorReader)
	h := handler.NewVendorHandler(mockReader)

	vendorID := uuid.New()
	mockReader.On("GetVendor", mock.Anything, vendorID).
		Return(nil, domain.ErrVendorNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/vendors/"+vendorID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: vendorID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "VENDOR_NOT_FOUND", resp.Error.Code)
}
