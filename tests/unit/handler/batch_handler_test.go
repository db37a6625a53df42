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
	"vendex/mocks"
)

func newBatchHandler() (*handler.BatchHandler, *mocks.MockBatchingService, *mocks.MockBatchReader) {
	mockBatching := new(mocks.MockBatchingService)
	mockReader := new(mocks.MockBatchReader)
	h := handler.NewBatchHandler(mockBatching, mockReader)
	return h, mockBatching, mockReader
}

func TestBatchHandler_List_WithFilters(t *testing.T) {
	h, _, mockReader := newBatchHandler()

	status := domain.BatchStatusFailed
	docType := domain.DocumentTypePAN
	mockReader.On("List", mock.Anything, domain.BatchFilter{Status: &status, DocumentType: &docType}, 0, 20).
		Return([]domain.Batch{{ID: uuid.New(), Status: status, DocumentType: docType}}, 1, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches?status=failed&document_type=PAN_CARD", http.NoBody)

	h.List(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, 1, resp.Meta.Total)
	mockReader.AssertExpectations(t)
}

func TestBatchHandler_GetByID_NotFound(t *testing.T) {
	h, _, mockReader := newBatchHandler()

	batchID := uuid.New()
	mockReader.On("GetByID", mock.Anything, batchID).
		Return(nil, domain.ErrBatchNotFound)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/"+batchID.String(), http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: batchID.String()}}

	h.GetByID(c)

	assert.Equal(t, http.StatusNotFound, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BATCH_NOT_FOUND", resp.Error.Code)
}

func TestBatchHandler_GetByID_InvalidUUID(t *testing.T) {
	h, _, mockReader := newBatchHandler()

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/batches/not-a-uuid", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: "not-a-uuid"}}

	h.GetByID(c)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockReader.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func TestBatchHandler_Retry_Accepted(t *testing.T) {
	h, mockBatching, _ := newBatchHandler()

	batchID := uuid.New()
	mockBatching.On("RetryBatch", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchStatusPending}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/batches/"+batchID.String()+"/retry", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: batchID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusAccepted, w.Code)
	mockBatching.AssertExpectations(t)
}

func TestBatchHandler_Retry_NotRetryable409(t *testing.T) {
	h, mockBatching, _ := newBatchHandler()

	batchID := uuid.New()
	mockBatching.On("RetryBatch", mock.Anything, batchID).
		Return(nil, domain.ErrBatchNotRetryable)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodPost, "/api/v1/batches/"+batchID.String()+"/retry", http.NoBody)
	c.Params = gin.Params{{Key: "id", Value: batchID.String()}}

	h.Retry(c)

	assert.Equal(t, http.StatusConflict, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BATCH_NOT_RETRYABLE", resp.Error.Code)
}
