package handler_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
	"vendex/internal/handler"
	"vendex/internal/service"
	"vendex/mocks"
)

func TestStatsHandler_GetStats_Success(t *testing.T) {
	mockSvc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(mockSvc)

	mockSvc.On("GetOverview", mock.Anything).Return(&service.PipelineOverview{
		Processing: &domain.ProcessingStats{
			TotalVendors:      40,
			VendorsReady:      5,
			VendorsProcessing: 10,
			VendorsCompleted:  25,
			TotalBatches:      18,
		},
		Queue: &domain.QueueStats{
			Queues: map[string]domain.QueueCounts{
				"extraction:high": {Pending: 2, Active: 1},
			},
			Workers: 50,
		},
	}, nil)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)

	h.GetStats(c)

	assert.Equal(t, http.StatusOK, w.Code)
	var resp handler.APIResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	mockSvc.AssertExpectations(t)
}

func TestStatsHandler_GetStats_Error(t *testing.T) {
	mockSvc := new(mocks.MockStatsService)
	h := handler.NewStatsHandler(mockSvc)

	mockSvc.On("GetOverview", mock.Anything).Return(nil, errors.New("db error"))

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request, _ = http.NewRequest(http.MethodGet, "/api/v1/stats", http.NoBody)

	h.GetStats(c)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
}
