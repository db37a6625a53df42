package service_test

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"vendex/internal/domain"
	"vendex/internal/service"
	"vendex/mocks"
)

func newCallbackService() (service.CallbackService, *mocks.MockTaskContextStore, *mocks.MockVendorRepo, *mocks.MockBatchRepo, *mocks.MockProductRepo) {
	store := new(mocks.MockTaskContextStore)
	vendorRepo := new(mocks.MockVendorRepo)
	batchRepo := new(mocks.MockBatchRepo)
	productRepo := new(mocks.MockProductRepo)
	svc := service.NewCallbackService(store, vendorRepo, batchRepo, productRepo)
	return svc, store, vendorRepo, batchRepo, productRepo
}

func TestCallbackService_UnknownTask_NoMutation(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	store.On("Consume", mock.Anything, "task-x").
		Return(nil, domain.ErrTaskContextNotFound)

	result, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID: "task-x",
		Status: domain.CallbackStatusSuccess,
	})
	assert.ErrorIs(t, err, domain.ErrTaskContextNotFound)
	assert.Nil(t, result)
	batchRepo.AssertNotCalled(t, "IncrementProgress", mock.Anything, mock.Anything, mock.Anything)
	vendorRepo.AssertNotCalled(t, "UpsertResult", mock.Anything, mock.Anything)
}

func TestCallbackService_SuccessMidBatch(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypePAN}

	store.On("Consume", mock.Anything, "task-1").Return(tc, nil)
	vendorRepo.On("UpsertResult", mock.Anything, mock.MatchedBy(func(r *domain.ExtractionResult) bool {
		return r.VendorID == vendorID && r.DocumentType == domain.DocumentTypePAN && r.SourceBatch == batchID
	})).Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, true).
		Return(&domain.BatchProgress{Completed: 3, Successful: 3, TotalDocuments: 10, Status: domain.BatchStatusProcessing}, nil)

	result, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-1",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`{"pan_number":"ABCDE1234F"}`),
		Confidence:    0.97,
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.BatchStatusProcessing, result.BatchStatus)
	assert.Equal(t, 3, result.Completed)
	batchRepo.AssertNotCalled(t, "MarkTerminal", mock.Anything, mock.Anything, mock.Anything)
}

func TestCallbackService_LastCallbackFinalizesBatch(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypeGST}

	store.On("Consume", mock.Anything, "task-9").Return(tc, nil)
	vendorRepo.On("UpsertResult", mock.Anything, mock.Anything).Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, true).
		Return(&domain.BatchProgress{Completed: 10, Successful: 7, Failed: 3, TotalDocuments: 10}, nil)
	batchRepo.On("MarkTerminal", mock.Anything, batchID, domain.BatchStatusPartialSuccess).
		Return(true, nil)
	batchRepo.On("GetByID", mock.Anything, batchID).Return(&domain.Batch{
		ID:     batchID,
		Status: domain.BatchStatusPartialSuccess,
		Documents: domain.BatchDocuments{
			{VendorID: vendorID, DocumentType: domain.DocumentTypeGST, StorageKey: "g1"},
		},
	}, nil)
	vendorRepo.On("ListMissingResultTypes", mock.Anything, vendorID).
		Return([]domain.DocumentType{}, nil)
	vendorRepo.On("MarkExtractionCompleted", mock.Anything, vendorID).Return(true, nil)

	result, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-9",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`{}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.BatchStatusPartialSuccess, result.BatchStatus)
	batchRepo.AssertExpectations(t)
	vendorRepo.AssertExpectations(t)
}

func TestCallbackService_AllDocumentsFailed_PartialSuccess(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypeAadhaar}

	store.On("Consume", mock.Anything, "task-2").Return(tc, nil)
	batchRepo.On("AppendError", mock.Anything, batchID, mock.MatchedBy(func(e domain.BatchError) bool {
		return e.TaskID == "task-2" && e.VendorID == vendorID && e.Message == "ocr timeout"
	})).Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, false).
		Return(&domain.BatchProgress{Completed: 2, Failed: 2, TotalDocuments: 2}, nil)
	// Every document failed, yet the callback path only ever assigns
	// completed or partial_success. The latter keeps the batch retryable.
	batchRepo.On("MarkTerminal", mock.Anything, batchID, domain.BatchStatusPartialSuccess).
		Return(true, nil)
	batchRepo.On("GetByID", mock.Anything, batchID).Return(&domain.Batch{
		ID:     batchID,
		Status: domain.BatchStatusPartialSuccess,
		Documents: domain.BatchDocuments{
			{VendorID: vendorID, DocumentType: domain.DocumentTypeAadhaar, StorageKey: "a1"},
		},
	}, nil)
	vendorRepo.On("ListMissingResultTypes", mock.Anything, vendorID).
		Return([]domain.DocumentType{domain.DocumentTypeAadhaar}, nil)

	result, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID: "task-2",
		Status: domain.CallbackStatusError,
		Error:  "ocr timeout",
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.BatchStatusPartialSuccess, result.BatchStatus)
	batchRepo.AssertNotCalled(t, "MarkTerminal", mock.Anything, batchID, domain.BatchStatusFailed)
	// Vendor still misses a result, so it is not promoted.
	vendorRepo.AssertNotCalled(t, "MarkExtractionCompleted", mock.Anything, mock.Anything)
}

func TestCallbackService_DuplicateDeliveryChangesNothing(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypePAN}

	// First delivery consumes the context; the redelivery finds only the
	// consumed marker.
	store.On("Consume", mock.Anything, "task-d").Return(tc, nil).Once()
	store.On("Consume", mock.Anything, "task-d").Return(nil, domain.ErrTaskContextConsumed).Once()
	vendorRepo.On("UpsertResult", mock.Anything, mock.Anything).Return(nil).Once()
	batchRepo.On("IncrementProgress", mock.Anything, batchID, true).
		Return(&domain.BatchProgress{Completed: 5, Successful: 5, TotalDocuments: 10, Status: domain.BatchStatusProcessing}, nil).Once()

	first, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-d",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`{"pan_number":"ABCDE1234F"}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, 5, first.Completed)

	second, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-d",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`{"pan_number":"ABCDE1234F"}`),
	})
	assert.ErrorIs(t, err, domain.ErrTaskContextConsumed)
	assert.Nil(t, second)
	batchRepo.AssertNumberOfCalls(t, "IncrementProgress", 1)
	vendorRepo.AssertNumberOfCalls(t, "UpsertResult", 1)
}

func TestCallbackService_LoserOfTerminalRaceDoesNotReconcile(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: uuid.New(), DocumentType: domain.DocumentTypePAN}

	store.On("Consume", mock.Anything, "task-3").Return(tc, nil)
	vendorRepo.On("UpsertResult", mock.Anything, mock.Anything).Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, true).
		Return(&domain.BatchProgress{Completed: 10, Successful: 10, TotalDocuments: 10}, nil)
	batchRepo.On("MarkTerminal", mock.Anything, batchID, domain.BatchStatusCompleted).
		Return(false, nil)
	batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchStatusCompleted}, nil)

	result, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-3",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`{}`),
	})
	assert.NoError(t, err)
	assert.Equal(t, domain.BatchStatusCompleted, result.BatchStatus)
	vendorRepo.AssertNotCalled(t, "ListMissingResultTypes", mock.Anything, mock.Anything)
}

func TestCallbackService_CataloguePayloadStoredAsProducts(t *testing.T) {
	svc, store, vendorRepo, batchRepo, productRepo := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypeCatalogue}

	store.On("Consume", mock.Anything, "task-c").Return(tc, nil)

	var inserted []domain.CatalogueProduct
	productRepo.On("InsertProducts", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { inserted = args.Get(1).([]domain.CatalogueProduct) }).
		Return(nil)

	var result *domain.ExtractionResult
	vendorRepo.On("UpsertResult", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { result = args.Get(1).(*domain.ExtractionResult) }).
		Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, true).
		Return(&domain.BatchProgress{Completed: 1, Successful: 1, TotalDocuments: 5, Status: domain.BatchStatusProcessing}, nil)

	payload := json.RawMessage(`{"products":[{"model_name":"X100","price":250},{"model_name":"X200","price":400}]}`)
	_, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-c",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: payload,
		Confidence:    0.9,
	})
	assert.NoError(t, err)

	assert.Len(t, inserted, 2)
	assert.Equal(t, "X100", inserted[0].ModelName)
	assert.Equal(t, vendorID, inserted[0].VendorID)
	assert.Equal(t, batchID, inserted[0].SourceBatchID)

	// The vendor-level result keeps a summary, not the product rows.
	var stripped map[string]any
	assert.NoError(t, json.Unmarshal(result.Data, &stripped))
	assert.Equal(t, float64(2), stripped["product_count"])
}

func TestCallbackService_UnpersistableResultCountsAsFailure(t *testing.T) {
	svc, store, vendorRepo, batchRepo, _ := newCallbackService()

	batchID := uuid.New()
	vendorID := uuid.New()
	tc := &domain.TaskContext{BatchID: batchID, VendorID: vendorID, DocumentType: domain.DocumentTypeCatalogue}

	store.On("Consume", mock.Anything, "task-bad").Return(tc, nil)
	batchRepo.On("AppendError", mock.Anything, batchID, mock.Anything).Return(nil)
	batchRepo.On("IncrementProgress", mock.Anything, batchID, false).
		Return(&domain.BatchProgress{Completed: 1, Failed: 1, TotalDocuments: 5, Status: domain.BatchStatusProcessing}, nil)

	// Catalogue payload that is not valid JSON object shape.
	_, err := svc.HandleCallback(context.Background(), &domain.ExtractionCallback{
		TaskID:        "task-bad",
		Status:        domain.CallbackStatusSuccess,
		ExtractedData: json.RawMessage(`"not an object"`),
	})
	assert.NoError(t, err)
	vendorRepo.AssertNotCalled(t, "UpsertResult", mock.Anything, mock.Anything)
	batchRepo.AssertExpectations(t)
}
