package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"vendex/internal/config"
	"vendex/internal/domain"
	"vendex/internal/port"
	"vendex/internal/service"
	"vendex/mocks"
)

func submissionConfig() *config.Config {
	return &config.Config{
		S3: config.S3Config{Bucket: "vendex-documents", PresignExpiry: 3600},
		Queue: config.QueueConfig{
			RateLimit:  100,
			RateWindow: time.Minute,
		},
		Extraction: config.ExtractionConfig{CallbackBaseURL: "http://pipeline.local"},
		TaskCtx:    config.TaskCtxConfig{TTL: 2 * time.Hour},
	}
}

func newSubmissionService() (service.SubmissionService, *mocks.MockBatchRepo, *mocks.MockTaskContextStore, *mocks.MockObjectStorage, *mocks.MockExtractionClient) {
	batchRepo := new(mocks.MockBatchRepo)
	store := new(mocks.MockTaskContextStore)
	storage := new(mocks.MockObjectStorage)
	client := new(mocks.MockExtractionClient)
	svc := service.NewSubmissionService(batchRepo, store, storage, client, submissionConfig())
	return svc, batchRepo, store, storage, client
}

func TestSubmissionService_SubmitsEveryDocument(t *testing.T) {
	svc, batchRepo, store, storage, client := newSubmissionService()

	batchID := uuid.New()
	v1, v2 := uuid.New(), uuid.New()
	batch := &domain.Batch{
		ID:           batchID,
		DocumentType: domain.DocumentTypePAN,
		Status:       domain.BatchStatusPending,
		Documents: domain.BatchDocuments{
			{VendorID: v1, DocumentType: domain.DocumentTypePAN, StorageKey: "k1"},
			{VendorID: v2, DocumentType: domain.DocumentTypePAN, StorageKey: "k2"},
		},
		TotalDocuments: 2,
	}

	batchRepo.On("GetByID", mock.Anything, batchID).Return(batch, nil)
	batchRepo.On("MarkSubmitting", mock.Anything, batchID).Return(nil)
	store.On("Put", mock.Anything, mock.AnythingOfType("string"), mock.MatchedBy(func(tc *domain.TaskContext) bool {
		return tc.BatchID == batchID
	}), 2*time.Hour).Return(nil)
	storage.On("GetPresignedURL", mock.Anything, "vendex-documents", "k1", int64(3600)).
		Return("https://s3/k1", nil)
	storage.On("GetPresignedURL", mock.Anything, "vendex-documents", "k2", int64(3600)).
		Return("https://s3/k2", nil)
	client.On("Submit", mock.Anything, "pan", mock.MatchedBy(func(req *port.ExtractionRequest) bool {
		return req.TaskID != "" && req.CallbackURL == "http://pipeline.local/api/v1/callbacks/extraction"
	})).Return(nil)
	batchRepo.On("MarkProcessing", mock.Anything, batchID, 2, 0).Return(nil)

	err := svc.SubmitBatch(context.Background(), batchID)
	assert.NoError(t, err)
	batchRepo.AssertExpectations(t)
	client.AssertNumberOfCalls(t, "Submit", 2)
}

func TestSubmissionService_TerminalBatchIsSkipped(t *testing.T) {
	svc, batchRepo, store, _, client := newSubmissionService()

	batchID := uuid.New()
	batchRepo.On("GetByID", mock.Anything, batchID).
		Return(&domain.Batch{ID: batchID, Status: domain.BatchStatusCompleted}, nil)

	err := svc.SubmitBatch(context.Background(), batchID)
	assert.NoError(t, err)
	batchRepo.AssertNotCalled(t, "MarkSubmitting", mock.Anything, mock.Anything)
	store.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}

func TestSubmissionService_AbandonBatch(t *testing.T) {
	svc, batchRepo, _, _, _ := newSubmissionService()

	batchID := uuid.New()
	batchRepo.On("MarkFailed", mock.Anything, batchID).Return(true, nil)

	assert.NoError(t, svc.AbandonBatch(context.Background(), batchID))
	batchRepo.AssertExpectations(t)
}

func TestSubmissionService_AbandonBatch_NoOpOnceProcessing(t *testing.T) {
	svc, batchRepo, _, _, _ := newSubmissionService()

	// The guarded update misses for a batch past the submission step; a
	// late retry exhaustion must not overwrite per-document accounting.
	batchID := uuid.New()
	batchRepo.On("MarkFailed", mock.Anything, batchID).Return(false, nil)

	assert.NoError(t, svc.AbandonBatch(context.Background(), batchID))
	batchRepo.AssertExpectations(t)
}

func TestSubmissionService_PerDocumentFailureIsIsolated(t *testing.T) {
	svc, batchRepo, store, storage, client := newSubmissionService()

	batchID := uuid.New()
	batch := &domain.Batch{
		ID:           batchID,
		DocumentType: domain.DocumentTypeGST,
		Status:       domain.BatchStatusPending,
		Documents: domain.BatchDocuments{
			{VendorID: uuid.New(), DocumentType: domain.DocumentTypeGST, StorageKey: "ok"},
			{VendorID: uuid.New(), DocumentType: domain.DocumentTypeGST, StorageKey: "broken"},
		},
		TotalDocuments: 2,
	}

	batchRepo.On("GetByID", mock.Anything, batchID).Return(batch, nil)
	batchRepo.On("MarkSubmitting", mock.Anything, batchID).Return(nil)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	storage.On("GetPresignedURL", mock.Anything, "vendex-documents", "ok", int64(3600)).
		Return("https://s3/ok", nil)
	storage.On("GetPresignedURL", mock.Anything, "vendex-documents", "broken", int64(3600)).
		Return("", errors.New("no such key"))
	client.On("Submit", mock.Anything, "gst", mock.Anything).Return(nil)
	batchRepo.On("AppendError", mock.Anything, batchID, mock.MatchedBy(func(e domain.BatchError) bool {
		return e.DocumentType == domain.DocumentTypeGST
	})).Return(nil)
	batchRepo.On("MarkProcessing", mock.Anything, batchID, 1, 1).Return(nil)

	err := svc.SubmitBatch(context.Background(), batchID)
	assert.NoError(t, err)
	client.AssertNumberOfCalls(t, "Submit", 1)
	batchRepo.AssertExpectations(t)
}

func TestSubmissionService_ContextStoredBeforeSubmit(t *testing.T) {
	svc, batchRepo, store, storage, client := newSubmissionService()

	batchID := uuid.New()
	batch := &domain.Batch{
		ID:           batchID,
		DocumentType: domain.DocumentTypeAadhaar,
		Status:       domain.BatchStatusPending,
		Documents: domain.BatchDocuments{
			{VendorID: uuid.New(), DocumentType: domain.DocumentTypeAadhaar, StorageKey: "a1"},
		},
		TotalDocuments: 1,
	}

	var putTaskID string
	batchRepo.On("GetByID", mock.Anything, batchID).Return(batch, nil)
	batchRepo.On("MarkSubmitting", mock.Anything, batchID).Return(nil)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { putTaskID = args.String(1) }).
		Return(nil)
	storage.On("GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return("https://s3/a1", nil)
	client.On("Submit", mock.Anything, "aadhaar", mock.MatchedBy(func(req *port.ExtractionRequest) bool {
		// The submitted task ID must be the one already stored.
		return req.TaskID == putTaskID
	})).Return(nil)
	batchRepo.On("MarkProcessing", mock.Anything, batchID, 1, 0).Return(nil)

	err := svc.SubmitBatch(context.Background(), batchID)
	assert.NoError(t, err)
	client.AssertExpectations(t)
}

func TestSubmissionService_StoreFailureSkipsSubmission(t *testing.T) {
	svc, batchRepo, store, storage, client := newSubmissionService()

	batchID := uuid.New()
	batch := &domain.Batch{
		ID:     batchID,
		Status: domain.BatchStatusPending,
		Documents: domain.BatchDocuments{
			{VendorID: uuid.New(), DocumentType: domain.DocumentTypePAN, StorageKey: "p1"},
		},
		TotalDocuments: 1,
	}

	batchRepo.On("GetByID", mock.Anything, batchID).Return(batch, nil)
	batchRepo.On("MarkSubmitting", mock.Anything, batchID).Return(nil)
	store.On("Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("redis down"))
	batchRepo.On("AppendError", mock.Anything, batchID, mock.Anything).Return(nil)
	batchRepo.On("MarkProcessing", mock.Anything, batchID, 0, 1).Return(nil)

	err := svc.SubmitBatch(context.Background(), batchID)
	assert.NoError(t, err)
	storage.AssertNotCalled(t, "GetPresignedURL", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	client.AssertNotCalled(t, "Submit", mock.Anything, mock.Anything, mock.Anything)
}
