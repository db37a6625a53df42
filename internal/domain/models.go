package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Vendor represents a vendor record accumulating extraction results across
// its uploaded document types.
type Vendor struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	CompanyName   string       `db:"company_name" json:"company_name"`
	ContactEmail  string       `db:"contact_email" json:"contact_email"`
	WorkspacePath string       `db:"workspace_path" json:"workspace_path"`
	Status        VendorStatus `db:"status" json:"status"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time    `db:"updated_at" json:"updated_at"`
}

// VendorDocument is a single uploaded document awaiting extraction.
type VendorDocument struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	VendorID     uuid.UUID    `db:"vendor_id" json:"vendor_id"`
	DocumentType DocumentType `db:"document_type" json:"document_type"`
	FileName     string       `db:"file_name" json:"file_name"`
	StorageKey   string       `db:"storage_key" json:"storage_key"`
	UploadedAt   time.Time    `db:"uploaded_at" json:"uploaded_at"`
}

// ExtractionResult is the stored output of one extraction task for a vendor
// and document type.
type ExtractionResult struct {
	VendorID     uuid.UUID       `db:"vendor_id" json:"vendor_id"`
	DocumentType DocumentType    `db:"document_type" json:"document_type"`
	Data         json.RawMessage `db:"data" json:"data"`
	Confidence   float64         `db:"confidence" json:"confidence"`
	SourceBatch  uuid.UUID       `db:"source_batch_id" json:"source_batch_id"`
	ExtractedAt  time.Time       `db:"extracted_at" json:"extracted_at"`
}

// CatalogueProduct is a single product row extracted from a vendor catalogue.
// Catalogue payloads are stored here instead of on the vendor record to keep
// the vendor row small.
type CatalogueProduct struct {
	ID            uuid.UUID       `db:"id" json:"id"`
	VendorID      uuid.UUID       `db:"vendor_id" json:"vendor_id"`
	SourceBatchID uuid.UUID       `db:"source_batch_id" json:"source_batch_id"`
	ModelName     string          `db:"model_name" json:"model_name"`
	Attributes    json.RawMessage `db:"attributes" json:"attributes"`
	CreatedAt     time.Time       `db:"created_at" json:"created_at"`
}

// BatchDocument is one document reference inside a batch, binding the vendor,
// the normalized type, and the resolved storage key.
type BatchDocument struct {
	VendorID     uuid.UUID    `json:"vendor_id"`
	DocumentType DocumentType `json:"document_type"`
	StorageKey   string       `json:"storage_key"`
}

// BatchError is a structured per-document error recorded on a batch.
type BatchError struct {
	TaskID       string       `json:"task_id,omitempty"`
	VendorID     uuid.UUID    `json:"vendor_id"`
	DocumentType DocumentType `json:"document_type"`
	Message      string       `json:"message"`
	OccurredAt   time.Time    `json:"occurred_at"`
}

// Batch is a same-type group of documents submitted together for extraction.
type Batch struct {
	ID             uuid.UUID       `db:"id" json:"id"`
	DocumentType   DocumentType    `db:"document_type" json:"document_type"`
	Status         BatchStatus     `db:"status" json:"status"`
	Priority       BatchPriority   `db:"priority" json:"priority"`
	Documents      BatchDocuments  `db:"documents" json:"documents"`
	TotalDocuments int             `db:"total_documents" json:"total_documents"`
	Completed      int             `db:"completed" json:"completed"`
	Successful     int             `db:"successful" json:"successful"`
	Failed         int             `db:"failed" json:"failed"`
	Errors         BatchErrors     `db:"errors" json:"errors"`
	SubmittedCount int             `db:"submitted_count" json:"submitted_count"`
	SubmitFailures int             `db:"submission_failed_count" json:"submission_failed_count"`
	JobID          string          `db:"job_id" json:"job_id"`
	CreatedAt      time.Time       `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time       `db:"updated_at" json:"updated_at"`
	CompletedAt    *time.Time      `db:"completed_at" json:"completed_at"`
}

// VendorIDs returns the distinct vendor IDs referenced by the batch, in
// first-seen order.
func (b *Batch) VendorIDs() []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(b.Documents))
	var ids []uuid.UUID
	for _, d := range b.Documents {
		if _, ok := seen[d.VendorID]; ok {
			continue
		}
		seen[d.VendorID] = struct{}{}
		ids = append(ids, d.VendorID)
	}
	return ids
}

// BatchProgress is the counter snapshot returned by an atomic progress update.
type BatchProgress struct {
	Completed      int         `db:"completed"`
	Successful     int         `db:"successful"`
	Failed         int         `db:"failed"`
	TotalDocuments int         `db:"total_documents"`
	Status         BatchStatus `db:"status"`
}

// TaskContext binds an in-flight extraction task to its batch, vendor, and
// document type so a later callback can be interpreted.
type TaskContext struct {
	BatchID      uuid.UUID    `json:"batch_id"`
	VendorID     uuid.UUID    `json:"vendor_id"`
	DocumentType DocumentType `json:"document_type"`
	StorageKey   string       `json:"storage_key"`
	CreatedAt    time.Time    `json:"created_at"`
}

// ExtractionCallback is the completion notification delivered by the
// extraction service.
type ExtractionCallback struct {
	TaskID        string          `json:"task_id"`
	Status        CallbackStatus  `json:"status"`
	ExtractedData json.RawMessage `json:"extracted_data,omitempty"`
	Confidence    float64         `json:"confidence,omitempty"`
	Error         string          `json:"error,omitempty"`
}

// BatchFilter selects batches for listing.
type BatchFilter struct {
	Status       *BatchStatus
	DocumentType *DocumentType
}

// ProcessingStats aggregates vendor and batch counts by status.
type ProcessingStats struct {
	TotalVendors      int `db:"total_vendors" json:"total_vendors"`
	VendorsReady      int `db:"vendors_ready" json:"vendors_ready"`
	VendorsProcessing int `db:"vendors_processing" json:"vendors_processing"`
	VendorsCompleted  int `db:"vendors_completed" json:"vendors_completed"`

	TotalBatches   int `db:"total_batches" json:"total_batches"`
	BatchesPending int `db:"batches_pending" json:"batches_pending"`
	BatchesActive  int `db:"batches_active" json:"batches_active"`
	BatchesDone    int `db:"batches_done" json:"batches_done"`
	BatchesPartial int `db:"batches_partial" json:"batches_partial"`
	BatchesFailed  int `db:"batches_failed" json:"batches_failed"`

	TotalDocuments int `db:"total_documents" json:"total_documents"`
}

// QueueStats reports dispatch queue depth and worker information.
type QueueStats struct {
	Queues  map[string]QueueCounts `json:"queues"`
	Workers int                    `json:"workers"`
}

// QueueCounts holds job counts for one queue.
type QueueCounts struct {
	Pending   int  `json:"pending"`
	Active    int  `json:"active"`
	Scheduled int  `json:"scheduled"`
	Retry     int  `json:"retry"`
	Archived  int  `json:"archived"`
	Paused    bool `json:"paused"`
}

// SchedulerStats reports the recurring trigger's configuration and health.
type SchedulerStats struct {
	Cadence     string     `json:"cadence"`
	Paused      bool       `json:"paused"`
	NextRun     *time.Time `json:"next_run,omitempty"`
	RunsStarted int64      `json:"runs_started"`
	RunsOK      int64      `json:"runs_succeeded"`
	RunsFailed  int64      `json:"runs_failed"`
}
