package domain

import (
	"sort"
	"strings"
)

// VendorStatus represents the extraction lifecycle of a vendor record.
type VendorStatus string

const (
	// VendorStatusPendingDocuments is set by the upstream registration flow
	// while documents are still being collected.
	VendorStatusPendingDocuments    VendorStatus = "pending_documents"
	VendorStatusReadyForExtraction  VendorStatus = "ready_for_extraction"
	VendorStatusProcessing          VendorStatus = "processing"
	VendorStatusExtractionCompleted VendorStatus = "extraction_completed"
)

// BatchStatus represents the lifecycle of an extraction batch.
type BatchStatus string

const (
	BatchStatusPending        BatchStatus = "pending"
	BatchStatusSubmitting     BatchStatus = "submitting"
	BatchStatusProcessing     BatchStatus = "processing"
	BatchStatusCompleted      BatchStatus = "completed"
	BatchStatusPartialSuccess BatchStatus = "partial_success"
	BatchStatusFailed         BatchStatus = "failed"
)

// IsTerminal reports whether the status is one of the terminal batch states.
func (s BatchStatus) IsTerminal() bool {
	return s == BatchStatusCompleted || s == BatchStatusPartialSuccess || s == BatchStatusFailed
}

// BatchPriority is the priority tier assigned to a batch. Smaller batches get
// higher tiers so partial backlogs clear faster.
type BatchPriority string

const (
	BatchPriorityHigh   BatchPriority = "high"
	BatchPriorityNormal BatchPriority = "normal"
	BatchPriorityLow    BatchPriority = "low"
)

// PriorityForSize returns the priority tier for a batch of the given size.
func PriorityForSize(size int) BatchPriority {
	switch {
	case size <= 5:
		return BatchPriorityHigh
	case size <= 8:
		return BatchPriorityNormal
	default:
		return BatchPriorityLow
	}
}

// DocumentType is a normalized vendor document type.
type DocumentType string

const (
	DocumentTypeAadhaar   DocumentType = "aadhaar"
	DocumentTypePAN       DocumentType = "pan"
	DocumentTypeGST       DocumentType = "gst"
	DocumentTypeCatalogue DocumentType = "catalogue"
)

// documentTypeAliases collapses known spelling variants to a canonical type.
var documentTypeAliases = map[string]DocumentType{
	"aadhaar":           DocumentTypeAadhaar,
	"aadhar":            DocumentTypeAadhaar,
	"adhaar":            DocumentTypeAadhaar,
	"aadhaar_card":      DocumentTypeAadhaar,
	"pan":               DocumentTypePAN,
	"pan_card":          DocumentTypePAN,
	"gst":               DocumentTypeGST,
	"gstin":             DocumentTypeGST,
	"gst_certificate":   DocumentTypeGST,
	"catalogue":         DocumentTypeCatalogue,
	"catalog":           DocumentTypeCatalogue,
	"product_catalogue": DocumentTypeCatalogue,
	"product_catalog":   DocumentTypeCatalogue,
}

// NormalizeDocumentType maps a raw document type to its canonical form.
// Matching is case-insensitive; unknown types are lowercased and kept as-is
// so they still group consistently.
func NormalizeDocumentType(raw string) DocumentType {
	key := strings.ToLower(strings.TrimSpace(raw))
	if t, ok := documentTypeAliases[key]; ok {
		return t
	}
	return DocumentType(key)
}

// MissingResultTypes returns the normalized document types among docTypes
// that have no entry in resultTypes. Stored documents keep the vendor's own
// spelling while results are keyed by canonical type, so both sides are
// normalized before comparison. The result is distinct and sorted.
func MissingResultTypes(docTypes, resultTypes []string) []DocumentType {
	have := make(map[DocumentType]struct{}, len(resultTypes))
	for _, t := range resultTypes {
		have[NormalizeDocumentType(t)] = struct{}{}
	}
	seen := make(map[DocumentType]struct{}, len(docTypes))
	missing := make([]DocumentType, 0, len(docTypes))
	for _, t := range docTypes {
		nt := NormalizeDocumentType(t)
		if _, ok := have[nt]; ok {
			continue
		}
		if _, ok := seen[nt]; ok {
			continue
		}
		seen[nt] = struct{}{}
		missing = append(missing, nt)
	}
	sort.Slice(missing, func(i, j int) bool { return missing[i] < missing[j] })
	return missing
}

// CallbackStatus is the outcome reported by the extraction service.
type CallbackStatus string

const (
	CallbackStatusSuccess CallbackStatus = "success"
	CallbackStatusError   CallbackStatus = "error"
)
