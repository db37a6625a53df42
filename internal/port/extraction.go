package port

import "context"

// ExtractionRequest is one document submission to the extraction service.
type ExtractionRequest struct {
	DocumentPath string `json:"document_path"`
	TaskID       string `json:"task_id"`
	CallbackURL  string `json:"callback_url"`
}

// ExtractionClient submits documents to the external extraction service.
// Submit only confirms acceptance; results arrive later through the callback
// endpoint.
type ExtractionClient interface {
	Submit(ctx context.Context, documentType string, req *ExtractionRequest) error
}
