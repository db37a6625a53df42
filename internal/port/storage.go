package port

import "context"

// ObjectStorage abstracts the object store holding vendor documents. The
// pipeline only reads: submissions carry a presigned URL the extraction
// service fetches directly.
type ObjectStorage interface {
	GetPresignedURL(ctx context.Context, bucket, key string, expirySeconds int64) (string, error)
}
