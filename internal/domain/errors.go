package domain

import "errors"

var (
	ErrVendorNotFound      = errors.New("vendor not found")
	ErrBatchNotFound       = errors.New("batch not found")
	ErrTaskContextNotFound = errors.New("task context not found")
	ErrTaskContextConsumed = errors.New("task context already consumed")
	ErrBatchNotRetryable   = errors.New("batch is not in a retryable state")
	ErrSchedulerNotRunning = errors.New("scheduler is not running")
)
