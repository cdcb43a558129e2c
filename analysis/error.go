package analysis

import (
	"net/http"

	"github.com/careerlens/careerlens/pkg/errx"
)

var ErrRegistry = errx.NewRegistry("ANALYSIS")

// Error codes - Analysis Operations
var (
	CodeInvalidRequest     = ErrRegistry.Register("INVALID_REQUEST", errx.TypeValidation, http.StatusBadRequest, "Invalid analysis request")
	CodeAnalysisNotFound   = ErrRegistry.Register("NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Analysis not found")
	CodeAnalysisSaveFailed = ErrRegistry.Register("SAVE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to save analysis")
	CodeRemoteTimeout      = ErrRegistry.Register("REMOTE_TIMEOUT", errx.TypeTimeout, http.StatusGatewayTimeout, "Remote analysis timed out")
	CodeRemoteFailed       = ErrRegistry.Register("REMOTE_FAILED", errx.TypeUnavailable, http.StatusBadGateway, "Remote analysis failed")
	CodeRemoteMalformed    = ErrRegistry.Register("REMOTE_MALFORMED", errx.TypeInternal, http.StatusBadGateway, "Remote analysis returned an unusable response")
)

// Error codes - Document Operations
var (
	CodeUnsupportedDocument = ErrRegistry.Register("UNSUPPORTED_DOCUMENT", errx.TypeValidation, http.StatusBadRequest, "Unsupported document type")
	CodeDocumentUnreadable  = ErrRegistry.Register("DOCUMENT_UNREADABLE", errx.TypeValidation, http.StatusUnprocessableEntity, "Could not extract text from document")
	CodeDocumentTooLarge    = ErrRegistry.Register("DOCUMENT_TOO_LARGE", errx.TypeValidation, http.StatusRequestEntityTooLarge, "Document exceeds the size limit")
	CodeFileReadFailed      = ErrRegistry.Register("FILE_READ_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to read file")
)

// Error codes - Job/Queue Operations
var (
	CodeJobNotFound          = ErrRegistry.Register("JOB_NOT_FOUND", errx.TypeNotFound, http.StatusNotFound, "Analysis job not found")
	CodeJobCreationFailed    = ErrRegistry.Register("JOB_CREATION_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to create job record")
	CodeJobUpdateFailed      = ErrRegistry.Register("JOB_UPDATE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to update job status")
	CodeJobAlreadyCompleted  = ErrRegistry.Register("JOB_ALREADY_COMPLETED", errx.TypeBusiness, http.StatusUnprocessableEntity, "Job has already been completed")
	CodeJobMaxRetriesReached = ErrRegistry.Register("JOB_MAX_RETRIES", errx.TypeInternal, http.StatusInternalServerError, "Job exceeded maximum retry attempts")
	CodeQueueEnqueueFailed   = ErrRegistry.Register("QUEUE_ENQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to enqueue job")
	CodeQueueDequeueFailed   = ErrRegistry.Register("QUEUE_DEQUEUE_FAILED", errx.TypeInternal, http.StatusInternalServerError, "Failed to dequeue job")
	CodeInvalidJobStatus     = ErrRegistry.Register("INVALID_JOB_STATUS", errx.TypeValidation, http.StatusBadRequest, "Invalid job status")
)

// Helper functions - Analysis Operations
func ErrInvalidRequest() *errx.Error {
	return ErrRegistry.New(CodeInvalidRequest)
}

func ErrAnalysisNotFound() *errx.Error {
	return ErrRegistry.New(CodeAnalysisNotFound)
}

func ErrAnalysisSaveFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeAnalysisSaveFailed, cause)
}

func ErrRemoteTimeout(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRemoteTimeout, cause)
}

func ErrRemoteFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRemoteFailed, cause)
}

func ErrRemoteMalformed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeRemoteMalformed, cause)
}

// Helper functions - Document Operations
func ErrUnsupportedDocument() *errx.Error {
	return ErrRegistry.New(CodeUnsupportedDocument)
}

func ErrDocumentUnreadable() *errx.Error {
	return ErrRegistry.New(CodeDocumentUnreadable)
}

func ErrDocumentTooLarge() *errx.Error {
	return ErrRegistry.New(CodeDocumentTooLarge)
}

func ErrFileReadFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeFileReadFailed, cause)
}

// Helper functions - Job/Queue Operations
func ErrJobNotFound() *errx.Error {
	return ErrRegistry.New(CodeJobNotFound)
}

func ErrJobCreationFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobCreationFailed, cause)
}

func ErrJobUpdateFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeJobUpdateFailed, cause)
}

func ErrJobAlreadyCompleted() *errx.Error {
	return ErrRegistry.New(CodeJobAlreadyCompleted)
}

func ErrJobMaxRetriesReached() *errx.Error {
	return ErrRegistry.New(CodeJobMaxRetriesReached)
}

func ErrQueueEnqueueFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeQueueEnqueueFailed, cause)
}

func ErrQueueDequeueFailed(cause error) *errx.Error {
	return ErrRegistry.NewWithCause(CodeQueueDequeueFailed, cause)
}
