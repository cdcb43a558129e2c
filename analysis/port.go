package analysis

import (
	"context"
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

type Repository interface {
	// Create persists a completed analysis record
	Create(ctx context.Context, rec *Record) error

	// GetByID retrieves a record by ID
	GetByID(ctx context.Context, id kernel.AnalysisID) (*Record, error)

	// GetByRequestToken retrieves the most recent record for a request token
	GetByRequestToken(ctx context.Context, token kernel.RequestToken) (*Record, error)

	// List retrieves records with pagination, newest first
	List(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[Record], error)
}

type JobRepository interface {
	Create(ctx context.Context, job *AnalysisJob) error
	Update(ctx context.Context, job *AnalysisJob) error
	GetByID(ctx context.Context, jobID kernel.JobID) (*AnalysisJob, error)

	// For retry mechanism
	GetFailedJobsForRetry(ctx context.Context, limit int) ([]*AnalysisJob, error)

	// Update status helpers
	MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error
	MarkAsCompleted(ctx context.Context, jobID kernel.JobID, analysisID kernel.AnalysisID) error
	MarkAsFailed(ctx context.Context, jobID kernel.JobID, errorMsg string, errorDetails map[string]any) error
	UpdateProgress(ctx context.Context, jobID kernel.JobID, step ProcessingStep, percentage int) error
}

// JobQueue defines the interface for job queue operations
type JobQueue interface {
	// Enqueue adds a job to the queue
	Enqueue(ctx context.Context, jobID kernel.JobID, payload any) error

	// Dequeue gets a job from the queue (blocking with timeout)
	Dequeue(ctx context.Context, timeout time.Duration) ([]byte, error)

	// EnqueueDelayed schedules a job for later processing (for retries)
	EnqueueDelayed(ctx context.Context, jobID kernel.JobID, payload any, delay time.Duration) error

	// MoveDelayedToReady moves delayed jobs that are ready to the main queue
	MoveDelayedToReady(ctx context.Context) (int, error)

	// GetQueueSize returns the number of jobs in the queue
	GetQueueSize(ctx context.Context) (int64, error)

	// GetDelayedQueueSize returns the number of delayed jobs
	GetDelayedQueueSize(ctx context.Context) (int64, error)

	// Clear removes all jobs from the queue (use with caution)
	Clear(ctx context.Context) error
}

// RemoteRequest is the input handed to the remote reviewer.
type RemoteRequest struct {
	ResumeText      string
	JobDescription  string
	CoverLetterText string
	CompanyName     string
}

// RemoteReviewer produces a Report from an external language model. Review
// must honor ctx cancellation and return an error rather than a partial
// report.
type RemoteReviewer interface {
	Review(ctx context.Context, req RemoteRequest) (*Report, error)
}
