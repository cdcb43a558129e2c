package analysissrv

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
)

const maxJobAttempts = 3

// EnqueueAnalysis queues an analysis request for background processing.
func (s *Service) EnqueueAnalysis(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.EnqueueResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.RequestToken.IsEmpty() {
		req.RequestToken = kernel.NewRequestToken(uuid.NewString())
	}

	logx.Infof("Queueing analysis for async processing: Token=%s", req.RequestToken)

	jobID := kernel.NewJobID(uuid.NewString())
	job := &analysis.AnalysisJob{
		ID:                 jobID,
		Status:             analysis.JobStatusPending,
		AttemptCount:       0,
		MaxAttempts:        maxJobAttempts,
		ProgressPercentage: 0,
		CreatedAt:          time.Now(),
		RequestPayload:     req,
	}

	if err := s.jobRepo.Create(ctx, job); err != nil {
		return nil, analysis.ErrJobCreationFailed(err).
			WithDetail("request_token", req.RequestToken)
	}

	if err := s.queue.Enqueue(ctx, jobID, job); err != nil {
		// Mark job as failed if we can't queue it
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, analysis.ErrQueueEnqueueFailed(err).
			WithDetail("job_id", jobID)
	}

	logx.Infof("Job queued successfully: JobID=%s", jobID)

	return &analysis.EnqueueResponse{
		JobID:   jobID,
		Status:  analysis.JobStatusPending,
		Message: "Analysis queued for processing",
	}, nil
}

// ProcessAnalysisJob runs one queued job. Called by the worker pool.
func (s *Service) ProcessAnalysisJob(ctx context.Context, job *analysis.AnalysisJob) error {
	logx.Infof("Processing job: JobID=%s, Attempt=%d/%d", job.ID, job.AttemptCount+1, job.MaxAttempts)

	if err := s.jobRepo.MarkAsProcessing(ctx, job.ID); err != nil {
		return analysis.ErrJobUpdateFailed(err).
			WithDetail("job_id", job.ID).
			WithDetail("status", "processing")
	}

	step := analysis.StepRemoteAnalysis
	if s.reviewer == nil {
		step = analysis.StepLocalAnalysis
	}
	_ = s.jobRepo.UpdateProgress(ctx, job.ID, step, 25)

	resp, err := s.Analyze(ctx, job.RequestPayload)
	if err != nil {
		return s.handleJobError(ctx, job, "analysis_failed", err)
	}
	if resp.Source == analysis.SourceFallback {
		_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepLocalAnalysis, 60)
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepSaving, 90)

	if err := s.jobRepo.MarkAsCompleted(ctx, job.ID, resp.ID); err != nil {
		// The report exists; a stale job row is not worth failing the run.
		logx.Errorf("Failed to mark job as completed: %v", err)
	}

	_ = s.jobRepo.UpdateProgress(ctx, job.ID, analysis.StepSaving, 100)

	logx.Infof("Job completed successfully: JobID=%s, AnalysisID=%s", job.ID, resp.ID)
	return nil
}

// handleJobError applies retry logic with exponential backoff.
func (s *Service) handleJobError(ctx context.Context, job *analysis.AnalysisJob, errorType string, err error) error {
	job.AttemptCount++

	errorDetails := map[string]any{
		"error":        err.Error(),
		"error_type":   errorType,
		"attempt":      job.AttemptCount,
		"max_attempts": job.MaxAttempts,
	}

	if job.AttemptCount < job.MaxAttempts {
		// Exponential backoff: 2^attempt minutes
		retryDelay := time.Duration(1<<uint(job.AttemptCount)) * time.Minute
		nextRetry := time.Now().Add(retryDelay)
		job.NextRetryAt = &nextRetry

		logx.Warnf("Job failed, will retry: JobID=%s, Attempt=%d/%d, NextRetry=%v, Error=%s",
			job.ID, job.AttemptCount, job.MaxAttempts, nextRetry, errorType)

		if queueErr := s.queue.EnqueueDelayed(ctx, job.ID, job, retryDelay); queueErr != nil {
			logx.Errorf("Failed to enqueue for retry: %v", queueErr)

			_ = s.jobRepo.MarkAsFailed(ctx, job.ID,
				fmt.Sprintf("%s (retry enqueue failed)", errorType),
				errorDetails)

			return analysis.ErrQueueEnqueueFailed(queueErr).
				WithDetail("job_id", job.ID).
				WithDetail("error_type", errorType)
		}

		job.ErrorMessage = fmt.Sprintf("%s (will retry)", errorType)
		job.ErrorDetails = errorDetails
		job.Status = analysis.JobStatusPending

		if updateErr := s.jobRepo.Update(ctx, job); updateErr != nil {
			logx.Errorf("Failed to update job for retry: %v", updateErr)
		}

		return analysis.ErrJobUpdateFailed(err).
			WithDetail("job_id", job.ID).
			WithDetail("error_type", errorType).
			WithDetail("will_retry", true).
			WithDetail("next_retry_at", nextRetry)
	}

	logx.Errorf("Job permanently failed: JobID=%s, Error=%s, Attempts=%d/%d",
		job.ID, errorType, job.AttemptCount, job.MaxAttempts)

	_ = s.jobRepo.MarkAsFailed(ctx, job.ID, errorType, errorDetails)

	return analysis.ErrJobMaxRetriesReached().
		WithDetail("job_id", job.ID).
		WithDetail("error_type", errorType).
		WithDetail("final_attempt", job.AttemptCount)
}

// GetJobStatus retrieves the current status of a job.
func (s *Service) GetJobStatus(ctx context.Context, jobID kernel.JobID) (*analysis.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, analysis.ErrJobNotFound().
			WithDetail("job_id", jobID)
	}

	resp := analysis.ToJobStatusResponse(job)

	if job.Status == analysis.JobStatusPending && job.AttemptCount > 0 {
		resp.Message = fmt.Sprintf("Job pending retry (attempt %d/%d)", job.AttemptCount, job.MaxAttempts)
	}

	return &resp, nil
}

// RetryFailedJob resets a failed job and puts it back on the queue.
func (s *Service) RetryFailedJob(ctx context.Context, jobID kernel.JobID) (*analysis.JobStatusResponse, error) {
	job, err := s.jobRepo.GetByID(ctx, jobID)
	if err != nil {
		return nil, analysis.ErrJobNotFound().
			WithDetail("job_id", jobID)
	}

	if job.Status == analysis.JobStatusCompleted {
		return nil, analysis.ErrJobAlreadyCompleted().
			WithDetail("job_id", jobID)
	}
	if job.Status != analysis.JobStatusFailed {
		return nil, analysis.ErrRegistry.New(analysis.CodeInvalidJobStatus).
			WithDetail("job_id", jobID).
			WithDetail("current_status", job.Status).
			WithDetail("required_status", analysis.JobStatusFailed)
	}

	job.Status = analysis.JobStatusPending
	job.AttemptCount = 0
	job.ErrorMessage = ""
	job.ErrorDetails = nil
	job.FailedAt = nil
	job.NextRetryAt = nil
	job.ProgressPercentage = 0
	job.CurrentStep = nil

	if err := s.jobRepo.Update(ctx, job); err != nil {
		return nil, analysis.ErrJobUpdateFailed(err).
			WithDetail("job_id", jobID)
	}

	if err := s.queue.Enqueue(ctx, jobID, job); err != nil {
		_ = s.jobRepo.MarkAsFailed(ctx, jobID, "failed to re-enqueue", map[string]any{
			"error": err.Error(),
		})

		return nil, analysis.ErrQueueEnqueueFailed(err).
			WithDetail("job_id", jobID)
	}

	logx.Infof("Job manually retried: JobID=%s", jobID)

	resp := analysis.ToJobStatusResponse(job)
	resp.Message = "Job requeued for processing"
	return &resp, nil
}
