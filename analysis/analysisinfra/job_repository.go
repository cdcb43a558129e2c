package analysisinfra

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
)

type PostgresJobRepository struct {
	db *sqlx.DB
}

func NewPostgresJobRepository(db *sqlx.DB) analysis.JobRepository {
	return &PostgresJobRepository{db: db}
}

// dbJob is the database model with proper JSON handling
type dbJob struct {
	ID         string  `db:"id"`
	AnalysisID *string `db:"analysis_id"`

	Status string `db:"status"`

	AttemptCount int `db:"attempt_count"`
	MaxAttempts  int `db:"max_attempts"`

	ErrorMessage string         `db:"error_message"`
	ErrorDetails sql.NullString `db:"error_details"`

	CurrentStep        *string `db:"current_step"`
	ProgressPercentage int     `db:"progress_percentage"`

	CreatedAt   time.Time  `db:"created_at"`
	StartedAt   *time.Time `db:"started_at"`
	CompletedAt *time.Time `db:"completed_at"`
	FailedAt    *time.Time `db:"failed_at"`
	NextRetryAt *time.Time `db:"next_retry_at"`

	RequestPayload string `db:"request_payload"`
}

func (r *PostgresJobRepository) Create(ctx context.Context, job *analysis.AnalysisJob) error {
	query := `
		INSERT INTO analysis_jobs (
			id, analysis_id, status,
			attempt_count, max_attempts, error_message, error_details,
			current_step, progress_percentage,
			created_at, started_at, completed_at, failed_at, next_retry_at,
			request_payload
		) VALUES (
			$1, $2, $3,
			$4, $5, $6, $7,
			$8, $9,
			$10, $11, $12, $13, $14,
			$15
		)
	`

	row, err := toDBJob(job)
	if err != nil {
		return fmt.Errorf("convert to db job: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query,
		row.ID, row.AnalysisID, row.Status,
		row.AttemptCount, row.MaxAttempts, row.ErrorMessage, row.ErrorDetails,
		row.CurrentStep, row.ProgressPercentage,
		row.CreatedAt, row.StartedAt, row.CompletedAt, row.FailedAt, row.NextRetryAt,
		row.RequestPayload,
	)

	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return fmt.Errorf("job already exists: %w", err)
		}
		return fmt.Errorf("create job: %w", err)
	}

	logx.Infof("Created job: %s", job.ID)
	return nil
}

func (r *PostgresJobRepository) Update(ctx context.Context, job *analysis.AnalysisJob) error {
	query := `
		UPDATE analysis_jobs SET
			analysis_id = $2,
			status = $3,
			attempt_count = $4,
			error_message = $5,
			error_details = $6,
			current_step = $7,
			progress_percentage = $8,
			started_at = $9,
			completed_at = $10,
			failed_at = $11,
			next_retry_at = $12,
			request_payload = $13
		WHERE id = $1
	`

	row, err := toDBJob(job)
	if err != nil {
		return fmt.Errorf("convert to db job: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query,
		row.ID,
		row.AnalysisID,
		row.Status,
		row.AttemptCount,
		row.ErrorMessage,
		row.ErrorDetails,
		row.CurrentStep,
		row.ProgressPercentage,
		row.StartedAt,
		row.CompletedAt,
		row.FailedAt,
		row.NextRetryAt,
		row.RequestPayload,
	)

	if err != nil {
		return fmt.Errorf("update job: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found: %s", job.ID)
	}

	return nil
}

func (r *PostgresJobRepository) GetByID(ctx context.Context, jobID kernel.JobID) (*analysis.AnalysisJob, error) {
	query := `
		SELECT
			id, analysis_id, status,
			attempt_count, max_attempts, error_message, error_details,
			current_step, progress_percentage,
			created_at, started_at, completed_at, failed_at, next_retry_at,
			request_payload
		FROM analysis_jobs
		WHERE id = $1
	`

	var row dbJob
	if err := r.db.GetContext(ctx, &row, query, jobID.String()); err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("job not found: %s", jobID)
		}
		return nil, fmt.Errorf("get job: %w", err)
	}

	return toDomainJob(&row)
}

func (r *PostgresJobRepository) GetFailedJobsForRetry(ctx context.Context, limit int) ([]*analysis.AnalysisJob, error) {
	query := `
		SELECT
			id, analysis_id, status,
			attempt_count, max_attempts, error_message, error_details,
			current_step, progress_percentage,
			created_at, started_at, completed_at, failed_at, next_retry_at,
			request_payload
		FROM analysis_jobs
		WHERE status = $1
			AND next_retry_at IS NOT NULL
			AND next_retry_at <= $2
			AND attempt_count < max_attempts
		ORDER BY next_retry_at ASC
		LIMIT $3
	`

	var rows []dbJob
	if err := r.db.SelectContext(ctx, &rows, query, string(analysis.JobStatusFailed), time.Now(), limit); err != nil {
		return nil, fmt.Errorf("get failed jobs: %w", err)
	}

	jobs := make([]*analysis.AnalysisJob, 0, len(rows))
	for _, row := range rows {
		job, err := toDomainJob(&row)
		if err != nil {
			logx.Errorf("Failed to convert job %s: %v", row.ID, err)
			continue
		}
		jobs = append(jobs, job)
	}

	return jobs, nil
}

func (r *PostgresJobRepository) MarkAsProcessing(ctx context.Context, jobID kernel.JobID) error {
	query := `
		UPDATE analysis_jobs
		SET status = $2, started_at = $3
		WHERE id = $1 AND status = $4
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(analysis.JobStatusProcessing),
		now,
		string(analysis.JobStatusPending),
	)
	if err != nil {
		return fmt.Errorf("mark as processing: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found or not in pending status: %s", jobID)
	}

	logx.Infof("Marked job as processing: %s", jobID)
	return nil
}

func (r *PostgresJobRepository) MarkAsCompleted(ctx context.Context, jobID kernel.JobID, analysisID kernel.AnalysisID) error {
	query := `
		UPDATE analysis_jobs
		SET
			status = $2,
			analysis_id = $3,
			completed_at = $4,
			progress_percentage = 100,
			error_message = '',
			error_details = NULL,
			next_retry_at = NULL
		WHERE id = $1
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(analysis.JobStatusCompleted),
		analysisID.String(),
		now,
	)
	if err != nil {
		return fmt.Errorf("mark as completed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	logx.Infof("Marked job as completed: %s, AnalysisID: %s", jobID, analysisID)
	return nil
}

func (r *PostgresJobRepository) MarkAsFailed(
	ctx context.Context,
	jobID kernel.JobID,
	errorMsg string,
	errorDetails map[string]any,
) error {
	var errorDetailsJSON sql.NullString
	if len(errorDetails) > 0 {
		jsonBytes, err := json.Marshal(errorDetails)
		if err != nil {
			logx.Warnf("Failed to marshal error details: %v", err)
		} else {
			errorDetailsJSON = sql.NullString{String: string(jsonBytes), Valid: true}
		}
	}

	query := `
		UPDATE analysis_jobs
		SET
			status = $2,
			failed_at = $3,
			error_message = $4,
			error_details = $5
		WHERE id = $1
	`

	now := time.Now()
	result, err := r.db.ExecContext(ctx, query,
		jobID.String(),
		string(analysis.JobStatusFailed),
		now,
		errorMsg,
		errorDetailsJSON,
	)
	if err != nil {
		return fmt.Errorf("mark as failed: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	logx.Warnf("Marked job as failed: %s, Error: %s", jobID, errorMsg)
	return nil
}

func (r *PostgresJobRepository) UpdateProgress(
	ctx context.Context,
	jobID kernel.JobID,
	step analysis.ProcessingStep,
	percentage int,
) error {
	query := `
		UPDATE analysis_jobs
		SET
			current_step = $2,
			progress_percentage = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, jobID.String(), string(step), percentage)
	if err != nil {
		return fmt.Errorf("update progress: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("job not found: %s", jobID)
	}

	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func toDBJob(job *analysis.AnalysisJob) (*dbJob, error) {
	requestPayloadJSON, err := json.Marshal(job.RequestPayload)
	if err != nil {
		return nil, fmt.Errorf("marshal request payload: %w", err)
	}

	var errorDetails sql.NullString
	if len(job.ErrorDetails) > 0 {
		errorDetailsJSON, err := json.Marshal(job.ErrorDetails)
		if err != nil {
			logx.Warnf("Failed to marshal error details: %v", err)
		} else {
			errorDetails = sql.NullString{String: string(errorDetailsJSON), Valid: true}
		}
	}

	var currentStep *string
	if job.CurrentStep != nil {
		stepStr := string(*job.CurrentStep)
		currentStep = &stepStr
	}

	var analysisID *string
	if job.AnalysisID != nil {
		idStr := job.AnalysisID.String()
		analysisID = &idStr
	}

	return &dbJob{
		ID:                 job.ID.String(),
		AnalysisID:         analysisID,
		Status:             string(job.Status),
		AttemptCount:       job.AttemptCount,
		MaxAttempts:        job.MaxAttempts,
		ErrorMessage:       job.ErrorMessage,
		ErrorDetails:       errorDetails,
		CurrentStep:        currentStep,
		ProgressPercentage: job.ProgressPercentage,
		CreatedAt:          job.CreatedAt,
		StartedAt:          job.StartedAt,
		CompletedAt:        job.CompletedAt,
		FailedAt:           job.FailedAt,
		NextRetryAt:        job.NextRetryAt,
		RequestPayload:     string(requestPayloadJSON),
	}, nil
}

func toDomainJob(row *dbJob) (*analysis.AnalysisJob, error) {
	var requestPayload analysis.AnalyzeRequest
	if err := json.Unmarshal([]byte(row.RequestPayload), &requestPayload); err != nil {
		return nil, fmt.Errorf("unmarshal request payload: %w", err)
	}

	var errorDetails map[string]any
	if row.ErrorDetails.Valid && row.ErrorDetails.String != "" {
		if err := json.Unmarshal([]byte(row.ErrorDetails.String), &errorDetails); err != nil {
			logx.Warnf("Failed to unmarshal error details for job %s: %v", row.ID, err)
			errorDetails = nil
		}
	}

	var currentStep *analysis.ProcessingStep
	if row.CurrentStep != nil {
		step := analysis.ProcessingStep(*row.CurrentStep)
		currentStep = &step
	}

	var analysisID *kernel.AnalysisID
	if row.AnalysisID != nil {
		id := kernel.AnalysisID(*row.AnalysisID)
		analysisID = &id
	}

	return &analysis.AnalysisJob{
		ID:                 kernel.JobID(row.ID),
		AnalysisID:         analysisID,
		Status:             analysis.JobStatus(row.Status),
		AttemptCount:       row.AttemptCount,
		MaxAttempts:        row.MaxAttempts,
		ErrorMessage:       row.ErrorMessage,
		ErrorDetails:       errorDetails,
		CurrentStep:        currentStep,
		ProgressPercentage: row.ProgressPercentage,
		CreatedAt:          row.CreatedAt,
		StartedAt:          row.StartedAt,
		CompletedAt:        row.CompletedAt,
		FailedAt:           row.FailedAt,
		NextRetryAt:        row.NextRetryAt,
		RequestPayload:     requestPayload,
	}, nil
}
