package analysis

import (
	"strings"
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// AnalyzeRequest is the input to a sync or async analysis run. CoverLetterText
// and CompanyName are optional.
type AnalyzeRequest struct {
	ResumeText      string `json:"resume_text"`
	JobDescription  string `json:"job_description"`
	CoverLetterText string `json:"cover_letter_text,omitempty"`
	CompanyName     string `json:"company_name,omitempty"`

	RequestToken kernel.RequestToken `json:"request_token,omitempty"`
}

// Validate checks the required fields.
func (r *AnalyzeRequest) Validate() error {
	if strings.TrimSpace(r.ResumeText) == "" {
		return ErrInvalidRequest().WithDetail("field", "resume_text")
	}
	if strings.TrimSpace(r.JobDescription) == "" {
		return ErrInvalidRequest().WithDetail("field", "job_description")
	}
	return nil
}

// AnalyzeResponse is the sync-path response: the report plus its stored
// identity.
type AnalyzeResponse struct {
	ID           kernel.AnalysisID   `json:"id"`
	RequestToken kernel.RequestToken `json:"request_token,omitempty"`
	CompanyName  string              `json:"company_name,omitempty"`
	Source       Source              `json:"source"`
	Report       Report              `json:"report"`
	CreatedAt    time.Time           `json:"created_at"`
}

// EnqueueResponse acknowledges an async analysis submission.
type EnqueueResponse struct {
	JobID   kernel.JobID `json:"job_id"`
	Status  JobStatus    `json:"status"`
	Message string       `json:"message"`
}

// ExtractDocumentResponse carries the extracted text for an uploaded file.
type ExtractDocumentResponse struct {
	Filename   string `json:"filename"`
	Text       string `json:"text"`
	CharCount  int    `json:"char_count"`
	StoredPath string `json:"stored_path,omitempty"`
}

// ToAnalyzeResponse maps a persisted record to its API shape.
func ToAnalyzeResponse(rec *Record) AnalyzeResponse {
	return AnalyzeResponse{
		ID:           rec.ID,
		RequestToken: rec.RequestToken,
		CompanyName:  rec.CompanyName,
		Source:       rec.Source,
		Report:       rec.Report,
		CreatedAt:    rec.CreatedAt,
	}
}

// ToJobStatusResponse maps a job row to its API shape.
func ToJobStatusResponse(job *AnalysisJob) JobStatusResponse {
	resp := JobStatusResponse{
		JobID:        job.ID,
		Status:       job.Status,
		Progress:     job.ProgressPercentage,
		CurrentStep:  job.CurrentStep,
		AnalysisID:   job.AnalysisID,
		AttemptCount: job.AttemptCount,
		NextRetryAt:  job.NextRetryAt,
		CreatedAt:    job.CreatedAt,
		StartedAt:    job.StartedAt,
		CompletedAt:  job.CompletedAt,
		FailedAt:     job.FailedAt,
	}

	switch job.Status {
	case JobStatusPending:
		resp.Message = "Analysis is queued for processing"
	case JobStatusProcessing:
		resp.Message = "Analysis is being processed"
	case JobStatusCompleted:
		resp.Message = "Analysis completed successfully"
	case JobStatusFailed:
		resp.Message = "Analysis failed"
		resp.Error = &JobError{
			Message: job.ErrorMessage,
			Details: job.ErrorDetails,
		}
	}
	return resp
}
