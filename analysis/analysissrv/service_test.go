package analysissrv

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/internal/heuristic"
	"github.com/careerlens/careerlens/pkg/kernel"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type memoryRepo struct {
	mu      sync.Mutex
	records []*analysis.Record
	failing bool
}

func (m *memoryRepo) Create(_ context.Context, rec *analysis.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failing {
		return errors.New("db down")
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id kernel.AnalysisID) (*analysis.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, rec := range m.records {
		if rec.ID == id {
			return rec, nil
		}
	}
	return nil, analysis.ErrAnalysisNotFound()
}

func (m *memoryRepo) GetByRequestToken(_ context.Context, token kernel.RequestToken) (*analysis.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].RequestToken == token {
			return m.records[i], nil
		}
	}
	return nil, analysis.ErrAnalysisNotFound()
}

func (m *memoryRepo) List(_ context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.Record], error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	items := make([]analysis.Record, 0, len(m.records))
	for _, rec := range m.records {
		items = append(items, *rec)
	}
	pagination = pagination.Normalize()
	return &kernel.Paginated[analysis.Record]{
		Items: items,
		Page:  kernel.Page{Number: pagination.Page, Size: pagination.PageSize, Total: len(items)},
	}, nil
}

type memoryJobRepo struct {
	mu   sync.Mutex
	jobs map[kernel.JobID]*analysis.AnalysisJob
}

func newMemoryJobRepo() *memoryJobRepo {
	return &memoryJobRepo{jobs: map[kernel.JobID]*analysis.AnalysisJob{}}
}

func (m *memoryJobRepo) Create(_ context.Context, job *analysis.AnalysisJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memoryJobRepo) Update(_ context.Context, job *analysis.AnalysisJob) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *job
	m.jobs[job.ID] = &cp
	return nil
}

func (m *memoryJobRepo) GetByID(_ context.Context, jobID kernel.JobID) (*analysis.AnalysisJob, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return nil, analysis.ErrJobNotFound()
	}
	cp := *job
	return &cp, nil
}

func (m *memoryJobRepo) GetFailedJobsForRetry(_ context.Context, _ int) ([]*analysis.AnalysisJob, error) {
	return nil, nil
}

func (m *memoryJobRepo) MarkAsProcessing(_ context.Context, jobID kernel.JobID) error {
	return m.mutate(jobID, func(j *analysis.AnalysisJob) {
		now := time.Now()
		j.Status = analysis.JobStatusProcessing
		j.StartedAt = &now
	})
}

func (m *memoryJobRepo) MarkAsCompleted(_ context.Context, jobID kernel.JobID, analysisID kernel.AnalysisID) error {
	return m.mutate(jobID, func(j *analysis.AnalysisJob) {
		now := time.Now()
		j.Status = analysis.JobStatusCompleted
		j.AnalysisID = &analysisID
		j.CompletedAt = &now
		j.ProgressPercentage = 100
	})
}

func (m *memoryJobRepo) MarkAsFailed(_ context.Context, jobID kernel.JobID, errorMsg string, details map[string]any) error {
	return m.mutate(jobID, func(j *analysis.AnalysisJob) {
		now := time.Now()
		j.Status = analysis.JobStatusFailed
		j.ErrorMessage = errorMsg
		j.ErrorDetails = details
		j.FailedAt = &now
	})
}

func (m *memoryJobRepo) UpdateProgress(_ context.Context, jobID kernel.JobID, step analysis.ProcessingStep, percentage int) error {
	return m.mutate(jobID, func(j *analysis.AnalysisJob) {
		j.CurrentStep = &step
		j.ProgressPercentage = percentage
	})
}

func (m *memoryJobRepo) mutate(jobID kernel.JobID, fn func(*analysis.AnalysisJob)) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	job, ok := m.jobs[jobID]
	if !ok {
		return errors.New("job not found")
	}
	fn(job)
	return nil
}

type memoryQueue struct {
	mu      sync.Mutex
	items   [][]byte
	delayed int
}

func (m *memoryQueue) Enqueue(_ context.Context, _ kernel.JobID, payload any) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items = append(m.items, []byte("job"))
	return nil
}

func (m *memoryQueue) Dequeue(_ context.Context, _ time.Duration) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.items) == 0 {
		return nil, nil
	}
	item := m.items[0]
	m.items = m.items[1:]
	return item, nil
}

func (m *memoryQueue) EnqueueDelayed(_ context.Context, _ kernel.JobID, _ any, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delayed++
	return nil
}

func (m *memoryQueue) MoveDelayedToReady(_ context.Context) (int, error) { return 0, nil }
func (m *memoryQueue) GetQueueSize(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(len(m.items)), nil
}
func (m *memoryQueue) GetDelayedQueueSize(_ context.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return int64(m.delayed), nil
}
func (m *memoryQueue) Clear(_ context.Context) error { return nil }

// fakeReviewer scripts remote behavior per call.
type fakeReviewer struct {
	mu       sync.Mutex
	requests []analysis.RemoteRequest
	reports  []*analysis.Report
	errs     []error
}

func (f *fakeReviewer) Review(_ context.Context, req analysis.RemoteRequest) (*analysis.Report, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	call := len(f.requests) - 1
	if call < len(f.errs) && f.errs[call] != nil {
		return nil, f.errs[call]
	}
	if call < len(f.reports) {
		return f.reports[call], nil
	}
	return nil, errors.New("unscripted call")
}

// ============================================================================
// Fixtures
// ============================================================================

const testResume = `jane@example.com
• Developed Python services on AWS handling significant traffic
• Managed SQL database migrations across three product teams
• Created Docker build pipelines used by the whole department`

const testJob = "Backend engineer role requiring Python, SQL, AWS and Docker experience."

func newTestService(reviewer analysis.RemoteReviewer) (*Service, *memoryRepo, *memoryJobRepo, *memoryQueue) {
	repo := &memoryRepo{}
	jobRepo := newMemoryJobRepo()
	queue := &memoryQueue{}
	return NewService(repo, jobRepo, queue, reviewer, time.Second), repo, jobRepo, queue
}

func validRequest() analysis.AnalyzeRequest {
	return analysis.AnalyzeRequest{
		ResumeText:     testResume,
		JobDescription: testJob,
	}
}

// ============================================================================
// Analyze
// ============================================================================

func TestAnalyze_RejectsMissingFields(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	_, err := svc.Analyze(context.Background(), analysis.AnalyzeRequest{JobDescription: testJob})
	assert.Error(t, err)

	_, err = svc.Analyze(context.Background(), analysis.AnalyzeRequest{ResumeText: testResume})
	assert.Error(t, err)
}

func TestAnalyze_FallbackWithoutReviewer(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, analysis.SourceFallback, resp.Source)
	assert.GreaterOrEqual(t, resp.Report.AlignmentScore, 0)
	assert.LessOrEqual(t, resp.Report.AlignmentScore, 100)
	assert.GreaterOrEqual(t, len(resp.Report.Strengths), 3)
	assert.LessOrEqual(t, len(resp.Report.Strengths), 5)
	assert.GreaterOrEqual(t, len(resp.Report.Weaknesses), 3)
	assert.GreaterOrEqual(t, len(resp.Report.Recommendations), 3)
	assert.NotEmpty(t, resp.Report.StarAnalysis)
	assert.LessOrEqual(t, len(resp.Report.StarAnalysis), 8)
	assert.NotEmpty(t, resp.RequestToken)

	// Persisted
	assert.Len(t, repo.records, 1)
}

func TestAnalyze_FallbackIsDeterministic(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	req := validRequest()
	req.RequestToken = kernel.NewRequestToken("fixed-token")

	first, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)
	second, err := svc.Analyze(context.Background(), req)
	require.NoError(t, err)

	assert.Equal(t, first.Report, second.Report)
}

func TestAnalyze_RemoteSuccess(t *testing.T) {
	reviewer := &fakeReviewer{
		reports: []*analysis.Report{{
			AlignmentScore:  82,
			Verdict:         false, // inconsistent with score, must be recomputed
			Strengths:       []string{"Strong cloud background"},
			Weaknesses:      []string{"No Kubernetes"},
			Recommendations: []string{"Add metrics"},
			StarAnalysis: []analysis.STARRewrite{
				{Original: "a", Improved: "b", Feedback: "c"},
			},
		}},
	}
	svc, _, _, _ := newTestService(reviewer)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, analysis.SourceRemote, resp.Source)
	assert.Equal(t, 82, resp.Report.AlignmentScore)
	assert.True(t, resp.Report.Verdict, "verdict must follow the score threshold")
	assert.Len(t, resp.Report.Strengths, 3, "short lists are padded")
	assert.Len(t, resp.Report.StarAnalysis, 3, "short STAR lists are backfilled from resume bullets")
	assert.Contains(t, resp.Report.StarAnalysis[1].Improved, "(with measurable results and context)")
}

func TestAnalyze_RemoteScoreClamped(t *testing.T) {
	reviewer := &fakeReviewer{
		reports: []*analysis.Report{{AlignmentScore: 250}},
	}
	svc, _, _, _ := newTestService(reviewer)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, 100, resp.Report.AlignmentScore)
	assert.True(t, resp.Report.Verdict)
}

func TestAnalyze_RemoteStarTruncatedToThree(t *testing.T) {
	many := make([]analysis.STARRewrite, 6)
	for i := range many {
		many[i] = analysis.STARRewrite{Original: "orig", Improved: "impr", Feedback: "fb"}
	}
	reviewer := &fakeReviewer{
		reports: []*analysis.Report{{AlignmentScore: 70, StarAnalysis: many}},
	}
	svc, _, _, _ := newTestService(reviewer)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Len(t, resp.Report.StarAnalysis, 3)
}

func TestAnalyze_ReducedRetryThenFallback(t *testing.T) {
	reviewer := &fakeReviewer{
		errs: []error{errors.New("boom"), errors.New("boom again")},
	}
	svc, _, _, _ := newTestService(reviewer)

	longResume := strings.Repeat("experience line with Python details\n", 200)
	req := analysis.AnalyzeRequest{ResumeText: longResume, JobDescription: testJob}

	resp, err := svc.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Equal(t, analysis.SourceFallback, resp.Source)

	require.Len(t, reviewer.requests, 2)
	assert.Greater(t, len(reviewer.requests[0].ResumeText), len(reviewer.requests[1].ResumeText))
	assert.LessOrEqual(t, len(reviewer.requests[1].ResumeText), ReducedResumeChars+len("... [trimmed for processing]"))
	assert.Contains(t, reviewer.requests[1].ResumeText, "[trimmed for processing]")
}

func TestAnalyze_CoverLetterInFallback(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	req := validRequest()
	req.CoverLetterText = "I am excited to apply because my Python and AWS background fits this backend engineer role."

	resp, err := svc.Analyze(context.Background(), req)

	require.NoError(t, err)
	require.NotNil(t, resp.Report.CoverLetter)
	assert.Equal(t, "enthusiastic", resp.Report.CoverLetter.Tone)
	assert.GreaterOrEqual(t, resp.Report.CoverLetter.Relevance, 0)
	assert.LessOrEqual(t, resp.Report.CoverLetter.Relevance, 100)

	for _, list := range [][]string{
		resp.Report.CoverLetter.Strengths,
		resp.Report.CoverLetter.Weaknesses,
		resp.Report.CoverLetter.Recommendations,
	} {
		assert.GreaterOrEqual(t, len(list), 3)
		assert.LessOrEqual(t, len(list), 5)
	}
}

func TestAnalyze_NoCoverLetterNoSection(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Nil(t, resp.Report.CoverLetter)
}

func TestAnalyze_SurvivesPersistenceFailure(t *testing.T) {
	svc, repo, _, _ := newTestService(nil)
	repo.failing = true

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(resp.Report.Strengths), 3)
}

func TestAnalyze_InputTruncation(t *testing.T) {
	reviewer := &fakeReviewer{
		reports: []*analysis.Report{{AlignmentScore: 50}},
	}
	svc, _, _, _ := newTestService(reviewer)

	req := analysis.AnalyzeRequest{
		ResumeText:     strings.Repeat("a", MaxResumeChars+5000),
		JobDescription: strings.Repeat("b", MaxJobChars+2000),
	}

	_, err := svc.Analyze(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, reviewer.requests, 1)
	sent := reviewer.requests[0]
	assert.True(t, strings.HasSuffix(sent.ResumeText, "... [trimmed for processing]"))
	assert.LessOrEqual(t, len(sent.ResumeText), MaxResumeChars+len("... [trimmed for processing]"))
	assert.True(t, strings.HasSuffix(sent.JobDescription, "... [trimmed for processing]"))
}

func TestAnalyze_EnhancedResumeSplicesImprovedBullets(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	resp, err := svc.Analyze(context.Background(), validRequest())

	require.NoError(t, err)
	require.NotEmpty(t, resp.Report.EnhancedResume)
	for _, st := range resp.Report.StarAnalysis {
		if st.Original == st.Improved {
			continue
		}
		assert.Contains(t, resp.Report.EnhancedResume, st.Improved)
	}
	// Untouched parts of the resume survive.
	assert.Contains(t, resp.Report.EnhancedResume, "jane@example.com")
}

func TestBuildEnhancedResume_SkipsNonMatchingOriginals(t *testing.T) {
	out := buildEnhancedResume("some resume text", []analysis.STARRewrite{
		{Original: "not present anywhere", Improved: "rewritten"},
	})
	assert.Empty(t, out)
}

// ============================================================================
// Async
// ============================================================================

func TestEnqueueAnalysis(t *testing.T) {
	svc, _, jobRepo, queue := newTestService(nil)

	resp, err := svc.EnqueueAnalysis(context.Background(), validRequest())

	require.NoError(t, err)
	assert.Equal(t, analysis.JobStatusPending, resp.Status)
	assert.False(t, resp.JobID.IsEmpty())

	stored, err := jobRepo.GetByID(context.Background(), resp.JobID)
	require.NoError(t, err)
	assert.Equal(t, analysis.JobStatusPending, stored.Status)

	size, err := queue.GetQueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), size)
}

func TestProcessAnalysisJob_Completes(t *testing.T) {
	svc, repo, jobRepo, _ := newTestService(nil)

	enq, err := svc.EnqueueAnalysis(context.Background(), validRequest())
	require.NoError(t, err)

	job, err := jobRepo.GetByID(context.Background(), enq.JobID)
	require.NoError(t, err)

	err = svc.ProcessAnalysisJob(context.Background(), job)
	require.NoError(t, err)

	done, err := jobRepo.GetByID(context.Background(), enq.JobID)
	require.NoError(t, err)
	assert.Equal(t, analysis.JobStatusCompleted, done.Status)
	require.NotNil(t, done.AnalysisID)
	assert.Equal(t, 100, done.ProgressPercentage)
	assert.Len(t, repo.records, 1)
	assert.Equal(t, repo.records[0].ID, *done.AnalysisID)
}

func TestProcessAnalysisJob_RetriesOnFailure(t *testing.T) {
	svc, _, jobRepo, queue := newTestService(nil)

	// Invalid payload forces the analysis step to fail.
	job := &analysis.AnalysisJob{
		ID:             kernel.NewJobID("job-1"),
		Status:         analysis.JobStatusPending,
		MaxAttempts:    3,
		CreatedAt:      time.Now(),
		RequestPayload: analysis.AnalyzeRequest{},
	}
	require.NoError(t, jobRepo.Create(context.Background(), job))

	err := svc.ProcessAnalysisJob(context.Background(), job)
	require.Error(t, err)

	delayed, err := queue.GetDelayedQueueSize(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), delayed)

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.JobStatusPending, stored.Status)
	assert.Equal(t, 1, stored.AttemptCount)
}

func TestProcessAnalysisJob_MaxAttemptsFails(t *testing.T) {
	svc, _, jobRepo, queue := newTestService(nil)

	job := &analysis.AnalysisJob{
		ID:             kernel.NewJobID("job-2"),
		Status:         analysis.JobStatusPending,
		AttemptCount:   2,
		MaxAttempts:    3,
		CreatedAt:      time.Now(),
		RequestPayload: analysis.AnalyzeRequest{},
	}
	require.NoError(t, jobRepo.Create(context.Background(), job))

	err := svc.ProcessAnalysisJob(context.Background(), job)
	require.Error(t, err)

	delayed, _ := queue.GetDelayedQueueSize(context.Background())
	assert.Equal(t, int64(0), delayed)

	stored, err := jobRepo.GetByID(context.Background(), job.ID)
	require.NoError(t, err)
	assert.Equal(t, analysis.JobStatusFailed, stored.Status)
}

// ============================================================================
// Normalization details
// ============================================================================

func TestNormalizeReport_PadsEmptyLists(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	report := &analysis.Report{AlignmentScore: 40}
	svc.normalizeReport(report, testResume, analysis.SourceRemote)

	assert.Len(t, report.Strengths, 3)
	assert.Len(t, report.Weaknesses, 3)
	assert.Len(t, report.Recommendations, 3)
	assert.False(t, report.Verdict)
	assert.Len(t, report.StarAnalysis, 3)
}

func TestNormalizeReport_CapsLongLists(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	long := []string{"a", "b", "c", "d", "e", "f", "g"}
	report := &analysis.Report{
		AlignmentScore: heuristic.VerdictThreshold,
		Strengths:      long,
	}
	svc.normalizeReport(report, testResume, analysis.SourceRemote)

	assert.Len(t, report.Strengths, 5)
	assert.True(t, report.Verdict)
}

func TestNormalizeReport_PadsCoverLetterLists(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	report := &analysis.Report{
		AlignmentScore: 50,
		CoverLetter:    &analysis.CoverLetterAnalysis{Tone: "professional", Relevance: 140},
	}
	svc.normalizeReport(report, testResume, analysis.SourceRemote)

	assert.Equal(t, 100, report.CoverLetter.Relevance)
	assert.Len(t, report.CoverLetter.Strengths, 3)
	assert.Len(t, report.CoverLetter.Weaknesses, 3)
	assert.Len(t, report.CoverLetter.Recommendations, 3)
}

func TestAnalyze_FallbackWeaknessesCapAtFive(t *testing.T) {
	svc, _, _, _ := newTestService(nil)

	req := analysis.AnalyzeRequest{
		ResumeText:     "jane@example.com\n• Organized the quarterly office supply inventory process",
		JobDescription: "Requires python, sql, aws, docker, kubernetes, terraform, and react experience.",
	}

	resp, err := svc.Analyze(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, resp.Report.Weaknesses, 5)
	for _, w := range resp.Report.Weaknesses {
		assert.Contains(t, w, "The resume lacks mention of")
	}
}

func TestTruncate_RuneBoundary(t *testing.T) {
	s := strings.Repeat("é", 20)

	out := truncate(s, 5)

	assert.True(t, utf8.ValidString(out))
	assert.True(t, strings.HasSuffix(out, "... [trimmed for processing]"))
	assert.LessOrEqual(t, len(out), 5+len("... [trimmed for processing]"))
}
