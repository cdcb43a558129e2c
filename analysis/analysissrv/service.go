package analysissrv

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/careerlens/careerlens/analysis"
	"github.com/careerlens/careerlens/internal/heuristic"
	"github.com/careerlens/careerlens/pkg/kernel"
	"github.com/careerlens/careerlens/pkg/logx"
)

const (
	MaxResumeChars = 15000
	MaxJobChars    = 5000
	MaxCoverChars  = 10000

	// Smaller limits for the second remote attempt.
	ReducedResumeChars = 3000
	ReducedJobChars    = 1500

	DefaultRemoteTimeout = 25 * time.Second

	truncationMarker = "... [trimmed for processing]"

	minListEntries = 3
	maxListEntries = 5

	remoteStarEntries   = 3
	fallbackStarEntries = 8
)

type Service struct {
	repo     analysis.Repository
	jobRepo  analysis.JobRepository
	queue    analysis.JobQueue
	reviewer analysis.RemoteReviewer

	generator     *heuristic.Generator
	remoteTimeout time.Duration
}

// NewService creates the analysis service. reviewer may be nil, in which case
// every request takes the local pipeline. A zero remoteTimeout selects the
// default.
func NewService(
	repo analysis.Repository,
	jobRepo analysis.JobRepository,
	queue analysis.JobQueue,
	reviewer analysis.RemoteReviewer,
	remoteTimeout time.Duration,
) *Service {
	if remoteTimeout <= 0 {
		remoteTimeout = DefaultRemoteTimeout
	}
	return &Service{
		repo:          repo,
		jobRepo:       jobRepo,
		queue:         queue,
		reviewer:      reviewer,
		generator:     heuristic.NewGenerator(nil),
		remoteTimeout: remoteTimeout,
	}
}

// ============================================================================
// Analyze
// ============================================================================

// Analyze runs the full pipeline synchronously: remote review when available,
// one reduced-size retry on failure, then the local heuristic pipeline. It
// always produces a report for valid input.
func (s *Service) Analyze(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.AnalyzeResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.RequestToken.IsEmpty() {
		req.RequestToken = kernel.NewRequestToken(uuid.NewString())
	}

	originalResumeLen := len(req.ResumeText)
	originalJobLen := len(req.JobDescription)

	req.ResumeText = truncate(req.ResumeText, MaxResumeChars)
	req.JobDescription = truncate(req.JobDescription, MaxJobChars)
	req.CoverLetterText = truncate(req.CoverLetterText, MaxCoverChars)

	report, source := s.runPipelines(ctx, req)
	s.normalizeReport(report, req.ResumeText, source)
	report.EnhancedResume = buildEnhancedResume(req.ResumeText, report.StarAnalysis)

	rec := &analysis.Record{
		ID:           kernel.NewAnalysisID(uuid.NewString()),
		RequestToken: req.RequestToken,
		CompanyName:  req.CompanyName,
		Source:       source,
		Report:       *report,
		ResumeChars:  originalResumeLen,
		JobChars:     originalJobLen,
		CreatedAt:    time.Now().UTC(),
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		// The report is still usable; persistence failure must not cost the
		// caller their result.
		logx.Errorf("Failed to persist analysis record: Token=%s, Error=%v", req.RequestToken, err)
	}

	resp := analysis.ToAnalyzeResponse(rec)
	return &resp, nil
}

// runPipelines tries the remote reviewer at full and then reduced input
// sizes, falling back to the local pipeline when both fail.
func (s *Service) runPipelines(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, analysis.Source) {
	if s.reviewer != nil {
		report, err := s.tryRemote(ctx, req)
		if err == nil {
			return report, analysis.SourceRemote
		}
		logx.Warnf("Remote analysis failed, retrying with reduced input: Token=%s, Error=%v", req.RequestToken, err)

		reduced := req
		reduced.ResumeText = truncate(req.ResumeText, ReducedResumeChars)
		reduced.JobDescription = truncate(req.JobDescription, ReducedJobChars)
		reduced.CoverLetterText = ""

		report, err = s.tryRemote(ctx, reduced)
		if err == nil {
			return report, analysis.SourceRemote
		}
		logx.Warnf("Reduced remote analysis failed, using local pipeline: Token=%s, Error=%v", req.RequestToken, err)
	}

	return s.buildFallback(req), analysis.SourceFallback
}

func (s *Service) tryRemote(ctx context.Context, req analysis.AnalyzeRequest) (*analysis.Report, error) {
	ctx, cancel := context.WithTimeout(ctx, s.remoteTimeout)
	defer cancel()

	return s.reviewer.Review(ctx, analysis.RemoteRequest{
		ResumeText:      req.ResumeText,
		JobDescription:  req.JobDescription,
		CoverLetterText: req.CoverLetterText,
		CompanyName:     req.CompanyName,
	})
}

// ============================================================================
// Local fallback pipeline
// ============================================================================

// buildFallback produces a deterministic report without any remote call:
// skill scoring, missing-skill detection, bullet extraction, and STAR
// rewrites, in that order.
func (s *Service) buildFallback(req analysis.AnalyzeRequest) *analysis.Report {
	score := heuristic.Score(req.ResumeText, req.JobDescription)

	var weaknesses []string
	for i, skill := range score.MissingSkills {
		if i == maxListEntries {
			break
		}
		weaknesses = append(weaknesses, fmt.Sprintf("The resume lacks mention of %s experience", skill))
	}

	missing := heuristic.FindMissingSkills(req.ResumeText, req.JobDescription, weaknesses)

	bullets := heuristic.ExtractBullets(req.ResumeText)
	rewrites := s.generator.RewriteAll(bullets, req.JobDescription, fallbackStarEntries)

	var strengths []string
	for i, skill := range score.MatchingSkills {
		if i == maxListEntries {
			break
		}
		strengths = append(strengths, fmt.Sprintf("Hands-on experience with %s", skill))
	}
	if len(bullets) > 0 {
		strengths = append(strengths, "Accomplishments are presented as scannable bullet points")
	}

	var recommendations []string
	if len(missing) > 0 {
		recommendations = append(recommendations,
			fmt.Sprintf("Add concrete examples covering %s", strings.Join(firstN(missing, 3), ", ")))
	}

	report := &analysis.Report{
		AlignmentScore:  score.AlignmentScore,
		Verdict:         score.Verdict,
		Strengths:       strengths,
		Weaknesses:      weaknesses,
		Recommendations: recommendations,
		StarAnalysis:    toStarRewrites(rewrites),
		MatchingSkills:  score.MatchingSkills,
		MissingSkills:   missing,
	}

	if strings.TrimSpace(req.CoverLetterText) != "" {
		cover := heuristic.AnalyzeCoverLetter(req.CoverLetterText, req.JobDescription)
		report.CoverLetter = &analysis.CoverLetterAnalysis{
			Tone:            cover.Tone,
			Relevance:       cover.Relevance,
			Strengths:       cover.Strengths,
			Weaknesses:      cover.Weaknesses,
			Recommendations: cover.Recommendations,
		}
	}

	return report
}

func toStarRewrites(rewrites []heuristic.Rewrite) []analysis.STARRewrite {
	out := make([]analysis.STARRewrite, len(rewrites))
	for i, rw := range rewrites {
		out[i] = analysis.STARRewrite{
			Original: rw.Original,
			Improved: rw.Improved,
			Feedback: rw.Feedback,
		}
	}
	return out
}

// ============================================================================
// Normalization
// ============================================================================

// Filler entries keep advice lists at a presentable minimum length when a
// pipeline returns fewer than three items.
var (
	strengthFillers = []string{
		"Professional presentation and clear structure",
		"Relevant industry experience",
		"Demonstrated career progression",
	}
	weaknessFillers = []string{
		"Limited use of quantifiable achievements",
		"Could better mirror the job description's key terms",
		"Few keywords matching automated screening filters",
	}
	recommendationFillers = []string{
		"Quantify achievements with specific metrics",
		"Tailor the resume summary to this specific role",
		"Incorporate more keywords from the job description",
	}
)

var (
	coverStrengthFillers = []string{
		"Clear and professional written communication",
		"Appropriate length and structure for a cover letter",
		"Reads as genuinely interested in the role",
	}
	coverWeaknessFillers = []string{
		"Few specific, verifiable accomplishments",
		"Generic phrasing that could fit many roles",
		"Limited connection to the company's stated goals",
	}
	coverRecommendationFillers = []string{
		"Name the company and role explicitly in the opening",
		"Back one claim with a concrete number",
		"Close with a direct call to action",
	}
)

const backfillSuffix = " (with measurable results and context)"

// normalizeReport enforces the report contract regardless of which pipeline
// produced it: score in range, verdict consistent with the score, advice
// lists between three and five entries, STAR entries within the per-source
// bound and backfilled to at least three when bullets are available.
func (s *Service) normalizeReport(r *analysis.Report, resumeText string, source analysis.Source) {
	if r.AlignmentScore > 100 {
		r.AlignmentScore = 100
	}
	if r.AlignmentScore < 0 {
		r.AlignmentScore = 0
	}
	r.Verdict = r.AlignmentScore >= heuristic.VerdictThreshold

	r.Strengths = padList(r.Strengths, strengthFillers)
	r.Weaknesses = padList(r.Weaknesses, weaknessFillers)
	r.Recommendations = padList(r.Recommendations, recommendationFillers)

	starLimit := fallbackStarEntries
	if source == analysis.SourceRemote {
		starLimit = remoteStarEntries
	}
	if len(r.StarAnalysis) > starLimit {
		r.StarAnalysis = r.StarAnalysis[:starLimit]
	}
	if len(r.StarAnalysis) < remoteStarEntries {
		r.StarAnalysis = backfillStars(r.StarAnalysis, resumeText)
	}
	if r.StarAnalysis == nil {
		r.StarAnalysis = []analysis.STARRewrite{}
	}

	if r.CoverLetter != nil {
		if r.CoverLetter.Relevance > 100 {
			r.CoverLetter.Relevance = 100
		}
		if r.CoverLetter.Relevance < 0 {
			r.CoverLetter.Relevance = 0
		}
		r.CoverLetter.Strengths = padList(r.CoverLetter.Strengths, coverStrengthFillers)
		r.CoverLetter.Weaknesses = padList(r.CoverLetter.Weaknesses, coverWeaknessFillers)
		r.CoverLetter.Recommendations = padList(r.CoverLetter.Recommendations, coverRecommendationFillers)
	}
}

// padList guarantees between minListEntries and maxListEntries items,
// topping up from fillers not already present.
func padList(items, fillers []string) []string {
	if len(items) > maxListEntries {
		items = items[:maxListEntries]
	}
	for _, filler := range fillers {
		if len(items) >= minListEntries {
			break
		}
		if !containsString(items, filler) {
			items = append(items, filler)
		}
	}
	if items == nil {
		items = []string{}
	}
	return items
}

// backfillStars tops up STAR entries to three using resume bullets that are
// not already covered.
func backfillStars(stars []analysis.STARRewrite, resumeText string) []analysis.STARRewrite {
	used := map[string]bool{}
	for _, st := range stars {
		used[st.Original] = true
	}
	for _, bullet := range heuristic.ExtractBullets(resumeText) {
		if len(stars) >= remoteStarEntries {
			break
		}
		if used[bullet] {
			continue
		}
		used[bullet] = true
		stars = append(stars, analysis.STARRewrite{
			Original: bullet,
			Improved: bullet + backfillSuffix,
			Feedback: "Consider quantifying this achievement",
		})
	}
	return stars
}

// buildEnhancedResume splices improved STAR bullets back into the resume text.
// Originals are verbatim resume substrings in the local pipeline; remote
// originals that do not match are skipped. Returns "" when nothing applied.
func buildEnhancedResume(resumeText string, stars []analysis.STARRewrite) string {
	enhanced := resumeText
	applied := false
	for _, st := range stars {
		if st.Original == "" || st.Original == st.Improved {
			continue
		}
		if !strings.Contains(enhanced, st.Original) {
			continue
		}
		enhanced = strings.Replace(enhanced, st.Original, st.Improved, 1)
		applied = true
	}
	if !applied {
		return ""
	}
	return enhanced
}

// ============================================================================
// Queries
// ============================================================================

func (s *Service) GetAnalysis(ctx context.Context, id kernel.AnalysisID) (*analysis.AnalyzeResponse, error) {
	rec, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := analysis.ToAnalyzeResponse(rec)
	return &resp, nil
}

func (s *Service) GetAnalysisByToken(ctx context.Context, token kernel.RequestToken) (*analysis.AnalyzeResponse, error) {
	rec, err := s.repo.GetByRequestToken(ctx, token)
	if err != nil {
		return nil, err
	}
	resp := analysis.ToAnalyzeResponse(rec)
	return &resp, nil
}

func (s *Service) ListAnalyses(ctx context.Context, pagination kernel.PaginationOptions) (*kernel.Paginated[analysis.Record], error) {
	return s.repo.List(ctx, pagination)
}

// ============================================================================
// Helpers
// ============================================================================

// truncate clips s to at most limit bytes, backing up to a rune boundary and
// appending a marker so downstream consumers can tell the input was shortened.
func truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	cut := limit
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + truncationMarker
}

func firstN(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

func containsString(items []string, s string) bool {
	for _, item := range items {
		if item == s {
			return true
		}
	}
	return false
}
