package analysis

import (
	"time"

	"github.com/careerlens/careerlens/pkg/kernel"
)

// Source records which pipeline produced a report.
type Source string

const (
	SourceRemote   Source = "remote"
	SourceFallback Source = "fallback"
)

// Report is the full outcome of analyzing a resume against a job description.
// Strengths, Weaknesses, and Recommendations always carry between three and
// five entries; StarAnalysis is bounded by the producing pipeline.
type Report struct {
	AlignmentScore  int      `json:"alignment_score"`
	Verdict         bool     `json:"verdict"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`

	StarAnalysis []STARRewrite `json:"star_analysis"`

	MatchingSkills []string `json:"matching_skills,omitempty"`
	MissingSkills  []string `json:"missing_skills,omitempty"`

	CoverLetter *CoverLetterAnalysis `json:"cover_letter_analysis,omitempty"`

	// EnhancedResume is the submitted resume with each STAR original replaced
	// by its improved version. Empty when no rewrite applied cleanly.
	EnhancedResume string `json:"enhanced_resume,omitempty"`
}

// STARRewrite pairs an original resume bullet with its improved version.
// Original is always the bullet text verbatim.
type STARRewrite struct {
	Original string `json:"original"`
	Improved string `json:"improved"`
	Feedback string `json:"feedback"`
}

// CoverLetterAnalysis is present only when a cover letter was submitted.
// CompanyInsights, KeyRequirements, and SuggestedPhrases are filled by the
// remote pipeline only.
type CoverLetterAnalysis struct {
	Tone            string   `json:"tone"`
	Relevance       int      `json:"relevance"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`

	CompanyInsights  string   `json:"company_insights,omitempty"`
	KeyRequirements  []string `json:"key_requirements,omitempty"`
	SuggestedPhrases []string `json:"suggested_phrases,omitempty"`
}

// Record is a persisted analysis run.
type Record struct {
	ID           kernel.AnalysisID   `db:"id" json:"id"`
	RequestToken kernel.RequestToken `db:"request_token" json:"request_token"`
	CompanyName  string              `db:"company_name" json:"company_name,omitempty"`
	Source       Source              `db:"source" json:"source"`

	Report Report `db:"report" json:"report"`

	ResumeChars int `db:"resume_chars" json:"resume_chars"`
	JobChars    int `db:"job_chars" json:"job_chars"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
