package heuristic

import "strings"

// CoverLetterResult is the local assessment of a cover letter against a job
// description.
type CoverLetterResult struct {
	Tone            string
	Relevance       int
	Strengths       []string
	Weaknesses      []string
	Recommendations []string
}

var enthusiasticWords = []string{"excited", "passionate", "thrilled", "eager", "love"}

var formalWords = []string{"to whom it may concern", "dear sir", "dear madam", "respectfully", "sincerely yours"}

// AnalyzeCoverLetter scores tone and job relevance for a cover letter using
// word lists and keyword overlap. Deterministic for identical input.
func AnalyzeCoverLetter(coverText, jobText string) CoverLetterResult {
	lower := strings.ToLower(coverText)

	tone := "professional"
	if containsAny(lower, enthusiasticWords) {
		tone = "enthusiastic"
	} else if containsAny(lower, formalWords) {
		tone = "formal"
	}

	relevance := int(keywordOverlap(coverText, jobText) * 100)
	if relevance > 100 {
		relevance = 100
	}

	res := CoverLetterResult{Tone: tone, Relevance: relevance}

	if relevance >= 30 {
		res.Strengths = append(res.Strengths, "The letter speaks directly to the language of the job description")
	} else {
		res.Weaknesses = append(res.Weaknesses, "The letter reuses little of the job description's vocabulary")
		res.Recommendations = append(res.Recommendations, "Mirror key phrases from the job posting in the opening paragraph")
	}
	if tone == "enthusiastic" {
		res.Strengths = append(res.Strengths, "Genuine enthusiasm for the role comes through")
	}
	if len(strings.Fields(coverText)) < 100 {
		res.Weaknesses = append(res.Weaknesses, "The letter is short and leaves little room for concrete examples")
		res.Recommendations = append(res.Recommendations, "Add one specific achievement that proves fit for the role")
	}
	if !metricRe.MatchString(coverText) {
		res.Recommendations = append(res.Recommendations, "Quantify at least one accomplishment to strengthen credibility")
	}
	return res
}

func containsAny(textLower string, words []string) bool {
	for _, w := range words {
		if strings.Contains(textLower, w) {
			return true
		}
	}
	return false
}
