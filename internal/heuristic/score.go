package heuristic

import (
	"regexp"
	"sort"
	"strings"
)

// VerdictThreshold is the minimum alignment score considered a strong fit.
// The verdict flag and verdict wording both key off this value.
const VerdictThreshold = 60

// MaxSkillsPerText caps skill extraction for a single text.
const MaxSkillsPerText = 25

const maxSkillScore = 70

// ScoreResult is the outcome of the local alignment pass.
type ScoreResult struct {
	AlignmentScore int
	Verdict        bool
	MatchingSkills []string
	MissingSkills  []string
}

var (
	skillPhraseRe = regexp.MustCompile(`(?i)\b(?:using|with|in|through|via)\s+([A-Za-z][A-Za-z0-9+#./-]{2,}(?:\s+[A-Z][A-Za-z0-9+#./-]{2,})?)`)
	capitalTermRe = regexp.MustCompile(`\b[A-Z][A-Za-z0-9+#]{2,}\b`)
	wordRe        = regexp.MustCompile(`[a-zA-Z][a-zA-Z0-9+#]{3,}`)
)

// Score computes resume/job alignment from skill overlap plus formatting and
// contact-information signals. Identical inputs always produce identical
// results.
func Score(resumeText, jobText string) ScoreResult {
	resumeSkills := extractSkills(resumeText)
	jobSkills := extractSkills(jobText)

	var matching, missing []string
	for _, job := range jobSkills {
		if matchesAny(job, resumeSkills) {
			matching = append(matching, job)
		} else {
			missing = append(missing, job)
		}
	}

	score := 0
	if len(jobSkills) > 0 {
		skillScore := 100 * len(matching) / max(1, len(jobSkills))
		if skillScore > maxSkillScore {
			skillScore = maxSkillScore
		}
		score += skillScore
	}
	score += formattingScore(resumeText)
	score += contactScore(resumeText)

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	return ScoreResult{
		AlignmentScore: score,
		Verdict:        score >= VerdictThreshold,
		MatchingSkills: titleCaseAll(matching),
		MissingSkills:  titleCaseAll(missing),
	}
}

// extractSkills mines candidate skills from free text: known technical terms,
// phrases following tool prepositions, and capitalized tokens not in the
// stoplist. Results are lowercased, deduplicated, sorted, and capped.
func extractSkills(text string) []string {
	lower := strings.ToLower(text)
	seen := map[string]bool{}

	for _, term := range technicalTerms {
		if strings.Contains(lower, term) {
			seen[term] = true
		}
	}

	for _, m := range skillPhraseRe.FindAllStringSubmatch(text, -1) {
		phrase := strings.ToLower(strings.TrimSpace(m[1]))
		phrase = strings.Trim(phrase, ".,;:")
		if len(phrase) >= 3 && !keywordStopwords[phrase] {
			seen[phrase] = true
		}
	}

	for _, tok := range capitalTermRe.FindAllString(text, -1) {
		lowerTok := strings.ToLower(tok)
		if capitalStoplist[lowerTok] || keywordStopwords[lowerTok] {
			continue
		}
		seen[lowerTok] = true
	}

	skills := make([]string, 0, len(seen))
	for s := range seen {
		skills = append(skills, s)
	}
	sort.Strings(skills)
	if len(skills) > MaxSkillsPerText {
		skills = skills[:MaxSkillsPerText]
	}
	return skills
}

// matchesAny reports whether a job skill is satisfied by any resume skill,
// via substring containment in either direction or the related-skills table.
func matchesAny(jobSkill string, resumeSkills []string) bool {
	for _, rs := range resumeSkills {
		if strings.Contains(rs, jobSkill) || strings.Contains(jobSkill, rs) {
			return true
		}
		if related(jobSkill, rs) || related(rs, jobSkill) {
			return true
		}
	}
	return false
}

func related(a, b string) bool {
	for _, r := range relatedSkills[a] {
		if strings.Contains(b, r) || strings.Contains(r, b) {
			return true
		}
	}
	return false
}

// formattingScore rewards a recognizable resume structure: 15 points when a
// standard section header is present, 5 otherwise.
func formattingScore(resumeText string) int {
	upper := strings.ToUpper(resumeText)
	for _, header := range sectionHeaders {
		if strings.Contains(upper, header) {
			return 15
		}
	}
	return 5
}

var sectionHeaders = []string{"RESUME", "EXPERIENCE", "EDUCATION"}

// contactScore rewards discoverable contact details: 10 points for an email
// address together with a phone number or phone label, 5 otherwise.
func contactScore(resumeText string) int {
	if !strings.Contains(resumeText, "@") {
		return 5
	}
	lower := strings.ToLower(resumeText)
	if phoneRe.MatchString(resumeText) || strings.Contains(lower, "phone") || strings.Contains(lower, "tel") {
		return 10
	}
	return 5
}

var phoneRe = regexp.MustCompile(`(\+?\d[\d\s().-]{7,}\d)`)

func titleCaseAll(skills []string) []string {
	out := make([]string, len(skills))
	for i, s := range skills {
		out[i] = titleCase(s)
	}
	return out
}
