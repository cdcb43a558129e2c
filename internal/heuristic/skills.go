package heuristic

import (
	"strings"
	"unicode"
)

// MaxMissingSkills caps the list handed back to callers that surface it
// directly to users.
const MaxMissingSkills = 7

// weaknessLeadIns are stripped from the front of weakness sentences when
// mining them for skill names. Longer phrases come first so they win over
// their own substrings.
var weaknessLeadIns = []string{
	"the resume does not mention",
	"the resume lacks mention of",
	"the resume is missing",
	"the resume lacks",
	"does not demonstrate",
	"does not mention",
	"lacks mention of",
	"no mention of",
	"lack of",
	"lacks",
	"missing",
	"limited",
	"insufficient",
	"no evidence of",
	"absence of",
}

// weaknessTrailOffs are clipped from the tail of mined phrases.
var weaknessTrailOffs = []string{
	"which is required by the job description",
	"as required by the job description",
	"mentioned in the job description",
	"required for this role",
	"for this position",
	"for this role",
	"skills",
	"skill",
	"experience",
	"knowledge",
	"expertise",
}

// FindMissingSkills returns job-required skills absent from the resume.
// Weakness sentences from an earlier scoring pass are mined first, then the
// static catalog fills the remainder. Output order is stable for identical
// input and the list is capped at MaxMissingSkills.
func FindMissingSkills(resumeText, jobText string, weaknesses []string) []string {
	var out []string
	seen := map[string]bool{}

	add := func(skill string) {
		skill = strings.TrimSpace(skill)
		if len(skill) < 2 || len(skill) > 40 {
			return
		}
		key := strings.ToLower(skill)
		if seen[key] {
			return
		}
		seen[key] = true
		out = append(out, titleCase(skill))
	}

	for _, w := range weaknesses {
		lower := strings.ToLower(w)
		if !strings.Contains(lower, "skill") &&
			!strings.Contains(lower, "experience") &&
			!strings.Contains(lower, "knowledge") {
			continue
		}
		for _, phrase := range mineSkillPhrases(w) {
			add(phrase)
		}
	}

	resumeLower := strings.ToLower(resumeText)
	jobLower := strings.ToLower(jobText)
	for _, entry := range skillCatalog {
		if !mentionsSkill(jobLower, entry) {
			continue
		}
		if mentionsSkill(resumeLower, entry) {
			continue
		}
		add(entry.CanonicalTerm)
	}

	if len(out) > MaxMissingSkills {
		out = out[:MaxMissingSkills]
	}
	return out
}

func mentionsSkill(textLower string, entry SkillRequirement) bool {
	if strings.Contains(textLower, entry.CanonicalTerm) {
		return true
	}
	for _, alias := range entry.Aliases {
		if strings.Contains(textLower, alias) {
			return true
		}
	}
	return false
}

// mineSkillPhrases strips boilerplate from a weakness sentence and splits
// what remains into candidate skill names.
func mineSkillPhrases(weakness string) []string {
	s := strings.ToLower(strings.TrimSpace(weakness))
	s = strings.Trim(s, ".,;:")

	for _, lead := range weaknessLeadIns {
		if idx := strings.Index(s, lead); idx >= 0 {
			s = s[idx+len(lead):]
			break
		}
	}
	for _, trail := range weaknessTrailOffs {
		s = strings.TrimSpace(s)
		s = strings.TrimSuffix(s, trail)
	}
	s = strings.Trim(strings.TrimSpace(s), ".,;:")
	if s == "" {
		return nil
	}

	s = strings.ReplaceAll(s, " and ", ",")
	s = strings.ReplaceAll(s, " or ", ",")
	parts := strings.Split(s, ",")

	var phrases []string
	for _, p := range parts {
		p = strings.TrimSpace(strings.Trim(p, ".,;:"))
		p = strings.TrimPrefix(p, "in ")
		p = strings.TrimPrefix(p, "of ")
		p = strings.TrimSpace(p)
		if p == "" || len(strings.Fields(p)) > 4 {
			continue
		}
		phrases = append(phrases, p)
	}
	return phrases
}

func titleCase(s string) string {
	words := strings.Fields(s)
	for i, w := range words {
		runes := []rune(w)
		runes[0] = unicode.ToUpper(runes[0])
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}
