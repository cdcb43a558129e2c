package heuristic

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"sort"
	"strings"
)

// MaxRewrites bounds how many bullets the generator rewrites per call.
const MaxRewrites = 8

// Rewrite is one improved bullet with the reasoning behind the change.
type Rewrite struct {
	Original string
	Improved string
	Feedback string
}

// metricRe detects an existing quantified result in a bullet.
var metricRe = regexp.MustCompile(`(?i)[%$]|\b\d+(\.\d+)?x\b|\b\d+\+?\s*(percent|dollars|users|customers|clients|hours|days|weeks|months)\b`)

// Content cues routing a metric-free bullet to its quantification clause.
var (
	improvementCues = []string{"improv", "increas", "reduc", "decreas", "optimiz", "enhanc", "streamlin"}
	teamCues        = []string{"team", "manag", "supervis", "coordinat", "mentor", "department"}
)

// quantClause picks the canned quantification suffix matching the bullet's
// content category: improvement work, team work, or project delivery.
func quantClause(bullet string) string {
	lower := strings.ToLower(bullet)
	switch {
	case containsAny(lower, improvementCues):
		return " by 25%, exceeding team targets"
	case containsAny(lower, teamCues):
		return " across 3 departments, improving efficiency by 15%"
	default:
		return ", resulting in $100K annual savings"
	}
}

const minKeywordOverlap = 0.2

// Generator rewrites resume bullets into STAR-style statements. The zero
// value is not usable; construct with NewGenerator. Safe for concurrent use.
type Generator struct {
	pick VerbPicker
}

// VerbPicker chooses one verb from options for the given bullet. It must be
// deterministic for identical input.
type VerbPicker func(bullet string, options []string) string

// NewGenerator returns a Generator using the supplied picker, or the default
// hash-based deterministic picker when nil.
func NewGenerator(pick VerbPicker) *Generator {
	if pick == nil {
		pick = hashVerbPicker
	}
	return &Generator{pick: pick}
}

// hashVerbPicker indexes options by a stable hash of the bullet text, so the
// same bullet always gets the same verb while different bullets spread across
// the list.
func hashVerbPicker(bullet string, options []string) string {
	h := fnv.New32a()
	h.Write([]byte(bullet))
	return options[int(h.Sum32())%len(options)]
}

// RewriteAll rewrites every bullet and truncates the result to limit.
func (g *Generator) RewriteAll(bullets []string, jobText string, limit int) []Rewrite {
	if limit <= 0 || limit > MaxRewrites {
		limit = MaxRewrites
	}
	out := make([]Rewrite, 0, len(bullets))
	for _, b := range bullets {
		out = append(out, g.Rewrite(b, jobText))
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// Rewrite improves a single bullet: a category-matched action verb up front,
// a quantification clause when no metric is present, and a job keyword when
// the bullet barely overlaps the job text. Feedback names every change
// applied, in that order.
func (g *Generator) Rewrite(bullet, jobText string) Rewrite {
	improved := bullet
	var changes []string

	if !isActionVerb(firstWord(bullet)) {
		verb := g.pick(bullet, categoryVerbs(bullet, jobText))
		improved = verb + " " + lowerFirst(improved)
		changes = append(changes, "Added a strong action verb to lead the statement")
	}

	if !metricRe.MatchString(improved) {
		improved += quantClause(bullet)
		changes = append(changes, "Added quantifiable impact to demonstrate results")
	}

	if keywordOverlap(bullet, jobText) < minKeywordOverlap {
		if kw := topJobKeyword(jobText, bullet); kw != "" {
			improved += fmt.Sprintf(", leveraging %s expertise", kw)
			changes = append(changes, "Aligned wording with the job description keywords")
		}
	}

	feedback := "Enhanced for ATS performance"
	if len(changes) > 0 {
		feedback = strings.Join(changes, "; ")
	}
	return Rewrite{Original: bullet, Improved: improved, Feedback: feedback}
}

// categoryVerbs picks the verb list whose keywords best match the bullet and
// job text combined, falling back to the generic achievement list.
func categoryVerbs(bullet, jobText string) []string {
	combined := strings.ToLower(bullet + " " + jobText)
	best := verbCategories[len(verbCategories)-1].Verbs
	bestHits := 0
	for _, cat := range verbCategories {
		hits := 0
		for _, kw := range cat.Keywords {
			if strings.Contains(combined, kw) {
				hits++
			}
		}
		if hits > bestHits {
			bestHits = hits
			best = cat.Verbs
		}
	}
	return best
}

// keywordOverlap is the fraction of significant bullet words that also appear
// in the job text.
func keywordOverlap(bullet, jobText string) float64 {
	jobWords := map[string]bool{}
	for _, w := range wordRe.FindAllString(strings.ToLower(jobText), -1) {
		jobWords[w] = true
	}
	bulletWords := wordRe.FindAllString(strings.ToLower(bullet), -1)
	if len(bulletWords) == 0 {
		return 0
	}
	hits := 0
	for _, w := range bulletWords {
		if jobWords[w] {
			hits++
		}
	}
	return float64(hits) / float64(len(bulletWords))
}

// topJobKeyword returns the most frequent significant job-text word not
// already present in the bullet, breaking frequency ties alphabetically.
func topJobKeyword(jobText, bullet string) string {
	bulletLower := strings.ToLower(bullet)
	counts := map[string]int{}
	for _, w := range wordRe.FindAllString(strings.ToLower(jobText), -1) {
		if keywordStopwords[w] || len(w) < 4 {
			continue
		}
		if strings.Contains(bulletLower, w) {
			continue
		}
		counts[w]++
	}
	words := make([]string, 0, len(counts))
	for w := range counts {
		words = append(words, w)
	}
	sort.Slice(words, func(i, j int) bool {
		if counts[words[i]] != counts[words[j]] {
			return counts[words[i]] > counts[words[j]]
		}
		return words[i] < words[j]
	})
	if len(words) == 0 {
		return ""
	}
	return words[0]
}

func firstWord(s string) string {
	fields := strings.Fields(s)
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	runes := []rune(s)
	if runes[0] >= 'A' && runes[0] <= 'Z' {
		runes[0] += 'a' - 'A'
	}
	return string(runes)
}
