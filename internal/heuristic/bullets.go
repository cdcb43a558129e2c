package heuristic

import (
	"regexp"
	"strings"
)

// MaxBullets bounds bullet extraction output.
const MaxBullets = 8

const (
	minBulletLen   = 10
	minBulletWords = 3
)

var (
	bulletGlyphRe   = regexp.MustCompile(`^\s*(?:[•\-*✓✔→♦◆◦■▪▫+]|o\s|\d+[.)])\s*`)
	bulletLineRe    = regexp.MustCompile(`^\s*(?:[•\-*✓✔→♦◆◦■▪▫+]|o\s|\d+\.)`)
	sectionHeaderRe = regexp.MustCompile(`(?i)^\s*(work experience|professional experience|employment history|experience)\b`)
	allCapsHeaderRe = regexp.MustCompile(`^[A-Z][A-Z\s&/]{2,40}$`)
	// Job title, company, and a date range separated by dashes or pipes.
	jobTitleLineRe = regexp.MustCompile(`^.{2,60}[\x{2013}\x{2014}|-].{2,60}((19|20)\d{2}|[Pp]resent)`)
	sentenceEndRe  = regexp.MustCompile(`[.!?]+\s+`)
)

// ExtractBullets pulls experience bullet points out of resume text. Explicit
// bullet glyphs come first; when fewer than MaxBullets are found that way, the
// experience section located by header or job-title line supplements them, and
// any sentence opening with an action verb is the last resort. Output order
// follows document order and is capped at MaxBullets.
func ExtractBullets(text string) []string {
	lines := strings.Split(text, "\n")

	bullets := glyphBullets(lines)
	if len(bullets) < MaxBullets {
		bullets = appendUnique(bullets, sectionBullets(lines))
	}
	if len(bullets) == 0 {
		bullets = verbSentences(text)
	}

	if len(bullets) > MaxBullets {
		bullets = bullets[:MaxBullets]
	}
	return bullets
}

func appendUnique(dst, src []string) []string {
	seen := make(map[string]bool, len(dst))
	for _, b := range dst {
		seen[b] = true
	}
	for _, b := range src {
		if !seen[b] {
			seen[b] = true
			dst = append(dst, b)
		}
	}
	return dst
}

func glyphBullets(lines []string) []string {
	var out []string
	for _, line := range lines {
		if !bulletLineRe.MatchString(line) {
			continue
		}
		if b, ok := cleanBullet(line); ok {
			out = append(out, b)
		}
	}
	return out
}

// sectionBullets locates the experience section and keeps its sentences that
// open with an action verb.
func sectionBullets(lines []string) []string {
	start := -1
	for i, line := range lines {
		if sectionHeaderRe.MatchString(line) {
			start = i + 1
			break
		}
	}
	if start == -1 {
		for i, line := range lines {
			if jobTitleLineRe.MatchString(strings.TrimSpace(line)) {
				start = i + 1
				break
			}
		}
	}
	if start == -1 || start >= len(lines) {
		return nil
	}

	var out []string
	for _, line := range lines[start:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		// A fresh all-caps header ends the section.
		if allCapsHeaderRe.MatchString(trimmed) && !sectionHeaderRe.MatchString(trimmed) {
			break
		}
		if jobTitleLineRe.MatchString(trimmed) {
			continue
		}
		for _, sentence := range splitSentences(trimmed) {
			if !isActionVerb(firstWord(sentence)) {
				continue
			}
			if b, ok := cleanBullet(sentence); ok {
				out = append(out, b)
			}
		}
	}
	return out
}

func verbSentences(text string) []string {
	var out []string
	for _, sentence := range splitSentences(text) {
		words := strings.Fields(sentence)
		if len(words) == 0 {
			continue
		}
		if !isActionVerb(words[0]) {
			continue
		}
		if b, ok := cleanBullet(sentence); ok {
			out = append(out, b)
		}
	}
	return out
}

func splitSentences(text string) []string {
	parts := sentenceEndRe.Split(text, -1)
	var out []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// cleanBullet strips leading glyphs and numbering and rejects fragments too
// short to be meaningful. The rest of the sentence stays verbatim so rewrites
// can be spliced back into the source text by substring match.
func cleanBullet(raw string) (string, bool) {
	s := strings.TrimSpace(bulletGlyphRe.ReplaceAllString(raw, ""))
	if len(s) <= minBulletLen {
		return "", false
	}
	if len(strings.Fields(s)) <= minBulletWords {
		return "", false
	}
	return s, true
}

func isActionVerb(word string) bool {
	w := strings.ToLower(strings.Trim(word, ".,;:"))
	for _, v := range actionVerbs {
		if w == v {
			return true
		}
	}
	return false
}
