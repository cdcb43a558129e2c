package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractBullets_Glyphs(t *testing.T) {
	text := strings.Join([]string{
		"John Doe",
		"• Developed a payment processing service handling thousands of daily transactions",
		"- Reduced deployment time by migrating the build pipeline to containers",
		"* Led a team of five engineers through a major platform migration",
		"1. Implemented automated regression testing across three product lines",
		"✓ Improved customer onboarding flow based on usability research",
	}, "\n")

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 5)
	assert.Equal(t, "Developed a payment processing service handling thousands of daily transactions", bullets[0])
	assert.Equal(t, "Implemented automated regression testing across three product lines", bullets[3])
	for _, b := range bullets {
		assert.False(t, strings.ContainsAny(b, "•✓*"), "glyph left in bullet %q", b)
	}
}

func TestExtractBullets_SectionHeader(t *testing.T) {
	text := strings.Join([]string{
		"Jane Smith",
		"Summary of qualifications and background in engineering.",
		"",
		"PROFESSIONAL EXPERIENCE",
		"Built the core billing engine used by every enterprise customer.",
		"Managed the migration of legacy data into the new warehouse.",
		"",
		"EDUCATION",
		"BS Computer Science",
	}, "\n")

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 2)
	assert.Contains(t, bullets[0], "billing engine")
	// EDUCATION section content must not leak in.
	for _, b := range bullets {
		assert.NotContains(t, b, "Computer Science")
	}
}

func TestExtractBullets_ActionVerbFallback(t *testing.T) {
	text := "I am a motivated professional. Developed internal tooling adopted by four teams. " +
		"My hobbies include chess. Launched a customer feedback program that shaped the roadmap."

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 2)
	assert.True(t, strings.HasPrefix(bullets[0], "Developed"))
	assert.True(t, strings.HasPrefix(bullets[1], "Launched"))
}

func TestExtractBullets_SupplementsFromSection(t *testing.T) {
	text := strings.Join([]string{
		"• Developed a payment reconciliation service used by the finance group",
		"",
		"WORK EXPERIENCE",
		"Launched the partner integration program across two business units.",
		"Responsibilities included attending weekly status meetings.",
	}, "\n")

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 2)
	assert.True(t, strings.HasPrefix(bullets[0], "Developed"))
	assert.True(t, strings.HasPrefix(bullets[1], "Launched"))
}

func TestExtractBullets_SectionKeepsOnlyVerbSentences(t *testing.T) {
	text := strings.Join([]string{
		"EXPERIENCE",
		"Responsible for the care and feeding of the legacy billing stack.",
		"Reduced the legacy billing stack's incident rate through careful refactoring.",
	}, "\n")

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 1)
	assert.True(t, strings.HasPrefix(bullets[0], "Reduced"))
}

func TestExtractBullets_KeepsTerminalPeriod(t *testing.T) {
	bullets := ExtractBullets("Managed a team of 5 engineers.")

	assert.Equal(t, []string{"Managed a team of 5 engineers."}, bullets)
}

func TestExtractBullets_FiltersShortFragments(t *testing.T) {
	text := "• Led team\n• Did it\n• Coordinated the annual vendor security review across departments"

	bullets := ExtractBullets(text)

	assert.Len(t, bullets, 1)
	assert.Contains(t, bullets[0], "vendor security review")
}

func TestExtractBullets_CapsAtMax(t *testing.T) {
	var sb strings.Builder
	for i := 0; i < 15; i++ {
		sb.WriteString("• Delivered incremental improvements to the reporting platform every quarter\n")
	}

	bullets := ExtractBullets(sb.String())

	assert.Len(t, bullets, MaxBullets)
}

func TestExtractBullets_Deterministic(t *testing.T) {
	text := "• Managed the rollout of single sign-on across all internal applications\n" +
		"• Created dashboards used weekly by the executive leadership team"

	first := ExtractBullets(text)
	second := ExtractBullets(text)

	assert.Equal(t, first, second)
}
