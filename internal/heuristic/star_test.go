package heuristic

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

const starJobText = "Seeking a software engineer to build data platform systems on cloud infrastructure."

func TestRewrite_AddsActionVerb(t *testing.T) {
	g := NewGenerator(nil)
	bullet := "responsible for the data platform used by software engineering teams"

	rw := g.Rewrite(bullet, starJobText)

	assert.Equal(t, bullet, rw.Original)
	first := strings.Fields(rw.Improved)[0]
	assert.Contains(t, verbCategories[0].Verbs, first, "expected a technical verb, got %q", first)
	assert.Contains(t, rw.Feedback, "Added a strong action verb to lead the statement")
}

func TestRewrite_KeepsExistingVerbAndMetric(t *testing.T) {
	g := NewGenerator(nil)
	bullet := "Increased data platform throughput by 40% across cloud systems and software infrastructure"

	rw := g.Rewrite(bullet, starJobText)

	assert.True(t, strings.HasPrefix(rw.Improved, "Increased"))
	assert.NotContains(t, rw.Improved, "resulting in")
	assert.Equal(t, "Enhanced for ATS performance", rw.Feedback)
}

func TestRewrite_AddsQuantification(t *testing.T) {
	g := NewGenerator(nil)
	bullet := "Developed the data platform systems powering cloud software infrastructure"

	rw := g.Rewrite(bullet, starJobText)

	// Verb already present, no metric: feedback names the metric fix.
	assert.Equal(t, "Added quantifiable impact to demonstrate results", rw.Feedback)
	assert.Contains(t, rw.Improved, "resulting in $100K annual savings")
}

func TestRewrite_QuantClauseByCategory(t *testing.T) {
	g := NewGenerator(nil)

	improvement := g.Rewrite("Improved the nightly report generation process for analysts", starJobText)
	team := g.Rewrite("Managed vendor onboarding for the procurement group every quarter", starJobText)
	project := g.Rewrite("Developed a scheduling tool for the volunteer program", starJobText)

	assert.Contains(t, improvement.Improved, "by 25%, exceeding team targets")
	assert.Contains(t, team.Improved, "across 3 departments, improving efficiency by 15%")
	assert.Contains(t, project.Improved, "resulting in $100K annual savings")
}

func TestRewrite_InjectsJobKeywordOnLowOverlap(t *testing.T) {
	g := NewGenerator(nil)
	job := "Kubernetes administration. Kubernetes upgrades. Kubernetes monitoring."
	bullet := "Organized the annual charity bake sale for the whole neighborhood"

	rw := g.Rewrite(bullet, job)

	assert.Contains(t, rw.Improved, "leveraging kubernetes expertise")
}

func TestRewrite_SkipsKeywordAlreadyInBullet(t *testing.T) {
	g := NewGenerator(nil)
	job := "Kubernetes administration. Kubernetes upgrades. Kubernetes monitoring."
	bullet := "Maintained kubernetes nodes for the community garden volunteer roster"

	rw := g.Rewrite(bullet, job)

	assert.NotContains(t, rw.Improved, "leveraging kubernetes expertise")
}

func TestRewrite_FeedbackListsEveryChange(t *testing.T) {
	g := NewGenerator(nil)
	job := "Kubernetes administration. Kubernetes upgrades. Kubernetes monitoring."
	bullet := "responsible for organizing the village fair parking rotation"

	rw := g.Rewrite(bullet, job)

	assert.Contains(t, rw.Feedback, "action verb")
	assert.Contains(t, rw.Feedback, "quantifiable impact")
	assert.Contains(t, rw.Feedback, "job description keywords")
}

func TestRewrite_Deterministic(t *testing.T) {
	g := NewGenerator(nil)
	bullet := "worked on customer projects across several departments last year"

	first := g.Rewrite(bullet, starJobText)
	second := g.Rewrite(bullet, starJobText)

	assert.Equal(t, first, second)
}

func TestRewrite_CustomPicker(t *testing.T) {
	g := NewGenerator(func(_ string, options []string) string { return options[0] })
	bullet := "worked with stakeholder clients presenting quarterly results together"

	rw := g.Rewrite(bullet, "Client communication and stakeholder presentations.")

	assert.True(t, strings.HasPrefix(rw.Improved, "Presented"), "got %q", rw.Improved)
}

func TestRewriteAll_Truncates(t *testing.T) {
	g := NewGenerator(nil)
	bullets := []string{
		"handled the migration of accounts to the new billing system",
		"organized documentation for the engineering onboarding program",
		"supported release coordination across four product teams",
		"tracked vendor contracts through the renewal cycle",
	}

	out := g.RewriteAll(bullets, starJobText, 3)

	assert.Len(t, out, 3)
	assert.Equal(t, bullets[0], out[0].Original)
}
