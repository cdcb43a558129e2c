package heuristic

// Static rule data shared by the local analysis pipeline. All tables are
// read-only at runtime and safe to share across concurrent calls.

// SkillRequirement is one catalog entry: a canonical term plus alias phrases
// that count as mentions of it.
type SkillRequirement struct {
	CanonicalTerm string
	Aliases       []string
}

// skillCatalog drives catalog-based missing-skill detection.
var skillCatalog = []SkillRequirement{
	{CanonicalTerm: "python", Aliases: []string{"python3", "django", "flask"}},
	{CanonicalTerm: "javascript", Aliases: []string{"js", "typescript", "node.js", "react"}},
	{CanonicalTerm: "sql", Aliases: []string{"mysql", "postgresql", "database querying"}},
	{CanonicalTerm: "java", Aliases: []string{"spring", "jvm"}},
	{CanonicalTerm: "cloud computing", Aliases: []string{"aws", "azure", "gcp", "cloud infrastructure"}},
	{CanonicalTerm: "machine learning", Aliases: []string{"ml", "deep learning", "data science"}},
	{CanonicalTerm: "data analysis", Aliases: []string{"analytics", "data analytics", "business intelligence"}},
	{CanonicalTerm: "project management", Aliases: []string{"pmp", "program management", "project planning"}},
	{CanonicalTerm: "agile", Aliases: []string{"scrum", "kanban", "sprint planning"}},
	{CanonicalTerm: "leadership", Aliases: []string{"team leadership", "people management", "mentoring"}},
	{CanonicalTerm: "communication", Aliases: []string{"presentation", "public speaking", "written communication"}},
	{CanonicalTerm: "stakeholder management", Aliases: []string{"stakeholder", "relationship management"}},
	{CanonicalTerm: "budgeting", Aliases: []string{"budget management", "financial planning", "cost control"}},
	{CanonicalTerm: "marketing", Aliases: []string{"digital marketing", "seo", "content marketing"}},
	{CanonicalTerm: "sales", Aliases: []string{"business development", "account management", "crm"}},
	{CanonicalTerm: "devops", Aliases: []string{"ci/cd", "docker", "kubernetes", "terraform"}},
	{CanonicalTerm: "testing", Aliases: []string{"qa", "quality assurance", "test automation"}},
	{CanonicalTerm: "ux design", Aliases: []string{"user experience", "ui design", "figma"}},
	{CanonicalTerm: "negotiation", Aliases: []string{"contract negotiation", "vendor management"}},
	{CanonicalTerm: "strategic planning", Aliases: []string{"strategy", "roadmap planning", "business strategy"}},
}

// technicalTerms is the built-in term list used by the alignment scorer's
// containment pass.
var technicalTerms = []string{
	"python", "java", "javascript", "typescript", "golang", "ruby", "php",
	"sql", "nosql", "postgresql", "mysql", "mongodb", "redis",
	"aws", "azure", "gcp", "docker", "kubernetes", "terraform", "linux",
	"react", "angular", "vue", "node", "django", "flask", "spring",
	"machine learning", "data science", "data analysis", "statistics",
	"excel", "tableau", "power bi", "salesforce", "jira", "git",
	"agile", "scrum", "kanban", "devops", "ci/cd", "rest", "graphql",
	"microservices", "api", "etl", "testing", "automation", "security",
	"project management", "product management", "stakeholder management",
	"leadership", "communication", "negotiation", "marketing", "sales",
	"budgeting", "forecasting", "recruiting", "training", "compliance",
}

// relatedSkills treats distinct terms as matching when either appears in the
// other's relation list, checked bidirectionally.
var relatedSkills = map[string][]string{
	"python":             {"programming", "coding", "scripting", "development"},
	"java":               {"programming", "coding", "development"},
	"javascript":         {"programming", "coding", "frontend", "web development"},
	"sql":                {"database", "databases", "data analysis", "reporting"},
	"aws":                {"cloud", "cloud computing", "infrastructure", "devops"},
	"docker":             {"containers", "devops", "deployment"},
	"kubernetes":         {"containers", "devops", "orchestration"},
	"machine learning":   {"ai", "artificial intelligence", "data science", "modeling"},
	"data analysis":      {"analytics", "reporting", "statistics", "insights"},
	"agile":              {"scrum", "sprint", "kanban", "iterative"},
	"leadership":         {"management", "mentoring", "team building", "supervision"},
	"communication":      {"presentation", "writing", "collaboration"},
	"project management": {"planning", "coordination", "delivery", "scheduling"},
	"marketing":          {"branding", "campaigns", "advertising", "growth"},
	"sales":              {"revenue", "business development", "closing", "pipeline"},
	"testing":            {"qa", "quality", "validation", "debugging"},
}

// actionVerbs qualifies sentences as experience bullets and detects whether a
// bullet already opens with a strong verb.
var actionVerbs = []string{
	"developed", "created", "managed", "led", "implemented", "designed",
	"increased", "decreased", "improved", "built", "delivered", "achieved",
	"coordinated", "established", "executed", "generated", "launched",
	"maintained", "performed", "reduced", "resolved", "streamlined",
}

// verbCategories selects replacement verbs by bullet/job keyword affinity.
// Order inside each list matters: selection is deterministic.
var verbCategories = []struct {
	Name     string
	Keywords []string
	Verbs    []string
}{
	{
		Name:     "technical",
		Keywords: []string{"software", "code", "system", "technical", "engineering", "data", "api", "database", "cloud", "platform"},
		Verbs:    []string{"Engineered", "Developed", "Architected", "Implemented", "Automated"},
	},
	{
		Name:     "leadership",
		Keywords: []string{"team", "lead", "manage", "mentor", "direct", "supervise", "staff", "people"},
		Verbs:    []string{"Led", "Directed", "Managed", "Mentored", "Supervised"},
	},
	{
		Name:     "analytical",
		Keywords: []string{"analysis", "analyze", "research", "metrics", "report", "insight", "forecast", "model"},
		Verbs:    []string{"Analyzed", "Evaluated", "Assessed", "Investigated", "Forecasted"},
	},
	{
		Name:     "creative",
		Keywords: []string{"design", "creative", "content", "brand", "campaign", "visual", "story"},
		Verbs:    []string{"Designed", "Crafted", "Conceptualized", "Produced", "Authored"},
	},
	{
		Name:     "communication",
		Keywords: []string{"present", "communicate", "client", "customer", "stakeholder", "partner", "negotiate"},
		Verbs:    []string{"Presented", "Negotiated", "Facilitated", "Communicated", "Championed"},
	},
	{
		// Generic achievement bucket, used when nothing else fires.
		Name:     "achievement",
		Keywords: nil,
		Verbs:    []string{"Achieved", "Delivered", "Spearheaded", "Drove", "Accomplished"},
	},
}

// capitalStoplist filters capitalized tokens that are not skills.
var capitalStoplist = map[string]bool{
	"i": true, "we": true, "you": true, "he": true, "she": true, "they": true,
	"it": true, "my": true, "our": true, "your": true, "their": true,
	"the": true, "a": true, "an": true, "and": true, "or": true, "but": true,
	"monday": true, "tuesday": true, "wednesday": true, "thursday": true,
	"friday": true, "saturday": true, "sunday": true,
	"january": true, "february": true, "march": true, "april": true,
	"may": true, "june": true, "july": true, "august": true,
	"september": true, "october": true, "november": true, "december": true,
	"present": true, "summary": true, "experience": true, "education": true,
	"skills": true, "resume": true, "objective": true, "references": true,
}

// keywordStopwords filters job-text tokens considered for keyword injection
// and overlap scoring.
var keywordStopwords = map[string]bool{
	"with": true, "this": true, "that": true, "from": true, "have": true,
	"will": true, "your": true, "their": true, "must": true,
	"able": true, "work": true, "team": true, "role": true, "join": true,
	"about": true, "which": true, "what": true, "when": true, "where": true,
	"into": true, "more": true, "than": true, "such": true, "also": true,
	"been": true, "were": true, "they": true, "them": true, "each": true,
	"other": true, "some": true, "most": true, "very": true, "well": true,
	"strong": true, "years": true, "year": true, "including": true,
	"required": true, "requirements": true, "preferred": true, "ability": true,
	"experience": true, "candidate": true, "position": true, "responsibilities": true,
}
