// Package analysis turns the free-form text returned by the generative model
// into bounded, schema-conformant resume analysis records.
package analysis

const (
	DefaultName            = "Unknown"
	DefaultEmail           = "unknown@example.com"
	DefaultSummary         = "No summary available"
	DefaultExperience      = "Not specified"
	DefaultEducation       = "Not specified"
	DefaultJobMatchSummary = "No job match summary available"

	// DefaultScore sorts an unscored candidate as average.
	DefaultScore = 50
	MinScore     = 0
	MaxScore     = 100

	MaxKeySkills  = 10
	MaxHighlights = 5
	MaxConcerns   = 3
)

// ResumeAnalysis is the normalized output of a general resume analysis.
type ResumeAnalysis struct {
	Name          string   `json:"name"`
	Email         string   `json:"email"`
	Phone         *string  `json:"phone"`
	PriorityScore int      `json:"priorityScore"`
	Summary       string   `json:"summary"`
	KeySkills     []string `json:"keySkills"`
	Experience    string   `json:"experience"`
	Education     string   `json:"education"`
	Highlights    []string `json:"highlights"`
	Concerns      []string `json:"concerns"`
}

// JobMatchAnalysis is the job-specific variant produced when a candidate
// applies to a posting. SkillMatches and SkillGaps are not truncated.
type JobMatchAnalysis struct {
	ResumeAnalysis
	JobRelevancyScore int      `json:"jobRelevancyScore"`
	JobMatchSummary   string   `json:"jobMatchSummary"`
	SkillMatches      []string `json:"skillMatches"`
	SkillGaps         []string `json:"skillGaps"`
}
