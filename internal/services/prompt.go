package services

import (
	"fmt"
	"strings"

	"alfredoptarigan/ats-backend/internal/models"
)

const resumeAnalysisPrompt = `You are an expert HR recruiter assistant. Analyze the following resume and extract structured information.

Return a JSON object with EXACTLY this structure (no markdown, just raw JSON):
{
  "name": "Full name of the candidate",
  "email": "Email address",
  "phone": "Phone number or null if not found",
  "priorityScore": <number 0-100 based on overall quality>,
  "summary": "2-3 sentence professional summary",
  "keySkills": ["skill1", "skill2", ...up to 10 most relevant skills],
  "experience": "Brief summary of work experience (years, notable companies, roles)",
  "education": "Highest education level and institution",
  "highlights": ["standout achievement 1", "standout achievement 2", ...up to 5],
  "concerns": ["potential concern 1", ...up to 3, or empty array if none]
}

Scoring guidelines for priorityScore:
- 90-100: Exceptional candidate with strong relevant experience and achievements
- 70-89: Strong candidate with good experience
- 50-69: Average candidate, meets basic requirements
- 30-49: Below average, missing key qualifications
- 0-29: Poor fit, major gaps or concerns
`

const jobMatchPrompt = `You are an expert HR recruiter assistant. Analyze the following resume against the job posting below and extract structured information.

JOB POSTING:
%s

Return a JSON object with EXACTLY this structure (no markdown, just raw JSON):
{
  "name": "Full name of the candidate",
  "email": "Email address",
  "phone": "Phone number or null if not found",
  "priorityScore": <number 0-100 based on overall quality>,
  "summary": "2-3 sentence professional summary",
  "keySkills": ["skill1", "skill2", ...up to 10 most relevant skills],
  "experience": "Brief summary of work experience (years, notable companies, roles)",
  "education": "Highest education level and institution",
  "highlights": ["standout achievement 1", "standout achievement 2", ...up to 5],
  "concerns": ["potential concern 1", ...up to 3, or empty array if none],
  "jobRelevancyScore": <number 0-100, how well the candidate fits THIS job>,
  "jobMatchSummary": "2-3 sentences on fit for this specific role",
  "skillMatches": ["required skill the candidate has", ...],
  "skillGaps": ["required skill the candidate lacks", ...]
}

Scoring guidelines for priorityScore and jobRelevancyScore:
- 90-100: Exceptional fit with strong relevant experience and achievements
- 70-89: Strong fit with good experience
- 50-69: Average, meets basic requirements
- 30-49: Below average, missing key qualifications
- 0-29: Poor fit, major gaps or concerns
`

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildResumeAnalysisPrompt returns the instruction prompt. When resumeText is
// empty the resume is expected as an attachment.
func (pb *PromptBuilder) BuildResumeAnalysisPrompt(resumeText string) string {
	return withResume(resumeAnalysisPrompt, resumeText)
}

// BuildJobMatchPrompt is BuildResumeAnalysisPrompt scored against a posting.
func (pb *PromptBuilder) BuildJobMatchPrompt(job *models.JobPosting, resumeText string) string {
	return withResume(fmt.Sprintf(jobMatchPrompt, FormatJobPosting(job)), resumeText)
}

// FormatJobPosting renders the parts of a posting the model needs to judge fit.
func FormatJobPosting(job *models.JobPosting) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Title: %s\n", job.Title)
	writeOptional(&sb, "Department", job.Department)
	writeOptional(&sb, "Location", job.Location)
	fmt.Fprintf(&sb, "Employment type: %s\n", job.EmploymentType)
	writeOptional(&sb, "Description", job.Description)
	writeOptional(&sb, "Requirements", job.Requirements)

	return strings.TrimRight(sb.String(), "\n")
}

func writeOptional(sb *strings.Builder, label string, value *string) {
	if value == nil || strings.TrimSpace(*value) == "" {
		return
	}
	fmt.Fprintf(sb, "%s: %s\n", label, strings.TrimSpace(*value))
}

func withResume(prompt, resumeText string) string {
	if resumeText == "" {
		return prompt + "\nThe resume is attached."
	}
	return prompt + "\nResume content:\n" + resumeText
}
