package services

import (
	"context"
	"errors"
	"log"
	"time"

	"alfredoptarigan/ats-backend/internal/analysis"
	"alfredoptarigan/ats-backend/internal/models"
)

var ErrNoResumeText = errors.New("resume text could not be extracted and the AI provider cannot read this file type")

// ResumeFile is a stored resume plus whatever text could be extracted from it.
type ResumeFile struct {
	Path     string
	MIMEType string
	Text     string
}

type ResumeAnalyzer interface {
	AnalyzeResume(ctx context.Context, file ResumeFile) (analysis.ResumeAnalysis, error)
	AnalyzeResumeForJob(ctx context.Context, file ResumeFile, job *models.JobPosting) (analysis.JobMatchAnalysis, error)
}

type resumeAnalyzer struct {
	llm           LLMService
	storage       StorageService
	promptBuilder *PromptBuilder
	temperature   float32
	timeout       time.Duration
}

func NewResumeAnalyzer(llm LLMService, storage StorageService, temperature float32, timeout time.Duration) ResumeAnalyzer {
	return &resumeAnalyzer{
		llm:           llm,
		storage:       storage,
		promptBuilder: NewPromptBuilder(),
		temperature:   temperature,
		timeout:       timeout,
	}
}

func (a *resumeAnalyzer) AnalyzeResume(ctx context.Context, file ResumeFile) (analysis.ResumeAnalysis, error) {
	raw, err := a.generate(ctx, file, a.promptBuilder.BuildResumeAnalysisPrompt)
	if err != nil {
		return analysis.ResumeAnalysis{}, err
	}

	result, err := analysis.Normalize(raw)
	if err != nil {
		log.Printf("❌ Could not parse analysis response (%d chars): %v\n", len(raw), err)
		return analysis.ResumeAnalysis{}, err
	}

	return result, nil
}

func (a *resumeAnalyzer) AnalyzeResumeForJob(ctx context.Context, file ResumeFile, job *models.JobPosting) (analysis.JobMatchAnalysis, error) {
	prompt := func(resumeText string) string {
		return a.promptBuilder.BuildJobMatchPrompt(job, resumeText)
	}

	raw, err := a.generate(ctx, file, prompt)
	if err != nil {
		return analysis.JobMatchAnalysis{}, err
	}

	result, err := analysis.NormalizeJobMatch(raw)
	if err != nil {
		log.Printf("❌ Could not parse job match response (%d chars): %v\n", len(raw), err)
		return analysis.JobMatchAnalysis{}, err
	}

	return result, nil
}

// generate sends plain text inline and binary documents as attachments,
// falling back to extracted text when the provider rejects the attachment.
func (a *resumeAnalyzer) generate(ctx context.Context, file ResumeFile, prompt func(resumeText string) string) (string, error) {
	if a.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.timeout)
		defer cancel()
	}

	if file.MIMEType == MIMEText {
		text := file.Text
		if text == "" {
			data, err := a.storage.ReadFile(file.Path)
			if err != nil {
				return "", err
			}
			text = string(data)
		}
		return a.llm.GenerateText(ctx, prompt(text), a.temperature)
	}

	data, err := a.storage.ReadFile(file.Path)
	if err != nil {
		return "", err
	}

	raw, err := a.llm.GenerateWithAttachment(ctx, prompt(""), Attachment{Data: data, MIMEType: file.MIMEType}, a.temperature)
	if !errors.Is(err, ErrAttachmentUnsupported) {
		return raw, err
	}

	if file.Text == "" {
		return "", ErrNoResumeText
	}

	log.Printf("📄 Provider cannot read %s, analyzing extracted text instead\n", file.MIMEType)
	return a.llm.GenerateText(ctx, prompt(file.Text), a.temperature)
}
