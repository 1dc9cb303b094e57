package services

import (
	"context"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/openai/openai-go"
	"google.golang.org/genai"
)

type RetryConfig struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
}

type retryingLLM struct {
	next LLMService
	cfg  RetryConfig
}

// NewRetryingLLM wraps an LLMService with bounded exponential backoff.
// Cancellation, unsupported attachments and provider client errors are never
// retried.
func NewRetryingLLM(next LLMService, cfg RetryConfig) LLMService {
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 1
	}
	return &retryingLLM{next: next, cfg: cfg}
}

func (r *retryingLLM) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	return r.do(ctx, func() (string, error) {
		return r.next.GenerateText(ctx, prompt, temperature)
	})
}

func (r *retryingLLM) GenerateWithAttachment(ctx context.Context, prompt string, attachment Attachment, temperature float32) (string, error) {
	return r.do(ctx, func() (string, error) {
		return r.next.GenerateWithAttachment(ctx, prompt, attachment, temperature)
	})
}

func (r *retryingLLM) do(ctx context.Context, call func() (string, error)) (string, error) {
	var text string
	attempt := 0

	operation := func() error {
		attempt++
		result, err := call()
		if err != nil {
			if isPermanent(ctx, err) {
				return backoff.Permanent(err)
			}
			return err
		}
		text = result
		return nil
	}

	notify := func(err error, wait time.Duration) {
		log.Printf("⚠️ Attempt %d failed: %v. Retrying in %s...\n", attempt, err, wait)
	}

	if err := backoff.RetryNotify(operation, r.policy(ctx), notify); err != nil {
		return "", err
	}
	return text, nil
}

func (r *retryingLLM) policy(ctx context.Context) backoff.BackOff {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.cfg.InitialDelay
	if r.cfg.MaxDelay > 0 {
		b.MaxInterval = r.cfg.MaxDelay
	}
	// bounded by attempts, not wall time
	b.MaxElapsedTime = 0
	b.Reset()

	return backoff.WithContext(backoff.WithMaxRetries(b, uint64(r.cfg.MaxAttempts-1)), ctx)
}

func isPermanent(ctx context.Context, err error) bool {
	return ctx.Err() != nil ||
		errors.Is(err, context.Canceled) ||
		errors.Is(err, context.DeadlineExceeded) ||
		errors.Is(err, ErrAttachmentUnsupported) ||
		isClientError(providerStatus(err))
}

// providerStatus extracts the HTTP status from a Gemini or OpenAI error, or 0.
func providerStatus(err error) int {
	var geminiErr genai.APIError
	if errors.As(err, &geminiErr) {
		return geminiErr.Code
	}
	var geminiPtr *genai.APIError
	if errors.As(err, &geminiPtr) && geminiPtr != nil {
		return geminiPtr.Code
	}
	var openaiErr *openai.Error
	if errors.As(err, &openaiErr) && openaiErr != nil {
		return openaiErr.StatusCode
	}
	return 0
}

// 408 and 429 are the 4xx codes worth another attempt.
func isClientError(status int) bool {
	if status == http.StatusRequestTimeout || status == http.StatusTooManyRequests {
		return false
	}
	return status >= 400 && status < 500
}
