package services

import (
	"context"
	"errors"
)

// ErrAttachmentUnsupported is returned by providers that cannot read the
// attachment's MIME type. Callers fall back to extracted text.
var ErrAttachmentUnsupported = errors.New("attachment type not supported by provider")

// Attachment is a file sent inline with a prompt.
type Attachment struct {
	Data     []byte
	MIMEType string
}

type LLMService interface {
	GenerateText(ctx context.Context, prompt string, temperature float32) (string, error)
	GenerateWithAttachment(ctx context.Context, prompt string, attachment Attachment, temperature float32) (string, error)
}

type EmbeddingService interface {
	GenerateEmbedding(ctx context.Context, text string) ([]float32, error)
}
