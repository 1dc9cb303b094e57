package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

type openAIService struct {
	client *openai.Client
	model  string
}

// NewOpenAIService talks to any OpenAI compatible chat completion endpoint.
// It is text only: plain-text attachments are inlined into the prompt, other
// types return ErrAttachmentUnsupported.
func NewOpenAIService(apiKey, baseURL, model string) (LLMService, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key is not configured")
	}

	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return &openAIService{client: client, model: model}, nil
}

func (o *openAIService) GenerateText(ctx context.Context, prompt string, temperature float32) (string, error) {
	params := openai.ChatCompletionNewParams{
		Messages: openai.F([]openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		}),
		Model:       openai.F(o.model),
		Temperature: openai.F(float64(temperature)),
	}

	completion, err := o.client.Chat.Completions.New(ctx, params)
	if err != nil {
		log.Printf("❌ OpenAI API error: %v\n", err)
		return "", fmt.Errorf("failed to generate text: %w", err)
	}

	if completion == nil || len(completion.Choices) == 0 {
		return "", errors.New("no choices in completion")
	}

	text := completion.Choices[0].Message.Content
	if strings.TrimSpace(text) == "" {
		return "", errors.New("no text content in response")
	}

	return text, nil
}

func (o *openAIService) GenerateWithAttachment(ctx context.Context, prompt string, attachment Attachment, temperature float32) (string, error) {
	if attachment.MIMEType != MIMEText {
		return "", fmt.Errorf("%w: %s", ErrAttachmentUnsupported, attachment.MIMEType)
	}
	return o.GenerateText(ctx, prompt+"\n\n"+string(attachment.Data), temperature)
}
