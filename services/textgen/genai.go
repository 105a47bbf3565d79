// Package textgensvc provides chat.TextGenerator implementations.
package textgensvc

import (
	"context"

	"github.com/pkg/errors"
	"google.golang.org/genai"

	"github.com/neuropeak/backend/core/chat"
)

const defaultModel = "gemini-1.5-flash"

type geminiService struct {
	client *genai.Client
	model  string
}

var _ chat.TextGenerator = (*geminiService)(nil)

func NewGeminiService(ctx context.Context, apiKey string) (*geminiService, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, errors.Wrap(err, "creating genai client")
	}
	return &geminiService{client: client, model: defaultModel}, nil
}

func (svc *geminiService) Generate(ctx context.Context, prompt string) (string, error) {
	result, err := svc.client.Models.GenerateContent(ctx, svc.model, genai.Text(prompt), nil)
	if err != nil {
		return "", errors.Wrap(err, "generating content")
	}
	if text := result.Text(); text != "" {
		return text, nil
	}
	return "", errors.New("empty response")
}
