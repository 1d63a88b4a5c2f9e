package llm

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const defaultGeminiEmbeddingModel = "text-embedding-004"

type GeminiClient struct {
	client         *genai.Client
	model          string
	embeddingModel string
}

func NewGeminiClient(ctx context.Context, apiKey, model, embeddingModel string) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}
	if embeddingModel == "" {
		embeddingModel = defaultGeminiEmbeddingModel
	}
	return &GeminiClient{
		client:         client,
		model:          model,
		embeddingModel: embeddingModel,
	}, nil
}

func (c *GeminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(0)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", &ProviderError{Provider: "gemini", Op: "generate", Err: err}
	}

	if len(resp.Candidates) > 0 && resp.Candidates[0].Content != nil && len(resp.Candidates[0].Content.Parts) > 0 {
		if txt, ok := resp.Candidates[0].Content.Parts[0].(genai.Text); ok {
			return string(txt), nil
		}
	}
	return "", &ProviderError{Provider: "gemini", Op: "generate", Err: fmt.Errorf("no response candidates or content")}
}

func (c *GeminiClient) Embed(ctx context.Context, text string) ([]float32, error) {
	model := c.client.EmbeddingModel(c.embeddingModel)
	res, err := model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, &ProviderError{Provider: "gemini", Op: "embed", Err: err}
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, &ProviderError{Provider: "gemini", Op: "embed", Err: fmt.Errorf("no embedding values")}
	}
	return res.Embedding.Values, nil
}
