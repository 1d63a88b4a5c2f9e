package llm

import (
	"context"
	"fmt"

	"github.com/sashabaranov/go-openai"
)

type OpenAIClient struct {
	client         *openai.Client
	model          string
	embeddingModel string
}

// NewOpenAIClient also serves any OpenAI-compatible endpoint (Ollama, vLLM)
// when baseURL points at it.
func NewOpenAIClient(apiKey, model, embeddingModel, baseURL string) *OpenAIClient {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	if embeddingModel == "" {
		embeddingModel = string(openai.SmallEmbedding3)
	}
	return &OpenAIClient{
		client:         openai.NewClientWithConfig(config),
		model:          model,
		embeddingModel: embeddingModel,
	}
}

func (c *OpenAIClient) Generate(ctx context.Context, prompt string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model:       c.model,
		Temperature: 0,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleUser,
				Content: prompt,
			},
		},
	}
	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", &ProviderError{Provider: "openai", Op: "generate", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &ProviderError{Provider: "openai", Op: "generate", Err: fmt.Errorf("no response choices")}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *OpenAIClient) Embed(ctx context.Context, text string) ([]float32, error) {
	req := openai.EmbeddingRequest{
		Input: []string{text},
		Model: openai.EmbeddingModel(c.embeddingModel),
	}
	resp, err := c.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, &ProviderError{Provider: "openai", Op: "embed", Err: err}
	}
	if len(resp.Data) == 0 {
		return nil, &ProviderError{Provider: "openai", Op: "embed", Err: fmt.Errorf("no embedding data")}
	}
	return resp.Data[0].Embedding, nil
}
