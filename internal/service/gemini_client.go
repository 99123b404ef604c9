package service

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"google.golang.org/genai"
)

// geminiGenerator 抽象 Gemini 调用，测试中可替换。
type geminiGenerator interface {
	Generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error)
	Ping(ctx context.Context, apiKey, model string) error
}

type genaiGenerator struct {
	httpClient *http.Client
}

func newGenAIGenerator(httpClient *http.Client) *genaiGenerator {
	return &genaiGenerator{httpClient: httpClient}
}

func (g *genaiGenerator) client(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: g.httpClient,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	return client, nil
}

func (g *genaiGenerator) Generate(ctx context.Context, apiKey, model string, req aiChatRequest) (aiChatResponse, error) {
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return aiChatResponse{}, err
	}

	temperature := float32(req.Temperature)
	config := &genai.GenerateContentConfig{
		Temperature:     &temperature,
		MaxOutputTokens: int32(req.MaxTokens),
	}
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}

	result, err := client.Models.GenerateContent(ctx, model, genai.Text(req.UserPrompt), config)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("gemini generate: %w", err)
	}

	text := strings.TrimSpace(result.Text())
	if text == "" {
		return aiChatResponse{}, fmt.Errorf("gemini returned no text")
	}

	response := aiChatResponse{Content: text}
	if usage := result.UsageMetadata; usage != nil {
		response.PromptTokens = int(usage.PromptTokenCount)
		response.CompletionTokens = int(usage.CandidatesTokenCount)
	}
	return response, nil
}

func (g *genaiGenerator) Ping(ctx context.Context, apiKey, model string) error {
	client, err := g.client(ctx, apiKey)
	if err != nil {
		return err
	}
	if _, err := client.Models.Get(ctx, model, nil); err != nil {
		return fmt.Errorf("gemini model %s: %w", model, err)
	}
	return nil
}
