package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
}

type chatCompletionResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

type aiChatRequest struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

type aiChatResponse struct {
	Content          string
	PromptTokens     int
	CompletionTokens int
}

const defaultAITimeout = 30 * time.Second

// aiChatClient 按系统设置把请求分发到本地 OpenAI 兼容接口或 Gemini。
type aiChatClient struct {
	settings *SystemSettingService
	http     httpDoer
	gemini   geminiGenerator
	log      *zap.Logger
	timeout  time.Duration
}

func newAIChatClient(settings *SystemSettingService, timeout time.Duration, log *zap.Logger) *aiChatClient {
	if timeout <= 0 {
		timeout = defaultAITimeout
	}
	if log == nil {
		log = zap.NewNop()
	}
	httpClient := &http.Client{Timeout: timeout}
	return &aiChatClient{
		settings: settings,
		http:     httpClient,
		gemini:   newGenAIGenerator(httpClient),
		log:      log,
		timeout:  timeout,
	}
}

func (c *aiChatClient) SetHTTPClient(client httpDoer) {
	if client == nil {
		timeout := c.timeout
		if timeout <= 0 {
			timeout = defaultAITimeout
		}
		c.http = &http.Client{Timeout: timeout}
		return
	}
	c.http = client
}

func (c *aiChatClient) SetGemini(generator geminiGenerator) {
	c.gemini = generator
}

func (c *aiChatClient) currentSettings() (SystemSettings, error) {
	if c.settings == nil {
		return sanitizeSettings(SystemSettings{}), nil
	}
	settings, err := c.settings.GetSettings()
	if err != nil {
		return SystemSettings{}, fmt.Errorf("load ai settings: %w", err)
	}
	return settings, nil
}

func (c *aiChatClient) callWithSettings(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	switch normalizeAIProvider(settings.AIProvider) {
	case AIProviderGemini:
		apiKey := strings.TrimSpace(settings.GeminiAPIKey)
		if apiKey == "" {
			return aiChatResponse{}, ErrAIAPIKeyMissing
		}
		if c.gemini == nil {
			return aiChatResponse{}, fmt.Errorf("%w: gemini", ErrUnknownProvider)
		}
		model := strings.TrimSpace(settings.GeminiModel)
		if model == "" {
			model = DefaultGeminiModel
		}
		return c.gemini.Generate(ctx, apiKey, model, req)
	case AIProviderLocal:
		return c.callLocal(ctx, settings, req)
	default:
		return aiChatResponse{}, fmt.Errorf("%w: %s", ErrUnknownProvider, settings.AIProvider)
	}
}

func (c *aiChatClient) callLocal(ctx context.Context, settings SystemSettings, req aiChatRequest) (aiChatResponse, error) {
	base := strings.TrimRight(strings.TrimSpace(settings.LocalBaseURL), "/")
	if base == "" {
		base = DefaultLocalBaseURL
	}
	model := strings.TrimSpace(settings.LocalModel)
	if model == "" {
		model = DefaultLocalModel
	}

	client := c.http
	if client == nil {
		client = http.DefaultClient
	}

	maxTokens := req.MaxTokens
	if maxTokens < 0 {
		maxTokens = 0
	}

	messages := make([]chatMessage, 0, 2)
	if system := strings.TrimSpace(req.SystemPrompt); system != "" {
		messages = append(messages, chatMessage{Role: "system", Content: system})
	}
	messages = append(messages, chatMessage{Role: "user", Content: req.UserPrompt})

	body, err := json.Marshal(chatCompletionRequest{
		Model:       model,
		Messages:    messages,
		MaxTokens:   maxTokens,
		Temperature: req.Temperature,
	})
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("encode chat request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, base+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("build local llm request: %w", err)
	}
	if key := strings.TrimSpace(settings.LocalAPIKey); key != "" {
		httpReq.Header.Set("Authorization", "Bearer "+key)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", "plantpal-ai/1.0")

	resp, err := client.Do(httpReq)
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("request local llm: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return aiChatResponse{}, fmt.Errorf("read local llm response: %w", err)
	}

	var completion chatCompletionResponse
	if err := json.Unmarshal(respBody, &completion); err != nil {
		if resp.StatusCode >= http.StatusBadRequest {
			return aiChatResponse{}, fmt.Errorf("local llm returned %s", resp.Status)
		}
		return aiChatResponse{}, fmt.Errorf("decode local llm response: %w", err)
	}

	if resp.StatusCode >= http.StatusBadRequest {
		errMsg := strings.TrimSpace(completion.Error.Message)
		if errMsg == "" {
			errMsg = resp.Status
		}
		return aiChatResponse{}, fmt.Errorf("local llm returned error: %s", errMsg)
	}

	if len(completion.Choices) == 0 {
		return aiChatResponse{}, fmt.Errorf("local llm returned no choices")
	}

	return aiChatResponse{
		Content:          strings.TrimSpace(completion.Choices[0].Message.Content),
		PromptTokens:     completion.Usage.PromptTokens,
		CompletionTokens: completion.Usage.CompletionTokens,
	}, nil
}
