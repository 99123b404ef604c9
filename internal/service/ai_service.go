package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	localReplyMaxTokens  = 150
	geminiReplyMaxTokens = 250
	replyTemperature     = 0.7
	textMaxTokens        = 120
)

// AIService 基于当前设置的文本生成后端生成植物回复与每日内容。
type AIService struct {
	client *aiChatClient
}

// NewAIService 构造 AIService。
func NewAIService(settings *SystemSettingService, timeout time.Duration, log *zap.Logger) *AIService {
	return &AIService{client: newAIChatClient(settings, timeout, log)}
}

// SetHTTPClient 覆盖默认 HTTP 客户端，主要用于测试。
func (s *AIService) SetHTTPClient(client httpDoer) {
	s.client.SetHTTPClient(client)
}

// SetGemini 替换 Gemini 调用实现，主要用于测试。
func (s *AIService) SetGemini(generator geminiGenerator) {
	s.client.SetGemini(generator)
}

// GenerateReply 按后端组织提示词并返回模型输出。
func (s *AIService) GenerateReply(ctx context.Context, input ReplyInput) (string, error) {
	settings, err := s.client.currentSettings()
	if err != nil {
		return "", err
	}

	req := buildLocalReplyRequest(input)
	if settings.AIProvider == AIProviderGemini {
		req = buildGeminiReplyRequest(input)
	}
	logAIExchange(s.client.log, "REPLY", "prompt", req.UserPrompt)

	result, err := s.client.callWithSettings(ctx, settings, req)
	if err != nil {
		return "", err
	}

	reply := strings.TrimSpace(result.Content)
	logAIExchange(s.client.log, "REPLY", "response", reply)
	if reply == "" {
		return "", fmt.Errorf("empty reply from %s", settings.AIProvider)
	}
	return reply, nil
}

// GenerateText 以单条提示词生成一段短文本，用于每日笑话、感想与建议。
func (s *AIService) GenerateText(ctx context.Context, prompt string) (string, error) {
	settings, err := s.client.currentSettings()
	if err != nil {
		return "", err
	}

	logAIExchange(s.client.log, "TEXT", "prompt", prompt)
	result, err := s.client.callWithSettings(ctx, settings, aiChatRequest{
		UserPrompt:  prompt,
		MaxTokens:   textMaxTokens,
		Temperature: replyTemperature,
	})
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(result.Content)
	logAIExchange(s.client.log, "TEXT", "response", text)
	if text == "" {
		return "", fmt.Errorf("empty text from %s", settings.AIProvider)
	}
	return text, nil
}
