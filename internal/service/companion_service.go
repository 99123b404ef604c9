package service

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/plantpal/internal/plant"
	"go.uber.org/zap"
)

// ReplyInput 描述生成植物回复所需的上下文。
type ReplyInput struct {
	UserText  string
	Mood      plant.Mood
	Growth    int
	Streak    int
	PlantName string
}

// ReplyGenerator 生成植物回复，失败时返回错误由调用方兜底。
type ReplyGenerator interface {
	GenerateReply(ctx context.Context, input ReplyInput) (string, error)
}

func buildLocalReplyRequest(input ReplyInput) aiChatRequest {
	system := fmt.Sprintf("You are %s, a gentle, caring plant companion. You respond based on the user's mood and your growth. "+
		"Current mood: %s, Growth: %d%%, Streak: %d days. "+
		"Be encouraging, empathetic, and plant-themed in your responses. Keep responses short and sweet, like a caring friend.",
		input.PlantName, input.Mood, input.Growth, input.Streak)
	return aiChatRequest{
		SystemPrompt: system,
		UserPrompt:   input.UserText,
		MaxTokens:    localReplyMaxTokens,
		Temperature:  replyTemperature,
	}
}

var moodContext = map[plant.Mood]string{
	plant.MoodSad:     "feeling down and needs comfort and encouragement",
	plant.MoodNeutral: "in a balanced state and appreciates gentle guidance",
	plant.MoodHappy:   "feeling great and ready for positive energy",
}

func buildGeminiReplyRequest(input ReplyInput) aiChatRequest {
	var b strings.Builder
	fmt.Fprintf(&b, "You are %s, a wise and caring plant companion who has been growing alongside your human friend. ", input.PlantName)
	b.WriteString("You have a warm, nurturing personality and speak with gentle wisdom.\n\n")
	b.WriteString("Your current state:\n")
	fmt.Fprintf(&b, "- Growth level: %d/100 (%s)\n", input.Growth, plant.GrowthStage(input.Growth))
	fmt.Fprintf(&b, "- Your friend is %s\n", moodContext[input.Mood])
	fmt.Fprintf(&b, "- Daily streak: %d days\n\n", input.Streak)
	fmt.Fprintf(&b, "Your friend just said: %q\n\n", input.UserText)
	fmt.Fprintf(&b, "Respond as %s with empathy for their current mood, plant-inspired wisdom and metaphors, ", input.PlantName)
	b.WriteString("and encouragement about growth and resilience. Keep it warm and concise (2-3 sentences). ")
	b.WriteString("Be supportive but not overly cheerful if they're sad.")
	return aiChatRequest{
		UserPrompt:  b.String(),
		MaxTokens:   geminiReplyMaxTokens,
		Temperature: replyTemperature,
	}
}

var fallbackReplies = map[plant.Mood][]string{
	plant.MoodSad: {
		"I'm here to listen. You're not alone in this. 🌱",
		"Even the strongest trees have tough days. You'll grow through this.",
		"Your feelings are valid. Let's take this one day at a time.",
	},
	plant.MoodNeutral: {
		"Thanks for sharing with me! How can I brighten your day?",
		"I'm grateful for your company. What's on your mind?",
		"Every conversation helps me understand you better.",
	},
	plant.MoodHappy: {
		"Your joy makes my leaves dance! What's making you smile?",
		"I love seeing you happy! Your positive energy helps me grow!",
		"Your happiness is contagious! Tell me more about what's going well!",
	},
}

// ChatReply 是返回给界面的一条植物回复。
type ChatReply struct {
	ID        string    `json:"id"`
	Reply     string    `json:"reply"`
	ReplyHTML string    `json:"replyHtml"`
	Fallback  bool      `json:"fallback"`
	CreatedAt time.Time `json:"createdAt"`
}

// CompanionService 包装 ReplyGenerator，任何失败都用按心情挑选的兜底回复替代。
type CompanionService struct {
	generator ReplyGenerator
	pick      func(n int) int
	now       func() time.Time
	log       *zap.Logger
}

// Option 调整服务的随机与时间来源。
type Option func(*runtimeOptions)

type runtimeOptions struct {
	pick func(n int) int
	now  func() time.Time
}

// WithPicker 注入随机选择函数，返回 [0, n) 之间的下标。
func WithPicker(pick func(n int) int) Option {
	return func(o *runtimeOptions) {
		if pick != nil {
			o.pick = pick
		}
	}
}

// WithNow 注入时间来源。
func WithNow(now func() time.Time) Option {
	return func(o *runtimeOptions) {
		if now != nil {
			o.now = now
		}
	}
}

func applyOptions(opts []Option) runtimeOptions {
	o := runtimeOptions{pick: rand.IntN, now: time.Now}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// NewCompanionService 构造 CompanionService，generator 可以为空，此时总是使用兜底回复。
func NewCompanionService(generator ReplyGenerator, log *zap.Logger, opts ...Option) *CompanionService {
	if log == nil {
		log = zap.NewNop()
	}
	o := applyOptions(opts)
	return &CompanionService{
		generator: generator,
		pick:      o.pick,
		now:       o.now,
		log:       log,
	}
}

// Reply 生成一条回复，从不返回错误。
func (s *CompanionService) Reply(ctx context.Context, input ReplyInput) ChatReply {
	text, fallback := s.generate(ctx, input)

	html, err := RenderMarkdown(text)
	if err != nil {
		s.log.Warn("render reply markdown", zap.Error(err))
		html = ""
	}

	return ChatReply{
		ID:        uuid.NewString(),
		Reply:     text,
		ReplyHTML: html,
		Fallback:  fallback,
		CreatedAt: s.now(),
	}
}

func (s *CompanionService) generate(ctx context.Context, input ReplyInput) (string, bool) {
	if s.generator != nil {
		reply, err := s.generator.GenerateReply(ctx, input)
		if err == nil && strings.TrimSpace(reply) != "" {
			return strings.TrimSpace(reply), false
		}
		s.log.Warn("reply generation failed, using fallback",
			zap.String("mood", string(input.Mood)),
			zap.Error(err),
		)
	}
	return s.fallback(input.Mood), true
}

func (s *CompanionService) fallback(mood plant.Mood) string {
	choices, ok := fallbackReplies[mood]
	if !ok {
		choices = fallbackReplies[plant.MoodNeutral]
	}
	return choices[s.pick(len(choices))]
}
