package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/plantpal/internal/plant"
	"go.uber.org/zap"
)

// TextGenerator 根据单条提示词生成短文本。
type TextGenerator interface {
	GenerateText(ctx context.Context, prompt string) (string, error)
}

// Motivation 是某一天、某种心情下的每日内容。
type Motivation struct {
	Date     string     `json:"date"`
	Mood     plant.Mood `json:"mood"`
	Joke     string     `json:"joke"`
	Thought  string     `json:"thought"`
	Tip      string     `json:"tip"`
	Fallback bool       `json:"fallback"`
}

const (
	jokePrompt    = "Generate a short, wholesome, plant-themed joke that would make someone smile. Keep it light, punny, and nature-related. Just return the joke, nothing else."
	thoughtPrompt = "Generate an inspiring, motivational thought about personal growth, resilience, or mental health for someone who is %s. Use nature metaphors and keep it uplifting and meaningful. 1-2 sentences max."
	tipPrompt     = "Generate a practical, actionable tip for mental health and personal growth. Make it simple, doable, and inspiring. Use plant/nature analogies. Keep it to 1-2 sentences."
)

var fallbackJokes = []string{
	"Why don't plants ever get stressed? Because they know how to stay rooted! 🌱",
	"What did the big flower say to the little flower? Hi, bud! 🌸",
	"Why did the gardener plant light bulbs? They wanted to grow a power plant! 💡",
	"What do you call a grumpy gardener? A snap dragon! 🐉",
	"Why don't trees ever feel lonely? Because they always stick together! 🌳",
	"Why did the scarecrow win an award? He was outstanding in his field! 🌾",
	"What do you call a fake noodle? An impasta! 🍝",
	"Why don't eggs tell jokes? They'd crack each other up! 🥚",
}

var fallbackThoughts = map[plant.Mood][]string{
	plant.MoodSad: {
		"Every storm runs out of rain. You're stronger than you know. 💙",
		"It's okay to not be okay sometimes. Tomorrow is a new day. 🌅",
		"You've survived 100% of your worst days so far. That's a pretty good track record. 💪",
		"Healing isn't linear, and that's perfectly okay. Take it one step at a time. 🌱",
		"Your feelings are valid. Be gentle with yourself today. 🤗",
	},
	plant.MoodNeutral: {
		"Small steps are still progress. You're moving forward. 🚶‍♀️",
		"Today is a blank canvas. What will you create? 🎨",
		"Progress, not perfection. Every day is a chance to grow. 📈",
		"You don't have to be extraordinary to be worthy of love and respect. ✨",
		"Sometimes the most productive thing you can do is rest. 😌",
	},
	plant.MoodHappy: {
		"Your happiness is contagious! Keep spreading those good vibes. ☀️",
		"You're blooming beautifully. Keep shining your light! 🌟",
		"Celebrate the small wins - they add up to big victories! 🎉",
		"Your positive energy is making the world a brighter place. 🌈",
		"You're proof that good things do happen. Keep being amazing! 🦋",
	},
}

var fallbackTips = []string{
	"Like plants need both sunshine and rain, give yourself permission to feel all emotions - they're all part of your growth. ☀️🌧️",
	"Just as plants turn toward the light, try starting each day by focusing on one thing you're grateful for. 🌅",
	"Plants thrive with consistent care, not perfection - aim for small, daily acts of self-kindness rather than grand gestures. 💚",
	"Like roots that grow stronger in rich soil, nourish your mind with positive influences and supportive relationships. 🌿",
	"Even plants need pruning to grow better - it's okay to let go of habits or thoughts that no longer serve you. ✂️",
}

// MotivationService 每天为每种心情生成一次每日内容并缓存。
type MotivationService struct {
	generator TextGenerator
	pick      func(n int) int
	now       func() time.Time
	log       *zap.Logger

	mu    sync.Mutex
	cache map[plant.Mood]Motivation
}

// NewMotivationService 构造 MotivationService，generator 为空时只使用内置列表。
func NewMotivationService(generator TextGenerator, log *zap.Logger, opts ...Option) *MotivationService {
	if log == nil {
		log = zap.NewNop()
	}
	o := applyOptions(opts)
	return &MotivationService{
		generator: generator,
		pick:      o.pick,
		now:       o.now,
		log:       log,
		cache:     make(map[plant.Mood]Motivation),
	}
}

// Daily 返回今天该心情的内容，同一天重复调用返回相同结果。
func (s *MotivationService) Daily(ctx context.Context, mood plant.Mood) (Motivation, error) {
	if !mood.Valid() {
		return Motivation{}, plant.ErrInvalidMood
	}
	today := plant.DayOf(s.now())

	s.mu.Lock()
	cached, ok := s.cache[mood]
	s.mu.Unlock()
	if ok && cached.Date == today {
		return cached, nil
	}

	return s.store(s.generate(ctx, mood, today)), nil
}

// Refresh 丢弃缓存重新生成今天的内容。
func (s *MotivationService) Refresh(ctx context.Context, mood plant.Mood) (Motivation, error) {
	if !mood.Valid() {
		return Motivation{}, plant.ErrInvalidMood
	}
	return s.store(s.generate(ctx, mood, plant.DayOf(s.now()))), nil
}

func (s *MotivationService) store(m Motivation) Motivation {
	s.mu.Lock()
	defer s.mu.Unlock()
	for mood, cached := range s.cache {
		if cached.Date != m.Date {
			delete(s.cache, mood)
		}
	}
	s.cache[m.Mood] = m
	return m
}

func (s *MotivationService) generate(ctx context.Context, mood plant.Mood, today string) Motivation {
	joke, jokeFallback := s.piece(ctx, "joke", jokePrompt, fallbackJokes)
	thought, thoughtFallback := s.piece(ctx, "thought", fmt.Sprintf(thoughtPrompt, moodContext[mood]), fallbackThoughts[mood])
	tip, tipFallback := s.piece(ctx, "tip", tipPrompt, fallbackTips)

	return Motivation{
		Date:     today,
		Mood:     mood,
		Joke:     joke,
		Thought:  thought,
		Tip:      tip,
		Fallback: jokeFallback || thoughtFallback || tipFallback,
	}
}

func (s *MotivationService) piece(ctx context.Context, kind, prompt string, fallbacks []string) (string, bool) {
	if s.generator != nil {
		text, err := s.generator.GenerateText(ctx, prompt)
		if err == nil && strings.TrimSpace(text) != "" {
			return strings.TrimSpace(text), false
		}
		s.log.Debug("motivation generation failed, using fallback", zap.String("kind", kind), zap.Error(err))
	}
	return fallbacks[s.pick(len(fallbacks))], true
}
