package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/plantpal/internal/plant"
)

type fakeTextGenerator struct {
	calls int
	err   error
}

func (f *fakeTextGenerator) GenerateText(context.Context, string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return fmt.Sprintf("generated %d", f.calls), nil
}

func TestMotivationServiceCachesPerDay(t *testing.T) {
	now := fixedNow
	generator := &fakeTextGenerator{}
	svc := NewMotivationService(generator, nil, WithNow(func() time.Time { return now }))
	ctx := context.Background()

	first, err := svc.Daily(ctx, plant.MoodHappy)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if first.Date != "2025-03-10" || first.Mood != plant.MoodHappy || first.Fallback {
		t.Fatalf("unexpected motivation %+v", first)
	}
	if first.Joke != "generated 1" || first.Thought != "generated 2" || first.Tip != "generated 3" {
		t.Fatalf("unexpected pieces %+v", first)
	}

	second, _ := svc.Daily(ctx, plant.MoodHappy)
	if second != first || generator.calls != 3 {
		t.Fatalf("expected cached result, calls=%d", generator.calls)
	}

	if _, err := svc.Daily(ctx, plant.MoodSad); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if generator.calls != 6 {
		t.Fatalf("expected separate entry per mood, calls=%d", generator.calls)
	}

	refreshed, _ := svc.Refresh(ctx, plant.MoodHappy)
	if refreshed == first || generator.calls != 9 {
		t.Fatalf("expected refresh to regenerate, calls=%d", generator.calls)
	}

	now = now.AddDate(0, 0, 1)
	next, _ := svc.Daily(ctx, plant.MoodHappy)
	if next.Date != "2025-03-11" || generator.calls != 12 {
		t.Fatalf("expected regeneration on a new day, got %+v calls=%d", next, generator.calls)
	}
}

func TestMotivationServiceFallbacks(t *testing.T) {
	generator := &fakeTextGenerator{err: errors.New("offline")}
	svc := NewMotivationService(generator, nil, WithPicker(func(int) int { return 0 }))

	m, err := svc.Daily(context.Background(), plant.MoodSad)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Fallback {
		t.Fatalf("expected fallback flag")
	}
	if m.Joke != fallbackJokes[0] || m.Thought != fallbackThoughts[plant.MoodSad][0] || m.Tip != fallbackTips[0] {
		t.Fatalf("unexpected fallback content %+v", m)
	}
}

func TestMotivationServiceWithoutGenerator(t *testing.T) {
	svc := NewMotivationService(nil, nil)

	m, err := svc.Daily(context.Background(), plant.MoodNeutral)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !m.Fallback || m.Joke == "" || m.Thought == "" || m.Tip == "" {
		t.Fatalf("expected filled fallback content, got %+v", m)
	}
}

func TestMotivationServiceRejectsInvalidMood(t *testing.T) {
	svc := NewMotivationService(nil, nil)

	if _, err := svc.Daily(context.Background(), plant.Mood("angry")); !errors.Is(err, plant.ErrInvalidMood) {
		t.Fatalf("expected ErrInvalidMood, got %v", err)
	}
	if _, err := svc.Refresh(context.Background(), plant.Mood("")); !errors.Is(err, plant.ErrInvalidMood) {
		t.Fatalf("expected ErrInvalidMood, got %v", err)
	}
}
