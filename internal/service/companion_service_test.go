package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/plantpal/internal/plant"
)

type fakeReplyGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeReplyGenerator) GenerateReply(context.Context, ReplyInput) (string, error) {
	f.calls++
	return f.reply, f.err
}

var fixedNow = time.Date(2025, 3, 10, 9, 30, 0, 0, time.UTC)

func TestCompanionServiceReply(t *testing.T) {
	generator := &fakeReplyGenerator{reply: "You are **growing** beautifully."}
	svc := NewCompanionService(generator, nil, WithNow(func() time.Time { return fixedNow }))

	reply := svc.Reply(context.Background(), sampleReplyInput())

	if reply.Fallback {
		t.Fatalf("expected generated reply, got fallback")
	}
	if reply.Reply != "You are **growing** beautifully." {
		t.Fatalf("unexpected reply %q", reply.Reply)
	}
	if !strings.Contains(reply.ReplyHTML, "<strong>growing</strong>") {
		t.Fatalf("expected rendered markdown, got %q", reply.ReplyHTML)
	}
	if _, err := uuid.Parse(reply.ID); err != nil {
		t.Fatalf("expected uuid id, got %q", reply.ID)
	}
	if !reply.CreatedAt.Equal(fixedNow) {
		t.Fatalf("unexpected createdAt %v", reply.CreatedAt)
	}
}

func TestCompanionServiceFallsBackOnError(t *testing.T) {
	generator := &fakeReplyGenerator{err: errors.New("connection refused")}
	svc := NewCompanionService(generator, nil, WithPicker(func(n int) int { return n - 1 }))

	reply := svc.Reply(context.Background(), sampleReplyInput())

	if !reply.Fallback {
		t.Fatalf("expected fallback reply")
	}
	if want := fallbackReplies[plant.MoodHappy][2]; reply.Reply != want {
		t.Fatalf("expected %q, got %q", want, reply.Reply)
	}
	if generator.calls != 1 {
		t.Fatalf("expected one generator call, got %d", generator.calls)
	}
}

func TestCompanionServiceFallsBackOnBlankReply(t *testing.T) {
	svc := NewCompanionService(&fakeReplyGenerator{reply: "   "}, nil, WithPicker(func(int) int { return 0 }))

	input := sampleReplyInput()
	input.Mood = plant.MoodSad
	reply := svc.Reply(context.Background(), input)

	if !reply.Fallback || reply.Reply != fallbackReplies[plant.MoodSad][0] {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestCompanionServiceWithoutGenerator(t *testing.T) {
	svc := NewCompanionService(nil, nil, WithPicker(func(int) int { return 1 }))

	input := sampleReplyInput()
	input.Mood = plant.MoodNeutral
	reply := svc.Reply(context.Background(), input)

	if !reply.Fallback || reply.Reply != fallbackReplies[plant.MoodNeutral][1] {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestFallbackRepliesCoverEveryMood(t *testing.T) {
	for _, mood := range plant.Moods {
		if got := len(fallbackReplies[mood]); got != 3 {
			t.Fatalf("expected 3 fallbacks for %s, got %d", mood, got)
		}
	}
}

func TestCompanionServiceSanitizesReplyHTML(t *testing.T) {
	svc := NewCompanionService(&fakeReplyGenerator{reply: "hi <script>alert(1)</script>"}, nil)

	reply := svc.Reply(context.Background(), sampleReplyInput())

	if strings.Contains(reply.ReplyHTML, "<script") {
		t.Fatalf("expected script to be stripped, got %q", reply.ReplyHTML)
	}
	if !strings.Contains(reply.ReplyHTML, "hi") {
		t.Fatalf("expected text to survive, got %q", reply.ReplyHTML)
	}
}
