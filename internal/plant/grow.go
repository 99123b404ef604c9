package plant

import (
	"fmt"
	"math"
)

const (
	streakBonusPerDay = 0.5
	maxStreakBonus    = 5.0
	longStreakDays    = 3

	happyBandScore   = 60
	neutralBandScore = 45
)

// GrowResult 描述一次 Grow 的结果。Plant 是本次浇灌后的记录副本。
type GrowResult struct {
	GrowthIncrement float64 `json:"growthIncrement"`
	NewStreak       int     `json:"newStreak"`
	Message         string  `json:"message"`
	StreakBonus     string  `json:"streakBonus,omitempty"`
	// Applied 为 false 表示同一天内重复浇灌，成长与连胜未变化。
	Applied bool   `json:"applied"`
	Plant   Record `json:"plant"`
}

// advance 计算 Grow 后的新记录。同一天内只推进一次成长、计数与连胜，
// 但当天的心情日志总会按当前心情刷新。
func advance(record Record, today string) (Record, GrowResult) {
	next := record.Clone()
	mood := record.CurrentMood
	score := mood.Score()

	next.upsertLog(MoodLog{Date: today, Mood: mood, MoodScore: score})

	if record.LastInteraction == today {
		return next, GrowResult{
			NewStreak: record.Streak,
			Message:   growMessage(mood, record.Streak),
			Applied:   false,
		}
	}

	bonus := streakBonus(record.Streak)
	increment := float64(mood.baseIncrement()) + bonus
	newStreak := nextStreak(record.Streak, score, record.LastInteraction, today)

	next.Growth = min(maxGrowth, record.Growth+int(math.Round(increment)))
	next.ChatCount = record.ChatCount + 1
	next.Streak = newStreak
	next.LastInteraction = today

	result := GrowResult{
		GrowthIncrement: increment,
		NewStreak:       newStreak,
		Message:         growMessage(mood, newStreak),
		Applied:         true,
	}
	if bonus > 0 {
		result.StreakBonus = fmt.Sprintf("+%.1f streak bonus", bonus)
	}
	return next, result
}

func streakBonus(streak int) float64 {
	return math.Min(float64(streak)*streakBonusPerDay, maxStreakBonus)
}

// nextStreak 是每日最多执行一次的连胜状态机。
func nextStreak(streak, score int, lastInteraction, today string) int {
	yesterday := shiftDay(today, -1)
	dayBeforeYesterday := shiftDay(today, -2)

	switch {
	case score >= happyBandScore:
		if lastInteraction == yesterday {
			return streak + 1
		}
		// 隔一天同样从 1 重新开始。
		if lastInteraction == dayBeforeYesterday {
			return 1
		}
		return 1
	case score >= neutralBandScore:
		if lastInteraction == yesterday {
			return streak
		}
		return max(0, streak-1)
	default:
		return max(0, streak-2)
	}
}

func growMessage(mood Mood, streak int) string {
	long := streak >= longStreakDays

	switch mood {
	case MoodHappy:
		if long {
			return fmt.Sprintf("%d happy days in a row! Your happiness makes me grow so strong! 🌱✨", streak)
		}
		return "Your happiness makes me grow so strong! 🌱✨"
	case MoodNeutral:
		if long {
			return fmt.Sprintf("Thank you for taking care of me today! %d days of steady care keep my roots strong. 🌿", streak)
		}
		return "Thank you for taking care of me today! 🌿"
	case MoodSad:
		if long {
			return fmt.Sprintf("I'm here for you, even on tough days. Our %d-day streak is still standing. 💚", streak)
		}
		return "I'm here for you, even on tough days. We'll grow together. 💚"
	default:
		panic(fmt.Sprintf("plant: unknown mood %q", string(mood)))
	}
}
