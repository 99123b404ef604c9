package plant

import (
	"slices"
	"strings"
)

const (
	// DefaultHistoryDays 是 MoodHistory 的默认窗口。
	DefaultHistoryDays = 30
	insightWindowDays  = 7
	// neutralAverage 用于近一周没有任何记录时的平均分。
	neutralAverage = 50.0
)

// Insights 是只读的统计视图。
type Insights struct {
	WeeklyHappyDays   int     `json:"weeklyHappyDays"`
	AverageWeeklyMood float64 `json:"averageWeeklyMood"`
	TotalInteractions int     `json:"totalInteractions"`
	CurrentStreak     int     `json:"currentStreak"`
	GrowthLevel       int     `json:"growthLevel"`
}

func moodHistory(record Record, today string, windowDays int) []MoodLog {
	if windowDays <= 0 {
		windowDays = DefaultHistoryDays
	}
	cutoff := shiftDay(today, -windowDays)

	logs := make([]MoodLog, 0, len(record.MoodLogs))
	for _, entry := range record.MoodLogs {
		if entry.Date >= cutoff {
			logs = append(logs, entry)
		}
	}
	slices.SortStableFunc(logs, func(a, b MoodLog) int {
		return strings.Compare(a.Date, b.Date)
	})
	return logs
}

func insightsOf(record Record, today string) Insights {
	recent := moodHistory(record, today, insightWindowDays)

	happyDays := 0
	total := 0
	for _, entry := range recent {
		if entry.Mood == MoodHappy {
			happyDays++
		}
		total += entry.MoodScore
	}

	average := neutralAverage
	if len(recent) > 0 {
		average = float64(total) / float64(len(recent))
	}

	return Insights{
		WeeklyHappyDays:   happyDays,
		AverageWeeklyMood: average,
		TotalInteractions: record.ChatCount,
		CurrentStreak:     record.Streak,
		GrowthLevel:       record.Growth,
	}
}

// MoodLabel 将平均心情分转换为统计面板上的文案。
func MoodLabel(average float64) string {
	switch {
	case average >= 70:
		return "Thriving"
	case average >= 50:
		return "Growing"
	default:
		return "Nurturing"
	}
}

// GrowthStage 描述植物当前所处阶段。
func GrowthStage(growth int) string {
	switch {
	case growth < 30:
		return "seedling"
	case growth < 60:
		return "young plant"
	default:
		return "mature plant"
	}
}
