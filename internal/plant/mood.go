package plant

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Mood 表示用户自报的心情，只有三个取值。
type Mood string

const (
	MoodSad     Mood = "sad"
	MoodNeutral Mood = "neutral"
	MoodHappy   Mood = "happy"
)

// ErrInvalidMood 在心情取值不属于 sad/neutral/happy 时返回。
var ErrInvalidMood = errors.New("invalid mood")

// Moods 按分值从低到高列出全部心情。
var Moods = []Mood{MoodSad, MoodNeutral, MoodHappy}

// ParseMood 解析外部输入的心情字符串，大小写与首尾空白不敏感。
func ParseMood(raw string) (Mood, error) {
	switch Mood(strings.ToLower(strings.TrimSpace(raw))) {
	case MoodSad:
		return MoodSad, nil
	case MoodNeutral:
		return MoodNeutral, nil
	case MoodHappy:
		return MoodHappy, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidMood, raw)
	}
}

// Valid reports whether m is one of the three known moods.
func (m Mood) Valid() bool {
	switch m {
	case MoodSad, MoodNeutral, MoodHappy:
		return true
	default:
		return false
	}
}

// Score 返回心情对应的固定分值。
func (m Mood) Score() int {
	switch m {
	case MoodSad:
		return 25
	case MoodNeutral:
		return 50
	case MoodHappy:
		return 85
	default:
		panic(fmt.Sprintf("plant: unknown mood %q", string(m)))
	}
}

func (m Mood) baseIncrement() int {
	switch m {
	case MoodSad:
		return 3
	case MoodNeutral:
		return 5
	case MoodHappy:
		return 8
	default:
		panic(fmt.Sprintf("plant: unknown mood %q", string(m)))
	}
}

// UnmarshalJSON 拒绝未知心情，避免脏数据进入内存状态。
func (m *Mood) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseMood(raw)
	if err != nil {
		return err
	}
	*m = parsed
	return nil
}
