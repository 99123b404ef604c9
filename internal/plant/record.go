package plant

import (
	"context"
	"encoding/json"
	"fmt"
	"time"
)

const (
	// StorageKey 是持久化记录使用的固定键。
	StorageKey = "plant-companion-data"
	// DefaultPlantName 在未配置植物名称时使用。
	DefaultPlantName = "Little Sprout"
	// DateLayout 是所有日历日期的存储格式。
	DateLayout = "2006-01-02"

	defaultGrowth    = 26
	defaultChatCount = 7
	maxGrowth        = 100
)

// MoodLog 记录某一天登记的心情，每个日期最多一条。
type MoodLog struct {
	Date      string `json:"date"`
	Mood      Mood   `json:"mood"`
	MoodScore int    `json:"moodScore"`
}

// Record 是唯一的持久化聚合，字段名即存储格式。
type Record struct {
	Growth          int       `json:"growth"`
	ChatCount       int       `json:"chatCount"`
	Streak          int       `json:"streak"`
	CurrentMood     Mood      `json:"currentMood"`
	MoodLogs        []MoodLog `json:"moodLogs"`
	PlantName       string    `json:"plantName"`
	LastInteraction string    `json:"lastInteraction"`
}

// Persister 是 Store 依赖的存储端口。
// Load 以 defaults 为底解码已存储的记录，尚未保存过任何记录时返回 nil, nil。
type Persister interface {
	Load(ctx context.Context, defaults Record) (*Record, error)
	Save(ctx context.Context, record Record) error
}

// DefaultRecord 构造首次启动时的默认记录。
func DefaultRecord(plantName string, today time.Time) Record {
	if plantName == "" {
		plantName = DefaultPlantName
	}
	return Record{
		Growth:          defaultGrowth,
		ChatCount:       defaultChatCount,
		Streak:          0,
		CurrentMood:     MoodNeutral,
		MoodLogs:        []MoodLog{},
		PlantName:       plantName,
		LastInteraction: DayOf(today),
	}
}

// Clone returns a deep copy so callers never share the log slice.
func (r Record) Clone() Record {
	out := r
	out.MoodLogs = make([]MoodLog, len(r.MoodLogs))
	copy(out.MoodLogs, r.MoodLogs)
	return out
}

// upsertLog 以日期为键写入心情日志，已有同日记录时替换（移到末尾）。
func (r *Record) upsertLog(entry MoodLog) {
	logs := make([]MoodLog, 0, len(r.MoodLogs)+1)
	for _, existing := range r.MoodLogs {
		if existing.Date != entry.Date {
			logs = append(logs, existing)
		}
	}
	r.MoodLogs = append(logs, entry)
}

// Encode 将记录序列化为存储格式。
func Encode(record Record) ([]byte, error) {
	if record.MoodLogs == nil {
		record.MoodLogs = []MoodLog{}
	}
	data, err := json.Marshal(record)
	if err != nil {
		return nil, fmt.Errorf("encode plant record: %w", err)
	}
	return data, nil
}

// storedRecord 以原始 JSON 读取心情字段，非法取值交给 normalize 处理，
// 不会让整条记录解码失败。
type storedRecord struct {
	Record
	CurrentMood json.RawMessage `json:"currentMood"`
	MoodLogs    []storedLog     `json:"moodLogs"`
}

type storedLog struct {
	Date      string          `json:"date"`
	Mood      json.RawMessage `json:"mood"`
	MoodScore int             `json:"moodScore"`
}

// Decode 在默认值之上叠加已存储的字段，缺失的新字段自动回填默认值。
// 未知心情的日志被丢弃，未知的当前心情回退为默认值。
func Decode(data []byte, defaults Record) (Record, error) {
	stored := storedRecord{Record: defaults.Clone()}
	if err := json.Unmarshal(data, &stored); err != nil {
		return Record{}, fmt.Errorf("decode plant record: %w", err)
	}

	record := stored.Record
	if stored.CurrentMood != nil {
		record.CurrentMood = looseMood(stored.CurrentMood)
	}
	if stored.MoodLogs != nil {
		record.MoodLogs = make([]MoodLog, 0, len(stored.MoodLogs))
		for _, entry := range stored.MoodLogs {
			record.MoodLogs = append(record.MoodLogs, MoodLog{
				Date:      entry.Date,
				Mood:      looseMood(entry.Mood),
				MoodScore: entry.MoodScore,
			})
		}
	}
	return normalize(record, defaults), nil
}

// looseMood 把任意 JSON 值转换为 Mood，非字符串或未知取值返回空值。
func looseMood(raw json.RawMessage) Mood {
	var value string
	if err := json.Unmarshal(raw, &value); err != nil {
		return ""
	}
	mood, err := ParseMood(value)
	if err != nil {
		return ""
	}
	return mood
}

func normalize(record Record, defaults Record) Record {
	record.Growth = min(max(record.Growth, 0), maxGrowth)
	record.Streak = max(record.Streak, 0)
	record.ChatCount = max(record.ChatCount, 0)
	if !record.CurrentMood.Valid() {
		record.CurrentMood = defaults.CurrentMood
		if !record.CurrentMood.Valid() {
			record.CurrentMood = MoodNeutral
		}
	}
	if record.PlantName == "" {
		record.PlantName = defaults.PlantName
	}
	if _, err := time.Parse(DateLayout, record.LastInteraction); err != nil {
		record.LastInteraction = defaults.LastInteraction
	}

	logs := record.MoodLogs
	record.MoodLogs = make([]MoodLog, 0, len(logs))
	for _, entry := range logs {
		if _, err := time.Parse(DateLayout, entry.Date); err != nil || !entry.Mood.Valid() {
			continue
		}
		entry.MoodScore = entry.Mood.Score()
		record.upsertLog(entry)
	}
	return record
}

// DayOf 返回 t 所在时区的日历日期。
func DayOf(t time.Time) string {
	return t.Format(DateLayout)
}

func shiftDay(day string, days int) string {
	t, err := time.Parse(DateLayout, day)
	if err != nil {
		return ""
	}
	return t.AddDate(0, 0, days).Format(DateLayout)
}
