package plant

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Clock 返回当前时间，测试中可替换。
type Clock func() time.Time

// Option 配置 Store。
type Option func(*Store)

// WithClock 覆盖默认时钟。
func WithClock(clock Clock) Option {
	return func(s *Store) {
		if clock != nil {
			s.now = clock
		}
	}
}

// WithLogger 指定日志输出。
func WithLogger(logger *zap.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.log = logger
		}
	}
}

// Store 持有唯一的 Record，所有修改都在锁内对副本完成后整体替换，再写回存储。
// 存储失败只记录日志，内存状态始终是本次运行的权威数据。
type Store struct {
	mu        sync.Mutex
	record    Record
	persister Persister
	now       Clock
	log       *zap.Logger
}

// Open 从存储加载记录；没有记录或加载失败时使用默认值。
func Open(ctx context.Context, persister Persister, plantName string, opts ...Option) *Store {
	s := &Store{
		persister: persister,
		now:       time.Now,
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	defaults := DefaultRecord(plantName, s.now())
	s.record = defaults

	stored, err := persister.Load(ctx, defaults)
	switch {
	case err != nil:
		s.log.Warn("load plant record failed, starting from defaults", zap.Error(err))
	case stored == nil:
		s.log.Info("no stored plant record, creating defaults", zap.String("plant", defaults.PlantName))
		s.persist(ctx, defaults)
	default:
		s.record = normalize(stored.Clone(), defaults)
	}
	return s
}

// Snapshot returns a copy of the current record.
func (s *Store) Snapshot() Record {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// SetMood 替换当前心情，其余字段不变。
func (s *Store) SetMood(ctx context.Context, mood Mood) (Record, error) {
	if !mood.Valid() {
		return Record{}, ErrInvalidMood
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.record.Clone()
	next.CurrentMood = mood
	s.record = next
	s.persist(ctx, next)
	return next.Clone(), nil
}

// Grow 执行“浇灌”动作，返回提示信息与同一把锁内得到的新记录。
func (s *Store) Grow(ctx context.Context) GrowResult {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, result := advance(s.record, DayOf(s.now()))
	s.record = next
	s.persist(ctx, next)
	result.Plant = next.Clone()

	s.log.Info("plant grown",
		zap.String("mood", string(next.CurrentMood)),
		zap.Bool("applied", result.Applied),
		zap.Float64("increment", result.GrowthIncrement),
		zap.Int("growth", next.Growth),
		zap.Int("streak", next.Streak),
	)
	return result
}

// MoodHistory 返回最近 windowDays 天（含）的心情日志，按日期升序；windowDays<=0 时取 30。
func (s *Store) MoodHistory(windowDays int) []MoodLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return moodHistory(s.record, DayOf(s.now()), windowDays)
}

// Insights 汇总最近一周的心情统计。
func (s *Store) Insights() Insights {
	s.mu.Lock()
	defer s.mu.Unlock()
	return insightsOf(s.record, DayOf(s.now()))
}

func (s *Store) persist(ctx context.Context, record Record) {
	if err := s.persister.Save(ctx, record.Clone()); err != nil {
		s.log.Warn("persist plant record failed", zap.Error(err))
	}
}
