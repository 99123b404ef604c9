package storage

import (
	"errors"
	"fmt"
	"strings"

	"github.com/plantpal/internal/plant"
	"gorm.io/gorm"
)

const (
	EngineSQLite = "sqlite"
	EngineMySQL  = "mysql"
	EngineJSON   = "json"
	EngineRedis  = "redis"
	EngineMemory = "memory"
)

// ErrUnsupportedEngine 表示配置了未知的存储引擎。
var ErrUnsupportedEngine = errors.New("unsupported storage engine")

// Options 汇总各存储引擎所需的依赖。
type Options struct {
	Engine   string
	DB       *gorm.DB
	DataFile string
	RedisURL string
	Key      string
}

// NewByEngine 根据引擎名称构造 plant.Persister。
// 返回值若实现 io.Closer，调用方负责关闭。
func NewByEngine(opts Options) (plant.Persister, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Engine)) {
	case "", EngineSQLite, EngineMySQL:
		if opts.DB == nil {
			return nil, errors.New("database is required for engine " + opts.Engine)
		}
		return NewGormStore(opts.DB, opts.Key), nil
	case EngineJSON:
		if strings.TrimSpace(opts.DataFile) == "" {
			return nil, errors.New("data file is required for json engine")
		}
		return NewJSONFileStore(opts.DataFile, opts.Key), nil
	case EngineRedis:
		rdb, err := ConnectRedis(opts.RedisURL)
		if err != nil {
			return nil, err
		}
		return NewRedisStore(rdb, opts.Key), nil
	case EngineMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedEngine, opts.Engine)
	}
}

// UsesDatabase 判断引擎是否依赖 gorm 连接。
func UsesDatabase(engine string) bool {
	switch strings.ToLower(strings.TrimSpace(engine)) {
	case "", EngineSQLite, EngineMySQL:
		return true
	default:
		return false
	}
}
