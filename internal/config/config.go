package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr        string
	Port              string
	GinMode           string
	LogMode           string
	StorageEngine     string
	DatabasePath      string
	MySQLDSN          string
	DataFile          string
	RedisURL          string
	PlantName         string
	SessionSecret     string
	CORSOrigins       []string
	SuperRootUserName string
	SuperRootPassword string
	AIProvider        string
	LocalLLMBaseURL   string
	LocalLLMModel     string
	LocalLLMAPIKey    string
	GeminiAPIKey      string
	GeminiModel       string
	AITimeout         time.Duration
}

const (
	defaultPort          = "8080"
	defaultDatabasePath  = "data/plantpal.db"
	defaultDataFile      = "data/plantpal.json"
	defaultRedisURL      = "redis://localhost:6379/0"
	defaultPlantName     = "Little Sprout"
	defaultSessionSecret = "plantpal-dev-secret"
	defaultCORSOrigins   = "http://localhost:5173,http://localhost:8080"
	defaultAIProvider    = "local"
	defaultLocalBaseURL  = "http://localhost:1234/v1"
	defaultLocalModel    = "gpt-oss-20b"
	defaultGeminiModel   = "gemini-1.5-flash"
	defaultAITimeout     = 30 * time.Second
)

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值。
// 若设置了 CONFIG_FILE，文件中的值只填补未设置的环境变量。
func Load() (AppConfig, error) {
	fileValues, err := readConfigFile(strings.TrimSpace(os.Getenv("CONFIG_FILE")))
	if err != nil {
		return AppConfig{}, err
	}

	get := func(key, fallback string) string {
		if value := strings.TrimSpace(os.Getenv(key)); value != "" {
			return value
		}
		if value := strings.TrimSpace(fileValues[key]); value != "" {
			return value
		}
		return fallback
	}

	port := get("PORT", defaultPort)

	timeout := defaultAITimeout
	if raw := get("AI_TIMEOUT_SECONDS", ""); raw != "" {
		seconds, err := strconv.Atoi(raw)
		if err != nil || seconds <= 0 {
			return AppConfig{}, fmt.Errorf("invalid AI_TIMEOUT_SECONDS %q", raw)
		}
		timeout = time.Duration(seconds) * time.Second
	}

	return AppConfig{
		ListenAddr:        get("LISTEN_ADDR", fmt.Sprintf(":%s", port)),
		Port:              port,
		GinMode:           get("GIN_MODE", "release"),
		LogMode:           get("LOG_MODE", "production"),
		StorageEngine:     strings.ToLower(get("STORAGE_ENGINE", "sqlite")),
		DatabasePath:      get("DATABASE_PATH", defaultDatabasePath),
		MySQLDSN:          get("MYSQL_DSN", ""),
		DataFile:          get("DATA_FILE", defaultDataFile),
		RedisURL:          get("REDIS_URL", defaultRedisURL),
		PlantName:         get("PLANT_NAME", defaultPlantName),
		SessionSecret:     get("SESSION_SECRET", defaultSessionSecret),
		CORSOrigins:       splitList(get("CORS_ORIGINS", defaultCORSOrigins)),
		SuperRootUserName: get("SUPER_ROOT_USER_NAME", ""),
		SuperRootPassword: get("SUPER_ROOT_PASSWORD", ""),
		AIProvider:        strings.ToLower(get("AI_PROVIDER", defaultAIProvider)),
		LocalLLMBaseURL:   get("LOCAL_LLM_BASE_URL", defaultLocalBaseURL),
		LocalLLMModel:     get("LOCAL_LLM_MODEL", defaultLocalModel),
		LocalLLMAPIKey:    get("LOCAL_LLM_API_KEY", ""),
		GeminiAPIKey:      get("GEMINI_API_KEY", ""),
		GeminiModel:       get("GEMINI_MODEL", defaultGeminiModel),
		AITimeout:         timeout,
	}, nil
}

// DatabaseDriver 返回 gorm 使用的驱动名称。
func (c AppConfig) DatabaseDriver() string {
	if c.StorageEngine == "mysql" {
		return "mysql"
	}
	return "sqlite"
}

// DatabaseDSN 返回与 DatabaseDriver 对应的连接串。
func (c AppConfig) DatabaseDSN() string {
	if c.DatabaseDriver() == "mysql" {
		return c.MySQLDSN
	}
	return c.DatabasePath
}

// readConfigFile 读取扁平的 YAML 键值文件，键名与环境变量一致（大小写不敏感）。
func readConfigFile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file: %w", err)
	}

	raw := map[string]string{}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}

	values := make(map[string]string, len(raw))
	for key, value := range raw {
		values[strings.ToUpper(strings.TrimSpace(key))] = value
	}
	return values, nil
}

func splitList(value string) []string {
	parts := strings.Split(value, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}
