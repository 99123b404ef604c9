package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/plantpal/internal/db"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	// AIProviderLocal 表示本地 OpenAI 兼容接口（LM Studio 等）。
	AIProviderLocal = "local"
	// AIProviderGemini 表示 Google Gemini。
	AIProviderGemini = "gemini"

	DefaultLocalBaseURL = "http://localhost:1234/v1"
	DefaultLocalModel   = "gpt-oss-20b"
	DefaultGeminiModel  = "gemini-1.5-flash"
)

var supportedAIProviders = []string{AIProviderLocal, AIProviderGemini}

// SystemSettings 描述后台可配置的文本生成设置。
type SystemSettings struct {
	AIProvider   string `json:"aiProvider"`
	LocalBaseURL string `json:"localBaseUrl"`
	LocalModel   string `json:"localModel"`
	LocalAPIKey  string `json:"localApiKey"`
	GeminiAPIKey string `json:"geminiApiKey"`
	GeminiModel  string `json:"geminiModel"`
}

// ErrAIAPIKeyMissing 表示未提供必需的 AI 平台 API Key。
var ErrAIAPIKeyMissing = errors.New("api key is required")

// ErrUnknownProvider 表示配置了不支持的文本生成后端。
var ErrUnknownProvider = errors.New("unknown ai provider")

// ErrSettingsUnavailable 表示当前存储引擎没有数据库，设置只能来自配置。
var ErrSettingsUnavailable = errors.New("settings storage is not available")

// SystemSettingsInput 用于更新系统设置。
type SystemSettingsInput struct {
	AIProvider   string `json:"aiProvider"`
	LocalBaseURL string `json:"localBaseUrl"`
	LocalModel   string `json:"localModel"`
	LocalAPIKey  string `json:"localApiKey"`
	GeminiAPIKey string `json:"geminiApiKey"`
	GeminiModel  string `json:"geminiModel"`
}

// SystemSettingService 提供系统设置的读取与更新能力。
// db 为空时只返回构造时给定的默认值。
type SystemSettingService struct {
	db         *gorm.DB
	defaults   SystemSettings
	httpClient httpDoer
	gemini     geminiGenerator
}

// NewSystemSettingService 构造 SystemSettingService，defaults 通常来自环境变量。
func NewSystemSettingService(gdb *gorm.DB, defaults SystemSettings) *SystemSettingService {
	return &SystemSettingService{
		db:         gdb,
		defaults:   sanitizeSettings(defaults),
		httpClient: &http.Client{Timeout: 10 * time.Second},
		gemini:     newGenAIGenerator(nil),
	}
}

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

var settingKeys = []interface{}{
	db.SettingKeyAIProvider,
	db.SettingKeyLocalBaseURL,
	db.SettingKeyLocalModel,
	db.SettingKeyLocalAPIKey,
	db.SettingKeyGeminiAPIKey,
	db.SettingKeyGeminiModel,
}

// GetSettings 读取系统设置，数据库中未设置的项使用默认值。
func (s *SystemSettingService) GetSettings() (SystemSettings, error) {
	result := s.defaults
	if s.db == nil {
		return result, nil
	}

	var records []db.SystemSetting
	if err := s.db.Where(clause.IN{Column: clause.Column{Name: "key"}, Values: settingKeys}).Find(&records).Error; err != nil {
		return result, fmt.Errorf("load system settings: %w", err)
	}

	for _, record := range records {
		value := strings.TrimSpace(record.Value)
		switch record.Key {
		case db.SettingKeyAIProvider:
			if provider := normalizeAIProvider(value); provider != "" {
				result.AIProvider = provider
			}
		case db.SettingKeyLocalBaseURL:
			if value != "" {
				result.LocalBaseURL = strings.TrimRight(value, "/")
			}
		case db.SettingKeyLocalModel:
			if value != "" {
				result.LocalModel = value
			}
		case db.SettingKeyLocalAPIKey:
			result.LocalAPIKey = value
		case db.SettingKeyGeminiAPIKey:
			if value != "" {
				result.GeminiAPIKey = value
			}
		case db.SettingKeyGeminiModel:
			if value != "" {
				result.GeminiModel = value
			}
		}
	}

	return result, nil
}

// Resolve 把输入合并为完整设置：校验后端名称，掩码密钥还原为当前值，留空项回退默认值。
func (s *SystemSettingService) Resolve(input SystemSettingsInput) (SystemSettings, error) {
	current, err := s.GetSettings()
	if err != nil {
		return SystemSettings{}, err
	}

	provider := current.AIProvider
	if raw := strings.TrimSpace(input.AIProvider); raw != "" {
		provider = normalizeAIProvider(raw)
		if provider == "" {
			return SystemSettings{}, fmt.Errorf("%w: %s", ErrUnknownProvider, raw)
		}
	}

	return sanitizeSettings(SystemSettings{
		AIProvider:   provider,
		LocalBaseURL: input.LocalBaseURL,
		LocalModel:   input.LocalModel,
		LocalAPIKey:  unmaskSecret(input.LocalAPIKey, current.LocalAPIKey),
		GeminiAPIKey: unmaskSecret(input.GeminiAPIKey, current.GeminiAPIKey),
		GeminiModel:  input.GeminiModel,
	}), nil
}

// UpdateSettings 保存系统设置，留空的地址与模型回退默认值。
func (s *SystemSettingService) UpdateSettings(input SystemSettingsInput) (SystemSettings, error) {
	if s.db == nil {
		return SystemSettings{}, ErrSettingsUnavailable
	}

	sanitized, err := s.Resolve(input)
	if err != nil {
		return SystemSettings{}, err
	}

	values := map[string]string{
		db.SettingKeyAIProvider:   sanitized.AIProvider,
		db.SettingKeyLocalBaseURL: sanitized.LocalBaseURL,
		db.SettingKeyLocalModel:   sanitized.LocalModel,
		db.SettingKeyLocalAPIKey:  sanitized.LocalAPIKey,
		db.SettingKeyGeminiAPIKey: sanitized.GeminiAPIKey,
		db.SettingKeyGeminiModel:  sanitized.GeminiModel,
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		for _, key := range settingKeys {
			name := key.(string)
			if err := upsertSetting(tx, name, values[name]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return SystemSettings{}, fmt.Errorf("update system settings: %w", err)
	}

	return s.GetSettings()
}

func upsertSetting(tx *gorm.DB, key, value string) error {
	setting := db.SystemSetting{Key: key, Value: value}
	if err := tx.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "key"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"value":      value,
			"updated_at": gorm.Expr("CURRENT_TIMESTAMP"),
		}),
	}).Create(&setting).Error; err != nil {
		return fmt.Errorf("upsert setting %s: %w", key, err)
	}
	return nil
}

// SetHTTPClient 替换用于访问第三方服务的 HTTP 客户端，主要面向测试场景。
func (s *SystemSettingService) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.httpClient = &http.Client{Timeout: 10 * time.Second}
		return
	}
	s.httpClient = client
}

// TestAIConnection 验证给定设置下的文本生成后端是否可用。
// 本地接口请求 /models，Gemini 查询模型信息。
func (s *SystemSettingService) TestAIConnection(ctx context.Context, settings SystemSettings) error {
	settings = sanitizeSettings(settings)

	switch settings.AIProvider {
	case AIProviderGemini:
		if settings.GeminiAPIKey == "" {
			return ErrAIAPIKeyMissing
		}
		if s.gemini == nil {
			return fmt.Errorf("%w: gemini", ErrUnknownProvider)
		}
		return s.gemini.Ping(ctx, settings.GeminiAPIKey, settings.GeminiModel)
	case AIProviderLocal:
		return s.testLocal(ctx, settings)
	default:
		return fmt.Errorf("%w: %s", ErrUnknownProvider, settings.AIProvider)
	}
}

func (s *SystemSettingService) testLocal(ctx context.Context, settings SystemSettings) error {
	client := s.httpClient
	if client == nil {
		client = http.DefaultClient
	}

	endpoint := settings.LocalBaseURL + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("build local llm request: %w", err)
	}
	if settings.LocalAPIKey != "" {
		req.Header.Set("Authorization", "Bearer "+settings.LocalAPIKey)
	}
	req.Header.Set("User-Agent", "plantpal-admin/1.0")

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("request local llm: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		msg := strings.TrimSpace(string(body))
		if msg != "" {
			return fmt.Errorf("local llm returned %s (%s)", resp.Status, msg)
		}
		return fmt.Errorf("local llm returned %s", resp.Status)
	}

	return nil
}

func sanitizeSettings(settings SystemSettings) SystemSettings {
	settings.AIProvider = normalizeAIProvider(settings.AIProvider)
	if settings.AIProvider == "" {
		settings.AIProvider = AIProviderLocal
	}
	settings.LocalBaseURL = strings.TrimRight(strings.TrimSpace(settings.LocalBaseURL), "/")
	if settings.LocalBaseURL == "" {
		settings.LocalBaseURL = DefaultLocalBaseURL
	}
	settings.LocalModel = strings.TrimSpace(settings.LocalModel)
	if settings.LocalModel == "" {
		settings.LocalModel = DefaultLocalModel
	}
	settings.LocalAPIKey = strings.TrimSpace(settings.LocalAPIKey)
	settings.GeminiAPIKey = strings.TrimSpace(settings.GeminiAPIKey)
	settings.GeminiModel = strings.TrimSpace(settings.GeminiModel)
	if settings.GeminiModel == "" {
		settings.GeminiModel = DefaultGeminiModel
	}
	return settings
}

func normalizeAIProvider(provider string) string {
	trimmed := strings.ToLower(strings.TrimSpace(provider))
	for _, candidate := range supportedAIProviders {
		if trimmed == candidate {
			return candidate
		}
	}
	return ""
}

// MaskSecret 只保留密钥末尾四位，用于接口返回。
func MaskSecret(secret string) string {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return ""
	}
	runes := []rune(secret)
	if len(runes) <= 4 {
		return strings.Repeat("*", len(runes))
	}
	return strings.Repeat("*", len(runes)-4) + string(runes[len(runes)-4:])
}

// unmaskSecret 在客户端回传掩码值时保留原密钥。
func unmaskSecret(input, current string) string {
	input = strings.TrimSpace(input)
	if input != "" && input == MaskSecret(current) {
		return current
	}
	return input
}
