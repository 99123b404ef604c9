package db

import "gorm.io/gorm"

// SystemSetting 存储后台可配置的系统级键值对。
type SystemSetting struct {
	gorm.Model
	Key   string `gorm:"size:100;uniqueIndex;not null"`
	Value string `gorm:"type:text"`
}

// TableName 自定义表名以保持命名一致。
func (SystemSetting) TableName() string {
	return "system_settings"
}

const (
	// SettingKeyAIProvider 表示当前使用的文本生成后端。
	SettingKeyAIProvider = "ai_provider"
	// SettingKeyLocalBaseURL 表示本地 OpenAI 兼容接口地址。
	SettingKeyLocalBaseURL = "local_llm_base_url"
	// SettingKeyLocalModel 表示本地模型名称。
	SettingKeyLocalModel = "local_llm_model"
	// SettingKeyLocalAPIKey 表示本地接口可选的 API Key。
	SettingKeyLocalAPIKey = "local_llm_api_key"
	// SettingKeyGeminiAPIKey 表示 Gemini API Key。
	SettingKeyGeminiAPIKey = "gemini_api_key"
	// SettingKeyGeminiModel 表示 Gemini 模型名称。
	SettingKeyGeminiModel = "gemini_model"
)
