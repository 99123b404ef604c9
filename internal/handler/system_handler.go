package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/service"
)

// HealthCheck 提供监控系统使用的健康检查端点。
func (a *API) HealthCheck(c *gin.Context) {
	if a.db == nil {
		c.JSON(http.StatusOK, gin.H{"message": "pong", "database": "disabled"})
		return
	}

	sqlDB, err := a.db.DB()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"status":  "error",
			"message": "database handle unavailable",
		})
		return
	}

	if err := sqlDB.PingContext(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":  "error",
			"message": "database unreachable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "pong", "database": "up"})
}

func systemSettingsPayload(settings service.SystemSettings) gin.H {
	return gin.H{
		"aiProvider":   settings.AIProvider,
		"localBaseUrl": settings.LocalBaseURL,
		"localModel":   settings.LocalModel,
		"localApiKey":  service.MaskSecret(settings.LocalAPIKey),
		"geminiApiKey": service.MaskSecret(settings.GeminiAPIKey),
		"geminiModel":  settings.GeminiModel,
	}
}

// GetSystemSettings 返回当前系统设置，密钥以掩码形式返回。
func (a *API) GetSystemSettings(c *gin.Context) {
	settings, err := a.system.GetSettings()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}

	c.JSON(http.StatusOK, gin.H{"settings": systemSettingsPayload(settings)})
}

// UpdateSystemSettings 保存系统设置。
func (a *API) UpdateSystemSettings(c *gin.Context) {
	var payload service.SystemSettingsInput
	if !bindJSON(c, &payload, "invalid settings payload") {
		return
	}

	settings, err := a.system.UpdateSettings(payload)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrUnknownProvider):
			respondError(c, http.StatusBadRequest, "aiProvider must be local or gemini")
		case errors.Is(err, service.ErrSettingsUnavailable):
			respondError(c, http.StatusServiceUnavailable, "settings require a database storage engine")
		default:
			respondError(c, http.StatusInternalServerError, "failed to save settings")
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message":  "settings saved",
		"settings": systemSettingsPayload(settings),
	})
}

// TestAIConnection 用提交的设置测试文本生成后端的连通性。
func (a *API) TestAIConnection(c *gin.Context) {
	var payload service.SystemSettingsInput
	if !bindJSON(c, &payload, "invalid settings payload") {
		return
	}

	settings, err := a.system.Resolve(payload)
	if err != nil {
		if errors.Is(err, service.ErrUnknownProvider) {
			respondError(c, http.StatusBadRequest, "aiProvider must be local or gemini")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load settings")
		return
	}

	if err := a.system.TestAIConnection(c.Request.Context(), settings); err != nil {
		switch {
		case errors.Is(err, service.ErrAIAPIKeyMissing):
			respondError(c, http.StatusBadRequest, "an API key is required for this provider")
		default:
			respondError(c, http.StatusBadGateway, err.Error())
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "connection ok", "provider": settings.AIProvider})
}
