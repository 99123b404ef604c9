package handler

import (
	"net/http"
	"strings"
	"unicode/utf8"

	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/plant"
	"github.com/plantpal/internal/service"
)

const maxChatMessageRunes = 2000

type chatRequest struct {
	Message string `json:"message"`
}

// Chat 把用户消息交给植物，后端不可用时返回兜底回复。
func (a *API) Chat(c *gin.Context) {
	var payload chatRequest
	if !bindJSON(c, &payload, "message is required") {
		return
	}

	message := strings.TrimSpace(payload.Message)
	if message == "" {
		respondError(c, http.StatusBadRequest, "message is required")
		return
	}
	if utf8.RuneCountInString(message) > maxChatMessageRunes {
		respondError(c, http.StatusBadRequest, "message is too long")
		return
	}

	record := a.plants.Snapshot()
	reply := a.companion.Reply(c.Request.Context(), service.ReplyInput{
		UserText:  message,
		Mood:      record.CurrentMood,
		Growth:    record.Growth,
		Streak:    record.Streak,
		PlantName: record.PlantName,
	})

	c.JSON(http.StatusOK, reply)
}

// GetMotivation 返回今日笑话、感想与建议，默认使用当前心情。
func (a *API) GetMotivation(c *gin.Context) {
	mood, ok := a.motivationMood(c)
	if !ok {
		return
	}

	motivation, err := a.motivation.Daily(c.Request.Context(), mood)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, motivation)
}

// RefreshMotivation 重新生成今日内容。
func (a *API) RefreshMotivation(c *gin.Context) {
	mood, ok := a.motivationMood(c)
	if !ok {
		return
	}

	motivation, err := a.motivation.Refresh(c.Request.Context(), mood)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}
	c.JSON(http.StatusOK, motivation)
}

func (a *API) motivationMood(c *gin.Context) (plant.Mood, bool) {
	raw := strings.TrimSpace(c.Query("mood"))
	if raw == "" {
		return a.plants.Snapshot().CurrentMood, true
	}
	mood, err := plant.ParseMood(raw)
	if err != nil {
		respondError(c, http.StatusBadRequest, "mood must be one of sad, neutral, happy")
		return "", false
	}
	return mood, true
}
