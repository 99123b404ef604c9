package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/plant"
)

const maxHistoryDays = 366

type moodRequest struct {
	Mood string `json:"mood"`
}

func plantPayload(record plant.Record) gin.H {
	return gin.H{
		"growth":          record.Growth,
		"chatCount":       record.ChatCount,
		"streak":          record.Streak,
		"currentMood":     record.CurrentMood,
		"plantName":       record.PlantName,
		"lastInteraction": record.LastInteraction,
		"growthStage":     plant.GrowthStage(record.Growth),
	}
}

// GetPlant 返回植物当前状态。
func (a *API) GetPlant(c *gin.Context) {
	c.JSON(http.StatusOK, plantPayload(a.plants.Snapshot()))
}

// SetMood 更新当前心情，心情日志在浇灌时写入。
func (a *API) SetMood(c *gin.Context) {
	var payload moodRequest
	if !bindJSON(c, &payload, "mood is required") {
		return
	}

	mood, err := plant.ParseMood(payload.Mood)
	if err != nil {
		respondError(c, http.StatusBadRequest, "mood must be one of sad, neutral, happy")
		return
	}

	record, err := a.plants.SetMood(c.Request.Context(), mood)
	if err != nil {
		if errors.Is(err, plant.ErrInvalidMood) {
			respondError(c, http.StatusBadRequest, "mood must be one of sad, neutral, happy")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update mood")
		return
	}

	c.JSON(http.StatusOK, plantPayload(record))
}

// GrowPlant 执行一次浇灌，返回本次成长结果与最新状态。
func (a *API) GrowPlant(c *gin.Context) {
	result := a.plants.Grow(c.Request.Context())

	payload := gin.H{
		"growthIncrement": result.GrowthIncrement,
		"newStreak":       result.NewStreak,
		"message":         result.Message,
		"applied":         result.Applied,
		"plant":           plantPayload(result.Plant),
	}
	if result.StreakBonus != "" {
		payload["streakBonus"] = result.StreakBonus
	}
	c.JSON(http.StatusOK, payload)
}

// MoodHistory 返回最近 N 天的心情日志，按日期升序。
func (a *API) MoodHistory(c *gin.Context) {
	days, err := parsePositiveQuery(c, "days", plant.DefaultHistoryDays)
	if err != nil || days > maxHistoryDays {
		respondError(c, http.StatusBadRequest, "days must be a positive integer up to 366")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"days": days,
		"logs": a.plants.MoodHistory(days),
	})
}

// Insights 返回最近一周的统计信息。
func (a *API) Insights(c *gin.Context) {
	insights := a.plants.Insights()
	c.JSON(http.StatusOK, gin.H{
		"weeklyHappyDays":   insights.WeeklyHappyDays,
		"averageWeeklyMood": insights.AverageWeeklyMood,
		"totalInteractions": insights.TotalInteractions,
		"currentStreak":     insights.CurrentStreak,
		"growthLevel":       insights.GrowthLevel,
		"moodLabel":         plant.MoodLabel(insights.AverageWeeklyMood),
	})
}
