package logging

import (
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const (
	ModeDevelopment = "development"
	ModeProduction  = "production"
)

// New 根据模式构造 zap logger：development 输出彩色控制台，其余输出 JSON。
func New(mode string) (*zap.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case ModeDevelopment, "dev", "debug":
		return zap.NewDevelopment()
	default:
		return zap.NewProduction()
	}
}

// Must 与 New 相同，但构造失败时退回 zap.NewNop。
func Must(mode string) *zap.Logger {
	logger, err := New(mode)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// Middleware 返回使用 zap 记录每个请求的 gin 中间件。
func Middleware(log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("ip", c.ClientIP()),
		}
		if errs := c.Errors.ByType(gin.ErrorTypePrivate).String(); errs != "" {
			fields = append(fields, zap.String("errors", errs))
		}

		switch status := c.Writer.Status(); {
		case status >= 500:
			log.Error("request", fields...)
		case status >= 400:
			log.Warn("request", fields...)
		default:
			log.Info("request", fields...)
		}
	}
}
