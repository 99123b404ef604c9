package router

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/plantpal/internal/handler"
	"github.com/plantpal/internal/logging"
	"go.uber.org/zap"
)

// Options 汇总构建路由所需的配置。
type Options struct {
	SessionSecret string
	CORSOrigins   []string
	Logger        *zap.Logger
}

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, opts Options) *gin.Engine {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	r := gin.New()
	r.HandleMethodNotAllowed = true
	r.Use(gin.Recovery())
	r.Use(logging.Middleware(log))
	r.Use(cors.New(corsConfig(opts.CORSOrigins)))

	// 配置会话中间件
	secret := opts.SessionSecret
	if secret == "" {
		secret = "plantpal-dev-secret"
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{Path: "/", MaxAge: 7 * 24 * 60 * 60, HttpOnly: true})
	r.Use(sessions.Sessions("plantpal_session", store))

	r.GET("/ping", api.HealthCheck)

	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/plant", api.GetPlant)
		apiGroup.PUT("/plant/mood", api.SetMood)
		apiGroup.POST("/plant/grow", api.GrowPlant)
		apiGroup.GET("/plant/history", api.MoodHistory)
		apiGroup.GET("/plant/insights", api.Insights)

		apiGroup.POST("/chat", api.Chat)

		apiGroup.GET("/motivation", api.GetMotivation)
		apiGroup.POST("/motivation/refresh", api.RefreshMotivation)

		// 后台管理路由
		admin := apiGroup.Group("/admin")
		{
			admin.POST("/login", api.Login)
			admin.POST("/logout", api.Logout)

			auth := admin.Group("")
			auth.Use(handler.AuthRequired())
			{
				auth.GET("/settings", api.GetSystemSettings)
				auth.PUT("/settings", api.UpdateSystemSettings)
				auth.POST("/settings/test", api.TestAIConnection)
			}
		}
	}

	return r
}

func corsConfig(origins []string) cors.Config {
	config := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
	}
	if len(origins) == 0 {
		config.AllowOriginFunc = func(string) bool { return true }
		return config
	}
	config.AllowOrigins = origins
	return config
}
