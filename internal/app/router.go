package app

import (
	"mandarin_edu_backend/docs"
	"mandarin_edu_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	api := router.Group("/api")
	{
		api.GET("/health", c.health.HealthCheck)

		// 发音分析工作流
		pronunciation := api.Group("/pronunciation")
		{
			pronunciation.POST("/analyze", c.pronunciation.Analyze)
			pronunciation.GET("/attempts", c.pronunciation.ListAttempts)
			pronunciation.GET("/attempts/:id", c.pronunciation.GetAttempt)
			pronunciation.GET("/stats", c.pronunciation.GetStats)
		}

		// 语音合成（独立功能）
		api.POST("/tts/synthesize", c.tts.Synthesize)
	}
}
