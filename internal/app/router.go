package app

import (
	"quiz_backend/internal/config"
	"quiz_backend/internal/middleware"
	"quiz_backend/internal/model"
	"quiz_backend/internal/util"
	"quiz_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg))
	{
		a.registerQuizRoutes(authGroup, c)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, cfg)

	router.NoRoute(util.NotFound)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}
}

func (a *App) registerQuizRoutes(group *gin.RouterGroup, c *controllers) {
	group.GET("/profile", c.auth.GetProfile)

	topics := group.Group("/topics")
	{
		topics.GET("", c.topic.ListTopics)
		topics.GET("/:id", c.topic.GetTopic)
		topics.POST("/:id/start", c.topic.StartTopic)
		topics.GET("/:id/questions/:number", c.topic.GetQuestion)
		topics.POST("/:id/questions/:number", c.topic.SubmitAnswer)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, cfg *config.Config) {
	admin := router.Group("/api/admin")
	admin.Use(middleware.AuthMiddleware(cfg), middleware.RoleMiddleware(model.Admin))
	{
		admin.GET("/questions", c.admin.ListQuestions)
		admin.POST("/questions", c.admin.CreateQuestion)
		admin.GET("/questions/:id", c.admin.GetQuestion)
		admin.PUT("/questions/:id", c.admin.UpdateQuestion)
		admin.DELETE("/questions/:id", c.admin.DeleteQuestion)

		admin.POST("/topics", c.admin.CreateTopic)
		admin.PUT("/topics/:id", c.admin.UpdateTopic)
		admin.DELETE("/topics/:id", c.admin.DeleteTopic)
		admin.GET("/topics/:id/links", c.admin.ListLinks)
		admin.PUT("/topics/:id/links/:questionId", c.admin.SetLink)
		admin.DELETE("/topics/:id/links/:questionId", c.admin.RemoveLink)

		admin.GET("/attempts", c.admin.ListAttempts)

		admin.GET("/users", c.user.GetUsers)
		admin.PUT("/users/:id/disabled", c.user.DisableUser)
		admin.PUT("/users/:id/role", c.user.SetRole)
	}
}
