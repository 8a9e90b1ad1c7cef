package app

import (
	"mindtrack_backend/docs"
	"mindtrack_backend/internal/config"
	"mindtrack_backend/internal/middleware"
	"mindtrack_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 1. 公共路由(无需登录)
	a.registerPublicRoutes(router, c)

	// 2. 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(&cfg.Auth))
	{
		a.registerUserRoutes(authGroup, c, s)
	}

	// 3. 管理员相关接口
	a.registerAdminRoutes(router, c, s, cfg)
}

func (a *App) registerPublicRoutes(router *gin.Engine, c *controllers) {
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)

		// 题库
		public.GET("/questions", c.question.ListQuestions)
		public.GET("/questions/:question_id", c.question.GetQuestion)
		public.GET("/categories", c.question.ListCategories)
		public.GET("/sheets", c.question.ListSheets)
		public.GET("/companies", c.question.ListCompanies)

		// 排行榜与统计
		public.GET("/leaderboard", c.leaderboard.GetLeaderboard)
		public.GET("/user-stats", c.user.GetUserStats)
		public.GET("/users/:user_id", c.user.GetUser)
		public.GET("/users/:user_id/summary", c.user.GetSummary)
		public.GET("/users/:user_id/progress", c.user.GetProgress)
		public.GET("/registrations/:user_id", c.registration.GetRegistration)
	}
}

func (a *App) registerUserRoutes(group *gin.RouterGroup, c *controllers, s *services) {
	group.POST("/progress", c.progress.UpdateProgress)
	group.POST("/registrations", c.registration.SubmitRegistration)

	self := group.Group("/users/:user_id")
	self.Use(middleware.SelfOrAdmin(s.access, "user_id"))
	{
		self.GET("/profile", c.profile.GetProfile)
		self.PUT("/profile", c.profile.EnsureProfile)

		tasks := self.Group("/tasks")
		tasks.GET("", c.task.ListTasks)
		tasks.POST("", c.task.CreateTask)
		tasks.PATCH("/:task_id", c.task.UpdateTask)
		tasks.DELETE("/:task_id", c.task.DeleteTask)
		tasks.POST("/:task_id/toggle", c.task.ToggleTask)
		tasks.POST("/:task_id/subtasks", c.task.AddSubtask)
		tasks.POST("/:task_id/subtasks/:subtask_id/toggle", c.task.ToggleSubtask)
		tasks.DELETE("/:task_id/subtasks/:subtask_id", c.task.DeleteSubtask)
	}
}

func (a *App) registerAdminRoutes(router *gin.Engine, c *controllers, s *services, cfg *config.Config) {
	admin := router.Group("/api")
	admin.Use(middleware.AuthMiddleware(&cfg.Auth), middleware.AdminMiddleware(s.access))
	{
		admin.GET("/users", c.user.ListUsers)
		admin.PATCH("/users/:user_id", c.user.PatchUser)
		admin.POST("/verify-user", c.user.VerifyUser)
		admin.POST("/delete-user", c.user.DeleteUser)

		admin.GET("/registrations", c.registration.ListRegistrations)
		admin.PATCH("/registrations/:user_id", c.registration.UpdateRegistrationStatus)
		admin.DELETE("/registrations/:user_id", c.registration.DeleteRegistration)
	}
}
