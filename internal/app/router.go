package app

import (
	"lms_backend/internal/config"
	"lms_backend/internal/middleware"
	"lms_backend/internal/model"
	"lms_backend/pkg/monitoring"

	"lms_backend/docs"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	// Prometheus 指标
	router.GET("/metrics", monitoring.PrometheusHandler())

	// Swagger 文档
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	api := router.Group("/api")
	{
		// 公开路由
		api.GET("/health", c.health.HealthCheck)
		api.POST("/register", c.auth.Register)
		api.POST("/login", c.auth.Login)

		// 课程目录匿名可读，带 token 时教师/管理员能看到未发布课程
		catalog := api.Group("")
		catalog.Use(middleware.TryAuthMiddleware(cfg))
		{
			catalog.GET("/courses", c.course.ListCourses)
			catalog.GET("/courses/:id", c.course.GetCourse)
		}

		// 需要登录的路由
		auth := api.Group("")
		auth.Use(middleware.AuthMiddleware(cfg))
		auth.Use(middleware.ActivityMiddleware(repos.user))
		{
			auth.GET("/profile", c.auth.GetProfile)
			auth.PUT("/user/profile", c.user.UpdateProfile)

			auth.POST("/courses/:id/enroll", c.enrollment.Enroll)
			auth.DELETE("/courses/:id/enroll", c.enrollment.Unenroll)

			auth.PUT("/progress/:lessonId", c.progress.RecordProgress)
			auth.GET("/progress", c.progress.GetMyProgress)
			auth.GET("/courses/:id/progress", c.progress.GetCourseProgress)

			auth.GET("/courses/:id/certificate", c.certificate.GetCourseCertificate)
			auth.GET("/certificates", c.certificate.ListMyCertificates)

			// 教师/管理员路由
			teacher := auth.Group("")
			teacher.Use(middleware.RoleMiddleware(model.Teacher))
			{
				teacher.GET("/teacher/courses", c.course.ListMyCourses)
				teacher.POST("/courses", c.course.CreateCourse)
				teacher.PUT("/courses/:id", c.course.UpdateCourse)
				teacher.DELETE("/courses/:id", c.course.DeleteCourse)

				teacher.POST("/courses/:id/lessons", c.course.CreateLesson)
				teacher.PUT("/lessons/:lessonId", c.course.UpdateLesson)
				teacher.POST("/lessons/:lessonId/video", c.course.UploadLessonVideo)

				teacher.GET("/courses/:id/students", c.course.GetRoster)
				teacher.POST("/courses/:id/students", c.enrollment.BatchEnroll)
				teacher.DELETE("/courses/:id/students/:studentId", c.enrollment.RemoveStudent)
			}

			// 管理员路由
			admin := auth.Group("/admin")
			admin.Use(middleware.RoleMiddleware(model.Admin))
			{
				admin.PUT("/users/:id/role", c.user.SetRole)
			}
		}
	}
}
