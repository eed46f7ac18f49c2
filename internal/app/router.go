package app

import (
	"examhub_backend/docs"
	"examhub_backend/internal/config"
	"examhub_backend/internal/middleware"
	"examhub_backend/internal/model"
	"examhub_backend/pkg/monitoring"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func (a *App) registerRoutes(router *gin.Engine, c *controllers, repos *repositories, cfg *config.Config) {
	docs.SwaggerInfo.BasePath = "/api"
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.URL("/swagger/doc.json")))

	router.GET("/metrics", monitoring.PrometheusHandler())

	// 公共路由（无需登录）
	public := router.Group("/api")
	{
		public.GET("/health", c.health.HealthCheck)
		public.POST("/register", c.auth.Register)
		public.POST("/login", c.auth.Login)
	}

	// 需要授权的路由
	authGroup := router.Group("/api")
	authGroup.Use(middleware.AuthMiddleware(cfg, repos.user), middleware.ActivityMiddleware(repos.user))
	{
		authGroup.GET("/profile", c.auth.GetProfile)
		authGroup.PUT("/user/profile", c.user.UpdateProfile)
		authGroup.POST("/user/avatar/upload", c.user.UploadAvatar)

		// 课程与学期（读接口对所有登录用户开放）
		authGroup.GET("/courses", c.course.ListCourses)
		authGroup.GET("/courses/:id", c.course.GetCourse)
		authGroup.GET("/courses/:id/sessions", c.course.ListSessions)

		// 学生：选课、考试、作答、成绩
		authGroup.POST("/sessions/:sessionId/enroll", c.enrollment.Enroll)
		authGroup.DELETE("/sessions/:sessionId/enroll", c.enrollment.Drop)
		authGroup.GET("/exams", c.exam.ListMyExams)
		authGroup.GET("/exams/:id", c.exam.GetExam)
		authGroup.POST("/exams/:id/attempts", c.attempt.StartAttempt)
		authGroup.GET("/attempts", c.attempt.ListMyAttempts)
		authGroup.GET("/attempts/:id", c.attempt.GetAttempt)
		authGroup.PUT("/attempts/:id/answers/:questionId", c.attempt.SubmitAnswer)
		authGroup.POST("/attempts/:id/submit", c.attempt.SubmitAttempt)
		authGroup.GET("/attempts/:id/result", c.result.GetResult)

		// 教师：建课、出卷、发布、阅卷
		teacher := authGroup.Group("/")
		teacher.Use(middleware.RoleMiddleware(model.Teacher))
		{
			teacher.POST("/courses", c.course.CreateCourse)
			teacher.PUT("/courses/:id", c.course.UpdateCourse)
			teacher.POST("/courses/:id/sessions", c.course.CreateSession)
			teacher.POST("/sessions/:sessionId/archive", c.course.ArchiveSession)
			teacher.GET("/sessions/:sessionId/enrollments", c.enrollment.ListBySession)

			teacher.POST("/sessions/:sessionId/exams", c.exam.CreateExam)
			teacher.GET("/sessions/:sessionId/exams", c.exam.ListSessionExams)
			teacher.PUT("/exams/:id", c.exam.UpdateExam)
			teacher.DELETE("/exams/:id", c.exam.DeleteExam)
			teacher.POST("/exams/:id/publish", c.exam.PublishExam)
			teacher.POST("/exams/:id/close", c.exam.CloseExam)
			teacher.POST("/exams/:id/reopen", c.exam.ReopenExam)
			teacher.POST("/exam-covers/upload", c.exam.UploadCover)

			teacher.POST("/exams/:id/questions", c.exam.AddQuestion)
			teacher.GET("/exams/:id/questions", c.exam.ListQuestions)
			teacher.PUT("/questions/:questionId", c.exam.UpdateQuestion)
			teacher.DELETE("/questions/:questionId", c.exam.DeleteQuestion)

			teacher.GET("/exams/:id/grading/pending", c.grading.ListPending)
			teacher.POST("/attempts/:id/grading/:questionId", c.grading.Resolve)
		}

		// 管理员
		admin := authGroup.Group("/admin")
		admin.Use(middleware.RoleMiddleware(model.Admin))
		{
			admin.GET("/users", c.user.ListUsers)
			admin.PUT("/users/:id/disabled", c.user.SetDisabled)
		}
	}
}
