package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/taleemhub/school-admin-api/internal/middleware"
	"github.com/taleemhub/school-admin-api/internal/service"
	"github.com/taleemhub/school-admin-api/pkg/config"
	"github.com/taleemhub/school-admin-api/pkg/logger"
	corsmiddleware "github.com/taleemhub/school-admin-api/pkg/middleware/cors"
	reqidmiddleware "github.com/taleemhub/school-admin-api/pkg/middleware/requestid"
	"go.uber.org/zap"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth       *AuthHandler
	Profiles   *ProfileHandler
	Students   *StudentHandler
	Classes    *ClassHandler
	Attendance *AttendanceHandler
	Exams      *ExamHandler
	Content    *ContentHandler
	Uploads    *UploadHandler
	Exports    *ExportHandler
}

// RouterDeps carries cross-cutting dependencies for route setup.
type RouterDeps struct {
	Config     *config.Config
	Logger     *zap.Logger
	Auth       *service.AuthService
	Metrics    *service.MetricsService
	Ready      func() error
	UploadsDir string
}

// NewRouter builds the gin engine with all middleware and routes mounted.
func NewRouter(h Handlers, deps RouterDeps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(deps.Logger))
	r.Use(corsmiddleware.New(deps.Config.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(deps.Metrics))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/ready", func(c *gin.Context) {
		if deps.Ready != nil {
			if err := deps.Ready(); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
	r.GET("/metrics", gin.WrapH(deps.Metrics.Handler()))

	if deps.Config.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	if deps.UploadsDir != "" {
		r.Static("/uploads", deps.UploadsDir)
	}

	api := r.Group(deps.Config.APIPrefix)

	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
		auth.POST("/logout", h.Auth.Logout)
	}

	protected := api.Group("")
	protected.Use(middleware.Session(deps.Auth), middleware.RequireAdmin())
	{
		profiles := protected.Group("/profiles")
		{
			profiles.GET("", h.Profiles.List)
			profiles.POST("", h.Profiles.Create)
			profiles.POST("/export", h.Profiles.ExportCSV)
			profiles.GET("/:id", h.Profiles.Get)
			profiles.PUT("/:id", h.Profiles.Update)
			profiles.DELETE("/:id", h.Profiles.Delete)
			profiles.POST("/:id/unlink", h.Profiles.Unlink)
		}

		students := protected.Group("/students")
		{
			students.GET("", h.Students.List)
			students.POST("", h.Students.Create)
			students.GET("/:id", h.Students.Get)
			students.PUT("/:id", h.Students.Update)
			students.DELETE("/:id", h.Students.Delete)
		}

		classes := protected.Group("/classes")
		{
			classes.GET("", h.Classes.List)
			classes.GET("/names", h.Classes.Names)
			classes.POST("", h.Classes.Create)
			classes.GET("/:id", h.Classes.Get)
			classes.PUT("/:id", h.Classes.Update)
			classes.DELETE("/:id", h.Classes.Delete)
		}

		attendance := protected.Group("/attendance")
		{
			attendance.POST("/mark", h.Attendance.Mark)
			attendance.GET("/:subjectId", h.Attendance.History)
			attendance.PUT("/:subjectId/entries", h.Attendance.EditEntry)
			attendance.GET("/:subjectId/summary", h.Attendance.Summary)
		}

		exams := protected.Group("/exams")
		{
			exams.GET("", h.Exams.List)
			exams.POST("", h.Exams.Create)
			exams.POST("/export", h.Exams.ExportCSV)
			exams.GET("/:id", h.Exams.Get)
			exams.PUT("/:id", h.Exams.Update)
			exams.DELETE("/:id", h.Exams.Delete)
		}

		blogs := protected.Group("/blogs")
		{
			blogs.GET("", h.Content.ListBlogs)
			blogs.POST("", h.Content.CreateBlog)
			blogs.GET("/:id", h.Content.GetBlog)
			blogs.PUT("/:id", h.Content.UpdateBlog)
			blogs.DELETE("/:id", h.Content.DeleteBlog)
		}

		ads := protected.Group("/ads")
		{
			ads.GET("", h.Content.ListAds)
			ads.POST("", h.Content.CreateAd)
			ads.GET("/:id", h.Content.GetAd)
			ads.PUT("/:id", h.Content.UpdateAd)
			ads.DELETE("/:id", h.Content.DeleteAd)
		}

		settings := protected.Group("/settings")
		{
			settings.GET("/mining-rate", h.Content.GetMiningRate)
			settings.PUT("/mining-rate", h.Content.SetMiningRate)
		}

		uploads := protected.Group("/uploads")
		{
			uploads.POST("", h.Uploads.Upload)
			uploads.DELETE("/:name", h.Uploads.Delete)
		}

		protected.POST("/exports/attendance", h.Exports.AttendancePDF)
	}

	// Download links are pre-signed; no session required.
	api.GET("/exports/download", h.Exports.Download)

	return r
}
