package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	_ "github.com/taleemhub/school-admin-api/api/swagger"
	"github.com/taleemhub/school-admin-api/internal/handler"
	"github.com/taleemhub/school-admin-api/internal/repository"
	"github.com/taleemhub/school-admin-api/internal/service"
	"github.com/taleemhub/school-admin-api/internal/store"
	"github.com/taleemhub/school-admin-api/pkg/cache"
	"github.com/taleemhub/school-admin-api/pkg/config"
	"github.com/taleemhub/school-admin-api/pkg/database"
	"github.com/taleemhub/school-admin-api/pkg/logger"
	"github.com/taleemhub/school-admin-api/pkg/storage"
)

// @title School Admin API
// @version 1.0.0
// @description Admin dashboard backend: profiles with referral links, classes, students, attendance registers, exams, content and exports.
// @BasePath /api/v1
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to postgres", "error", err)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	recordStore := store.NewPostgresStore(db)
	if err := recordStore.EnsureSchema(ctx); err != nil {
		cancel()
		logr.Sugar().Fatalw("failed to ensure schema", "error", err)
	}
	cancel()

	redisClient, err := cache.NewRedis(cfg.Redis)
	if err != nil {
		logr.Sugar().Fatalw("failed to connect to redis", "error", err)
	}
	defer redisClient.Close()

	uploadStore, err := storage.NewFileStore(cfg.Uploads.Dir, cfg.Uploads.PublicBaseURL)
	if err != nil {
		logr.Sugar().Fatalw("failed to init upload storage", "error", err)
	}
	exportStore, err := storage.NewFileStore(cfg.Exports.Dir, "")
	if err != nil {
		logr.Sugar().Fatalw("failed to init export storage", "error", err)
	}
	signer := storage.NewSignedURLSigner(cfg.Exports.SignedURLSecret, cfg.Exports.SignedURLTTL)

	metricsSvc := service.NewMetricsService()
	documents := store.NewInstrumentedStore(recordStore, metricsSvc)

	profileRepo := repository.NewProfileRepository(documents)
	studentRepo := repository.NewStudentRepository(documents)
	classRepo := repository.NewClassRepository(documents)
	attendanceRepo := repository.NewAttendanceRepository(documents)
	examRepo := repository.NewExamRepository(documents)
	contentRepo := repository.NewContentRepository(documents)
	sessionRepo := repository.NewSessionRepository(redisClient)

	validate := validator.New()

	referralSvc := service.NewReferralService(profileRepo, metricsSvc, logr)
	profileSvc := service.NewProfileService(profileRepo, referralSvc, sessionRepo, validate, logr)
	studentSvc := service.NewStudentService(studentRepo, classRepo, validate, logr)
	classSvc := service.NewClassService(classRepo, attendanceRepo, validate, logr)
	attendanceSvc := service.NewAttendanceService(attendanceRepo, validate, logr)
	examSvc := service.NewExamService(examRepo, studentRepo, classRepo, validate, logr)
	contentSvc := service.NewContentService(contentRepo, validate, logr)
	authSvc := service.NewAuthService(profileRepo, sessionRepo, cfg.Session, validate, logr)
	exportSvc := service.NewExportService(profileRepo, examRepo, attendanceRepo, exportStore, signer, logr)

	if cfg.Session.AdminEmail != "" && cfg.Session.AdminPassword != "" {
		seedCtx, seedCancel := context.WithTimeout(context.Background(), 10*time.Second)
		err := authSvc.EnsureOperator(seedCtx, cfg.Session.AdminName, cfg.Session.AdminEmail, cfg.Session.AdminPassword)
		seedCancel()
		if err != nil {
			logr.Sugar().Fatalw("failed to provision operator profile", "error", err)
		}
	} else {
		logr.Warn("no operator account configured; set ADMIN_EMAIL and ADMIN_PASSWORD to provision one")
	}

	handlers := handler.Handlers{
		Auth:       handler.NewAuthHandler(authSvc),
		Profiles:   handler.NewProfileHandler(profileSvc, exportSvc),
		Students:   handler.NewStudentHandler(studentSvc),
		Classes:    handler.NewClassHandler(classSvc),
		Attendance: handler.NewAttendanceHandler(attendanceSvc, metricsSvc),
		Exams:      handler.NewExamHandler(examSvc, exportSvc),
		Content:    handler.NewContentHandler(contentSvc),
		Uploads:    handler.NewUploadHandler(uploadStore, cfg.Uploads),
		Exports:    handler.NewExportHandler(exportSvc, exportStore),
	}

	r := handler.NewRouter(handlers, handler.RouterDeps{
		Config:  cfg,
		Logger:  logr,
		Auth:    authSvc,
		Metrics: metricsSvc,
		Ready: func() error {
			if err := db.Ping(); err != nil {
				return err
			}
			pingCtx, pingCancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer pingCancel()
			return redisClient.Ping(pingCtx).Err()
		},
		UploadsDir: uploadStore.BaseDir(),
	})

	addr := fmt.Sprintf(":%d", cfg.Port)
	logr.Sugar().Infow("server starting", "addr", addr, "env", cfg.Env)
	if err := r.Run(addr); err != nil {
		logr.Sugar().Fatalw("server failed", "error", err)
	}
}
