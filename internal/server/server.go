package server

import (
	"net/http"
	"strings"
	"time"

	"vocalstudio.app/backend/internal/config"
	"vocalstudio.app/backend/internal/entity"
	"vocalstudio.app/backend/internal/middleware"
	"vocalstudio.app/backend/pkg/ratelimiter"
	"vocalstudio.app/backend/pkg/storage"
	"vocalstudio.app/backend/pkg/token"

	adminHttp "vocalstudio.app/backend/internal/modules/admin/delivery/http"
	adminService "vocalstudio.app/backend/internal/modules/admin/service"

	feedbackHttp "vocalstudio.app/backend/internal/modules/feedback/delivery/http"
	feedbackRepo "vocalstudio.app/backend/internal/modules/feedback/repository"
	feedbackService "vocalstudio.app/backend/internal/modules/feedback/service"

	fileHttp "vocalstudio.app/backend/internal/modules/file/delivery/http"
	fileRepo "vocalstudio.app/backend/internal/modules/file/repository"
	fileService "vocalstudio.app/backend/internal/modules/file/service"

	lessonHttp "vocalstudio.app/backend/internal/modules/lesson/delivery/http"
	lessonRepo "vocalstudio.app/backend/internal/modules/lesson/repository"
	lessonService "vocalstudio.app/backend/internal/modules/lesson/service"

	notiHttp "vocalstudio.app/backend/internal/modules/notification/delivery/http"
	notifRepo "vocalstudio.app/backend/internal/modules/notification/repository"
	notifService "vocalstudio.app/backend/internal/modules/notification/service"

	searchService "vocalstudio.app/backend/internal/modules/search/service"

	statHttp "vocalstudio.app/backend/internal/modules/stat/delivery/http"
	statService "vocalstudio.app/backend/internal/modules/stat/service"

	studentHttp "vocalstudio.app/backend/internal/modules/student/delivery/http"
	studentRepo "vocalstudio.app/backend/internal/modules/student/repository"
	studentService "vocalstudio.app/backend/internal/modules/student/service"

	userHttp "vocalstudio.app/backend/internal/modules/user/delivery/http"
	userRepo "vocalstudio.app/backend/internal/modules/user/repository"
	userService "vocalstudio.app/backend/internal/modules/user/service"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/meilisearch/meilisearch-go"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Server struct {
	engine      *gin.Engine
	db          *gorm.DB
	redisClient *redis.Client
	log         *zap.Logger
}

// NewServer wires every module. redisClient may be nil, which disables
// rate limiting and realtime notification delivery.
func NewServer(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, log *zap.Logger) *Server {
	// Search is optional: without Meilisearch the roster search runs on SQL.
	var meiliSvc searchService.SearchService
	if host := cfg.MeiliSearchHost; host != "" {
		if !strings.HasPrefix(host, "http") {
			host = "http://" + host + ":7700"
		}
		meiliClient := meilisearch.New(host, meilisearch.WithAPIKey(cfg.MeiliMasterKey))
		meiliSvc = searchService.NewMeiliSearchService(meiliClient, log)
	} else {
		log.Warn("MEILISEARCH_HOST not set, student search uses the database")
	}

	fileStorage, err := storage.NewCloudinaryStorage()
	if err != nil {
		log.Warn("object storage disabled", zap.Error(err))
		fileStorage = nil
	}

	tokens := token.NewManager(cfg.JWTSecret, cfg.JWTTTL)
	limiter := ratelimiter.New(redisClient)

	userRepository := userRepo.NewUserRepository(db)
	authSvc := userService.NewAuthService(userRepository, tokens, limiter, cfg.RateLimitAuth, meiliSvc, log)
	authHandler := userHttp.NewAuthHandler(authSvc)

	// Notification Module
	notificationRepository := notifRepo.NewNotificationRepository(db)
	notificationSvc := notifService.NewNotificationService(notificationRepository, redisClient, log)
	notificationHandler := notiHttp.NewNotificationHandler(notificationSvc, redisClient, cfg.AllowedOrigins, log)

	lessonRepository := lessonRepo.NewLessonRepository(db)
	sweeper := lessonService.NewSweeper(lessonRepository, log)
	lessonSvc := lessonService.NewLessonService(lessonRepository, userRepository, sweeper, notificationSvc, log)
	lessonHandler := lessonHttp.NewLessonHandler(lessonSvc)

	feedbackRepository := feedbackRepo.NewFeedbackRepository(db)
	feedbackSvc := feedbackService.NewFeedbackService(feedbackRepository, lessonRepository, notificationSvc, log)
	feedbackHandler := feedbackHttp.NewFeedbackHandler(feedbackSvc)

	studentRepository := studentRepo.NewStudentRepository(db)
	studentSvc := studentService.NewStudentService(studentRepository, lessonRepository, sweeper, meiliSvc, log)
	studentHandler := studentHttp.NewStudentHandler(studentSvc)

	fileRepository := fileRepo.NewFileRepository(db)
	guard := fileService.NewGuard(cfg.MaxFileSize, cfg.AllowedFileTypes)
	fileSvc := fileService.NewFileService(fileRepository, fileStorage, guard, cfg.CloudinaryUploadFolder, log)
	fileHandler := fileHttp.NewFileHandler(fileSvc)
	uploadHandler := fileHttp.NewUploadHandler(fileSvc)

	statSvc := statService.NewStatService(lessonRepository, feedbackRepository, studentRepository, sweeper)
	statHandler := statHttp.NewStatHandler(statSvc)

	adminSvc := adminService.NewAdminService(userRepository, studentRepository, lessonRepository, studentSvc, sweeper, notificationSvc, log)
	adminHandler := adminHttp.NewAdminHandler(adminSvc)

	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}
	router := gin.New()

	setupCORS(router, cfg.AllowedOrigins)

	router.Use(middleware.Recovery(log))
	router.Use(middleware.RequestLogger(log, "/api/health", "/api/notifications/ws"))

	authMiddleware := middleware.NewAuthMiddleware(userRepository, tokens)

	api := router.Group("/api")

	api.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	})

	// Public routes (no auth required)
	auth := api.Group("/auth")
	{
		auth.POST("/signup", authHandler.Signup)
		auth.POST("/login", authHandler.Login)
		auth.GET("/me", authMiddleware.RequireAuth(), authHandler.Me)
		auth.POST("/logout", authMiddleware.RequireAuth(), authHandler.Logout)
	}
	api.GET("/teachers", authHandler.ListTeachers)

	// Protected routes (apply auth middleware explicitly)
	protected := api.Group("")
	protected.Use(authMiddleware.RequireAuth())
	{
		// Admin routes
		adminGroup := protected.Group("/admin")
		adminGroup.Use(authMiddleware.RequireAdmin())
		{
			adminGroup.GET("/stats", adminHandler.GetStats)
			adminGroup.GET("/teacher-lesson-stats", adminHandler.GetTeacherLessonStats)
			adminGroup.GET("/teachers", adminHandler.GetTeachers)
			adminGroup.GET("/teacher-students/:teacherId", adminHandler.GetTeacherStudents)
			adminGroup.GET("/students", adminHandler.GetStudents)
			adminGroup.POST("/assign-student", adminHandler.AssignStudent)
			adminGroup.PUT("/reassign-student", adminHandler.ReassignStudent)
			adminGroup.GET("/lessons", adminHandler.GetLessons)
		}

		// Teacher roster
		roster := protected.Group("/teacher/students")
		roster.Use(middleware.RequireRole(entity.RoleTeacher))
		{
			roster.GET("/unassigned", studentHandler.GetUnassigned)
			roster.POST("/assign", studentHandler.Assign)
			roster.GET("/pre-registrations", studentHandler.GetPreRegistrations)
			roster.DELETE("/pre-registrations/:id", studentHandler.DeletePreRegistration)
			roster.GET("", studentHandler.GetStudents)
			roster.POST("", studentHandler.CreateStudent)
			roster.GET("/:id", studentHandler.GetStudent)
			roster.PUT("/:id", studentHandler.UpdateStudent)
			roster.DELETE("/:id", studentHandler.DeleteStudent)
		}

		// Lesson routes
		protected.GET("/lessons", lessonHandler.GetLessons)
		protected.GET("/lessons/:id", lessonHandler.GetLesson)
		protected.GET("/lessons/:id/feedback", lessonHandler.GetLessonFeedback)
		protected.POST("/lessons", lessonHandler.CreateLesson)
		protected.PUT("/lessons/:id", lessonHandler.UpdateLesson)
		protected.PATCH("/lessons/:id/cancel", lessonHandler.CancelLesson)
		protected.DELETE("/lessons/:id", lessonHandler.DeleteLesson)

		// Feedback routes
		protected.GET("/feedback", feedbackHandler.GetFeedbacks)
		protected.GET("/feedback/unviewed-reactions-count", feedbackHandler.GetUnviewedReactionsCount)
		protected.GET("/feedback/:id", feedbackHandler.GetFeedback)
		protected.POST("/feedback", feedbackHandler.CreateFeedback)
		protected.PUT("/feedback/:id", feedbackHandler.UpdateFeedback)
		protected.PATCH("/feedback/:id/reaction", feedbackHandler.React)
		protected.PATCH("/feedback/:id/view-reaction", feedbackHandler.ViewReaction)

		// Notification routes
		protected.GET("/notifications", notificationHandler.GetNotifications)
		protected.GET("/notifications/unread-count", notificationHandler.UnreadCount)
		protected.PATCH("/notifications/:id/read", notificationHandler.MarkAsRead)
		protected.PATCH("/notifications/read-all", notificationHandler.MarkAllAsRead)
		protected.GET("/notifications/ws", notificationHandler.HandleWebSocket)

		// File routes
		protected.GET("/files", fileHandler.GetFiles)
		protected.POST("/files/upload", fileHandler.UploadFile)
		protected.GET("/files/:id/download", fileHandler.DownloadFile)
		protected.DELETE("/files/:id", fileHandler.DeleteFile)
		protected.POST("/upload/single", uploadHandler.UploadSingle)
		protected.POST("/upload/multiple", uploadHandler.UploadMultiple)

		// Dashboard routes
		protected.GET("/dashboard/stats", statHandler.GetDashboardStats)
		protected.GET("/student/dashboard", statHandler.GetStudentDashboard)
		protected.GET("/student/profile", statHandler.GetStudentProfile)
	}

	return &Server{
		engine:      router,
		db:          db,
		redisClient: redisClient,
		log:         log,
	}
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.engine
}

func (s *Server) Run(addr string) error {
	s.log.Info("http server listening", zap.String("addr", addr))
	return s.engine.Run(addr)
}

func setupCORS(router *gin.Engine, origins []string) {
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000"}
	}

	router.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "HEAD", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))
}
