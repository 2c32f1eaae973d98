package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"taskboard/docs"
	"taskboard/internal/ai"
	"taskboard/internal/auth"
	"taskboard/internal/config"
	"taskboard/internal/handler"
	"taskboard/internal/middleware"
	"taskboard/internal/model"
	"taskboard/internal/repository"
	"taskboard/internal/service"
	"taskboard/internal/tz"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"gorm.io/gorm"
)

type Server struct {
	Engine *gin.Engine
	DB     *gorm.DB
	Config *config.Config
	log    *slog.Logger
}

// New wires repositories, services and handlers onto a gin engine.
func New(cfg *config.Config, db *gorm.DB, log *slog.Logger) (*Server, error) {
	zone, err := tz.New(cfg.Project.Timezone)
	if err != nil {
		return nil, fmt.Errorf("project timezone: %w", err)
	}

	gin.SetMode(cfg.Server.Mode)
	r := gin.New()
	r.Use(gin.Recovery(), middleware.RequestLogger(log))
	corsCfg := cors.Config{
		AllowOrigins:     cfg.Server.CORSOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", middleware.RequestIDHeader},
		ExposeHeaders:    []string{middleware.RequestIDHeader},
		AllowCredentials: true,
	}
	if len(corsCfg.AllowOrigins) == 0 {
		corsCfg.AllowAllOrigins = true
		corsCfg.AllowCredentials = false
	}
	r.Use(cors.New(corsCfg))

	// Repositories
	userRepo := repository.NewUserRepository(db)
	roleRepo := repository.NewRoleRepository(db)
	portfolioRepo := repository.NewPortfolioRepository(db)
	taskRepo := repository.NewTaskRepository(db)
	meetingRepo := repository.NewMeetingRecordRepository(db)
	assignmentRepo := repository.NewTaskAssignmentRepository(db)

	// Services
	builder := service.NewTaskGroupService(db, zone, cfg.Project, log)
	reminders := service.NewReminderService(taskRepo, assignmentRepo, zone)
	meetings := service.NewMeetingService(meetingRepo, builder, ai.New(cfg.AI, zone), log)

	// Handlers
	tokens := auth.NewTokenIssuer(cfg.Auth)
	userHandler := handler.NewUserHandler(userRepo, roleRepo, tokens)
	roleHandler := handler.NewRoleHandler(roleRepo)
	portfolioHandler := handler.NewPortfolioHandler(portfolioRepo)
	taskHandler := handler.NewTaskHandler(taskRepo, builder, reminders, zone)
	meetingHandler := handler.NewMeetingHandler(meetingRepo, meetings, zone)
	assignmentHandler := handler.NewAssignmentHandler(assignmentRepo, taskRepo, zone)

	r.GET("/health", health(db))
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler, ginSwagger.InstanceName(docs.SwaggerInfo.InstanceName())))

	api := r.Group("/api/v1")

	// Public routes
	api.POST("/auth/register", userHandler.Register)
	api.POST("/auth/login", userHandler.Login)

	// Protected routes - require authentication
	authorized := api.Group("/")
	authorized.Use(middleware.TokenAuth(tokens), middleware.LoadActor(userRepo))
	adminOnly := middleware.RequireRole(model.RoleNameAdmin)
	{
		// User routes
		authorized.GET("/users/me", userHandler.Me)
		authorized.PUT("/users/me", userHandler.UpdateMe)
		authorized.GET("/users", userHandler.List)
		authorized.GET("/users/search", userHandler.Search)
		authorized.GET("/users/:id", userHandler.Get)

		// Task routes
		authorized.POST("/tasks", taskHandler.Create)
		authorized.GET("/tasks", taskHandler.List)
		authorized.POST("/tasks/group", taskHandler.CreateGroup)
		authorized.GET("/tasks/search", taskHandler.Search)
		authorized.GET("/tasks/reminders/tomorrow", taskHandler.RemindersTomorrow)
		authorized.GET("/tasks/meeting/:meeting_id", taskHandler.ByMeeting)
		authorized.GET("/tasks/meeting/:meeting_id/pending", taskHandler.PendingByMeeting)
		authorized.GET("/tasks/:id", taskHandler.Get)
		authorized.PUT("/tasks/:id", taskHandler.Update)
		authorized.DELETE("/tasks/:id", taskHandler.Delete)
		authorized.GET("/tasks/:id/subtasks", taskHandler.Subtasks)
		authorized.GET("/tasks/:id/tree", taskHandler.Tree)

		// Portfolio routes
		authorized.GET("/portfolios", portfolioHandler.List)
		authorized.GET("/portfolios/channel/:channel_id", portfolioHandler.ByChannel)
		authorized.GET("/portfolios/:id", portfolioHandler.Get)
		authorized.GET("/portfolios/:id/statistics", portfolioHandler.Statistics)
		authorized.POST("/portfolios", adminOnly, portfolioHandler.Create)
		authorized.PUT("/portfolios/:id", adminOnly, portfolioHandler.Update)
		authorized.DELETE("/portfolios/:id", adminOnly, portfolioHandler.Delete)

		// Role routes
		authorized.GET("/roles", roleHandler.List)
		authorized.GET("/roles/:id", roleHandler.Get)
		authorized.POST("/roles", adminOnly, roleHandler.Create)
		authorized.PUT("/roles/:id", adminOnly, roleHandler.Update)
		authorized.DELETE("/roles/:id", adminOnly, roleHandler.Delete)

		// Meeting record routes
		authorized.POST("/meeting-records", meetingHandler.Create)
		authorized.GET("/meeting-records", meetingHandler.List)
		authorized.GET("/meeting-records/:id", meetingHandler.Get)
		authorized.PUT("/meeting-records/:id", meetingHandler.Update)
		authorized.DELETE("/meeting-records/:id", meetingHandler.Delete)
		authorized.POST("/meeting-records/:id/generate-tasks", meetingHandler.GenerateTasks)
		authorized.POST("/meeting-records/:id/summarize", meetingHandler.Summarize)

		// Task assignment routes
		authorized.POST("/task-assignments", assignmentHandler.Create)
		authorized.GET("/task-assignments", assignmentHandler.List)
		authorized.POST("/task-assignments/bulk", assignmentHandler.Bulk)
		authorized.GET("/task-assignments/user/me/tasks", assignmentHandler.MyTasks)
		authorized.GET("/task-assignments/task/:task_id/users", assignmentHandler.TaskUsers)
		authorized.PUT("/task-assignments/task/:task_id/users", assignmentHandler.ReplaceTaskUsers)
		authorized.DELETE("/task-assignments/task/:task_id/users", assignmentHandler.ClearTask)
		authorized.DELETE("/task-assignments/task/:task_id/user/:user_id", assignmentHandler.DeletePair)
		authorized.GET("/task-assignments/:id", assignmentHandler.Get)
		authorized.PUT("/task-assignments/:id", assignmentHandler.Update)
		authorized.DELETE("/task-assignments/:id", assignmentHandler.Delete)
	}

	return &Server{
		Engine: r,
		DB:     db,
		Config: cfg,
		log:    log,
	}, nil
}

func health(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "database": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "healthy"})
	}
}

// Run serves until SIGINT or SIGTERM and then drains in-flight requests.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:              s.Config.Addr(),
		Handler:           s.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.log.Info("server running", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(quit)

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to listen: %w", err)
		}
		return nil
	case <-quit:
	}
	s.log.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	s.log.Info("server exited properly")
	return nil
}
