package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"

	_ "quicktask/docs"
	"quicktask/internal/config"
	"quicktask/internal/database"
	"quicktask/internal/handlers"
	"quicktask/internal/middleware"
	"quicktask/internal/notifications"
	"quicktask/internal/pdf"
	"quicktask/internal/repositories"
	"quicktask/internal/repositories/memory"
	"quicktask/internal/routes"
	"quicktask/internal/services"
)

func Run() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("config: %w", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// === Repos ===
	var (
		userRepo repositories.UserRepository
		taskRepo repositories.TaskRepository
	)
	if cfg.Database.DSN != "" {
		db, err := database.Open(ctx, cfg.Database.DSN)
		if err != nil {
			return err
		}
		defer func() {
			if err := db.Close(); err != nil {
				log.Printf("[app][db][err] close: %v", err)
			}
		}()
		if err := database.Migrate(ctx, db); err != nil {
			return err
		}
		userRepo, taskRepo = repositories.NewUserRepository(db), repositories.NewTaskRepository(db)
		log.Printf("[app] storage=postgres")
	} else {
		userRepo, taskRepo = memory.NewUserRepository(), memory.NewTaskRepository()
		log.Printf("[app] storage=memory (DATABASE_URL is empty, data is lost on restart)")
	}

	// === Services ===
	authService := services.NewAuthService(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	var emailService services.EmailService
	if cfg.Email.Enabled() {
		emailService = services.NewEmailService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
			cfg.Email.FromEmail,
		)
	}
	userService := services.NewUserService(userRepo, emailService, authService)
	taskService := services.NewTaskService(taskRepo)
	exportService := services.NewExportService(taskRepo, pdf.NewTaskReportGenerator(cfg.Export.FontPath))
	analyticsService := services.NewAnalyticsService(taskRepo)

	// === Notifications ===
	cache := notifications.NewCache(taskRepo, userRepo)
	scheduler := notifications.NewScheduler(cache)
	go func() {
		if err := scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			log.Printf("[app][scheduler][err] %v", err)
		}
	}()

	// === Gin ===
	router := NewRouter(authService, userRepo, routes.Handlers{
		Auth:      handlers.NewAuthHandler(userService, authService),
		Tasks:     handlers.NewTaskHandler(taskService, cache),
		Export:    handlers.NewExportHandler(exportService),
		Analytics: handlers.NewAnalyticsHandler(analyticsService),
	})

	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.Server.Port),
		Handler: router,
	}
	errCh := make(chan error, 1)
	go func() {
		log.Printf("[app] server listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server: %w", err)
		}
	case <-ctx.Done():
	}

	log.Printf("[app] shutting down")
	scheduler.Stop()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}

// NewRouter builds the gin engine with the global middleware chain and all routes.
func NewRouter(authService services.AuthService, users middleware.UserLookup, h routes.Handlers) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())
	router.Use(middleware.RequestID())
	router.Use(middleware.CORS())
	return routes.SetupRoutes(router, authService, users, h)
}
