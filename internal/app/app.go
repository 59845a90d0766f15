package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"jobportal_backend/database"
	"jobportal_backend/internal/auth"
	"jobportal_backend/internal/config"
	"jobportal_backend/internal/email"
	"jobportal_backend/internal/handlers"
	"jobportal_backend/internal/logger"
	"jobportal_backend/internal/middleware"
	"jobportal_backend/internal/repositories"
	"jobportal_backend/internal/routes"
	"jobportal_backend/internal/services"
	"jobportal_backend/internal/validator"
	"jobportal_backend/internal/workers"
	"jobportal_backend/pkg/apperrors"
	"jobportal_backend/ws"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

type repositoryContainer struct {
	users         repositories.UserRepository
	jobs          repositories.JobRepository
	applications  repositories.ApplicationRepository
	conversations repositories.ConversationRepository
	notifications repositories.NotificationRepository
}

// App держит все зависимости процесса: роутер, hub, воркеры
type App struct {
	cfg      *config.Config
	db       *gorm.DB
	registry *prometheus.Registry

	repos     repositoryContainer
	services  *services.ServiceContainer
	wsManager *ws.WebSocketManager
	limiter   *middleware.LimiterStore
	router    *gin.Engine

	reminders *workers.ReminderWorker
	jobs      *workers.JobWorker
}

// New собирает приложение поверх уже открытого пула
func New(cfg *config.Config, db *gorm.DB) (*App, error) {
	if cfg == nil {
		return nil, errors.New("app: nil config")
	}
	apperrors.SetDebug(cfg.IsDevelopment())

	a := &App{
		cfg:       cfg,
		db:        db,
		registry:  prometheus.NewRegistry(),
		wsManager: ws.NewWebSocketManager(),
		limiter:   middleware.NewLimiterStore(cfg.RateLimit.MessagesPerMinute, cfg.RateLimit.Burst, 0),
	}
	a.registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	mailer, err := initializeMailer(cfg)
	if err != nil {
		return nil, err
	}

	a.repos = initializeRepositories()
	a.services = initializeServices(cfg, a.repos, a.wsManager, mailer)

	a.reminders = workers.NewReminderWorker(
		db,
		a.repos.applications,
		a.services.NotificationService,
		a.services.EmailService,
		cfg.ReminderInterval(),
		cfg.ReminderLead(),
		nil,
	).WithMetrics(a.registry)
	a.jobs = workers.NewJobWorker(db, a.repos.jobs, nil)

	a.router = a.setupRouter()
	return a, nil
}

// SetupRouter - роутер без фоновых воркеров, для интеграционных тестов
func SetupRouter(cfg *config.Config, db *gorm.DB) (*gin.Engine, error) {
	a, err := New(cfg, db)
	if err != nil {
		return nil, err
	}
	return a.Router(), nil
}

func (a *App) Router() *gin.Engine { return a.router }

func (a *App) Reminders() *workers.ReminderWorker { return a.reminders }

// Run блокируется до отмены ctx или первой фатальной ошибки
func (a *App) Run(ctx context.Context) error {
	address := fmt.Sprintf("%s:%d", a.cfg.Server.Host, a.cfg.Server.Port)
	srv := &http.Server{
		Addr:    address,
		Handler: a.router,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Server starting", "address", address)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http server: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.ShutdownTimeout())
		defer cancel()
		logger.Info("Shutting down server", "timeout", a.cfg.ShutdownTimeout().String())
		return srv.Shutdown(shutdownCtx)
	})

	g.Go(func() error {
		return a.wsManager.Run(gctx)
	})

	g.Go(func() error {
		a.reminders.Start(gctx)
		return nil
	})

	g.Go(func() error {
		a.jobs.Start(gctx)
		return nil
	})

	err := g.Wait()
	a.limiter.Stop()
	if err != nil {
		return err
	}
	logger.Info("Server stopped")
	return nil
}

func (a *App) setupRouter() *gin.Engine {
	if !a.cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestIDMiddleware())
	router.Use(middleware.LoggingMiddleware())
	router.Use(middleware.NewMetricsBuilder(a.registry).Build())
	router.Use(middleware.CORSMiddleware(a.cfg.CORS.AllowedOrigins))
	router.Use(middleware.DBMiddleware(a.db))

	jwtManager := auth.NewJWTManager(a.cfg.JWT.Secret, a.cfg.JWTTTL())
	appHandlers := initializeHandlers(a.services, middleware.RateLimitMiddleware(a.limiter))
	wsHandler := ws.NewWebSocketHandler(a.wsManager, a.cfg.CORS.AllowedOrigins)

	routes.RegisterRoutes(router, appHandlers, wsHandler, middleware.AuthMiddleware(jwtManager), a.db, a.registry)
	return router
}

func initializeMailer(cfg *config.Config) (*services.EmailService, error) {
	templates, err := email.NewDefaultTemplateManager()
	if err != nil {
		return nil, fmt.Errorf("load email templates: %w", err)
	}

	var provider email.Provider
	if cfg.EmailConfigured() {
		provider = email.NewGomailProvider(email.ConfigFrom(cfg), templates)
		logger.Info("Email provider initialized", "type", "smtp", "host", cfg.Email.SMTPHost)
	} else {
		provider = email.NewLogProvider(templates)
		logger.Warn("SMTP is not configured, emails will only be logged")
	}
	return services.NewEmailService(provider), nil
}

func initializeRepositories() repositoryContainer {
	return repositoryContainer{
		users:         repositories.NewUserRepository(),
		jobs:          repositories.NewJobRepository(),
		applications:  repositories.NewApplicationRepository(),
		conversations: repositories.NewConversationRepository(),
		notifications: repositories.NewNotificationRepository(),
	}
}

func initializeServices(cfg *config.Config, repos repositoryContainer, publisher services.Publisher, mailer *services.EmailService) *services.ServiceContainer {
	notificationService := services.NewNotificationService(repos.notifications, publisher, nil)
	conversationService := services.NewConversationService(repos.conversations, notificationService, publisher, nil)
	applicationService := services.NewApplicationService(repos.applications, repos.jobs, repos.users, conversationService, notificationService, nil)
	interviewService := services.NewInterviewService(
		repos.applications,
		repos.jobs,
		repos.users,
		notificationService,
		services.NewPlaceholderMeetingProvider(cfg.Meeting.BaseURL),
		mailer,
		nil,
	)

	return &services.ServiceContainer{
		ApplicationService:  applicationService,
		InterviewService:    interviewService,
		ConversationService: conversationService,
		NotificationService: notificationService,
		EmailService:        mailer,
	}
}

func initializeHandlers(container *services.ServiceContainer, messageLimiter gin.HandlerFunc) *handlers.AppHandlers {
	baseHandler := handlers.NewBaseHandler(validator.New())

	return &handlers.AppHandlers{
		ApplicationHandler:  handlers.NewApplicationHandler(baseHandler, container.ApplicationService),
		InterviewHandler:    handlers.NewInterviewHandler(baseHandler, container.InterviewService),
		ChatHandler:         handlers.NewChatHandler(baseHandler, container.ConversationService, messageLimiter),
		NotificationHandler: handlers.NewNotificationHandler(baseHandler, container.NotificationService),
	}
}

// Open подключает БД и при необходимости мигрирует схему
func Open(cfg *config.Config) (*gorm.DB, error) {
	logger.Info("Connecting to database...")
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	logger.Info("Database connected")

	if cfg.Database.AutoMigrate {
		if err := database.AutoMigrate(db); err != nil {
			return nil, err
		}
	}
	return db, nil
}
