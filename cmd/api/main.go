// @title Guide Exam API
// @version 1.0
// @description Practice backend for the national tour guide qualification exam: written exam sessions, interview drills, wrong-answer book and study records.
// @host localhost:8090
// @BasePath /api
// @schemes http https
// @securityDefinitions.apikey ApiKeyAuth
// @in header
// @name Authorization
// @description Type 'Bearer YOUR_JWT_TOKEN' to authorize.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	_ "guide-exam/cmd/api/docs"
	"guide-exam/internal/adapter"
	"guide-exam/internal/adapter/evaluator"
	"guide-exam/internal/cache"
	"guide-exam/internal/catalog"
	"guide-exam/internal/config"
	"guide-exam/internal/database"
	"guide-exam/internal/domain"
	"guide-exam/internal/handler"
	"guide-exam/internal/logger"
	"guide-exam/internal/middleware"
	"guide-exam/internal/repository"
	"guide-exam/internal/service"
	"guide-exam/internal/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/google/uuid"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize logger
	if err := logger.Initialize(cfg.Logger); err != nil {
		panic(err)
	}
	appLogger := logger.Get()
	defer logger.Sync()

	questionCatalog, err := catalog.Default()
	if err != nil {
		appLogger.Fatal("Failed to load question catalog", zap.Error(err))
	}

	// Connect to database
	db, err := database.NewSQLXDB(cfg.DB, cfg.GetDSN())
	if err != nil {
		appLogger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer db.Close()

	if cfg.DB.Driver == config.DriverSQLite {
		// local databases are migrated on start; shared ones go through cmd/migrate
		if err := database.RunMigrations(db.DB, cfg.DB.Driver); err != nil {
			appLogger.Fatal("Failed to run migrations", zap.Error(err))
		}
	}

	// Initialize repositories
	var questionRepository domain.QuestionRepository
	if cfg.DB.UseCatalog {
		appLogger.Info("Serving questions from the embedded catalog")
		questionRepository = repository.NewQuestionCatalogAdapter(questionCatalog)
	} else {
		questionRepository = repository.NewQuestionDatabaseAdapter(db)
	}
	userRepository := repository.NewSQLXUserRepository(db)
	wrongAnswerRepository := repository.NewSQLXWrongAnswerRepository(db)
	studyRecordRepository := repository.NewSQLXStudyRecordRepository(db)
	txManager := repository.NewTransactionManagerAdapter(db)

	// Initialize Redis Client
	redisClient, err := cache.NewRedisClient(cfg.Redis)
	if err != nil {
		appLogger.Fatal("Failed to connect to Redis", zap.Error(err))
	}
	defer redisClient.Close()
	appLogger.Info("Successfully connected to Redis")
	cacheAdapter := adapter.NewRedisCacheAdapter(redisClient)

	// Initialize LLM evaluator
	var interviewEvaluator domain.InterviewEvaluator
	if cfg.LLM.Enabled {
		ollamaHTTPClient := &http.Client{Timeout: cfg.LLM.Timeout}
		llm, err := ollama.New(
			ollama.WithServerURL(cfg.LLM.Server),
			ollama.WithModel(cfg.LLM.Model),
			ollama.WithHTTPClient(ollamaHTTPClient),
		)
		if err != nil {
			appLogger.Fatal("Failed to create LLM client", zap.Error(err))
		}
		interviewEvaluator = evaluator.NewLLMEvaluator(llm, cfg.LLM.Timeout)
		appLogger.Info("LLM evaluator initialized", zap.String("server", cfg.LLM.Server), zap.String("model", cfg.LLM.Model))
	} else {
		appLogger.Info("LLM evaluation disabled")
	}

	// Initialize services
	questionBank := service.NewQuestionBank(questionRepository, cacheAdapter, cfg.Cache.QuestionTTL)
	studyService := service.NewStudyService(studyRecordRepository, wrongAnswerRepository, txManager, time.Local)
	examService := service.NewExamService(questionBank, cacheAdapter, cfg.Exam.SessionTTL, studyService)
	preferenceService := service.NewPreferenceService(questionCatalog, cacheAdapter)
	interviewService := service.NewInterviewService(questionCatalog, cacheAdapter, cfg.Exam.SessionTTL, preferenceService, interviewEvaluator)
	userService := service.NewUserService(userRepository, wrongAnswerRepository, questionBank)
	authService, err := service.NewAuthService(userRepository, cacheAdapter, service.NewLogCodeSender(), cfg.Auth)
	if err != nil {
		appLogger.Fatal("Failed to create AuthService", zap.Error(err))
	}

	// Initialize handlers
	validator := validation.NewValidator()
	handlers := handler.Handlers{
		Exam:      handler.NewExamHandler(examService, validator),
		Catalog:   handler.NewCatalogHandler(questionBank, preferenceService, validator),
		Interview: handler.NewInterviewHandler(interviewService, validator),
		Auth:      handler.NewAuthHandler(authService, validator),
		User:      handler.NewUserHandler(userService, studyService, validator, time.Local),
	}

	app := fiber.New(fiber.Config{
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  20 * time.Second,
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: middleware.ErrorHandler(),
	})

	app.Use(requestid.New(requestid.Config{Generator: uuid.NewString}))
	app.Use(logger.RequestLogger())
	app.Use(cors.New(cors.Config{
		AllowOrigins: cfg.Server.AllowOrigins,
		AllowMethods: "GET,POST,PUT,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization," + middleware.DeviceIDHeader,
		MaxAge:       300,
	}))
	app.Use(recover.New())

	app.Get("/swagger/*", swagger.HandlerDefault)
	app.Get("/health", func(c *fiber.Ctx) error {
		if err := cacheAdapter.Ping(c.UserContext()); err != nil {
			return domain.NewInternalError("Redis is unavailable", err)
		}
		if err := db.PingContext(c.UserContext()); err != nil {
			return domain.NewInternalError("Database is unavailable", err)
		}
		return c.JSON(fiber.Map{"status": "ok"})
	})

	handler.RegisterRoutes(app.Group("/api"), handlers, authService)

	go func() {
		appLogger.Info("Starting server", zap.Int("port", cfg.Server.Port), zap.String("env", cfg.Env))
		if err := app.Listen(":" + strconv.Itoa(cfg.Server.Port)); err != nil {
			appLogger.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := app.ShutdownWithContext(ctx); err != nil {
		appLogger.Error("Server forced to shutdown", zap.Error(err))
	}
	appLogger.Info("Server exited gracefully")
}
