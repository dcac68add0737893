package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/yourusername/survey-api/internal/config"
	"github.com/yourusername/survey-api/internal/handler"
	"github.com/yourusername/survey-api/internal/middleware"
	"github.com/yourusername/survey-api/internal/notifier"
	pgRepo "github.com/yourusername/survey-api/internal/repository/postgres"
	redisRepo "github.com/yourusername/survey-api/internal/repository/redis"
	"github.com/yourusername/survey-api/internal/service"
	"github.com/yourusername/survey-api/internal/service/sessionmanager"
	"github.com/yourusername/survey-api/pkg/database"
)

func main() {
	// Загружаем конфигурацию
	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		configPath = "config/config.yaml"
	}
	log.Printf("Загрузка конфигурации из %s", configPath)

	cfg, err := config.Load(configPath)
	if err != nil {
		log.Printf("Failed to load config: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к PostgreSQL
	db, err := database.NewPostgresDB(cfg.Database.PostgresConnectionString())
	if err != nil {
		log.Printf("Failed to connect to database: %v", err)
		os.Exit(1)
	}

	// Применяем миграции
	if err := database.MigrateDB(db); err != nil {
		log.Printf("Failed to migrate database: %v", err)
		os.Exit(1)
	}

	// Инициализируем подключение к Redis
	redisClient, err := database.NewUniversalRedisClient(cfg.Redis)
	if err != nil {
		log.Printf("Failed to connect to Redis: %v", err)
		os.Exit(1)
	}
	log.Println("Successfully connected to Redis")

	// Инициализируем репозитории
	surveyRepo := pgRepo.NewSurveyRepo(db)
	questionRepo := pgRepo.NewQuestionRepo(db)
	responseRepo := pgRepo.NewResponseRepo(db)

	cacheRepo, err := redisRepo.NewCacheRepo(redisClient)
	if err != nil {
		log.Printf("Failed to initialize CacheRepo: %v", err)
		os.Exit(1)
	}

	// Хаб WebSocket-уведомлений и презентер вопросов поверх него
	hub := notifier.NewHub()
	presenter := notifier.NewSurveyPresenter(hub)

	// Конфигурация сессий из файла (нулевые значения заменяются умолчаниями)
	sessionCfg := sessionmanager.DefaultConfig()
	if cfg.Session.IdleTimeoutSec > 0 {
		sessionCfg.IdleTimeout = time.Duration(cfg.Session.IdleTimeoutSec) * time.Second
	}
	if cfg.Session.EventBuffer > 0 {
		sessionCfg.EventBuffer = cfg.Session.EventBuffer
	}
	if cfg.Session.CompletionCacheTTLHrs > 0 {
		sessionCfg.CompletionCacheTTL = time.Duration(cfg.Session.CompletionCacheTTLHrs) * time.Hour
	}
	if cfg.Session.SearchTimeoutMs > 0 {
		sessionCfg.SearchTimeout = time.Duration(cfg.Session.SearchTimeoutMs) * time.Millisecond
	}
	if cfg.Session.SearchRetries > 0 {
		sessionCfg.SearchRetries = cfg.Session.SearchRetries
	}

	// Инициализируем сервисы
	surveyService := service.NewSurveyService(surveyRepo, questionRepo, cacheRepo, sessionCfg)
	resultService := service.NewResultService(surveyRepo, questionRepo, responseRepo, cacheRepo)
	sessionManager := service.NewSessionManager(
		surveyRepo, questionRepo, responseRepo, cacheRepo,
		presenter, sessionmanager.NewRealClock(), sessionCfg,
	)

	// Инициализируем обработчики
	surveyHandler := handler.NewSurveyHandler(surveyService)
	sessionHandler := handler.NewSessionHandler(sessionManager)
	resultHandler := handler.NewResultHandler(resultService)
	wsHandler := handler.NewWSHandler(hub)

	isProduction := os.Getenv("GIN_MODE") == "release"
	if isProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.Default()

	// Настройка доверенных прокси для корректной работы c.ClientIP()
	if isProduction {
		if err := router.SetTrustedProxies(nil); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	} else {
		if err := router.SetTrustedProxies([]string{"127.0.0.1", "::1"}); err != nil {
			log.Printf("Warning: failed to set trusted proxies: %v", err)
		}
	}

	// Настройка CORS
	router.Use(cors.New(cors.Config{
		AllowOrigins:     []string{"http://localhost:5173", "http://localhost:8000", "http://localhost:3000"},
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "X-User-ID"},
		ExposeHeaders:    []string{"Content-Length", "Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	// Настраиваем маршруты API
	api := router.Group("/api")
	{
		surveys := api.Group("/surveys")
		{
			surveys.GET("", surveyHandler.ListSurveys)
			surveys.GET("/search", surveyHandler.SearchSurveys)
			surveys.POST("", middleware.RequireUserID("userID"), surveyHandler.CreateSurvey)
			surveys.POST("/lines", middleware.RequireUserID("userID"), surveyHandler.CreateSurveyFromLines)

			survey := surveys.Group("/:id")
			survey.Use(middleware.ExtractUintParam("id", "surveyID"))
			{
				survey.GET("", surveyHandler.GetSurvey)
				survey.PATCH("/active", surveyHandler.SetActive)
				survey.DELETE("", surveyHandler.DeleteSurvey)

				// Результаты и выгрузки
				survey.GET("/results", resultHandler.GetSurveyResults)
				survey.GET("/trend", resultHandler.GetDailyTrend)
				survey.GET("/export/csv", resultHandler.ExportCSV)
				survey.GET("/export/xlsx", resultHandler.ExportXLSX)

				// Сессии прохождения (требуют идентификатор пользователя)
				authed := survey.Group("")
				authed.Use(middleware.RequireUserID("userID"))
				{
					authed.POST("/session", sessionHandler.StartSession)
					authed.GET("/session", sessionHandler.GetSessionState)
					authed.POST("/session/answer", sessionHandler.SubmitAnswer)
					authed.POST("/session/text", sessionHandler.OpenTextInput)
					authed.GET("/status", resultHandler.GetCompletionStatus)
				}
			}
		}

		// Старт сессии по точному названию активного опроса
		api.POST("/sessions", middleware.RequireUserID("userID"), sessionHandler.StartSessionByTitle)

		api.GET("/leaderboard", resultHandler.GetLeaderboard)
		api.GET("/users/me/surveys", middleware.RequireUserID("userID"), resultHandler.GetMySurveys)
	}

	// WebSocket для доставки вопросов и событий сессии
	router.GET("/ws", wsHandler.HandleConnection)

	// Настраиваем HTTP сервер с тайм-аутами для защиты от slow client attacks
	srv := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
	}

	// Запускаем сервер в горутине
	go func() {
		log.Printf("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Printf("Failed to start server: %v", err)
		}
	}()

	log.Printf("Server started on port %s", cfg.Server.Port)

	// Ожидаем сигнал остановки
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	// Останавливаем активные сессии опросов
	sessionManager.Shutdown()

	// Создаем контекст с таймаутом для graceful shutdown сервера
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}

	log.Println("Server exited properly")
}
