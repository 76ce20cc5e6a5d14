package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/task-tracker/internal/config"
	"github.com/BuzzLyutic/task-tracker/internal/decompose"
	"github.com/BuzzLyutic/task-tracker/internal/generation"
	"github.com/BuzzLyutic/task-tracker/internal/handler"
	"github.com/BuzzLyutic/task-tracker/internal/ids"
	"github.com/BuzzLyutic/task-tracker/internal/idempotency"
	"github.com/BuzzLyutic/task-tracker/internal/llm"
	"github.com/BuzzLyutic/task-tracker/internal/repo"
	"github.com/BuzzLyutic/task-tracker/internal/service"
	"github.com/BuzzLyutic/task-tracker/internal/transport"
	"github.com/BuzzLyutic/task-tracker/internal/worker"
)

func main() {
	// Подключаем логгер
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Загрузка конфигурации
	cfg := config.Load()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Журнал генераций включается только при заданном DATABASE_URL
	var (
		journal    decompose.Journal
		journalAPI *handler.JournalHandler
		pool       *worker.Pool
		opts       []service.Option
	)
	if cfg.DatabaseURL != "" {
		db, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			logger.Fatal("Failed to connect to Database", zap.Error(err)) // Fatal потому что дальнейшая работа теряет смысл
		}
		defer db.Close()

		if err := db.Ping(ctx); err != nil {
			logger.Fatal("Failed to ping the Database", zap.Error(err))
		}
		logger.Info("Successfully connected to the Database!")

		generations := repo.NewGenerationRepo(db)
		pool = worker.NewPool(generations, logger, cfg.WorkerCount, cfg.JournalBuffer)
		pool.Start(ctx)

		journal = pool
		opts = append(opts, service.WithJournal(pool))
		journalAPI = handler.NewJournalHandler(generations, logger)
	}

	if cfg.RedisURL != "" {
		redisOpts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("Invalid REDIS_URL", zap.Error(err))
		}
		rdb := redis.NewClient(redisOpts)
		defer rdb.Close()

		if err := rdb.Ping(ctx).Err(); err != nil {
			logger.Warn("Redis is unavailable, duplicate goals will not be detected", zap.Error(err))
		}
		opts = append(opts, service.WithDeduper(idempotency.NewRedisDeduper(rdb, cfg.DedupeTTL)))
	}

	completer := llm.NewClient(llm.Config{
		APIKey:      cfg.LLMAPIKey,
		BaseURL:     cfg.LLMBaseURL,
		Temperature: cfg.LLMTemperature,
		Timeout:     cfg.GeneratorTimeout,
	})
	decomposer := decompose.NewDecomposer(completer, cfg.Models, journal, logger)

	var gen generation.Generator = decomposer
	if cfg.GeneratorURL != "" {
		gen = transport.NewClient(cfg.GeneratorURL, cfg.GeneratorTimeout, logger)
		logger.Info("Using remote generator", zap.String("url", cfg.GeneratorURL))
	}

	boardService := service.NewBoardService(gen, ids.NewUUID(), logger, opts...)
	boardAPI := handler.NewBoardHandler(boardService, cfg.Models, cfg.DefaultModel, logger)
	decomposeAPI := handler.NewDecomposeHandler(decomposer, cfg.DefaultModel, logger)

	r := chi.NewRouter() // Создаем роутер
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   cfg.CORSAllowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Idempotency-Key"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"ok"}`)
	})

	r.Post("/decompose", decomposeAPI.Decompose)
	r.Route("/api", func(r chi.Router) {
		boardAPI.Routes(r)
		if journalAPI != nil {
			journalAPI.Routes(r)
		}
	})

	srv := http.Server{ // Создаем сервер
		Addr:        ":" + cfg.Port,
		Handler:     r,
		ReadTimeout: 10 * time.Second,
		// Генерация может идти дольше обычного запроса
		WriteTimeout: cfg.GeneratorTimeout + 10*time.Second,
	}

	go func() { // Запуск сервера и обработка ошибок
		logger.Info("Server started", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)
	<-quit

	logger.Info("Shutting down server...")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}
	if pool != nil {
		pool.Stop()
	}
	logger.Info("Server stopped successfully!")
}
