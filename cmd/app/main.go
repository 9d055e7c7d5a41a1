package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/BuzzLyutic/todolist/internal/config"
	"github.com/BuzzLyutic/todolist/internal/handler"
	"github.com/BuzzLyutic/todolist/internal/repo"
	"github.com/BuzzLyutic/todolist/internal/service"
	"github.com/BuzzLyutic/todolist/internal/worker"
)

func main() {
	// Загрузка конфигурации
	cfg := config.Load()

	// Подключаем логгер
	logger := newLogger(cfg.LogLevel)
	defer logger.Sync()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	storage, closeStorage, err := openStorage(ctx, cfg, logger)
	if err != nil {
		logger.Fatal("Failed to open storage", zap.String("backend", cfg.StorageBackend), zap.Error(err))
	}
	defer closeStorage()

	// Планировщик записи: debounce или запись на каждое изменение
	var scheduler worker.Scheduler = worker.Immediate{}
	if cfg.PersistMode != config.PersistSync {
		d := worker.NewDebouncer(cfg.PersistDelay, logger)
		d.Start(ctx)
		scheduler = d
	}

	store := service.NewTaskListStore(ctx, storage,
		service.WithKey(cfg.StorageKey),
		service.WithScheduler(scheduler),
		service.WithLogger(logger),
	)

	todoHandler := handler.NewTodoHandler(store, logger)
	r := handler.NewRouter(todoHandler, middleware.Logger)

	srv := http.Server{ // Создаем сервер
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	logger.Info("Server started",
		zap.String("port", srv.Addr),
		zap.String("storage", cfg.StorageBackend),
		zap.String("persist", cfg.PersistMode),
	)
	// Дописываем отложенное изменение до закрытия хранилища
	if err := serve(&srv, quit, logger, store.Close); err != nil {
		closeStorage()
		logger.Sync()
		os.Exit(1)
	}
	logger.Info("Server stopped successfully!")
}

// serve запускает сервер и ждет сигнала или ошибки сервера; в обоих случаях
// выполняется graceful shutdown и onStop
func serve(srv *http.Server, quit <-chan os.Signal, logger *zap.Logger, onStop func()) error {
	serverErr := make(chan error, 1)
	go func() { // Запуск сервера и обработка ошибок
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	var runErr error
	select {
	case <-quit:
		logger.Info("Shutting down server...")
	case runErr = <-serverErr:
		logger.Error("Server failed", zap.Error(runErr))
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Shutdown error", zap.Error(err))
	}

	onStop()
	return runErr
}

func newLogger(level string) *zap.Logger {
	var logger *zap.Logger
	var err error
	if level == "debug" {
		logger, err = zap.NewDevelopment()
	} else {
		logger, err = zap.NewProduction()
	}
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

func openStorage(ctx context.Context, cfg config.Config, logger *zap.Logger) (repo.Storage, func(), error) {
	switch cfg.StorageBackend {
	case config.BackendMemory:
		logger.Warn("Using in-memory storage, todos will not survive a restart")
		return repo.NewMemoryStorage(), func() {}, nil

	case config.BackendFile:
		s, err := repo.NewFileStorage(cfg.DataDir)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using file storage", zap.String("dir", cfg.DataDir))
		return s, func() {}, nil

	case config.BackendPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL) // Создаем пул соединений к БД
		if err != nil {
			return nil, nil, fmt.Errorf("connect: %w", err)
		}
		if err := pool.Ping(ctx); err != nil { // Пытаемся пингануть БД
			pool.Close()
			return nil, nil, fmt.Errorf("ping: %w", err)
		}
		s := repo.NewPostgresStorage(pool)
		if err := s.Migrate(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("migrate: %w", err)
		}
		logger.Info("Successfully connected to the Database!")
		return s, pool.Close, nil

	case config.BackendSQLite:
		s, err := repo.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using sqlite storage", zap.String("path", cfg.SQLitePath))
		return s, func() { s.Close() }, nil

	case config.BackendMySQL:
		s, err := repo.OpenSQL(ctx, repo.DialectMySQL, cfg.MySQLDSN)
		if err != nil {
			return nil, nil, err
		}
		logger.Info("Using mysql storage")
		return s, func() { s.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.StorageBackend)
	}
}
