// Package main initializes and starts the GophTasks server,
// setting up configuration, logging, storage, services, handlers
// and optional TLS.
package main

import (
	"cmp"
	"context"
	"crypto/rand"
	"crypto/tls"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/atinyakov/GophTasks/internal/config"
	"github.com/atinyakov/GophTasks/internal/db"
	"github.com/atinyakov/GophTasks/internal/logger"
	"github.com/atinyakov/GophTasks/internal/repository"
	"github.com/atinyakov/GophTasks/internal/server/handler/http"
	"github.com/atinyakov/GophTasks/internal/service"
)

var (
	// version holds the build version set via ldflags.
	version string
	// buildDate holds the build timestamp set via ldflags.
	buildDate string
)

func main() {
	// Parse command-line, environment and file configuration.
	options, err := config.ParseServer(os.Args[1:])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	// Print build metadata (or "N/A" if unset).
	fmt.Printf("Build version: %s\n", cmp.Or(version, "N/A"))
	fmt.Printf("Build date: %s\n", cmp.Or(buildDate, "N/A"))

	// Initialize structured logging.
	log := logger.New()
	defer func() { _ = log.Log.Sync() }()
	if err := log.Init(options.LogLevel); err != nil {
		fmt.Fprintln(os.Stderr, "failed to init logger:", err)
		os.Exit(1)
	}
	zapLogger := log.Log

	// Select storage: PostgreSQL when a DSN is configured, memory otherwise.
	var (
		userRepo service.UserRepository
		taskRepo service.TaskRepository
	)
	if options.DatabaseDSN != "" {
		postgresDB, err := db.InitPostgres(options.DatabaseDSN)
		if err != nil {
			zapLogger.Fatal("cannot init database", zap.Error(err))
		}
		defer postgresDB.Close()
		userRepo = repository.NewPostgresUserRepository(postgresDB)
		taskRepo = repository.NewPostgresTaskRepository(postgresDB)
	} else {
		zapLogger.Warn("no database DSN configured, data is kept in memory")
		userRepo = repository.NewMemoryUserRepository()
		taskRepo = repository.NewMemoryTaskRepository()
	}

	secret := []byte(options.JWTSecret)
	if len(secret) == 0 {
		secret = randomSecret(zapLogger)
		zapLogger.Warn("no JWT secret configured, tokens will not survive a restart")
	}

	// Initialize business-logic services.
	authService := service.NewAuthService(userRepo, secret, options.TokenTTL)
	taskService := service.NewTaskService(taskRepo)

	// Create HTTP handlers and build the router.
	authHandler := &http.AuthHandler{AuthService: authService}
	taskHandler := &http.TaskHandler{TaskService: taskService}
	router := http.NewRouter(authHandler, taskHandler, authService, zapLogger)

	server := &nethttp.Server{
		Addr:              options.Address,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			zapLogger.Error("shutdown failed", zap.Error(err))
		}
	}()

	if options.TLSCert != "" {
		server.TLSConfig = &tls.Config{MinVersion: tls.VersionTLS12}
		zapLogger.Info("starting HTTPS server", zap.String("addr", options.Address))
		err = server.ListenAndServeTLS(options.TLSCert, options.TLSKey)
	} else {
		zapLogger.Info("starting HTTP server", zap.String("addr", options.Address))
		err = server.ListenAndServe()
	}
	if err != nil && !errors.Is(err, nethttp.ErrServerClosed) {
		zapLogger.Fatal("server failed", zap.Error(err))
	}
	zapLogger.Info("server stopped")
}

func randomSecret(log *zap.Logger) []byte {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		log.Fatal("failed to generate JWT secret", zap.Error(err))
	}
	return []byte(hex.EncodeToString(b))
}
