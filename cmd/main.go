package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ipede/oauth-proxy-service/internal/application"
	"github.com/ipede/oauth-proxy-service/internal/infrastructure/config"
	"github.com/ipede/oauth-proxy-service/internal/infrastructure/repository"
	"github.com/ipede/oauth-proxy-service/internal/infrastructure/upstream"
	httprouter "github.com/ipede/oauth-proxy-service/internal/interfaces/http"
	"go.uber.org/zap"
)

func main() {
	// Load configuration
	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	// Stores live for the process lifetime; nothing survives a restart
	clientRepo := repository.NewClientRepository(logger)
	pendingRepo := repository.NewPendingAuthRepository(cfg.AuthCodeTTL, cfg.SweepInterval, logger)
	codeRepo := repository.NewAuthorizationCodeRepository(cfg.AuthCodeTTL, cfg.SweepInterval, logger)
	tokenRepo := repository.NewTokenRepository(cfg.AccessTokenTTL, cfg.SweepInterval, logger)
	defer pendingRepo.Stop()
	defer codeRepo.Stop()
	defer tokenRepo.Stop()

	githubClient := upstream.NewGitHubClient(cfg, logger)
	provider := application.NewProviderService(clientRepo, pendingRepo, codeRepo, tokenRepo, githubClient, cfg.AccessTokenTTL, logger)

	// Create router
	router := httprouter.NewRouter(provider, logger)

	// Start server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Starting server",
			zap.Int("port", cfg.ServerPort),
			zap.String("callback_url", cfg.CallbackURL()))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed to start", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	// Graceful shutdown
	logger.Info("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Fatal("Server forced to shutdown", zap.Error(err))
	}

	logger.Info("Server exited properly")
}
