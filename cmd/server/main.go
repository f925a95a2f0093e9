// Command server runs the promptrelay HTTP gateway.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/joho/godotenv/autoload"

	"promptrelay/core/chat"
	"promptrelay/core/llm"
	"promptrelay/internal/config"
	"promptrelay/internal/httpapi"
	"promptrelay/providers/ai/gemini"
	"promptrelay/providers/observability/slogobs"
)

func main() {
	observer := slogobs.New(slogobs.WithLevel(logLevelFromEnv()))
	logger := observer.Logger()
	slog.SetDefault(logger)

	cfg, err := config.FromEnv()
	if err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	provider := gemini.New().
		WithAPIKey(cfg.GeminiAPIKey)
	if cfg.GeminiBaseURL != "" {
		provider = provider.WithBaseURL(cfg.GeminiBaseURL)
	}

	send := llm.BuildChain(provider,
		llm.NewLoggingMiddleware(logger, llm.LogLevelStandard),
	)

	svc := chat.NewService(send, chat.Options{
		Model:              cfg.Model,
		ContextBudgetChars: cfg.ContextBudgetChars,
		Temperature:        cfg.Temperature,
		MaxOutputTokens:    cfg.MaxOutputTokens,
	})

	handler := httpapi.New(cfg, svc, observer)

	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           handler.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      120 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening",
			slog.String("addr", cfg.ListenAddr),
			slog.String("model", cfg.Model),
		)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", slog.String("error", err.Error()))
			os.Exit(1)
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("shutdown failed", slog.String("error", err.Error()))
	}
}

func logLevelFromEnv() slog.Level {
	switch os.Getenv("LOG_LEVEL") {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
