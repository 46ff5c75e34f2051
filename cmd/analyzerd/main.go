package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/joseph-ayodele/portfolio-grader/internal/analyze"
	"github.com/joseph-ayodele/portfolio-grader/internal/common"
	"github.com/joseph-ayodele/portfolio-grader/internal/export"
	"github.com/joseph-ayodele/portfolio-grader/internal/llm/openai"
	"github.com/joseph-ayodele/portfolio-grader/internal/server"
	"github.com/joseph-ayodele/portfolio-grader/internal/upload"
	applog "github.com/joseph-ayodele/portfolio-grader/pkg/logger"
)

func main() {
	cfg := common.LoadConfig()

	logger, err := applog.New(cfg.Log.Level)
	if err != nil {
		os.Stderr.WriteString("CRITICAL: Failed to initialize logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Sugar()

	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	stager, err := upload.NewStager(cfg.App.TempDir, cfg.App.MaxUploadSize, logger)
	if err != nil {
		log.Fatalf("temp dir: %v", err)
	}

	extractor := openai.NewClient(openai.Config{
		APIKey:      cfg.LLM.APIKey,
		BaseURL:     cfg.LLM.BaseURL,
		Model:       cfg.LLM.Model,
		Temperature: cfg.LLM.Temperature,
		MaxTokens:   cfg.LLM.MaxTokens,
		Timeout:     cfg.LLM.Timeout,
	}, logger)

	analyzer := analyze.NewService(stager, extractor, logger)
	h := server.NewHandler(analyzer, export.NewService(logger), cfg.App.MaxUploadSize, logger)
	srv := server.New(cfg, h, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Run(); err != nil {
			log.Errorw("server failed", zap.Error(err))
			stop()
		}
	}()

	<-ctx.Done()
	log.Info("Shutting down gracefully...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Errorf("Server forced to shutdown: %v", err)
	}
	log.Info("Server exited")
}
