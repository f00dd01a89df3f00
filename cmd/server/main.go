package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	httpadapter "resume-builder/internal/adapter/http"
	"resume-builder/internal/config"
	"resume-builder/internal/infrastructure/storage"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/ai"
	infra "resume-builder/pkg/infrastructure"
	"resume-builder/pkg/pdftext"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if err := storage.Prepare(logger, cfg.UploadDir, cfg.OutputDir); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	backend, preferred, err := newBackend(ctx, cfg)
	if err != nil {
		return err
	}
	client := ai.NewClient(backend, preferred, logger)
	renderer := infra.NewChromedpRenderer(cfg.ChromePath, cfg.RenderTimeout)
	processor := usecase.NewProcessor(pdftext.NewExtractor(), client, renderer, cfg.OutputDir, logger)

	sweeper, err := storage.NewSweeper(cfg.CleanupSchedule, cfg.OutputRetention, logger, cfg.UploadDir, cfg.OutputDir)
	if err != nil {
		return err
	}
	sweeper.RunOnce()
	if err := sweeper.Start(ctx); err != nil {
		return err
	}

	h := httpadapter.NewHandler(processor, cfg.UploadDir, cfg.OutputDir, cfg.MaxPayloadBytes, logger)
	app := httpadapter.NewApp(h, httpadapter.AppConfig{
		BodyLimit: cfg.MaxUploadBytes,
		AccessLog: os.Stdout,
	})

	errc := make(chan error, 1)
	go func() {
		logger.Info("listening", "port", cfg.Port, "provider", cfg.Provider)
		errc <- app.Listen(":" + cfg.Port)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	sweeper.Stop()
	return nil
}

func newBackend(ctx context.Context, cfg config.Config) (ai.Backend, []string, error) {
	preferred := cfg.PreferredModels
	switch cfg.Provider {
	case config.ProviderOpenAI:
		b, err := ai.NewOpenAIBackend(cfg.OpenAIAPIKey)
		if len(preferred) == 0 {
			preferred = ai.DefaultOpenAIModels
		}
		return b, preferred, err
	default:
		b, err := ai.NewGeminiBackend(ctx, cfg.GeminiAPIKey)
		return b, preferred, err
	}
}
