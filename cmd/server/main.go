package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"englishexplorer/internal/config"
	"englishexplorer/internal/content"
	"englishexplorer/internal/database"
	"englishexplorer/internal/handlers"
	"englishexplorer/internal/logger"
	"englishexplorer/internal/progress"
	"englishexplorer/internal/random"
	"englishexplorer/internal/realtime"
	"englishexplorer/internal/repository"
	"englishexplorer/internal/schedule"
	"englishexplorer/internal/security"
	"englishexplorer/internal/shell"

	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "englishexplorer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := logger.Init(cfg.LogLevel, cfg.LogFormat()); err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	status := handlers.NewStartupStatus()
	status.SetCurrentStep(handlers.StepConfiguration)
	if !cfg.ContentConfigured() {
		logger.Warn("API_KEY is not set, content generation is disabled")
		status.AddProblem("API_KEY is not set. Stories and generated rounds are unavailable.")
	}
	status.CompleteStep(handlers.StepConfiguration)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Content pack
	status.SetCurrentStep(handlers.StepContentPack)
	pack, err := content.LoadPack(cfg.ContentPackPath)
	if err != nil {
		return err
	}
	status.CompleteStep(handlers.StepContentPack)
	logger.Info("content pack loaded",
		zap.Int("vocabulary", len(pack.Vocabulary)),
		zap.Int("sentences", len(pack.Sentences)),
		zap.Int("gapfill", len(pack.GapFill)))

	// Content archive
	status.SetCurrentStep(handlers.StepDatabase)
	db, err := database.Open(cfg)
	if err != nil {
		return err
	}
	defer db.Close()
	status.CompleteStep(handlers.StepDatabase)

	status.SetCurrentStep(handlers.StepMigrations)
	if err := db.RunMigrations(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	status.CompleteStep(handlers.StepMigrations)

	archive := repository.NewContentRepository(db)

	provider, err := newProvider(ctx, cfg, pack)
	if err != nil {
		return err
	}
	observed := content.NewObserved(provider, archive)

	hub := realtime.NewHub()
	app := shell.New(shell.Deps{
		Tracker:       progress.NewTracker(),
		Stories:       observed,
		Rounds:        content.NewRounds(observed, pack),
		Pack:          pack,
		Scheduler:     schedule.NewReal(),
		Notifier:      hub,
		Seed:          cfg.ShuffleSeed,
		ConfigMissing: !cfg.ContentConfigured(),
	})

	limiter := security.NewRateLimiter(cfg.GenerateRate, cfg.GenerateWindow)
	go limiter.RunCleanup(ctx, 5*time.Minute)

	server := &http.Server{
		Addr: ":" + cfg.ServerPort,
		Handler: handlers.NewRouter(handlers.RouterDeps{
			Shell:   app,
			Archive: archive,
			Hub:     hub,
			Limiter: limiter,
			Status:  status,
		}),
		ReadTimeout: 15 * time.Second,
		// Story generation can take most of the content timeout
		WriteTimeout: cfg.ContentTimeout + 15*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("server starting", zap.String("addr", server.Addr), zap.String("env", cfg.Environment))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()
	status.CompleteStep(handlers.StepServer)
	status.MarkReady()

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	logger.Info("server shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	hub.Close()
	app.Close()
	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// newProvider returns the Gemini provider, or one that always fails when no
// API key is configured
func newProvider(ctx context.Context, cfg *config.Config, pack *content.Pack) (content.Provider, error) {
	if !cfg.ContentConfigured() {
		return content.Unavailable{}, nil
	}

	gen, err := content.NewGenaiGenerator(ctx, cfg.APIKey, cfg.Model, cfg.Temperature)
	if err != nil {
		return nil, err
	}
	r, err := random.New(cfg.ShuffleSeed)
	if err != nil {
		return nil, err
	}
	logger.Info("content generation enabled", zap.String("model", cfg.Model))
	return content.NewGemini(gen, pack, r, cfg.ContentTimeout), nil
}
