package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"videogenhost/internal/comfy"
	httpapi "videogenhost/internal/http"
	"videogenhost/internal/http/handlers"
	"videogenhost/internal/infra"
	"videogenhost/internal/jobs"
	"videogenhost/internal/orchestrator"
	"videogenhost/internal/storage"
	"videogenhost/internal/workflow"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	store, err := storage.NewVideoStore(cfg.VideoDir)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure video storage")
	}

	template, err := workflow.DefaultTemplate(workflow.SeedMode(cfg.SeedMode))
	if err != nil {
		logger.Fatal().Err(err).Msg("built-in workflow template is invalid")
	}

	client, err := comfy.NewClient(comfy.Options{
		BaseURL:        cfg.ComfyBaseURL,
		Logger:         &logger,
		RequestTimeout: cfg.SubmitTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to configure backend client")
	}

	registry := jobs.NewRegistry()
	orch := orchestrator.New(client, registry, store, template, logger, orchestrator.Timeouts{
		Submit:   cfg.SubmitTimeout,
		Progress: cfg.ProgressTimeout,
		Fetch:    cfg.FetchTimeout,
	})

	app := &handlers.App{
		Logger:       logger,
		Registry:     registry,
		Orchestrator: orch,
		Store:        store,
		CookieSecret: cfg.CookieSecret,
		Users:        handlers.Credentials{"admin": "password123"},
	}

	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
