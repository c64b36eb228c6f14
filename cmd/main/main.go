package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"inventory-recon/internal/config"
	"inventory-recon/internal/extract"
	stocksvc "inventory-recon/internal/stock/service"
	"inventory-recon/internal/store/sqlite"
	serverhttp "inventory-recon/server/http"
)

func main() {
	cfg := config.Load()
	logger := config.SetupLogger(cfg)

	st, err := sqlite.NewStore(cfg.DBPath)
	if err != nil {
		logger.Fatal().Err(err).Str("path", cfg.DBPath).Msg("opening store")
	}
	defer st.Close()

	var extractor extract.Extractor
	if cfg.GeminiAPIKey != "" {
		g, err := extract.NewGeminiExtractor(context.Background(), cfg.GeminiAPIKey, cfg.GeminiModel)
		if err != nil {
			logger.Fatal().Err(err).Msg("creating extractor")
		}
		defer g.Close()
		extractor = g
	} else {
		logger.Warn().Msg("GEMINI_API_KEY not set, /invoices/scan disabled")
	}

	engine := stocksvc.NewEngine(st, logger)

	r := serverhttp.NewRouter(cfg, logger, serverhttp.Deps{
		Products:  st,
		Engine:    engine,
		Extractor: extractor,
	})

	srv := &http.Server{Addr: cfg.Addr(), Handler: r}
	logger.Info().Str("addr", cfg.Addr()).Msg("server starting")

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("listen")
		}
	}()

	// graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	logger.Info().Msg("server shutting down")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(ctx)
	logger.Info().Msg("bye")
}
