package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/dtarnawsky/dust/internal/api"
	"github.com/dtarnawsky/dust/internal/config"
	"github.com/dtarnawsky/dust/internal/dataset"
	"github.com/dtarnawsky/dust/internal/engine"
	"github.com/dtarnawsky/dust/internal/platform/logger"
)

func main() {
	live := flag.Bool("live", false, "Load the published dataset from the live host (overrides DUST_LIVE)")
	flag.Parse()

	log := logger.New("dataset-service")

	cfg, err := config.New()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}
	if *live {
		cfg.Live = true
	}

	zone, err := time.LoadLocation(cfg.EventZone)
	if err != nil {
		log.Fatal().Err(err).Str("zone", cfg.EventZone).Msg("invalid event timezone")
	}

	log.Info().
		Str("dataset", cfg.DatasetID).
		Bool("live", cfg.Live).
		Int("http_port", cfg.HTTPPort).
		Msg("dataset service starting")

	var loader dataset.Loader = &dataset.FileLoader{Dir: filepath.Join(cfg.DataRoot, cfg.DatasetID)}
	if cfg.Live {
		loader = dataset.NewLiveLoader(cfg.LiveBaseURL, cfg.DatasetID, loader, log)
	}

	eng := engine.New(loader, log)
	dispatcher := engine.NewDispatcher(eng, log)
	defer dispatcher.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	res, err := dispatcher.Do(ctx, engine.Command{Op: engine.OpPopulate})
	cancel()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to populate dataset")
	}
	api.SetPopulated(res.Count)
	log.Info().Int("records", res.Count).Msg("dataset populated")

	router := api.NewRouter(dispatcher, zone)
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Info().Int("port", cfg.HTTPPort).Msg("HTTP server starting")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("HTTP server failed")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")
	ctxShutdown, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(ctxShutdown); err != nil {
		log.Fatal().Err(err).Msg("server forced to shutdown")
	}
	log.Info().Msg("server exited")
}
