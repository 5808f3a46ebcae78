package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"synonym-game/internal/config"
	"synonym-game/internal/logging"
	"synonym-game/internal/simprocess"
	httptransport "synonym-game/internal/transport/http"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	logCfg, err := config.LoadLog()
	if err != nil {
		panic(err)
	}
	closer := logging.Init(logCfg)
	defer closer.Close()
	cfg, err := config.LoadSim()
	if err != nil {
		log.Fatal().Err(err).Msg("load sim config failed")
	}

	world := simprocess.NewWorld(clockwork.NewRealClock(), rulesFromConfig(cfg))
	if cfg.SeedFile != "" {
		seed, err := simprocess.LoadSeed(cfg.SeedFile)
		if err != nil {
			log.Fatal().Err(err).Str("path", cfg.SeedFile).Msg("load seed failed")
		}
		ids := world.Apply(seed)
		log.Info().Strs("lobbies", ids).Msg("seeded lobbies")
	}

	r := simprocess.NewServer(world, cfg.ProcessID).Router()
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("process_id", cfg.ProcessID).Msg("sim process listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		log.Fatal().Err(err).Msg("sim process stopped")
	}
}

func rulesFromConfig(cfg config.SimConfig) simprocess.Rules {
	return simprocess.Rules{
		Countdown:     time.Duration(cfg.CountdownSec) * time.Second,
		RoundDuration: time.Duration(cfg.RoundDurationSec) * time.Second,
		RoundLimit:    cfg.RoundLimit,
		MaxPlayers:    cfg.MaxPlayers,
		Publish:       cfg.PublishRules,
	}
}
