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
	"synonym-game/internal/engine"
	"synonym-game/internal/logging"
	"synonym-game/internal/process"
	"synonym-game/internal/push"
	httptransport "synonym-game/internal/transport/http"

	"github.com/jonboulle/clockwork"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

func main() {
	_ = godotenv.Load()
	cfg, err := config.LoadApp()
	if err != nil {
		panic(err)
	}
	closer := logging.Init(cfg.Log)
	defer closer.Close()

	transport := process.NewAOTransport(cfg.Client.CUURL, cfg.Client.MessageURL, cfg.Client.ProcessID, cfg.Client.RequestTimeout())
	client, err := process.NewClient(transport, process.Options{
		ProcessID: cfg.Client.ProcessID,
		Timeout:   cfg.Client.RequestTimeout(),
	})
	if err != nil {
		log.Fatal().Err(err).Msg("process client init failed")
	}
	clock := clockwork.NewRealClock()
	eng := engine.New(client, clock, engine.ConfigFromClient(cfg.Client))
	pushCfg, err := push.ConfigFromEnv(cfg.Push)
	if err != nil {
		log.Fatal().Err(err).Msg("load push config failed")
	}

	r := httptransport.NewRouter(eng, cfg.Client)
	httptransport.LogRoutes(r)
	server := &http.Server{
		Addr:              cfg.Client.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	if err := push.NewManager(pushCfg, clock).Start(gctx, eng); err != nil {
		log.Fatal().Err(err).Msg("push start failed")
	}
	g.Go(func() error {
		return eng.Run(gctx)
	})
	g.Go(func() error {
		log.Info().Str("addr", server.Addr).Str("process_id", cfg.Client.ProcessID).Msg("client api listening")
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
	if cfg.Client.PlayerID != "" {
		g.Go(func() error {
			connectCtx, cancel := context.WithTimeout(gctx, time.Duration(cfg.Client.ConnectAttempts+1)*cfg.Client.RequestTimeout())
			defer cancel()
			if err := eng.Connect(connectCtx, cfg.Client.PlayerID); err != nil {
				log.Warn().Err(err).Str("player_id", cfg.Client.PlayerID).Msg("auto connect failed")
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("client stopped")
		return
	}
	log.Info().Msg("client stopped")
}
