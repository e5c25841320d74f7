package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/wordscape/apps/go-server/internal/config"
	"github.com/robalobadob/wordscape/apps/go-server/internal/game"
	"github.com/robalobadob/wordscape/apps/go-server/internal/httpserver"
	"github.com/robalobadob/wordscape/apps/go-server/internal/reaction"
	"github.com/robalobadob/wordscape/apps/go-server/internal/storage"
	"github.com/robalobadob/wordscape/apps/go-server/internal/store"
	"github.com/robalobadob/wordscape/apps/go-server/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}

	list, err := words.Load(cfg.WordsFile)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}

	db, err := storage.Open(cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Str("path", cfg.DBPath).Msg("failed to open database")
	}
	defer db.Close()

	srv := httpserver.New(httpserver.Deps{
		Config:    cfg,
		Sessions:  store.NewMemoryStore(),
		DB:        db,
		Words:     list,
		Reactions: reactionsFactory(cfg.Reactions),
	})

	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		log.Info().Str("port", cfg.Port).Int("words", list.Len()).Str("reactions", cfg.Reactions).Msg("starting go-server")
		if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server exited")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	srv.CloseSessions(shutdownCtx) // ends event streams before Shutdown waits on them
	if err := hs.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("shutdown")
	}
}

// reactionsFactory returns a per-session reaction builder for the configured backend.
func reactionsFactory(kind string) func() game.Reactions {
	if kind == config.ReactionsDesktop {
		return func() game.Reactions { return reaction.NewDesktopService("Wordscape", log.Logger) }
	}
	return func() game.Reactions { return reaction.NewLogService(log.Logger) }
}
