// Command glsdk-backend serves the in-memory game services backend, handy to try the SDK locally
package main

import (
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/glasslab/go-glsdk/internal/backend"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		panic(err)
	}

	level, err := zerolog.ParseLevel(strings.ToLower(cfg.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)
	if cfg.LogPretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stdout})
	}

	server := backend.New(backend.Config{
		Users:      cfg.Users,
		GameSecret: cfg.GameSecret,
		Logger:     slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{})),
	})

	httpServer := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           server.Router(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	log.Info().Str("addr", cfg.HTTPAddr).Int("users", len(cfg.Users)).Msg("http listening")
	log.Fatal().Err(httpServer.ListenAndServe()).Msg("server stopped")
}
