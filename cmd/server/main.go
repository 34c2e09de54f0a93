package main

import (
	"io"
	"os"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/AlexandrKovin/RideShare/pkg/config"
	"github.com/AlexandrKovin/RideShare/pkg/rslog"
	"github.com/AlexandrKovin/RideShare/pkg/server"
)

// initLogging picks the output format. JSON mode is meant for log shippers,
// console mode for a terminal; eris traces are rendered to match.
func initLogging(cfg *config.Config) {
	if cfg.Log.JSON {
		zerolog.ErrorStackMarshaler = func(err error) interface{} {
			return eris.ToJSON(err, true)
		}
		return
	}

	log.Logger = log.Output(rslog.Console(os.Stderr))
	zerolog.ErrorStackMarshaler = func(err error) interface{} {
		return eris.ToString(err, true)
	}
}

func openLogFile(cfg *config.Config) error {
	handle, err := os.Create(cfg.Log.File)
	if err != nil {
		return eris.Wrapf(err, "failed to open log file %s", cfg.Log.File)
	}

	var out io.Writer = handle
	if !cfg.Log.JSON {
		writer := rslog.Console(handle)
		writer.NoColor = true
		out = writer
	}

	log.Logger = log.Output(out)
	return nil
}

func main() {
	cfg, loader := config.Loader()
	if err := loader.Load(); err != nil {
		if strings.Contains(err.Error(), "help requested") {
			os.Exit(3)
		}

		panic(err)
	}

	initLogging(cfg)
	cfg.ApplyVault(&log.Logger)

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	zerolog.SetGlobalLevel(cfg.LogLevel())
	if cfg.Log.File != "" {
		if err := openLogFile(cfg); err != nil {
			log.Fatal().Err(err).Msg("Failed to set up the log file")
		}
	}

	log.Logger = log.Logger.With().Caller().Stack().Logger()
	log.Info().
		Str("environment", cfg.Environment).
		Msg("Configuration loaded; starting server")

	if err := server.StartServer(cfg); err != nil {
		log.Fatal().Err(err).Msg("Failed to start server")
	}
}
