package server

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/AlexandrKovin/RideShare/pkg/config"
	"github.com/AlexandrKovin/RideShare/pkg/db"
)

// StartServer connects the database pools and starts the integrated HTTP server
func StartServer(cfg *config.Config) error {
	pools, err := db.Connect(context.Background(), cfg)
	if err != nil {
		return err
	}
	defer pools.Close()

	log.Info().Msgf("Listening on %s", cfg.HTTP.Address)
	return startMux(pools, cfg)
}
