package server

import (
	"encoding/json"
	"net/http"

	"github.com/AlexandrKovin/RideShare/pkg/config"
	"github.com/AlexandrKovin/RideShare/pkg/db"
	"github.com/AlexandrKovin/RideShare/pkg/rslog"
)

type rideshare struct {
	Pools *db.Pools
	Cfg   *config.Config
}

func (rs rideshare) handleRoot(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	err := json.NewEncoder(w).Encode("Hello World")
	if err != nil {
		rslog.Log(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}

func (rs rideshare) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	status := "ok"
	code := http.StatusOK
	if rs.Pools != nil {
		if err := rs.Pools.Ping(r.Context()); err != nil {
			rslog.Log(r.Context()).Error().Err(err).Msg("Health check failed")
			status = "degraded"
			code = http.StatusServiceUnavailable
		}
	}

	w.WriteHeader(code)
	err := json.NewEncoder(w).Encode(map[string]string{
		"status":      status,
		"project":     rs.Cfg.ProjectName,
		"environment": rs.Cfg.Environment,
	})
	if err != nil {
		rslog.Log(r.Context()).Error().Err(err).Msg("Failed to write response")
	}
}
