package server

import (
	"net/http"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/unrolled/secure"

	"github.com/AlexandrKovin/RideShare/pkg/config"
	"github.com/AlexandrKovin/RideShare/pkg/db"
	"github.com/AlexandrKovin/RideShare/pkg/rslog"
)

func buildRouter(pools *db.Pools, cfg *config.Config) http.Handler {
	rs := rideshare{
		Pools: pools,
		Cfg:   cfg,
	}

	r := mux.NewRouter()
	r.HandleFunc("/", rs.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/health", rs.handleHealth).Methods(http.MethodGet)

	sm := secure.New(secure.Options{
		IsDevelopment:      cfg.Environment == "dev",
		BrowserXssFilter:   true,
		ContentTypeNosniff: true,
		FrameDeny:          true,
	})

	cors := handlers.CORS(
		handlers.AllowedOrigins(cfg.CORS.Origins),
		handlers.AllowedMethods(cfg.CORS.Methods),
		handlers.AllowedHeaders(cfg.CORS.Headers),
	)

	return sm.Handler(cors(rslog.MakeLogMiddleware(r)))
}

func startMux(pools *db.Pools, cfg *config.Config) error {
	muxServer := http.Server{
		Handler:      buildRouter(pools, cfg),
		Addr:         cfg.HTTP.Address,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
	}

	return muxServer.ListenAndServe()
}
