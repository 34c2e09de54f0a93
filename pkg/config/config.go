package config

import (
	"fmt"
	"net/url"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigtoml"
	"github.com/jackc/pgx/v4/pgxpool"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// PostgresNode describes one Postgres endpoint. The DSN is assembled from the
// individual fields unless an explicit URI is given.
type PostgresNode struct {
	Host     string
	Port     int    `default:"5432"`
	User     string `default:"postgres"`
	Password string `default:"postgres"`
	DB       string `default:"postgres"`
	URI      string `usage:"Overrides the assembled DSN when set"`
}

// Configured reports whether this node was set up at all. The slave node is
// optional; reads fall back to the master when it's missing.
func (n PostgresNode) Configured() bool {
	return n.Host != "" || n.URI != ""
}

// DSN returns the connection string for this node
func (n PostgresNode) DSN() string {
	if n.URI != "" {
		return n.URI
	}

	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s",
		url.QueryEscape(n.User), url.QueryEscape(n.Password), n.Host, n.Port, n.DB)
}

// Config describes all configuration options
type Config struct {
	ProjectName string `default:"rideshare" usage:"Project name reported by the API"`
	Environment string `default:"dev"`
	Debug       bool   `default:"false"`

	Log struct {
		Level string `default:"info"`
		File  string
		JSON  bool `default:"false" usage:"Output newline-delimited JSON instead of pretty console messages"`
	}
	HTTP struct {
		Address string `default:"127.0.0.1:8000" usage:"Address to listen on"`
		BaseURL string `default:"http://localhost:8000" usage:"Public URL for this server"`
	}
	CORS struct {
		Origins []string `default:"*"`
		Methods []string `default:"*"`
		Headers []string `default:"*"`
	}
	Postgres struct {
		Master PostgresNode
		Slave  PostgresNode
	}
	Vault VaultSettings
}

var logLevels = map[string]zerolog.Level{
	"debug":   zerolog.DebugLevel,
	"info":    zerolog.InfoLevel,
	"warn":    zerolog.WarnLevel,
	"warning": zerolog.WarnLevel,
	"error":   zerolog.ErrorLevel,
	"fatal":   zerolog.FatalLevel,
}

// Loader initializes an empty config object and returns a new Loader for this object
func Loader() (*Config, *aconfig.Loader) {
	cfg := Config{}
	cfg.Postgres.Master.Host = "localhost"

	return &cfg, aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix:  "RIDESHARE",
		FlagPrefix: "cfg",
		Files:      []string{"config.toml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".toml": aconfigtoml.New(),
		},
	})
}

// Validate verifies that all config fields have valid values
func (cfg *Config) Validate() error {
	_, err := pgxpool.ParseConfig(cfg.Postgres.Master.DSN())
	if err != nil {
		return eris.Wrap(err, `Invalid value for postgres.master`)
	}

	if cfg.Postgres.Slave.Configured() {
		_, err := pgxpool.ParseConfig(cfg.Postgres.Slave.DSN())
		if err != nil {
			return eris.Wrap(err, `Invalid value for postgres.slave`)
		}
	}

	_, ok := logLevels[cfg.Log.Level]
	if !ok {
		return eris.Errorf(`Invalid value for log.level: %s`, cfg.Log.Level)
	}

	return nil
}

// LogLevel converts the .Log.Level field to a zerolog.Level
func (cfg *Config) LogLevel() zerolog.Level {
	return logLevels[cfg.Log.Level]
}
