package config

import (
	"fmt"
	"os"
	"path"
	"strconv"
	"strings"

	"github.com/hashicorp/vault/api"
	"github.com/rotisserie/eris"
	"github.com/rs/zerolog"
)

// VaultSettings controls the optional Vault config source
type VaultSettings struct {
	Addr  string `usage:"Vault server address (VAULT_ADDR is used when empty)"`
	Token string `usage:"Vault token (VAULT_TOKEN is used when empty)"`
	Mount string `default:"secret" usage:"KV mount point"`
	Path  string `default:"rideshare" usage:"Secret path holding the config overrides"`
}

// ApplyVault overlays config values with the secret stored in Vault. The
// source is only active when an address and a token are available; any Vault
// failure is logged and leaves the config as-is so that a missing or sealed
// Vault doesn't take the service down with it.
func (cfg *Config) ApplyVault(logger *zerolog.Logger) {
	addr := cfg.Vault.Addr
	if addr == "" {
		addr = os.Getenv("VAULT_ADDR")
	}
	token := cfg.Vault.Token
	if token == "" {
		token = os.Getenv("VAULT_TOKEN")
	}

	if addr == "" || token == "" {
		return
	}

	client, err := api.NewClient(&api.Config{Address: addr})
	if err != nil {
		logger.Error().Err(err).Msg("Failed to initialize the Vault client")
		return
	}
	client.SetToken(token)

	data, err := readSecretData(client, cfg.Vault.Mount, cfg.Vault.Path, logger)
	if err != nil {
		logger.Error().Err(err).Msg("Error reading from Vault")
		return
	}

	for key, value := range FlattenSecret(data, "") {
		err = cfg.applySecret(strings.ToLower(key), value)
		if err != nil {
			logger.Error().Err(err).Msgf("Ignoring invalid Vault value for %s", key)
		}
	}
}

// readSecretData tries the KV v2 layout first and falls back to KV v1, the
// same way the deploy environments are migrated between engine versions.
func readSecretData(client *api.Client, mount, secretPath string, logger *zerolog.Logger) (map[string]interface{}, error) {
	secret, err := client.Logical().Read(path.Join(mount, "data", secretPath))
	if err == nil && secret != nil {
		if data, ok := secret.Data["data"].(map[string]interface{}); ok {
			logger.Info().Msg("Using KV v2 engine")
			return data, nil
		}
	}
	if err != nil {
		logger.Error().Err(err).Msg("Error using kv2")
	}

	secret, err = client.Logical().Read(path.Join(mount, secretPath))
	if err != nil {
		return nil, eris.Wrapf(err, "Failed to read secret %s", secretPath)
	}
	if secret == nil {
		return nil, eris.Errorf("Secret %s not found", secretPath)
	}

	logger.Info().Msg("Using KV v1 engine")
	return secret.Data, nil
}

// FlattenSecret flattens nested secret maps into underscore-joined keys
func FlattenSecret(data map[string]interface{}, prefix string) map[string]string {
	items := map[string]string{}
	for key, value := range data {
		keyWithPrefix := key
		if prefix != "" {
			keyWithPrefix = prefix + "_" + key
		}

		if nested, ok := value.(map[string]interface{}); ok {
			for k, v := range FlattenSecret(nested, keyWithPrefix) {
				items[k] = v
			}
		} else {
			items[keyWithPrefix] = fmt.Sprint(value)
		}
	}
	return items
}

func (cfg *Config) applySecret(key, value string) error {
	switch key {
	case "project_name":
		cfg.ProjectName = value
	case "environment":
		cfg.Environment = value
	case "http_address":
		cfg.HTTP.Address = value
	case "http_baseurl":
		cfg.HTTP.BaseURL = value
	case "log_level":
		cfg.Log.Level = value
	case "postgres_master_host":
		cfg.Postgres.Master.Host = value
	case "postgres_master_port":
		return setPort(&cfg.Postgres.Master.Port, value)
	case "postgres_master_user":
		cfg.Postgres.Master.User = value
	case "postgres_master_password":
		cfg.Postgres.Master.Password = value
	case "postgres_master_db":
		cfg.Postgres.Master.DB = value
	case "postgres_master_uri":
		cfg.Postgres.Master.URI = value
	case "postgres_slave_host":
		cfg.Postgres.Slave.Host = value
	case "postgres_slave_port":
		return setPort(&cfg.Postgres.Slave.Port, value)
	case "postgres_slave_user":
		cfg.Postgres.Slave.User = value
	case "postgres_slave_password":
		cfg.Postgres.Slave.Password = value
	case "postgres_slave_db":
		cfg.Postgres.Slave.DB = value
	case "postgres_slave_uri":
		cfg.Postgres.Slave.URI = value
	}

	// unknown keys are fine, the secret may carry values for other services
	return nil
}

func setPort(field *int, value string) error {
	port, err := strconv.Atoi(value)
	if err != nil {
		return eris.Wrapf(err, "not a valid port: %s", value)
	}

	*field = port
	return nil
}
