package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Load loads configuration from a layered set of sources.
//
// The loading order is:
//  1. Built-in defaults
//  2. YAML config file (explicit path, TIENDA_CONFIG env, ./config.yaml, /etc/tienda/config.yaml)
//  3. Environment variable overrides
//  4. File reference resolution (_file suffix)
//  5. Validation
func Load(configPath string) (*Config, error) {
	cfg := Defaults()

	filePath := discoverConfigFile(configPath)
	if filePath != "" {
		if err := loadYAMLFile(filePath, &cfg); err != nil {
			return nil, fmt.Errorf("loading config file %s: %w", filePath, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := resolveFileReferences(&cfg); err != nil {
		return nil, fmt.Errorf("resolving file references: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return &cfg, nil
}

// discoverConfigFile finds the config file path using the discovery order:
// 1. Explicit configPath argument
// 2. TIENDA_CONFIG environment variable
// 3. ./config.yaml in the current directory
// 4. /etc/tienda/config.yaml
//
// Returns empty string if no config file is found.
func discoverConfigFile(configPath string) string {
	if configPath != "" {
		return configPath
	}

	if envPath := os.Getenv("TIENDA_CONFIG"); envPath != "" {
		return envPath
	}

	candidates := []string{
		"config.yaml",
		"/etc/tienda/config.yaml",
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// loadYAMLFile reads and parses a YAML file into the Config struct.
// Fields not present in the YAML retain their current (default) values.
func loadYAMLFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// applyEnvOverrides maps TIENDA_* environment variables to config
// fields. Env vars win over the config file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TIENDA_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = port
		}
	}
	if v := os.Getenv("TIENDA_SIGNING_KEY"); v != "" {
		cfg.Auth.SigningKey = v
	}
	if v := os.Getenv("TIENDA_SIGNING_KEY_FILE"); v != "" {
		cfg.Auth.SigningKeyFile = v
	}
	if v := os.Getenv("TIENDA_TOKEN_TTL"); v != "" {
		if ttl, err := time.ParseDuration(v); err == nil {
			cfg.Auth.TokenTTL = ttl
		}
	}
	if v := os.Getenv("TIENDA_BCRYPT_COST"); v != "" {
		if cost, err := strconv.Atoi(v); err == nil {
			cfg.Auth.BcryptCost = cost
		}
	}
	if v := os.Getenv("TIENDA_STORAGE"); v != "" {
		cfg.Storage.Type = v
	}
	if v := os.Getenv("TIENDA_POSTGRES_DSN"); v != "" {
		cfg.Storage.Postgres.DSN = v
	}
	if v := os.Getenv("TIENDA_POSTGRES_DSN_FILE"); v != "" {
		cfg.Storage.Postgres.DSNFile = v
	}
	if v := os.Getenv("TIENDA_BOOTSTRAP_ADMIN_USERNAME"); v != "" {
		cfg.Bootstrap.Admin.Username = v
	}
	if v := os.Getenv("TIENDA_BOOTSTRAP_ADMIN_PASSWORD"); v != "" {
		cfg.Bootstrap.Admin.Password = v
	}
}

// resolveFileReferences reads _file fields and populates the
// corresponding value fields. For each field ending in _file, if the
// value field is empty and the file field is set, the file is read,
// whitespace is trimmed, and the value field is populated.
func resolveFileReferences(cfg *Config) error {
	if cfg.Auth.SigningKeyFile != "" && cfg.Auth.SigningKey == "" {
		val, err := readSecretFile(cfg.Auth.SigningKeyFile)
		if err != nil {
			return fmt.Errorf("auth.signing_key_file: %w", err)
		}
		cfg.Auth.SigningKey = val
	}

	if cfg.Storage.Postgres.DSNFile != "" && cfg.Storage.Postgres.DSN == "" {
		val, err := readSecretFile(cfg.Storage.Postgres.DSNFile)
		if err != nil {
			return fmt.Errorf("storage.postgres.dsn_file: %w", err)
		}
		cfg.Storage.Postgres.DSN = val
	}

	if cfg.Bootstrap.Admin.PasswordFile != "" && cfg.Bootstrap.Admin.Password == "" {
		val, err := readSecretFile(cfg.Bootstrap.Admin.PasswordFile)
		if err != nil {
			return fmt.Errorf("bootstrap.admin.password_file: %w", err)
		}
		cfg.Bootstrap.Admin.Password = val
	}

	return nil
}

// readSecretFile reads a file and returns its content with surrounding whitespace trimmed.
func readSecretFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}
