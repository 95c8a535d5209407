// Package config provides unified configuration for the tienda server.
//
// Configuration is loaded with a layered approach:
//  1. Built-in defaults
//  2. YAML config file (discovered or explicitly specified)
//  3. Environment variable overrides (TIENDA_ prefix)
//  4. File reference resolution (_file suffix fields)
//  5. Validation
package config

import (
	"time"

	"github.com/tiendahq/tienda/pkg/auth/policy"
	"github.com/tiendahq/tienda/pkg/auth/token"
)

// Config holds all configuration for the tienda server.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Auth          AuthConfig          `yaml:"auth"`
	Storage       StorageConfig       `yaml:"storage"`
	Policy        PolicyConfig        `yaml:"policy"`
	Bootstrap     BootstrapConfig     `yaml:"bootstrap"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port            int           `yaml:"port"`             // default: 8080
	ReadTimeout     time.Duration `yaml:"read_timeout"`     // default: 15s
	WriteTimeout    time.Duration `yaml:"write_timeout"`    // default: 30s
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"` // default: 30s
}

// AuthConfig holds token and password hashing settings.
type AuthConfig struct {
	SigningKey     string        `yaml:"signing_key"`      // required, min 32 bytes
	SigningKeyFile string        `yaml:"signing_key_file"` // _file variant for signing_key
	TokenTTL       time.Duration `yaml:"token_ttl"`        // default: 24h
	BcryptCost     int           `yaml:"bcrypt_cost"`      // 0 selects the bcrypt default
}

// StorageConfig holds persistence settings.
type StorageConfig struct {
	Type     string         `yaml:"type"` // "memory" or "postgres", default: "memory"
	Postgres PostgresConfig `yaml:"postgres"`
}

// PostgresConfig holds PostgreSQL-specific settings.
type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	DSNFile         string        `yaml:"dsn_file"` // _file variant for dsn
	MaxConns        int32         `yaml:"max_conns"`
	MinConns        int32         `yaml:"min_conns"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
	MigrateOnStart  bool          `yaml:"migrate_on_start"` // default: true
}

// PolicyConfig holds the ordered route policy table.
type PolicyConfig struct {
	Routes []RouteRule `yaml:"routes"`
}

// RouteRule is one policy entry as written in configuration. Access is
// one of "public", "authenticated", "any", or "all"; roles are only
// meaningful for the last two.
type RouteRule struct {
	Path   string   `yaml:"path"`
	Access string   `yaml:"access"`
	Roles  []string `yaml:"roles"`
}

// BootstrapConfig seeds the first admin account on startup so a fresh
// deployment is not locked out of every admin route. Seeding is skipped
// when the username already exists.
type BootstrapConfig struct {
	Admin AdminConfig `yaml:"admin"`
}

// AdminConfig describes the bootstrap admin account. An empty username
// disables seeding.
type AdminConfig struct {
	Username     string `yaml:"username"`
	Password     string `yaml:"password"`
	PasswordFile string `yaml:"password_file"` // _file variant for password
	Email        string `yaml:"email"`
	DNI          int    `yaml:"dni"`
}

// ObservabilityConfig holds monitoring and instrumentation settings.
type ObservabilityConfig struct {
	Metrics MetricsConfig `yaml:"metrics"`
}

// MetricsConfig holds Prometheus metrics endpoint settings.
type MetricsConfig struct {
	Enabled bool   `yaml:"enabled"` // default: true
	Path    string `yaml:"path"`    // default: "/metrics"
}

// Rules converts the configured route table to policy rules, preserving
// order.
func (p PolicyConfig) Rules() []policy.Rule {
	rules := make([]policy.Rule, 0, len(p.Routes))
	for _, r := range p.Routes {
		rules = append(rules, policy.Rule{
			Pattern: r.Path,
			Access:  policy.Access(r.Access),
			Roles:   r.Roles,
		})
	}
	return rules
}

// Defaults returns a Config with all default values filled in. The
// default policy table keeps login, registration, signup, and health
// surfaces public, restricts user administration to admins, and requires
// authentication everywhere else.
func Defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 30 * time.Second,
		},
		Auth: AuthConfig{
			TokenTTL: token.DefaultTTL,
		},
		Storage: StorageConfig{
			Type: "memory",
			Postgres: PostgresConfig{
				MaxConns:        25,
				MinConns:        5,
				MaxConnLifetime: 5 * time.Minute,
				MigrateOnStart:  true,
			},
		},
		Policy: PolicyConfig{
			Routes: []RouteRule{
				{Path: "/auth/**", Access: "public"},
				{Path: "/users/createUser", Access: "public"},
				{Path: "/users/all-users", Access: "all", Roles: []string{"ADMIN"}},
				{Path: "/users/**", Access: "all", Roles: []string{"ADMIN"}},
				{Path: "/admin/**", Access: "all", Roles: []string{"ADMIN"}},
				{Path: "/user/**", Access: "any", Roles: []string{"USER", "ADMIN"}},
				{Path: "/healthz", Access: "public"},
				{Path: "/readyz", Access: "public"},
				{Path: "/metrics", Access: "public"},
				{Path: "*", Access: "authenticated"},
			},
		},
		Observability: ObservabilityConfig{
			Metrics: MetricsConfig{
				Enabled: true,
				Path:    "/metrics",
			},
		},
	}
}
