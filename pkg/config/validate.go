package config

import (
	"errors"
	"fmt"

	"github.com/tiendahq/tienda/pkg/auth/password"
	"github.com/tiendahq/tienda/pkg/auth/policy"
	"github.com/tiendahq/tienda/pkg/auth/token"
)

// Validate checks the configuration for required fields and valid values.
// Returns an error with a descriptive field path on failure.
func (c *Config) Validate() error {
	var errs []error

	if c.Server.Port <= 0 {
		errs = append(errs, fmt.Errorf("server.port must be > 0, got %d", c.Server.Port))
	}

	// The signing key is the root of all token trust; refuse to start
	// without a real one.
	if len(c.Auth.SigningKey) < token.MinKeySize {
		errs = append(errs, fmt.Errorf("auth.signing_key (or auth.signing_key_file) must provide at least %d bytes", token.MinKeySize))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, fmt.Errorf("auth.token_ttl must be > 0, got %s", c.Auth.TokenTTL))
	}
	if c.Auth.BcryptCost != 0 && (c.Auth.BcryptCost < password.MinCost || c.Auth.BcryptCost > password.MaxCost) {
		errs = append(errs, fmt.Errorf("auth.bcrypt_cost must be 0 or within [%d, %d], got %d", password.MinCost, password.MaxCost, c.Auth.BcryptCost))
	}

	switch c.Storage.Type {
	case "memory", "postgres":
		// valid
	default:
		errs = append(errs, fmt.Errorf("storage.type must be \"memory\" or \"postgres\", got %q", c.Storage.Type))
	}

	if c.Storage.Type == "postgres" {
		if c.Storage.Postgres.DSN == "" && c.Storage.Postgres.DSNFile == "" {
			errs = append(errs, fmt.Errorf("storage.postgres.dsn or storage.postgres.dsn_file is required when storage.type is \"postgres\""))
		}
	}

	// The policy table has its own structural rules (ordering, known
	// roles, mandatory catch-all); compiling it is the validation.
	if _, err := policy.NewTable(c.Policy.Rules()); err != nil {
		errs = append(errs, fmt.Errorf("policy.routes: %w", err))
	}

	if c.Bootstrap.Admin.Username != "" && c.Bootstrap.Admin.Password == "" && c.Bootstrap.Admin.PasswordFile == "" {
		errs = append(errs, fmt.Errorf("bootstrap.admin.password or bootstrap.admin.password_file is required when bootstrap.admin.username is set"))
	}

	return errors.Join(errs...)
}
