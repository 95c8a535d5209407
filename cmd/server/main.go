// Command server runs the tienda API.
//
// Configuration is layered: built-in defaults, an optional YAML file
// (first of -config flag, TIENDA_CONFIG, ./config.yaml,
// /etc/tienda/config.yaml), then TIENDA_* environment overrides. The
// token signing key is mandatory; the server refuses to start without
// one.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tiendahq/tienda/pkg/api"
	"github.com/tiendahq/tienda/pkg/auth"
	"github.com/tiendahq/tienda/pkg/auth/password"
	"github.com/tiendahq/tienda/pkg/auth/policy"
	"github.com/tiendahq/tienda/pkg/auth/token"
	"github.com/tiendahq/tienda/pkg/config"
	"github.com/tiendahq/tienda/pkg/observability"
	"github.com/tiendahq/tienda/pkg/rest"
	"github.com/tiendahq/tienda/pkg/service"
	"github.com/tiendahq/tienda/pkg/storage"
	"github.com/tiendahq/tienda/pkg/storage/memory"
	"github.com/tiendahq/tienda/pkg/storage/postgres"
	"github.com/tiendahq/tienda/pkg/transport"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	hasher, err := password.NewHasher(cfg.Auth.BcryptCost)
	if err != nil {
		return fmt.Errorf("creating password hasher: %w", err)
	}
	codec, err := token.NewCodec([]byte(cfg.Auth.SigningKey), cfg.Auth.TokenTTL)
	if err != nil {
		return fmt.Errorf("creating token codec: %w", err)
	}
	authenticator := auth.NewAuthenticator(service.NewCredentials(store), hasher, codec)

	table, err := policy.NewTable(cfg.Policy.Rules())
	if err != nil {
		return fmt.Errorf("compiling route policy: %w", err)
	}

	users := service.NewUsers(store, hasher)
	catalog := service.NewCatalog(store, store)
	orders := service.NewOrders(store, store, store)

	if err := seedAdmin(cfg, users); err != nil {
		return err
	}

	mux := rest.NewHandlers(authenticator, users, catalog, orders, store).Router()
	if cfg.Observability.Metrics.Enabled {
		mux.Handle("GET "+cfg.Observability.Metrics.Path, promhttp.Handler())
	}

	handler := transport.Chain(
		transport.Recovery(logger),
		transport.RequestID(),
		transport.Logging(logger),
		observability.MetricsMiddleware,
		auth.Middleware(codec),
		policy.Middleware(table),
	)(mux)

	srv := transport.NewServer(handler,
		transport.WithAddr(fmt.Sprintf(":%d", cfg.Server.Port)),
		transport.WithReadTimeout(cfg.Server.ReadTimeout),
		transport.WithWriteTimeout(cfg.Server.WriteTimeout),
		transport.WithShutdownTimeout(cfg.Server.ShutdownTimeout),
		transport.WithLogger(logger),
	)

	logger.Info("configuration loaded",
		"port", cfg.Server.Port,
		"storage", cfg.Storage.Type,
		"token_ttl", cfg.Auth.TokenTTL,
		"policy_rules", len(cfg.Policy.Routes),
	)
	return srv.ListenAndServe()
}

// openStore builds the configured storage backend. Postgres migrations
// run here, before the server accepts traffic.
func openStore(cfg *config.Config) (storage.Store, error) {
	switch cfg.Storage.Type {
	case "postgres":
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		store, err := postgres.New(ctx, postgres.Config{
			DSN:             cfg.Storage.Postgres.DSN,
			MaxConns:        cfg.Storage.Postgres.MaxConns,
			MinConns:        cfg.Storage.Postgres.MinConns,
			MaxConnLifetime: cfg.Storage.Postgres.MaxConnLifetime,
			MigrateOnStart:  cfg.Storage.Postgres.MigrateOnStart,
		})
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		slog.Info("storage ready", "type", "postgres")
		return store, nil
	default:
		slog.Info("storage ready", "type", "memory")
		return memory.New(), nil
	}
}

// seedAdmin creates the bootstrap admin account when configured and not
// already present, so a fresh deployment has a caller that passes the
// admin-only routes.
func seedAdmin(cfg *config.Config, users *service.Users) error {
	admin := cfg.Bootstrap.Admin
	if admin.Username == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	_, err := users.Create(ctx, &api.NewUser{
		DNI:      admin.DNI,
		Username: admin.Username,
		Email:    admin.Email,
		Password: admin.Password,
		Roles:    []string{string(auth.RoleAdmin), string(auth.RoleUser)},
	})
	if err != nil {
		var apiErr *api.APIError
		if errors.As(err, &apiErr) && apiErr.Type == api.ErrorTypeConflict {
			slog.Debug("bootstrap admin already exists", "username", admin.Username)
			return nil
		}
		return fmt.Errorf("seeding bootstrap admin: %w", err)
	}
	slog.Info("bootstrap admin created", "username", admin.Username)
	return nil
}
