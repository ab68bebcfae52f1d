// Command seed loads a demo catalog and coupons into the storefront database
// and prints a bearer token for a demo user.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/utafrali/storefront/internal/config"
	"github.com/utafrali/storefront/internal/identity"
	pgrepo "github.com/utafrali/storefront/internal/repository/postgres"
	pkgconfig "github.com/utafrali/storefront/pkg/config"
	"github.com/utafrali/storefront/pkg/database"
	"github.com/utafrali/storefront/pkg/logger"
)

func main() {
	if _, err := pkgconfig.LoadDotEnv(); err != nil {
		slog.Error("failed to read .env", slog.String("error", err.Error()))
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}
	log := logger.New("storefront-seed", cfg.LogLevel)

	if err := run(cfg, log); err != nil {
		log.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *slog.Logger) error {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg.Postgres(), log)
	if err != nil {
		return err
	}
	defer pool.Close()

	if err := database.RunMigrations(ctx, pool, pgrepo.Migrations(), log); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	if err := seed(ctx, pool, log); err != nil {
		return err
	}

	secret := cfg.JWTSecret
	if secret == "" {
		secret = identity.DevSecret
	}
	token, err := identity.NewProvider(secret, cfg.JWTIssuer, 24*time.Hour).
		Issue("demo-user", "demo@storefront.test", "customer")
	if err != nil {
		return err
	}
	fmt.Println(token)
	return nil
}
