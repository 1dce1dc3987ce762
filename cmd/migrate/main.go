package main

import (
	"context"
	"flag"
	"os"
	"time"

	"log/slog"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"

	"github.com/lakshmeeshman/SIH-2025/internal/app/migrate"
	"github.com/lakshmeeshman/SIH-2025/internal/domain"
	"github.com/lakshmeeshman/SIH-2025/internal/repository/postgres"
	"github.com/lakshmeeshman/SIH-2025/internal/service/admin"
	"github.com/lakshmeeshman/SIH-2025/pkg/config"
	"github.com/lakshmeeshman/SIH-2025/pkg/logger"
)

func main() {
	command := flag.String("command", "up", "migrate command (up|status|down|seed)")
	timeout := flag.Duration("timeout", time.Minute, "command timeout")
	target := flag.Int64("target", 0, "target version for down command (optional)")
	flag.Parse()

	_ = godotenv.Load()
	cfg := config.LoadAPIConfig()
	log := logger.New("migrate", slog.LevelInfo)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Error("failed to connect to database", "error", err)
		os.Exit(1)
	}

	runner, err := migrate.New(pool, cfg.DatabaseURL, cfg.MigrationsDir, log)
	if err != nil {
		log.Error("failed to configure migration runner", "error", err)
		os.Exit(1)
	}
	defer runner.Close()

	switch *command {
	case "up":
		if err := runner.Ensure(ctx); err != nil {
			log.Error("failed to apply migrations", "error", err)
			os.Exit(1)
		}
	case "status":
		if err := runner.Status(ctx); err != nil {
			log.Error("failed to fetch migration status", "error", err)
			os.Exit(1)
		}
	case "down":
		if err := runner.Down(ctx, *target); err != nil {
			log.Error("failed to roll back migrations", "error", err)
			os.Exit(1)
		}
	case "seed":
		if err := seed(ctx, pool, log, cfg); err != nil {
			log.Error("failed to seed accounts", "error", err)
			os.Exit(1)
		}
	default:
		log.Error("unsupported command", "command", *command)
		os.Exit(1)
	}

	log.Info("migration command completed", "command", *command)
}

// seed provisions the default admin account. This is the only path that
// creates role=admin; the API itself never does.
func seed(ctx context.Context, pool *pgxpool.Pool, log *slog.Logger, cfg config.APIConfig) error {
	if cfg.SeedAdminPassword == "" {
		log.Warn("SEED_ADMIN_PASSWORD not set, skipping admin seed")
		return nil
	}
	adminSvc := admin.New(postgres.New(pool), log, cfg)
	account, created, err := adminSvc.EnsureAccount(ctx, cfg.SeedAdminEmail, cfg.SeedAdminPassword, domain.RoleAdmin)
	if err != nil {
		return err
	}
	if created {
		log.Info("admin account seeded", "email", account.Email)
	} else {
		log.Info("admin account already exists", "email", account.Email)
	}
	return nil
}
