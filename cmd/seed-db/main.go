// Command seed-db applies migrations, loads the demo catalog and creates a
// demo user. Running it twice is harmless.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"

	"github.com/go-faster/errors"

	"github.com/xenking/shop-api/internal/app"
	"github.com/xenking/shop-api/internal/catalog"
	"github.com/xenking/shop-api/internal/domain/user"
)

func main() {
	var (
		cfg          app.StorageConfig
		itemsFile    string
		demoUser     string
		demoPassword string
	)

	flag.StringVar(&cfg.Driver, "driver", app.DriverPostgres, "storage driver: postgres or sqlite")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", "shop.db", "SQLite database file")
	flag.StringVar(&itemsFile, "items-file", "db/seed/items.json", "path to catalog items JSON file")
	flag.StringVar(&demoUser, "demo-user", "demo", "username of the demo account, empty to skip")
	flag.StringVar(&demoPassword, "demo-password", "", "password of the demo account (or SHOP_SEED_PASSWORD env)")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Driver == app.DriverPostgres && cfg.DatabaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if demoPassword == "" {
		demoPassword = os.Getenv("SHOP_SEED_PASSWORD")
	}
	if demoUser != "" && demoPassword == "" {
		slog.Error("demo password is required: set --demo-password or SHOP_SEED_PASSWORD")
		os.Exit(1)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, itemsFile, demoUser, demoPassword); err != nil {
		slog.Error("seed failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("seed completed successfully")
}

func run(ctx context.Context, cfg app.StorageConfig, itemsFile, demoUser, demoPassword string) error {
	slog.Info("connecting to database and running migrations", slog.String("driver", cfg.Driver))

	store, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer store.Close()

	if err := seedItems(ctx, store, itemsFile); err != nil {
		return errors.Wrap(err, "seed items")
	}

	if demoUser == "" {
		return nil
	}
	if err := seedUser(ctx, store, demoUser, demoPassword); err != nil {
		return errors.Wrap(err, "seed demo user")
	}
	return nil
}

func seedItems(ctx context.Context, store *app.Storage, itemsFile string) error {
	slog.Info("reading items file", slog.String("path", itemsFile))

	items, err := catalog.ReadFile(ctx, itemsFile)
	if err != nil {
		return err
	}

	in, err := catalog.NewIngester(ctx, store.Items)
	if err != nil {
		return err
	}
	stats, err := in.Ingest(ctx, items)
	if err != nil {
		return err
	}

	slog.Info("seeded items", slog.Int("inserted", stats.Inserted), slog.Int("skipped", stats.Skipped))
	return nil
}

func seedUser(ctx context.Context, store *app.Storage, username, password string) error {
	users := user.NewService(store.Users, user.BcryptHasher{})
	u, err := users.Create(ctx, user.CreateRequest{
		Username:        username,
		Password:        password,
		ConfirmPassword: password,
	})
	switch {
	case errors.Is(err, user.ErrUsernameTaken):
		slog.Info("demo user already exists", slog.String("username", username))
		return nil
	case err != nil:
		return err
	}

	slog.Info("created demo user", slog.String("username", u.Username), slog.Int64("id", u.ID))
	return nil
}
