// Command catalog-ingest loads catalog items from JSON or NDJSON files,
// optionally gzip-compressed, skipping items that already exist.
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
)

func main() {
	var cfg app.StorageConfig

	flag.StringVar(&cfg.Driver, "driver", app.DriverPostgres, "storage driver: postgres or sqlite")
	flag.StringVar(&cfg.DatabaseURL, "database-url", "", "PostgreSQL connection URL (or DATABASE_URL env)")
	flag.StringVar(&cfg.SQLitePath, "sqlite-path", "shop.db", "SQLite database file")
	flag.Usage = func() {
		_, _ = os.Stderr.WriteString("usage: catalog-ingest [flags] file...\n")
		flag.PrintDefaults()
	}
	flag.Parse()

	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	if cfg.Driver == app.DriverPostgres && cfg.DatabaseURL == "" {
		slog.Error("database URL is required: set --database-url or DATABASE_URL")
		os.Exit(1)
	}
	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	if err := run(ctx, cfg, flag.Args()); err != nil {
		slog.Error("catalog ingest failed", slog.String("error", err.Error()))
		os.Exit(1)
	}

	slog.Info("catalog ingest completed successfully")
}

func run(ctx context.Context, cfg app.StorageConfig, files []string) error {
	slog.Info("connecting to database", slog.String("driver", cfg.Driver))

	store, err := app.OpenStorage(ctx, cfg)
	if err != nil {
		return errors.Wrap(err, "open storage")
	}
	defer store.Close()

	in, err := catalog.NewIngester(ctx, store.Items)
	if err != nil {
		return errors.Wrap(err, "load catalog")
	}

	stats, err := in.IngestFiles(ctx, files)
	slog.Info("ingest stats",
		slog.Int("files", len(files)),
		slog.Int("read", stats.Read),
		slog.Int("inserted", stats.Inserted),
		slog.Int("skipped", stats.Skipped),
	)
	return err
}
