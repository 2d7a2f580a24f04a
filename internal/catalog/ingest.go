package catalog

import (
	"context"
	"log/slog"

	"github.com/bits-and-blooms/bloom/v3"
	"github.com/go-faster/errors"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/shop-api/internal/domain/item"
)

const (
	minBloomCapacity = 10_000
	bloomFPR         = 0.001
	maxParallelFiles = 4
)

// Stats summarizes an ingest run.
type Stats struct {
	Read     int
	Inserted int
	Skipped  int
}

// Ingester inserts items that are not yet in the catalog. An item is a
// duplicate when an existing item has the same name, description and price.
//
// Known items are tracked in a bloom filter, so only probable duplicates
// cost a repository lookup.
type Ingester struct {
	items  item.Repository
	filter *bloom.BloomFilter
}

// NewIngester loads the existing catalog into the duplicate filter.
func NewIngester(ctx context.Context, items item.Repository) (*Ingester, error) {
	existing, err := items.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list items")
	}
	capacity := max(uint(len(existing))*2, minBloomCapacity)
	filter := bloom.NewWithEstimates(capacity, bloomFPR)
	for _, it := range existing {
		filter.AddString(key(it))
	}
	return &Ingester{items: items, filter: filter}, nil
}

func key(it item.Item) string {
	return it.Name + "\x00" + it.Description + "\x00" + it.Price.String()
}

// Ingest inserts new items in order and skips duplicates, including
// duplicates within items.
func (in *Ingester) Ingest(ctx context.Context, items []item.Item) (Stats, error) {
	stats := Stats{Read: len(items)}
	for _, it := range items {
		k := key(it)
		if in.filter.TestString(k) {
			dup, err := in.exists(ctx, it)
			if err != nil {
				return stats, err
			}
			if dup {
				stats.Skipped++
				continue
			}
		}

		if err := in.items.Create(ctx, &it); err != nil {
			return stats, errors.Wrapf(err, "create item %q", it.Name)
		}
		in.filter.AddString(k)
		stats.Inserted++
	}
	return stats, nil
}

func (in *Ingester) exists(ctx context.Context, it item.Item) (bool, error) {
	matches, err := in.items.FindByName(ctx, it.Name)
	if err != nil {
		return false, errors.Wrapf(err, "find item %q", it.Name)
	}
	for _, m := range matches {
		if m.Description == it.Description && m.Price.Equal(it.Price) {
			return true, nil
		}
	}
	return false, nil
}

// IngestFiles decodes files concurrently, then ingests their items in the
// order the files were given.
func (in *Ingester) IngestFiles(ctx context.Context, paths []string) (Stats, error) {
	decoded := make([][]item.Item, len(paths))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelFiles)
	for i, path := range paths {
		g.Go(func() error {
			items, err := ReadFile(gctx, path)
			if err != nil {
				return err
			}
			slog.Info("decoded catalog file", slog.String("path", path), slog.Int("items", len(items)))
			decoded[i] = items
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Stats{}, err
	}

	var total Stats
	for i, items := range decoded {
		stats, err := in.Ingest(ctx, items)
		total.Read += stats.Read
		total.Inserted += stats.Inserted
		total.Skipped += stats.Skipped
		if err != nil {
			return total, errors.Wrapf(err, "ingest %s", paths[i])
		}
	}
	return total, nil
}
