// Package catalog bulk-loads catalog items from JSON files.
//
// A file holds either a JSON array of items or newline-delimited item
// objects, optionally gzip-compressed:
//
//	{"name": "Round Widget", "description": "A widget that is round", "price": 2.99}
package catalog

import (
	"bufio"
	"context"
	"io"
	"os"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	pgzip "github.com/klauspost/pgzip"
	"github.com/shopspring/decimal"

	"github.com/xenking/shop-api/internal/domain/item"
)

// ReadFile decodes all items in path. Files ending in .gz are decompressed.
func ReadFile(ctx context.Context, path string) ([]item.Item, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "open %s", path)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".gz") {
		gz, err := pgzip.NewReader(f)
		if err != nil {
			return nil, errors.Wrapf(err, "create gzip reader for %s", path)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	items, err := Decode(ctx, r)
	if err != nil {
		return nil, errors.Wrapf(err, "decode %s", path)
	}
	return items, nil
}

// Decode reads a JSON array of items or a stream of item objects.
func Decode(ctx context.Context, r io.Reader) ([]item.Item, error) {
	d := jx.Decode(bufio.NewReader(r), 4096)

	var items []item.Item
	next := func(d *jx.Decoder) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		it, err := decodeItem(d)
		if err != nil {
			return errors.Wrapf(err, "item %d", len(items))
		}
		items = append(items, it)
		return nil
	}

	switch d.Next() {
	case jx.Array:
		if err := d.Arr(next); err != nil {
			return nil, err
		}
	case jx.Object:
		for d.Next() == jx.Object {
			if err := next(d); err != nil {
				return nil, err
			}
		}
	case jx.Invalid:
		return nil, nil
	default:
		return nil, errors.New("expected array or object")
	}

	if err := d.Skip(); !errors.Is(err, io.EOF) {
		return nil, errors.New("unexpected data after items")
	}
	return items, nil
}

func decodeItem(d *jx.Decoder) (item.Item, error) {
	var (
		it       item.Item
		hasPrice bool
	)
	if err := d.Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "name":
			it.Name, err = d.Str()
		case "description":
			it.Description, err = d.Str()
		case "price":
			it.Price, err = decodePrice(d)
			hasPrice = true
		default:
			err = d.Skip()
		}
		return err
	}); err != nil {
		return it, err
	}

	switch {
	case it.Name == "":
		return it, errors.New("name is required")
	case !hasPrice:
		return it, errors.Errorf("%q: price is required", it.Name)
	case it.Price.IsNegative():
		return it, errors.Errorf("%q: negative price %s", it.Name, it.Price)
	}
	return it, nil
}

// decodePrice accepts a JSON number or a numeric string.
func decodePrice(d *jx.Decoder) (decimal.Decimal, error) {
	var raw string
	if d.Next() == jx.String {
		s, err := d.Str()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = s
	} else {
		n, err := d.Num()
		if err != nil {
			return decimal.Decimal{}, err
		}
		raw = string(n)
	}
	price, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Decimal{}, errors.Wrapf(err, "parse price %q", raw)
	}
	return price, nil
}
