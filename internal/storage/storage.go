// Package storage is the durable key/value store the dashboard keeps its
// session in. It plays the part a browser's local storage plays for a web
// front-end: a handful of small string values under well-known keys that
// survive restarts.
package storage

import (
	"context"
	"errors"
	"fmt"
)

var ErrClosed = errors.New("storage closed")

// Storage holds string values under string keys. A missing key is reported
// with ok=false and a nil error.
type Storage interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
	Close() error
}

// Options selects and configures a driver.
type Options struct {
	Driver string // file, memory, postgres
	Dir    string // file driver
	DSN    string // postgres driver
}

// Open returns the driver named in opts.
func Open(ctx context.Context, opts Options) (Storage, error) {
	switch opts.Driver {
	case "", "file":
		return NewFileStorage(opts.Dir)
	case "memory":
		return NewMemoryStorage(), nil
	case "postgres":
		return NewPostgresStorage(ctx, opts.DSN)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", opts.Driver)
	}
}

func validKey(key string) error {
	if key == "" {
		return errors.New("empty storage key")
	}
	for _, r := range key {
		if !(r == '_' || r == '-' || r == '.' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9')) {
			return fmt.Errorf("invalid storage key %q", key)
		}
	}
	if key == "." || key == ".." {
		return fmt.Errorf("invalid storage key %q", key)
	}

	return nil
}
