package db

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/user/urlingest/internal/config"
)

// Store is an append-only record log. There is no update and no delete;
// every backend exposes the same insert-and-list surface.
type Store interface {
	Append(ctx context.Context, rec *Record) error
	ListRecent(ctx context.Context, limit int) ([]Record, error)
	Count(ctx context.Context) (int, error)
	Close() error
}

// Open selects the backend from config: sqlite in the data dir by default,
// postgres when store.driver asks for it.
func Open(cfg *config.Config) (Store, error) {
	switch cfg.Store.Driver {
	case "", "sqlite":
		return OpenSQLite(cfg.DBPath())
	case "postgres":
		return OpenPostgres(cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// marshalList stores string slices as JSON text columns. nil and empty both
// persist as [] so reads never see NULL.
func marshalList(items []string) string {
	if len(items) == 0 {
		return "[]"
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "[]"
	}
	return string(b)
}

func unmarshalList(raw string) []string {
	if raw == "" {
		return nil
	}
	var items []string
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil
	}
	if len(items) == 0 {
		return nil
	}
	return items
}
