package cmd

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/cascadehq/cascade/pkg/persistence"
	"github.com/cascadehq/cascade/pkg/persistence/file"
	"github.com/cascadehq/cascade/pkg/persistence/postgresql"
	"github.com/cascadehq/cascade/pkg/persistence/redis"
)

// NewPersistence builds the store for a database URL, dispatching on the
// scheme: postgres://, redis:// or a file path / file:// URL.
func NewPersistence(ctx context.Context, logger *slog.Logger, databaseURL string) (persistence.Persistence, error) {
	scheme, _, _ := strings.Cut(databaseURL, "://")

	switch scheme {
	case "postgres", "postgresql":
		store, err := postgresql.NewPersistence(ctx, logger, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("create postgres persistence: %w", err)
		}

		return store, nil
	case "redis", "rediss":
		store, err := redis.NewPersistence(ctx, databaseURL)
		if err != nil {
			return nil, fmt.Errorf("create redis persistence: %w", err)
		}

		return store, nil
	default:
		return file.NewPersistence(databaseURL), nil
	}
}
