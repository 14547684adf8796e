// Package storage selects and opens the configured persistence driver.
package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/miapp/secure-notes/internal/core/ports"
	"github.com/miapp/secure-notes/internal/infrastructure/config"
	mongostore "github.com/miapp/secure-notes/internal/infrastructure/db/mongo"
	"github.com/miapp/secure-notes/internal/infrastructure/db/sqlite"
)

const (
	DriverSQLite = "sqlite"
	DriverMongo  = "mongo"
)

// Store bundles the Credential Store and Note Store of one driver with its
// lifecycle hooks.
type Store struct {
	Driver string
	Users  ports.UserRepository
	Notes  ports.NoteRepository

	ping  func(ctx context.Context) error
	close func(ctx context.Context) error
}

// Open connects the driver named in cfg and brings its schema up to date:
// migrations for sqlite, indexes for mongo.
func Open(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*Store, error) {
	switch cfg.StorageDriver {
	case DriverSQLite:
		return openSQLite(ctx, cfg.SQLite.Path, cfg.SQLite.BusyTimeout, log)
	case DriverMongo:
		return openMongo(ctx, cfg.Mongo, log)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q", cfg.StorageDriver)
	}
}

// OpenSQLite opens and migrates a SQLite store at path.
func OpenSQLite(ctx context.Context, path string, busyTimeout time.Duration, log zerolog.Logger) (*Store, error) {
	return openSQLite(ctx, path, busyTimeout, log)
}

func openSQLite(ctx context.Context, path string, busyTimeout time.Duration, log zerolog.Logger) (*Store, error) {
	db, err := sqlite.Open(ctx, path, busyTimeout)
	if err != nil {
		return nil, err
	}
	if err := sqlite.Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	log.Info().Str("driver", DriverSQLite).Str("path", path).Msg("storage ready")

	return &Store{
		Driver: DriverSQLite,
		Users:  sqlite.NewUserRepository(db),
		Notes:  sqlite.NewNoteRepository(db),
		ping:   db.PingContext,
		close:  func(context.Context) error { return db.Close() },
	}, nil
}

func openMongo(ctx context.Context, cfg config.MongoConfig, log zerolog.Logger) (*Store, error) {
	client, db, err := mongostore.Connect(ctx, mongostore.Config{URI: cfg.URI, Database: cfg.Database})
	if err != nil {
		return nil, err
	}
	if err := mongostore.EnsureIndexes(ctx, db); err != nil {
		_ = client.Disconnect(ctx)
		return nil, err
	}

	log.Info().Str("driver", DriverMongo).Str("database", cfg.Database).Msg("storage ready")

	return &Store{
		Driver: DriverMongo,
		Users:  mongostore.NewUserRepository(db),
		Notes:  mongostore.NewNoteRepository(db),
		ping:   func(ctx context.Context) error { return client.Ping(ctx, nil) },
		close:  client.Disconnect,
	}, nil
}

// Ping checks that the backing engine answers.
func (s *Store) Ping(ctx context.Context) error {
	return s.ping(ctx)
}

func (s *Store) Close(ctx context.Context) error {
	return s.close(ctx)
}
