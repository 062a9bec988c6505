package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	defaultTimeout = 10 * time.Second
	indexTimeout   = 30 * time.Second
)

// Config describes the visit store connection.
type Config struct {
	URI      string
	Database string
	// Timeout bounds server selection, the connect and the startup ping.
	// Zero means 10s.
	Timeout time.Duration
	AppName string
}

// Connect opens a client, pings the primary, and returns the client together
// with the configured database.
func Connect(ctx context.Context, cfg Config) (*mongo.Client, *mongo.Database, error) {
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultTimeout
	}

	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(cfg.Timeout)
	if cfg.AppName != "" {
		opts.SetAppName(cfg.AppName)
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, nil, fmt.Errorf("mongo connect: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("mongo ping %s: %w", cfg.Database, err)
	}
	return client, client.Database(cfg.Database), nil
}

// IndexBuilder is a repository that owns indexes on its collection.
type IndexBuilder interface {
	EnsureIndexes(ctx context.Context) error
}

// EnsureIndexes runs every builder in order and stops at the first failure.
func EnsureIndexes(ctx context.Context, builders ...IndexBuilder) error {
	for _, b := range builders {
		if err := b.EnsureIndexes(ctx); err != nil {
			return fmt.Errorf("ensure indexes: %w", err)
		}
	}
	return nil
}

// Disconnect closes the client, bounded by the default timeout.
func Disconnect(client *mongo.Client) error {
	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()
	return client.Disconnect(ctx)
}
