package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Options describes the session cache connection.
type Options struct {
	Addr     string
	Password string
	DB       int
	// DialTimeout bounds the connect and the startup ping. Zero means 5s.
	DialTimeout time.Duration
}

// Connect opens a client for opts and fails fast when the server does not
// answer a ping.
func Connect(ctx context.Context, opts Options) (*redis.Client, error) {
	if opts.DialTimeout <= 0 {
		opts.DialTimeout = 5 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:        opts.Addr,
		Password:    opts.Password,
		DB:          opts.DB,
		DialTimeout: opts.DialTimeout,
	})

	if err := Ping(ctx, client, opts.DialTimeout); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

// Ping checks the connection within timeout. It backs the readiness probe.
func Ping(ctx context.Context, client *redis.Client, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", client.Options().Addr, err)
	}
	return nil
}
