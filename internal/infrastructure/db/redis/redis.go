package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultTimeout   = 5 * time.Second
	defaultOpTimeout = 250 * time.Millisecond
)

// Config locates the Redis instance holding login failure counters.
type Config struct {
	Addr     string
	Password string
	DB       int
	// Timeout bounds the startup ping.
	Timeout time.Duration
	// OpTimeout bounds every command issued afterwards. Throttle lookups sit
	// on the login path, so a slow Redis must fail fast rather than stall it.
	OpTimeout time.Duration
}

// Connect returns a client for the login throttle once a ping succeeds.
func Connect(ctx context.Context, cfg Config) (*redis.Client, error) {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	opTimeout := cfg.OpTimeout
	if opTimeout <= 0 {
		opTimeout = defaultOpTimeout
	}

	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  opTimeout,
		WriteTimeout: opTimeout,
	})

	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", cfg.Addr, err)
	}

	return client, nil
}
