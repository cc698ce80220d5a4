package cache

import (
	"context"
	"errors"
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"github.com/gofiber/storage/redis"
	goredis "github.com/redis/go-redis/v9"

	"github.com/jonathannli/covid-data-visualization/internal/pkg/env"
)

// ErrDisabled is returned by the helpers when CACHE_ENABLED is off.
var ErrDisabled = errors.New("cache disabled")

var (
	client *goredis.Client
	ctx    = context.Background()
)

// Enabled reports whether a Redis compatible cache is configured.
func Enabled() bool {
	return env.GetBool("CACHE_ENABLED", false)
}

// SetupCache initializes the connection to the Redis/Dragonfly cache server.
// The dashboard runs without a cache, so an unreachable server only logs a warning.
func SetupCache() {
	if !Enabled() {
		log.Info("[Cache] Disabled, selection stats and shared chart cache are off")
		return
	}

	host := env.GetEnv("CACHE_HOST", "localhost")
	port := env.GetEnv("CACHE_PORT", "6379")

	client = goredis.NewClient(&goredis.Options{
		Addr:     net.JoinHostPort(host, port),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
		DB:       0,
	})

	if err := Ping(); err != nil {
		log.Warnf("[Cache] Could not connect to %s: %v", client.Options().Addr, err)
	} else {
		log.Infof("[Cache] Connected to %s", client.Options().Addr)
	}
}

// SetClient replaces the client, mainly for tests against a throwaway server.
func SetClient(c *goredis.Client) {
	client = c
}

// GetClient returns the Redis client instance, nil when the cache is disabled
func GetClient() *goredis.Client {
	if client == nil && Enabled() {
		SetupCache()
	}
	return client
}

func Ping() error {
	c := GetClient()
	if c == nil {
		return ErrDisabled
	}
	return c.Ping(ctx).Err()
}

// Set stores a value in the cache with the given key and expiration time
func Set(key string, value interface{}, expiration time.Duration) error {
	c := GetClient()
	if c == nil {
		return ErrDisabled
	}
	return c.Set(ctx, key, value, expiration).Err()
}

// Get retrieves a value from the cache by key
func Get(key string) (string, error) {
	c := GetClient()
	if c == nil {
		return "", ErrDisabled
	}
	return c.Get(ctx, key).Result()
}

// Delete removes a value from the cache by key
func Delete(key string) error {
	c := GetClient()
	if c == nil {
		return ErrDisabled
	}
	return c.Del(ctx, key).Err()
}

// NewStorage returns a fiber.Storage on the same server for the limiter and
// response cache middlewares. database selects a logical DB so keys stay apart
// from the counters in DB 0. Without a cache it returns nil and the middlewares
// fall back to their in-memory store.
func NewStorage(database int) fiber.Storage {
	c := GetClient()
	if c == nil {
		return nil
	}
	// redis.New panics on an unreachable server
	if err := c.Ping(ctx).Err(); err != nil {
		log.Warnf("[Cache] Storage for db %d unavailable, using memory: %v", database, err)
		return nil
	}

	host := "localhost"
	port := 6379
	if h, p, err := net.SplitHostPort(c.Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: c.Options().Password,
		Database: database,
		Reset:    false,
	})
}
