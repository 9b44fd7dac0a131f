package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2/log"
	"github.com/redis/go-redis/v9"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

var (
	client    *redis.Client
	connected bool
)

// Config holds the redis connection settings.
type Config struct {
	Host     string
	Port     int
	Password string
}

// LoadConfig reads CACHE_HOST, CACHE_PORT and CACHE_PASSWORD.
func LoadConfig() Config {
	return Config{
		Host:     env.GetEnv("CACHE_HOST", "localhost"),
		Port:     env.GetEnvInt("CACHE_PORT", 6379),
		Password: env.GetEnv("CACHE_PASSWORD", ""),
	}
}

// Addr returns host:port.
func (c Config) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SetupCache initializes the connection to the redis server
func SetupCache() {
	cfg := LoadConfig()

	client = redis.NewClient(&redis.Options{
		Addr:     cfg.Addr(),
		Password: cfg.Password,
		DB:       0,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	// Test the connection
	pong, err := client.Ping(ctx).Result()
	if err != nil {
		connected = false
		log.Warnf("[Cache] Could not connect to redis at %s: %v", cfg.Addr(), err)
	} else {
		connected = true
		log.Infof("[Cache] Successfully connected to redis: %s", pong)
	}
}

// GetClient returns the Redis client instance
func GetClient() *redis.Client {
	if client == nil {
		SetupCache()
	}
	return client
}

// Connected reports whether the last SetupCache reached the server.
func Connected() bool {
	return client != nil && connected
}

// Close releases the client.
func Close() error {
	if client == nil {
		return nil
	}
	err := client.Close()
	client = nil
	connected = false
	return err
}
