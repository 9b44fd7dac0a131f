package router

import (
	"net"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/storage/redis"

	"github.com/ManuelReschke/EnergyLedger/app/controllers"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/cache"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

// NewLimiter limits requests per client address. Counters live in storage
// when given, otherwise in process memory.
func NewLimiter(storage fiber.Storage) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:          env.GetEnvInt("RATE_LIMIT_MAX", 100),
		Expiration:   time.Duration(env.GetEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60)) * time.Second,
		KeyGenerator: controllers.ClientIP,
		Storage:      storage,
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many requests")
		},
	})
}

// NewRedisLimiterStorage stores limiter counters in redis database 1 so
// several instances share them. It returns nil when redis is unreachable.
func NewRedisLimiterStorage() fiber.Storage {
	if !cache.Connected() {
		return nil
	}

	cfg := cache.LoadConfig()
	host, port := cfg.Host, cfg.Port
	if h, p, err := net.SplitHostPort(cache.GetClient().Options().Addr); err == nil {
		host = h
		if v, err := strconv.Atoi(p); err == nil {
			port = v
		}
	}

	return redis.New(redis.Config{
		Host:     host,
		Port:     port,
		Password: cfg.Password,
		Database: 1,
		Reset:    false,
	})
}
