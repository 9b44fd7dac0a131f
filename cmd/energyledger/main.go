package main

import (
	"fmt"
	"log"
	"os"

	"github.com/gofiber/contrib/swagger"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/gofiber/fiber/v2/middleware/basicauth"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/ManuelReschke/EnergyLedger/app/controllers"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/account"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/cache"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/carbon"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/database"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/entry"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/evidence"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/identity"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/middleware"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/objectstore"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/review"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/router"
)

// 10 MiB evidence files plus multipart overhead
const bodyLimit = 16 * 1024 * 1024

func main() {
	app := NewApplication()
	err := app.Listen(fmt.Sprintf("%s:%s", env.GetEnv("APP_HOST", "localhost"), env.GetEnv("APP_PORT", "4000")))
	log.Fatal(err)
}

func NewApplication() *fiber.App {
	env.SetupEnvFile()
	database.SetupDatabase()
	cache.SetupCache()

	// Define possible base paths
	basePaths := []string{
		"./",        // Current directory
		"../../",    // From cmd/energyledger to project root
		"../../../", // Fallback
	}

	basePath := ""
	for _, path := range basePaths {
		if _, err := os.Stat(path + "public/docs"); !os.IsNotExist(err) {
			basePath = path
			break
		}
	}
	if basePath == "" {
		panic("Could not find project root directory")
	}

	cfg := fiber.Config{
		BodyLimit:    bodyLimit,
		ErrorHandler: controllers.ErrorHandler,
	}
	router.ApplyProxyConfig(&cfg)
	app := fiber.New(cfg)

	// recovery and logging
	app.Use(recover.New(), logger.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: env.GetEnv("CORS_ORIGINS", "http://localhost:5173"),
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, X-API-Key",
	}))

	// fiber and prometheus metrics, disabled without a password
	if password := env.GetEnv("METRICS_PASSWORD", ""); password != "" {
		auth := basicauth.New(basicauth.Config{
			Users: map[string]string{env.GetEnv("METRICS_USER", "admin"): password},
		})
		app.Get("/metrics", auth, monitor.New())
		app.Get("/metrics/prometheus", auth, adaptor.HTTPHandler(promhttp.Handler()))
	}

	// SWAGGER / OPENAPI
	openAPICfg := swagger.Config{
		BasePath: "/docs/api/",
		FilePath: basePath + "public/docs/v1/openapi.yml",
		Path:     "v1",
	}
	app.Use(swagger.New(openAPICfg))

	// ROUTER
	router.InstallRouter(app, wire())

	return app
}

// wire builds the services on top of the connected stores.
func wire() router.Dependencies {
	repository.InitializeFactory(database.GetDB())
	repos := repository.GetGlobalRepositories()

	gate, err := authz.NewGate()
	if err != nil {
		log.Fatalf("Failed to initialize authorization: %v", err)
	}

	storeCfg, err := objectstore.LoadConfig()
	if err != nil {
		log.Fatalf("Invalid storage configuration: %v", err)
	}
	store, err := objectstore.New(storeCfg)
	if err != nil {
		log.Fatalf("Failed to initialize object storage: %v", err)
	}

	var activity counter.Counter = counter.NewMemoryCounter()
	if cache.Connected() {
		activity = counter.NewRedisCounter(cache.GetClient())
	}

	m := metrics.Default()
	cat := catalog.Default()

	handlers := &controllers.Handlers{
		Entries: entry.NewService(repos.Entry, cat, carbon.NewEngine(cat), gate,
			entry.WithMetrics(m), entry.WithCounter(activity)),
		Files: evidence.NewService(repos.File, repos.Entry, store, cat, gate,
			evidence.WithMetrics(m), evidence.WithCounter(activity)),
		Reviews:  review.NewService(repos.Review, repos.Entry, gate, activity),
		Accounts: account.NewService(repos.Profile, gate),
		Catalog:  cat,
		Gate:     gate,
		Counter:  activity,
		Ping:     database.Ping,
	}

	return router.Dependencies{
		Handlers: handlers,
		Auth: &middleware.Authenticator{
			Tokens:  authz.NewResolver(identity.NewRemoteVerifierFromEnv(), repos.Profile),
			APIKeys: authz.NewResolver(identity.NewAPIKeyVerifier(repos.Profile), repos.Profile),
			Metrics: m,
		},
		LimiterStorage: router.NewRedisLimiterStorage(),
	}
}
