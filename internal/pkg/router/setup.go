package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/app/controllers"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/middleware"
)

type Router interface {
	InstallRouter(app *fiber.App)
}

// Dependencies are the wired components the routes need.
type Dependencies struct {
	Handlers *controllers.Handlers
	Auth     *middleware.Authenticator
	// LimiterStorage keeps rate limit counters; nil keeps them in memory.
	LimiterStorage fiber.Storage
}

func InstallRouter(app *fiber.App, deps Dependencies) {
	setup(app, NewApiRouter(deps))
}

func setup(app *fiber.App, router ...Router) {
	for _, r := range router {
		r.InstallRouter(app)
	}
}
