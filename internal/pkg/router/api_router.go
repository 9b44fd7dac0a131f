package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/middleware"
)

type ApiRouter struct {
	deps Dependencies
}

func (h ApiRouter) InstallRouter(app *fiber.App) {
	hd := h.deps.Handlers
	gate := hd.Gate

	api := app.Group("/api", NewLimiter(h.deps.LimiterStorage))
	api.Get("/v1/health", hd.HandleHealth)

	// API v1 routes, authenticated from here on
	v1 := api.Group("/v1", h.deps.Auth.RequireAuth())

	carbon := v1.Group("/carbon", middleware.RequirePermission(gate, authz.PermCarbonCalculate))
	carbon.Post("/calculate", hd.HandleCalculate)
	carbon.Get("/factors", hd.HandleFactors)

	entries := v1.Group("/entries")
	entries.Post("/submit", hd.HandleSubmitEntry)
	entries.Get("/", hd.HandleListEntries)
	entries.Get("/:id", hd.HandleGetEntry)
	entries.Put("/:id", hd.HandleUpdateEntry)
	entries.Get("/:id/emission", hd.HandleEntryEmission)

	files := v1.Group("/files")
	files.Post("/upload", hd.HandleUploadFile)
	files.Get("/", hd.HandleListFiles)
	files.Delete("/:id", hd.HandleDeleteFile)

	// admin only; review and user management check their own permissions
	admin := v1.Group("/admin", middleware.RequirePermission(gate, authz.PermAdminEntriesRead))
	admin.Get("/entries", hd.HandleAdminListEntries)
	admin.Get("/entries/:id/reviews", hd.HandleReviewHistory)
	admin.Post("/entries/:id/review", hd.HandleReviewEntry)
	admin.Get("/users/:id/entries", hd.HandleAdminUserEntries)
	admin.Put("/users/bulk-update", hd.HandleBulkUpdateUsers)
	admin.Get("/stats", hd.HandleStats)
}

func NewApiRouter(deps Dependencies) *ApiRouter {
	return &ApiRouter{deps: deps}
}
