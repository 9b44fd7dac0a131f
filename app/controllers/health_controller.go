package controllers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
)

// HandleHealth reports liveness and whether the database answers.
func (h *Handlers) HandleHealth(c *fiber.Ctx) error {
	if h.Ping != nil {
		if err := h.Ping(c.UserContext()); err != nil {
			log.Warnf("[Health] Database ping failed: %v", err)
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "degraded", "database": "unavailable"})
		}
	}
	return c.JSON(fiber.Map{"status": "ok", "database": "ok"})
}
