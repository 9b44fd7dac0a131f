package controllers

import (
	"github.com/gofiber/fiber/v2"

	apiv1 "github.com/ManuelReschke/EnergyLedger/internal/api/v1"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/carbon"
)

// HandleCalculate computes emissions for a monthly usage map without storing anything.
func (h *Handlers) HandleCalculate(c *fiber.Ctx) error {
	var req apiv1.CalculateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res := h.Entries.Calculate(req.PageKey, apiv1.MonthlyValues(req.MonthlyData), req.Year)
	return c.JSON(calculateResponse(res))
}

// HandleFactors lists the known page keys with their category and factor.
func (h *Handlers) HandleFactors(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"factors": h.Catalog.All()})
}

func calculateResponse(res carbon.Result) apiv1.CalculateResponse {
	return apiv1.CalculateResponse{
		TotalEmission:   res.TotalEmission,
		MonthlyEmission: apiv1.MonthlyKeys(res.MonthlyEmission),
		EmissionFactor:  res.EmissionFactor,
		Formula:         res.Formula,
	}
}
