package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	apiv1 "github.com/ManuelReschke/EnergyLedger/internal/api/v1"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/entry"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/usercontext"
)

// HandleSubmitEntry creates or replaces the entry for the caller's
// category and year.
func (h *Handlers) HandleSubmitEntry(c *fiber.Ctx) error {
	var req apiv1.SubmitEntryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	res, err := h.Entries.Submit(c.UserContext(), usercontext.GetPrincipal(c), entry.SubmitInput{
		PageKey:      req.PageKey,
		PeriodYear:   req.PeriodYear,
		Unit:         req.Unit,
		Monthly:      apiv1.MonthlyValues(req.Monthly),
		Notes:        req.Notes,
		Payload:      req.Payload,
		ExtraPayload: req.ExtraPayload,
		Status:       models.EntryStatus(req.Status),
	})
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(apiv1.SubmitEntryResponse{EntryID: res.EntryID})
}

// HandleUpdateEntry applies a partial update to an entry of the caller.
func (h *Handlers) HandleUpdateEntry(c *fiber.Ctx) error {
	var req apiv1.UpdateEntryRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}

	in := entry.UpdateInput{
		Unit:         req.Unit,
		Monthly:      apiv1.MonthlyValues(req.Monthly),
		Notes:        req.Notes,
		Payload:      req.Payload,
		ExtraPayload: req.ExtraPayload,
	}
	if req.Status != nil {
		status := models.EntryStatus(*req.Status)
		in.Status = &status
	}

	res, err := h.Entries.Update(c.UserContext(), usercontext.GetPrincipal(c), c.Params("id"), in)
	if err != nil {
		return err
	}
	return c.JSON(apiv1.UpdateEntryResponse{EntryID: res.EntryID, UpdatedFields: res.UpdatedFields})
}

func (h *Handlers) HandleGetEntry(c *fiber.Ctx) error {
	e, err := h.Entries.Get(c.UserContext(), usercontext.GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"entry": e})
}

// HandleListEntries lists the caller's own entries.
func (h *Handlers) HandleListEntries(c *fiber.Ctx) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	res, err := h.Entries.ListOwn(c.UserContext(), usercontext.GetPrincipal(c), entryFilter(q))
	if err != nil {
		return err
	}
	return c.JSON(listResponse(q, res.Entries, res.Total))
}

// HandleEntryEmission runs the carbon engine over a stored entry.
func (h *Handlers) HandleEntryEmission(c *fiber.Ctx) error {
	res, err := h.Entries.Emission(c.UserContext(), usercontext.GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	return c.JSON(calculateResponse(res))
}
