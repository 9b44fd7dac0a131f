package controllers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	apiv1 "github.com/ManuelReschke/EnergyLedger/internal/api/v1"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/review"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/usercontext"
)

// HandleAdminListEntries lists entries of every user.
func (h *Handlers) HandleAdminListEntries(c *fiber.Ctx) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	res, err := h.Entries.ListAll(c.UserContext(), usercontext.GetPrincipal(c), entryFilter(q))
	if err != nil {
		return err
	}
	return c.JSON(listResponse(q, res.Entries, res.Total))
}

// HandleAdminUserEntries lists the entries of the user in :id.
func (h *Handlers) HandleAdminUserEntries(c *fiber.Ctx) error {
	q, err := bindListQuery(c)
	if err != nil {
		return err
	}
	filter := entryFilter(q)
	filter.OwnerID = c.Params("id")

	res, err := h.Entries.ListAll(c.UserContext(), usercontext.GetPrincipal(c), filter)
	if err != nil {
		return err
	}
	return c.JSON(listResponse(q, res.Entries, res.Total))
}

// HandleBulkUpdateUsers activates or deactivates several users at once.
func (h *Handlers) HandleBulkUpdateUsers(c *fiber.Ctx) error {
	var req apiv1.BulkUserUpdateRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	res, err := h.Accounts.BulkSetActive(c.UserContext(), usercontext.GetPrincipal(c), req.UserIDs, *req.IsActive)
	if err != nil {
		return err
	}
	return c.JSON(apiv1.BulkUserUpdateResponse{UpdatedCount: res.UpdatedCount, UserIDs: res.UserIDs})
}

// HandleReviewEntry records a review decision. The entry status is not changed.
func (h *Handlers) HandleReviewEntry(c *fiber.Ctx) error {
	var req apiv1.ReviewRequest
	if err := bindJSON(c, &req); err != nil {
		return err
	}
	r, err := h.Reviews.Review(c.UserContext(), usercontext.GetPrincipal(c), c.Params("id"), review.Input{
		Status:           models.ReviewStatus(req.Status),
		Note:             req.Note,
		RequestedChanges: req.RequestedChanges,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"review": r})
}

func (h *Handlers) HandleReviewHistory(c *fiber.Ctx) error {
	reviews, err := h.Reviews.History(c.UserContext(), usercontext.GetPrincipal(c), c.Params("id"))
	if err != nil {
		return err
	}
	if reviews == nil {
		reviews = []models.EntryReview{}
	}
	return c.JSON(fiber.Map{"reviews": reviews})
}

// HandleStats returns the activity counters.
func (h *Handlers) HandleStats(c *fiber.Ctx) error {
	if err := h.Gate.Require(usercontext.GetPrincipal(c), authz.PermAdminStats); err != nil {
		return err
	}
	snap, err := h.Counter.Snapshot(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "activity counters unavailable")
	}
	return c.JSON(fiber.Map{"counters": snap})
}
