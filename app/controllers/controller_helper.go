package controllers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/ManuelReschke/EnergyLedger/app/models"
	"github.com/ManuelReschke/EnergyLedger/app/repository"
	apiv1 "github.com/ManuelReschke/EnergyLedger/internal/api/v1"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/validation"
)

const (
	defaultPage     = 1
	defaultPageSize = 20
)

// bindJSON parses and validates a JSON body, reporting type errors
// together with constraint violations.
func bindJSON(c *fiber.Ctx, out any) error {
	return validation.BindJSON(c.Body(), out)
}

// bindListQuery parses the entry list query string with paging defaults.
func bindListQuery(c *fiber.Ctx) (apiv1.EntryListQuery, error) {
	q := apiv1.EntryListQuery{Page: defaultPage, PageSize: defaultPageSize}
	if err := c.QueryParser(&q); err != nil {
		return q, apperror.InvalidField("query", "type", "page and page_size must be integers")
	}
	return q, validation.Validate(q)
}

func entryFilter(q apiv1.EntryListQuery) repository.EntryFilter {
	return repository.EntryFilter{
		Category: q.Category,
		PageKey:  q.PageKey,
		Status:   models.EntryStatus(q.Status),
		FromDate: q.FromDate,
		ToDate:   q.ToDate,
		Offset:   q.Offset(),
		Limit:    q.PageSize,
	}
}

func listResponse(q apiv1.EntryListQuery, entries []models.EnergyEntry, total int64) fiber.Map {
	if entries == nil {
		entries = []models.EnergyEntry{}
	}
	return fiber.Map{
		"entries":    entries,
		"pagination": apiv1.NewPagination(q.Page, q.PageSize, total),
	}
}

// ClientIP returns the client address as resolved by fiber. Forwarding
// headers only count when the app trusts the connecting proxy.
func ClientIP(c *fiber.Ctx) string {
	return strings.TrimPrefix(c.IP(), "::ffff:")
}
