package controllers

import (
	"context"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/account"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/authz"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/entry"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/evidence"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/metrics/counter"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/review"
)

// Handlers bundles the services the HTTP handlers delegate to.
type Handlers struct {
	Entries  *entry.Service
	Files    *evidence.Service
	Reviews  *review.Service
	Accounts *account.Service
	Catalog  *catalog.Catalog
	Gate     *authz.Gate
	Counter  counter.Counter
	// Ping checks the relational store for the health endpoint.
	Ping func(ctx context.Context) error
}
