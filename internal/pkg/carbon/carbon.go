// Package carbon converts monthly energy usage into carbon emissions.
package carbon

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/catalog"
)

// Result is the outcome of a calculation.
type Result struct {
	TotalEmission   float64         `json:"total_emission"`
	MonthlyEmission map[int]float64 `json:"monthly_emission"`
	EmissionFactor  float64         `json:"emission_factor"`
	Formula         string          `json:"formula"`
	// UnknownFactor is set when the page key had no factor and the default was used.
	UnknownFactor bool `json:"-"`
}

// Engine calculates emissions from a fixed factor table.
type Engine struct {
	catalog *catalog.Catalog
}

// NewEngine returns an engine bound to the given catalog.
func NewEngine(c *catalog.Catalog) *Engine {
	return &Engine{catalog: c}
}

// Calculate returns the emissions for the monthly usage of one page key.
// Every month is rounded to two decimals before the total is summed.
// The year is accepted for time-varying factors but currently unused.
func (e *Engine) Calculate(pageKey string, monthly map[int]float64, year int) Result {
	factor, known := e.catalog.Factor(pageKey)
	if !known {
		log.Warnf("[Carbon] No emission factor for %q (year %d), using %s", pageKey, year, FormatFactor(factor))
	}

	months := make([]int, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Ints(months)

	res := Result{
		MonthlyEmission: make(map[int]float64, len(monthly)),
		EmissionFactor:  factor,
		Formula:         fmt.Sprintf("%s × %s", pageKey, FormatFactor(factor)),
		UnknownFactor:   !known,
	}

	var total float64
	for _, m := range months {
		v := Round2(monthly[m] * factor)
		res.MonthlyEmission[m] = v
		total += v
	}
	res.TotalEmission = Round2(total)

	return res
}

// Round2 rounds the exact binary value of v to two decimal places, with
// exact ties going to the even digit. 2.675 is stored as 2.67499... and
// rounds to 2.67.
func Round2(v float64) float64 {
	r, err := strconv.ParseFloat(strconv.FormatFloat(v, 'f', 2, 64), 64)
	if err != nil {
		return v
	}
	if r == 0 {
		return 0
	}
	return r
}

// Sum adds the values of a monthly map and rounds the result to two decimals.
func Sum(monthly map[int]float64) float64 {
	months := make([]int, 0, len(monthly))
	for m := range monthly {
		months = append(months, m)
	}
	sort.Ints(months)

	var total float64
	for _, m := range months {
		total += monthly[m]
	}
	return Round2(total)
}

// FormatFactor prints a factor with at least one fractional digit, e.g. 1.0 or 2.6068.
func FormatFactor(f float64) string {
	s := strconv.FormatFloat(f, 'f', -1, 64)
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}
