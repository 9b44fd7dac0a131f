package validation

import (
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
)

// Collector accumulates field errors from several sources, e.g. form
// conversion failures followed by struct validation.
type Collector struct {
	details []apperror.FieldError
}

// Add records a single violation.
func (c *Collector) Add(field, kind, message string) {
	c.details = append(c.details, apperror.FieldError{Field: field, Kind: kind, Message: message})
}

// Merge appends the details of a validation error, skipping fields that
// already have a violation. Non-validation errors are returned unchanged
// so the caller can abort.
func (c *Collector) Merge(err error) error {
	if err == nil {
		return nil
	}
	e, ok := apperror.As(err)
	if !ok || e.Kind != apperror.KindValidation {
		return err
	}
	for _, d := range e.Details {
		if !c.Has(d.Field) {
			c.details = append(c.details, d)
		}
	}
	return nil
}

// Has reports whether field already has a violation.
func (c *Collector) Has(field string) bool {
	for _, d := range c.details {
		if d.Field == field {
			return true
		}
	}
	return false
}

// Len returns the number of collected violations.
func (c *Collector) Len() int { return len(c.details) }

// Err returns a validation error when anything was collected.
func (c *Collector) Err() error {
	if len(c.details) == 0 {
		return nil
	}
	return apperror.Validation(c.details...)
}
