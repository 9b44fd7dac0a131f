package controllers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/EnergyLedger/internal/pkg/apperror"
	"github.com/ManuelReschke/EnergyLedger/internal/pkg/env"
)

const CodeRateLimited = "RATE_LIMITED"

// ErrorHandler renders every error returned by a handler or middleware as
// {"error": {"code", "message", "details"}}. Causes of server errors are
// added as "debug" in the dev environment only.
func ErrorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return c.Status(fe.Code).JSON(fiber.Map{"error": fiber.Map{
			"code":    codeForStatus(fe.Code),
			"message": fe.Message,
			"details": []apperror.FieldError{},
		}})
	}

	e, ok := apperror.As(err)
	if !ok {
		e = apperror.Internal("internal server error", err)
	}
	status := e.HTTPStatus()

	details := e.Details
	if details == nil {
		details = []apperror.FieldError{}
	}
	body := fiber.Map{
		"code":    e.Code,
		"message": e.Message,
		"details": details,
	}

	if status >= fiber.StatusInternalServerError {
		log.Errorf("[API] %s %s failed: %v", c.Method(), c.Path(), err)
		if env.IsDev() && e.Err != nil {
			body["debug"] = e.Err.Error()
		}
	}

	return c.Status(status).JSON(fiber.Map{"error": body})
}

func codeForStatus(status int) string {
	switch status {
	case fiber.StatusBadRequest:
		return apperror.CodeValidation
	case fiber.StatusUnauthorized:
		return apperror.CodeAuthentication
	case fiber.StatusForbidden:
		return apperror.CodeAuthorization
	case fiber.StatusNotFound:
		return apperror.CodeNotFound
	case fiber.StatusConflict:
		return apperror.CodeConflict
	case fiber.StatusRequestEntityTooLarge:
		return apperror.CodeFileUpload
	case fiber.StatusTooManyRequests:
		return CodeRateLimited
	}
	if status >= fiber.StatusInternalServerError {
		return apperror.CodeInternal
	}
	return apperror.CodeValidation
}
