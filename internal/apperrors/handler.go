package apperrors

import (
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/dgrijalva/jwt-go"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Handler returns the Fiber error handler that acts as the boundary
// translator: every error raised by a route resolves here to exactly
// one JSON response. Verbosity is fixed at construction, never read
// from ambient state.
func Handler(verbose bool) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		appErr := Classify(err)

		if !appErr.Operational() {
			log.Printf("unexpected error on %s %s: %v", c.Method(), c.Path(), err)
		}

		status := "fail"
		if appErr.StatusCode >= fiber.StatusInternalServerError {
			status = "error"
		}

		body := fiber.Map{
			"status":  status,
			"message": appErr.Message,
		}
		if verbose {
			body["error"] = appErr.Error()
		} else if !appErr.Operational() {
			body["message"] = "Something went wrong"
		}

		return c.Status(appErr.StatusCode).JSON(body)
	}
}

// Classify converts raw store, validation and token errors into
// operational AppErrors. Already-operational errors pass through
// unchanged; everything unrecognized becomes an internal error.
func Classify(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}

	var vErrs validator.ValidationErrors
	if errors.As(err, &vErrs) {
		return ValidationFailed(validationMessage(vErrs))
	}

	var jwtErr *jwt.ValidationError
	if errors.As(err, &jwtErr) {
		return Unauthenticated("Invalid or expired token. Please log in again")
	}

	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		code := CodeValidationFailed
		if fiberErr.Code >= fiber.StatusInternalServerError {
			return Internal(fiberErr.Message, err)
		}
		if fiberErr.Code == fiber.StatusNotFound {
			code = CodeNotFound
		}
		return New(code, fiberErr.Code, fiberErr.Message)
	}

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		return NotFound("No record found with that ID")
	case isDuplicateKey(err):
		return DuplicateKey("Duplicate field value. Please use another value")
	case errors.Is(err, gorm.ErrInvalidData), errors.Is(err, gorm.ErrInvalidValue):
		return ValidationFailed("Invalid input data")
	}

	return Internal("Something went wrong", err)
}

// isDuplicateKey matches unique-constraint violations from the drivers
// in use. GORM exposes ErrDuplicatedKey for translated errors; the
// string checks cover postgres and sqlite messages that are not.
func isDuplicateKey(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") ||
		strings.Contains(msg, "UNIQUE constraint failed")
}

// validationMessage aggregates field failures into one message, the
// same way the store's validation errors are collapsed.
func validationMessage(errs validator.ValidationErrors) string {
	parts := make([]string, 0, len(errs))
	for _, e := range errs {
		parts = append(parts, fmt.Sprintf("field '%s' failed on the '%s' rule", e.Field(), e.Tag()))
	}
	return "Invalid input data: " + strings.Join(parts, ". ")
}
