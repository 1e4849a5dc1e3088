package web

import (
	"errors"

	"github.com/dukex/flowmodel/pkg/services"
	"github.com/dukex/flowmodel/pkg/validation"
	"github.com/gofiber/fiber/v3"
	"github.com/moogar0880/problems"
)

// GraphProblem is the problem body returned when graph validation blocks an operation.
type GraphProblem struct {
	*problems.Problem

	Report validation.GraphReport `json:"report"`
}

func badRequest(c fiber.Ctx, detail string) error {
	problem := problems.NewStatusProblem(400).
		WithInstance(c.Path()).
		WithType("validation_error").
		WithDetail(detail)

	return c.Status(fiber.StatusBadRequest).JSON(problem)
}

// handleServiceError maps service errors to problems: not found, then
// conflicts, then invalid graphs and other validation errors, then 500.
func handleServiceError(c fiber.Ctx, err error) error {
	var graphErr *services.GraphInvalidError

	switch {
	case services.IsNotFound(err):
		problem := problems.NewStatusProblem(404).
			WithInstance(c.Path()).
			WithType("not_found").
			WithDetail(err.Error())

		return c.Status(fiber.StatusNotFound).JSON(problem)

	case services.IsConflictError(err):
		problem := problems.NewStatusProblem(409).
			WithInstance(c.Path()).
			WithType("conflict").
			WithDetail(err.Error())

		return c.Status(fiber.StatusConflict).JSON(problem)

	case errors.As(err, &graphErr):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("graph_invalid").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(GraphProblem{Problem: problem, Report: graphErr.Report})

	case services.IsValidationError(err):
		problem := problems.NewStatusProblem(400).
			WithInstance(c.Path()).
			WithType("validation_error").
			WithDetail(err.Error())

		return c.Status(fiber.StatusBadRequest).JSON(problem)

	default:
		// Don't expose internal details
		problem := problems.NewStatusProblem(500).
			WithInstance(c.Path()).
			WithType("internal_error").
			WithDetail("internal server error")

		return c.Status(fiber.StatusInternalServerError).JSON(problem)
	}
}
