package handlers

import (
	"encoding/json"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"vuttr/internal/query"
	"vuttr/internal/services"
)

// ResourceHandler implements the five generic CRUD operations for one
// entity type. Each operation translates the HTTP request into a store
// operation and wraps the result in the uniform envelope; on failure it
// returns the error so the boundary translator writes the response.
type ResourceHandler[T any] struct {
	service  *services.ResourceService[T]
	validate *validator.Validate
	// expand names one related field preloaded on Get, empty for none.
	expand string
}

// NewResourceHandler creates a ResourceHandler for the entity type T.
func NewResourceHandler[T any](service *services.ResourceService[T], expand string) *ResourceHandler[T] {
	return &ResourceHandler[T]{
		service:  service,
		validate: validator.New(),
		expand:   expand,
	}
}

// List runs the query-features translator over the collection. An empty
// result is a success with results 0, never an error.
func (h *ResourceHandler[T]) List(c *fiber.Ctx) error {
	opts := query.Parse(c.Queries())

	items, err := h.service.List(c.UserContext(), opts)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"results": len(items),
		"data":    items,
	})
}

// Get fetches one record by ID.
func (h *ResourceHandler[T]) Get(c *fiber.Ctx) error {
	item, err := h.service.Get(c.UserContext(), c.Params("id"), h.expand)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   item,
	})
}

// Create validates and persists a new record from the request body.
func (h *ResourceHandler[T]) Create(c *fiber.Ctx) error {
	entity := new(T)
	if err := c.BodyParser(entity); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	if err := h.validate.Struct(entity); err != nil {
		return err
	}

	if err := h.service.Create(c.UserContext(), entity); err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"status": "Created",
		"data":   entity,
	})
}

// Update applies a partial update: only the fields present in the body
// change, and the merged record is re-validated before saving.
func (h *ResourceHandler[T]) Update(c *fiber.Ctx) error {
	entity, err := h.service.Get(c.UserContext(), c.Params("id"), "")
	if err != nil {
		return err
	}

	if err := mergeBody(c.Body(), entity); err != nil {
		return err
	}

	if err := h.validate.Struct(entity); err != nil {
		return err
	}

	if err := h.service.Save(c.UserContext(), entity); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   entity,
	})
}

// Delete removes a record by ID, responding 204 with no body.
func (h *ResourceHandler[T]) Delete(c *fiber.Ctx) error {
	if err := h.service.Delete(c.UserContext(), c.Params("id")); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// mergeBody unmarshals the request body onto an already-fetched record,
// so absent fields keep their stored values. The identifier is pinned
// to the path parameter and cannot be rewritten through the body.
func mergeBody(body []byte, dst any) error {
	var patch map[string]json.RawMessage
	if err := json.Unmarshal(body, &patch); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	// encoding/json matches struct fields case-insensitively, so every
	// spelling of the key must be stripped, not just the exact one.
	for key := range patch {
		if strings.EqualFold(key, "id") {
			delete(patch, key)
		}
	}

	merged, err := json.Marshal(patch)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := json.Unmarshal(merged, dst); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	return nil
}
