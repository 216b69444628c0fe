package handlers

import (
	"github.com/gofiber/fiber/v2"

	"vuttr/internal/models"
	"vuttr/internal/services"
)

// ToolHandler exposes the tools directory: the generic CRUD operations
// instantiated for the Tool entity.
type ToolHandler struct {
	*ResourceHandler[models.Tool]
}

// NewToolHandler creates a new ToolHandler.
func NewToolHandler(service *services.ResourceService[models.Tool]) *ToolHandler {
	return &ToolHandler{
		ResourceHandler: NewResourceHandler(service, ""),
	}
}

// RegisterRoutes registers the tool routes. Reads are public; writes
// require an authenticated writer.
func (h *ToolHandler) RegisterRoutes(router fiber.Router, protect, writerOnly fiber.Handler) {
	tools := router.Group("/tools")
	tools.Get("/", h.List)
	tools.Get("/:id", h.Get)

	tools.Post("/", protect, writerOnly, h.Create)
	tools.Patch("/:id", protect, writerOnly, h.Update)
	tools.Delete("/:id", protect, writerOnly, h.Delete)
}
