package handlers

import (
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"vuttr/internal/apperrors"
	"vuttr/internal/middleware"
	"vuttr/internal/models"
	"vuttr/internal/services"
)

// UserHandler exposes profile self-management plus the admin user CRUD,
// which reuses the generic resource operations.
type UserHandler struct {
	userService *services.UserService
	resource    *ResourceHandler[models.User]
	validate    *validator.Validate
}

// NewUserHandler creates a new UserHandler.
func NewUserHandler(userService *services.UserService, resourceService *services.ResourceService[models.User]) *UserHandler {
	return &UserHandler{
		userService: userService,
		resource:    NewResourceHandler(resourceService, ""),
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the profile routes (any authenticated user)
// and the admin routes (writers only). Literal paths are registered
// before /:id so they are matched first.
func (h *UserHandler) RegisterRoutes(router fiber.Router, protect, writerOnly fiber.Handler) {
	users := router.Group("/users")

	users.Get("/me", protect, h.HandleGetMe)
	users.Patch("/updateMe", protect, h.HandleUpdateMe)
	users.Delete("/deleteMe", protect, h.HandleDeleteMe)

	users.Get("/", protect, writerOnly, h.resource.List)
	users.Post("/", protect, writerOnly, h.HandleCreateUser)
	users.Get("/:id", protect, writerOnly, h.resource.Get)
	users.Patch("/:id", protect, writerOnly, h.resource.Update)
	users.Delete("/:id", protect, writerOnly, h.resource.Delete)
}

// HandleGetMe returns the authenticated user's own profile.
func (h *UserHandler) HandleGetMe(c *fiber.Ctx) error {
	user := middleware.CurrentUser(c)
	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": user},
	})
}

// UpdateMeRequest represents the request body for updateMe.
type UpdateMeRequest struct {
	Name  string `json:"name" validate:"omitempty,min=2,max=100"`
	Email string `json:"email" validate:"omitempty,email"`
}

// HandleUpdateMe updates name and email of the authenticated user.
// Password changes are rejected here and directed to updateMyPassword.
func (h *UserHandler) HandleUpdateMe(c *fiber.Ctx) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(c.Body(), &raw); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if _, ok := raw["password"]; ok {
		return apperrors.ValidationFailed("This route is not for password updates. Please use /users/updateMyPassword")
	}
	if _, ok := raw["passwordConfirm"]; ok {
		return apperrors.ValidationFailed("This route is not for password updates. Please use /users/updateMyPassword")
	}

	var req UpdateMeRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	current := middleware.CurrentUser(c)
	user, err := h.userService.UpdateMe(c.UserContext(), current.ID, req.Name, req.Email)
	if err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status": "success",
		"data":   fiber.Map{"user": user},
	})
}

// HandleDeleteMe soft-deletes the authenticated user's account.
func (h *UserHandler) HandleDeleteMe(c *fiber.Ctx) error {
	current := middleware.CurrentUser(c)
	if err := h.userService.DeactivateMe(c.UserContext(), current.ID); err != nil {
		return err
	}
	return c.SendStatus(fiber.StatusNoContent)
}

// HandleCreateUser is deliberately not implemented; accounts are
// created through signup.
func (h *UserHandler) HandleCreateUser(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"status":  "error",
		"message": "This route is not defined. Please use /users/signup instead",
	})
}
