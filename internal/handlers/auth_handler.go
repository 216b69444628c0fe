package handlers

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"vuttr/internal/config"
	"vuttr/internal/middleware"
	"vuttr/internal/models"
	"vuttr/internal/services"
)

// AuthHandler handles HTTP requests for signup, login, logout and the
// password-reset flow.
type AuthHandler struct {
	authService *services.AuthService
	cfg         config.Config
	validate    *validator.Validate
}

// NewAuthHandler creates a new AuthHandler.
func NewAuthHandler(authService *services.AuthService, cfg config.Config) *AuthHandler {
	return &AuthHandler{
		authService: authService,
		cfg:         cfg,
		validate:    validator.New(),
	}
}

// RegisterRoutes registers the public auth routes and the
// password-management routes that require an authenticated session.
func (h *AuthHandler) RegisterRoutes(router fiber.Router, protect fiber.Handler) {
	users := router.Group("/users")
	users.Post("/signup", h.HandleSignup)
	users.Post("/login", h.HandleLogin)
	users.Get("/logout", h.HandleLogout)
	users.Post("/forgotPassword", h.HandleForgotPassword)
	users.Patch("/resetPassword/:token", h.HandleResetPassword)

	users.Patch("/updateMyPassword", protect, h.HandleUpdatePassword)
}

// SignupRequest represents the request body for signup.
type SignupRequest struct {
	Name            string `json:"name" validate:"required,min=2,max=100"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// HandleSignup registers a new user and logs them in. The role is
// always reader; writer accounts are promoted through the admin routes.
func (h *AuthHandler) HandleSignup(c *fiber.Ctx) error {
	var req SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	user := &models.User{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
		Role:     models.RoleReader,
	}

	token, err := h.authService.Signup(c.UserContext(), user)
	if err != nil {
		return err
	}

	return h.sendToken(c, fiber.StatusCreated, token, user)
}

// LoginRequest represents the request body for login.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleLogin authenticates a user. Missing and wrong credentials both
// resolve to the same 401 inside the service.
func (h *AuthHandler) HandleLogin(c *fiber.Ctx) error {
	var req LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}

	user, token, err := h.authService.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}

	return h.sendToken(c, fiber.StatusOK, token, user)
}

// HandleLogout overwrites the session cookie with a short-lived
// placeholder value.
func (h *AuthHandler) HandleLogout(c *fiber.Ctx) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    "loggedout",
		Expires:  time.Now().Add(10 * time.Second),
		HTTPOnly: true,
	})
	return c.JSON(fiber.Map{"status": "success"})
}

// ForgotPasswordRequest represents the request body for forgotPassword.
type ForgotPasswordRequest struct {
	Email string `json:"email" validate:"required,email"`
}

// HandleForgotPassword issues a single-use reset token and mails it.
func (h *AuthHandler) HandleForgotPassword(c *fiber.Ctx) error {
	var req ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	resetURLBase := fmt.Sprintf("%s://%s/users/resetPassword", c.Protocol(), c.Hostname())
	if err := h.authService.ForgotPassword(c.UserContext(), req.Email, resetURLBase); err != nil {
		return err
	}

	return c.JSON(fiber.Map{
		"status":  "success",
		"message": "Token sent to email",
	})
}

// ResetPasswordRequest represents the request body for resetPassword.
type ResetPasswordRequest struct {
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// HandleResetPassword consumes the emailed token and logs the user in
// with a fresh session.
func (h *AuthHandler) HandleResetPassword(c *fiber.Ctx) error {
	var req ResetPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	user, token, err := h.authService.ResetPassword(c.UserContext(), c.Params("token"), req.Password)
	if err != nil {
		return err
	}

	return h.sendToken(c, fiber.StatusOK, token, user)
}

// UpdatePasswordRequest represents the request body for
// updateMyPassword.
type UpdatePasswordRequest struct {
	PasswordCurrent string `json:"passwordCurrent" validate:"required"`
	Password        string `json:"password" validate:"required,min=8"`
	PasswordConfirm string `json:"passwordConfirm" validate:"required,eqfield=Password"`
}

// HandleUpdatePassword changes the password of the authenticated user,
// invalidating previously issued tokens.
func (h *AuthHandler) HandleUpdatePassword(c *fiber.Ctx) error {
	var req UpdatePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "Invalid request body")
	}
	if err := h.validate.Struct(req); err != nil {
		return err
	}

	current := middleware.CurrentUser(c)
	user, token, err := h.authService.UpdatePassword(c.UserContext(), current.ID, req.PasswordCurrent, req.Password)
	if err != nil {
		return err
	}

	return h.sendToken(c, fiber.StatusOK, token, user)
}

// sendToken writes the session cookie and the success envelope carrying
// the token and the user. The user's sensitive fields never serialize.
func (h *AuthHandler) sendToken(c *fiber.Ctx, status int, token string, user *models.User) error {
	c.Cookie(&fiber.Cookie{
		Name:     middleware.SessionCookie,
		Value:    token,
		Expires:  time.Now().Add(h.cfg.CookieExpiresIn),
		HTTPOnly: true,
		Secure:   h.cfg.AppEnv == "production",
	})

	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"token":  token,
		"data":   fiber.Map{"user": user},
	})
}
