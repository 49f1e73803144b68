package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/ticket-tracker/internal/api/dto"
	"github.com/spec-kit/ticket-tracker/internal/domain"
	"github.com/spec-kit/ticket-tracker/internal/service"
	apperrors "github.com/spec-kit/ticket-tracker/pkg/util"
)

// UsersHandler manages account and directory endpoints.
type UsersHandler struct {
	service *service.AccountService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(accountService *service.AccountService) *UsersHandler {
	return &UsersHandler{service: accountService}
}

// Register POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	profile, token, expiresAt, err := h.service.Register(c.UserContext(), req.Name, req.Email, req.Password)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userResponse(profile, domain.RoleUser),
	}})
}

// Login POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	profile, token, expiresAt, err := h.service.Login(c.UserContext(), req.Email, req.Password)
	if err != nil {
		return err
	}
	role, err := h.service.ResolveRole(c.UserContext(), profile.ID)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.AuthResponse{
		Token:     token,
		ExpiresAt: expiresAt,
		User:      userResponse(profile, role),
	}})
}

// Me GET /api/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": dto.UserResponse{
		ID:    actor.ID,
		Name:  actor.Name,
		Email: actor.Email,
		Role:  actor.Role,
	}})
}

// UpdateProfile PATCH /api/me.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	profile, err := h.service.UpdateProfile(c.UserContext(), actor.ID, service.UpdateProfileInput{
		DisplayName: req.DisplayName,
		Password:    req.Password,
	})
	if err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": userResponse(profile, actor.Role)})
}

// ListProfiles GET /api/profiles. The member directory visible to any
// authenticated user, used for assignee pickers.
func (h *UsersHandler) ListProfiles(c *fiber.Ctx) error {
	profiles, err := h.service.ListProfiles(c.UserContext())
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(profiles))
	for i := range profiles {
		items = append(items, dto.UserResponse{
			ID:    profiles[i].ID,
			Name:  profiles[i].Name,
			Email: profiles[i].Email,
		})
	}
	return c.JSON(fiber.Map{"data": items})
}

// ListUsers GET /api/admin/users.
func (h *UsersHandler) ListUsers(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	users, err := h.service.ListUsers(c.UserContext(), actor)
	if err != nil {
		return err
	}
	items := make([]dto.UserResponse, 0, len(users))
	for i := range users {
		items = append(items, userResponse(&users[i].Profile, users[i].Role))
	}
	return c.JSON(fiber.Map{"data": items})
}

// CreateUser POST /api/admin/users.
func (h *UsersHandler) CreateUser(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.CreateUserRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	profile, err := h.service.CreateUser(c.UserContext(), actor, req.Name, req.Email, req.Password, req.Role)
	if err != nil {
		return err
	}
	role := req.Role
	if role == "" {
		role = domain.RoleUser
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"data": userResponse(profile, role)})
}

// AssignRole PUT /api/admin/users/:id/role.
func (h *UsersHandler) AssignRole(c *fiber.Ctx) error {
	actor, err := requireActor(c)
	if err != nil {
		return err
	}
	var req dto.AssignRoleRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidInput("invalid payload", nil)
	}
	if err := h.service.AssignRole(c.UserContext(), actor, c.Params("id"), req.Role); err != nil {
		return err
	}
	return c.JSON(fiber.Map{"data": fiber.Map{"user_id": c.Params("id"), "role": req.Role}})
}

func userResponse(profile *domain.Profile, role domain.Role) dto.UserResponse {
	return dto.UserResponse{
		ID:    profile.ID,
		Name:  profile.Name,
		Email: profile.Email,
		Role:  role,
	}
}
