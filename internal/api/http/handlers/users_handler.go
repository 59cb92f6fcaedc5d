package handlers

import (
	"net/http"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/api/dto"
	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/service"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// UsersHandler exposes register, login, logout and the current user.
type UsersHandler struct {
	auth    *service.AuthService
	cookies *auth.SessionCookie
	logger  *zap.Logger
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, cookies *auth.SessionCookie, logger *zap.Logger) *UsersHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UsersHandler{auth: authService, cookies: cookies, logger: logger}
}

// Register handles POST /auth/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.UserRegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Missing required fields", nil)
	}

	result, err := h.auth.Register(c.UserContext(), service.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	h.cookies.Set(c, result.Token)

	return c.Status(http.StatusCreated).JSON(dto.OK("User was registered successfully", authResponse(result)))
}

// Login handles POST /auth/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.UserLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("Missing required fields", nil)
	}

	result, err := h.auth.Login(c.UserContext(), service.LoginInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		return err
	}
	h.cookies.Set(c, result.Token)

	return c.JSON(dto.OK("Verification passed", authResponse(result)))
}

// Logout handles POST /auth/logout. The token itself stays valid until it
// expires; only the cookie carrying it is removed.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.cookies.Clear(c); err != nil {
		h.logger.Error("failed log out", zap.Error(err))
		return apperrors.NewLogoutFailed(err)
	}
	return c.JSON(dto.OK("User log out successfully", nil))
}

// Me handles GET /auth/me.
func (h *UsersHandler) Me(c *fiber.Ctx) error {
	identity := auth.IdentityFromContext(c)
	if identity.IsAnonymous() {
		return c.JSON(dto.OK("Not logged in", (*dto.UserResponse)(nil)))
	}
	return c.JSON(dto.OK("Current user", dto.NewUserResponse(identity.User)))
}

func authResponse(result *service.AuthResult) dto.AuthResponse {
	return dto.AuthResponse{
		User:      *dto.NewUserResponse(result.User),
		ExpiresAt: result.ExpiresAt,
	}
}
