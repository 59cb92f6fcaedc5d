package service

import (
	"context"
	"errors"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/spec-kit/helpdesk/internal/auth"
	"github.com/spec-kit/helpdesk/internal/config"
	"github.com/spec-kit/helpdesk/internal/domain"
	"github.com/spec-kit/helpdesk/internal/repository"
	apperrors "github.com/spec-kit/helpdesk/pkg/util/errorutil"
)

// AuthService coordinates registration and login flows.
type AuthService struct {
	users      repository.UserRepository
	tokens     *auth.TokenManager
	bcryptCost int
	logger     *zap.Logger
	now        func() time.Time
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Tokens   *auth.TokenManager
	Logger   *zap.Logger
}

// AuthResult is returned by successful register and login calls. The token
// still has to be placed in the session cookie by the caller.
type AuthResult struct {
	User      *domain.User
	Token     string
	ExpiresAt time.Time
}

// RegisterInput carries the registration form fields.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Validate checks that every field is present.
func (in RegisterInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required, validation.Length(1, 200)),
		validation.Field(&in.Email, validation.Required, validation.Length(3, 254)),
		validation.Field(&in.Password, validation.Required, validation.Length(1, 72)),
	)
}

// LoginInput carries the login form fields.
type LoginInput struct {
	Email    string
	Password string
}

// Validate checks that both fields are present.
func (in LoginInput) Validate() error {
	return validation.ValidateStruct(&in,
		validation.Field(&in.Email, validation.Required),
		validation.Field(&in.Password, validation.Required),
	)
}

// NewAuthService builds the service.
func NewAuthService(cfg config.AuthConfig, deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:      deps.UserRepo,
		tokens:     deps.Tokens,
		bcryptCost: cfg.BcryptCost,
		logger:     logger,
		now:        time.Now,
	}
}

// Register creates a new account and issues its first session token.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Email = normalizeEmail(in.Email)

	if err := in.Validate(); err != nil {
		s.logger.Warn("missing required fields", zap.String("name", in.Name), zap.String("email", in.Email))
		return nil, apperrors.NewValidationError("Missing required fields", validationDetails(err))
	}

	if _, err := s.users.GetByEmail(ctx, in.Email); err == nil {
		s.logger.Warn("registration failed: user already exists", zap.String("email", in.Email))
		return nil, apperrors.NewConflict("Registration failed: user already exists", nil)
	} else if !errors.Is(err, repository.ErrNotFound) {
		s.logger.Error("failed user registration", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewStoreError("Failed user registration", err)
	}

	hash, err := auth.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		s.logger.Error("failed hashing password", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewInternalError(err)
	}

	user := &domain.User{
		ID:           uuid.NewString(),
		Name:         in.Name,
		Email:        in.Email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		// the unique index is the real guard when two registrations race
		if errors.Is(err, repository.ErrDuplicate) {
			s.logger.Warn("registration failed: user already exists", zap.String("email", in.Email))
			return nil, apperrors.NewConflict("Registration failed: user already exists", nil)
		}
		s.logger.Error("failed user registration", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewStoreError("Failed user registration", err)
	}

	result, err := s.startSession(user)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user was registered successfully", zap.String("user_id", user.ID), zap.String("email", user.Email))
	return result, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	in.Email = normalizeEmail(in.Email)

	if err := in.Validate(); err != nil {
		s.logger.Warn("validation error: missing required fields", zap.String("email", in.Email))
		return nil, apperrors.NewValidationError("Missing required fields", validationDetails(err))
	}

	user, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			s.logger.Warn("login failed: user not found", zap.String("email", in.Email))
			return nil, apperrors.NewNotRegistered("Not registered yet")
		}
		s.logger.Error("failed to log in", zap.String("email", in.Email), zap.Error(err))
		return nil, apperrors.NewStoreError("Failed to log in", err)
	}
	if user.PasswordHash == "" {
		s.logger.Warn("login failed: user has no password", zap.String("email", in.Email))
		return nil, apperrors.NewNotRegistered("Not registered yet")
	}

	if !auth.VerifyPassword(user.PasswordHash, in.Password) {
		s.logger.Warn("login failed: password doesn't match", zap.String("email", in.Email))
		return nil, apperrors.NewBadCredentials("Password doesn't match")
	}

	return s.startSession(user)
}

func (s *AuthService) startSession(user *domain.User) (*AuthResult, error) {
	token, expiresAt, err := s.tokens.Issue(user.ID, user.Name)
	if err != nil {
		s.logger.Error("token signing failed", zap.String("user_id", user.ID), zap.Error(err))
		return nil, apperrors.NewSigningError(err)
	}
	public := *user
	public.PasswordHash = ""
	return &AuthResult{User: &public, Token: token, ExpiresAt: expiresAt}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validationDetails(err error) map[string]any {
	details := map[string]any{}
	var fieldErrs validation.Errors
	if errors.As(err, &fieldErrs) {
		for field, fieldErr := range fieldErrs {
			details[field] = fieldErr.Error()
		}
	}
	return details
}
