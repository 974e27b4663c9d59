package auth

import (
	"context"
	"errors"
	"strings"

	"github.com/fmontilla/users-system/internal/models"
	"github.com/fmontilla/users-system/internal/services"
	"github.com/fmontilla/users-system/internal/store"
	"github.com/fmontilla/users-system/pkg/crypto"
	pkgerrors "github.com/fmontilla/users-system/pkg/errors"
	"github.com/fmontilla/users-system/pkg/logger"
	"github.com/fmontilla/users-system/pkg/metrics"
	"go.uber.org/zap"
)

// RegisterInput captures the fields accepted when creating an account.
type RegisterInput struct {
	Name     string `json:"name" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

// LoginInput captures the credentials supplied during authentication.
type LoginInput struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// Session pairs an issued access token with the authenticated user's view.
type Session struct {
	Token string          `json:"token"`
	User  models.UserView `json:"user"`
}

// AuthService handles registration, credential verification and token issuance.
type AuthService struct {
	users *services.UserService
	store store.UserStore
	jwt   *JWTService
	log   *zap.Logger
}

// NewAuthService wires an AuthService from its collaborators.
func NewAuthService(users *services.UserService, st store.UserStore, jwtSvc *JWTService) *AuthService {
	return &AuthService{
		users: users,
		store: st,
		jwt:   jwtSvc,
		log:   logger.WithModule("auth"),
	}
}

// Register creates a new account and returns an authenticated session.
// Creation runs through the user service so cached listings are invalidated.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*Session, error) {
	view, err := s.users.Create(ctx, services.CreateUserInput{
		Name:     input.Name,
		Email:    input.Email,
		Password: input.Password,
		Role:     models.RoleUser,
	})
	if err != nil {
		return nil, err
	}

	token, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		UserID: view.ID,
		Email:  view.Email,
		Role:   string(view.Role),
	})
	if err != nil {
		s.log.Error("issue token after register", zap.Uint("user_id", view.ID), zap.Error(err))
		return nil, pkgerrors.Wrap(err, "Failed to issue access token")
	}

	s.log.Info("user registered", zap.Uint("user_id", view.ID))
	return &Session{Token: token, User: *view}, nil
}

// Login verifies credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, input LoginInput) (*Session, error) {
	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, pkgerrors.ErrInvalidCredentials
	}

	user, err := s.store.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, store.ErrRecordNotFound) {
			metrics.AuthAttempts.WithLabelValues("failure").Inc()
			return nil, pkgerrors.ErrInvalidCredentials
		}
		return nil, pkgerrors.Wrap(err, "Failed to load account")
	}

	if !crypto.VerifyPassword(user.Password, input.Password) {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, pkgerrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		metrics.AuthAttempts.WithLabelValues("failure").Inc()
		return nil, pkgerrors.ErrForbidden
	}

	token, err := s.jwt.GenerateAccessToken(AccessTokenInput{
		UserID: user.ID,
		Email:  user.Email,
		Role:   string(user.Role),
	})
	if err != nil {
		s.log.Error("issue token after login", zap.Uint("user_id", user.ID), zap.Error(err))
		return nil, pkgerrors.Wrap(err, "Failed to issue access token")
	}

	metrics.AuthAttempts.WithLabelValues("success").Inc()
	s.log.Info("user logged in", zap.Uint("user_id", user.ID))
	return &Session{Token: token, User: user.View()}, nil
}

// CurrentUser resolves the account behind a validated token's user id.
func (s *AuthService) CurrentUser(ctx context.Context, userID uint) (*models.UserView, error) {
	return s.users.Get(ctx, userID)
}
