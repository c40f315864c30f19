package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/pkg/apperr"
	"github.com/shashiranjanraj/bazaar/pkg/auth"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

var (
	ErrEmailInUse      = apperr.Conflict("Email already in use")
	ErrUserNotFound    = apperr.NotFound("User not found")
	ErrInvalidPassword = apperr.Unauthorized("Invalid password")
)

// UserStore is the account persistence AuthService and VendorService need.
// *repositories.UserRepository satisfies it.
type UserStore interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uint) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
	ListAll(ctx context.Context) ([]models.User, error)
	Promote(ctx context.Context, user *models.User) error
	UpdateProfile(ctx context.Context, user *models.User) error
	Demote(ctx context.Context, user *models.User) (int64, error)
}

// TokenIssuer signs session tokens. *auth.TokenService satisfies it.
type TokenIssuer interface {
	Issue(userID uint, role string) (string, error)
}

type AuthService struct {
	users  UserStore
	hasher *auth.Hasher
	tokens TokenIssuer
}

func NewAuthService(users UserStore, hasher *auth.Hasher, tokens TokenIssuer) *AuthService {
	return &AuthService{users: users, hasher: hasher, tokens: tokens}
}

// Register creates an account and returns it with a fresh session token.
func (s *AuthService) Register(ctx context.Context, req requests.Register) (*models.User, string, error) {
	_, err := s.users.FindByEmail(ctx, req.Email)
	switch {
	case err == nil:
		metrics.RecordAuth("register", "conflict")
		return nil, "", ErrEmailInUse
	case !errors.Is(err, repositories.ErrNotFound):
		return nil, "", fmt.Errorf("register: lookup email: %w", err)
	}

	hash, err := s.hasher.Hash(req.Password)
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	user := models.NewUser(req.Name, req.Email, hash, req.RoleOrDefault())
	// Only vendors carry a business profile.
	if user.IsVendor() {
		user.BusinessName = req.BusinessName
		user.BusinessAddress = req.BusinessAddress
		user.PhoneNumber = req.PhoneNumber
	}

	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration for the same email.
		if errors.Is(err, repositories.ErrDuplicate) {
			metrics.RecordAuth("register", "conflict")
			return nil, "", ErrEmailInUse
		}
		return nil, "", fmt.Errorf("register: create user: %w", err)
	}

	token, err := s.tokens.Issue(user.ID, user.Role.String())
	if err != nil {
		return nil, "", fmt.Errorf("register: %w", err)
	}

	metrics.RecordAuth("register", "success")
	logger.WithCtx(ctx).Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, token, nil
}

// Login verifies credentials and returns the account with a fresh token.
func (s *AuthService) Login(ctx context.Context, req requests.Login) (*models.User, string, error) {
	user, err := s.users.FindByEmail(ctx, req.Email)
	if errors.Is(err, repositories.ErrNotFound) {
		metrics.RecordAuth("login", "unknown_email")
		return nil, "", ErrUserNotFound
	}
	if err != nil {
		return nil, "", fmt.Errorf("login: lookup email: %w", err)
	}

	if !s.hasher.Check(user.PasswordHash, req.Password) {
		metrics.RecordAuth("login", "bad_password")
		logger.WithCtx(ctx).Warn("login rejected", "user_id", user.ID)
		return nil, "", ErrInvalidPassword
	}

	token, err := s.tokens.Issue(user.ID, user.Role.String())
	if err != nil {
		return nil, "", fmt.Errorf("login: %w", err)
	}

	metrics.RecordAuth("login", "success")
	return user, token, nil
}

// ResolveIdentity loads the live role for an authenticated request.
func (s *AuthService) ResolveIdentity(ctx context.Context, userID uint) (auth.Identity, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return auth.Identity{}, auth.ErrUnknownIdentity
	}
	if err != nil {
		return auth.Identity{}, fmt.Errorf("resolve identity: %w", err)
	}
	return auth.Identity{ID: user.ID, Role: user.Role.String()}, nil
}
