package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/pkg/apperr"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

var (
	ErrAlreadyVendor   = apperr.Conflict("User is already a vendor")
	ErrRoleLocked      = apperr.Forbidden("Admins cannot hold a vendor profile")
	ErrNotVendor       = apperr.Forbidden("User is not a vendor")
	ErrTargetNotVendor = apperr.BadRequest("User is not a vendor")
	ErrInvalidVendorID = apperr.BadRequest("Invalid vendor ID")
	ErrVendorNotFound  = apperr.NotFound("Vendor not found")
)

// VendorService manages the vendor profile carried by an account and the
// customer ⇄ vendor role transitions that come with it.
type VendorService struct {
	users UserStore
}

func NewVendorService(users UserStore) *VendorService {
	return &VendorService{users: users}
}

// Create turns a customer into a vendor with the given profile.
func (s *VendorService) Create(ctx context.Context, userID uint, req requests.CreateVendor) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}

	from := user.Role
	switch err := user.BecomeVendor(req.Profile(), req.Active()); {
	case errors.Is(err, models.ErrAlreadyVendor):
		return nil, ErrAlreadyVendor
	case errors.Is(err, models.ErrRoleLocked):
		return nil, ErrRoleLocked
	case err != nil:
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	if err := s.users.Promote(ctx, user); err != nil {
		// Another request promoted the account first.
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrAlreadyVendor
		}
		return nil, fmt.Errorf("create vendor: %w", err)
	}

	metrics.RecordRoleTransition(from.String(), user.Role.String())
	logger.WithCtx(ctx).Info("vendor profile created", "user_id", user.ID)
	return user, nil
}

// Profile returns the caller's own vendor account.
func (s *VendorService) Profile(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !user.IsVendor() {
		return nil, ErrNotVendor
	}
	return user, nil
}

// List returns every account with its public profile and role, vendor or
// not, so a directory can show who may still become one.
func (s *VendorService) List(ctx context.Context) ([]models.User, error) {
	users, err := s.users.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list vendors: %w", err)
	}
	return users, nil
}

// Find returns vendor id. A zero id is rejected as malformed.
func (s *VendorService) Find(ctx context.Context, id uint) (*models.User, error) {
	if id == 0 {
		return nil, ErrInvalidVendorID
	}
	user, err := s.users.FindByID(ctx, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrVendorNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find vendor: %w", err)
	}
	if !user.IsVendor() {
		return nil, ErrTargetNotVendor
	}
	return user, nil
}

// Update changes the provided profile fields and marks the vendor active.
func (s *VendorService) Update(ctx context.Context, userID uint, req requests.UpdateVendor) (*models.User, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.ApplyProfilePatch(req.Patch()); err != nil {
		return nil, ErrNotVendor
	}

	if err := s.users.UpdateProfile(ctx, user); err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return nil, ErrNotVendor
		}
		return nil, fmt.Errorf("update vendor: %w", err)
	}

	logger.WithCtx(ctx).Info("vendor profile updated", "user_id", user.ID)
	return user, nil
}

// Delete reverts the caller to customer and removes all of their orders in
// one transaction. It returns the number of orders deleted.
func (s *VendorService) Delete(ctx context.Context, userID uint) (int64, error) {
	user, err := s.load(ctx, userID)
	if err != nil {
		return 0, err
	}

	from := user.Role
	if err := user.RevertToCustomer(); err != nil {
		return 0, ErrNotVendor
	}

	deleted, err := s.users.Demote(ctx, user)
	if err != nil {
		if errors.Is(err, repositories.ErrConflict) {
			return 0, ErrNotVendor
		}
		return 0, fmt.Errorf("delete vendor: %w", err)
	}

	metrics.RecordRoleTransition(from.String(), user.Role.String())
	logger.WithCtx(ctx).Info("vendor profile deleted",
		"user_id", user.ID, "deleted_orders", deleted)
	return deleted, nil
}

func (s *VendorService) load(ctx context.Context, userID uint) (*models.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load user %d: %w", userID, err)
	}
	return user, nil
}
