package repositories

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// UserRepository handles database operations for User.
type UserRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// FindByEmail looks up a user by their email address.
func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// FindByID looks up a user by primary key.
func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).First(&user, id).Error
	if err != nil {
		return nil, translate(err)
	}
	return &user, nil
}

// Create persists a new user. A taken email yields ErrDuplicate.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	return translate(r.db.WithContext(ctx).Create(user).Error)
}

// ListAll returns every account, oldest first. Callers tell vendors apart
// by role.
func (r *UserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	users := make([]models.User, 0)
	err := r.db.WithContext(ctx).Order("id asc").Find(&users).Error
	return users, translate(err)
}

// Promote writes a customer → vendor transition already applied to user.
// The row must still be a customer; otherwise ErrConflict.
func (r *UserRepository) Promote(ctx context.Context, user *models.User) error {
	return r.transition(r.db.WithContext(ctx), user, models.RoleCustomer)
}

// UpdateProfile writes a vendor's profile fields. The row must still be a
// vendor; otherwise ErrConflict.
func (r *UserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return r.transition(r.db.WithContext(ctx), user, models.RoleVendor)
}

// Demote writes a vendor → customer transition already applied to user and
// deletes all of the user's orders in the same transaction. It returns the
// number of orders removed.
func (r *UserRepository) Demote(ctx context.Context, user *models.User) (int64, error) {
	var deleted int64
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.transition(tx, user, models.RoleVendor); err != nil {
			return err
		}

		res := tx.Where("user_id = ?", user.ID).Delete(&models.Order{})
		if res.Error != nil {
			return fmt.Errorf("delete orders: %w", res.Error)
		}
		deleted = res.RowsAffected
		return nil
	})
	if err != nil {
		return 0, translate(err)
	}
	return deleted, nil
}

// transition writes role and profile columns guarded by the role the row
// is expected to hold, so two concurrent transitions cannot both apply.
func (r *UserRepository) transition(tx *gorm.DB, user *models.User, from models.Role) error {
	now := tx.NowFunc()
	res := tx.Model(&models.User{}).
		Where("id = ? AND role = ?", user.ID, from).
		Updates(map[string]any{
			"updated_at":       now,
			"role":             user.Role,
			"is_active":        user.IsActive,
			"business_name":    user.BusinessName,
			"business_address": user.BusinessAddress,
			"phone_number":     user.PhoneNumber,
		})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrConflict
	}
	user.UpdatedAt = now
	return nil
}
