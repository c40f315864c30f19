package repositories

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/bazaar/app/models"
)

// OrderRepository handles database operations for Order. Every lookup and
// write that takes a userID is scoped to that owner.
type OrderRepository struct {
	db *gorm.DB
}

func NewOrderRepository(db *gorm.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// Create persists a new order.
func (r *OrderRepository) Create(ctx context.Context, order *models.Order) error {
	return translate(r.db.WithContext(ctx).Create(order).Error)
}

// FindOwned returns order id if userID owns it; otherwise ErrNotFound.
func (r *OrderRepository) FindOwned(ctx context.Context, userID, id uint) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		First(&order).Error
	if err != nil {
		return nil, translate(err)
	}
	return &order, nil
}

// ListByUser returns userID's orders, newest first.
func (r *OrderRepository) ListByUser(ctx context.Context, userID uint) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, translate(err)
}

// ListAll returns every order in the system, newest first.
func (r *OrderRepository) ListAll(ctx context.Context) ([]models.Order, error) {
	orders := make([]models.Order, 0)
	err := r.db.WithContext(ctx).
		Order("created_at desc, id desc").
		Find(&orders).Error
	return orders, translate(err)
}

// Update writes the mutable fields of an owned order.
func (r *OrderRepository) Update(ctx context.Context, order *models.Order) error {
	res := r.db.WithContext(ctx).
		Model(order).
		Where("user_id = ?", order.UserID).
		Select("amount", "currency", "item", "status", "updated_at").
		Updates(order)
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// DeleteOwned removes order id if userID owns it; otherwise ErrNotFound.
func (r *OrderRepository) DeleteOwned(ctx context.Context, userID, id uint) error {
	res := r.db.WithContext(ctx).
		Where("id = ? AND user_id = ?", id, userID).
		Delete(&models.Order{})
	if res.Error != nil {
		return translate(res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}
