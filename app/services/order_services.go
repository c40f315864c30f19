package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/shashiranjanraj/bazaar/app/models"
	"github.com/shashiranjanraj/bazaar/app/repositories"
	"github.com/shashiranjanraj/bazaar/app/requests"
	"github.com/shashiranjanraj/bazaar/pkg/apperr"
	"github.com/shashiranjanraj/bazaar/pkg/logger"
	"github.com/shashiranjanraj/bazaar/pkg/metrics"
)

var ErrOrderNotFound = apperr.NotFound("Order not found")

// OrderStore is the order persistence OrderService needs.
// *repositories.OrderRepository satisfies it.
type OrderStore interface {
	Create(ctx context.Context, order *models.Order) error
	FindOwned(ctx context.Context, userID, id uint) (*models.Order, error)
	ListByUser(ctx context.Context, userID uint) ([]models.Order, error)
	ListAll(ctx context.Context) ([]models.Order, error)
	Update(ctx context.Context, order *models.Order) error
	DeleteOwned(ctx context.Context, userID, id uint) error
}

// OrderService is order CRUD scoped to the calling user.
type OrderService struct {
	orders OrderStore
}

func NewOrderService(orders OrderStore) *OrderService {
	return &OrderService{orders: orders}
}

func (s *OrderService) Create(ctx context.Context, userID uint, req requests.CreateOrder) (*models.Order, error) {
	order := models.NewOrder(userID, req.AmountDecimal(), req.Currency, req.Item)
	if err := s.orders.Create(ctx, order); err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	metrics.OrdersCreated.Inc()
	logger.WithCtx(ctx).Info("order created",
		"user_id", userID, "order_id", order.ID, "order_number", order.OrderNumber)
	return order, nil
}

func (s *OrderService) ListOwn(ctx context.Context, userID uint) ([]models.Order, error) {
	orders, err := s.orders.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) ListAll(ctx context.Context) ([]models.Order, error) {
	orders, err := s.orders.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all orders: %w", err)
	}
	return orders, nil
}

func (s *OrderService) Get(ctx context.Context, userID, id uint) (*models.Order, error) {
	if id == 0 {
		return nil, ErrOrderNotFound
	}
	order, err := s.orders.FindOwned(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, ErrOrderNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get order %d: %w", id, err)
	}
	return order, nil
}

// Update applies the provided fields to an owned order.
func (s *OrderService) Update(ctx context.Context, userID, id uint, req requests.UpdateOrder) (*models.Order, error) {
	order, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if req.Amount != nil {
		order.Amount = decimal.NewFromFloat(*req.Amount).Round(2)
	}
	if req.Currency != nil {
		order.Currency = *req.Currency
	}
	if req.Item != nil {
		order.Item = *req.Item
	}
	if req.Status != nil {
		status, err := models.ParseOrderStatus(*req.Status)
		if err != nil {
			return nil, apperr.Validation(map[string]string{"status": "The selected status is invalid."})
		}
		order.Status = status
	}

	if err := s.orders.Update(ctx, order); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, fmt.Errorf("update order %d: %w", id, err)
	}
	return order, nil
}

func (s *OrderService) Delete(ctx context.Context, userID, id uint) error {
	if id == 0 {
		return ErrOrderNotFound
	}
	err := s.orders.DeleteOwned(ctx, userID, id)
	if errors.Is(err, repositories.ErrNotFound) {
		return ErrOrderNotFound
	}
	if err != nil {
		return fmt.Errorf("delete order %d: %w", id, err)
	}
	logger.WithCtx(ctx).Info("order deleted", "user_id", userID, "order_id", id)
	return nil
}
