package usecase

import (
	"context"
	"fmt"

	"atelier-backend/internal/domain"
	"atelier-backend/pkg/logger"
)

type OrderUsecase struct {
	orderRepo domain.OrderRepository
	txManager domain.TransactionManager
}

func NewOrderUsecase(repo domain.OrderRepository, txManager domain.TransactionManager) *OrderUsecase {
	return &OrderUsecase{
		orderRepo: repo,
		txManager: txManager,
	}
}

func (u *OrderUsecase) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	return u.orderRepo.GetByID(ctx, id)
}

func (u *OrderUsecase) ListOrders(ctx context.Context, filter domain.OrderFilter) ([]domain.Order, domain.Pagination, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 || filter.Limit > 100 {
		filter.Limit = 20
	}
	orders, total, err := u.orderRepo.GetAll(ctx, filter)
	if err != nil {
		return nil, domain.Pagination{}, err
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	return orders, domain.NewPagination(filter.Page, filter.Limit, total), nil
}

func (u *OrderUsecase) GetOrderHistory(ctx context.Context, orderID string) ([]domain.OrderHistory, error) {
	if _, err := u.orderRepo.GetByID(ctx, orderID); err != nil {
		return nil, err
	}
	return u.orderRepo.GetOrderHistory(ctx, orderID)
}

// UpdateOrderStatus moves an order forward and records who did it.
func (u *OrderUsecase) UpdateOrderStatus(ctx context.Context, orderID, newStatus, note, actorID string) error {
	if !isKnownStatus(newStatus) {
		return domain.NewValidationError("status", "is not a known order status")
	}
	order, err := u.orderRepo.GetByID(ctx, orderID)
	if err != nil {
		return err
	}
	oldStatus := order.Status

	if err := validateOrderTransition(oldStatus, newStatus); err != nil {
		return err
	}

	err = u.txManager.Do(ctx, func(txCtx context.Context) error {
		if err := u.orderRepo.UpdateStatus(txCtx, orderID, newStatus); err != nil {
			return err
		}

		reason := note
		if reason == "" {
			reason = fmt.Sprintf("Status changed from %s to %s", oldStatus, newStatus)
		}
		history := domain.OrderHistory{
			OrderID:        orderID,
			PreviousStatus: &oldStatus,
			NewStatus:      newStatus,
			Reason:         &reason,
		}
		if actorID != "" {
			history.CreatedBy = &actorID
		}
		if err := u.orderRepo.CreateOrderHistory(txCtx, &history); err != nil {
			return fmt.Errorf("failed to record history: %w", err)
		}
		return nil
	})
	if err != nil {
		return err
	}

	logger.WithContext(ctx).Info().
		Str("order_id", orderID).
		Str("from", oldStatus).
		Str("to", newStatus).
		Str("actor", actorID).
		Msg("Order status updated")
	return nil
}

// Progress weight of each status. Orders only move to a heavier status;
// cancelled and refunded are terminal.
var statusWeights = map[string]int{
	domain.OrderStatusPending:    10,
	domain.OrderStatusConfirmed:  20,
	domain.OrderStatusProcessing: 30,
	domain.OrderStatusShipped:    40,
	domain.OrderStatusDelivered:  50,
	domain.OrderStatusRefunded:   60,
	domain.OrderStatusCancelled:  70,
}

func isKnownStatus(status string) bool {
	_, ok := statusWeights[status]
	return ok
}

func validateOrderTransition(current, next string) error {
	if current == domain.OrderStatusCancelled || current == domain.OrderStatusRefunded {
		return fmt.Errorf("%w: order is %s", domain.ErrInvalidTransition, current)
	}
	currentWeight, ok := statusWeights[current]
	if !ok {
		// Unknown legacy status: allow an update to repair the data.
		return nil
	}
	if statusWeights[next] <= currentWeight {
		return fmt.Errorf("%w: cannot go from %s to %s", domain.ErrInvalidTransition, current, next)
	}
	return nil
}
