package repository

import (
	"context"

	"github.com/polkiloo/discshop/internal/domain/model"
)

// RefundRepository reads the refund audit trail. Refunds are written only by
// OrderRepository.MarkCancelled within the cancellation transaction.
type RefundRepository interface {
	ListByOrder(ctx context.Context, orderID int64) ([]model.Refund, error)
}
