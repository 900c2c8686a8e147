package orders

import (
	"context"
	"errors"

	"kirana/models"
)

var ErrNotFound = errors.New("order not found")

// Store is the persistence boundary for orders. Every method maps to a
// single atomic document operation; there is no cross-call locking, so
// MarkPaid carries its own check-and-set.
type Store interface {
	Insert(ctx context.Context, order models.Order) error
	FindByID(ctx context.Context, orderID string) (*models.Order, error)
	// FindByUser returns the user's orders newest first.
	FindByUser(ctx context.Context, userID string) ([]models.Order, error)
	FindAllWithOwners(ctx context.Context) ([]models.AdminOrder, error)
	// MarkPaid transitions unpaid -> paid/Processing and returns the
	// order as stored afterwards. changed is false with a nil error when
	// the order was already paid (duplicate delivery).
	MarkPaid(ctx context.Context, orderID string) (order *models.Order, changed bool, err error)
	SetStatus(ctx context.Context, orderID, status string) (*models.Order, error)
	Delete(ctx context.Context, orderID string) error
	DeleteAll(ctx context.Context) (int64, error)
}
