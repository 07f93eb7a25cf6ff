package services

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/orderhub/backend/services/order-service/models"
	"github.com/orderhub/backend/services/order-service/repository"
	"go.uber.org/zap"
)

// EventOrderCreated is the event type of the billing notification.
const EventOrderCreated = "order.created"

// PublisherAPI is the fire-and-forget publish capability the saga
// needs from the broker.
type PublisherAPI interface {
	Publish(ctx context.Context, eventType string, payload interface{}) error
}

// OrderService coordinates the order-creation saga: a local store
// transaction paired with a billing notification.
type OrderService struct {
	store     repository.OrderStore
	publisher PublisherAPI
	logger    *zap.Logger
}

func NewOrderService(store repository.OrderStore, publisher PublisherAPI, logger *zap.Logger) *OrderService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderService{store: store, publisher: publisher, logger: logger}
}

// CreateOrder inserts the order inside a transaction, notifies billing,
// and commits. A failed insert or a rejected publish aborts the
// transaction and surfaces the underlying error unchanged; the order
// must not become visible if billing was never informed.
//
// The notification is published before the commit, so a crash between
// the two can deliver a notification for an order that never commits.
// Closing that gap needs an outbox; the publish-then-commit ordering
// here is the contract billing relies on.
func (s *OrderService) CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error) {
	txn, err := s.store.Begin(ctx)
	if err != nil {
		return nil, err
	}

	order := &models.Order{
		ID:          uuid.NewString(),
		Name:        req.Name,
		Price:       req.Price,
		PhoneNumber: req.PhoneNumber,
		CreatedAt:   time.Now().UTC(),
	}

	if err := txn.Insert(ctx, order); err != nil {
		s.abort(ctx, txn)
		return nil, err
	}

	event := models.OrderCreatedEvent{Request: *req}
	if err := s.publisher.Publish(ctx, EventOrderCreated, event); err != nil {
		s.abort(ctx, txn)
		return nil, err
	}

	if err := txn.Commit(ctx); err != nil {
		// Billing has already been notified at this point; the
		// notification cannot be recalled.
		s.logger.Error("commit failed after publish",
			zap.String("order_id", order.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("order created",
		zap.String("order_id", order.ID),
		zap.String("name", order.Name))
	return order, nil
}

// GetOrder returns a single order by id.
func (s *OrderService) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return s.store.FindOne(ctx, id)
}

// GetOrders returns all orders; an empty store yields an empty slice.
func (s *OrderService) GetOrders(ctx context.Context) ([]models.Order, error) {
	return s.store.FindMany(ctx)
}

func (s *OrderService) abort(ctx context.Context, txn repository.Txn) {
	if err := txn.Abort(ctx); err != nil {
		s.logger.Error("failed to abort order transaction", zap.Error(err))
	}
}
