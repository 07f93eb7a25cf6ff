package repository

import (
	"context"

	apperrors "github.com/orderhub/backend/services/common/errors"
	"github.com/orderhub/backend/services/order-service/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Txn is a transaction handle. It is owned by the single saga
// invocation that created it and must be released through exactly one
// of Commit or Abort.
type Txn interface {
	Insert(ctx context.Context, order *models.Order) error
	Commit(ctx context.Context) error
	Abort(ctx context.Context) error
}

// OrderStore is the narrow store surface the order service uses.
type OrderStore interface {
	Begin(ctx context.Context) (Txn, error)
	FindOne(ctx context.Context, id string) (*models.Order, error)
	FindMany(ctx context.Context) ([]models.Order, error)
}

// OrderRepository implements OrderStore on a mongo collection with
// session-backed multi-document transactions.
type OrderRepository struct {
	client     *mongo.Client
	collection *mongo.Collection
}

func NewOrderRepository(client *mongo.Client, db *mongo.Database) *OrderRepository {
	return &OrderRepository{
		client:     client,
		collection: db.Collection("orders"),
	}
}

// Begin starts a mongo session and opens a transaction on it.
func (r *OrderRepository) Begin(ctx context.Context) (Txn, error) {
	sess, err := r.client.StartSession()
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseTransaction, err)
	}
	if err := sess.StartTransaction(); err != nil {
		sess.EndSession(ctx)
		return nil, apperrors.Wrap(apperrors.ErrDatabaseTransaction, err)
	}
	return &mongoTxn{sess: sess, collection: r.collection}, nil
}

// FindOne returns the order with the given id.
func (r *OrderRepository) FindOne(ctx context.Context, id string) (*models.Order, error) {
	var order models.Order
	err := r.collection.FindOne(ctx, bson.M{"_id": id}).Decode(&order)
	if err == mongo.ErrNoDocuments {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindMany returns all orders. An empty store yields an empty slice,
// not an error.
func (r *OrderRepository) FindMany(ctx context.Context) ([]models.Order, error) {
	cursor, err := r.collection.Find(ctx, bson.M{})
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := make([]models.Order, 0)
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

type mongoTxn struct {
	sess       mongo.Session
	collection *mongo.Collection
}

func (t *mongoTxn) Insert(ctx context.Context, order *models.Order) error {
	return mongo.WithSession(ctx, t.sess, func(sc mongo.SessionContext) error {
		_, err := t.collection.InsertOne(sc, order)
		return err
	})
}

func (t *mongoTxn) Commit(ctx context.Context) error {
	defer t.sess.EndSession(ctx)
	return t.sess.CommitTransaction(ctx)
}

func (t *mongoTxn) Abort(ctx context.Context) error {
	defer t.sess.EndSession(ctx)
	return t.sess.AbortTransaction(ctx)
}
