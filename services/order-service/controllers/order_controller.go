package controllers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/orderhub/backend/services/common/authguard"
	apperrors "github.com/orderhub/backend/services/common/errors"
	"github.com/orderhub/backend/services/order-service/models"
	"go.uber.org/zap"
)

// OrderServiceAPI is the saga surface the controller depends on.
type OrderServiceAPI interface {
	CreateOrder(ctx context.Context, req *models.CreateOrderRequest) (*models.Order, error)
	GetOrder(ctx context.Context, id string) (*models.Order, error)
	GetOrders(ctx context.Context) ([]models.Order, error)
}

type OrderController struct {
	orderService OrderServiceAPI
	logger       *zap.Logger
}

func NewOrderController(orderService OrderServiceAPI, logger *zap.Logger) *OrderController {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &OrderController{orderService: orderService, logger: logger}
}

// CreateOrder handles order creation requests
func (oc *OrderController) CreateOrder(c *gin.Context) {
	var req models.CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(apperrors.ErrValidation, err))
		return
	}

	identity, _ := authguard.IdentityFrom(c)

	order, err := oc.orderService.CreateOrder(c.Request.Context(), &req)
	if err != nil {
		oc.logger.Error("order creation failed", zap.Error(err))
		c.Error(err)
		return
	}

	if identity != nil {
		oc.logger.Info("order created via HTTP",
			zap.String("order_id", order.ID),
			zap.String("user_id", identity.ID))
	}
	c.JSON(http.StatusCreated, order)
}

// GetOrder returns a single order by id
func (oc *OrderController) GetOrder(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.Error(apperrors.ErrBadRequest)
		return
	}

	order, err := oc.orderService.GetOrder(c.Request.Context(), id.String())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, order)
}

// GetOrders returns all orders
func (oc *OrderController) GetOrders(c *gin.Context) {
	orders, err := oc.orderService.GetOrders(c.Request.Context())
	if err != nil {
		oc.logger.Error("failed to fetch orders", zap.Error(err))
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, orders)
}
