package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/orderhub/backend/services/common/authguard"
	"github.com/orderhub/backend/services/order-service/controllers"
)

func RegisterOrderRoutes(r *gin.Engine, oc *controllers.OrderController, guard *authguard.Guard, cookieName string) {
	orders := r.Group("/orders", guard.HTTPMiddleware(cookieName))
	orders.POST("", oc.CreateOrder)
	orders.GET("", oc.GetOrders)
	orders.GET("/:id", oc.GetOrder)
}
