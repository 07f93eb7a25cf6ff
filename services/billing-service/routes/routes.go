package routes

import (
	"github.com/gin-gonic/gin"
	"github.com/orderhub/backend/services/billing-service/controllers"
	"github.com/orderhub/backend/services/common/authguard"
)

func RegisterBillingRoutes(r *gin.Engine, ic *controllers.InvoiceController, guard *authguard.Guard, cookieName string) {
	r.GET("/invoices", guard.HTTPMiddleware(cookieName), ic.GetInvoices)
}
