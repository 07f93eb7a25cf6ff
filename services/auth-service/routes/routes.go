package routes

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderhub/backend/services/auth-service/controllers"
	"github.com/orderhub/backend/services/common/authguard"
	"github.com/orderhub/backend/services/common/middleware"
	"golang.org/x/time/rate"
)

func RegisterAuthRoutes(r *gin.Engine, ac *controllers.AuthController, guard *authguard.Guard, cookieName string) {
	limited := r.Group("/", middleware.RateLimit(rate.Every(time.Minute/100), 50))
	limited.POST("/register", ac.Register)
	limited.POST("/login", ac.Login)

	r.GET("/me", guard.HTTPMiddleware(cookieName), ac.Me)
}
