package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/orderhub/backend/services/auth-service/models"
	"github.com/orderhub/backend/services/common/authguard"
	apperrors "github.com/orderhub/backend/services/common/errors"
)

// AuthServiceAPI is the service surface the controller depends on.
type AuthServiceAPI interface {
	Register(ctx context.Context, email, password, name string) (*models.User, error)
	Login(ctx context.Context, email, password string) (string, *models.User, error)
}

type AuthController struct {
	authService AuthServiceAPI
	cookieName  string
	tokenTTL    time.Duration
}

func NewAuthController(authService AuthServiceAPI, cookieName string, tokenTTL time.Duration) *AuthController {
	if cookieName == "" {
		cookieName = authguard.DefaultCookieName
	}
	return &AuthController{authService: authService, cookieName: cookieName, tokenTTL: tokenTTL}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
	Name     string `json:"name" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register handles new user registration.
func (ac *AuthController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(apperrors.ErrValidation, err))
		return
	}

	user, err := ac.authService.Register(c.Request.Context(), req.Email, req.Password, req.Name)
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"id":    user.ID,
		"email": user.Email,
		"name":  user.Name,
	})
}

// Login authenticates the user and sets the auth cookie.
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperrors.Wrap(apperrors.ErrValidation, err))
		return
	}

	token, user, err := ac.authService.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	c.SetCookie(ac.cookieName, token, int(ac.tokenTTL.Seconds()), "/", "", false, true)
	c.JSON(http.StatusOK, gin.H{
		"id":    user.ID,
		"email": user.Email,
	})
}

// Me returns the identity the guard attached to the request.
func (ac *AuthController) Me(c *gin.Context) {
	identity, ok := authguard.IdentityFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	c.JSON(http.StatusOK, identity)
}
