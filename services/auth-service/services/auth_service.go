package services

import (
	"context"
	"errors"
	"net/http"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/orderhub/backend/services/auth-service/models"
	"github.com/orderhub/backend/services/common/authguard"
	apperrors "github.com/orderhub/backend/services/common/errors"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// UserRepositoryAPI abstracts user storage for the auth service.
type UserRepositoryAPI interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	Create(ctx context.Context, user *models.User) error
}

// TokenServiceAPI abstracts token generation and validation.
type TokenServiceAPI interface {
	GenerateAccessToken(userID, email string) (string, error)
	ValidateToken(tokenStr, expectedType string) (jwt.MapClaims, error)
}

// AuthService implements registration, login and credential validation.
type AuthService struct {
	repo   UserRepositoryAPI
	tokens TokenServiceAPI
	logger *zap.Logger
}

func NewAuthService(repo UserRepositoryAPI, tokens TokenServiceAPI, logger *zap.Logger) *AuthService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{repo: repo, tokens: tokens, logger: logger}
}

// Register creates a new user with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, email, password, name string) (*models.User, error) {
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.New(http.StatusConflict, "Email already registered", nil)
	} else if err != gorm.ErrRecordNotFound {
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}

	user := &models.User{
		ID:       uuid.New(),
		Email:    email,
		Password: string(hashed),
		Name:     name,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		// Two concurrent registrations can both pass the lookup above;
		// the unique constraint is the authority.
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.New(http.StatusConflict, "Email already registered", err)
		}
		return nil, apperrors.Wrap(apperrors.ErrDatabaseQuery, err)
	}

	s.logger.Info("user registered", zap.String("user_id", user.ID.String()))
	return user, nil
}

// Login checks the credentials and issues an access token.
func (s *AuthService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return "", nil, apperrors.ErrInvalidCredentials
	}

	token, err := s.tokens.GenerateAccessToken(user.ID.String(), user.Email)
	if err != nil {
		return "", nil, apperrors.Wrap(apperrors.ErrInternalServer, err)
	}
	return token, user, nil
}

// Validate resolves a bearer token to the identity it encodes. It is
// idempotent and side-effect-free: structural failures, signature
// failures, expiry and unknown users all come back as Unauthorized.
func (s *AuthService) Validate(ctx context.Context, tokenStr string) (*authguard.Identity, error) {
	claims, err := s.tokens.ValidateToken(tokenStr, "access")
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	sub, _ := claims["sub"].(string)
	userID, err := uuid.Parse(sub)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, apperrors.ErrUnauthorized
	}

	return &authguard.Identity{ID: user.ID.String(), Email: user.Email}, nil
}
