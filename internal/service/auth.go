package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/pageza/alchemorsel-mobile/backend/internal/apperrors"
	"github.com/pageza/alchemorsel-mobile/backend/internal/logger"
	"github.com/pageza/alchemorsel-mobile/backend/internal/models"
	"github.com/pageza/alchemorsel-mobile/backend/internal/types"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token has expired")
)

const tokenIssuer = "alchemorsel"

type AuthService struct {
	db        *gorm.DB
	jwtSecret []byte
	lifetime  time.Duration
	log       *zap.Logger
}

var _ IAuthService = (*AuthService)(nil)

func NewAuthService(db *gorm.DB, jwtSecret string, lifetime time.Duration, log *zap.Logger) *AuthService {
	if lifetime <= 0 {
		lifetime = 24 * time.Hour
	}
	return &AuthService{
		db:        db,
		jwtSecret: []byte(jwtSecret),
		lifetime:  lifetime,
		log:       logger.OrNop(log).Named("auth"),
	}
}

// Register creates the account and its profile, then signs the user in
func (s *AuthService) Register(ctx context.Context, req *types.RegisterRequest) (*types.AuthResponse, error) {
	email := normalizeEmail(req.Email)

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&count).Error; err != nil {
		return nil, apperrors.NewDatabaseError("check email", err)
	}
	if count > 0 {
		return nil, apperrors.NewEmailAlreadyExistsError()
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to hash password")
	}

	user := &models.User{Email: email, PasswordHash: string(hash)}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(user).Error; err != nil {
			return err
		}
		profile := &models.Profile{ID: user.ID, DisplayName: strings.TrimSpace(req.DisplayName)}
		return tx.Create(profile).Error
	})
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		// lost a race with a concurrent registration for the same email
		return nil, apperrors.NewEmailAlreadyExistsError()
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("create account", err)
	}

	s.log.Info("user registered", zap.String("user_id", user.ID.String()))
	return s.issue(user)
}

// Login checks the password and returns a fresh token
func (s *AuthService) Login(ctx context.Context, req *types.LoginRequest) (*types.AuthResponse, error) {
	var user models.User
	err := s.db.WithContext(ctx).Where("email = ?", normalizeEmail(req.Email)).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	if err != nil {
		return nil, apperrors.NewDatabaseError("load user", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, apperrors.NewInvalidCredentialsError()
	}
	return s.issue(&user)
}

func (s *AuthService) issue(user *models.User) (*types.AuthResponse, error) {
	now := time.Now()
	expires := now.Add(s.lifetime)
	token, err := s.GenerateToken(&types.TokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    tokenIssuer,
			Subject:   user.ID.String(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expires),
		},
		UserID: user.ID,
		Email:  user.Email,
	})
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to sign token")
	}
	return &types.AuthResponse{Token: token, UserID: user.ID, ExpiresAt: expires.UTC()}, nil
}

// GenerateToken signs the claims with HS256
func (s *AuthService) GenerateToken(claims *types.TokenClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.jwtSecret)
}

// ValidateToken parses and verifies a bearer token
func (s *AuthService) ValidateToken(tokenString string) (*types.TokenClaims, error) {
	claims := &types.TokenClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == uuid.Nil {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
