package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"

	"medslot/config"
	"medslot/internal/domain"
)

type tokenClaims struct {
	jwt.RegisteredClaims
	UserID string          `json:"user_id"`
	Role   domain.UserRole `json:"role"`
}

// AuthServiceImpl verifies and issues access tokens. Accounts live in an
// external identity service; only the signing key is shared with it.
type AuthServiceImpl struct {
	jwtConfig config.JWTConfig
	logger    *zap.Logger
}

func NewAuthService(jwtConfig config.JWTConfig, logger *zap.Logger) *AuthServiceImpl {
	return &AuthServiceImpl{
		jwtConfig: jwtConfig,
		logger:    logger,
	}
}

func (s *AuthServiceImpl) IssueAccessToken(userID string, role domain.UserRole) (*domain.Tokens, error) {
	if userID == "" {
		return nil, domain.NewValidationError("user_id", "пустой идентификатор пользователя")
	}
	if !role.IsValid() {
		return nil, domain.NewValidationError("role", fmt.Sprintf("неизвестная роль %q", role))
	}

	now := time.Now()
	expiresAt := now.Add(s.jwtConfig.AccessTokenTTL)

	claims := tokenClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			IssuedAt:  jwt.NewNumericDate(now),
		},
		UserID: userID,
		Role:   role,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtConfig.SigningKey))
	if err != nil {
		s.logger.Error("ошибка подписи access token", zap.Error(err))
		return nil, fmt.Errorf("ошибка подписи access token: %w", err)
	}

	return &domain.Tokens{
		AccessToken: signed,
		ExpiresAt:   expiresAt,
	}, nil
}

func (s *AuthServiceImpl) ParseToken(ctx context.Context, tokenString string) (*domain.Caller, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("неожиданный метод подписи: %v", token.Header["alg"])
		}
		return []byte(s.jwtConfig.SigningKey), nil
	})
	if err != nil {
		return nil, fmt.Errorf("ошибка парсинга токена: %w", err)
	}

	claims, ok := token.Claims.(*tokenClaims)
	if !ok || !token.Valid {
		return nil, errors.New("недействительный токен")
	}
	if claims.UserID == "" || !claims.Role.IsValid() {
		return nil, errors.New("токен не содержит пользователя или роли")
	}

	return &domain.Caller{UserID: claims.UserID, Role: claims.Role}, nil
}
