package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/motimate/backend/internal/models"
)

const (
	tokenUseAccess  = "access"
	tokenUseRefresh = "refresh"
)

var (
	jwtSecret       = []byte("change-me-in-production")
	jwtAccessHours  = 24
	jwtRefreshHours = 24 * 14
)

type Claims struct {
	UserID   uuid.UUID `json:"userID"`
	UserCode string    `json:"userCode"`
	TokenUse string    `json:"use"`
	jwt.RegisteredClaims
}

func ConfigureJWT(secret string, accessHours, refreshHours int) {
	if secret != "" {
		jwtSecret = []byte(secret)
	}
	if accessHours > 0 {
		jwtAccessHours = accessHours
	}
	if refreshHours > 0 {
		jwtRefreshHours = refreshHours
	}
}

func GenerateAccessToken(user *models.User) (string, error) {
	return generateToken(user, tokenUseAccess, time.Duration(jwtAccessHours)*time.Hour)
}

func GenerateRefreshToken(user *models.User) (string, error) {
	return generateToken(user, tokenUseRefresh, time.Duration(jwtRefreshHours)*time.Hour)
}

func generateToken(user *models.User, use string, lifetime time.Duration) (string, error) {
	claims := Claims{
		UserID:   user.ID,
		UserCode: user.UserCode,
		TokenUse: use,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(lifetime)),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Subject:   user.ID.String(),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(jwtSecret)
}

func ValidateAccessToken(tokenString string) (*Claims, error) {
	return validateToken(tokenString, tokenUseAccess)
}

func ValidateRefreshToken(tokenString string) (*Claims, error) {
	return validateToken(tokenString, tokenUseRefresh)
}

func validateToken(tokenString, expectedUse string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return jwtSecret, nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	if claims.TokenUse != expectedUse {
		return nil, fmt.Errorf("unexpected token use %q", claims.TokenUse)
	}

	return claims, nil
}
