package utils

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	jwtMu     sync.RWMutex
	jwtSecret []byte
	tokenTTL  = 24 * time.Hour
)

// ConfigureJWT 서명 키와 토큰 유효 기간을 설정합니다. 기동 시 한 번 호출합니다.
func ConfigureJWT(secret string, ttl time.Duration) {
	jwtMu.Lock()
	defer jwtMu.Unlock()
	jwtSecret = []byte(secret)
	if ttl > 0 {
		tokenTTL = ttl
	}
}

// Claims JWT 클레임
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// GenerateToken JWT 토큰 생성
func GenerateToken(username string) (string, int64, error) {
	jwtMu.RLock()
	secret := jwtSecret
	ttl := tokenTTL
	jwtMu.RUnlock()

	if len(secret) == 0 {
		return "", 0, errors.New("jwt secret not configured")
	}

	expirationTime := time.Now().Add(ttl)

	claims := &Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(secret)
	if err != nil {
		return "", 0, err
	}

	return tokenString, expirationTime.Unix(), nil
}

// ValidateToken JWT 토큰 검증
func ValidateToken(tokenString string) (*Claims, error) {
	jwtMu.RLock()
	secret := jwtSecret
	jwtMu.RUnlock()

	if len(secret) == 0 {
		return nil, errors.New("jwt secret not configured")
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, err
	}

	if !token.Valid {
		return nil, errors.New("invalid token")
	}

	return claims, nil
}
