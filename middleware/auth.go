package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"ymctelemetry/logger"
	"ymctelemetry/models"
	"ymctelemetry/utils"
)

// UsernameKey 인증된 사용자명의 context 키
const UsernameKey contextKey = "username"

// AuthMiddleware 대시보드 API용 JWT 인증 미들웨어
func AuthMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Context().Value(RequestIDKey)

		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
			}).Warn("Missing authorization header")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Authorization required"))
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
			}).Warn("Invalid authorization header format")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Authorization required"))
			return
		}

		claims, err := utils.ValidateToken(parts[1])
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"ip":         GetClientIP(r),
				"error":      err.Error(),
			}).Warn("Invalid or expired token")

			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusUnauthorized)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid or expired token"))
			return
		}

		ctx := context.WithValue(r.Context(), UsernameKey, claims.Username)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}
