package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"ymctelemetry/logger"
	"ymctelemetry/utils"
)

type contextKey string

// RequestIDKey 요청 추적 ID의 context 키
const RequestIDKey contextKey = "request_id"

// responseWriter HTTP 응답을 캡처하기 위한 래퍼
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	written    int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	rw.written += n
	return n, err
}

// LoggingMiddleware HTTP 요청/응답 로깅 미들웨어
func LoggingMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rw := &responseWriter{
			ResponseWriter: w,
			statusCode:     http.StatusOK,
		}

		requestID := utils.GenerateRequestID()
		ctx := context.WithValue(r.Context(), RequestIDKey, requestID)

		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"method":     r.Method,
			"path":       r.URL.Path,
			"ip":         GetClientIP(r),
			"user_agent": r.UserAgent(),
		}).Debug("HTTP Request")

		next.ServeHTTP(rw, r.WithContext(ctx))

		duration := time.Since(start)

		logger.WithFields(map[string]interface{}{
			"request_id":  requestID,
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      rw.statusCode,
			"duration_ms": duration.Milliseconds(),
			"size":        rw.written,
		}).Log(getLogLevelForStatus(rw.statusCode), "HTTP Response")
	}
}

// getLogLevelForStatus 상태 코드에 따른 로그 레벨 결정
// 429는 정상 동작이므로 WARN이 아닌 INFO로 기록합니다.
func getLogLevelForStatus(statusCode int) logger.LogLevel {
	switch {
	case statusCode >= 500:
		return logger.ERROR
	case statusCode == http.StatusTooManyRequests:
		return logger.INFO
	case statusCode >= 400:
		return logger.WARN
	default:
		return logger.INFO
	}
}

// GetClientIP 클라이언트 IP 추출
// 프록시 뒤에서 동작하므로 X-Forwarded-For의 첫 항목을 우선합니다.
func GetClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		ips := strings.Split(xff, ",")
		if len(ips) > 0 {
			return strings.TrimSpace(ips[0])
		}
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip := r.RemoteAddr
	if idx := strings.LastIndex(ip, ":"); idx != -1 {
		ip = ip[:idx]
	}
	return ip
}

// ChainMiddleware 미들웨어 체인
func ChainMiddleware(handler http.HandlerFunc, middlewares ...func(http.HandlerFunc) http.HandlerFunc) http.HandlerFunc {
	for i := len(middlewares) - 1; i >= 0; i-- {
		handler = middlewares[i](handler)
	}
	return handler
}
