package middleware

import (
	"net/http"

	"ymctelemetry/config"
)

// CORSMiddleware CORS 헤더 설정 미들웨어 생성
// 플러그인 클라이언트는 데스크톱 앱이지만 대시보드가 브라우저에서 호출하므로
// preflight(OPTIONS)는 본 핸들러로 넘기지 않고 즉시 200으로 끝냅니다.
func CORSMiddleware(cfg config.CORSConfig) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if cfg.Enabled {
				w.Header().Set("Access-Control-Allow-Origin", cfg.AllowOrigin)
				w.Header().Set("Access-Control-Allow-Methods", cfg.AllowMethods)
				w.Header().Set("Access-Control-Allow-Headers", cfg.AllowHeaders)
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		}
	}
}

// SetJSONHeader JSON 헤더 설정 미들웨어
func SetJSONHeader(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		next.ServeHTTP(w, r)
	}
}
