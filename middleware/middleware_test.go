package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"ymctelemetry/config"
	"ymctelemetry/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetClientIP(t *testing.T) {
	cases := []struct {
		name     string
		remote   string
		headers  map[string]string
		expected string
	}{
		{
			name:     "remote addr",
			remote:   "1.2.3.4:5555",
			expected: "1.2.3.4",
		},
		{
			name:     "x-forwarded-for first entry",
			remote:   "10.0.0.1:80",
			headers:  map[string]string{"X-Forwarded-For": "203.0.113.7, 10.0.0.1"},
			expected: "203.0.113.7",
		},
		{
			name:     "x-real-ip",
			remote:   "10.0.0.1:80",
			headers:  map[string]string{"X-Real-IP": "203.0.113.9"},
			expected: "203.0.113.9",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tc.remote
			for k, v := range tc.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tc.expected, GetClientIP(req))
		})
	}
}

func TestCORSPreflightShortCircuits(t *testing.T) {
	cors := CORSMiddleware(config.CORSConfig{
		Enabled:      true,
		AllowOrigin:  "*",
		AllowMethods: "GET, POST, OPTIONS",
		AllowHeaders: "Content-Type",
	})

	handlerCalled := false
	handler := cors(func(w http.ResponseWriter, r *http.Request) {
		handlerCalled = true
	})

	req := httptest.NewRequest(http.MethodOptions, "/api/count-action", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, handlerCalled, "preflight should not reach the handler")
	assert.Equal(t, "*", rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestCORSDisabled(t *testing.T) {
	cors := CORSMiddleware(config.CORSConfig{Enabled: false})

	handler := cors(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	handler(rec, req)

	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestAuthMiddleware(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)

	protected := AuthMiddleware(func(w http.ResponseWriter, r *http.Request) {
		username, _ := r.Context().Value(UsernameKey).(string)
		w.Write([]byte(username))
	})

	t.Run("missing header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("malformed header", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Basic abc123")
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("garbage token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer not-a-token")
		rec := httptest.NewRecorder()
		protected(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid token", func(t *testing.T) {
		token, _, err := utils.GenerateToken("admin")
		require.NoError(t, err)

		req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
		req.Header.Set("Authorization", "Bearer "+token)
		rec := httptest.NewRecorder()
		protected(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "admin", rec.Body.String())
	})
}

func TestChainMiddlewareOrder(t *testing.T) {
	var order []string

	tag := func(name string) func(http.HandlerFunc) http.HandlerFunc {
		return func(next http.HandlerFunc) http.HandlerFunc {
			return func(w http.ResponseWriter, r *http.Request) {
				order = append(order, name)
				next.ServeHTTP(w, r)
			}
		}
	}

	handler := ChainMiddleware(
		func(w http.ResponseWriter, r *http.Request) {
			order = append(order, "handler")
		},
		tag("first"), tag("second"),
	)

	handler(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, []string{"first", "second", "handler"}, order)
}

func TestSetJSONHeader(t *testing.T) {
	handler := SetJSONHeader(func(w http.ResponseWriter, r *http.Request) {})

	rec := httptest.NewRecorder()
	handler(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
}
