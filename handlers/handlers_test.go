package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"ymctelemetry/config"
	"ymctelemetry/database"
	"ymctelemetry/models"
	"ymctelemetry/services"
	"ymctelemetry/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type testEnv struct {
	tracking  *TrackingHandler
	dashboard *DashboardHandler
	db        services.SQLExecutor
}

func newTestEnv(t *testing.T, actionLimit int) *testEnv {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)
	require.NoError(t, database.CreateSchema(db, "sqlite"))

	executor := services.NewSQLExecutor(db)

	actionTracker, err := services.NewActionTracker(executor, "", 0)
	require.NoError(t, err)
	installationTracker := services.NewInstallationTracker(executor)
	errorTracker := services.NewErrorTracker(executor, 10)

	limiter := services.NewRateLimiter(executor, "sqlite",
		map[string]int{
			services.EndpointAction:       actionLimit,
			services.EndpointInstallation: actionLimit * 2,
		},
		3600, 0,
	)

	return &testEnv{
		tracking:  NewTrackingHandler(actionTracker, installationTracker, errorTracker, limiter, true),
		dashboard: NewDashboardHandler(actionTracker, installationTracker, errorTracker),
		db:        executor,
	}
}

func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) models.APIResponse {
	t.Helper()
	var resp models.APIResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCountAction(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/api/count-action?id=play&installation_id=inst-1", nil)
	req.RemoteAddr = "1.2.3.4:5555"
	rec := httptest.NewRecorder()

	env.tracking.CountAction(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	var resp models.ActionResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "play", resp.Action)
	require.NotNil(t, resp.TotalCount)
	assert.Equal(t, 1, *resp.TotalCount)
}

func TestCountActionInvalidName(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/api/count-action?id=bad%20name", nil)
	rec := httptest.NewRecorder()

	env.tracking.CountAction(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	resp := decodeResponse(t, rec)
	assert.False(t, resp.Success)
	assert.Equal(t, "Invalid action ID format", resp.Error)
}

func TestCountActionMissingID(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(http.MethodGet, "/api/count-action", nil)
	rec := httptest.NewRecorder()

	env.tracking.CountAction(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Missing action ID", decodeResponse(t, rec).Error)
}

func TestCountActionMethodNotAllowed(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(http.MethodPost, "/api/count-action?id=play", nil)
	rec := httptest.NewRecorder()

	env.tracking.CountAction(rec, req)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestCountActionRateLimited(t *testing.T) {
	env := newTestEnv(t, 2)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/count-action?id=play", nil)
		req.RemoteAddr = "1.2.3.4:5555"
		rec := httptest.NewRecorder()
		env.tracking.CountAction(rec, req)
		require.Equal(t, http.StatusOK, rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/count-action?id=play", nil)
	req.RemoteAddr = "1.2.3.4:5555"
	rec := httptest.NewRecorder()
	env.tracking.CountAction(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	resp := decodeResponse(t, rec)
	assert.Equal(t, "Rate limit exceeded. Please try again later.", resp.Error)

	// 다른 IP는 여전히 허용
	req = httptest.NewRequest(http.MethodGet, "/api/count-action?id=play", nil)
	req.RemoteAddr = "5.6.7.8:5555"
	rec = httptest.NewRecorder()
	env.tracking.CountAction(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReportInstallation(t *testing.T) {
	env := newTestEnv(t, 1000)

	body := `{
		"platform": "darwin",
		"osVersion": "23.0.0",
		"osRelease": "14.0",
		"pluginVersion": "1.2.0",
		"nodeVersion": "20.8.1",
		"yandexMusicConnected": true,
		"installation_id": "inst-1"
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/report-installation", strings.NewReader(body))
	req.RemoteAddr = "1.2.3.4:5555"
	rec := httptest.NewRecorder()

	env.tracking.ReportInstallation(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestReportInstallationInvalid(t *testing.T) {
	env := newTestEnv(t, 1000)

	cases := map[string]string{
		"malformed json":  `{not json`,
		"missing fields":  `{"platform": "darwin"}`,
		"empty inst id":   `{"platform": "darwin", "osVersion": "x", "osRelease": "x", "pluginVersion": "1", "nodeVersion": "20", "yandexMusicConnected": true, "installation_id": ""}`,
		"wrong type bool": `{"platform": "darwin", "osVersion": "x", "osRelease": "x", "pluginVersion": "1", "nodeVersion": "20", "yandexMusicConnected": "yes", "installation_id": "i"}`,
	}

	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/report-installation", strings.NewReader(body))
			rec := httptest.NewRecorder()
			env.tracking.ReportInstallation(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "Invalid installation data", decodeResponse(t, rec).Error)
		})
	}
}

func TestReportError(t *testing.T) {
	env := newTestEnv(t, 1000)

	body := `{"installation_id": "inst-1", "platform": "darwin", "error_message": "boom", "stack_trace": "at x"}`
	req := httptest.NewRequest(http.MethodPost, "/api/report-error", strings.NewReader(body))
	req.RemoteAddr = "1.2.3.4:5555"
	rec := httptest.NewRecorder()

	env.tracking.ReportError(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.True(t, decodeResponse(t, rec).Success)
}

func TestReportErrorInvalid(t *testing.T) {
	env := newTestEnv(t, 1000)

	req := httptest.NewRequest(http.MethodPost, "/api/report-error", strings.NewReader(`{"platform": "darwin"}`))
	rec := httptest.NewRecorder()
	env.tracking.ReportError(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Invalid error data", decodeResponse(t, rec).Error)
}

func TestDashboardStats(t *testing.T) {
	env := newTestEnv(t, 1000)

	// 데이터가 없어도 0 값으로 응답해야 함
	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/stats", nil)
	rec := httptest.NewRecorder()
	env.dashboard.Stats(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	assert.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	assert.Contains(t, data, "actions")
	assert.Contains(t, data, "installations")
	assert.Contains(t, data, "errors")
}

func TestDashboardTopActionsLimit(t *testing.T) {
	env := newTestEnv(t, 1000)

	for _, name := range []string{"play", "pause", "next"} {
		req := httptest.NewRequest(http.MethodGet, "/api/count-action?id="+name, nil)
		req.RemoteAddr = "1.2.3.4:5555"
		env.tracking.CountAction(httptest.NewRecorder(), req)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/dashboard/top-actions?limit=2", nil)
	rec := httptest.NewRecorder()
	env.dashboard.TopActions(rec, req)

	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)
	top, ok := resp.Data.([]interface{})
	require.True(t, ok)
	assert.Len(t, top, 2)
}

func TestLogin(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)

	hash, err := utils.HashPassword("hunter2")
	require.NoError(t, err)

	handler := NewAuthHandler(config.DashboardConfig{
		Username:      "admin",
		PasswordHash:  hash,
		TokenTTLHours: 1,
	})

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/login",
		strings.NewReader(`{"username": "admin", "password": "hunter2"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	resp := decodeResponse(t, rec)
	require.True(t, resp.Success)

	data, ok := resp.Data.(map[string]interface{})
	require.True(t, ok)
	token, _ := data["token"].(string)
	require.NotEmpty(t, token)

	claims, err := utils.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "admin", claims.Username)
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	utils.ConfigureJWT("test-secret", time.Hour)

	hash, err := utils.HashPassword("hunter2")
	require.NoError(t, err)

	handler := NewAuthHandler(config.DashboardConfig{
		Username:     "admin",
		PasswordHash: hash,
	})

	cases := map[string]string{
		"wrong password": `{"username": "admin", "password": "wrong"}`,
		"wrong username": `{"username": "root", "password": "hunter2"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/dashboard/login", strings.NewReader(body))
			rec := httptest.NewRecorder()
			handler.Login(rec, req)

			assert.Equal(t, http.StatusUnauthorized, rec.Code)
			assert.Equal(t, "Invalid credentials", decodeResponse(t, rec).Error)
		})
	}
}

func TestLoginDisabledWithoutPasswordHash(t *testing.T) {
	handler := NewAuthHandler(config.DashboardConfig{Username: "admin"})

	req := httptest.NewRequest(http.MethodPost, "/api/dashboard/login",
		strings.NewReader(`{"username": "admin", "password": "anything"}`))
	rec := httptest.NewRecorder()
	handler.Login(rec, req)

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
