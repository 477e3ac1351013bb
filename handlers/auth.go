package handlers

import (
	"encoding/json"
	"net/http"

	"ymctelemetry/config"
	"ymctelemetry/logger"
	"ymctelemetry/middleware"
	"ymctelemetry/models"
	"ymctelemetry/utils"
)

// AuthHandler 대시보드 로그인
type AuthHandler struct {
	cfg config.DashboardConfig
}

// NewAuthHandler 인증 핸들러 생성
func NewAuthHandler(cfg config.DashboardConfig) *AuthHandler {
	return &AuthHandler{cfg: cfg}
}

// Login 대시보드 로그인
// @Summary 대시보드 로그인
// @Description 대시보드 계정으로 로그인하여 JWT 토큰을 발급받습니다
// @Tags 인증
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "로그인 정보"
// @Success 200 {object} models.APIResponse{data=models.LoginResponse} "로그인 성공"
// @Failure 400 {object} models.APIResponse "잘못된 요청"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/dashboard/login [post]
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	requestID := r.Context().Value(middleware.RequestIDKey)

	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid request body"))
		return
	}

	// 해시 미설정 = 대시보드 비활성. 사용자 존재 여부를 숨기기 위해 동일 메시지 반환
	if h.cfg.PasswordHash == "" ||
		req.Username != h.cfg.Username ||
		!utils.CheckPassword(h.cfg.PasswordHash, req.Password) {

		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"username":   req.Username,
			"ip":         middleware.GetClientIP(r),
		}).Warn("Login failed")

		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid credentials"))
		return
	}

	token, expiresAt, err := utils.GenerateToken(req.Username)
	if err != nil {
		logger.WithFields(map[string]interface{}{
			"request_id": requestID,
			"error":      err.Error(),
		}).Error("Failed to generate token")

		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Unable to process request"))
		return
	}

	logger.WithFields(map[string]interface{}{
		"request_id": requestID,
		"username":   req.Username,
	}).Info("Login successful")

	json.NewEncoder(w).Encode(models.SuccessResponse(models.LoginResponse{
		Token:     token,
		ExpiresAt: expiresAt,
	}))
}
