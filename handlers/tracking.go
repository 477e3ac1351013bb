package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"ymctelemetry/logger"
	"ymctelemetry/middleware"
	"ymctelemetry/models"
	"ymctelemetry/services"
)

// TrackingHandler 플러그인 클라이언트가 호출하는 수집 엔드포인트
type TrackingHandler struct {
	actions          *services.ActionTracker
	installations    *services.InstallationTracker
	errs             *services.ErrorTracker
	limiter          *services.RateLimiter
	rateLimitEnabled bool
}

// NewTrackingHandler 수집 핸들러 생성
func NewTrackingHandler(
	actions *services.ActionTracker,
	installations *services.InstallationTracker,
	errs *services.ErrorTracker,
	limiter *services.RateLimiter,
	rateLimitEnabled bool,
) *TrackingHandler {
	return &TrackingHandler{
		actions:          actions,
		installations:    installations,
		errs:             errs,
		limiter:          limiter,
		rateLimitEnabled: rateLimitEnabled,
	}
}

// allowRequest 요청 제한 확인 후 카운터를 증가시킵니다.
// 허용된 요청만 카운트합니다 (거부된 요청은 윈도우를 소모하지 않음).
func (h *TrackingHandler) allowRequest(r *http.Request, endpointType string) bool {
	if !h.rateLimitEnabled {
		return true
	}

	ip := middleware.GetClientIP(r)
	if !h.limiter.Check(r.Context(), ip, endpointType) {
		return false
	}
	h.limiter.Increment(r.Context(), ip, endpointType)
	return true
}

// CountAction 액션 실행 기록
// @Summary 액션 실행 기록
// @Description 플러그인 액션 실행을 기록하고 해당 액션의 누적 실행 횟수를 반환합니다
// @Tags 수집
// @Produce json
// @Param id query string true "액션 이름"
// @Param installation_id query string false "설치 ID"
// @Success 200 {object} models.ActionResponse "기록 성공"
// @Failure 400 {object} models.APIResponse "잘못된 액션 이름"
// @Failure 429 {object} models.APIResponse "요청 제한 초과"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/count-action [get]
func (h *TrackingHandler) CountAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	actionName := r.URL.Query().Get("id")
	installationID := r.URL.Query().Get("installation_id")

	// 파라미터 누락은 요청 제한을 소모하지 않음
	if actionName == "" {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Missing action ID"))
		return
	}

	if !h.allowRequest(r, services.EndpointAction) {
		writeRateLimited(w)
		return
	}

	count, err := h.actions.Track(r.Context(), actionName, installationID, middleware.GetClientIP(r))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid action ID format"))
			return
		}

		logger.WithFields(map[string]interface{}{
			"request_id": r.Context().Value(middleware.RequestIDKey),
			"error":      err.Error(),
		}).Error("Failed to track action")

		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Unable to process request"))
		return
	}

	json.NewEncoder(w).Encode(models.ActionResponse{
		Success:    true,
		Action:     actionName,
		TotalCount: &count,
	})
}

// ReportInstallation 설치 보고서 접수
// @Summary 설치 보고서 접수
// @Description 플러그인 기동 시 전송되는 설치 환경 보고서를 저장합니다
// @Tags 수집
// @Accept json
// @Produce json
// @Param request body models.InstallationReport true "설치 보고서"
// @Success 201 {object} models.APIResponse "접수 성공"
// @Failure 400 {object} models.APIResponse "잘못된 보고서"
// @Failure 429 {object} models.APIResponse "요청 제한 초과"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/report-installation [post]
func (h *TrackingHandler) ReportInstallation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	if !h.allowRequest(r, services.EndpointInstallation) {
		writeRateLimited(w)
		return
	}

	var report models.InstallationReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid installation data"))
		return
	}

	err := h.installations.Track(r.Context(), report, middleware.GetClientIP(r), r.UserAgent())
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid installation data"))
			return
		}

		logger.WithFields(map[string]interface{}{
			"request_id": r.Context().Value(middleware.RequestIDKey),
			"error":      err.Error(),
		}).Error("Failed to track installation")

		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Unable to process request"))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.SuccessResponse(nil))
}

// ReportError 에러 보고서 접수
// @Summary 에러 보고서 접수
// @Description 플러그인에서 발생한 에러 보고서를 저장합니다. 요청 제한을 적용하지 않습니다 (에러 폭주 상황도 관측 대상)
// @Tags 수집
// @Accept json
// @Produce json
// @Param request body models.ErrorReport true "에러 보고서"
// @Success 201 {object} models.APIResponse "접수 성공"
// @Failure 400 {object} models.APIResponse "잘못된 보고서"
// @Failure 500 {object} models.APIResponse "서버 에러"
// @Router /api/report-error [post]
func (h *TrackingHandler) ReportError(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		writeMethodNotAllowed(w)
		return
	}

	var report models.ErrorReport
	if err := json.NewDecoder(r.Body).Decode(&report); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(models.ErrorResponse("Invalid error data"))
		return
	}

	err := h.errs.Track(r.Context(), report, middleware.GetClientIP(r))
	if err != nil {
		if errors.Is(err, services.ErrValidation) {
			w.WriteHeader(http.StatusBadRequest)
			json.NewEncoder(w).Encode(models.ErrorResponse("Invalid error data"))
			return
		}

		logger.WithFields(map[string]interface{}{
			"request_id": r.Context().Value(middleware.RequestIDKey),
			"error":      err.Error(),
		}).Error("Failed to track error")

		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(models.ErrorResponse("Unable to process request"))
		return
	}

	w.WriteHeader(http.StatusCreated)
	json.NewEncoder(w).Encode(models.SuccessResponse(nil))
}

func writeMethodNotAllowed(w http.ResponseWriter) {
	w.WriteHeader(http.StatusMethodNotAllowed)
	json.NewEncoder(w).Encode(models.ErrorResponse("Method not allowed"))
}

func writeRateLimited(w http.ResponseWriter) {
	w.WriteHeader(http.StatusTooManyRequests)
	json.NewEncoder(w).Encode(models.ErrorResponse("Rate limit exceeded. Please try again later."))
}
