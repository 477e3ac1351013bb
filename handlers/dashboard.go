package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"ymctelemetry/models"
	"ymctelemetry/services"
)

// DashboardHandler 대시보드 조회 엔드포인트
// 모든 조회는 degrade 우선입니다. 개별 집계 실패가 전체 응답을 막지 않습니다.
type DashboardHandler struct {
	actions       *services.ActionTracker
	installations *services.InstallationTracker
	errs          *services.ErrorTracker
}

// NewDashboardHandler 대시보드 핸들러 생성
func NewDashboardHandler(
	actions *services.ActionTracker,
	installations *services.InstallationTracker,
	errs *services.ErrorTracker,
) *DashboardHandler {
	return &DashboardHandler{
		actions:       actions,
		installations: installations,
		errs:          errs,
	}
}

// parseFilters 쿼리 파라미터에서 공통 필터 추출
func parseFilters(r *http.Request) models.StatsFilter {
	q := r.URL.Query()
	return models.StatsFilter{
		IP:             q.Get("ip"),
		InstallationID: q.Get("installation_id"),
		Version:        q.Get("version"),
	}
}

// parseLimit limit 파라미터 파싱. 없거나 잘못된 값이면 기본값을 씁니다.
func parseLimit(r *http.Request, defaultLimit, maxLimit int) int {
	raw := r.URL.Query().Get("limit")
	if raw == "" {
		return defaultLimit
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		return defaultLimit
	}
	if limit > maxLimit {
		return maxLimit
	}
	return limit
}

// Stats 전체 통계 요약
// @Summary 전체 통계 요약
// @Description 액션/설치/에러 통계를 한 번에 조회합니다
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Param ip query string false "IP 필터"
// @Param installation_id query string false "설치 ID 필터"
// @Param version query string false "플러그인 버전 필터"
// @Success 200 {object} models.APIResponse "통계"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/stats [get]
func (h *DashboardHandler) Stats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	filters := parseFilters(r)
	stats := map[string]interface{}{
		"actions":       h.actions.GetStats(r.Context(), filters),
		"installations": h.installations.GetStats(r.Context(), filters),
		"errors":        h.errs.GetStats(r.Context(), filters),
	}

	json.NewEncoder(w).Encode(models.SuccessResponse(stats))
}

// TopActions 실행 횟수 상위 액션
// @Summary 실행 횟수 상위 액션
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 건수 (기본 20)"
// @Success 200 {object} models.APIResponse "상위 액션 목록"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/top-actions [get]
func (h *DashboardHandler) TopActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parseLimit(r, 20, 100)
	top := h.actions.GetTopActions(r.Context(), limit, parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(top))
}

// RecentActions 최근 액션 목록
// @Summary 최근 액션 목록
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 건수 (기본 50)"
// @Success 200 {object} models.APIResponse "최근 액션"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/recent-actions [get]
func (h *DashboardHandler) RecentActions(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parseLimit(r, 50, 500)
	actions := h.actions.GetRecentActions(r.Context(), limit)
	json.NewEncoder(w).Encode(models.SuccessResponse(actions))
}

// Visitors IP별 방문자 요약
// @Summary IP별 방문자 요약
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "방문자 요약"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/visitors [get]
func (h *DashboardHandler) Visitors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	visitors := h.actions.GetVisitorSummary(r.Context(), parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(visitors))
}

// Installations 설치 현황 (설치별 최신 보고 + IP별 요약)
// @Summary 설치 현황
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 건수 (기본 50)"
// @Success 200 {object} models.APIResponse "설치 현황"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/installations [get]
func (h *DashboardHandler) Installations(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parseLimit(r, 50, 500)
	filters := parseFilters(r)
	data := map[string]interface{}{
		"recent": h.installations.GetRecentInstallations(r.Context(), limit, filters),
		"by_ip":  h.installations.GetInstallationsByIP(r.Context()),
	}
	json.NewEncoder(w).Encode(models.SuccessResponse(data))
}

// VersionBreakdown 플러그인 버전 분포
// @Summary 플러그인 버전 분포
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "버전 분포"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/version-breakdown [get]
func (h *DashboardHandler) VersionBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	versions := h.installations.GetVersionBreakdown(r.Context(), parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(versions))
}

// OSBreakdown OS 분포
// @Summary OS 분포
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "OS 분포"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/os-breakdown [get]
func (h *DashboardHandler) OSBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	breakdown := h.installations.GetOSBreakdown(r.Context(), parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(breakdown))
}

// RecentErrors 최근 에러 (사건 단위 그룹)
// @Summary 최근 에러 목록
// @Description 같은 설치에서 짧은 시간 안에 발생한 에러를 한 사건으로 묶어 반환합니다
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Param limit query int false "최대 그룹 수 (기본 20)"
// @Success 200 {object} models.APIResponse "에러 그룹 목록"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/recent-errors [get]
func (h *DashboardHandler) RecentErrors(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	limit := parseLimit(r, 20, 200)
	groups := h.errs.GetRecentErrors(r.Context(), limit, parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(groups))
}

// ErrorBreakdown 에러 패턴별 집계
// @Summary 에러 패턴별 집계
// @Description 에러 메시지 앞 100자 기준으로 묶은 패턴별 발생 건수입니다
// @Tags 대시보드
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.APIResponse "에러 패턴 목록"
// @Failure 401 {object} models.APIResponse "인증 실패"
// @Router /api/dashboard/error-breakdown [get]
func (h *DashboardHandler) ErrorBreakdown(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeMethodNotAllowed(w)
		return
	}

	patterns := h.errs.GetErrorBreakdown(r.Context(), parseFilters(r))
	json.NewEncoder(w).Encode(models.SuccessResponse(patterns))
}
