package models

// Action 액션 이벤트 행
type Action struct {
	ID             int64  `json:"id"`
	ActionName     string `json:"action_name"`
	Timestamp      int64  `json:"timestamp"`
	IPAddress      string `json:"ip_address,omitempty"`
	InstallationID string `json:"installation_id"`
}

// ActionStats 액션 통계
type ActionStats struct {
	TotalActions      int `json:"total_actions"`
	UniqueActionTypes int `json:"unique_action_types"`
	UniqueVisitors    int `json:"unique_visitors"`
	UniqueVisitors24h int `json:"unique_visitors_24h"`
	UniqueVisitors7d  int `json:"unique_visitors_7d"`
	UniqueVisitors30d int `json:"unique_visitors_30d"`
	Actions24h        int `json:"actions_24h"`
	Actions7d         int `json:"actions_7d"`
	Actions30d        int `json:"actions_30d"`
}

// TopAction 액션별 누적 집계
type TopAction struct {
	ActionName     string `json:"action_name"`
	TotalCount     int    `json:"total_count"`
	UniqueVisitors int    `json:"unique_visitors"`
}

// VisitorSummary IP별 방문자 요약
type VisitorSummary struct {
	IPAddress     string `json:"ip_address"`
	ActionsUsed   string `json:"actions_used"` // 사용한 액션 이름 목록 (쉼표 구분)
	FirstExecuted string `json:"first_executed"`
	LastExecuted  string `json:"last_executed"`
	TotalActions  int    `json:"total_actions"`
}

// StatsFilter 읽기 전용 조회 필터
// 쓰기 경로에는 절대 영향을 주지 않습니다.
type StatsFilter struct {
	IP             string
	InstallationID string
	Version        string // installations 테이블의 최신 plugin_version 기준
}
