package models

// ErrorReport 클라이언트가 전송하는 에러 보고서
// installation_id는 빈 문자열이 될 수 있습니다 (클라이언트 초기화 전).
type ErrorReport struct {
	InstallationID *string `json:"installation_id"`
	Platform       *string `json:"platform"`
	ErrorMessage   *string `json:"error_message"`
	StackTrace     *string `json:"stack_trace"`
}

// ErrorRow 에러 보고서 행 (append-only)
// PluginVersion/OSRelease는 동일 installation_id의 최신 설치 행에서 조인됩니다.
type ErrorRow struct {
	ID             int64  `json:"id"`
	Timestamp      int64  `json:"timestamp"`
	IPAddress      string `json:"ip_address,omitempty"`
	InstallationID string `json:"installation_id"`
	Platform       string `json:"platform,omitempty"`
	ErrorMessage   string `json:"error_message"`
	StackTrace     string `json:"stack_trace,omitempty"`
	PluginVersion  string `json:"plugin_version,omitempty"`
	OSRelease      string `json:"os_release,omitempty"`
}

// ErrorGroup 시간 근접성으로 묶인 에러 클러스터
// PrimaryError는 그룹을 만든 행 (입력이 최신순이므로 가장 최근 행)입니다.
type ErrorGroup struct {
	PrimaryError      ErrorRow   `json:"primary_error"`
	InstallationID    string     `json:"installation_id"`
	Count             int        `json:"count"`
	EarliestTimestamp int64      `json:"earliest_timestamp"`
	LatestTimestamp   int64      `json:"latest_timestamp"`
	ErrorTypes        []string   `json:"error_types"`
	GroupedErrors     []ErrorRow `json:"grouped_errors"`
}

// ErrorStats 에러 통계
type ErrorStats struct {
	TotalErrors         int `json:"total_errors"`
	UniqueUsersAffected int `json:"unique_users_affected"`
	Errors24h           int `json:"errors_24h"`
	UsersAffected24h    int `json:"users_affected_24h"`
	UsersAffected7d     int `json:"users_affected_7d"`
	UsersAffected30d    int `json:"users_affected_30d"`
}

// ErrorPattern 에러 메시지 패턴별 집계 (앞 100자 기준)
type ErrorPattern struct {
	ErrorPattern string `json:"error_pattern"`
	Count        int    `json:"count"`
	UniqueUsers  int    `json:"unique_users"`
}
