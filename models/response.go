package models

// APIResponse 표준 API 응답 구조
// 모든 엔드포인트는 {success, ...선택 필드, error?} 형태로 응답합니다.
type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// ActionResponse 액션 트래킹 응답
type ActionResponse struct {
	Success    bool   `json:"success"`
	Action     string `json:"action,omitempty"`
	TotalCount *int   `json:"total_count,omitempty"`
	Error      string `json:"error,omitempty"`
}

// SuccessResponse 성공 응답 생성
func SuccessResponse(data interface{}) APIResponse {
	return APIResponse{
		Success: true,
		Data:    data,
	}
}

// ErrorResponse 에러 응답 생성
// 클라이언트에는 일반화된 메시지만 노출합니다 (검증 실패 사유 비공개).
func ErrorResponse(message string) APIResponse {
	return APIResponse{
		Success: false,
		Error:   message,
	}
}
