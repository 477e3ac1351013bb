package services

import "errors"

// ErrValidation 입력 검증 실패.
// 핸들러는 이 에러를 400으로 매핑하며, 상세 사유는 클라이언트에 노출하지 않습니다.
var ErrValidation = errors.New("validation failed")

// truncate 문자열을 최대 n 룬으로 자릅니다.
// UTF-8 문자 중간에서 잘리지 않도록 바이트가 아닌 룬 기준으로 동작합니다.
func truncate(s string, n int) string {
	if n <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
