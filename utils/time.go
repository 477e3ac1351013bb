package utils

import "time"

const displayTimeLayout = "2006-01-02 15:04:05"

// 대시보드 집계에서 쓰는 표준 시간 윈도우
const (
	Window24h = 24 * time.Hour
	Window7d  = 7 * 24 * time.Hour
	Window30d = 30 * 24 * time.Hour
)

// Cutoff 현재 시각에서 window만큼 이전의 유닉스 타임스탬프를 반환합니다.
func Cutoff(window time.Duration) int64 {
	return time.Now().Add(-window).Unix()
}

// FormatUnix 유닉스 타임스탬프를 표시용 UTC 문자열로 변환합니다.
// DB 방언별 FROM_UNIXTIME 대신 Go에서 포맷팅합니다.
func FormatUnix(ts int64) string {
	if ts <= 0 {
		return ""
	}
	return time.Unix(ts, 0).UTC().Format(displayTimeLayout)
}
