package services

import (
	"context"
	"math/rand"
	"time"

	"ymctelemetry/logger"
)

// 엔드포인트 타입. (ip_address, endpoint_type)가 rate_limits의 복합 키이므로
// 같은 IP라도 타입별로 윈도우와 카운터가 완전히 분리됩니다.
const (
	EndpointAction       = "action"
	EndpointInstallation = "installation"
)

const cleanupRetention = 24 * time.Hour

// RateLimiter IP별 고정 윈도우 요청 제한기.
// 이름과 달리 슬라이딩 윈도우가 아닌 고정 윈도우 방식입니다. 윈도우 경계에서의
// 동작 호환성을 위해 의도적으로 유지합니다 (토큰 버킷으로 바꾸면 관측 동작이 달라짐).
//
// 보호 장치이지 보안 경계가 아니므로 저장소 오류는 전부 "허용"으로 처리합니다(fail-open).
type RateLimiter struct {
	db                 SQLExecutor
	driver             string
	limits             map[string]int // endpoint_type -> max_requests
	windowSeconds      int64
	cleanupProbability float64

	now  func() time.Time // 테스트 주입용
	rand func() float64
}

// NewRateLimiter 요청 제한기 생성
// limits는 엔드포인트 타입별 윈도우당 최대 요청 수입니다.
func NewRateLimiter(db SQLExecutor, driver string, limits map[string]int, windowSeconds int, cleanupProbability float64) *RateLimiter {
	return &RateLimiter{
		db:                 db,
		driver:             driver,
		limits:             limits,
		windowSeconds:      int64(windowSeconds),
		cleanupProbability: cleanupProbability,
		now:                time.Now,
		rand:               rand.Float64,
	}
}

// Check IP가 제한 범위 내인지 확인합니다.
// true = 허용. 행이 없거나, 윈도우가 만료되었거나, 카운트가 한도 미만이면 허용입니다.
// 만료된 윈도우의 카운터 초기화는 Increment의 upsert가 원자적으로 수행합니다.
func (rl *RateLimiter) Check(ctx context.Context, ipAddress, endpointType string) bool {
	currentTime := rl.now().Unix()
	windowStart := currentTime - rl.windowSeconds

	var requestCount int
	var recordWindowStart int64
	err := rl.db.QueryRowContext(ctx,
		`SELECT request_count, window_start FROM rate_limits WHERE ip_address = ? AND endpoint_type = ?`,
		ipAddress, endpointType,
	).Scan(&requestCount, &recordWindowStart)

	if err != nil {
		// sql.ErrNoRows 포함: 행이 없으면 카운트 0으로 간주, 그 외 오류는 fail-open
		return true
	}

	// 윈도우 만료 → 허용 (카운터는 다음 Increment에서 리셋)
	if recordWindowStart < windowStart {
		return true
	}

	return requestCount < rl.maxRequests(endpointType)
}

// Increment 활성 윈도우의 카운터를 증가시킵니다.
// 활성 윈도우 행이 없으면 (미존재 또는 만료) 카운트 1, window_start=now로
// 원자적 upsert를 수행해 동시 요청 간 증가 유실을 방지합니다.
func (rl *RateLimiter) Increment(ctx context.Context, ipAddress, endpointType string) {
	currentTime := rl.now().Unix()

	result, err := rl.db.ExecContext(ctx,
		`UPDATE rate_limits
		 SET request_count = request_count + 1
		 WHERE ip_address = ? AND endpoint_type = ? AND window_start >= ?`,
		ipAddress, endpointType, currentTime-rl.windowSeconds,
	)

	if err == nil {
		affected, raErr := result.RowsAffected()
		if raErr == nil && affected == 0 {
			rl.resetWindow(ctx, ipAddress, endpointType, currentTime)
		}
	} else {
		logger.Debug("rate limit increment failed: %v", err)
	}

	// 확률적 정리: 별도 스위퍼 없이 테이블 크기를 제한
	if rl.rand() < rl.cleanupProbability {
		rl.cleanup(ctx)
	}
}

// resetWindow 새 윈도우를 카운트 1로 시작합니다.
// 기존 행이 있으면 (만료된 윈도우) 덮어쓰고, 없으면 삽입합니다.
func (rl *RateLimiter) resetWindow(ctx context.Context, ipAddress, endpointType string, windowStart int64) {
	var query string
	if rl.driver == "mysql" {
		query = `INSERT INTO rate_limits (ip_address, endpoint_type, request_count, window_start)
		         VALUES (?, ?, 1, ?)
		         ON DUPLICATE KEY UPDATE request_count = 1, window_start = VALUES(window_start)`
	} else {
		query = `INSERT INTO rate_limits (ip_address, endpoint_type, request_count, window_start)
		         VALUES (?, ?, 1, ?)
		         ON CONFLICT(ip_address, endpoint_type) DO UPDATE SET request_count = 1, window_start = excluded.window_start`
	}

	if _, err := rl.db.ExecContext(ctx, query, ipAddress, endpointType, windowStart); err != nil {
		logger.Debug("rate limit window reset failed: %v", err)
	}
}

// cleanup 24시간 이상 지난 윈도우 행을 삭제합니다. 실패는 항상 무시합니다.
func (rl *RateLimiter) cleanup(ctx context.Context) {
	cutoff := rl.now().Add(-cleanupRetention).Unix()
	if _, err := rl.db.ExecContext(ctx,
		`DELETE FROM rate_limits WHERE window_start < ?`, cutoff,
	); err != nil {
		logger.Debug("rate limit cleanup failed: %v", err)
	}
}

func (rl *RateLimiter) maxRequests(endpointType string) int {
	if max, ok := rl.limits[endpointType]; ok {
		return max
	}
	// 알 수 없는 타입은 action 한도를 따름
	return rl.limits[EndpointAction]
}
