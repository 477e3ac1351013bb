package scheduler

import (
	"time"

	"ymctelemetry/database"
	"ymctelemetry/logger"
)

// retentionTables 보존 기간 정리 대상 테이블
// rate_limits는 RateLimiter의 확률적 정리가 담당하므로 제외합니다.
var retentionTables = []string{"actions", "installations", "errors"}

// StartRetentionSweeper 보존 기간이 지난 텔레메트리 행을 주기적으로 삭제합니다.
// retentionDays <= 0이면 아무것도 하지 않습니다 (기본: 무기한 보존).
func StartRetentionSweeper(retentionDays int) {
	if retentionDays <= 0 {
		return
	}

	logger.Info("Retention sweeper started (retention: %d days)", retentionDays)

	ticker := time.NewTicker(1 * time.Hour)

	// 서버 시작 시 즉시 한 번 실행
	sweepExpiredRows(retentionDays)

	go func() {
		for {
			<-ticker.C
			sweepExpiredRows(retentionDays)
		}
	}()
}

// sweepExpiredRows 보존 기간이 지난 행 삭제
// 테이블 단위로 독립 실행하며, 한 테이블의 실패가 나머지를 막지 않습니다.
func sweepExpiredRows(retentionDays int) {
	cutoff := time.Now().AddDate(0, 0, -retentionDays).Unix()

	for _, table := range retentionTables {
		result, err := database.DB.Exec(
			`DELETE FROM `+table+` WHERE timestamp < ?`, cutoff,
		)
		if err != nil {
			logger.WithFields(map[string]interface{}{
				"table": table,
				"error": err.Error(),
			}).Error("Retention sweep failed")
			continue
		}

		rowsAffected, _ := result.RowsAffected()
		if rowsAffected > 0 {
			logger.WithFields(map[string]interface{}{
				"table": table,
				"count": rowsAffected,
			}).Info("Retention sweep removed expired rows")
		}
	}
}
