package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"ymctelemetry/models"
	"ymctelemetry/utils"
)

// groupingOverfetch 그룹핑은 원본 행 기준이 아닌 그룹 기준으로 잘라야 하므로
// limit의 몇 배를 미리 가져올지 정하는 계수입니다.
const groupingOverfetch = 4

// ErrorTracker 에러 보고서 기록 및 집계
type ErrorTracker struct {
	db            SQLExecutor
	windowSeconds int64
}

// NewErrorTracker 에러 트래커 생성
// groupWindowSeconds는 같은 설치의 에러를 한 사건으로 묶는 시간 근접성 기준입니다.
func NewErrorTracker(db SQLExecutor, groupWindowSeconds int64) *ErrorTracker {
	if groupWindowSeconds <= 0 {
		groupWindowSeconds = 10
	}
	return &ErrorTracker{db: db, windowSeconds: groupWindowSeconds}
}

// Track 에러 보고서를 검증하고 append-only로 저장합니다.
// installation_id가 없는 보고서도 받습니다 (클라이언트 초기화 전 크래시).
func (t *ErrorTracker) Track(ctx context.Context, report models.ErrorReport, ipAddress string) error {
	if report.ErrorMessage == nil || strings.TrimSpace(*report.ErrorMessage) == "" {
		return ErrValidation
	}

	installationID := ""
	if report.InstallationID != nil {
		installationID = truncate(*report.InstallationID, 255)
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO errors (timestamp, ip_address, installation_id, platform, error_message, stack_trace)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		nullable(ipAddress),
		installationID,
		truncatePtr(report.Platform, 50),
		truncate(strings.TrimSpace(*report.ErrorMessage), 2000),
		truncatePtr(report.StackTrace, 10000),
	)
	if err != nil {
		return fmt.Errorf("failed to track error: %w", err)
	}

	return nil
}

// GetStats 에러 통계 조회. 개별 쿼리 실패는 0으로 degrade합니다.
func (t *ErrorTracker) GetStats(ctx context.Context, filters models.StatsFilter) models.ErrorStats {
	var stats models.ErrorStats

	clause, args := errorFilterConditions(filters, "")
	t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM errors WHERE 1=1`+clause, args...,
	).Scan(&stats.TotalErrors)

	clause, args = errorFilterConditions(filters, "")
	t.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT installation_id)
		 FROM errors WHERE installation_id != ''`+clause,
		args...,
	).Scan(&stats.UniqueUsersAffected)

	clause, filterArgs := errorFilterConditions(filters, "")
	args = append([]any{utils.Cutoff(utils.Window24h)}, filterArgs...)
	t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM errors WHERE timestamp >= ?`+clause, args...,
	).Scan(&stats.Errors24h)

	for _, window := range []struct {
		dest   *int
		cutoff int64
	}{
		{&stats.UsersAffected24h, utils.Cutoff(utils.Window24h)},
		{&stats.UsersAffected7d, utils.Cutoff(utils.Window7d)},
		{&stats.UsersAffected30d, utils.Cutoff(utils.Window30d)},
	} {
		clause, filterArgs := errorFilterConditions(filters, "")
		args := append([]any{window.cutoff}, filterArgs...)
		t.db.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT installation_id)
			 FROM errors WHERE timestamp >= ? AND installation_id != ''`+clause,
			args...,
		).Scan(window.dest)
	}

	return stats
}

// GetRecentErrors 최근 에러를 사건 단위로 묶어 반환합니다.
// 그룹 수 기준으로 자르기 위해 원본 행을 limit의 4배 가져온 뒤 그룹핑합니다.
// 에러 행에는 같은 installation_id의 최신 설치 보고에서 plugin_version/os_release를
// 조인합니다. 에러에 platform이 있으면 같은 platform의 설치 보고만 매칭합니다
// (한 설치 ID가 여러 플랫폼에서 보고하는 경우의 오염 방지).
func (t *ErrorTracker) GetRecentErrors(ctx context.Context, limit int, filters models.StatsFilter) []models.ErrorGroup {
	clause, args := errorFilterConditions(filters, "e")
	args = append(args, limit*groupingOverfetch)

	rows, err := t.db.QueryContext(ctx,
		`SELECT e.id, e.timestamp, e.ip_address, e.installation_id, e.platform,
		        e.error_message, e.stack_trace,
		        i1.plugin_version, i1.os_release
		 FROM errors e
		 LEFT JOIN installations i1 ON i1.id = (
			SELECT MAX(i2.id)
			FROM installations i2
			WHERE i2.installation_id = e.installation_id
			  AND i2.installation_id != ''
			  AND (e.platform IS NULL OR e.platform = '' OR i2.platform = e.platform)
		 )
		 WHERE 1=1`+clause+`
		 ORDER BY e.id DESC
		 LIMIT ?`,
		args...,
	)
	if err != nil {
		return []models.ErrorGroup{}
	}
	defer rows.Close()

	errorRows := []models.ErrorRow{}
	for rows.Next() {
		var row models.ErrorRow
		var ip, platform, stackTrace, pluginVersion, osRelease *string
		if err := rows.Scan(
			&row.ID, &row.Timestamp, &ip, &row.InstallationID, &platform,
			&row.ErrorMessage, &stackTrace, &pluginVersion, &osRelease,
		); err != nil {
			continue
		}
		setIfPresent(&row.IPAddress, ip)
		setIfPresent(&row.Platform, platform)
		setIfPresent(&row.StackTrace, stackTrace)
		setIfPresent(&row.PluginVersion, pluginVersion)
		setIfPresent(&row.OSRelease, osRelease)
		errorRows = append(errorRows, row)
	}

	groups := GroupErrors(errorRows, t.windowSeconds)
	if len(groups) > limit {
		groups = groups[:limit]
	}
	return groups
}

// GetErrorBreakdown 에러 메시지 앞 100자 기준 패턴별 집계
// LEFT() 대신 표준 SUBSTR()을 사용해 방언 차이를 피합니다.
func (t *ErrorTracker) GetErrorBreakdown(ctx context.Context, filters models.StatsFilter) []models.ErrorPattern {
	clause, args := errorFilterConditions(filters, "")

	rows, err := t.db.QueryContext(ctx,
		`SELECT
		    SUBSTR(error_message, 1, 100) AS error_pattern,
		    COUNT(*) AS count,
		    COUNT(DISTINCT installation_id) AS unique_users
		 FROM errors
		 WHERE 1=1`+clause+`
		 GROUP BY SUBSTR(error_message, 1, 100)
		 ORDER BY count DESC`,
		args...,
	)
	if err != nil {
		return []models.ErrorPattern{}
	}
	defer rows.Close()

	patterns := []models.ErrorPattern{}
	for rows.Next() {
		var p models.ErrorPattern
		if err := rows.Scan(&p.ErrorPattern, &p.Count, &p.UniqueUsers); err != nil {
			continue
		}
		patterns = append(patterns, p)
	}
	return patterns
}

// errorFilterConditions 읽기 경로용 WHERE 조건 생성.
// version 필터는 설치 테이블을 통해 installation_id로 해석됩니다.
func errorFilterConditions(filters models.StatsFilter, tablePrefix string) (string, []any) {
	var clause string
	var args []any

	p := ""
	if tablePrefix != "" {
		p = tablePrefix + "."
	}

	if filters.IP != "" {
		clause += " AND " + p + "ip_address = ?"
		args = append(args, filters.IP)
	}
	if filters.InstallationID != "" {
		clause += " AND " + p + "installation_id = ?"
		args = append(args, filters.InstallationID)
	}
	if filters.Version != "" {
		clause += " AND " + p + `installation_id IN (
			SELECT DISTINCT installation_id FROM installations
			WHERE plugin_version = ? AND installation_id IS NOT NULL AND installation_id != '')`
		args = append(args, filters.Version)
	}

	return clause, args
}
