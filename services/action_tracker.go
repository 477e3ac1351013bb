package services

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"ymctelemetry/models"
	"ymctelemetry/utils"
)

// ActionTracker 액션 이벤트 기록 및 집계
type ActionTracker struct {
	db              SQLExecutor
	namePattern     *regexp.Regexp
	maxActionLength int
}

// NewActionTracker 액션 트래커 생성
// pattern이 비어 있으면 기본 패턴을 사용합니다.
func NewActionTracker(db SQLExecutor, pattern string, maxActionLength int) (*ActionTracker, error) {
	if pattern == "" {
		pattern = "^[a-zA-Z0-9_-]{1,64}$"
	}
	if maxActionLength <= 0 {
		maxActionLength = 64
	}

	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, fmt.Errorf("invalid action name pattern: %w", err)
	}

	return &ActionTracker{
		db:              db,
		namePattern:     re,
		maxActionLength: maxActionLength,
	}, nil
}

// ValidActionName 액션 이름 형식 검증
func (t *ActionTracker) ValidActionName(actionName string) bool {
	if actionName == "" || len(actionName) > t.maxActionLength {
		return false
	}
	return t.namePattern.MatchString(actionName)
}

// Track 액션을 기록하고 해당 액션의 누적 건수를 반환합니다.
// installationID가 비어 있으면 구버전 클라이언트 호환을 위해 '0'으로 저장합니다.
func (t *ActionTracker) Track(ctx context.Context, actionName, installationID, ipAddress string) (int, error) {
	if !t.ValidActionName(actionName) {
		return 0, ErrValidation
	}

	if installationID == "" {
		installationID = "0"
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO actions (action_name, timestamp, ip_address, installation_id)
		 VALUES (?, ?, ?, ?)`,
		actionName, time.Now().Unix(), nullable(ipAddress), installationID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to track action: %w", err)
	}

	return t.GetCount(ctx, actionName), nil
}

// GetCount 특정 액션의 누적 건수. 조회 실패 시 0으로 degrade합니다.
func (t *ActionTracker) GetCount(ctx context.Context, actionName string) int {
	var count int
	err := t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM actions WHERE action_name = ?`, actionName,
	).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// GetStats 액션 통계 조회. 개별 쿼리 실패는 0으로 남겨 대시보드가 죽지 않게 합니다.
func (t *ActionTracker) GetStats(ctx context.Context, filters models.StatsFilter) models.ActionStats {
	var stats models.ActionStats

	t.scanCount(ctx, &stats.TotalActions, filters, nil,
		`SELECT COUNT(*) FROM actions WHERE 1=1`)
	t.scanCount(ctx, &stats.UniqueActionTypes, filters, nil,
		`SELECT COUNT(DISTINCT action_name) FROM actions WHERE 1=1`)
	t.scanCount(ctx, &stats.UniqueVisitors, filters, nil,
		`SELECT COUNT(DISTINCT ip_address) FROM actions WHERE ip_address IS NOT NULL`)

	t.scanCount(ctx, &stats.UniqueVisitors24h, filters, []any{utils.Cutoff(utils.Window24h)},
		`SELECT COUNT(DISTINCT ip_address) FROM actions WHERE ip_address IS NOT NULL AND timestamp >= ?`)
	t.scanCount(ctx, &stats.UniqueVisitors7d, filters, []any{utils.Cutoff(utils.Window7d)},
		`SELECT COUNT(DISTINCT ip_address) FROM actions WHERE ip_address IS NOT NULL AND timestamp >= ?`)
	t.scanCount(ctx, &stats.UniqueVisitors30d, filters, []any{utils.Cutoff(utils.Window30d)},
		`SELECT COUNT(DISTINCT ip_address) FROM actions WHERE ip_address IS NOT NULL AND timestamp >= ?`)

	t.scanCount(ctx, &stats.Actions24h, filters, []any{utils.Cutoff(utils.Window24h)},
		`SELECT COUNT(*) FROM actions WHERE timestamp >= ?`)
	t.scanCount(ctx, &stats.Actions7d, filters, []any{utils.Cutoff(utils.Window7d)},
		`SELECT COUNT(*) FROM actions WHERE timestamp >= ?`)
	t.scanCount(ctx, &stats.Actions30d, filters, []any{utils.Cutoff(utils.Window30d)},
		`SELECT COUNT(*) FROM actions WHERE timestamp >= ?`)

	return stats
}

// scanCount 필터 조건을 덧붙여 단일 COUNT 쿼리를 실행합니다.
func (t *ActionTracker) scanCount(ctx context.Context, dest *int, filters models.StatsFilter, args []any, query string) {
	clause, filterArgs := actionFilterConditions(filters, "")
	args = append(args, filterArgs...)

	var count int
	if err := t.db.QueryRowContext(ctx, query+clause, args...).Scan(&count); err != nil {
		return
	}
	*dest = count
}

// GetTopActions 건수 기준 상위 액션 목록 (고유 방문자 수 포함)
func (t *ActionTracker) GetTopActions(ctx context.Context, limit int, filters models.StatsFilter) []models.TopAction {
	clause, args := actionFilterConditions(filters, "")
	args = append(args, limit)

	rows, err := t.db.QueryContext(ctx,
		`SELECT action_name, COUNT(*) AS total_count, COUNT(DISTINCT ip_address) AS unique_visitors
		 FROM actions
		 WHERE 1=1`+clause+`
		 GROUP BY action_name
		 ORDER BY total_count DESC
		 LIMIT ?`,
		args...,
	)
	if err != nil {
		return []models.TopAction{}
	}
	defer rows.Close()

	top := []models.TopAction{}
	for rows.Next() {
		var a models.TopAction
		if err := rows.Scan(&a.ActionName, &a.TotalCount, &a.UniqueVisitors); err != nil {
			continue
		}
		top = append(top, a)
	}
	return top
}

// GetRecentActions 최근 액션 목록 (최신순)
func (t *ActionTracker) GetRecentActions(ctx context.Context, limit int) []models.Action {
	rows, err := t.db.QueryContext(ctx,
		`SELECT id, action_name, timestamp, ip_address, installation_id
		 FROM actions
		 ORDER BY id DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return []models.Action{}
	}
	defer rows.Close()

	actions := []models.Action{}
	for rows.Next() {
		var a models.Action
		var ip, installationID *string
		if err := rows.Scan(&a.ID, &a.ActionName, &a.Timestamp, &ip, &installationID); err != nil {
			continue
		}
		if ip != nil {
			a.IPAddress = *ip
		}
		if installationID != nil {
			a.InstallationID = *installationID
		}
		actions = append(actions, a)
	}
	return actions
}

// GetVisitorSummary IP별 방문자 요약 (사용한 액션, 최초/최종 실행, 총 건수)
func (t *ActionTracker) GetVisitorSummary(ctx context.Context, filters models.StatsFilter) []models.VisitorSummary {
	clause, args := actionFilterConditions(filters, "")

	rows, err := t.db.QueryContext(ctx,
		`SELECT
		    ip_address,
		    GROUP_CONCAT(DISTINCT action_name) AS actions_used,
		    MIN(timestamp) AS first_executed,
		    MAX(timestamp) AS last_executed,
		    COUNT(*) AS total_actions
		 FROM actions
		 WHERE ip_address IS NOT NULL`+clause+`
		 GROUP BY ip_address
		 ORDER BY ip_address`,
		args...,
	)
	if err != nil {
		return []models.VisitorSummary{}
	}
	defer rows.Close()

	visitors := []models.VisitorSummary{}
	for rows.Next() {
		var v models.VisitorSummary
		var first, last int64
		if err := rows.Scan(&v.IPAddress, &v.ActionsUsed, &first, &last, &v.TotalActions); err != nil {
			continue
		}
		v.FirstExecuted = utils.FormatUnix(first)
		v.LastExecuted = utils.FormatUnix(last)
		visitors = append(visitors, v)
	}
	return visitors
}

// actionFilterConditions 읽기 경로용 WHERE 조건 생성.
// version 필터는 installations 테이블을 통해 installation_id로 해석됩니다.
func actionFilterConditions(filters models.StatsFilter, tablePrefix string) (string, []any) {
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

// nullable 빈 문자열을 NULL로 저장하기 위한 변환
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
