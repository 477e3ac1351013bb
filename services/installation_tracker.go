package services

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"ymctelemetry/models"
	"ymctelemetry/utils"
)

// 설치 집계에서 공통으로 쓰는 설치별 최신 행 서브쿼리.
// "현재 상태" = installation_id별 최대 id 행. 재시작마다 새 행이 쌓이는
// append-only 로그이므로 분포 집계는 반드시 최신 행만 봐야 합니다.
const latestInstallationJoin = `
	INNER JOIN (
		SELECT installation_id, MAX(id) AS max_id
		FROM installations
		WHERE installation_id IS NOT NULL AND installation_id != ''
		GROUP BY installation_id
	) i2 ON i1.id = i2.max_id`

// InstallationTracker 설치 보고서 기록 및 집계
type InstallationTracker struct {
	db SQLExecutor
}

// NewInstallationTracker 설치 트래커 생성
func NewInstallationTracker(db SQLExecutor) *InstallationTracker {
	return &InstallationTracker{db: db}
}

// Track 설치 보고서를 검증하고 append-only로 저장합니다. 절대 기존 행을 수정하지 않습니다.
func (t *InstallationTracker) Track(ctx context.Context, report models.InstallationReport, ipAddress, userAgent string) error {
	if err := validateInstallationReport(report); err != nil {
		return err
	}

	var extraData any
	if len(report.Extra) > 0 {
		// map 마샬링은 키 정렬이 보장되므로 동일 입력 → 동일 직렬화
		encoded, err := json.Marshal(report.Extra)
		if err != nil {
			return ErrValidation
		}
		extraData = string(encoded)
	}

	connected := 0
	if *report.YandexMusicConnected {
		connected = 1
	}

	_, err := t.db.ExecContext(ctx,
		`INSERT INTO installations (
			timestamp, ip_address, user_agent,
			platform, os_version, os_release, plugin_version, node_version,
			yandex_music_connected, yandex_music_path,
			stream_deck_version, stream_deck_language,
			installation_id, extra_data
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		time.Now().Unix(),
		nullable(ipAddress),
		nullable(userAgent),
		truncate(*report.Platform, 50),
		truncatePtr(report.OSVersion, 100),
		truncatePtr(report.OSRelease, 100),
		truncatePtr(report.PluginVersion, 50),
		truncatePtr(report.NodeVersion, 50),
		connected,
		truncatePtr(report.YandexMusicPath, 500),
		truncatePtr(report.StreamDeckVersion, 50),
		truncatePtr(report.StreamDeckLanguage, 20),
		truncate(*report.InstallationID, 255),
		extraData,
	)
	if err != nil {
		return fmt.Errorf("failed to track installation: %w", err)
	}

	return nil
}

// validateInstallationReport 필수 필드 존재와 타입 검증.
// 알 수 없는 필드는 거부하지 않고 extra_data로 수집됩니다.
func validateInstallationReport(report models.InstallationReport) error {
	if report.Platform == nil || *report.Platform == "" {
		return ErrValidation
	}
	if report.OSVersion == nil || report.OSRelease == nil {
		return ErrValidation
	}
	if report.PluginVersion == nil || report.NodeVersion == nil {
		return ErrValidation
	}
	if report.YandexMusicConnected == nil {
		return ErrValidation
	}
	if report.InstallationID == nil || *report.InstallationID == "" {
		return ErrValidation
	}
	return nil
}

// GetStats 설치 통계 조회. 개별 쿼리 실패는 0/빈 값으로 degrade합니다.
func (t *InstallationTracker) GetStats(ctx context.Context, filters models.StatsFilter) models.InstallationStats {
	stats := models.InstallationStats{
		PlatformBreakdown: []models.PlatformCount{},
	}

	clause, args := installationFilterConditions(filters, "")
	t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM installations WHERE 1=1`+clause, args...,
	).Scan(&stats.TotalInstallations)

	stats.UniqueInstallations = t.getUniqueInstallationCount(ctx, filters)

	for _, window := range []struct {
		dest   *int
		cutoff int64
	}{
		{&stats.Installations24h, utils.Cutoff(utils.Window24h)},
		{&stats.Installations7d, utils.Cutoff(utils.Window7d)},
		{&stats.Installations30d, utils.Cutoff(utils.Window30d)},
	} {
		clause, filterArgs := installationFilterConditions(filters, "")
		args := append([]any{window.cutoff}, filterArgs...)
		t.db.QueryRowContext(ctx,
			`SELECT COUNT(DISTINCT installation_id)
			 FROM installations
			 WHERE timestamp >= ? AND installation_id IS NOT NULL AND installation_id != ''`+clause,
			args...,
		).Scan(window.dest)
	}

	// 신규 설치: installation_id의 최초 보고 시각이 윈도우 안에 드는 경우
	for _, window := range []struct {
		dest   *int
		cutoff int64
	}{
		{&stats.NewInstallations24h, utils.Cutoff(utils.Window24h)},
		{&stats.NewInstallations7d, utils.Cutoff(utils.Window7d)},
		{&stats.NewInstallations30d, utils.Cutoff(utils.Window30d)},
	} {
		clause, filterArgs := installationFilterConditions(filters, "")
		args := append(filterArgs, window.cutoff)
		t.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM (
				SELECT installation_id, MIN(timestamp) AS first_seen
				FROM installations
				WHERE installation_id IS NOT NULL AND installation_id != ''`+clause+`
				GROUP BY installation_id
			) first_reports
			WHERE first_seen >= ?`,
			args...,
		).Scan(window.dest)
	}

	clause, args = installationFilterConditions(filters, "")
	rows, err := t.db.QueryContext(ctx,
		`SELECT platform, COUNT(*) AS count
		 FROM installations WHERE 1=1`+clause+`
		 GROUP BY platform ORDER BY count DESC`,
		args...,
	)
	if err == nil {
		defer rows.Close()
		for rows.Next() {
			var p models.PlatformCount
			if err := rows.Scan(&p.Platform, &p.Count); err != nil {
				continue
			}
			stats.PlatformBreakdown = append(stats.PlatformBreakdown, p)
		}
	}

	// Yandex Music 탐지/연결 비율 (설치별 최신 행 기준)
	if stats.UniqueInstallations > 0 {
		detected := t.countLatestWhere(ctx, filters,
			`yandex_music_connected = 1 OR (yandex_music_path IS NOT NULL AND yandex_music_path != '')`)
		connected := t.countLatestWhere(ctx, filters,
			`yandex_music_connected = 1`)

		total := float64(stats.UniqueInstallations)
		stats.YandexMusicDetectionRate = roundRate(float64(detected) / total * 100)
		stats.YandexMusicConnectionRate = roundRate(float64(connected) / total * 100)
	}

	return stats
}

// countLatestWhere 설치별 최신 행 집합에 조건을 적용한 건수
func (t *InstallationTracker) countLatestWhere(ctx context.Context, filters models.StatsFilter, condition string) int {
	clause, args := installationFilterConditions(filters, "i1")

	var count int
	t.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM (
			SELECT i1.yandex_music_connected, i1.yandex_music_path
			FROM installations i1`+latestInstallationJoin+`
			WHERE 1=1`+clause+`
		) latest
		WHERE `+condition,
		args...,
	).Scan(&count)
	return count
}

// getUniqueInstallationCount 고유 설치 수 (distinct installation_id)
func (t *InstallationTracker) getUniqueInstallationCount(ctx context.Context, filters models.StatsFilter) int {
	clause, args := installationFilterConditions(filters, "")

	var count int
	err := t.db.QueryRowContext(ctx,
		`SELECT COUNT(DISTINCT installation_id)
		 FROM installations
		 WHERE installation_id IS NOT NULL AND installation_id != ''`+clause,
		args...,
	).Scan(&count)
	if err != nil {
		return 0
	}
	return count
}

// GetRecentInstallations 설치별 최신 보고서 목록 (최신순)
func (t *InstallationTracker) GetRecentInstallations(ctx context.Context, limit int, filters models.StatsFilter) []models.Installation {
	clause, args := installationFilterConditions(filters, "i1")
	args = append(args, limit)

	rows, err := t.db.QueryContext(ctx,
		`SELECT i1.id, i1.timestamp, i1.ip_address, i1.user_agent,
		        i1.platform, i1.os_version, i1.os_release, i1.plugin_version, i1.node_version,
		        i1.yandex_music_connected, i1.yandex_music_path,
		        i1.stream_deck_version, i1.stream_deck_language,
		        i1.installation_id, i1.extra_data
		 FROM installations i1`+latestInstallationJoin+`
		 WHERE 1=1`+clause+`
		 ORDER BY i1.id DESC
		 LIMIT ?`,
		args...,
	)
	if err != nil {
		return []models.Installation{}
	}
	defer rows.Close()

	installations := []models.Installation{}
	for rows.Next() {
		inst, err := scanInstallation(rows)
		if err != nil {
			continue
		}
		installations = append(installations, inst)
	}
	return installations
}

// GetVersionBreakdown 플러그인 버전 분포 (설치별 최신 행 기준)
func (t *InstallationTracker) GetVersionBreakdown(ctx context.Context, filters models.StatsFilter) []models.VersionCount {
	clause, args := installationFilterConditions(filters, "i1")

	rows, err := t.db.QueryContext(ctx,
		`SELECT plugin_version AS version, COUNT(*) AS count
		 FROM (
			SELECT i1.plugin_version
			FROM installations i1`+latestInstallationJoin+`
			WHERE 1=1`+clause+`
		 ) latest
		 GROUP BY plugin_version
		 ORDER BY count DESC`,
		args...,
	)
	if err != nil {
		return []models.VersionCount{}
	}
	defer rows.Close()

	versions := []models.VersionCount{}
	for rows.Next() {
		var v models.VersionCount
		if err := rows.Scan(&v.Version, &v.Count); err != nil {
			continue
		}
		versions = append(versions, v)
	}
	return versions
}

// GetOSBreakdown OS 분포 (platform + os_release, 설치별 최신 행 기준)
// 문자열 결합은 방언 차이(CONCAT vs ||)를 피해 Go에서 수행합니다.
func (t *InstallationTracker) GetOSBreakdown(ctx context.Context, filters models.StatsFilter) []models.OSCount {
	clause, args := installationFilterConditions(filters, "i1")

	rows, err := t.db.QueryContext(ctx,
		`SELECT platform, os_release, COUNT(*) AS count
		 FROM (
			SELECT i1.platform, i1.os_release
			FROM installations i1`+latestInstallationJoin+`
			WHERE 1=1`+clause+`
		 ) latest
		 GROUP BY platform, os_release
		 ORDER BY count DESC`,
		args...,
	)
	if err != nil {
		return []models.OSCount{}
	}
	defer rows.Close()

	breakdown := []models.OSCount{}
	for rows.Next() {
		var platform string
		var osRelease *string
		var count int
		if err := rows.Scan(&platform, &osRelease, &count); err != nil {
			continue
		}

		release := "unknown"
		if osRelease != nil && *osRelease != "" {
			release = *osRelease
		}
		breakdown = append(breakdown, models.OSCount{
			OS:    platform + " " + release,
			Count: count,
		})
	}
	return breakdown
}

// GetInstallationsByIP IP별 설치 보고 요약
func (t *InstallationTracker) GetInstallationsByIP(ctx context.Context) []models.InstallationsByIP {
	rows, err := t.db.QueryContext(ctx,
		`SELECT
		    ip_address,
		    COUNT(*) AS installation_count,
		    GROUP_CONCAT(DISTINCT plugin_version) AS versions,
		    MIN(timestamp) AS first_reported,
		    MAX(timestamp) AS last_reported
		 FROM installations
		 WHERE ip_address IS NOT NULL
		 GROUP BY ip_address
		 ORDER BY installation_count DESC`,
	)
	if err != nil {
		return []models.InstallationsByIP{}
	}
	defer rows.Close()

	summaries := []models.InstallationsByIP{}
	for rows.Next() {
		var s models.InstallationsByIP
		var first, last int64
		if err := rows.Scan(&s.IPAddress, &s.InstallationCount, &s.Versions, &first, &last); err != nil {
			continue
		}
		s.FirstReported = utils.FormatUnix(first)
		s.LastReported = utils.FormatUnix(last)
		summaries = append(summaries, s)
	}
	return summaries
}

// installationFilterConditions 읽기 경로용 WHERE 조건 생성.
// actions와 달리 version 필터는 plugin_version 컬럼을 직접 비교합니다.
func installationFilterConditions(filters models.StatsFilter, tablePrefix string) (string, []any) {
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
		clause += " AND " + p + "plugin_version = ?"
		args = append(args, filters.Version)
	}

	return clause, args
}

// scanner sql.Rows와 sql.Row 공용 스캔 인터페이스
type scanner interface {
	Scan(dest ...any) error
}

func scanInstallation(s scanner) (models.Installation, error) {
	var inst models.Installation
	var ip, userAgent, osVersion, osRelease, nodeVersion *string
	var yandexPath, sdVersion, sdLanguage, extraData *string
	var connected int

	err := s.Scan(
		&inst.ID, &inst.Timestamp, &ip, &userAgent,
		&inst.Platform, &osVersion, &osRelease, &inst.PluginVersion, &nodeVersion,
		&connected, &yandexPath,
		&sdVersion, &sdLanguage,
		&inst.InstallationID, &extraData,
	)
	if err != nil {
		return inst, err
	}

	inst.YandexMusicConnected = connected == 1
	setIfPresent(&inst.IPAddress, ip)
	setIfPresent(&inst.UserAgent, userAgent)
	setIfPresent(&inst.OSVersion, osVersion)
	setIfPresent(&inst.OSRelease, osRelease)
	setIfPresent(&inst.NodeVersion, nodeVersion)
	setIfPresent(&inst.YandexMusicPath, yandexPath)
	setIfPresent(&inst.StreamDeckVersion, sdVersion)
	setIfPresent(&inst.StreamDeckLanguage, sdLanguage)
	setIfPresent(&inst.ExtraData, extraData)

	return inst, nil
}

func setIfPresent(dest *string, src *string) {
	if src != nil {
		*dest = *src
	}
}

// truncatePtr nil 포인터는 NULL로, 값은 최대 길이로 잘라 저장합니다.
func truncatePtr(s *string, n int) any {
	if s == nil {
		return nil
	}
	return truncate(*s, n)
}

// roundRate 백분율을 소수점 한 자리로 반올림
func roundRate(rate float64) float64 {
	return math.Round(rate*10) / 10
}
