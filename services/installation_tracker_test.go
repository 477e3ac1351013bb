package services

import (
	"context"
	"encoding/json"
	"testing"

	"ymctelemetry/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func validReport(installationID, version string, connected bool) models.InstallationReport {
	return models.InstallationReport{
		Platform:             strPtr("darwin"),
		OSVersion:            strPtr("Darwin Kernel Version 23.0.0"),
		OSRelease:            strPtr("14.0"),
		PluginVersion:        strPtr(version),
		NodeVersion:          strPtr("20.8.1"),
		YandexMusicConnected: boolPtr(connected),
		InstallationID:       strPtr(installationID),
	}
}

func TestTrackInstallation(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	err := tracker.Track(ctx, validReport("inst-1", "1.0.0", true), "1.2.3.4", "node-fetch")
	require.NoError(t, err)

	var count int
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM installations WHERE installation_id = 'inst-1'`,
	).Scan(&count))
	assert.Equal(t, 1, count)
}

func TestTrackInstallationValidation(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	cases := map[string]models.InstallationReport{
		"missing platform": {
			OSVersion: strPtr("x"), OSRelease: strPtr("x"),
			PluginVersion: strPtr("1.0.0"), NodeVersion: strPtr("20"),
			YandexMusicConnected: boolPtr(true), InstallationID: strPtr("inst-1"),
		},
		"empty platform": func() models.InstallationReport {
			r := validReport("inst-1", "1.0.0", true)
			r.Platform = strPtr("")
			return r
		}(),
		"missing osRelease": func() models.InstallationReport {
			r := validReport("inst-1", "1.0.0", true)
			r.OSRelease = nil
			return r
		}(),
		"missing pluginVersion": func() models.InstallationReport {
			r := validReport("inst-1", "1.0.0", true)
			r.PluginVersion = nil
			return r
		}(),
		"missing yandexMusicConnected": func() models.InstallationReport {
			r := validReport("inst-1", "1.0.0", true)
			r.YandexMusicConnected = nil
			return r
		}(),
		"missing installation_id": func() models.InstallationReport {
			r := validReport("inst-1", "1.0.0", true)
			r.InstallationID = nil
			return r
		}(),
		"empty installation_id": func() models.InstallationReport {
			r := validReport("", "1.0.0", true)
			return r
		}(),
	}

	for name, report := range cases {
		t.Run(name, func(t *testing.T) {
			assert.ErrorIs(t, tracker.Track(ctx, report, "1.2.3.4", ""), ErrValidation)
		})
	}
}

func TestTrackInstallationExtraData(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	// 알 수 없는 필드는 거부하지 않고 extra_data로 수집
	payload := []byte(`{
		"platform": "win32",
		"osVersion": "10.0.22631",
		"osRelease": "11",
		"pluginVersion": "1.2.0",
		"nodeVersion": "20.8.1",
		"yandexMusicConnected": false,
		"installation_id": "inst-extra",
		"theme": "dark",
		"customFlag": 42
	}`)

	var report models.InstallationReport
	require.NoError(t, json.Unmarshal(payload, &report))
	require.NoError(t, tracker.Track(ctx, report, "1.2.3.4", ""))

	var extraData string
	require.NoError(t, db.QueryRowContext(ctx,
		`SELECT extra_data FROM installations WHERE installation_id = 'inst-extra'`,
	).Scan(&extraData))

	var extra map[string]json.RawMessage
	require.NoError(t, json.Unmarshal([]byte(extraData), &extra))
	assert.Len(t, extra, 2)
	assert.JSONEq(t, `"dark"`, string(extra["theme"]))
	assert.JSONEq(t, `42`, string(extra["customFlag"]))
	assert.NotContains(t, extra, "platform")
}

func TestInstallationStats(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	// inst-1: 두 번 보고 (업그레이드), 최신 행은 connected=true
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", false), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.1.0", true), "1.2.3.4", ""))
	// inst-2: connected=false, 경로도 없음
	require.NoError(t, tracker.Track(ctx, validReport("inst-2", "1.0.0", false), "5.6.7.8", ""))

	stats := tracker.GetStats(ctx, models.StatsFilter{})
	assert.Equal(t, 3, stats.TotalInstallations)
	assert.Equal(t, 2, stats.UniqueInstallations)
	assert.Equal(t, 2, stats.Installations24h)
	assert.Equal(t, 2, stats.NewInstallations24h)

	require.Len(t, stats.PlatformBreakdown, 1)
	assert.Equal(t, "darwin", stats.PlatformBreakdown[0].Platform)
	assert.Equal(t, 3, stats.PlatformBreakdown[0].Count)

	// 최신 행 기준: inst-1만 connected → 50.0%
	assert.Equal(t, 50.0, stats.YandexMusicConnectionRate)
	assert.GreaterOrEqual(t, stats.YandexMusicDetectionRate, stats.YandexMusicConnectionRate)
}

func TestInstallationDetectionRateIncludesPath(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	// connected=false지만 경로가 있으면 "탐지됨"
	report := validReport("inst-1", "1.0.0", false)
	report.YandexMusicPath = strPtr("/Applications/Yandex Music.app")
	require.NoError(t, tracker.Track(ctx, report, "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-2", "1.0.0", false), "5.6.7.8", ""))

	stats := tracker.GetStats(ctx, models.StatsFilter{})
	assert.Equal(t, 50.0, stats.YandexMusicDetectionRate)
	assert.Equal(t, 0.0, stats.YandexMusicConnectionRate)
}

func TestVersionBreakdownUsesLatestRow(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	// inst-1이 세 번 보고: 1.0.0 → 1.1.0 → 1.2.0. 최신 행만 집계 대상
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.1.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.2.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-2", "1.0.0", true), "5.6.7.8", ""))

	versions := tracker.GetVersionBreakdown(ctx, models.StatsFilter{})
	require.Len(t, versions, 2)

	counts := map[string]int{}
	for _, v := range versions {
		counts[v.Version] = v.Count
	}
	assert.Equal(t, 1, counts["1.2.0"])
	assert.Equal(t, 1, counts["1.0.0"])
	assert.NotContains(t, counts, "1.1.0")
}

func TestOSBreakdownCombinesPlatformAndRelease(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", true), "1.2.3.4", ""))

	report := validReport("inst-2", "1.0.0", true)
	report.Platform = strPtr("win32")
	report.OSRelease = strPtr("11")
	require.NoError(t, tracker.Track(ctx, report, "5.6.7.8", ""))

	breakdown := tracker.GetOSBreakdown(ctx, models.StatsFilter{})
	require.Len(t, breakdown, 2)

	labels := []string{breakdown[0].OS, breakdown[1].OS}
	assert.Contains(t, labels, "darwin 14.0")
	assert.Contains(t, labels, "win32 11")
}

func TestRecentInstallationsLatestPerID(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", false), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.1.0", true), "1.2.3.4", ""))

	recent := tracker.GetRecentInstallations(ctx, 10, models.StatsFilter{})
	require.Len(t, recent, 1)
	assert.Equal(t, "inst-1", recent[0].InstallationID)
	assert.Equal(t, "1.1.0", recent[0].PluginVersion)
	assert.True(t, recent[0].YandexMusicConnected)
}

func TestInstallationsByIP(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.1.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-2", "1.0.0", true), "5.6.7.8", ""))

	summaries := tracker.GetInstallationsByIP(ctx)
	require.Len(t, summaries, 2)

	assert.Equal(t, "1.2.3.4", summaries[0].IPAddress)
	assert.Equal(t, 2, summaries[0].InstallationCount)
	assert.Contains(t, summaries[0].Versions, "1.0.0")
	assert.Contains(t, summaries[0].Versions, "1.1.0")
	assert.NotEmpty(t, summaries[0].FirstReported)
}

func TestInstallationStatsVersionFilter(t *testing.T) {
	db := newTestDB(t)
	tracker := NewInstallationTracker(db)
	ctx := context.Background()

	require.NoError(t, tracker.Track(ctx, validReport("inst-1", "1.0.0", true), "1.2.3.4", ""))
	require.NoError(t, tracker.Track(ctx, validReport("inst-2", "2.0.0", true), "5.6.7.8", ""))

	stats := tracker.GetStats(ctx, models.StatsFilter{Version: "2.0.0"})
	assert.Equal(t, 1, stats.TotalInstallations)
	assert.Equal(t, 1, stats.UniqueInstallations)
}
