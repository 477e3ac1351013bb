package models

import "encoding/json"

// installationKnownFields 설치 보고서의 정형 필드 목록
// 여기에 없는 키는 extra_data로 수집됩니다 (중복 저장 방지).
var installationKnownFields = map[string]bool{
	"platform":             true,
	"osVersion":            true,
	"osRelease":            true,
	"pluginVersion":        true,
	"nodeVersion":          true,
	"yandexMusicConnected": true,
	"yandexMusicPath":      true,
	"streamDeckVersion":    true,
	"streamDeckLanguage":   true,
	"installation_id":      true,
}

// InstallationReport 클라이언트가 전송하는 설치 보고서
// 알 수 없는 필드는 Extra에 원본 그대로 보존됩니다.
type InstallationReport struct {
	Platform             *string `json:"platform"`
	OSVersion            *string `json:"osVersion"`
	OSRelease            *string `json:"osRelease"`
	PluginVersion        *string `json:"pluginVersion"`
	NodeVersion          *string `json:"nodeVersion"`
	YandexMusicConnected *bool   `json:"yandexMusicConnected"`
	YandexMusicPath      *string `json:"yandexMusicPath"`
	StreamDeckVersion    *string `json:"streamDeckVersion"`
	StreamDeckLanguage   *string `json:"streamDeckLanguage"`
	InstallationID       *string `json:"installation_id"`

	Extra map[string]json.RawMessage `json:"-"`
}

// UnmarshalJSON 정형 필드를 추출하고 나머지 키를 Extra로 분리합니다.
func (r *InstallationReport) UnmarshalJSON(data []byte) error {
	type alias InstallationReport
	var typed alias
	if err := json.Unmarshal(data, &typed); err != nil {
		return err
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	for key := range raw {
		if installationKnownFields[key] {
			delete(raw, key)
		}
	}

	*r = InstallationReport(typed)
	if len(raw) > 0 {
		r.Extra = raw
	}
	return nil
}

// Installation 설치 보고서 행 (append-only)
type Installation struct {
	ID                   int64  `json:"id"`
	Timestamp            int64  `json:"timestamp"`
	IPAddress            string `json:"ip_address,omitempty"`
	UserAgent            string `json:"user_agent,omitempty"`
	Platform             string `json:"platform"`
	OSVersion            string `json:"os_version,omitempty"`
	OSRelease            string `json:"os_release,omitempty"`
	PluginVersion        string `json:"plugin_version"`
	NodeVersion          string `json:"node_version,omitempty"`
	YandexMusicConnected bool   `json:"yandex_music_connected"`
	YandexMusicPath      string `json:"yandex_music_path,omitempty"`
	StreamDeckVersion    string `json:"stream_deck_version,omitempty"`
	StreamDeckLanguage   string `json:"stream_deck_language,omitempty"`
	InstallationID       string `json:"installation_id"`
	ExtraData            string `json:"extra_data,omitempty"`
}

// InstallationStats 설치 통계
type InstallationStats struct {
	TotalInstallations        int             `json:"total_installations"`
	UniqueInstallations       int             `json:"unique_installations"`
	Installations24h          int             `json:"installations_24h"`
	Installations7d           int             `json:"installations_7d"`
	Installations30d          int             `json:"installations_30d"`
	NewInstallations24h       int             `json:"new_installations_24h"`
	NewInstallations7d        int             `json:"new_installations_7d"`
	NewInstallations30d       int             `json:"new_installations_30d"`
	PlatformBreakdown         []PlatformCount `json:"platform_breakdown"`
	YandexMusicDetectionRate  float64         `json:"yandex_music_detection_rate"`
	YandexMusicConnectionRate float64         `json:"yandex_music_connection_rate"`
}

// PlatformCount 플랫폼별 보고 건수
type PlatformCount struct {
	Platform string `json:"platform"`
	Count    int    `json:"count"`
}

// VersionCount 플러그인 버전 분포 (설치별 최신 행 기준)
type VersionCount struct {
	Version string `json:"version"`
	Count   int    `json:"count"`
}

// OSCount OS 분포 (platform + os_release, 설치별 최신 행 기준)
type OSCount struct {
	OS    string `json:"os"`
	Count int    `json:"count"`
}

// InstallationsByIP IP별 설치 보고 요약
type InstallationsByIP struct {
	IPAddress         string `json:"ip_address"`
	InstallationCount int    `json:"installation_count"`
	Versions          string `json:"versions"`
	FirstReported     string `json:"first_reported"`
	LastReported      string `json:"last_reported"`
}
