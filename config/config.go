package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config 서버 전체 설정
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Database   DatabaseConfig   `yaml:"database"`
	CORS       CORSConfig       `yaml:"cors"`
	RateLimit  RateLimitConfig  `yaml:"rate_limit"`
	Validation ValidationConfig `yaml:"validation"`
	Dashboard  DashboardConfig  `yaml:"dashboard"`
	Retention  RetentionConfig  `yaml:"retention"`
	Log        LogConfig        `yaml:"log"`
}

// ServerConfig HTTP 서버 설정
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// DatabaseConfig 데이터베이스 연결 설정
// Driver: "sqlite" 또는 "mysql"
type DatabaseConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn"`
}

// CORSConfig CORS 헤더 설정
type CORSConfig struct {
	Enabled      bool   `yaml:"enabled"`
	AllowOrigin  string `yaml:"allow_origin"`
	AllowMethods string `yaml:"allow_methods"`
	AllowHeaders string `yaml:"allow_headers"`
}

// RateLimitConfig 엔드포인트별 요청 제한 설정
type RateLimitConfig struct {
	Enabled                 bool    `yaml:"enabled"`
	MaxRequests             int     `yaml:"max_requests"`              // action 엔드포인트
	InstallationMaxRequests int     `yaml:"installation_max_requests"` // installation 엔드포인트 (플러그인 재시작 허용을 위해 더 높음)
	WindowSeconds           int     `yaml:"window_seconds"`
	CleanupProbability      float64 `yaml:"cleanup_probability"`
}

// ValidationConfig 액션 이름 검증 설정
type ValidationConfig struct {
	ActionNamePattern string `yaml:"action_name_pattern"`
	MaxActionLength   int    `yaml:"max_action_length"`
}

// DashboardConfig 대시보드 API 인증 설정
type DashboardConfig struct {
	Username      string `yaml:"username"`
	PasswordHash  string `yaml:"password_hash"` // bcrypt 해시
	JWTSecret     string `yaml:"jwt_secret"`
	TokenTTLHours int    `yaml:"token_ttl_hours"`
}

// RetentionConfig 오래된 텔레메트리 행 정리 설정
type RetentionConfig struct {
	Enabled bool `yaml:"enabled"`
	Days    int  `yaml:"days"`
}

// LogConfig 로거 설정
type LogConfig struct {
	Level string `yaml:"level"` // DEBUG, INFO, WARN, ERROR
	Dir   string `yaml:"dir"`
}

// Default 기본 설정 값
func Default() Config {
	return Config{
		Server: ServerConfig{
			Addr: ":8080",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "./telemetry.db",
		},
		CORS: CORSConfig{
			Enabled:      true,
			AllowOrigin:  "*",
			AllowMethods: "GET, POST, OPTIONS",
			AllowHeaders: "Content-Type",
		},
		RateLimit: RateLimitConfig{
			Enabled:                 true,
			MaxRequests:             1000,
			InstallationMaxRequests: 2000,
			WindowSeconds:           3600,
			CleanupProbability:      0.01,
		},
		Validation: ValidationConfig{
			ActionNamePattern: "^[a-zA-Z0-9_-]{1,64}$",
			MaxActionLength:   64,
		},
		Dashboard: DashboardConfig{
			Username:      "admin",
			TokenTTLHours: 24,
		},
		Retention: RetentionConfig{
			Enabled: false,
			Days:    180,
		},
		Log: LogConfig{
			Level: "INFO",
			Dir:   "./logs",
		},
	}
}

// Load 설정 파일과 환경변수에서 설정을 읽습니다.
// path가 빈 문자열이면 파일 없이 기본값 + 환경변수만 사용합니다.
func Load(path string) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// applyEnvOverrides 환경변수로 설정 덮어쓰기 (배포 환경용)
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TELEMETRY_ADDR"); v != "" {
		cfg.Server.Addr = v
	}
	if v := os.Getenv("TELEMETRY_DB_DRIVER"); v != "" {
		cfg.Database.Driver = v
	}
	if v := os.Getenv("TELEMETRY_DB_DSN"); v != "" {
		cfg.Database.DSN = v
	}
	if v := os.Getenv("TELEMETRY_DASHBOARD_USER"); v != "" {
		cfg.Dashboard.Username = v
	}
	if v := os.Getenv("TELEMETRY_DASHBOARD_PASSWORD_HASH"); v != "" {
		cfg.Dashboard.PasswordHash = v
	}
	if v := os.Getenv("JWT_SECRET"); v != "" {
		cfg.Dashboard.JWTSecret = v
	}
	if v := os.Getenv("TELEMETRY_LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("TELEMETRY_RATE_LIMIT_ENABLED"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.RateLimit.Enabled = b
		}
	}
}

// validate 설정 값 검증
func (c Config) validate() error {
	if c.Database.Driver != "sqlite" && c.Database.Driver != "mysql" {
		return fmt.Errorf("unsupported database driver: %s", c.Database.Driver)
	}
	if c.RateLimit.WindowSeconds <= 0 {
		return fmt.Errorf("rate_limit.window_seconds must be positive")
	}
	if c.RateLimit.CleanupProbability < 0 || c.RateLimit.CleanupProbability > 1 {
		return fmt.Errorf("rate_limit.cleanup_probability must be between 0 and 1")
	}
	if c.Validation.MaxActionLength <= 0 {
		return fmt.Errorf("validation.max_action_length must be positive")
	}
	return nil
}
