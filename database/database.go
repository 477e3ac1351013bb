package database

import (
	"database/sql"
	"fmt"

	"ymctelemetry/logger"

	_ "github.com/go-sql-driver/mysql"
	_ "modernc.org/sqlite"
)

var DB *sql.DB
var driverName string

// Initialize 데이터베이스 초기화
// driver: "sqlite" 또는 "mysql"
// dsn: SQLite 파일 경로 또는 MySQL DSN
func Initialize(driver, dsn string) error {
	var err error

	if driver == "" {
		driver = "sqlite"
	}
	if dsn == "" && driver == "sqlite" {
		dsn = "./telemetry.db"
	}

	driverName = driver

	DB, err = sql.Open(driver, dsn)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	if err := DB.Ping(); err != nil {
		return fmt.Errorf("failed to ping database: %w", err)
	}

	// SQLite는 동시 쓰기에 취약하므로 busy timeout 설정
	if driver == "sqlite" {
		if _, err := DB.Exec("PRAGMA busy_timeout = 5000"); err != nil {
			return fmt.Errorf("failed to set busy timeout: %w", err)
		}
	}

	if err := CreateSchema(DB, driver); err != nil {
		return fmt.Errorf("failed to create tables: %w", err)
	}

	logger.Info("Database initialized successfully (driver: %s)", driver)
	return nil
}

// Driver 현재 사용 중인 드라이버 이름
func Driver() string {
	return driverName
}

// CreateSchema 텔레메트리 테이블 생성 (멱등)
func CreateSchema(db *sql.DB, driver string) error {
	var tables []string

	if driver == "mysql" {
		tables = []string{
			`CREATE TABLE IF NOT EXISTS actions (
				id INT AUTO_INCREMENT PRIMARY KEY,
				action_name VARCHAR(255) NOT NULL,
				timestamp INT UNSIGNED NOT NULL,
				ip_address VARCHAR(45),
				installation_id VARCHAR(255) DEFAULT '0',
				INDEX idx_action_name (action_name),
				INDEX idx_timestamp (timestamp),
				INDEX idx_installation_id (installation_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

			`CREATE TABLE IF NOT EXISTS rate_limits (
				ip_address VARCHAR(45),
				endpoint_type VARCHAR(50) DEFAULT 'action',
				request_count INT UNSIGNED DEFAULT 1,
				window_start INT UNSIGNED NOT NULL,
				PRIMARY KEY (ip_address, endpoint_type),
				INDEX idx_window_start (window_start)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

			`CREATE TABLE IF NOT EXISTS installations (
				id INT AUTO_INCREMENT PRIMARY KEY,
				timestamp INT UNSIGNED NOT NULL,
				ip_address VARCHAR(45),
				user_agent TEXT,
				platform VARCHAR(50) NOT NULL,
				os_version VARCHAR(100),
				os_release VARCHAR(100),
				plugin_version VARCHAR(50) NOT NULL,
				node_version VARCHAR(50),
				yandex_music_connected TINYINT(1) DEFAULT 0,
				yandex_music_path VARCHAR(500),
				stream_deck_version VARCHAR(50),
				stream_deck_language VARCHAR(20),
				installation_id VARCHAR(255) NOT NULL,
				extra_data TEXT,
				INDEX idx_timestamp (timestamp),
				INDEX idx_ip_address (ip_address),
				INDEX idx_platform (platform),
				INDEX idx_plugin_version (plugin_version),
				INDEX idx_installation_id (installation_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

			`CREATE TABLE IF NOT EXISTS errors (
				id INT AUTO_INCREMENT PRIMARY KEY,
				timestamp INT UNSIGNED NOT NULL,
				ip_address VARCHAR(45),
				installation_id VARCHAR(255) DEFAULT '',
				platform VARCHAR(50) DEFAULT NULL,
				error_message TEXT NOT NULL,
				stack_trace TEXT,
				INDEX idx_timestamp (timestamp),
				INDEX idx_installation_id (installation_id)
			) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
		}
	} else {
		tables = []string{
			`CREATE TABLE IF NOT EXISTS actions (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				action_name TEXT NOT NULL,
				timestamp INTEGER NOT NULL,
				ip_address TEXT,
				installation_id TEXT DEFAULT '0'
			)`,
			`CREATE INDEX IF NOT EXISTS idx_actions_action_name ON actions(action_name)`,
			`CREATE INDEX IF NOT EXISTS idx_actions_timestamp ON actions(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_actions_installation_id ON actions(installation_id)`,

			`CREATE TABLE IF NOT EXISTS rate_limits (
				ip_address TEXT,
				endpoint_type TEXT DEFAULT 'action',
				request_count INTEGER DEFAULT 1,
				window_start INTEGER NOT NULL,
				PRIMARY KEY (ip_address, endpoint_type)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_rate_limits_window_start ON rate_limits(window_start)`,

			`CREATE TABLE IF NOT EXISTS installations (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp INTEGER NOT NULL,
				ip_address TEXT,
				user_agent TEXT,
				platform TEXT NOT NULL,
				os_version TEXT,
				os_release TEXT,
				plugin_version TEXT NOT NULL,
				node_version TEXT,
				yandex_music_connected INTEGER DEFAULT 0,
				yandex_music_path TEXT,
				stream_deck_version TEXT,
				stream_deck_language TEXT,
				installation_id TEXT NOT NULL,
				extra_data TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_installations_timestamp ON installations(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_installations_ip_address ON installations(ip_address)`,
			`CREATE INDEX IF NOT EXISTS idx_installations_platform ON installations(platform)`,
			`CREATE INDEX IF NOT EXISTS idx_installations_plugin_version ON installations(plugin_version)`,
			`CREATE INDEX IF NOT EXISTS idx_installations_installation_id ON installations(installation_id)`,

			`CREATE TABLE IF NOT EXISTS errors (
				id INTEGER PRIMARY KEY AUTOINCREMENT,
				timestamp INTEGER NOT NULL,
				ip_address TEXT,
				installation_id TEXT DEFAULT '',
				platform TEXT DEFAULT NULL,
				error_message TEXT NOT NULL,
				stack_trace TEXT
			)`,
			`CREATE INDEX IF NOT EXISTS idx_errors_timestamp ON errors(timestamp)`,
			`CREATE INDEX IF NOT EXISTS idx_errors_installation_id ON errors(installation_id)`,
		}
	}

	for _, ddl := range tables {
		if _, err := db.Exec(ddl); err != nil {
			return fmt.Errorf("failed to execute DDL: %w", err)
		}
	}

	return nil
}

// Close 데이터베이스 연결 종료
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
