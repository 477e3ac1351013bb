package services

import (
	"database/sql"
	"testing"

	"ymctelemetry/database"

	"github.com/stretchr/testify/require"
)

// newTestDB 테스트용 인메모리 SQLite 데이터베이스 생성
func newTestDB(t *testing.T) SQLExecutor {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	// 인메모리 DB는 연결마다 독립 스키마를 가지므로 커넥션을 하나로 고정
	db.SetMaxOpenConns(1)

	require.NoError(t, database.CreateSchema(db, "sqlite"))
	return NewSQLExecutor(db)
}
