package services

import (
	"context"
	"database/sql"
)

// SQLExecutor 서비스 계층이 데이터베이스 구현으로부터 분리되도록 하는 최소 인터페이스.
// 전역 커넥션 대신 생성자 주입으로 전달되어 테스트 더블 사용이 가능합니다.
type SQLExecutor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

type dbExecutor struct {
	db *sql.DB
}

// NewSQLExecutor *sql.DB를 감싸는 SQLExecutor 생성
func NewSQLExecutor(db *sql.DB) SQLExecutor {
	return &dbExecutor{db: db}
}

func (e *dbExecutor) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return e.db.ExecContext(ctx, query, args...)
}

func (e *dbExecutor) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return e.db.QueryContext(ctx, query, args...)
}

func (e *dbExecutor) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	return e.db.QueryRowContext(ctx, query, args...)
}

func (e *dbExecutor) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	return e.db.BeginTx(ctx, opts)
}
